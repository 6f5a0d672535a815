package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigJSONDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	logger, err := config(true, true, path).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	logger.Debug("document normalized", DocumentFields("pdf", "cv.pdf")...)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("expected a json line, got %q: %v", data, err)
	}
	if entry["step"] != "document normalized" || entry["level"] != "debug" || entry[FieldFormat] != "pdf" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestConfigInfoLevel(t *testing.T) {
	cfg := config(false, false, "stderr")
	if cfg.Encoding != "console" {
		t.Fatalf("expected console encoding, got %s", cfg.Encoding)
	}
	if cfg.Level.Enabled(-1) {
		t.Fatalf("debug must be disabled without the debug flag")
	}
}
