package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/cv-responder/internal/cv"
)

type stubFetcher struct {
	data   []byte
	err    error
	bucket string
	key    string
}

func (s *stubFetcher) Fetch(_ context.Context, bucket, key string) ([]byte, error) {
	s.bucket, s.key = bucket, key
	return s.data, s.err
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		mime    string
		want    cv.Format
		wantErr bool
	}{
		{name: "pdf extension", file: "cv.PDF", want: cv.FormatPDF},
		{name: "docx extension", file: "resume.docx", want: cv.FormatDOCX},
		{name: "doc extension", file: "resume.doc", want: cv.FormatDOCX},
		{name: "txt extension", file: "notes.txt", want: cv.FormatTXT},
		{name: "mime fallback", file: "upload", mime: "application/pdf", want: cv.FormatPDF},
		{name: "mime with params", file: "blob", mime: "text/plain; charset=utf-8", want: cv.FormatTXT},
		{name: "unknown extension uses mime", file: "cv.bin", mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", want: cv.FormatDOCX},
		{name: "unsupported", file: "photo.png", mime: "image/png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file, tt.mime)
			if tt.wantErr {
				if !errors.Is(err, cv.ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolveFormatHintWins(t *testing.T) {
	got, err := ResolveFormat("cv.pdf", "application/pdf", "txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cv.FormatTXT {
		t.Fatalf("expected hint to win, got %s", got)
	}

	if _, err := ResolveFormat("cv.pdf", "", "odt"); !errors.Is(err, cv.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for bad hint, got %v", err)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://cvs/2024/jane.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket != "cvs" || key != "2024/jane.pdf" {
		t.Fatalf("unexpected split: %q %q", bucket, key)
	}

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := ParseS3URL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoaderLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jane.txt")
	if err := os.WriteFile(path, []byte("Jane Doe\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := (&Loader{}).Load(context.Background(), path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "jane.txt" || doc.Format != cv.FormatTXT || string(doc.Data) != "Jane Doe\n" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	if _, err := (&Loader{}).Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), ""); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoaderLoadS3(t *testing.T) {
	fetcher := &stubFetcher{data: []byte("%PDF-1.4")}
	loader := &Loader{S3: fetcher}

	doc, err := loader.Load(context.Background(), "s3://cvs/people/jane.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.bucket != "cvs" || fetcher.key != "people/jane.pdf" {
		t.Fatalf("unexpected fetch: %q %q", fetcher.bucket, fetcher.key)
	}
	if doc.Format != cv.FormatPDF || doc.Name != "jane.pdf" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	fetcher.err = errors.New("boom")
	if _, err := loader.Load(context.Background(), "s3://cvs/jane.pdf", ""); err == nil {
		t.Fatalf("expected fetch error")
	}

	if _, err := (&Loader{}).Load(context.Background(), "s3://cvs/jane.pdf", ""); err == nil {
		t.Fatalf("expected error without s3 configured")
	}
}

func TestRetry(t *testing.T) {
	calls := 0
	got, err := retry(context.Background(), 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil || got != 42 || calls != 3 {
		t.Fatalf("unexpected result: %d %v after %d calls", got, err, calls)
	}

	calls = 0
	_, err = retry(context.Background(), 2, time.Millisecond, func() (int, error) {
		calls++
		return 0, errors.New("permanent")
	})
	if err == nil || calls != 2 {
		t.Fatalf("expected error after 2 calls, got %v after %d", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = retry(ctx, 3, time.Second, func() (int, error) {
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestS3ConfigStaticCredentials(t *testing.T) {
	t.Setenv(AccessKeyEnv, "")

	if (S3Config{Endpoint: "http://localhost:9000"}).staticCredentials() {
		t.Fatalf("endpoint alone must use the default credential chain")
	}
	if !(S3Config{AccessKeyFile: "/run/secrets/s3-access"}).staticCredentials() {
		t.Fatalf("key file must select static credentials")
	}

	t.Setenv(AccessKeyEnv, "AKIAENV")
	if !(S3Config{}).staticCredentials() {
		t.Fatalf("%s must select static credentials", AccessKeyEnv)
	}
}

func TestNewS3FetcherCredentials(t *testing.T) {
	dir := t.TempDir()
	accessFile := filepath.Join(dir, "access")
	secretFile := filepath.Join(dir, "secret")
	if err := os.WriteFile(accessFile, []byte("AKIAFILE\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(secretFile, []byte("file-secret\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name       string
		cfg        S3Config
		wantAccess string
		wantSecret string
	}{
		{
			name:       "environment",
			cfg:        S3Config{Endpoint: "http://localhost:9000"},
			wantAccess: "AKIAENV",
			wantSecret: "env-secret",
		},
		{
			name:       "files take precedence",
			cfg:        S3Config{Endpoint: "http://localhost:9000", AccessKeyFile: accessFile, SecretKeyFile: secretFile},
			wantAccess: "AKIAFILE",
			wantSecret: "file-secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(AccessKeyEnv, "AKIAENV")
			t.Setenv(SecretKeyEnv, "env-secret")

			f, err := NewS3Fetcher(context.Background(), tt.cfg, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			opts := f.client.Options()
			creds, err := opts.Credentials.Retrieve(context.Background())
			if err != nil {
				t.Fatalf("retrieve credentials: %v", err)
			}
			if creds.AccessKeyID != tt.wantAccess || creds.SecretAccessKey != tt.wantSecret {
				t.Fatalf("got %q/%q, want %q/%q", creds.AccessKeyID, creds.SecretAccessKey, tt.wantAccess, tt.wantSecret)
			}
			if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:9000" || !opts.UsePathStyle {
				t.Fatalf("unexpected endpoint options: %v, path style %v", opts.BaseEndpoint, opts.UsePathStyle)
			}
		})
	}
}

func TestNewS3FetcherMissingSecretKey(t *testing.T) {
	t.Setenv(AccessKeyEnv, "AKIAENV")
	t.Setenv(SecretKeyEnv, "")

	if _, err := NewS3Fetcher(context.Background(), S3Config{}, nil); err == nil {
		t.Fatalf("expected error when only the access key is set")
	}
}

func TestNewS3FetcherMissingKeyFile(t *testing.T) {
	t.Setenv(AccessKeyEnv, "")

	_, err := NewS3Fetcher(context.Background(), S3Config{
		AccessKeyFile: filepath.Join(t.TempDir(), "missing"),
		SecretKeyFile: filepath.Join(t.TempDir(), "missing"),
	}, nil)
	if err == nil {
		t.Fatalf("expected error for unreadable key file")
	}
}
