// Package source loads raw résumé bytes from a local path or an S3 compatible
// bucket and works out which format they are in.
package source

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/cv-responder/internal/cv"
)

const s3Scheme = "s3://"

// MaxDocumentBytes bounds how much is read from any location.
const MaxDocumentBytes = 10 << 20

// Document is a raw payload plus its format tag.
type Document struct {
	Name   string
	Format cv.Format
	Data   []byte
}

// Fetcher reads a bucket object.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// Loader resolves locations into Documents. S3 locations need a Fetcher.
type Loader struct {
	S3 Fetcher
}

// Load reads location. formatHint overrides the format inferred from the name.
func (l *Loader) Load(ctx context.Context, location, formatHint string) (*Document, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("document location is required")
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, s3Scheme) {
		data, err = l.loadS3(ctx, location)
	} else {
		data, err = loadFile(location)
	}
	if err != nil {
		return nil, err
	}

	format, err := resolveFormat(location, "", formatHint)
	if err != nil {
		return nil, err
	}

	return &Document{Name: filepath.Base(location), Format: format, Data: data}, nil
}

func (l *Loader) loadS3(ctx context.Context, location string) ([]byte, error) {
	if l.S3 == nil {
		return nil, fmt.Errorf("s3 is not configured, cannot load %s", location)
	}

	bucket, key, err := ParseS3URL(location)
	if err != nil {
		return nil, err
	}

	data, err := l.S3.Fetch(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, fmt.Errorf("%s is too large: %d bytes (max %d)", location, len(data), MaxDocumentBytes)
	}
	return data, nil
}

func loadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxDocumentBytes {
		return nil, fmt.Errorf("%s is too large: %d bytes (max %d)", path, info.Size(), MaxDocumentBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, expected s3://bucket/key", location)
	}
	return bucket, key, nil
}

// DetectFormat infers the format from a file name and, failing that, from a MIME type.
func DetectFormat(name, mimeType string) (cv.Format, error) {
	if ext := filepath.Ext(name); ext != "" {
		if format, err := cv.ParseFormat(ext); err == nil {
			return format, nil
		}
	}

	media, _, err := mime.ParseMediaType(mimeType)
	if err == nil {
		switch media {
		case "application/pdf":
			return cv.FormatPDF, nil
		case "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/msword":
			return cv.FormatDOCX, nil
		case "text/plain":
			return cv.FormatTXT, nil
		}
	}

	return "", fmt.Errorf("%w: cannot infer format of %q (%s)", cv.ErrUnsupportedFormat, name, mimeType)
}

// resolveFormat prefers an explicit hint and falls back to DetectFormat.
func resolveFormat(name, mimeType, hint string) (cv.Format, error) {
	if strings.TrimSpace(hint) != "" {
		return cv.ParseFormat(hint)
	}
	return DetectFormat(name, mimeType)
}

// ResolveFormat is resolveFormat for callers that already hold the bytes, such as uploads.
func ResolveFormat(name, mimeType, hint string) (cv.Format, error) {
	return resolveFormat(name, mimeType, hint)
}
