package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldFormat is the structured log field key for the document format tag.
	FieldFormat = "document_format"
	// FieldSource is the structured log field key for the document location.
	FieldSource = "document_source"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// DocumentFields returns the fields describing where a document came from.
func DocumentFields(format, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldFormat, Value: format},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithDocumentFields attaches DocumentFields to the provided logger.
func WithDocumentFields(logger *zap.Logger, format, source string) *zap.Logger {
	return WithFields(logger, DocumentFields(format, source)...)
}
