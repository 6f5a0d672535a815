package cv

import "errors"

var (
	// ErrUnsupportedFormat is returned when the format tag is not pdf, docx or txt.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailure is returned when no text can be recovered from a supported format.
	ErrExtractionFailure = errors.New("extraction failure")
)
