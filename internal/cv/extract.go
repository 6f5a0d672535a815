package cv

// TextExtractor turns the raw bytes of one document format into an ordered
// sequence of non-empty, trimmed lines. Every format converges to this
// representation so segmentation never sees format quirks.
type TextExtractor interface {
	Format() Format
	ExtractLines(data []byte) ([]string, error)
}

type txtExtractor struct{}

// NewTXTExtractor returns the plain text extractor.
func NewTXTExtractor() TextExtractor { return txtExtractor{} }

func (txtExtractor) Format() Format { return FormatTXT }

func (txtExtractor) ExtractLines(data []byte) ([]string, error) {
	return splitLines(string(data)), nil
}
