package cv

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

type docxExtractor struct{}

// NewDOCXExtractor returns the Word document extractor.
// Only word/document.xml is read, so page headers and footers never reach the output.
func NewDOCXExtractor() TextExtractor { return docxExtractor{} }

func (docxExtractor) Format() Format { return FormatDOCX }

func (docxExtractor) ExtractLines(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty docx payload")
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxParagraphs(doc.Editable().GetContent())
}

// docxParagraphs walks the WordprocessingML body and returns one line per paragraph.
// Explicit line breaks inside a paragraph start a new line, tabs become spaces.
func docxParagraphs(content string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		lines   []string
		current strings.Builder
		inText  bool
	)

	flush := func() {
		if line := normalizeLine(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte(' ')
			case "br", "cr":
				flush()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return lines, nil
}
