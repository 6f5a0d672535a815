package cv

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

type pdfExtractor struct {
	logger *zap.Logger
}

// NewPDFExtractor returns the PDF extractor. Pages are read row by row with
// ledongthuc/pdf; when that reader fails or finds no text, pdfcpu content
// streams are decoded instead.
func NewPDFExtractor(logger *zap.Logger) TextExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pdfExtractor{logger: logger}
}

func (pdfExtractor) Format() Format { return FormatPDF }

func (e pdfExtractor) ExtractLines(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, errors.New("empty pdf payload")
	}

	pages, err := readPDFRows(data)
	if err == nil {
		if lines := stripPageArtifacts(pages); len(lines) > 0 {
			return lines, nil
		}
	}
	e.logger.Debug("falling back to pdfcpu content streams", zap.Error(err))

	pages, fallbackErr := readPDFContentStreams(data)
	if fallbackErr != nil {
		if err != nil {
			return nil, fmt.Errorf("read pdf: %w (fallback: %v)", err, fallbackErr)
		}
		return nil, fmt.Errorf("read pdf: %w", fallbackErr)
	}

	return stripPageArtifacts(pages), nil
}

// readPDFRows returns the text rows of every page, top to bottom.
func readPDFRows(data []byte) (pages [][]string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, textRows(page.Content().Text))
	}

	return pages, nil
}

// textRows groups glyphs sharing a baseline into lines, top of the page first.
// Within a line glyphs are ordered left to right and a space is inserted where
// the gap after a glyph of known width is wider than a fraction of its font size.
func textRows(texts []pdf.Text) []string {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			glyphs = append(glyphs, t)
		}
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var lines []string
	for start := 0; start < len(glyphs); {
		end := start + 1
		for end < len(glyphs) && glyphs[start].Y-glyphs[end].Y <= baselineTolerance(glyphs[start]) {
			end++
		}

		row := glyphs[start:end]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var sb strings.Builder
		for i, glyph := range row {
			if i > 0 {
				prev := row[i-1]
				if prev.W > 0 && glyph.X-(prev.X+prev.W) > wordGap(prev) {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(glyph.S)
		}
		if line := normalizeLine(sb.String()); line != "" {
			lines = append(lines, line)
		}

		start = end
	}
	return lines
}

func baselineTolerance(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize / 3
	}
	return 2
}

func wordGap(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize * 0.15
	}
	return 1
}

// readPDFContentStreams decodes text showing operators page by page with pdfcpu.
func readPDFContentStreams(data []byte) ([][]string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([][]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		pages = append(pages, linesFromContentStream(content))
	}

	return pages, nil
}

// linesFromContentStream interprets the text operators of a content stream.
// Tj, TJ, ' and " show text; Td, TD, Tm, T*, ' and " move to a new line, as
// does the end of a text object. Operators are found by tokenizing the stream,
// so a whole text object written on one line is handled too.
func linesFromContentStream(data []byte) []string {
	var (
		lines    []string
		current  strings.Builder
		operands []string
	)

	flush := func() {
		if line := normalizeLine(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}
	show := func() {
		for _, text := range operands {
			current.WriteString(text)
		}
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isPDFSpace(c):
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			var raw []byte
			raw, i = readPDFLiteral(data, i)
			operands = append(operands, decodePDFString(raw))
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i += 2
		case c == '<':
			var text string
			text, i = readPDFHexString(data, i)
			operands = append(operands, text)
		case c == '[':
			var text string
			text, i = readPDFArray(data, i)
			operands = append(operands, text)
		case c == '/':
			i++
			for i < len(data) && !isPDFSpace(data[i]) && !isPDFDelimiter(data[i]) {
				i++
			}
		case isPDFDelimiter(c):
			i++
		default:
			start := i
			for i < len(data) && !isPDFSpace(data[i]) && !isPDFDelimiter(data[i]) {
				i++
			}
			word := string(data[start:i])
			if _, err := strconv.ParseFloat(word, 64); err == nil {
				continue
			}

			switch word {
			case "Tj", "TJ":
				show()
			case "'", `"`:
				flush()
				show()
			case "Td", "TD", "Tm", "T*", "ET":
				flush()
			}
			operands = operands[:0]
		}
	}
	flush()

	return lines
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isPDFDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

// readPDFLiteral returns the raw bytes of the balanced literal string starting
// at data[i] == '(' and the offset just past it.
func readPDFLiteral(data []byte, i int) ([]byte, int) {
	depth := 0
	for j := i; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return data[i+1 : j], j + 1
			}
		}
	}
	return data[i+1:], len(data)
}

// readPDFHexString decodes <48656C6C6F> starting at data[i] == '<'.
func readPDFHexString(data []byte, i int) (string, int) {
	end := bytes.IndexByte(data[i:], '>')
	if end < 0 {
		return "", len(data)
	}

	var digits []byte
	for _, c := range data[i+1 : i+end] {
		if !isPDFSpace(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	decoded, err := hex.DecodeString(string(digits))
	if err != nil {
		return "", i + end + 1
	}
	return string(decoded), i + end + 1
}

// readPDFArray collects the strings of a TJ array starting at data[i] == '['.
// A kerning adjustment of a word's width or more becomes a space.
func readPDFArray(data []byte, i int) (string, int) {
	var sb strings.Builder
	for j := i + 1; j < len(data); {
		c := data[j]
		switch {
		case c == ']':
			return sb.String(), j + 1
		case c == '(':
			var raw []byte
			raw, j = readPDFLiteral(data, j)
			sb.WriteString(decodePDFString(raw))
		case c == '<':
			var text string
			text, j = readPDFHexString(data, j)
			sb.WriteString(text)
		case isPDFSpace(c) || isPDFDelimiter(c):
			j++
		default:
			start := j
			for j < len(data) && !isPDFSpace(data[j]) && !isPDFDelimiter(data[j]) {
				j++
			}
			if kern, err := strconv.ParseFloat(string(data[start:j]), 64); err == nil && kern <= -200 {
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String(), len(data)
}

// decodePDFString handles the escape sequences of a PDF literal string.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}

		i++
		switch raw[i] {
		case 'n', 'r':
			sb.WriteByte(' ')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

var pageNumberRe = regexp.MustCompile(`(?i)^(page\s*)?\d{1,3}(\s*(of|/)\s*\d{1,3})?$`)

// stripPageArtifacts flattens pages into one line sequence, dropping page
// numbers and running headers or footers: a first or last line repeated on
// more than half of a multi-page document.
func stripPageArtifacts(pages [][]string) []string {
	repeated := make(map[string]int)
	if len(pages) > 1 {
		for _, lines := range pages {
			if len(lines) == 0 {
				continue
			}
			edges := map[string]bool{lines[0]: true, lines[len(lines)-1]: true}
			for edge := range edges {
				repeated[edge]++
			}
		}
	}

	var out []string
	for _, lines := range pages {
		for i, line := range lines {
			if pageNumberRe.MatchString(line) {
				continue
			}
			isEdge := i == 0 || i == len(lines)-1
			if isEdge && repeated[line]*2 > len(pages) {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}
