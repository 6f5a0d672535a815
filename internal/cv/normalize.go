// Package cv turns résumé documents (PDF, DOCX, plain text) into an immutable
// SectionModel: the ordered lines of the document, each assigned to exactly
// one section, plus the entities found in them.
package cv

import (
	"fmt"

	"go.uber.org/zap"
)

// Config tunes segmentation and entity extraction. Zero values select the defaults.
type Config struct {
	Vocabulary Vocabulary
	Skills     []string
}

// Normalizer dispatches raw bytes to the extractor registered for their format
// and segments the resulting lines. It holds no mutable state and is safe for
// concurrent use.
type Normalizer struct {
	extractors map[Format]TextExtractor
	headings   *headingMatcher
	skills     []skillMatcher
	logger     *zap.Logger
}

// NewNormalizer builds a Normalizer with the PDF, DOCX and TXT extractors registered.
func NewNormalizer(cfg Config, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	vocabulary := cfg.Vocabulary
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary()
	}

	skills := cfg.Skills
	if len(skills) == 0 {
		skills = DefaultSkills()
	}

	n := &Normalizer{
		extractors: make(map[Format]TextExtractor),
		headings:   newHeadingMatcher(vocabulary),
		skills:     newSkillMatchers(skills),
		logger:     logger,
	}

	n.Register(NewPDFExtractor(logger))
	n.Register(NewDOCXExtractor())
	n.Register(NewTXTExtractor())

	return n
}

// Register installs or replaces the extractor for its format. It must be called before
// the Normalizer is shared between goroutines.
func (n *Normalizer) Register(e TextExtractor) {
	n.extractors[e.Format()] = e
}

// Normalize extracts, segments and indexes a document. It returns either a complete
// model or an error wrapping ErrUnsupportedFormat or ErrExtractionFailure, never both.
func (n *Normalizer) Normalize(data []byte, format Format) (*SectionModel, error) {
	extractor, ok := n.extractors[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	texts, err := extractor.ExtractLines(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailure, format, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %s: no text recovered", ErrExtractionFailure, format)
	}

	lines := n.segment(texts)
	model := newSectionModel(lines, extractEntities(lines, n.skills))

	if ce := n.logger.Check(zap.DebugLevel, "document normalized"); ce != nil {
		fields := []zap.Field{
			zap.String("format", string(format)),
			zap.Int("lines", len(lines)),
		}
		for _, label := range Labels {
			fields = append(fields, zap.Int("section_"+string(label), len(model.sections[label])))
		}
		ce.Write(fields...)
	}

	return model, nil
}

// segment assigns every line to exactly one section.
//
// A heading line switches the current section and is itself filed under "other".
// Lines before the first heading go to "contact" when they are the first line or
// carry an email or phone number, and to "summary" otherwise.
func (n *Normalizer) segment(texts []string) []Line {
	lines := make([]Line, 0, len(texts))
	var current Label

	for i, text := range texts {
		if label, ok := n.headings.match(text); ok {
			current = label
			lines = append(lines, Line{Text: text, Label: LabelOther, Heading: true})
			continue
		}

		label := current
		if label == "" {
			switch {
			case i == 0, isContactLine(text):
				label = LabelContact
			default:
				label = LabelSummary
			}
		}
		lines = append(lines, Line{Text: text, Label: label})
	}

	return lines
}
