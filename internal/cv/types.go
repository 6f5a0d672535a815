package cv

import (
	"fmt"
	"strings"
)

// Format is the declared kind of a raw document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// ParseFormat converts a user supplied tag (".pdf", "DOCX", "txt") into a Format.
func ParseFormat(tag string) (Format, error) {
	normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
	switch normalized {
	case "pdf":
		return FormatPDF, nil
	case "docx", "doc":
		return FormatDOCX, nil
	case "txt", "text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// Label classifies a block of résumé text by topic.
type Label string

const (
	LabelContact    Label = "contact"
	LabelSummary    Label = "summary"
	LabelSkills     Label = "skills"
	LabelExperience Label = "experience"
	LabelEducation  Label = "education"
	LabelOther      Label = "other"
)

// Labels lists every section label in canonical order.
var Labels = []Label{
	LabelContact,
	LabelSummary,
	LabelSkills,
	LabelExperience,
	LabelEducation,
	LabelOther,
}

// ParseLabel validates a section label name.
func ParseLabel(name string) (Label, error) {
	label := Label(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Labels {
		if label == known {
			return label, nil
		}
	}
	return "", fmt.Errorf("unknown section label: %q", name)
}

// EntityKind names a family of extracted values.
type EntityKind string

const (
	EntityName  EntityKind = "name"
	EntityEmail EntityKind = "email"
	EntityPhone EntityKind = "phone"
	EntitySkill EntityKind = "skill"
)

// EntityKinds lists every entity kind in canonical order.
var EntityKinds = []EntityKind{EntityName, EntityEmail, EntityPhone, EntitySkill}

// Line is a single normalized line together with the section it was assigned to.
// Heading lines are filed under "other" and only mark where a section starts.
type Line struct {
	Text    string
	Label   Label
	Heading bool
}
