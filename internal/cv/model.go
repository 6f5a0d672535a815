package cv

import (
	"sort"
	"strings"
)

// SectionModel is the canonical parsed representation of a résumé.
// It is never mutated after Normalize returns it; a new upload produces a new model.
type SectionModel struct {
	lines    []Line
	sections map[Label][]string
	entities map[EntityKind][]string
}

func newSectionModel(lines []Line, entities map[EntityKind][]string) *SectionModel {
	sections := make(map[Label][]string)
	for _, line := range lines {
		sections[line.Label] = append(sections[line.Label], line.Text)
	}

	return &SectionModel{
		lines:    lines,
		sections: sections,
		entities: entities,
	}
}

// RawText returns the full extracted text, one normalized line per row.
func (m *SectionModel) RawText() string {
	if m == nil {
		return ""
	}

	texts := make([]string, 0, len(m.lines))
	for _, line := range m.lines {
		texts = append(texts, line.Text)
	}
	return strings.Join(texts, "\n")
}

// Lines returns every line in document order with its section label.
func (m *SectionModel) Lines() []Line {
	if m == nil {
		return nil
	}
	return append([]Line(nil), m.lines...)
}

// Section returns the lines assigned to the given label in document order.
func (m *SectionModel) Section(label Label) []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.sections[label]...)
}

// Sections returns a copy of the whole label to lines mapping. Empty buckets are omitted.
func (m *SectionModel) Sections() map[Label][]string {
	out := make(map[Label][]string)
	if m == nil {
		return out
	}
	for label, lines := range m.sections {
		out[label] = append([]string(nil), lines...)
	}
	return out
}

// Entities returns the sorted, deduplicated values extracted for kind.
func (m *SectionModel) Entities(kind EntityKind) []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.entities[kind]...)
}

// HasEntity reports whether value was extracted for kind.
func (m *SectionModel) HasEntity(kind EntityKind, value string) bool {
	if m == nil {
		return false
	}
	values := m.entities[kind]
	i := sort.SearchStrings(values, value)
	return i < len(values) && values[i] == value
}

// ModelView is the serializable form of a SectionModel used by the CLI and HTTP layer.
type ModelView struct {
	RawText  string              `json:"raw_text" yaml:"raw_text"`
	Sections map[string][]string `json:"sections" yaml:"sections"`
	Entities map[string][]string `json:"entities" yaml:"entities"`
}

// View renders the model into plain maps keyed by label and entity kind names.
func (m *SectionModel) View() ModelView {
	view := ModelView{
		RawText:  m.RawText(),
		Sections: make(map[string][]string),
		Entities: make(map[string][]string),
	}
	for label, lines := range m.Sections() {
		view.Sections[string(label)] = lines
	}
	for _, kind := range EntityKinds {
		if values := m.Entities(kind); len(values) > 0 {
			view.Entities[string(kind)] = values
		}
	}
	return view
}
