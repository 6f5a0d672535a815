package cv

import (
	"strings"

	"github.com/spigell/cv-responder/internal/utils"
)

const previewRunes = 100

// Summary is a compact overview of a loaded model.
type Summary struct {
	Sections  []string            `json:"sections" yaml:"sections"`
	Entities  map[string][]string `json:"entities" yaml:"entities"`
	WordCount int                 `json:"word_count" yaml:"word_count"`
	Previews  map[string]string   `json:"sections_preview" yaml:"sections_preview"`
}

// Summarize lists the populated sections in canonical order together with a short
// preview of each, the extracted entities and the document word count.
func Summarize(m *SectionModel) Summary {
	view := m.View()
	summary := Summary{
		Entities:  view.Entities,
		WordCount: len(strings.Fields(view.RawText)),
		Previews:  make(map[string]string),
	}

	for _, label := range Labels {
		lines := m.Section(label)
		if len(lines) == 0 {
			continue
		}
		summary.Sections = append(summary.Sections, string(label))
		summary.Previews[string(label)] = utils.TruncateForLog(strings.Join(lines, " "), previewRunes)
	}

	return summary
}
