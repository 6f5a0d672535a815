package qa

import (
	"fmt"

	"github.com/spigell/cv-responder/internal/cv"
)

var templates = map[cv.Label]string{
	cv.LabelContact:    "Contact information: %s",
	cv.LabelSummary:    "Profile summary: %s",
	cv.LabelSkills:     "Skills mentioned in the CV: %s",
	cv.LabelExperience: "Work experience: %s",
	cv.LabelEducation:  "Education details: %s",
	cv.LabelOther:      "Additional details: %s",
}

const fullScanTemplate = "Relevant excerpt from the CV: %s"

func compose(label cv.Label, targeted bool, excerpt string) string {
	tmpl := fullScanTemplate
	if targeted {
		if t, ok := templates[label]; ok {
			tmpl = t
		}
	}
	return fmt.Sprintf(tmpl, excerpt)
}

// stopWords are dropped from questions before overlap scoring.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "am", "an", "and", "any", "are", "as", "at", "be", "been", "but", "by",
		"can", "could", "did", "do", "does", "for", "from", "had", "has", "have", "he", "her",
		"his", "how", "i", "if", "in", "into", "is", "it", "its", "me", "my", "of", "on", "or",
		"our", "she", "so", "tell", "that", "the", "their", "them", "there", "they", "this",
		"to", "was", "we", "were", "what", "when", "where", "which", "who", "whom", "why",
		"will", "with", "would", "you", "your", "yours",
	} {
		stopWords[w] = struct{}{}
	}
}
