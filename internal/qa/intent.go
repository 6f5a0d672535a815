package qa

import (
	"fmt"

	"github.com/spigell/cv-responder/internal/cv"
)

// Intent maps question keywords to the section that should answer them.
type Intent struct {
	Label    cv.Label `mapstructure:"label" json:"label" yaml:"label"`
	Keywords []string `mapstructure:"keywords" json:"keywords" yaml:"keywords"`
}

// DefaultIntents returns the built-in intent table. Order matters: the first
// intent with a matching keyword wins.
func DefaultIntents() []Intent {
	return []Intent{
		{Label: cv.LabelSkills, Keywords: []string{"skill", "technology", "proficient", "programming", "tech", "stack", "tool"}},
		{Label: cv.LabelExperience, Keywords: []string{"experience", "work", "job", "role", "position", "title", "company", "employer", "career"}},
		{Label: cv.LabelEducation, Keywords: []string{"education", "degree", "university", "college", "study", "school", "graduate", "attend"}},
		{Label: cv.LabelContact, Keywords: []string{"contact", "email", "phone", "reach", "address", "call", "name"}},
		{Label: cv.LabelSummary, Keywords: []string{"summary", "about", "who", "yourself", "profile", "objective"}},
	}
}

// ValidateIntents checks that every intent targets a known label and has keywords.
func ValidateIntents(intents []Intent) error {
	for i, intent := range intents {
		if _, err := cv.ParseLabel(string(intent.Label)); err != nil {
			return fmt.Errorf("intent %d: %w", i, err)
		}
		if len(intent.Keywords) == 0 {
			return fmt.Errorf("intent %d (%s): no keywords", i, intent.Label)
		}
	}
	return nil
}

type compiledIntent struct {
	label    cv.Label
	keywords map[string]struct{}
}

func compileIntents(intents []Intent) []compiledIntent {
	compiled := make([]compiledIntent, 0, len(intents))
	for _, intent := range intents {
		c := compiledIntent{label: intent.Label, keywords: make(map[string]struct{})}
		for _, kw := range intent.Keywords {
			for _, token := range cv.Tokenize(kw) {
				c.keywords[token] = struct{}{}
			}
		}
		compiled = append(compiled, c)
	}
	return compiled
}

// classify returns the label of the first intent sharing a token with the question.
func classify(intents []compiledIntent, tokens []string) (cv.Label, bool) {
	for _, intent := range intents {
		for _, token := range tokens {
			if _, ok := intent.keywords[token]; ok {
				return intent.label, true
			}
		}
	}
	return "", false
}
