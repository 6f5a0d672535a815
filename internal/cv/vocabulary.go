package cv

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	maxHeadingRunes = 50
	maxHeadingWords = 4
)

// Vocabulary maps a section label to the heading phrases that open it.
type Vocabulary map[Label][]string

// DefaultVocabulary returns the built-in heading phrases.
// Headings of sections this model does not track (projects, awards, ...) open "other".
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		LabelContact:    {"contact", "contact information", "contact details", "personal details", "personal information"},
		LabelSummary:    {"summary", "profile", "objective", "about me", "professional summary"},
		LabelSkills:     {"skills", "technical skills", "competencies", "technologies", "tech stack", "expertise"},
		LabelExperience: {"experience", "work experience", "work history", "professional experience", "employment", "career history", "professional background"},
		LabelEducation:  {"education", "academic", "academic background", "qualifications", "degrees"},
		LabelOther: {
			"projects", "achievements", "awards", "honors", "certifications", "languages",
			"interests", "hobbies", "references", "volunteering", "publications", "clubs",
		},
	}
}

// Merge returns a copy of v where every label present in overrides has its phrases replaced.
func (v Vocabulary) Merge(overrides map[string][]string) (Vocabulary, error) {
	merged := make(Vocabulary, len(v))
	for label, phrases := range v {
		merged[label] = append([]string(nil), phrases...)
	}

	for name, phrases := range overrides {
		label, err := ParseLabel(name)
		if err != nil {
			return nil, fmt.Errorf("vocabulary: %w", err)
		}
		merged[label] = append([]string(nil), phrases...)
	}

	return merged, nil
}

// headingFillers may surround a heading phrase ("Key Skills", "My Projects").
var headingFillers = map[string]bool{
	"and": true, "or": true, "the": true, "my": true, "of": true,
	"key": true, "core": true, "main": true, "relevant": true, "recent": true, "selected": true,
	"professional": true, "technical": true, "additional": true, "personal": true, "other": true,
}

type headingRule struct {
	label   Label
	phrases [][]string
}

// headingMatcher recognizes heading lines. Rules are checked in canonical label order.
type headingMatcher struct {
	rules []headingRule
}

func newHeadingMatcher(v Vocabulary) *headingMatcher {
	m := &headingMatcher{}
	for _, label := range Labels {
		rule := headingRule{label: label}
		for _, phrase := range v[label] {
			if words := Tokenize(phrase); len(words) > 0 {
				rule.phrases = append(rule.phrases, words)
			}
		}
		if len(rule.phrases) > 0 {
			m.rules = append(m.rules, rule)
		}
	}
	return m
}

// match reports the label opened by line, if line looks like a heading.
// A heading is short, carries no digits or '@', contains one of the phrases as
// whole words, and every other word is part of a phrase too or a filler word.
// "Master of Education" mentions a heading phrase but is not a heading.
func (m *headingMatcher) match(line string) (Label, bool) {
	if utf8.RuneCountInString(line) >= maxHeadingRunes || strings.ContainsAny(line, "@0123456789") {
		return "", false
	}
	// "Technologies: Go, Docker" is content, not a heading.
	if i := strings.Index(line, ":"); i >= 0 && strings.TrimSpace(line[i+1:]) != "" {
		return "", false
	}

	words := Tokenize(line)
	if len(words) == 0 || len(words) > maxHeadingWords {
		return "", false
	}

	covered := make([]bool, len(words))
	for i, w := range words {
		covered[i] = headingFillers[w]
	}

	label, found := Label(""), false
	for _, rule := range m.rules {
		for _, phrase := range rule.phrases {
			for _, at := range sequenceIndexes(words, phrase) {
				for j := range phrase {
					covered[at+j] = true
				}
				if !found {
					label, found = rule.label, true
				}
			}
		}
	}
	if !found {
		return "", false
	}

	for _, ok := range covered {
		if !ok {
			return "", false
		}
	}
	return label, true
}

// sequenceIndexes returns every offset in words where seq starts.
func sequenceIndexes(words, seq []string) []int {
	var idx []int
	for i := 0; i+len(seq) <= len(words); i++ {
		if slices.Equal(words[i:i+len(seq)], seq) {
			idx = append(idx, i)
		}
	}
	return idx
}
