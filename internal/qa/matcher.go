// Package qa answers free-form questions about a normalized résumé with a
// deterministic keyword pipeline: intent classification, token-overlap
// retrieval and template composition.
package qa

import (
	"strings"

	"github.com/spigell/cv-responder/internal/cv"
	"github.com/spigell/cv-responder/internal/logger"
	"github.com/spigell/cv-responder/internal/utils"
	"go.uber.org/zap"
)

// Confidence describes how directly an answer is grounded in the document.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// NotFoundText is returned with low confidence when nothing in the document matches.
const NotFoundText = "I couldn't find relevant information in the CV to answer that question."

const (
	defaultMaxLength = 300
	defaultMaxLines  = 3
)

// Answer is the result of a single question. Source is empty when nothing matched.
type Answer struct {
	Text       string     `json:"text"`
	Confidence Confidence `json:"confidence"`
	Source     cv.Label   `json:"source_section,omitempty"`
}

// Config tunes the matcher. Zero values select the defaults.
type Config struct {
	Intents []Intent
	// MaxLength caps the matched text in runes before the template is applied.
	MaxLength int
	// MaxLines caps how many equally scored lines are quoted.
	MaxLines int
}

// Matcher answers questions against a SectionModel. It keeps no state between
// questions and never writes to the model, so it is safe for concurrent use.
type Matcher struct {
	intents   []compiledIntent
	keywords  map[string]struct{}
	maxLength int
	maxLines  int
	logger    *zap.Logger
}

// NewMatcher builds a Matcher from cfg.
func NewMatcher(cfg Config, log *zap.Logger) *Matcher {
	intents := cfg.Intents
	if len(intents) == 0 {
		intents = DefaultIntents()
	}

	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}

	maxLines := cfg.MaxLines
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}

	compiled := compileIntents(intents)
	keywords := make(map[string]struct{})
	for _, intent := range compiled {
		for kw := range intent.keywords {
			keywords[kw] = struct{}{}
		}
	}

	return &Matcher{
		intents:   compiled,
		keywords:  keywords,
		maxLength: maxLength,
		maxLines:  maxLines,
		logger:    logger.WithFields(log, zap.String("component", "matcher")),
	}
}

// Answer never fails: a question nothing in the model supports yields a low
// confidence NotFoundText answer.
func (m *Matcher) Answer(question string, model *cv.SectionModel) Answer {
	target, targeted := classify(m.intents, cv.Tokenize(question))
	query := queryTokens(question)

	var candidates []cv.Line
	for _, line := range model.Lines() {
		if line.Heading {
			continue
		}
		if !targeted || line.Label == target {
			candidates = append(candidates, line)
		}
	}

	// Every line of the section an intent points at already answers the topic
	// of the question, so it starts with one point.
	bonus := 0
	if targeted {
		bonus = 1
	}

	matched, best := retrieve(candidates, query, bonus, m.maxLines)

	m.logger.Debug("question matched",
		zap.String("question", utils.TruncateForLog(question, m.maxLength)),
		zap.String("intent", intentName(target, targeted)),
		zap.Int("candidates", len(candidates)),
		zap.Int("score", best),
		zap.Int("matched_lines", len(matched)),
	)

	if best == 0 {
		return Answer{Text: NotFoundText, Confidence: ConfidenceLow}
	}

	source := matched[0].Label
	confidence := ConfidenceHigh
	if !targeted || target == cv.LabelOther {
		confidence = ConfidenceMedium
	}
	// "Did you work at Google?" reaches the experience section through "work",
	// but the answer is only direct if a quoted line mentions Google.
	if confidence == ConfidenceHigh && !answersSubject(query, m.keywords, matched) {
		confidence = ConfidenceMedium
	}

	texts := make([]string, 0, len(matched))
	for _, line := range matched {
		texts = append(texts, line.Text)
	}
	excerpt := utils.TruncateForLog(strings.Join(texts, "; "), m.maxLength)

	return Answer{
		Text:       compose(target, targeted, excerpt),
		Confidence: confidence,
		Source:     source,
	}
}

// retrieve scores candidates by query token overlap plus bonus and returns up to
// limit lines sharing the best score, in document order.
func retrieve(candidates []cv.Line, query map[string]struct{}, bonus, limit int) ([]cv.Line, int) {
	best := 0
	scores := make([]int, len(candidates))
	for i, line := range candidates {
		scores[i] = overlap(query, line.Text) + bonus
		if scores[i] > best {
			best = scores[i]
		}
	}
	if best == 0 {
		return nil, 0
	}

	var matched []cv.Line
	for i, line := range candidates {
		if scores[i] == best {
			matched = append(matched, line)
			if len(matched) == limit {
				break
			}
		}
	}
	return matched, best
}

// answersSubject reports whether the matched lines mention the query tokens
// left once intent keywords are removed. A query made only of intent keywords
// is answered by the section itself.
func answersSubject(query, keywords map[string]struct{}, matched []cv.Line) bool {
	subject := make(map[string]struct{})
	for token := range query {
		if _, ok := keywords[token]; !ok {
			subject[token] = struct{}{}
		}
	}
	if len(subject) == 0 {
		return true
	}

	for _, line := range matched {
		if overlap(subject, line.Text) > 0 {
			return true
		}
	}
	return false
}

// overlap counts distinct query tokens present in text.
func overlap(query map[string]struct{}, text string) int {
	seen := make(map[string]struct{})
	for _, token := range cv.Tokenize(text) {
		if _, ok := query[token]; ok {
			seen[token] = struct{}{}
		}
	}
	return len(seen)
}

// queryTokens returns the stemmed question words without stop words.
func queryTokens(question string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range cv.Words(question) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens[cv.Stem(word)] = struct{}{}
	}
	return tokens
}

func intentName(label cv.Label, targeted bool) string {
	if !targeted {
		return "full-scan"
	}
	return string(label)
}
