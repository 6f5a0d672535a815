package cv

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe     = regexp.MustCompile(`\+?\(?\d[\d\s().-]{6,}\d`)
	dateRangeRe = regexp.MustCompile(`^(\d{1,2}[./-]){0,2}\d{4}([./-]\d{1,2}){0,2}\s*[-–]\s*(\d{1,2}[./-]){0,2}\d{4}([./-]\d{1,2}){0,2}$`)
)

const (
	minPhoneDigits = 9
	maxPhoneDigits = 15
	maxNameWords   = 4
)

// DefaultSkills is the curated keyword list matched against the skills and experience sections.
func DefaultSkills() []string {
	return []string{
		"python", "java", "javascript", "typescript", "go", "golang", "rust", "c++", "c#",
		"react", "angular", "vue", "node.js", "django", "flask", "fastapi",
		"sql", "postgresql", "mysql", "mongodb", "redis", "kafka", "graphql",
		"aws", "gcp", "azure", "docker", "kubernetes", "terraform", "linux", "git",
		"html", "css", "tensorflow", "pytorch",
	}
}

type skillMatcher struct {
	name string
	re   *regexp.Regexp
}

// newSkillMatchers compiles one case-insensitive whole-word matcher per keyword.
func newSkillMatchers(skills []string) []skillMatcher {
	seen := make(map[string]bool)
	matchers := make([]skillMatcher, 0, len(skills))
	for _, skill := range skills {
		name := strings.ToLower(strings.TrimSpace(skill))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		matchers = append(matchers, skillMatcher{
			name: name,
			re:   regexp.MustCompile(`(?i)(?:^|[^a-z0-9+#.])` + regexp.QuoteMeta(name) + `(?:$|[^a-z0-9+#])`),
		})
	}
	return matchers
}

// findEmails returns every email address in line.
func findEmails(line string) []string {
	return emailRe.FindAllString(line, -1)
}

// findPhones returns phone-like digit runs in line. Date ranges such as "2020-2023",
// "09.2019 - 05.2023" or "2017-03 - 2019-08" are ignored.
func findPhones(line string) []string {
	var phones []string
	for _, candidate := range phoneRe.FindAllString(line, -1) {
		candidate = strings.TrimSpace(candidate)
		if dateRangeRe.MatchString(candidate) {
			continue
		}
		digits := 0
		for _, r := range candidate {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits >= minPhoneDigits && digits <= maxPhoneDigits {
			phones = append(phones, candidate)
		}
	}
	return phones
}

func isContactLine(line string) bool {
	return len(findEmails(line)) > 0 || len(findPhones(line)) > 0
}

// looksLikeName accepts a short line of letters, the usual shape of a résumé's first line.
func looksLikeName(line string) bool {
	if isContactLine(line) || strings.ContainsAny(line, "0123456789@:/") {
		return false
	}
	words := strings.Fields(line)
	return len(words) > 0 && len(words) <= maxNameWords
}

// extractEntities derives entity sets from the segmented lines.
func extractEntities(lines []Line, skills []skillMatcher) map[EntityKind][]string {
	sets := map[EntityKind]map[string]struct{}{
		EntityName:  {},
		EntityEmail: {},
		EntityPhone: {},
		EntitySkill: {},
	}

	if len(lines) > 0 && lines[0].Label == LabelContact && looksLikeName(lines[0].Text) {
		sets[EntityName][lines[0].Text] = struct{}{}
	}

	for _, line := range lines {
		for _, email := range findEmails(line.Text) {
			sets[EntityEmail][email] = struct{}{}
		}
		for _, phone := range findPhones(line.Text) {
			sets[EntityPhone][phone] = struct{}{}
		}

		if line.Label != LabelSkills && line.Label != LabelExperience {
			continue
		}
		for _, skill := range skills {
			if skill.re.MatchString(line.Text) {
				sets[EntitySkill][skill.name] = struct{}{}
			}
		}
	}

	entities := make(map[EntityKind][]string, len(sets))
	for kind, set := range sets {
		if len(set) == 0 {
			continue
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		entities[kind] = values
	}
	return entities
}
