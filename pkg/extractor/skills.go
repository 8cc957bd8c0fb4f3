package extractor

import (
	"regexp"
	"strings"
)

// DefaultSkills is the technology vocabulary matched against resume text.
// Single-letter and common-word names (C, R, Go) are left out because they
// match ordinary prose.
var DefaultSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Golang", "C++", "C#",
	"Ruby", "PHP", "Kotlin", "Scala", "Rust",
	"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch",
	"HTML", "CSS", "React", "Angular", "Vue", "Node.js", "Django", "Flask",
	"FastAPI", "Docker", "Kubernetes", "AWS", "Azure", "GCP",
	"Terraform", "Linux", "Git", "Kafka", "GraphQL",
	"Machine Learning", "TensorFlow", "PyTorch", "Pandas",
}

type skillMatcher struct {
	name string
	re   *regexp.Regexp
}

// Boundaries exclude '+' and '#' so "C++" does not match inside "C++11"
// and "Java" does not match "JavaScript".
func compileVocabulary(vocabulary []string) []skillMatcher {
	out := make([]skillMatcher, 0, len(vocabulary))
	for _, kw := range vocabulary {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		pattern := `(?i)(?:^|[^A-Za-z0-9_+#])` + regexp.QuoteMeta(kw) + `(?:$|[^A-Za-z0-9_+#])`
		out = append(out, skillMatcher{name: kw, re: regexp.MustCompile(pattern)})
	}
	return out
}

func (e *Extractor) matchSkills(text string) []string {
	found := []string{}
	for _, s := range e.skills {
		if s.re.MatchString(text) {
			found = append(found, s.name)
		}
	}
	return found
}
