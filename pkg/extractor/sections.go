package extractor

import (
	"regexp"
	"strings"
)

var (
	educationHeadings  = regexp.MustCompile(`(?i)^\s*education\s*:?\s*$`)
	experienceHeadings = regexp.MustCompile(`(?i)^\s*(professional experience|work experience|work history|experience)\s*:?\s*$`)
	otherHeadings      = regexp.MustCompile(`(?i)^\s*(skills|technical skills|summary|profile|objective|projects|certifications|languages|interests|references)\s*:?\s*$`)
)

// section returns the non-blank lines following the first heading matched
// by re. Capture stops at a blank line, at end of text, or at another
// known heading.
func section(text string, re *regexp.Regexp) []string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, l := range lines {
		if re.MatchString(l) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var out []string
	for _, l := range lines[start:] {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || isHeading(l) {
			break
		}
		out = append(out, trimmed)
	}
	return out
}

func isHeading(line string) bool {
	return educationHeadings.MatchString(line) ||
		experienceHeadings.MatchString(line) ||
		otherHeadings.MatchString(line)
}
