package ner

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// personLineLimit bounds how far into the document a name is searched for.
const personLineLimit = 5

var (
	nameWordRe  = regexp.MustCompile(`^[A-Z][A-Za-z'.-]+$`)
	digitRe     = regexp.MustCompile(`\d`)
	placeWordRe = regexp.MustCompile(`[A-Za-z]+(?:[ -][A-Z][A-Za-z]+)*`)
)

// defaultPlaces is a small gazetteer of locations common on resumes.
var defaultPlaces = []string{
	"Amsterdam", "Atlanta", "Austin", "Berlin", "Boston", "California", "Canada",
	"Chicago", "Dallas", "Denver", "Dublin", "France", "Germany", "Houston",
	"India", "Ireland", "London", "Los Angeles", "Madrid", "Miami", "Montreal",
	"Munich", "New Jersey", "New York", "Ontario", "Paris", "Philadelphia",
	"Portland", "San Francisco", "San Jose", "Seattle", "Singapore", "Sydney",
	"Texas", "Tokyo", "Toronto", "United Kingdom", "United States", "USA",
	"Vancouver", "Washington",
}

// HeuristicTagger is the dependency-free fallback: the first short line of
// capitalized words near the top is a PERSON, gazetteer hits are GPEs.
type HeuristicTagger struct {
	places []*regexp.Regexp
	names  []string
}

func NewHeuristicTagger() *HeuristicTagger {
	return NewHeuristicTaggerWithPlaces(defaultPlaces)
}

func NewHeuristicTaggerWithPlaces(places []string) *HeuristicTagger {
	t := &HeuristicTagger{}
	for _, p := range places {
		t.places = append(t.places, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
		t.names = append(t.names, p)
	}
	return t
}

func (t *HeuristicTagger) Recognize(_ context.Context, text string) ([]Entity, error) {
	var ents []Entity
	if e, ok := t.person(text); ok {
		ents = append(ents, e)
	}
	for i, re := range t.places {
		if loc := re.FindStringIndex(text); loc != nil {
			ents = append(ents, Entity{Text: t.names[i], Label: LabelGPE, Start: loc[0]})
		}
	}
	sort.SliceStable(ents, func(i, j int) bool { return ents[i].Start < ents[j].Start })
	return ents, nil
}

func (t *HeuristicTagger) person(text string) (Entity, bool) {
	offset := 0
	for i, line := range strings.Split(text, "\n") {
		start := offset
		offset += len(line) + 1
		if i >= personLineLimit {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Contains(trimmed, "@") || digitRe.MatchString(trimmed) {
			continue
		}
		if t.isPlace(trimmed) {
			continue
		}
		words := strings.Fields(trimmed)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		ok := true
		for _, w := range words {
			if !nameWordRe.MatchString(w) {
				ok = false
				break
			}
		}
		if ok {
			return Entity{Text: trimmed, Label: LabelPerson, Start: start + strings.Index(line, trimmed)}, true
		}
	}
	return Entity{}, false
}

func (t *HeuristicTagger) isPlace(line string) bool {
	for _, name := range placeWordRe.FindAllString(line, -1) {
		for _, p := range t.names {
			if strings.EqualFold(name, p) {
				return true
			}
		}
	}
	return false
}
