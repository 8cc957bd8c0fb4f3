package ner

import (
	"context"
	"regexp"
)

// Alternatives are ordered longest first; Go's leftmost-first alternation
// then prefers "Jan 2019" over the bare year inside it.
var dateRe = regexp.MustCompile(`(?i)\b(?:` +
	`\d{4}-\d{2}-\d{2}` +
	`|\d{1,2}/\d{1,2}/\d{4}` +
	`|(?:\d{1,2}\s+)?(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+\d{4}` +
	`|(?:19|20)\d{2}` +
	`)\b`)

// DateTagger tags DATE spans with a fixed set of patterns.
type DateTagger struct{}

func NewDateTagger() *DateTagger {
	return &DateTagger{}
}

func (t *DateTagger) Recognize(_ context.Context, text string) ([]Entity, error) {
	var ents []Entity
	for _, loc := range dateRe.FindAllStringIndex(text, -1) {
		ents = append(ents, Entity{
			Text:  text[loc[0]:loc[1]],
			Label: LabelDate,
			Start: loc[0],
		})
	}
	return ents, nil
}
