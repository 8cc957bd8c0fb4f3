// Package ner provides the named-entity recognition used by the resume
// field extractor. Recognizers are built once per process and shared; every
// implementation here is safe for concurrent use after construction.
package ner

import (
	"context"
	"sort"
	"strings"

	"resume-management-backend/pkg/logger"
)

// Entity labels understood by the extractor.
const (
	LabelPerson = "PERSON"
	LabelDate   = "DATE"
	LabelGPE    = "GPE" // geo-political entity
)

// Entity is a labelled span of the input text. Start is the byte offset of
// Text in the input, or -1 when the tagger could not locate it.
type Entity struct {
	Text  string
	Label string
	Start int
}

type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Pipeline runs several recognizers and merges their output in document
// order. A failing stage is logged and skipped so the others still count.
type Pipeline struct {
	stages []Recognizer
}

func NewPipeline(stages ...Recognizer) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Recognize(ctx context.Context, text string) ([]Entity, error) {
	var all []Entity
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ents, err := stage.Recognize(ctx, text)
		if err != nil {
			logger.Log.Warn("ner stage failed", "stage", stageName(stage), "error", err)
			continue
		}
		all = append(all, ents...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return position(all[i]) < position(all[j])
	})
	return all, nil
}

// NewDefault builds the process-wide recognizer: the statistical model for
// people and places when it loads, the rule-based tagger otherwise, plus the
// regex date tagger.
func NewDefault() Recognizer {
	var entities Recognizer
	prose, err := NewProseTagger()
	if err != nil {
		logger.Log.Warn("ner model unavailable, using heuristic tagger", "error", err)
		entities = NewHeuristicTagger()
	} else {
		entities = prose
	}
	return NewPipeline(entities, NewDateTagger())
}

// First returns the text of the first entity with the given label.
func First(ents []Entity, label string) (string, bool) {
	for _, e := range ents {
		if e.Label == label && strings.TrimSpace(e.Text) != "" {
			return strings.TrimSpace(e.Text), true
		}
	}
	return "", false
}

func position(e Entity) int {
	if e.Start < 0 {
		return int(^uint(0) >> 1)
	}
	return e.Start
}

func stageName(r Recognizer) string {
	switch r.(type) {
	case *ProseTagger:
		return "prose"
	case *HeuristicTagger:
		return "heuristic"
	case *DateTagger:
		return "date"
	default:
		return "custom"
	}
}

// locate finds the offsets of each entity text in order of appearance,
// starting each search after the previous hit of the same text.
func locate(text string, ents []Entity) {
	cursor := map[string]int{}
	for i := range ents {
		from := cursor[ents[i].Text]
		idx := strings.Index(text[from:], ents[i].Text)
		if idx < 0 {
			ents[i].Start = -1
			continue
		}
		ents[i].Start = from + idx
		cursor[ents[i].Text] = from + idx + len(ents[i].Text)
	}
}
