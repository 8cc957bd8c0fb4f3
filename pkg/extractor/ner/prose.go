package ner

import (
	"context"
	"fmt"
	"sync"

	"github.com/jdkato/prose/v2"
)

var (
	modelOnce sync.Once
	model     *prose.Model
	modelErr  error
)

// loadModel builds the bundled tagging/NER model exactly once per process.
func loadModel() (*prose.Model, error) {
	modelOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				modelErr = fmt.Errorf("ner: loading model panicked: %v", r)
			}
		}()
		seed, err := prose.NewDocument("Model warm up.", prose.WithSegmentation(false))
		if err != nil {
			modelErr = fmt.Errorf("ner: loading model: %w", err)
			return
		}
		model = seed.Model
	})
	return model, modelErr
}

// ProseTagger tags PERSON and GPE spans with the prose statistical model.
type ProseTagger struct {
	model *prose.Model
}

func NewProseTagger() (*ProseTagger, error) {
	m, err := loadModel()
	if err != nil {
		return nil, err
	}
	return &ProseTagger{model: m}, nil
}

func (t *ProseTagger) Recognize(ctx context.Context, text string) (ents []Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ner: prose tagging panicked: %v", r)
		}
	}()

	doc, err := prose.NewDocument(text,
		prose.UsingModel(t.model),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}

	for _, e := range doc.Entities() {
		switch e.Label {
		case LabelPerson, LabelGPE:
			ents = append(ents, Entity{Text: e.Text, Label: e.Label})
		}
	}
	locate(text, ents)
	return ents, nil
}
