// Package extractor turns resume text into a best-effort field record.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/extractor/ner"
	"resume-management-backend/pkg/logger"
)

// ErrUnreadableDocument reports that no usable text could be obtained.
// It is distinct from individual fields being absent.
var ErrUnreadableDocument = errors.New("unreadable document")

var phoneRe = regexp.MustCompile(`(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`)

type Extractor struct {
	recognizer ner.Recognizer
	skills     []skillMatcher
}

// New builds an Extractor around a shared recognizer. The recognizer is
// expected to be created once per process.
func New(recognizer ner.Recognizer) *Extractor {
	return &Extractor{
		recognizer: recognizer,
		skills:     compileVocabulary(DefaultSkills),
	}
}

// NewWithVocabulary is New with a custom skill vocabulary, matched in order.
func NewWithVocabulary(recognizer ner.Recognizer, vocabulary []string) *Extractor {
	return &Extractor{
		recognizer: recognizer,
		skills:     compileVocabulary(vocabulary),
	}
}

func (e *Extractor) Extract(ctx context.Context, text string) (*domain.ExtractedResume, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrUnreadableDocument
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	out := &domain.ExtractedResume{
		Education: []string{},
		Skills:    []string{},
	}

	step("entities", func() {
		if e.recognizer == nil {
			return
		}
		ents, err := e.recognizer.Recognize(ctx, text)
		if err != nil {
			logger.Log.Warn("entity recognition failed", "error", err)
			return
		}
		out.Name = firstEntity(ents, ner.LabelPerson)
		out.Birthday = firstEntity(ents, ner.LabelDate)
		out.Area = firstEntity(ents, ner.LabelGPE)
	})

	step("phone", func() {
		if m := phoneRe.FindString(text); m != "" {
			out.PhoneNumber = &m
		}
	})

	step("skills", func() {
		out.Skills = e.matchSkills(text)
	})

	step("education", func() {
		if lines := section(text, educationHeadings); len(lines) > 0 {
			out.Education = lines
		}
	})

	step("experience", func() {
		if lines := section(text, experienceHeadings); len(lines) > 0 {
			block := strings.Join(lines, "\n")
			out.WorkingExp = &block
		}
	})

	return out, nil
}

// PositionTitle derives a job title from the first line of an experience
// block, e.g. "Software Engineer at Acme 2015-2020" gives "Software Engineer".
func PositionTitle(workingExp *string) *string {
	if workingExp == nil {
		return nil
	}
	first, _, _ := strings.Cut(strings.TrimSpace(*workingExp), "\n")
	if i := strings.Index(strings.ToLower(first), " at "); i >= 0 {
		first = first[:i]
	}
	first = strings.TrimSpace(strings.Trim(first, " -,|"))
	if first == "" {
		return nil
	}
	return &first
}

// step runs one extraction stage; a panic degrades that field only.
func step(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Warn("extraction step failed", "step", name, "error", fmt.Sprint(r))
		}
	}()
	fn()
}

func firstEntity(ents []ner.Entity, label string) *string {
	if v, ok := ner.First(ents, label); ok {
		return &v
	}
	return nil
}
