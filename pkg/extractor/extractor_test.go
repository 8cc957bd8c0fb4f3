package extractor_test

import (
	"context"
	"errors"
	"testing"

	"resume-management-backend/pkg/extractor"
	"resume-management-backend/pkg/extractor/ner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, text string) ([]ner.Entity, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ner.Entity), args.Error(1)
}

type panickingRecognizer struct{}

func (panickingRecognizer) Recognize(context.Context, string) ([]ner.Entity, error) {
	panic("tagger blew up")
}

const sampleResume = "John Smith\n555-123-4567\nEducation\nBSc Computer Science 2015\n\nExperience\nSoftware Engineer at Acme 2015-2020"

func TestExtract_SampleResume(t *testing.T) {
	recognizer := ner.NewPipeline(ner.NewHeuristicTagger(), ner.NewDateTagger())
	ex := extractor.New(recognizer)

	got, err := ex.Extract(context.Background(), sampleResume)
	require.NoError(t, err)

	require.NotNil(t, got.Name)
	assert.Equal(t, "John Smith", *got.Name)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, "555-123-4567", *got.PhoneNumber)
	assert.Equal(t, []string{"BSc Computer Science 2015"}, got.Education)
	require.NotNil(t, got.WorkingExp)
	assert.Equal(t, "Software Engineer at Acme 2015-2020", *got.WorkingExp)
	assert.Empty(t, got.Skills)
	assert.NotNil(t, got.Skills)
	assert.Nil(t, got.Area)
}

func TestExtract_BlankTextIsUnreadable(t *testing.T) {
	ex := extractor.New(ner.NewDateTagger())

	for _, text := range []string{"", "   ", "\n\t\n"} {
		got, err := ex.Extract(context.Background(), text)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, extractor.ErrUnreadableDocument)
	}
}

func TestExtract_FirstEntityWins(t *testing.T) {
	ctx := context.Background()
	text := "some resume text"

	rec := new(MockRecognizer)
	rec.On("Recognize", ctx, text).Return([]ner.Entity{
		{Text: "Alice Doe", Label: ner.LabelPerson, Start: 0},
		{Text: "1990-01-02", Label: ner.LabelDate, Start: 10},
		{Text: "Bob Roe", Label: ner.LabelPerson, Start: 20},
		{Text: "Toronto", Label: ner.LabelGPE, Start: 30},
		{Text: "Berlin", Label: ner.LabelGPE, Start: 40},
	}, nil)

	got, err := extractor.New(rec).Extract(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", *got.Name)
	assert.Equal(t, "1990-01-02", *got.Birthday)
	assert.Equal(t, "Toronto", *got.Area)
	rec.AssertExpectations(t)
}

func TestExtract_FailingStepsDegradeOnlyTheirFields(t *testing.T) {
	ctx := context.Background()
	text := "Python and SQL\n(555) 123-4567"

	rec := new(MockRecognizer)
	rec.On("Recognize", ctx, text).Return(nil, errors.New("model unavailable"))

	got, err := extractor.New(rec).Extract(ctx, text)
	require.NoError(t, err)
	assert.Nil(t, got.Name)
	assert.Equal(t, "(555) 123-4567", *got.PhoneNumber)
	assert.Equal(t, []string{"Python", "SQL"}, got.Skills)

	got, err = extractor.New(panickingRecognizer{}).Extract(ctx, text)
	require.NoError(t, err)
	assert.Nil(t, got.Name)
	assert.Equal(t, []string{"Python", "SQL"}, got.Skills)
}

func TestExtract_SkillsFollowVocabularyOrder(t *testing.T) {
	text := "Built services in docker, KUBERNETES and python.\nSome javascript and C++ too."
	got, err := extractor.New(nil).Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "JavaScript", "C++", "Docker", "Kubernetes"}, got.Skills)
}

func TestExtract_SkillsAreWholeWords(t *testing.T) {
	ex := extractor.NewWithVocabulary(nil, []string{"Java", "SQL", "C++"})

	got, err := ex.Extract(context.Background(), "JavaScript and NoSQLish stores, C++11")
	require.NoError(t, err)
	assert.Empty(t, got.Skills)

	got, err = ex.Extract(context.Background(), "java, sql; c++")
	require.NoError(t, err)
	assert.Equal(t, []string{"Java", "SQL", "C++"}, got.Skills)
}

func TestExtract_Sections(t *testing.T) {
	text := "Jane Doe\n\nWORK HISTORY:\nEngineer at Foo\nIntern at Bar\nEducation:\nMSc Maths\nBSc Maths\nSkills\nGolang"

	got, err := extractor.New(nil).Extract(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSc Maths", "BSc Maths"}, got.Education)
	require.NotNil(t, got.WorkingExp)
	assert.Equal(t, "Engineer at Foo\nIntern at Bar", *got.WorkingExp)
}

func TestExtract_MissingSectionsAreEmpty(t *testing.T) {
	got, err := extractor.New(nil).Extract(context.Background(), "Just a line of text")
	require.NoError(t, err)
	assert.Empty(t, got.Education)
	assert.Nil(t, got.WorkingExp)
	assert.Nil(t, got.PhoneNumber)
}

func TestPositionTitle(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Nil(t, extractor.PositionTitle(nil))
	assert.Nil(t, extractor.PositionTitle(s("  ")))
	assert.Equal(t, "Software Engineer", *extractor.PositionTitle(s("Software Engineer at Acme 2015-2020\nIntern")))
	assert.Equal(t, "Data Analyst", *extractor.PositionTitle(s("Data Analyst")))
}

func TestPDFTextExtractor_RejectsGarbage(t *testing.T) {
	_, err := extractor.NewPDFTextExtractor().ExtractText(context.Background(), []byte("not a pdf at all"))
	assert.ErrorIs(t, err, extractor.ErrUnreadableDocument)
}
