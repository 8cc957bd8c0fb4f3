package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"resume-management-backend/internal/domain"
	"resume-management-backend/internal/usecase"
	"resume-management-backend/pkg/apperror"
	"resume-management-backend/pkg/auth"
	"resume-management-backend/pkg/blobstore"
	"resume-management-backend/pkg/extractor"
	"resume-management-backend/pkg/extractor/ner"
	"resume-management-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) Create(ctx context.Context, fields *domain.ExtractedResume, blobRef string, operator, ownerID *string) (*domain.ResumeDetail, error) {
	args := m.Called(ctx, fields, blobRef, operator, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeDetail), args.Error(1)
}

func (m *MockResumeRepo) AddPosition(ctx context.Context, resumeID string, name, birthdayExpr, title *string) (*domain.Position, error) {
	args := m.Called(ctx, resumeID, name, birthdayExpr, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Position), args.Error(1)
}

func (m *MockResumeRepo) AddSkill(ctx context.Context, resumeID string, skillName, name, birthdayExpr *string) (*domain.Skill, error) {
	args := m.Called(ctx, resumeID, skillName, name, birthdayExpr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockResumeRepo) FetchAggregate(ctx context.Context, id string) (*domain.ResumeAggregate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeAggregate), args.Error(1)
}

func (m *MockResumeRepo) FetchBlobReference(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockResumeRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.ResumeListItem, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResumeListItem), args.Error(1)
}

func (m *MockResumeRepo) UpdatePartial(ctx context.Context, id string, patch *domain.ResumePatch, positions *[]string, skills *[]*string) (*domain.ResumeAggregate, error) {
	args := m.Called(ctx, id, patch, positions, skills)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeAggregate), args.Error(1)
}

func (m *MockResumeRepo) DeleteTree(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, data []byte, ext string) (string, error) {
	args := m.Called(ctx, data, ext)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const (
	resumeID   = "0b8c6f3e-54a1-4c1f-8d0e-2a1b3c4d5e6f"
	blobRef    = "resumes/0b8c6f3e.pdf"
	sampleText = "John Smith\n555-123-4567\nEducation\nBSc Computer Science 2015\n\nExperience\nSoftware Engineer at Acme 2015-2020"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func str(s string) *string { return &s }

type fixture struct {
	repo  *MockResumeRepo
	blobs *MockBlobStore
	text  *MockTextExtractor
	uc    domain.ResumeUsecase
}

func newFixture() *fixture {
	f := &fixture{
		repo:  new(MockResumeRepo),
		blobs: new(MockBlobStore),
		text:  new(MockTextExtractor),
	}
	fields := extractor.New(ner.NewPipeline(ner.NewHeuristicTagger(), ner.NewDateTagger()))
	f.uc = usecase.NewResumeUsecase(f.repo, f.blobs, f.text, fields, validation.New(),
		usecase.ResumeLimits{MaxUploadBytes: 1024, MaxPageSize: 100})
	return f
}

func (f *fixture) assertAll(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.blobs.AssertExpectations(t)
	f.text.AssertExpectations(t)
}

func TestUpload_SampleResumeGetsPlaceholderSkill(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	operator := str("ops@example.com")

	detail := &domain.ResumeDetail{ID: resumeID, Name: str("John Smith"), Birthday: str("2015-01-01"), ResumeURL: blobRef}

	f.blobs.On("Put", ctx, pdfBytes, ".pdf").Return(blobRef, nil)
	f.text.On("ExtractText", ctx, pdfBytes).Return(sampleText, nil)
	f.repo.On("Create", ctx, mock.MatchedBy(func(x *domain.ExtractedResume) bool {
		return *x.Name == "John Smith" &&
			*x.PhoneNumber == "555-123-4567" &&
			len(x.Education) == 1 && x.Education[0] == "BSc Computer Science 2015" &&
			len(x.Skills) == 0
	}), blobRef, operator, (*string)(nil)).Return(detail, nil)
	f.repo.On("AddPosition", ctx, resumeID, detail.Name, detail.Birthday, str("Software Engineer")).
		Return(&domain.Position{ID: "p1", PositionName: str("Software Engineer")}, nil)
	f.repo.On("AddSkill", ctx, resumeID, (*string)(nil), detail.Name, detail.Birthday).
		Return(&domain.Skill{ID: "s1"}, nil).Once()

	res, err := f.uc.Upload(ctx, bytes.NewReader(pdfBytes), "resume.pdf", operator, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Resume.Skills, 1)
	assert.Nil(t, res.Resume.Skills[0].SkillName)
	require.Len(t, res.Resume.Positions, 1)
	f.assertAll(t)
}

func TestUpload_SkillFailuresAreRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	text := "Ada Lovelace\nPython, SQL and Docker"
	detail := &domain.ResumeDetail{ID: resumeID, Name: str("Ada Lovelace"), ResumeURL: blobRef}

	f.blobs.On("Put", ctx, pdfBytes, ".pdf").Return(blobRef, nil)
	f.text.On("ExtractText", ctx, pdfBytes).Return(text, nil)
	f.repo.On("Create", ctx, mock.Anything, blobRef, (*string)(nil), (*string)(nil)).Return(detail, nil)
	f.repo.On("AddPosition", ctx, resumeID, detail.Name, detail.Birthday, (*string)(nil)).
		Return(&domain.Position{ID: "p1"}, nil)
	f.repo.On("AddSkill", ctx, resumeID, str("Python"), detail.Name, detail.Birthday).Return(&domain.Skill{ID: "s1", SkillName: str("Python")}, nil)
	f.repo.On("AddSkill", ctx, resumeID, str("SQL"), detail.Name, detail.Birthday).Return(nil, apperror.Storage(errors.New("disk full")))
	f.repo.On("AddSkill", ctx, resumeID, str("Docker"), detail.Name, detail.Birthday).Return(&domain.Skill{ID: "s3", SkillName: str("Docker")}, nil)

	res, err := f.uc.Upload(ctx, bytes.NewReader(pdfBytes), "cv.PDF", nil, nil)
	require.NoError(t, err)
	assert.Len(t, res.Resume.Skills, 2)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "add_skill", res.Diagnostics[0].Step)
	assert.Equal(t, "SQL", res.Diagnostics[0].Subject)
	f.assertAll(t)
}

func TestUpload_RejectsBeforeStorage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		data     []byte
		code     int
	}{
		{"docx", "resume.docx", pdfBytes, 400},
		{"no name", "  ", pdfBytes, 400},
		{"empty file", "resume.pdf", nil, 400},
		{"not a pdf", "resume.pdf", []byte("PK\x03\x04 zipped word file"), 400},
		{"too large", "resume.pdf", append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), 2048)...), 413},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.Upload(ctx, bytes.NewReader(tt.data), tt.filename, nil, nil)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			f.blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpload_UnreadableDocumentKeepsBlob(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.blobs.On("Put", ctx, pdfBytes, ".pdf").Return(blobRef, nil)
	f.text.On("ExtractText", ctx, pdfBytes).Return("", extractor.ErrUnreadableDocument)

	_, err := f.uc.Upload(ctx, bytes.NewReader(pdfBytes), "resume.pdf", nil, nil)
	assert.True(t, apperror.Is(err, apperror.KindExtraction))
	assert.ErrorIs(t, err, extractor.ErrUnreadableDocument)
	f.blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestUpload_PositionFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	detail := &domain.ResumeDetail{ID: resumeID, ResumeURL: blobRef}

	f.blobs.On("Put", ctx, pdfBytes, ".pdf").Return(blobRef, nil)
	f.text.On("ExtractText", ctx, pdfBytes).Return("some text", nil)
	f.repo.On("Create", ctx, mock.Anything, blobRef, (*string)(nil), (*string)(nil)).Return(detail, nil)
	f.repo.On("AddPosition", ctx, resumeID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperror.Storage(errors.New("connection reset")))

	f.repo.On("DeleteTree", ctx, resumeID).Return(blobRef, nil)

	_, err := f.uc.Upload(ctx, bytes.NewReader(pdfBytes), "resume.pdf", nil, nil)
	assert.True(t, apperror.Is(err, apperror.KindStorage))
	f.repo.AssertNotCalled(t, "AddSkill", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertCalled(t, "DeleteTree", ctx, resumeID)
}

func TestGetAggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("without pdf", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FetchAggregate", ctx, resumeID).Return(&domain.ResumeAggregate{ResumeDetail: domain.ResumeDetail{ID: resumeID, ResumeURL: blobRef}}, nil)

		agg, err := f.uc.GetAggregate(ctx, resumeID, false)
		require.NoError(t, err)
		assert.Empty(t, agg.PDFBase64)
		f.blobs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("with pdf", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FetchAggregate", ctx, resumeID).Return(&domain.ResumeAggregate{ResumeDetail: domain.ResumeDetail{ID: resumeID, ResumeURL: blobRef}}, nil)
		f.blobs.On("Get", ctx, blobRef).Return([]byte("%PDF"), nil)

		agg, err := f.uc.GetAggregate(ctx, resumeID, true)
		require.NoError(t, err)
		assert.Equal(t, "data:application/pdf;base64,JVBERg==", agg.PDFBase64)
	})

	t.Run("referenced blob missing", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FetchAggregate", ctx, resumeID).Return(&domain.ResumeAggregate{ResumeDetail: domain.ResumeDetail{ID: resumeID, ResumeURL: blobRef}}, nil)
		f.blobs.On("Get", ctx, blobRef).Return(nil, blobstore.ErrNotFound)

		_, err := f.uc.GetAggregate(ctx, resumeID, true)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("resume missing", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FetchAggregate", ctx, resumeID).Return(nil, apperror.NotFound("Resume not found"))

		_, err := f.uc.GetAggregate(ctx, resumeID, true)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}

func TestListPaginated(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid parameters", func(t *testing.T) {
		f := newFixture()
		for _, p := range [][2]int{{0, 10}, {1, 0}, {-1, 5}, {1, 101}} {
			_, err := f.uc.ListPaginated(ctx, p[0], p[1])
			assert.True(t, apperror.Is(err, apperror.KindValidation), "%v", p)
		}
		f.repo.AssertNotCalled(t, "ListPage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("offset overflow is rejected", func(t *testing.T) {
		f := newFixture()
		for _, p := range [][2]int{{math.MaxInt / 50, 100}, {math.MaxInt, 2}, {math.MaxInt/10 + 2, 10}} {
			_, err := f.uc.ListPaginated(ctx, p[0], p[1])
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr, "%v", p)
			assert.Equal(t, 400, appErr.Code)
		}
		f.repo.AssertNotCalled(t, "ListPage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("last addressable page", func(t *testing.T) {
		f := newFixture()
		items := []domain.ResumeListItem{{ResumeID: resumeID}}
		f.repo.On("ListPage", ctx, math.MaxInt-1, 1).Return(items, nil)

		got, err := f.uc.ListPaginated(ctx, math.MaxInt, 1)
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("empty page is not found", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ListPage", ctx, 0, 100).Return([]domain.ResumeListItem{}, nil)

		_, err := f.uc.ListPaginated(ctx, 1, 100)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("offset from page", func(t *testing.T) {
		f := newFixture()
		items := []domain.ResumeListItem{{ResumeID: resumeID}}
		f.repo.On("ListPage", ctx, 20, 10).Return(items, nil)

		got, err := f.uc.ListPaginated(ctx, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("blob failure is reported not raised", func(t *testing.T) {
		f := newFixture()
		f.repo.On("DeleteTree", ctx, resumeID).Return(blobRef, nil)
		f.blobs.On("Delete", ctx, blobRef).Return(errors.New("permission denied"))

		res, err := f.uc.Remove(ctx, resumeID)
		require.NoError(t, err)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, "delete_blob", res.Diagnostics[0].Step)
	})

	t.Run("missing blob is ignored", func(t *testing.T) {
		f := newFixture()
		f.repo.On("DeleteTree", ctx, resumeID).Return(blobRef, nil)
		f.blobs.On("Delete", ctx, blobRef).Return(blobstore.ErrNotFound)

		res, err := f.uc.Remove(ctx, resumeID)
		require.NoError(t, err)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.repo.On("DeleteTree", ctx, resumeID).Return("", apperror.NotFound("Resume not found"))

		_, err := f.uc.Remove(ctx, resumeID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
		f.blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("area and skills", func(t *testing.T) {
		f := newFixture()
		want := &domain.ResumeAggregate{ResumeDetail: domain.ResumeDetail{ID: resumeID}}
		f.repo.On("UpdatePartial", ctx, resumeID,
			mock.MatchedBy(func(p *domain.ResumePatch) bool {
				return p != nil && *p.Area == "Berlin" && p.Name == nil && p.PhoneNumber == nil && p.Birthday == nil
			}),
			(*[]string)(nil),
			mock.MatchedBy(func(s *[]*string) bool {
				return s != nil && len(*s) == 2 && *(*s)[0] == "python" && *(*s)[1] == "sql"
			}),
		).Return(want, nil)

		got, err := f.uc.Update(ctx, resumeID, map[string]any{
			"area":    "Berlin",
			"skills":  []any{"python", "sql"},
			"unknown": "ignored",
		})
		require.NoError(t, err)
		assert.Same(t, want, got)
		f.assertAll(t)
	})

	t.Run("collections only", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdatePartial", ctx, resumeID, (*domain.ResumePatch)(nil),
			mock.MatchedBy(func(p *[]string) bool { return p != nil && len(*p) == 0 }),
			(*[]*string)(nil),
		).Return(&domain.ResumeAggregate{}, nil)

		_, err := f.uc.Update(ctx, resumeID, map[string]any{"positions": []any{}})
		require.NoError(t, err)
		f.assertAll(t)
	})

	t.Run("education accepts list or string", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdatePartial", ctx, resumeID,
			mock.MatchedBy(func(p *domain.ResumePatch) bool {
				return p.Education != nil && len(*p.Education) == 1 && (*p.Education)[0] == "MSc Physics"
			}),
			(*[]string)(nil), (*[]*string)(nil),
		).Return(&domain.ResumeAggregate{}, nil).Twice()

		_, err := f.uc.Update(ctx, resumeID, map[string]any{"education": []any{"MSc Physics"}})
		require.NoError(t, err)
		_, err = f.uc.Update(ctx, resumeID, map[string]any{"education": "MSc Physics"})
		require.NoError(t, err)
		f.assertAll(t)
	})

	t.Run("nothing recognized", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Update(ctx, resumeID, map[string]any{"favourite_colour": "blue", "name": nil})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
		f.repo.AssertNotCalled(t, "UpdatePartial", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid values", func(t *testing.T) {
		f := newFixture()
		for _, patch := range []map[string]any{
			{"name": 42},
			{"phone_number": "call me maybe"},
			{"positions": []any{"ok", 3}},
			{"skills": []any{true}},
		} {
			_, err := f.uc.Update(ctx, resumeID, patch)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "%v", patch)
		}
		f.repo.AssertNotCalled(t, "UpdatePartial", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRescan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("FetchBlobReference", ctx, resumeID).Return(blobRef, nil)
	f.blobs.On("Get", ctx, blobRef).Return(pdfBytes, nil)
	f.text.On("ExtractText", ctx, pdfBytes).Return(sampleText, nil)

	got, err := f.uc.Rescan(ctx, resumeID)
	require.NoError(t, err)
	assert.Equal(t, "555-123-4567", *got.PhoneNumber)
	f.repo.AssertNotCalled(t, "UpdatePartial", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestAuthUsecase_Register(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenIssuer("secret", time.Hour)

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", ctx, "ada@example.com").Return(&domain.User{ID: "u1"}, nil)

		uc := usecase.NewAuthUsecase(repo, tokens)
		_, err := uc.Register(ctx, &domain.RegisterRequest{Username: "ada", Email: " Ada@Example.com ", Password: "password1"})
		assert.True(t, apperror.Is(err, apperror.KindConflict))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("success hashes password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", ctx, "ada@example.com").Return(nil, apperror.NotFound("User not found"))
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ada@example.com" && auth.CheckPassword(u.PasswordHash, "password1")
		})).Return(nil)

		uc := usecase.NewAuthUsecase(repo, tokens)
		user, err := uc.Register(ctx, &domain.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "password1"})
		require.NoError(t, err)
		assert.Equal(t, "ada", user.Username)
		repo.AssertExpectations(t)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	hash, err := auth.HashPassword("password1")
	require.NoError(t, err)

	repo := new(MockUserRepo)
	repo.On("GetByEmail", ctx, "ada@example.com").Return(&domain.User{ID: "u1", Email: "ada@example.com", PasswordHash: hash}, nil)
	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperror.NotFound("User not found"))
	uc := usecase.NewAuthUsecase(repo, tokens)

	resp, err := uc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	_, err = uc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	_, err = uc.Login(ctx, &domain.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestHealthUsecase(t *testing.T) {
	ok := usecase.PingFunc(func(context.Context) error { return nil })
	down := usecase.PingFunc(func(context.Context) error { return errors.New("down") })

	status, healthy := usecase.NewHealthUsecase(map[string]usecase.Pinger{"database": ok, "redis": nil}).Check(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, "disabled", status["redis"])

	status, healthy = usecase.NewHealthUsecase(map[string]usecase.Pinger{"database": down}).Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "degraded", status["status"])
	assert.True(t, strings.Contains(status["database"], "unavailable"))
}
