package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/apperror"
	"resume-management-backend/pkg/blobstore"
	"resume-management-backend/pkg/extractor"
	"resume-management-backend/pkg/logger"
	"resume-management-backend/pkg/security"
	"resume-management-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const pdfDataURIPrefix = "data:application/pdf;base64,"

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// FieldExtractor turns plain text into a best-effort field record.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (*domain.ExtractedResume, error)
}

type ResumeLimits struct {
	MaxUploadBytes int64
	MaxPageSize    int
}

type resumeUsecase struct {
	repo     domain.ResumeRepository
	blobs    blobstore.Store
	text     TextExtractor
	fields   FieldExtractor
	validate *validator.Validate
	limits   ResumeLimits
}

func NewResumeUsecase(
	repo domain.ResumeRepository,
	blobs blobstore.Store,
	text TextExtractor,
	fields FieldExtractor,
	validate *validator.Validate,
	limits ResumeLimits,
) domain.ResumeUsecase {
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = 16 << 20
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = 100
	}
	return &resumeUsecase{
		repo:     repo,
		blobs:    blobs,
		text:     text,
		fields:   fields,
		validate: validate,
		limits:   limits,
	}
}

// Upload stores the blob first. If extraction then fails the blob is kept
// and no rows are written.
func (u *resumeUsecase) Upload(ctx context.Context, r io.Reader, filename string, operator, ownerID *string) (*domain.UploadResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperror.BadRequest("No file provided")
	}
	if err := security.ValidateFileExtension(filename); err != nil {
		return nil, apperror.New(http.StatusBadRequest, apperror.KindValidation, "Only PDF files are allowed", err)
	}

	data, err := io.ReadAll(io.LimitReader(r, u.limits.MaxUploadBytes+1))
	if err != nil {
		return nil, apperror.BadRequest("Failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("Uploaded file is empty")
	}
	if int64(len(data)) > u.limits.MaxUploadBytes {
		return nil, apperror.New(http.StatusRequestEntityTooLarge, apperror.KindValidation,
			fmt.Sprintf("File exceeds the %d byte limit", u.limits.MaxUploadBytes), nil)
	}
	if err := security.ValidatePDF(filename, data); err != nil {
		return nil, apperror.New(http.StatusBadRequest, apperror.KindValidation, "File content is not a valid PDF", err)
	}

	ref, err := u.blobs.Put(ctx, data, ".pdf")
	if err != nil {
		return nil, apperror.Storage(err)
	}

	fields, err := u.extract(ctx, data)
	if err != nil {
		logger.Log.Warn("Extraction failed, blob kept", "resume_url", ref, "error", err)
		return nil, err
	}

	detail, err := u.repo.Create(ctx, fields, ref, operator, ownerID)
	if err != nil {
		return nil, err
	}

	result := &domain.UploadResult{
		Resume: &domain.ResumeAggregate{
			ResumeDetail: *detail,
			Positions:    []domain.Position{},
			Skills:       []domain.Skill{},
		},
	}

	// The parent's normalized birthday is passed down so every row of this
	// upload carries the same date.
	position, err := u.repo.AddPosition(ctx, detail.ID, detail.Name, detail.Birthday, extractor.PositionTitle(fields.WorkingExp))
	if err != nil {
		// Listings inner-join on positions, so a detail without one would be unreachable.
		if _, cleanupErr := u.repo.DeleteTree(ctx, detail.ID); cleanupErr != nil {
			logger.Log.Warn("Failed to remove orphaned resume", "resume_id", detail.ID, "error", cleanupErr)
		}
		return nil, err
	}
	result.Resume.Positions = append(result.Resume.Positions, *position)

	skills := make([]*string, 0, len(fields.Skills))
	for i := range fields.Skills {
		skills = append(skills, &fields.Skills[i])
	}
	if len(skills) == 0 {
		// A single NULL skill row marks "no skills detected"
		skills = append(skills, nil)
	}

	for _, name := range skills {
		skill, err := u.repo.AddSkill(ctx, detail.ID, name, detail.Name, detail.Birthday)
		if err != nil {
			subject := "<none>"
			if name != nil {
				subject = *name
			}
			logger.Log.Warn("Failed to save skill", "resume_id", detail.ID, "skill", subject, "error", err)
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				Step:    "add_skill",
				Subject: subject,
				Error:   err.Error(),
			})
			continue
		}
		result.Resume.Skills = append(result.Resume.Skills, *skill)
	}

	logger.Log.Info("Resume uploaded", "resume_id", detail.ID, "skills", len(result.Resume.Skills), "diagnostics", len(result.Diagnostics))
	return result, nil
}

func (u *resumeUsecase) GetAggregate(ctx context.Context, id string, includePDF bool) (*domain.ResumeAggregate, error) {
	agg, err := u.repo.FetchAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includePDF {
		return agg, nil
	}

	data, err := u.loadBlob(ctx, agg.ResumeURL)
	if err != nil {
		return nil, err
	}
	agg.PDFBase64 = pdfDataURIPrefix + base64.StdEncoding.EncodeToString(data)
	return agg, nil
}

func (u *resumeUsecase) GetBlob(ctx context.Context, id string) ([]byte, error) {
	ref, err := u.repo.FetchBlobReference(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.loadBlob(ctx, ref)
}

// ListPaginated reports an empty page as NotFound rather than an empty list.
func (u *resumeUsecase) ListPaginated(ctx context.Context, page, pageSize int) ([]domain.ResumeListItem, error) {
	if page < 1 || pageSize < 1 {
		return nil, apperror.BadRequest("Invalid page or page_size")
	}
	if pageSize > u.limits.MaxPageSize {
		return nil, apperror.BadRequest(fmt.Sprintf("page_size must not exceed %d", u.limits.MaxPageSize))
	}

	if page > (math.MaxInt-1)/pageSize+1 {
		return nil, apperror.BadRequest("page is out of range")
	}

	items, err := u.repo.ListPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.NotFound("No resumes found")
	}
	return items, nil
}

// Remove deletes the rows, then the blob. A failed blob delete is reported
// in the diagnostics only; the rows stay deleted.
func (u *resumeUsecase) Remove(ctx context.Context, id string) (*domain.RemoveResult, error) {
	ref, err := u.repo.DeleteTree(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &domain.RemoveResult{ResumeID: id}
	if err := u.blobs.Delete(ctx, ref); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		logger.Log.Warn("Failed to remove resume file", "resume_id", id, "resume_url", ref, "error", err)
		result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
			Step:    "delete_blob",
			Subject: ref,
			Error:   err.Error(),
		})
	}
	return result, nil
}

// Update applies a loosely-typed patch. Unknown keys are ignored.
func (u *resumeUsecase) Update(ctx context.Context, id string, raw map[string]any) (*domain.ResumeAggregate, error) {
	patch, positions, skills, err := splitPatch(raw)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() && positions == nil && skills == nil {
		return nil, apperror.BadRequest("No updatable fields supplied")
	}
	if u.validate != nil {
		if err := u.validate.Struct(patch); err != nil {
			return nil, apperror.New(http.StatusBadRequest, apperror.KindValidation,
				strings.Join(validation.FormatValidationErrors(err), "; "), err)
		}
	}

	var patchArg *domain.ResumePatch
	if !patch.IsEmpty() {
		patchArg = patch
	}
	return u.repo.UpdatePartial(ctx, id, patchArg, positions, skills)
}

// Rescan re-runs extraction on the stored document without saving anything.
func (u *resumeUsecase) Rescan(ctx context.Context, id string) (*domain.ExtractedResume, error) {
	data, err := u.GetBlob(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.extract(ctx, data)
}

func (u *resumeUsecase) extract(ctx context.Context, data []byte) (*domain.ExtractedResume, error) {
	text, err := u.text.ExtractText(ctx, data)
	if err != nil {
		return nil, apperror.Extraction(err)
	}
	fields, err := u.fields.Extract(ctx, text)
	if err != nil {
		return nil, apperror.Extraction(err)
	}
	return fields, nil
}

func (u *resumeUsecase) loadBlob(ctx context.Context, ref string) ([]byte, error) {
	data, err := u.blobs.Get(ctx, ref)
	if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, blobstore.ErrInvalidReference) {
		return nil, apperror.NotFound("Resume file not found")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return data, nil
}

// splitPatch separates allow-listed detail fields from the child collections.
// A null value is treated as absent.
func splitPatch(raw map[string]any) (*domain.ResumePatch, *[]string, *[]*string, error) {
	patch := &domain.ResumePatch{}
	targets := map[string]**string{
		"name":         &patch.Name,
		"phone_number": &patch.PhoneNumber,
		"birthday":     &patch.Birthday,
		"working_exp":  &patch.WorkingExp,
		"area":         &patch.Area,
		"resume_url":   &patch.ResumeURL,
		"operator":     &patch.Operator,
	}
	for key, dst := range targets {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, nil, nil, apperror.BadRequest(key + " must be a string")
		}
		*dst = &s
	}

	if v, ok := raw["education"]; ok && v != nil {
		lines, err := educationLines(v)
		if err != nil {
			return nil, nil, nil, err
		}
		patch.Education = &lines
	}

	var positions *[]string
	if list, ok := raw["positions"].([]any); ok {
		titles := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, nil, nil, apperror.BadRequest("positions must be an array of strings")
			}
			titles = append(titles, s)
		}
		positions = &titles
	}

	var skills *[]*string
	if list, ok := raw["skills"].([]any); ok {
		names := make([]*string, 0, len(list))
		for _, item := range list {
			switch s := item.(type) {
			case nil:
				names = append(names, nil)
			case string:
				names = append(names, &s)
			default:
				return nil, nil, nil, apperror.BadRequest("skills must be an array of strings")
			}
		}
		skills = &names
	}

	return patch, positions, skills, nil
}

// educationLines accepts a JSON array of strings, a string holding such an
// array, or a single free-text entry.
func educationLines(v any) ([]string, error) {
	switch e := v.(type) {
	case []any:
		lines := make([]string, 0, len(e))
		for _, item := range e {
			s, ok := item.(string)
			if !ok {
				return nil, apperror.BadRequest("education must be an array of strings")
			}
			lines = append(lines, s)
		}
		return lines, nil
	case string:
		var lines []string
		if err := json.Unmarshal([]byte(e), &lines); err == nil {
			return lines, nil
		}
		if strings.TrimSpace(e) == "" {
			return []string{}, nil
		}
		return []string{e}, nil
	default:
		return nil, apperror.BadRequest("education must be an array of strings")
	}
}
