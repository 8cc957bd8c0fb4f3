package domain

import (
	"context"
	"io"
	"time"
)

// ResumeDetail is the aggregate root persisted in resume_detail.
// Education holds the stored JSON array text, e.g. `["BSc Physics 2010"]`.
type ResumeDetail struct {
	ID          string    `json:"resume_id"`
	Name        *string   `json:"name"`
	PhoneNumber *string   `json:"phone_number"`
	Birthday    *string   `json:"birthday"` // YYYY-MM-DD
	WorkingExp  *string   `json:"working_exp"`
	Education   *string   `json:"education"`
	Area        *string   `json:"area"`
	ResumeURL   string    `json:"resume_url"`
	Operator    *string   `json:"operator"`
	UserID      *string   `json:"user_id"`
	CreatedAt   time.Time `json:"gmt_create"`
	UpdatedAt   time.Time `json:"gmt_modify"`
}

// Position and Skill carry copies of the parent's name and birthday for
// display. The parent's values win whenever they disagree.
type Position struct {
	ID           string  `json:"position_id"`
	ResumeID     string  `json:"-"`
	PositionName *string `json:"position_name"`
	Name         *string `json:"name"`
	Birthday     *string `json:"birthday"`
}

// Skill with a nil SkillName is the "no skills detected" placeholder.
type Skill struct {
	ID        string  `json:"skill_id"`
	ResumeID  string  `json:"-"`
	SkillName *string `json:"skill_name"`
	Name      *string `json:"name"`
	Birthday  *string `json:"birthday"`
}

type ResumeAggregate struct {
	ResumeDetail
	Positions []Position `json:"positions"`
	Skills    []Skill    `json:"skills"`
	PDFBase64 string     `json:"pdf_base64,omitempty"`
}

// ResumeListItem is one row of the paginated listing: one per resume/position pair.
type ResumeListItem struct {
	ResumeID     string    `json:"resume_id"`
	Name         *string   `json:"name"`
	Operator     *string   `json:"operator"`
	PositionName *string   `json:"position_name"`
	CreatedAt    time.Time `json:"gmt_create"`
	UpdatedAt    time.Time `json:"gmt_modify"`
}

// ExtractedResume is the best-effort field record produced from document text.
// Birthday is the raw date expression; it is normalized on write.
type ExtractedResume struct {
	Name        *string  `json:"name"`
	PhoneNumber *string  `json:"phone_number"`
	Birthday    *string  `json:"birthday"`
	Area        *string  `json:"area"`
	Education   []string `json:"education"`
	WorkingExp  *string  `json:"working_exp"`
	Skills      []string `json:"skills"`
}

// ResumePatch lists the detail columns a partial update may touch.
// A nil field is left as is.
type ResumePatch struct {
	Name        *string   `json:"name" validate:"omitempty,max=255,no_emoji"`
	PhoneNumber *string   `json:"phone_number" validate:"omitempty,valid_phone"`
	Birthday    *string   `json:"birthday" validate:"omitempty,max=64"`
	WorkingExp  *string   `json:"working_exp"`
	Education   *[]string `json:"education" validate:"omitempty,dive,max=500"`
	Area        *string   `json:"area" validate:"omitempty,max=255"`
	ResumeURL   *string   `json:"resume_url" validate:"omitempty,max=1024"`
	Operator    *string   `json:"operator" validate:"omitempty,max=255"`
}

func (p *ResumePatch) IsEmpty() bool {
	return p == nil || (p.Name == nil && p.PhoneNumber == nil && p.Birthday == nil &&
		p.WorkingExp == nil && p.Education == nil && p.Area == nil &&
		p.ResumeURL == nil && p.Operator == nil)
}

// Diagnostic records a best-effort step that failed without failing the operation.
type Diagnostic struct {
	Step    string `json:"step"`
	Subject string `json:"subject,omitempty"`
	Error   string `json:"error"`
}

type UploadResult struct {
	Resume      *ResumeAggregate `json:"resume"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

type RemoveResult struct {
	ResumeID    string       `json:"resume_id"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type ResumeRepository interface {
	Create(ctx context.Context, fields *ExtractedResume, blobRef string, operator, ownerID *string) (*ResumeDetail, error)
	AddPosition(ctx context.Context, resumeID string, name, birthdayExpr, title *string) (*Position, error)
	AddSkill(ctx context.Context, resumeID string, skillName, name, birthdayExpr *string) (*Skill, error)
	FetchAggregate(ctx context.Context, id string) (*ResumeAggregate, error)
	FetchBlobReference(ctx context.Context, id string) (string, error)
	ListPage(ctx context.Context, offset, limit int) ([]ResumeListItem, error)
	// UpdatePartial replaces a child collection only when its pointer is non-nil;
	// an empty slice clears it.
	UpdatePartial(ctx context.Context, id string, patch *ResumePatch, positions *[]string, skills *[]*string) (*ResumeAggregate, error)
	// DeleteTree returns the blob reference of the removed resume.
	DeleteTree(ctx context.Context, id string) (string, error)
}

type ResumeUsecase interface {
	Upload(ctx context.Context, r io.Reader, filename string, operator, ownerID *string) (*UploadResult, error)
	GetAggregate(ctx context.Context, id string, includePDF bool) (*ResumeAggregate, error)
	GetBlob(ctx context.Context, id string) ([]byte, error)
	ListPaginated(ctx context.Context, page, pageSize int) ([]ResumeListItem, error)
	Remove(ctx context.Context, id string) (*RemoveResult, error)
	Update(ctx context.Context, id string, patch map[string]any) (*ResumeAggregate, error)
	Rescan(ctx context.Context, id string) (*ExtractedResume, error)
}
