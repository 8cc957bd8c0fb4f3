package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/apperror"
	"resume-management-backend/pkg/dateparse"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type resumeRepository struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepository{db: db}
}

const detailColumns = `resume_id, name, phone_number, birthday, working_exp, education,
	area, resume_url, operator, user_id, gmt_create, gmt_modify`

func (r *resumeRepository) Create(ctx context.Context, fields *domain.ExtractedResume, blobRef string, operator, ownerID *string) (*domain.ResumeDetail, error) {
	if fields == nil {
		fields = &domain.ExtractedResume{}
	}
	education, err := encodeEducation(fields.Education)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	birthday := dateparse.FormatISO(dateparse.NormalizePtr(fields.Birthday))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO resume_detail
		(resume_id, name, phone_number, birthday, working_exp, education, area, resume_url, operator, user_id)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)
		RETURNING ` + detailColumns

	detail, err := scanDetail(tx.QueryRow(ctx, query,
		uuid.NewString(), fields.Name, fields.PhoneNumber, birthday, fields.WorkingExp,
		education, fields.Area, blobRef, operator, ownerID,
	))
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("insert resume_detail: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	return detail, nil
}

func (r *resumeRepository) AddPosition(ctx context.Context, resumeID string, name, birthdayExpr, title *string) (*domain.Position, error) {
	if err := validateID(resumeID); err != nil {
		return nil, err
	}
	birthday := dateparse.FormatISO(dateparse.NormalizePtr(birthdayExpr))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO position (position_id, resume_id, position_name, name, birthday, sort_order)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text, $5::date, COALESCE(MAX(sort_order) + 1, 0)
		FROM position WHERE resume_id = $2::uuid
		RETURNING position_id, resume_id, position_name, name, birthday`

	var p domain.Position
	var bday *time.Time
	err = tx.QueryRow(ctx, query, uuid.NewString(), resumeID, title, name, birthday).Scan(
		&p.ID, &p.ResumeID, &p.PositionName, &p.Name, &bday,
	)
	if err != nil {
		return nil, childInsertError("position", err)
	}
	p.Birthday = dateparse.FormatISO(bday)

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	return &p, nil
}

func (r *resumeRepository) AddSkill(ctx context.Context, resumeID string, skillName, name, birthdayExpr *string) (*domain.Skill, error) {
	if err := validateID(resumeID); err != nil {
		return nil, err
	}
	birthday := dateparse.FormatISO(dateparse.NormalizePtr(birthdayExpr))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO skill (skill_id, resume_id, skill_name, name, birthday, sort_order)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text, $5::date, COALESCE(MAX(sort_order) + 1, 0)
		FROM skill WHERE resume_id = $2::uuid
		RETURNING skill_id, resume_id, skill_name, name, birthday`

	var s domain.Skill
	var bday *time.Time
	err = tx.QueryRow(ctx, query, uuid.NewString(), resumeID, skillName, name, birthday).Scan(
		&s.ID, &s.ResumeID, &s.SkillName, &s.Name, &bday,
	)
	if err != nil {
		return nil, childInsertError("skill", err)
	}
	s.Birthday = dateparse.FormatISO(bday)

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	return &s, nil
}

func (r *resumeRepository) FetchAggregate(ctx context.Context, id string) (*domain.ResumeAggregate, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	// One snapshot for the detail row and both child tables
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer tx.Rollback(ctx)

	agg, err := loadAggregate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	return agg, nil
}

func (r *resumeRepository) FetchBlobReference(ctx context.Context, id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	var ref string
	err := r.db.QueryRow(ctx, `SELECT resume_url FROM resume_detail WHERE resume_id = $1`, id).Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperror.NotFound("Resume not found")
	}
	if err != nil {
		return "", apperror.Storage(err)
	}
	return ref, nil
}

// ListPage inner-joins position, so resumes without a position row are not listed.
func (r *resumeRepository) ListPage(ctx context.Context, offset, limit int) ([]domain.ResumeListItem, error) {
	query := `
		SELECT d.resume_id, d.name, d.operator, p.position_name, d.gmt_create, d.gmt_modify
		FROM resume_detail d
		JOIN position p ON p.resume_id = d.resume_id
		ORDER BY d.gmt_create DESC, d.resume_id, p.sort_order
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer rows.Close()

	items := []domain.ResumeListItem{}
	for rows.Next() {
		var it domain.ResumeListItem
		if err := rows.Scan(&it.ResumeID, &it.Name, &it.Operator, &it.PositionName, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, apperror.Storage(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(err)
	}
	return items, nil
}

func (r *resumeRepository) UpdatePartial(ctx context.Context, id string, patch *domain.ResumePatch, positions *[]string, skills *[]*string) (*domain.ResumeAggregate, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer tx.Rollback(ctx)

	// Lock the row so concurrent updates and deletes serialize
	var name *string
	var bday *time.Time
	err = tx.QueryRow(ctx, `SELECT name, birthday FROM resume_detail WHERE resume_id = $1 FOR UPDATE`, id).
		Scan(&name, &bday)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("Resume not found")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}

	if !patch.IsEmpty() {
		sets, args, err := patchAssignments(patch)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE resume_detail SET %s, gmt_modify = GREATEST(now(), gmt_create)
			WHERE resume_id = $%d RETURNING name, birthday`, strings.Join(sets, ", "), len(args))
		if err := tx.QueryRow(ctx, query, args...).Scan(&name, &bday); err != nil {
			return nil, apperror.Storage(fmt.Errorf("update resume_detail: %w", err))
		}
	}

	// Children take the parent's current values
	birthday := dateparse.FormatISO(bday)

	if positions != nil {
		titles := make([]sql.NullString, len(*positions))
		for i, t := range *positions {
			titles[i] = sql.NullString{String: t, Valid: true}
		}
		if err := replaceChildren(ctx, tx, "position", "position_id", "position_name", id, name, birthday, titles); err != nil {
			return nil, err
		}
	}

	if skills != nil {
		names := make([]sql.NullString, len(*skills))
		for i, s := range *skills {
			if s != nil {
				names[i] = sql.NullString{String: *s, Valid: true}
			}
		}
		if err := replaceChildren(ctx, tx, "skill", "skill_id", "skill_name", id, name, birthday, names); err != nil {
			return nil, err
		}
	}

	agg, err := loadAggregate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	return agg, nil
}

// DeleteTree removes skills, then positions, then the detail row.
func (r *resumeRepository) DeleteTree(ctx context.Context, id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", apperror.Storage(err)
	}
	defer tx.Rollback(ctx)

	var ref string
	err = tx.QueryRow(ctx, `SELECT resume_url FROM resume_detail WHERE resume_id = $1 FOR UPDATE`, id).Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperror.NotFound("Resume not found")
	}
	if err != nil {
		return "", apperror.Storage(err)
	}

	for _, stmt := range []string{
		`DELETE FROM skill WHERE resume_id = $1`,
		`DELETE FROM position WHERE resume_id = $1`,
		`DELETE FROM resume_detail WHERE resume_id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return "", apperror.Storage(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", apperror.Storage(err)
	}
	return ref, nil
}

// replaceChildren deletes every row of table for the resume and inserts one
// row per value, preserving input order. NULL values are kept as NULL.
func replaceChildren(ctx context.Context, q querier, table, idCol, valueCol, resumeID string, name, birthday *string, values []sql.NullString) error {
	if _, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE resume_id = $1`, table), resumeID); err != nil {
		return apperror.Storage(fmt.Errorf("clear %s: %w", table, err))
	}
	if len(values) == 0 {
		return nil
	}

	ids := make([]string, len(values))
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, resume_id, %s, name, birthday, sort_order)
		SELECT u.id, $1::uuid, u.value, $2::text, $3::date, u.ord - 1
		FROM unnest($4::uuid[], $5::text[]) WITH ORDINALITY AS u(id, value, ord)`,
		table, idCol, valueCol)

	if _, err := q.Exec(ctx, query, resumeID, name, birthday, pq.Array(ids), pq.Array(values)); err != nil {
		return apperror.Storage(fmt.Errorf("insert %s: %w", table, err))
	}
	return nil
}

func loadAggregate(ctx context.Context, q querier, id string) (*domain.ResumeAggregate, error) {
	detail, err := scanDetail(q.QueryRow(ctx, `SELECT `+detailColumns+` FROM resume_detail WHERE resume_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("Resume not found")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}

	agg := &domain.ResumeAggregate{
		ResumeDetail: *detail,
		Positions:    []domain.Position{},
		Skills:       []domain.Skill{},
	}

	rows, err := q.Query(ctx, `SELECT position_id, resume_id, position_name, name, birthday
		FROM position WHERE resume_id = $1 ORDER BY sort_order, position_id`, id)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	for rows.Next() {
		var p domain.Position
		var bday *time.Time
		if err := rows.Scan(&p.ID, &p.ResumeID, &p.PositionName, &p.Name, &bday); err != nil {
			rows.Close()
			return nil, apperror.Storage(err)
		}
		p.Birthday = dateparse.FormatISO(bday)
		agg.Positions = append(agg.Positions, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(err)
	}

	rows, err = q.Query(ctx, `SELECT skill_id, resume_id, skill_name, name, birthday
		FROM skill WHERE resume_id = $1 ORDER BY sort_order, skill_id`, id)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.Skill
		var bday *time.Time
		if err := rows.Scan(&s.ID, &s.ResumeID, &s.SkillName, &s.Name, &bday); err != nil {
			return nil, apperror.Storage(err)
		}
		s.Birthday = dateparse.FormatISO(bday)
		agg.Skills = append(agg.Skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(err)
	}

	return agg, nil
}

func scanDetail(row pgx.Row) (*domain.ResumeDetail, error) {
	var d domain.ResumeDetail
	var bday *time.Time
	err := row.Scan(
		&d.ID, &d.Name, &d.PhoneNumber, &bday, &d.WorkingExp, &d.Education,
		&d.Area, &d.ResumeURL, &d.Operator, &d.UserID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Birthday = dateparse.FormatISO(bday)
	return &d, nil
}

// patchAssignments builds "col = $n" fragments for every non-nil patch field.
func patchAssignments(p *domain.ResumePatch) ([]string, []any, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.PhoneNumber != nil {
		add("phone_number", *p.PhoneNumber)
	}
	if p.Birthday != nil {
		// An unparseable expression clears the column
		args = append(args, dateparse.FormatISO(dateparse.Normalize(*p.Birthday)))
		sets = append(sets, fmt.Sprintf("birthday = $%d::date", len(args)))
	}
	if p.WorkingExp != nil {
		add("working_exp", *p.WorkingExp)
	}
	if p.Education != nil {
		education, err := encodeEducation(*p.Education)
		if err != nil {
			return nil, nil, err
		}
		add("education", education)
	}
	if p.Area != nil {
		add("area", *p.Area)
	}
	if p.ResumeURL != nil {
		add("resume_url", *p.ResumeURL)
	}
	if p.Operator != nil {
		add("operator", *p.Operator)
	}
	return sets, args, nil
}

func encodeEducation(lines []string) (string, error) {
	if lines == nil {
		lines = []string{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.BadRequest("Invalid resume id")
	}
	return nil
}

// childInsertError reports a missing parent as NotFound rather than a storage fault.
func childInsertError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperror.NotFound("Resume not found")
	}
	return apperror.Storage(fmt.Errorf("insert %s: %w", table, err))
}
