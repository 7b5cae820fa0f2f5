package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agricert/internal/application/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// Postgres persists applications in the applications table.
//
// Schema:
//
//	CREATE TABLE applications (
//	    id               UUID PRIMARY KEY,
//	    applicant_id     UUID NOT NULL,
//	    plant_type       TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    submission_count INT NOT NULL DEFAULT 0,
//	    reviewer_id      UUID,
//	    review_notes     TEXT NOT NULL DEFAULT '',
//	    rejection_reason TEXT NOT NULL DEFAULT '',
//	    version          BIGINT NOT NULL,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX applications_applicant_idx ON applications (applicant_id);
//	CREATE INDEX applications_status_idx ON applications (status);
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const applicationColumns = `id, applicant_id, plant_type, status, submission_count,
	reviewer_id, review_notes, rejection_reason, version, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, app *models.Application) error {
	app.Version = 1
	_, err := s.pool.Exec(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		app.ID.String(), app.ApplicantID.String(), app.PlantType, string(app.Status),
		app.SubmissionCount, nullableID(app.ReviewerID), app.ReviewNotes,
		app.RejectionReason, app.Version, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, appID.String())
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select application: %w", err)
	}
	return app, nil
}

// Update performs a compare-and-swap on the version column. A zero row count
// means either the application vanished or the caller held a stale version.
func (s *Postgres) Update(ctx context.Context, app *models.Application) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE applications
		SET status = $1, submission_count = $2, reviewer_id = $3, review_notes = $4,
		    rejection_reason = $5, updated_at = $6, version = version + 1
		WHERE id = $7 AND version = $8`,
		string(app.Status), app.SubmissionCount, nullableID(app.ReviewerID),
		app.ReviewNotes, app.RejectionReason, app.UpdatedAt,
		app.ID.String(), app.Version,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, app.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check application existence: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	app.Version++
	return nil
}

func (s *Postgres) List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Application, int, error) {
	page = page.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if !filters.ApplicantID.IsNil() {
		args = append(args, filters.ApplicantID.String())
		where += fmt.Sprintf(" AND applicant_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	query := `SELECT ` + applicationColumns + ` FROM applications` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, total, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app                 models.Application
		rawID, rawApplicant string
		rawStatus           string
		reviewerID          *string
	)
	err := row.Scan(&rawID, &rawApplicant, &app.PlantType, &rawStatus,
		&app.SubmissionCount, &reviewerID, &app.ReviewNotes, &app.RejectionReason,
		&app.Version, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}

	appID, err := id.ParseApplicationID(rawID)
	if err != nil {
		return nil, err
	}
	applicantID, err := id.ParseUserID(rawApplicant)
	if err != nil {
		return nil, err
	}
	app.ID = appID
	app.ApplicantID = applicantID
	app.Status = models.Status(rawStatus)
	if reviewerID != nil {
		if app.ReviewerID, err = id.ParseUserID(*reviewerID); err != nil {
			return nil, err
		}
	}
	return &app, nil
}

// nullableID maps the nil UUID to a SQL NULL so unassigned reviewers stay
// NULL instead of zero UUIDs.
func nullableID(userID id.UserID) *string {
	if userID.IsNil() {
		return nil
	}
	s := userID.String()
	return &s
}
