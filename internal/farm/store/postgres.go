package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agricert/internal/farm/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// Postgres persists farms in the farms table.
//
// Schema:
//
//	CREATE TABLE farms (
//	    id                 UUID PRIMARY KEY,
//	    owner_id           UUID NOT NULL,
//	    name               TEXT NOT NULL,
//	    province           TEXT NOT NULL DEFAULT '',
//	    district           TEXT NOT NULL DEFAULT '',
//	    address            TEXT NOT NULL DEFAULT '',
//	    status             TEXT NOT NULL,
//	    reviewer_id        UUID,
//	    verification_notes TEXT NOT NULL DEFAULT '',
//	    rejection_reason   TEXT NOT NULL DEFAULT '',
//	    verified_by        UUID,
//	    verified_at        TIMESTAMPTZ,
//	    version            BIGINT NOT NULL,
//	    created_at         TIMESTAMPTZ NOT NULL,
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX farms_owner_idx ON farms (owner_id);
//	CREATE INDEX farms_status_idx ON farms (status);
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const farmColumns = `id, owner_id, name, province, district, address, status,
	reviewer_id, verification_notes, rejection_reason, verified_by, verified_at,
	version, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, farm *models.Farm) error {
	farm.Version = 1
	_, err := s.pool.Exec(ctx, `
		INSERT INTO farms (`+farmColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		farm.ID.String(), farm.OwnerID.String(), farm.Name, farm.Province, farm.District,
		farm.Address, string(farm.Status), nullableID(farm.ReviewerID), farm.VerificationNotes,
		farm.RejectionReason, nullableID(farm.VerifiedBy), nullableTime(farm.VerifiedAt),
		farm.Version, farm.CreatedAt, farm.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert farm: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, farmID id.FarmID) (*models.Farm, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+farmColumns+` FROM farms WHERE id = $1`, farmID.String())
	farm, err := scanFarm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select farm: %w", err)
	}
	return farm, nil
}

// Update performs a compare-and-swap on the version column. A zero row count
// means either the farm vanished or the caller held a stale version.
func (s *Postgres) Update(ctx context.Context, farm *models.Farm) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE farms
		SET status = $1, reviewer_id = $2, verification_notes = $3, rejection_reason = $4,
		    verified_by = $5, verified_at = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9`,
		string(farm.Status), nullableID(farm.ReviewerID), farm.VerificationNotes,
		farm.RejectionReason, nullableID(farm.VerifiedBy), nullableTime(farm.VerifiedAt),
		farm.UpdatedAt, farm.ID.String(), farm.Version,
	)
	if err != nil {
		return fmt.Errorf("update farm: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM farms WHERE id = $1)`, farm.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check farm existence: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	farm.Version++
	return nil
}

func (s *Postgres) List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Farm, int, error) {
	page = page.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if !filters.OwnerID.IsNil() {
		args = append(args, filters.OwnerID.String())
		where += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM farms`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count farms: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	query := `SELECT ` + farmColumns + ` FROM farms` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list farms: %w", err)
	}
	defer rows.Close()

	var farms []*models.Farm
	for rows.Next() {
		farm, err := scanFarm(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan farm: %w", err)
		}
		farms = append(farms, farm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate farms: %w", err)
	}
	return farms, total, nil
}

func scanFarm(row pgx.Row) (*models.Farm, error) {
	var (
		farm                 models.Farm
		rawID, rawOwner      string
		rawStatus            string
		reviewerID, verifier *string
		verifiedAt           *time.Time
	)
	err := row.Scan(&rawID, &rawOwner, &farm.Name, &farm.Province, &farm.District,
		&farm.Address, &rawStatus, &reviewerID, &farm.VerificationNotes,
		&farm.RejectionReason, &verifier, &verifiedAt, &farm.Version,
		&farm.CreatedAt, &farm.UpdatedAt)
	if err != nil {
		return nil, err
	}

	farmID, err := id.ParseFarmID(rawID)
	if err != nil {
		return nil, err
	}
	ownerID, err := id.ParseUserID(rawOwner)
	if err != nil {
		return nil, err
	}
	farm.ID = farmID
	farm.OwnerID = ownerID
	farm.Status = models.Status(rawStatus)
	if reviewerID != nil {
		if farm.ReviewerID, err = id.ParseUserID(*reviewerID); err != nil {
			return nil, err
		}
	}
	if verifier != nil {
		if farm.VerifiedBy, err = id.ParseUserID(*verifier); err != nil {
			return nil, err
		}
	}
	if verifiedAt != nil {
		farm.VerifiedAt = *verifiedAt
	}
	return &farm, nil
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

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
