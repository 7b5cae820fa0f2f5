package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agricert/internal/authz"
	"agricert/internal/staff/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// Postgres persists staff in the staff table.
//
// Schema:
//
//	CREATE TABLE staff (
//	    id         UUID PRIMARY KEY,
//	    name       TEXT NOT NULL,
//	    email      TEXT NOT NULL UNIQUE,
//	    role       TEXT NOT NULL,
//	    version    BIGINT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const staffColumns = `id, name, email, role, version, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, member *models.Staff) error {
	member.Version = 1
	_, err := s.pool.Exec(ctx, `
		INSERT INTO staff (`+staffColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		member.ID.String(), member.Name, member.Email, string(member.Role),
		member.Version, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, staffID id.UserID) (*models.Staff, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, staffID.String())
	member, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select staff: %w", err)
	}
	return member, nil
}

// Update performs a compare-and-swap on the version column.
func (s *Postgres) Update(ctx context.Context, member *models.Staff) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE staff
		SET name = $1, email = $2, role = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6`,
		member.Name, member.Email, string(member.Role), member.UpdatedAt,
		member.ID.String(), member.Version,
	)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staff WHERE id = $1)`, member.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check staff existence: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	member.Version++
	return nil
}

func scanStaff(row pgx.Row) (*models.Staff, error) {
	var (
		member  models.Staff
		rawID   string
		rawRole string
	)
	err := row.Scan(&rawID, &member.Name, &member.Email, &rawRole,
		&member.Version, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return nil, err
	}

	staffID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	member.ID = staffID
	member.Role = authz.Role(rawRole)
	return &member, nil
}
