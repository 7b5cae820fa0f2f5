package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agricert/internal/certificate/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// Postgres persists certificates in the certificates table.
//
// Schema:
//
//	CREATE TABLE certificates (
//	    id                UUID PRIMARY KEY,
//	    number            TEXT NOT NULL UNIQUE,
//	    owner_id          UUID NOT NULL,
//	    farm_id           UUID NOT NULL,
//	    cert_type         TEXT NOT NULL,
//	    status            TEXT NOT NULL,
//	    issue_date        TIMESTAMPTZ NOT NULL,
//	    expiry_date       TIMESTAMPTZ NOT NULL,
//	    issued_by         UUID NOT NULL,
//	    revoked_by        UUID,
//	    revocation_reason TEXT NOT NULL DEFAULT '',
//	    revoked_at        TIMESTAMPTZ,
//	    version           BIGINT NOT NULL,
//	    created_at        TIMESTAMPTZ NOT NULL,
//	    updated_at        TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX certificates_owner_idx ON certificates (owner_id);
//	CREATE INDEX certificates_farm_idx ON certificates (farm_id);
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const certificateColumns = `id, number, owner_id, farm_id, cert_type, status,
	issue_date, expiry_date, issued_by, revoked_by, revocation_reason, revoked_at,
	version, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, cert *models.Certificate) error {
	cert.Version = 1
	_, err := s.pool.Exec(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		cert.ID.String(), cert.Number, cert.OwnerID.String(), cert.FarmID.String(),
		cert.Type, string(cert.Status), cert.IssueDate, cert.ExpiryDate,
		cert.IssuedBy.String(), nullableID(cert.RevokedBy), cert.RevocationReason,
		nullableTime(cert.RevokedAt), cert.Version, cert.CreatedAt, cert.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE id = $1`, certID.String())
	return s.scanOne(row, "select certificate")
}

func (s *Postgres) FindByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE number = $1`, number)
	return s.scanOne(row, "select certificate by number")
}

func (s *Postgres) scanOne(row pgx.Row, op string) (*models.Certificate, error) {
	cert, err := scanCertificate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cert, nil
}

// Update performs a compare-and-swap on the version column. A zero row count
// means either the certificate vanished or the caller held a stale version.
func (s *Postgres) Update(ctx context.Context, cert *models.Certificate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE certificates
		SET status = $1, revoked_by = $2, revocation_reason = $3, revoked_at = $4,
		    updated_at = $5, version = version + 1
		WHERE id = $6 AND version = $7`,
		string(cert.Status), nullableID(cert.RevokedBy), cert.RevocationReason,
		nullableTime(cert.RevokedAt), cert.UpdatedAt, cert.ID.String(), cert.Version,
	)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM certificates WHERE id = $1)`, cert.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check certificate existence: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	cert.Version++
	return nil
}

func (s *Postgres) List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Certificate, int, error) {
	page = page.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if !filters.OwnerID.IsNil() {
		args = append(args, filters.OwnerID.String())
		where += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if !filters.FarmID.IsNil() {
		args = append(args, filters.FarmID.String())
		where += fmt.Sprintf(" AND farm_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM certificates`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count certificates: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	query := `SELECT ` + certificateColumns + ` FROM certificates` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var certs []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, total, nil
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	var (
		cert                          models.Certificate
		rawID, rawOwner, rawFarm      string
		rawStatus, rawIssuer          string
		revokedBy                     *string
		revokedAt                     *time.Time
	)
	err := row.Scan(&rawID, &cert.Number, &rawOwner, &rawFarm, &cert.Type, &rawStatus,
		&cert.IssueDate, &cert.ExpiryDate, &rawIssuer, &revokedBy, &cert.RevocationReason,
		&revokedAt, &cert.Version, &cert.CreatedAt, &cert.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if cert.ID, err = id.ParseCertificateID(rawID); err != nil {
		return nil, err
	}
	if cert.OwnerID, err = id.ParseUserID(rawOwner); err != nil {
		return nil, err
	}
	if cert.FarmID, err = id.ParseFarmID(rawFarm); err != nil {
		return nil, err
	}
	if cert.IssuedBy, err = id.ParseUserID(rawIssuer); err != nil {
		return nil, err
	}
	cert.Status = models.Status(rawStatus)
	if revokedBy != nil {
		if cert.RevokedBy, err = id.ParseUserID(*revokedBy); err != nil {
			return nil, err
		}
	}
	if revokedAt != nil {
		cert.RevokedAt = *revokedAt
	}
	return &cert, nil
}

// nullableID maps the nil UUID to a SQL NULL so unrevoked certificates keep a
// NULL actor column.
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
