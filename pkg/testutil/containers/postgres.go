//go:build integration

// Package containers starts throwaway infrastructure for integration tests.
package containers

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer wraps a testcontainers Postgres instance with a ready
// pgx pool.
type PostgresContainer struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS farms (
    id                 UUID PRIMARY KEY,
    owner_id           UUID NOT NULL,
    name               TEXT NOT NULL,
    province           TEXT NOT NULL DEFAULT '',
    district           TEXT NOT NULL DEFAULT '',
    address            TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL,
    reviewer_id        UUID,
    verification_notes TEXT NOT NULL DEFAULT '',
    rejection_reason   TEXT NOT NULL DEFAULT '',
    verified_by        UUID,
    verified_at        TIMESTAMPTZ,
    version            BIGINT NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS farms_owner_idx ON farms (owner_id);
CREATE INDEX IF NOT EXISTS farms_status_idx ON farms (status);

CREATE TABLE IF NOT EXISTS applications (
    id               UUID PRIMARY KEY,
    applicant_id     UUID NOT NULL,
    plant_type       TEXT NOT NULL,
    status           TEXT NOT NULL,
    submission_count INT NOT NULL DEFAULT 0,
    reviewer_id      UUID,
    review_notes     TEXT NOT NULL DEFAULT '',
    rejection_reason TEXT NOT NULL DEFAULT '',
    version          BIGINT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_applicant_idx ON applications (applicant_id);
CREATE INDEX IF NOT EXISTS applications_status_idx ON applications (status);

CREATE TABLE IF NOT EXISTS certificates (
    id                UUID PRIMARY KEY,
    number            TEXT NOT NULL UNIQUE,
    owner_id          UUID NOT NULL,
    farm_id           UUID NOT NULL,
    cert_type         TEXT NOT NULL,
    status            TEXT NOT NULL,
    issue_date        TIMESTAMPTZ NOT NULL,
    expiry_date       TIMESTAMPTZ NOT NULL,
    issued_by         UUID NOT NULL,
    revoked_by        UUID,
    revocation_reason TEXT NOT NULL DEFAULT '',
    revoked_at        TIMESTAMPTZ,
    version           BIGINT NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS certificates_owner_idx ON certificates (owner_id);
CREATE INDEX IF NOT EXISTS certificates_farm_idx ON certificates (farm_id);

CREATE TABLE IF NOT EXISTS staff (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    role       TEXT NOT NULL,
    version    BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("agricert"),
		tcpostgres.WithUsername("agricert"),
		tcpostgres.WithPassword("agricert"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, Pool: pool}
	t.Cleanup(func() {
		pc.Pool.Close()
		_ = pc.Container.Terminate(context.Background())
	})
	return pc
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
