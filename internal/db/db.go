// Package db provides PostgreSQL persistence for screening jobs and
// applicant records.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the jobs and applicants tables if they do not exist.
// The unique index on (job_id, email) is the final authority on duplicate
// submissions; the orchestrator's pre-check is only an optimization.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			company_id        BIGINT NOT NULL,
			title             TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			min_experience    DOUBLE PRECISION NOT NULL DEFAULT 0,
			required_skills   JSONB,
			jd_requirements   JSONB,
			status            TEXT NOT NULL DEFAULT 'pending',
			total_resumes     INTEGER NOT NULL DEFAULT 0,
			processed_resumes INTEGER NOT NULL DEFAULT 0,
			results           JSONB,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS applicants (
			id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			job_id           UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			company_id       BIGINT NOT NULL,
			name             TEXT NOT NULL DEFAULT '',
			email            TEXT NOT NULL,
			phone            TEXT NOT NULL DEFAULT '',
			resume_text      TEXT NOT NULL DEFAULT '',
			resume_pdf       BYTEA,
			years_experience INTEGER NOT NULL DEFAULT 0,
			skills           JSONB,
			match_score      INTEGER NOT NULL DEFAULT 0,
			summary          TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'rejected',
			breakdown        JSONB,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_applicants_job_email
			ON applicants (job_id, email)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
