package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/waterpoints-service/internal/domain"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Store implements report persistence and issue-type lookup on PostgreSQL.
type Store struct {
	pool    Pool
	closeFn func()
}

const (
	listIssueTypesSQL = `SELECT id, value, label FROM issue_types ORDER BY id`
	listReportsSQL    = `SELECT id, created_at, waterpunt_id, issue_type, description, status FROM reports ORDER BY created_at DESC`
	insertReportSQL   = `INSERT INTO reports (waterpunt_id, issue_type, description) VALUES ($1, $2, $3) RETURNING id, created_at, waterpunt_id, issue_type, description, status`
)

const migration = `
CREATE TABLE IF NOT EXISTS issue_types (
	id    BIGSERIAL PRIMARY KEY,
	value TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	waterpunt_id TEXT NOT NULL,
	issue_type   TEXT NOT NULL,
	description  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'open'
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_waterpunt_id ON reports(waterpunt_id);

INSERT INTO issue_types (value, label) VALUES
	('leak', 'Lek'),
	('broken', 'Defect'),
	('dirty', 'Vuil'),
	('other', 'Andere')
ON CONFLICT (value) DO NOTHING;
`

// New creates a Store with a lazily connecting pool. Use Ping to check
// connectivity; an unreachable database is not fatal at startup.
func New(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 5
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &Store{pool: pool, closeFn: pool.Close}, nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

// Migrate creates the tables and seeds the default issue types.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// ListIssueTypes implements catalog.IssueTypeSource.
func (s *Store) ListIssueTypes(ctx context.Context) ([]domain.IssueType, error) {
	rows, err := s.pool.Query(ctx, listIssueTypesSQL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list issue types")
	}
	defer rows.Close()

	var out []domain.IssueType
	for rows.Next() {
		var it domain.IssueType
		if err := rows.Scan(&it.ID, &it.Value, &it.Label); err != nil {
			return nil, eris.Wrap(err, "postgres: scan issue type")
		}
		out = append(out, it)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate issue types")
}

// ListReports returns all reports, newest first.
func (s *Store) ListReports(ctx context.Context) ([]domain.Report, error) {
	rows, err := s.pool.Query(ctx, listReportsSQL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var r domain.Report
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.WaterpuntID, &r.IssueType, &r.Description, &r.Status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reports")
}

// InsertReport stores one report. Every call inserts a new row.
func (s *Store) InsertReport(ctx context.Context, in domain.NewReport) (domain.Report, error) {
	var r domain.Report
	err := s.pool.QueryRow(ctx, insertReportSQL, in.WaterpuntID, in.IssueType, in.Description).
		Scan(&r.ID, &r.CreatedAt, &r.WaterpuntID, &r.IssueType, &r.Description, &r.Status)
	if err != nil {
		return domain.Report{}, eris.Wrap(err, "postgres: insert report")
	}
	return r, nil
}
