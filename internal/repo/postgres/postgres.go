package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the pgx-backed persistence layer. One pool serves both the target
// and alert stores.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pctx); err != nil {
		p.Close()
		return nil, err
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// EnsureSchema creates the tables and indexes if they do not exist. The
// partial unique index is what enforces "one open alert per (target, type)"
// at the storage layer.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS targets (
    id                       TEXT PRIMARY KEY,
    url                      TEXT NOT NULL UNIQUE,
    name                     TEXT NOT NULL DEFAULT '',
    notification_email       TEXT NOT NULL DEFAULT '',
    notification_webhook_url TEXT NOT NULL DEFAULT '',
    is_active                BOOLEAN NOT NULL DEFAULT TRUE,
    check_interval_minutes   INT NOT NULL DEFAULT 5,
    status                   TEXT NOT NULL DEFAULT 'UNKNOWN',
    last_checked_at          TIMESTAMPTZ,
    last_status_change_at    TIMESTAMPTZ,
    consecutive_failures     INT NOT NULL DEFAULT 0,
    http_status              INT,
    response_time_ms         DOUBLE PRECISION,
    ssl_status               TEXT NOT NULL DEFAULT 'UNCHECKED',
    ssl_expires_at           TIMESTAMPTZ,
    ssl_last_checked_at      TIMESTAMPTZ,
    domain_status            TEXT NOT NULL DEFAULT 'UNCHECKED',
    domain_expires_at        TIMESTAMPTZ,
    domain_last_checked_at   TIMESTAMPTZ,
    created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS alerts (
    id               TEXT PRIMARY KEY,
    target_id        TEXT NOT NULL REFERENCES targets(id) ON DELETE CASCADE,
    type             TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'ACTIVE',
    message          TEXT NOT NULL DEFAULT '',
    triggered_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    resolved_at      TIMESTAMPTZ,
    last_notified_at TIMESTAMPTZ,
    details          JSONB
);

CREATE INDEX IF NOT EXISTS alerts_target_type_idx ON alerts (target_id, type, status);

CREATE UNIQUE INDEX IF NOT EXISTS alerts_one_open_idx
    ON alerts (target_id, type)
    WHERE status IN ('ACTIVE', 'ACKNOWLEDGED') AND type <> 'RECOVERY';
`
