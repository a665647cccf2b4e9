package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo"
)

const targetCols = `id, url, name, notification_email, notification_webhook_url,
	is_active, check_interval_minutes, status, last_checked_at, last_status_change_at,
	consecutive_failures, http_status, response_time_ms,
	ssl_status, ssl_expires_at, ssl_last_checked_at,
	domain_status, domain_expires_at, domain_last_checked_at,
	created_at, updated_at`

func (s *Store) Create(ctx context.Context, t *domain.Target) error {
	if t.ID == "" {
		t.ID = domain.TargetID(uuid.Must(uuid.NewV4()).String())
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = domain.StatusUnknown
	}
	if t.SSLStatus == "" {
		t.SSLStatus = domain.ExpiryUnchecked
	}
	if t.DomainStatus == "" {
		t.DomainStatus = domain.ExpiryUnchecked
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO targets
		   (id, url, name, notification_email, notification_webhook_url,
		    is_active, check_interval_minutes, status, ssl_status, domain_status,
		    created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.URL, t.Name, t.NotificationEmail, t.NotificationWebhookURL,
		t.IsActive, t.CheckIntervalMinutes, t.Status, t.SSLStatus, t.DomainStatus,
		t.CreatedAt, t.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repo.ErrDuplicateURL
	}
	return err
}

func (s *Store) Get(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+targetCols+` FROM targets WHERE id = $1`, id)
	return scanTarget(row)
}

func (s *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+targetCols+` FROM targets WHERE url = $1`, url)
	return scanTarget(row)
}

func (s *Store) List(ctx context.Context) ([]domain.Target, error) {
	return s.list(ctx, `SELECT `+targetCols+` FROM targets ORDER BY created_at DESC`)
}

func (s *Store) ListActive(ctx context.Context) ([]domain.Target, error) {
	return s.list(ctx, `SELECT `+targetCols+` FROM targets WHERE is_active ORDER BY created_at DESC`)
}

func (s *Store) list(ctx context.Context, q string) ([]domain.Target, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id domain.TargetID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM targets WHERE id = $1`, id)
	return err
}

func (s *Store) SetActive(ctx context.Context, id domain.TargetID, active bool) error {
	// reactivation clears the paused marker; the next check decides UP/DOWN
	q := `UPDATE targets SET is_active=$2,
	        status=(CASE WHEN status='PAUSED' THEN 'UNKNOWN' ELSE status END),
	        updated_at=now() WHERE id=$1`
	if !active {
		q = `UPDATE targets SET is_active=$2, status='PAUSED', updated_at=now() WHERE id=$1`
	}
	_, err := s.pool.Exec(ctx, q, id, active)
	return err
}

func (s *Store) SetInterval(ctx context.Context, id domain.TargetID, minutes int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE targets SET check_interval_minutes=$2, updated_at=now() WHERE id=$1`, id, minutes)
	return err
}

func (s *Store) MarkChecking(ctx context.Context, id domain.TargetID) error {
	_, err := s.pool.Exec(ctx, `UPDATE targets SET status='CHECKING' WHERE id=$1`, id)
	return err
}

// ApplyHTTPHealth writes only the http field group; ssl/domain columns are
// never touched here so concurrent checks of other kinds stay isolated.
func (s *Store) ApplyHTTPHealth(ctx context.Context, id domain.TargetID, h repo.HTTPHealth) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE targets SET
		   status=$2, consecutive_failures=$3, http_status=$4, response_time_ms=$5,
		   last_checked_at=$6,
		   last_status_change_at=COALESCE($7, last_status_change_at),
		   updated_at=now()
		 WHERE id=$1`,
		id, h.Status, h.ConsecutiveFailures, h.HTTPStatus, h.ResponseTimeMS,
		h.LastCheckedAt, h.LastStatusChangeAt)
	return err
}

func (s *Store) ApplyTLSHealth(ctx context.Context, id domain.TargetID, h repo.ExpiryHealth) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE targets SET
		   ssl_status=$2,
		   ssl_expires_at=COALESCE($3, ssl_expires_at),
		   ssl_last_checked_at=$4,
		   updated_at=now()
		 WHERE id=$1`,
		id, h.Status, h.ExpiresAt, h.LastCheckedAt)
	return err
}

func (s *Store) ApplyDomainHealth(ctx context.Context, id domain.TargetID, h repo.ExpiryHealth) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE targets SET
		   domain_status=$2,
		   domain_expires_at=COALESCE($3, domain_expires_at),
		   domain_last_checked_at=$4,
		   updated_at=now()
		 WHERE id=$1`,
		id, h.Status, h.ExpiresAt, h.LastCheckedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*domain.Target, error) {
	var t domain.Target
	err := row.Scan(
		&t.ID, &t.URL, &t.Name, &t.NotificationEmail, &t.NotificationWebhookURL,
		&t.IsActive, &t.CheckIntervalMinutes, &t.Status, &t.LastCheckedAt, &t.LastStatusChangeAt,
		&t.ConsecutiveFailures, &t.HTTPStatus, &t.ResponseTimeMS,
		&t.SSLStatus, &t.SSLExpiresAt, &t.SSLLastCheckedAt,
		&t.DomainStatus, &t.DomainExpiresAt, &t.DomainLastCheckedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

var _ repo.TargetStore = (*Store)(nil)
