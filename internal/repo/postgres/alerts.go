package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo"
)

// Alerts is the pgx-backed alert store, sharing the Store's pool.
type Alerts struct {
	pool *pgxpool.Pool
}

func (s *Store) Alerts() *Alerts { return &Alerts{pool: s.pool} }

const alertCols = `id, target_id, type, status, message, triggered_at, resolved_at, last_notified_at, details`

func (a *Alerts) Create(ctx context.Context, al *domain.Alert) error {
	if al.ID == "" {
		al.ID = domain.AlertID(uuid.Must(uuid.NewV4()).String())
	}
	if al.TriggeredAt.IsZero() {
		al.TriggeredAt = time.Now().UTC()
	}
	_, err := a.pool.Exec(ctx,
		`INSERT INTO alerts (id, target_id, type, status, message, triggered_at, resolved_at, last_notified_at, details)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		al.ID, al.TargetID, al.Type, al.Status, al.Message,
		al.TriggeredAt, al.ResolvedAt, al.LastNotifiedAt, al.Details)
	return err
}

func (a *Alerts) Get(ctx context.Context, id domain.AlertID) (*domain.Alert, error) {
	row := a.pool.QueryRow(ctx, `SELECT `+alertCols+` FROM alerts WHERE id = $1`, id)
	return scanAlert(row)
}

func (a *Alerts) Update(ctx context.Context, al *domain.Alert) error {
	_, err := a.pool.Exec(ctx,
		`UPDATE alerts SET
		   status=$2, message=$3, resolved_at=$4, last_notified_at=$5, details=$6
		 WHERE id=$1`,
		al.ID, al.Status, al.Message, al.ResolvedAt, al.LastNotifiedAt, al.Details)
	return err
}

func (a *Alerts) FindActive(ctx context.Context, id domain.TargetID, typ domain.AlertType) (*domain.Alert, error) {
	row := a.pool.QueryRow(ctx,
		`SELECT `+alertCols+` FROM alerts
		  WHERE target_id=$1 AND type=$2 AND status IN ('ACTIVE','ACKNOWLEDGED')
		  ORDER BY triggered_at DESC LIMIT 1`, id, typ)
	return scanAlert(row)
}

func (a *Alerts) List(ctx context.Context, f repo.AlertFilter) ([]domain.Alert, error) {
	q := `SELECT ` + alertCols + ` FROM alerts WHERE 1=1`
	args := []any{}
	if f.TargetID != "" {
		args = append(args, f.TargetID)
		q += ` AND target_id=$` + strconv.Itoa(len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		q += ` AND type=$` + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND status=$` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY triggered_at DESC`
	return a.query(ctx, q, args...)
}

func (a *Alerts) Timeline(ctx context.Context, id domain.TargetID, since time.Time) ([]domain.Alert, error) {
	return a.query(ctx,
		`SELECT `+alertCols+` FROM alerts
		  WHERE target_id=$1 AND type IN ('DOWNTIME','RECOVERY') AND triggered_at >= $2
		  ORDER BY triggered_at ASC`, id, since)
}

func (a *Alerts) MarkNotified(ctx context.Context, id domain.AlertID, at time.Time) error {
	_, err := a.pool.Exec(ctx, `UPDATE alerts SET last_notified_at=$2 WHERE id=$1`, id, at)
	return err
}

func (a *Alerts) query(ctx context.Context, q string, args ...any) ([]domain.Alert, error) {
	rows, err := a.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Alert
	for rows.Next() {
		al, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *al)
	}
	return out, rows.Err()
}

func scanAlert(row rowScanner) (*domain.Alert, error) {
	var al domain.Alert
	err := row.Scan(&al.ID, &al.TargetID, &al.Type, &al.Status, &al.Message,
		&al.TriggeredAt, &al.ResolvedAt, &al.LastNotifiedAt, &al.Details)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &al, nil
}

var _ repo.AlertStore = (*Alerts)(nil)
