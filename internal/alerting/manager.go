package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/notify"
	"github.com/hamed0406/netumo/internal/probe"
	"github.com/hamed0406/netumo/internal/repo"
)

// DowntimeThreshold is the number of consecutive failed http checks required
// before a DOWNTIME alert opens. A single blip never alerts.
const DowntimeThreshold = 2

var (
	ErrNotFound        = errors.New("alert not found")
	ErrAlreadyResolved = errors.New("cannot acknowledge a resolved alert")
)

// Manager owns the alert lifecycle: opening, escalating, resolving and
// dispatching notifications. Every transition dispatches exactly once;
// dispatch failures are logged and never roll the transition back.
type Manager struct {
	log        *zap.Logger
	alerts     repo.AlertStore
	dispatcher *notify.Dispatcher
	now        func() time.Time
}

func NewManager(log *zap.Logger, alerts repo.AlertStore, dispatcher *notify.Dispatcher) *Manager {
	return &Manager{
		log:        log,
		alerts:     alerts,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ReconcileHTTP applies the availability alerting rules after one http check.
// before is the target's status prior to this check, failures the updated
// consecutive-failure count.
func (m *Manager) ReconcileHTTP(ctx context.Context, target *domain.Target, before domain.Status, out probe.HTTPOutcome, failures int) error {
	switch {
	case !out.Up && failures >= DowntimeThreshold:
		return m.openDowntime(ctx, target, out, failures)
	case out.Up && before == domain.StatusDown:
		return m.closeDowntime(ctx, target, out)
	}
	return nil
}

func (m *Manager) openDowntime(ctx context.Context, target *domain.Target, out probe.HTTPOutcome, failures int) error {
	existing, err := m.alerts.FindActive(ctx, target.ID, domain.AlertDowntime)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil // already open, keep it
	}
	alert := &domain.Alert{
		ID:          newAlertID(),
		TargetID:    target.ID,
		Type:        domain.AlertDowntime,
		Status:      domain.AlertActive,
		Message:     fmt.Sprintf("Target %s is DOWN. Consecutive failures: %d. Last HTTP status: %s.", target.URL, failures, httpStatusLabel(out.StatusCode)),
		TriggeredAt: m.now().UTC(),
		Details: map[string]any{
			"consecutiveFailures": failures,
			"httpStatus":          out.StatusCode,
			"responseTimeMs":      out.LatencyMS,
		},
	}
	if err := m.alerts.Create(ctx, alert); err != nil {
		return err
	}
	m.log.Info("downtime_alert_created",
		zap.String("target_id", string(target.ID)),
		zap.String("url", target.URL),
		zap.Int("consecutive_failures", failures),
	)
	m.dispatch(ctx, alert, target)
	return nil
}

func (m *Manager) closeDowntime(ctx context.Context, target *domain.Target, out probe.HTTPOutcome) error {
	now := m.now().UTC()

	open, err := m.alerts.FindActive(ctx, target.ID, domain.AlertDowntime)
	if err != nil {
		return err
	}
	if open != nil {
		open.Status = domain.AlertResolved
		open.ResolvedAt = &now
		open.Message = fmt.Sprintf("Target %s is back UP. Last HTTP status: %d.", target.URL, out.StatusCode)
		if err := m.alerts.Update(ctx, open); err != nil {
			return err
		}
		m.log.Info("downtime_alert_resolved",
			zap.String("target_id", string(target.ID)),
			zap.String("alert_id", string(open.ID)),
		)
		m.dispatch(ctx, open, target)
	}

	recovery := &domain.Alert{
		ID:          newAlertID(),
		TargetID:    target.ID,
		Type:        domain.AlertRecovery,
		Status:      domain.AlertResolved, // informational, born resolved
		Message:     fmt.Sprintf("Target %s has recovered and is now UP. Last HTTP status: %d.", target.URL, out.StatusCode),
		TriggeredAt: now,
		ResolvedAt:  &now,
		Details: map[string]any{
			"httpStatus":     out.StatusCode,
			"responseTimeMs": out.LatencyMS,
		},
	}
	if err := m.alerts.Create(ctx, recovery); err != nil {
		return err
	}
	m.log.Info("recovery_alert_created", zap.String("target_id", string(target.ID)))
	m.dispatch(ctx, recovery, target)
	return nil
}

// ReconcileExpiry applies the expiry alerting rules after one ssl or domain
// check. typ selects SSL_EXPIRY or DOMAIN_EXPIRY; subject is what the message
// names (the full URL for certificates, the bare hostname for registrations).
func (m *Manager) ReconcileExpiry(ctx context.Context, target *domain.Target, typ domain.AlertType, subject string, out probe.ExpiryOutcome) error {
	switch out.Status {
	case domain.ExpiryValid:
		return m.resolveExpiry(ctx, target, typ, subject)
	case domain.ExpiryExpiringSoon, domain.ExpiryExpired:
		return m.raiseExpiry(ctx, target, typ, subject, out)
	default:
		// ERROR and NA never touch the alert lifecycle
		return nil
	}
}

func (m *Manager) resolveExpiry(ctx context.Context, target *domain.Target, typ domain.AlertType, subject string) error {
	open, err := m.alerts.FindActive(ctx, target.ID, typ)
	if err != nil || open == nil {
		return err
	}
	was := "Expiring/Expired"
	if s, ok := open.Details["expiryStatus"].(string); ok && s != "" {
		was = s
	}
	now := m.now().UTC()
	open.Status = domain.AlertResolved
	open.ResolvedAt = &now
	open.Message = fmt.Sprintf("%s is now VALID. Was: %s.", expirySubject(typ, subject), was)
	if err := m.alerts.Update(ctx, open); err != nil {
		return err
	}
	m.log.Info("expiry_alert_resolved",
		zap.String("target_id", string(target.ID)),
		zap.String("type", string(typ)),
	)
	m.dispatch(ctx, open, target)
	return nil
}

func (m *Manager) raiseExpiry(ctx context.Context, target *domain.Target, typ domain.AlertType, subject string, out probe.ExpiryOutcome) error {
	msg := expiryMessage(typ, subject, out)
	details := map[string]any{
		"expiryStatus":  string(out.Status),
		"daysRemaining": out.DaysRemaining,
	}
	if out.ExpiresAt != nil {
		details["expiryDate"] = out.ExpiresAt.UTC().Format(time.RFC3339)
	}

	existing, err := m.alerts.FindActive(ctx, target.ID, typ)
	if err != nil {
		return err
	}
	if existing == nil {
		alert := &domain.Alert{
			ID:          newAlertID(),
			TargetID:    target.ID,
			Type:        typ,
			Status:      domain.AlertActive,
			Message:     msg,
			TriggeredAt: m.now().UTC(),
			Details:     details,
		}
		if err := m.alerts.Create(ctx, alert); err != nil {
			return err
		}
		m.log.Info("expiry_alert_created",
			zap.String("target_id", string(target.ID)),
			zap.String("type", string(typ)),
			zap.String("expiry_status", string(out.Status)),
		)
		m.dispatch(ctx, alert, target)
		return nil
	}

	if s, _ := existing.Details["expiryStatus"].(string); s == string(out.Status) {
		return nil // same severity, stay quiet
	}
	// severity changed, e.g. EXPIRING_SOON escalated to EXPIRED; reuse the
	// open alert instead of opening a second one
	existing.Message = msg
	for k, v := range details {
		if existing.Details == nil {
			existing.Details = map[string]any{}
		}
		existing.Details[k] = v
	}
	if err := m.alerts.Update(ctx, existing); err != nil {
		return err
	}
	m.log.Info("expiry_alert_escalated",
		zap.String("target_id", string(target.ID)),
		zap.String("type", string(typ)),
		zap.String("expiry_status", string(out.Status)),
	)
	m.dispatch(ctx, existing, target)
	return nil
}

// Acknowledge marks an open alert as seen by an operator. Resolved alerts
// cannot be acknowledged.
func (m *Manager) Acknowledge(ctx context.Context, id domain.AlertID) (*domain.Alert, error) {
	alert, err := m.alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrNotFound
	}
	if alert.Status == domain.AlertResolved {
		return nil, ErrAlreadyResolved
	}
	alert.Status = domain.AlertAcknowledged
	if err := m.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	m.log.Info("alert_acknowledged", zap.String("alert_id", string(id)))
	return alert, nil
}

func (m *Manager) dispatch(ctx context.Context, alert *domain.Alert, target *domain.Target) {
	if err := m.dispatcher.Dispatch(ctx, alert, target); err != nil {
		m.log.Warn("alert_dispatch_failed",
			zap.String("alert_id", string(alert.ID)),
			zap.Error(err),
		)
		return
	}
	now := m.now().UTC()
	if err := m.alerts.MarkNotified(ctx, alert.ID, now); err != nil {
		m.log.Warn("mark_notified_failed", zap.String("alert_id", string(alert.ID)), zap.Error(err))
	}
}

func expirySubject(typ domain.AlertType, subject string) string {
	if typ == domain.AlertDomainExpiry {
		return "Domain " + subject
	}
	return "SSL certificate for " + subject
}

func expiryMessage(typ domain.AlertType, subject string, out probe.ExpiryOutcome) string {
	date := "unknown"
	if out.ExpiresAt != nil {
		date = out.ExpiresAt.UTC().Format("Mon Jan 2 2006")
	}
	if out.Status == domain.ExpiryExpired {
		return fmt.Sprintf("%s has EXPIRED. Expired on: %s.", expirySubject(typ, subject), date)
	}
	return fmt.Sprintf("%s is expiring soon. Expires on: %s (%d days remaining).",
		expirySubject(typ, subject), date, out.DaysRemaining)
}

func httpStatusLabel(code int) string {
	if code == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", code)
}

func newAlertID() domain.AlertID {
	return domain.AlertID(uuid.Must(uuid.NewV4()).String())
}
