package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netumo/internal/alerting"
	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/probe"
	"github.com/hamed0406/netumo/internal/repo"
)

// HTTPProber runs one availability probe against a URL.
type HTTPProber interface {
	Check(ctx context.Context, url string) probe.HTTPOutcome
}

// ExpiryProber runs one expiry probe. The subject is a URL for certificate
// checks and a bare hostname for registration checks.
type ExpiryProber interface {
	Check(ctx context.Context, subject string) probe.ExpiryOutcome
}

// Engine executes check jobs: it loads the target, runs the right probe,
// applies the resulting field group and hands the outcome to alerting.
type Engine struct {
	log     *zap.Logger
	targets repo.TargetStore
	alerts  *alerting.Manager

	httpProber   HTTPProber
	tlsProber    ExpiryProber
	domainProber ExpiryProber

	now func() time.Time
}

func NewEngine(log *zap.Logger, targets repo.TargetStore, alerts *alerting.Manager, httpProber HTTPProber, tlsProber, domainProber ExpiryProber) *Engine {
	return &Engine{
		log:          log,
		targets:      targets,
		alerts:       alerts,
		httpProber:   httpProber,
		tlsProber:    tlsProber,
		domainProber: domainProber,
		now:          time.Now,
	}
}

// Run executes a single check job. A missing or paused target is a clean
// no-op so stale queue entries never error.
func (e *Engine) Run(ctx context.Context, job domain.CheckJob) error {
	target, err := e.targets.Get(ctx, job.TargetID)
	if err != nil {
		return err
	}
	if target == nil || !target.IsActive {
		e.log.Debug("check_skipped",
			zap.String("target_id", string(job.TargetID)),
			zap.String("kind", string(job.Kind)),
		)
		return nil
	}

	switch job.Kind {
	case domain.KindHTTP:
		return e.runHTTP(ctx, target)
	case domain.KindSSL:
		return e.runSSL(ctx, target)
	case domain.KindDomain:
		return e.runDomain(ctx, target)
	default:
		e.log.Warn("unknown_check_kind", zap.String("kind", string(job.Kind)))
		return nil
	}
}

func (e *Engine) runHTTP(ctx context.Context, target *domain.Target) error {
	// the stored status flips to CHECKING while the probe runs; transitions
	// compare against the status that preceded it
	before := target.Status
	if err := e.targets.MarkChecking(ctx, target.ID); err != nil {
		return err
	}

	out := e.httpProber.Check(ctx, target.URL)
	h := HTTPTransition(before, target.ConsecutiveFailures, out, e.now().UTC())
	if err := e.targets.ApplyHTTPHealth(ctx, target.ID, h); err != nil {
		return err
	}

	e.log.Info("http_check_completed",
		zap.String("target_id", string(target.ID)),
		zap.String("url", target.URL),
		zap.String("status", string(h.Status)),
		zap.Int("consecutive_failures", h.ConsecutiveFailures),
		zap.Float64("response_time_ms", out.LatencyMS),
	)
	return e.alerts.ReconcileHTTP(ctx, target, before, out, h.ConsecutiveFailures)
}

func (e *Engine) runSSL(ctx context.Context, target *domain.Target) error {
	now := e.now().UTC()
	if !target.IsHTTPS() {
		return e.targets.ApplyTLSHealth(ctx, target.ID, repo.ExpiryHealth{
			Status:        domain.ExpiryNA,
			LastCheckedAt: now,
		})
	}

	out := e.tlsProber.Check(ctx, target.URL)
	if err := e.targets.ApplyTLSHealth(ctx, target.ID, repo.ExpiryHealth{
		Status:        out.Status,
		ExpiresAt:     out.ExpiresAt,
		LastCheckedAt: now,
	}); err != nil {
		return err
	}

	e.log.Info("ssl_check_completed",
		zap.String("target_id", string(target.ID)),
		zap.String("url", target.URL),
		zap.String("status", string(out.Status)),
		zap.Int("days_remaining", out.DaysRemaining),
	)
	return e.alerts.ReconcileExpiry(ctx, target, domain.AlertSSLExpiry, target.URL, out)
}

func (e *Engine) runDomain(ctx context.Context, target *domain.Target) error {
	hostname := target.Hostname()
	out := e.domainProber.Check(ctx, hostname)
	if err := e.targets.ApplyDomainHealth(ctx, target.ID, repo.ExpiryHealth{
		Status:        out.Status,
		ExpiresAt:     out.ExpiresAt,
		LastCheckedAt: e.now().UTC(),
	}); err != nil {
		return err
	}

	e.log.Info("domain_check_completed",
		zap.String("target_id", string(target.ID)),
		zap.String("hostname", hostname),
		zap.String("status", string(out.Status)),
		zap.Int("days_remaining", out.DaysRemaining),
	)
	return e.alerts.ReconcileExpiry(ctx, target, domain.AlertDomainExpiry, hostname, out)
}
