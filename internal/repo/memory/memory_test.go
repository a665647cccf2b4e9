package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo"
)

func TestTargetCreateAndDefaults(t *testing.T) {
	ctx := context.Background()
	s := New()

	tg := &domain.Target{URL: "https://example.com", IsActive: true, CheckIntervalMinutes: 5}
	if err := s.Create(ctx, tg); err != nil {
		t.Fatal(err)
	}
	if tg.ID == "" {
		t.Fatal("want generated id")
	}

	got, err := s.Get(ctx, tg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusUnknown {
		t.Fatalf("new target should start UNKNOWN, got %s", got.Status)
	}
	if got.SSLStatus != domain.ExpiryUnchecked || got.DomainStatus != domain.ExpiryUnchecked {
		t.Fatalf("expiry tracks should start UNCHECKED, got %s/%s", got.SSLStatus, got.DomainStatus)
	}
}

func TestTargetDuplicateURLRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Create(ctx, &domain.Target{URL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}
	err := s.Create(ctx, &domain.Target{URL: "https://example.com"})
	if !errors.Is(err, repo.ErrDuplicateURL) {
		t.Fatalf("want ErrDuplicateURL, got %v", err)
	}
}

func TestApplyFieldGroupsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	tg := &domain.Target{URL: "https://example.com", IsActive: true}
	if err := s.Create(ctx, tg); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	code := 200
	if err := s.ApplyHTTPHealth(ctx, tg.ID, repo.HTTPHealth{
		Status: domain.StatusUp, HTTPStatus: &code, LastCheckedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	exp := now.Add(30 * 24 * time.Hour)
	if err := s.ApplyTLSHealth(ctx, tg.ID, repo.ExpiryHealth{
		Status: domain.ExpiryValid, ExpiresAt: &exp, LastCheckedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, tg.ID)
	if got.Status != domain.StatusUp {
		t.Fatalf("tls write clobbered http status: %s", got.Status)
	}
	if got.SSLStatus != domain.ExpiryValid {
		t.Fatalf("want VALID ssl status, got %s", got.SSLStatus)
	}
	if got.DomainStatus != domain.ExpiryUnchecked {
		t.Fatalf("domain group should be untouched, got %s", got.DomainStatus)
	}
}

func TestSetActiveRoundTripClearsPaused(t *testing.T) {
	ctx := context.Background()
	s := New()
	tg := &domain.Target{URL: "https://example.com", IsActive: true}
	if err := s.Create(ctx, tg); err != nil {
		t.Fatal(err)
	}

	if err := s.SetActive(ctx, tg.ID, false); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, tg.ID)
	if got.Status != domain.StatusPaused {
		t.Fatalf("deactivation should mark PAUSED, got %s", got.Status)
	}

	if err := s.SetActive(ctx, tg.ID, true); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, tg.ID)
	if got.Status != domain.StatusUnknown {
		t.Fatalf("reactivation should clear PAUSED to UNKNOWN, got %s", got.Status)
	}
	if !got.IsActive {
		t.Fatal("target should be active again")
	}
}

func TestAlertFindActiveCoversAcknowledged(t *testing.T) {
	ctx := context.Background()
	a := NewAlerts()

	alert := &domain.Alert{TargetID: "t1", Type: domain.AlertDowntime, Status: domain.AlertActive}
	if err := a.Create(ctx, alert); err != nil {
		t.Fatal(err)
	}

	got, _ := a.FindActive(ctx, "t1", domain.AlertDowntime)
	if got == nil {
		t.Fatal("want active alert found")
	}

	alert.Status = domain.AlertAcknowledged
	if err := a.Update(ctx, alert); err != nil {
		t.Fatal(err)
	}
	got, _ = a.FindActive(ctx, "t1", domain.AlertDowntime)
	if got == nil {
		t.Fatal("acknowledged alert is still open; FindActive must return it")
	}

	alert.Status = domain.AlertResolved
	if err := a.Update(ctx, alert); err != nil {
		t.Fatal(err)
	}
	got, _ = a.FindActive(ctx, "t1", domain.AlertDowntime)
	if got != nil {
		t.Fatal("resolved alert must not be returned by FindActive")
	}
}

func TestAlertTimelineFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	a := NewAlerts()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mk := func(typ domain.AlertType, at time.Time) {
		if err := a.Create(ctx, &domain.Alert{
			TargetID: "t1", Type: typ, Status: domain.AlertResolved, TriggeredAt: at,
		}); err != nil {
			t.Fatal(err)
		}
	}
	mk(domain.AlertDowntime, base.Add(2*time.Hour))
	mk(domain.AlertRecovery, base.Add(3*time.Hour))
	mk(domain.AlertSSLExpiry, base.Add(4*time.Hour)) // excluded type
	mk(domain.AlertDowntime, base.Add(-time.Hour))   // before window

	got, err := a.Timeline(ctx, "t1", base)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 timeline alerts, got %d", len(got))
	}
	if !got[0].TriggeredAt.Before(got[1].TriggeredAt) {
		t.Fatal("timeline must be ascending by triggered_at")
	}
}
