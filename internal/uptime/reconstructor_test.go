package uptime

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo/memory"
)

func fixedService(t *testing.T, now time.Time) (*Service, *memory.Store, *memory.Alerts) {
	t.Helper()
	targets := memory.New()
	alerts := memory.NewAlerts()
	s := NewService(targets, alerts)
	s.now = func() time.Time { return now }
	return s, targets, alerts
}

func addTarget(t *testing.T, targets *memory.Store, createdAt time.Time, status domain.Status) domain.TargetID {
	t.Helper()
	tg := &domain.Target{
		URL:       "https://example.com",
		IsActive:  true,
		Status:    status,
		CreatedAt: createdAt,
	}
	if err := targets.Create(context.Background(), tg); err != nil {
		t.Fatal(err)
	}
	return tg.ID
}

func addDowntime(t *testing.T, alerts *memory.Alerts, id domain.TargetID, triggered time.Time, resolved *time.Time) {
	t.Helper()
	status := domain.AlertActive
	if resolved != nil {
		status = domain.AlertResolved
	}
	a := &domain.Alert{
		TargetID:    id,
		Type:        domain.AlertDowntime,
		Status:      status,
		TriggeredAt: triggered,
		ResolvedAt:  resolved,
	}
	if err := alerts.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
}

func addRecovery(t *testing.T, alerts *memory.Alerts, id domain.TargetID, at time.Time) {
	t.Helper()
	a := &domain.Alert{
		TargetID:    id,
		Type:        domain.AlertRecovery,
		Status:      domain.AlertResolved,
		TriggeredAt: at,
		ResolvedAt:  &at,
	}
	if err := alerts.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
}

func TestSummarize_ResolvedDowntimeInWindow(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, alerts := fixedService(t, now)
	id := addTarget(t, targets, now.Add(-48*time.Hour), domain.StatusUp)

	resolved := now.Add(-8 * time.Hour)
	addDowntime(t, alerts, id, now.Add(-10*time.Hour), &resolved)
	addRecovery(t, alerts, id, resolved)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalDowntimeSeconds != 7200 {
		t.Fatalf("want 7200s downtime, got %v", sum.TotalDowntimeSeconds)
	}
	if math.Abs(sum.UptimePercentage-91.6666) > 0.01 {
		t.Fatalf("want ~91.67%%, got %v", sum.UptimePercentage)
	}

	// UP at window start, DOWN at trigger, UP at resolution
	want := []struct {
		ts time.Time
		st domain.Status
	}{
		{now.Add(-24 * time.Hour), domain.StatusUp},
		{now.Add(-10 * time.Hour), domain.StatusDown},
		{resolved, domain.StatusUp},
	}
	if len(sum.Events) != len(want) {
		t.Fatalf("want %d events, got %+v", len(want), sum.Events)
	}
	for i, w := range want {
		if !sum.Events[i].Timestamp.Equal(w.ts) || sum.Events[i].Status != w.st {
			t.Fatalf("event %d: want %v/%s, got %v/%s", i, w.ts, w.st, sum.Events[i].Timestamp, sum.Events[i].Status)
		}
	}
}

func TestSummarize_ActiveDowntimeRunsToNow(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, alerts := fixedService(t, now)
	id := addTarget(t, targets, now.Add(-48*time.Hour), domain.StatusDown)
	addDowntime(t, alerts, id, now.Add(-2*time.Hour), nil)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalDowntimeSeconds != 7200 {
		t.Fatalf("want 7200s, got %v", sum.TotalDowntimeSeconds)
	}
	last := sum.Events[len(sum.Events)-1]
	if last.Status != domain.StatusDown {
		t.Fatalf("timeline must end DOWN, got %+v", sum.Events)
	}
}

func TestSummarize_WindowTrimmedToCreation(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, alerts := fixedService(t, now)
	// created 6h ago, down the entire first hour of its life
	id := addTarget(t, targets, now.Add(-6*time.Hour), domain.StatusUp)
	resolved := now.Add(-5 * time.Hour)
	addDowntime(t, alerts, id, now.Add(-6*time.Hour), &resolved)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalDowntimeSeconds != 3600 {
		t.Fatalf("want 3600s, got %v", sum.TotalDowntimeSeconds)
	}
	// 1h down out of 6h alive, not out of 24h
	if math.Abs(sum.UptimePercentage-(5.0/6.0*100)) > 0.01 {
		t.Fatalf("percentage must use the trimmed window, got %v", sum.UptimePercentage)
	}
	if sum.Events[0].Status != domain.StatusDown {
		t.Fatalf("seed must be DOWN when an alert covers effectiveStart, got %+v", sum.Events)
	}
}

func TestSummarize_TooNewTargetShortCircuits(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, _ := fixedService(t, now)
	id := addTarget(t, targets, now.Add(time.Minute), domain.StatusUnknown)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if sum.UptimePercentage != 100 || sum.TotalDowntimeSeconds != 0 {
		t.Fatalf("too-new target must report 100%%: %+v", sum)
	}
	if len(sum.Events) != 0 {
		t.Fatalf("want empty event list, got %+v", sum.Events)
	}
}

func TestSummarize_FullWindowDownClampsAtZero(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, alerts := fixedService(t, now)
	id := addTarget(t, targets, now.Add(-48*time.Hour), domain.StatusDown)
	addDowntime(t, alerts, id, now.Add(-24*time.Hour), nil)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if sum.UptimePercentage != 0 {
		t.Fatalf("want 0%%, got %v", sum.UptimePercentage)
	}
	if len(sum.Events) != 1 || sum.Events[0].Status != domain.StatusDown {
		t.Fatalf("want a single DOWN seed event, got %+v", sum.Events)
	}
}

func TestSummarize_AlternatingOutagesStayOrdered(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, alerts := fixedService(t, now)
	id := addTarget(t, targets, now.Add(-48*time.Hour), domain.StatusUp)

	r1 := now.Add(-8 * time.Hour)
	addDowntime(t, alerts, id, now.Add(-10*time.Hour), &r1)
	addRecovery(t, alerts, id, r1)
	r2 := now.Add(-4 * time.Hour)
	addDowntime(t, alerts, id, now.Add(-5*time.Hour), &r2)
	addRecovery(t, alerts, id, r2)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalDowntimeSeconds != 3*3600 {
		t.Fatalf("want 10800s, got %v", sum.TotalDowntimeSeconds)
	}
	statuses := make([]domain.Status, 0, len(sum.Events))
	for i, e := range sum.Events {
		statuses = append(statuses, e.Status)
		if i > 0 && !e.Timestamp.After(sum.Events[i-1].Timestamp) {
			t.Fatalf("timestamps must strictly increase: %+v", sum.Events)
		}
		if i > 0 && e.Status == sum.Events[i-1].Status {
			t.Fatalf("statuses must alternate: %+v", sum.Events)
		}
	}
	if len(statuses) != 5 {
		t.Fatalf("want UP,DOWN,UP,DOWN,UP, got %v", statuses)
	}
}

func TestSummarize_TransientStatusStaysOffTimeline(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, targets, alerts := fixedService(t, now)
	// snapshot taken mid-probe: stored status is the transient CHECKING
	id := addTarget(t, targets, now.Add(-48*time.Hour), domain.StatusChecking)

	sum, err := s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Events) != 1 || sum.Events[0].Status != domain.StatusUp {
		t.Fatalf("want a single UP seed event, got %+v", sum.Events)
	}
	for _, e := range sum.Events {
		if e.Status != domain.StatusUp && e.Status != domain.StatusDown {
			t.Fatalf("timeline must only carry UP/DOWN, got %s", e.Status)
		}
	}

	// a DOWN target caught mid-probe still closes the open outage interval
	resolved := now.Add(-1 * time.Hour)
	addDowntime(t, alerts, id, now.Add(-2*time.Hour), &resolved)
	sum, err = s.Summarize(context.Background(), id, 24)
	if err != nil {
		t.Fatal(err)
	}
	last := sum.Events[len(sum.Events)-1]
	if last.Status != domain.StatusUp {
		t.Fatalf("resolved outage under a CHECKING snapshot must end UP, got %+v", sum.Events)
	}
}

func TestSummarize_UnknownTarget(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s, _, _ := fixedService(t, now)
	if _, err := s.Summarize(context.Background(), "ghost", 24); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("want ErrTargetNotFound, got %v", err)
	}
}
