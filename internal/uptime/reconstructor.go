package uptime

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo"
)

var ErrTargetNotFound = errors.New("target not found")

// Event is one point in the reconstructed availability timeline.
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	Status    domain.Status `json:"status"`
}

// Summary is the availability of a target over a trailing window,
// reconstructed from its DOWNTIME/RECOVERY alert history.
type Summary struct {
	TargetID             domain.TargetID `json:"target_id"`
	WindowHours          int             `json:"window_hours"`
	UptimePercentage     float64         `json:"uptime_percentage"`
	TotalDowntimeSeconds float64         `json:"total_downtime_seconds"`
	Events               []Event         `json:"events"`
}

// Service replays persisted alert history into uptime figures. It holds no
// state of its own; every call reads the stores fresh.
type Service struct {
	targets repo.TargetStore
	alerts  repo.AlertStore
	now     func() time.Time
}

func NewService(targets repo.TargetStore, alerts repo.AlertStore) *Service {
	return &Service{targets: targets, alerts: alerts, now: time.Now}
}

// Summarize computes availability over the trailing windowHours. The window
// is trimmed to the target's lifetime: time before createdAt never counts
// against it.
func (s *Service) Summarize(ctx context.Context, id domain.TargetID, windowHours int) (*Summary, error) {
	if windowHours <= 0 {
		windowHours = 24
	}
	target, err := s.targets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrTargetNotFound
	}

	now := s.now().UTC()
	windowStart := now.Add(-time.Duration(windowHours) * time.Hour)
	effectiveStart := windowStart
	if target.CreatedAt.After(effectiveStart) {
		effectiveStart = target.CreatedAt
	}

	totalWindow := now.Sub(effectiveStart)
	if totalWindow <= 0 {
		// created after the window end, too new to have history
		return &Summary{
			TargetID:         id,
			WindowHours:      windowHours,
			UptimePercentage: 100,
			Events:           []Event{},
		}, nil
	}

	history, err := s.alerts.Timeline(ctx, id, windowStart)
	if err != nil {
		return nil, err
	}

	var downtime time.Duration
	for _, a := range history {
		if a.Type != domain.AlertDowntime {
			continue
		}
		start := a.TriggeredAt
		if start.Before(effectiveStart) {
			start = effectiveStart
		}
		end := now
		if a.ResolvedAt != nil && a.ResolvedAt.Before(now) {
			end = *a.ResolvedAt
		}
		if end.After(start) {
			downtime += end.Sub(start)
		}
	}

	pct := (totalWindow.Seconds() - downtime.Seconds()) / totalWindow.Seconds() * 100
	if pct < 0 {
		pct = 0
	}

	return &Summary{
		TargetID:             id,
		WindowHours:          windowHours,
		UptimePercentage:     pct,
		TotalDowntimeSeconds: downtime.Seconds(),
		Events:               buildEvents(history, target.Status, effectiveStart, now),
	}, nil
}

type boundary struct {
	at     time.Time
	status domain.Status
}

// buildEvents turns alert boundaries into a gap-free, status-alternating
// timeline seeded at effectiveStart and closed at now.
func buildEvents(history []domain.Alert, current domain.Status, effectiveStart, now time.Time) []Event {
	var bounds []boundary
	seedDown := false
	for _, a := range history {
		switch a.Type {
		case domain.AlertDowntime:
			bounds = append(bounds, boundary{a.TriggeredAt, domain.StatusDown})
			end := now
			if a.ResolvedAt != nil {
				end = *a.ResolvedAt
				bounds = append(bounds, boundary{*a.ResolvedAt, domain.StatusUp})
			}
			if !a.TriggeredAt.After(effectiveStart) && end.After(effectiveStart) {
				seedDown = true
			}
		case domain.AlertRecovery:
			bounds = append(bounds, boundary{a.TriggeredAt, domain.StatusUp})
		}
	}
	sort.SliceStable(bounds, func(i, j int) bool { return bounds[i].at.Before(bounds[j].at) })

	seed := domain.StatusUp
	if seedDown {
		seed = domain.StatusDown
	}
	events := []Event{{Timestamp: effectiveStart, Status: seed}}
	for _, b := range bounds {
		last := events[len(events)-1]
		if b.status == last.Status || !b.at.After(last.Timestamp) {
			continue
		}
		events = append(events, Event{Timestamp: b.at, Status: b.status})
	}
	// the stored status can be a transient like CHECKING or PAUSED; the
	// timeline only speaks UP/DOWN, so clamp before comparing
	cur := domain.StatusUp
	if current == domain.StatusDown {
		cur = domain.StatusDown
	}
	if last := events[len(events)-1]; cur != last.Status && now.After(last.Timestamp) {
		events = append(events, Event{Timestamp: now, Status: cur})
	}
	return events
}
