package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/hamed0406/netumo/internal/domain"
	"github.com/hamed0406/netumo/internal/repo"
)

// Alerts keeps alert records in process memory.
type Alerts struct {
	mu     sync.RWMutex
	alerts map[domain.AlertID]*domain.Alert
}

func NewAlerts() *Alerts {
	return &Alerts{alerts: make(map[domain.AlertID]*domain.Alert)}
}

func (m *Alerts) Create(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = domain.AlertID(uuid.Must(uuid.NewV4()).String())
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now().UTC()
	}
	m.alerts[a.ID] = cloneAlert(a)
	return nil
}

func (m *Alerts) Get(ctx context.Context, id domain.AlertID) (*domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, nil
	}
	return cloneAlert(a), nil
}

func (m *Alerts) Update(ctx context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[a.ID]; !ok {
		return nil
	}
	m.alerts[a.ID] = cloneAlert(a)
	return nil
}

func (m *Alerts) FindActive(ctx context.Context, id domain.TargetID, typ domain.AlertType) (*domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts {
		if a.TargetID == id && a.Type == typ &&
			(a.Status == domain.AlertActive || a.Status == domain.AlertAcknowledged) {
			return cloneAlert(a), nil
		}
	}
	return nil, nil
}

func (m *Alerts) List(ctx context.Context, f repo.AlertFilter) ([]domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Alert
	for _, a := range m.alerts {
		if f.TargetID != "" && a.TargetID != f.TargetID {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, *cloneAlert(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	return out, nil
}

func (m *Alerts) Timeline(ctx context.Context, id domain.TargetID, since time.Time) ([]domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Alert
	for _, a := range m.alerts {
		if a.TargetID != id {
			continue
		}
		if a.Type != domain.AlertDowntime && a.Type != domain.AlertRecovery {
			continue
		}
		if a.TriggeredAt.Before(since) {
			continue
		}
		out = append(out, *cloneAlert(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.Before(out[j].TriggeredAt) })
	return out, nil
}

func (m *Alerts) MarkNotified(ctx context.Context, id domain.AlertID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.alerts[id]; ok {
		ts := at
		a.LastNotifiedAt = &ts
	}
	return nil
}

func cloneAlert(a *domain.Alert) *domain.Alert {
	cp := *a
	if a.Details != nil {
		cp.Details = make(map[string]any, len(a.Details))
		for k, v := range a.Details {
			cp.Details[k] = v
		}
	}
	return &cp
}

var _ repo.AlertStore = (*Alerts)(nil)
