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

// Store keeps targets in process memory. Used for tests and for running
// without DATABASE_URL.
type Store struct {
	mu      sync.RWMutex
	targets map[domain.TargetID]*domain.Target
}

func New() *Store {
	return &Store{targets: make(map[domain.TargetID]*domain.Target)}
}

func (m *Store) Create(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.targets {
		if cur.URL == t.URL {
			return repo.ErrDuplicateURL
		}
	}
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
	cp := *t
	m.targets[t.ID] = &cp
	return nil
}

func (m *Store) Get(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.targets[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *Store) GetByURL(ctx context.Context, url string) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.targets {
		if t.URL == url {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Store) List(ctx context.Context) ([]domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Target, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Store) ListActive(ctx context.Context) ([]domain.Target, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Target
	for _, t := range all {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Store) Delete(ctx context.Context, id domain.TargetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.targets, id)
	return nil
}

func (m *Store) SetActive(ctx context.Context, id domain.TargetID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.targets[id]; ok {
		t.IsActive = active
		if !active {
			t.Status = domain.StatusPaused
		} else if t.Status == domain.StatusPaused {
			// forget the paused marker; the next check decides UP/DOWN
			t.Status = domain.StatusUnknown
		}
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *Store) SetInterval(ctx context.Context, id domain.TargetID, minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.targets[id]; ok {
		t.CheckIntervalMinutes = minutes
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *Store) MarkChecking(ctx context.Context, id domain.TargetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.targets[id]; ok {
		t.Status = domain.StatusChecking
	}
	return nil
}

func (m *Store) ApplyHTTPHealth(ctx context.Context, id domain.TargetID, h repo.HTTPHealth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[id]
	if !ok {
		return nil
	}
	t.Status = h.Status
	t.ConsecutiveFailures = h.ConsecutiveFailures
	t.HTTPStatus = h.HTTPStatus
	t.ResponseTimeMS = h.ResponseTimeMS
	lc := h.LastCheckedAt
	t.LastCheckedAt = &lc
	if h.LastStatusChangeAt != nil {
		sc := *h.LastStatusChangeAt
		t.LastStatusChangeAt = &sc
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Store) ApplyTLSHealth(ctx context.Context, id domain.TargetID, h repo.ExpiryHealth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[id]
	if !ok {
		return nil
	}
	t.SSLStatus = h.Status
	if h.ExpiresAt != nil {
		ex := *h.ExpiresAt
		t.SSLExpiresAt = &ex
	}
	lc := h.LastCheckedAt
	t.SSLLastCheckedAt = &lc
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Store) ApplyDomainHealth(ctx context.Context, id domain.TargetID, h repo.ExpiryHealth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[id]
	if !ok {
		return nil
	}
	t.DomainStatus = h.Status
	if h.ExpiresAt != nil {
		ex := *h.ExpiresAt
		t.DomainExpiresAt = &ex
	}
	lc := h.LastCheckedAt
	t.DomainLastCheckedAt = &lc
	t.UpdatedAt = time.Now().UTC()
	return nil
}

var _ repo.TargetStore = (*Store)(nil)
