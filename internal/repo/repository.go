package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
)

// ErrDuplicateURL is returned by TargetStore.Create when the URL is taken.
var ErrDuplicateURL = errors.New("target url already registered")

// HTTPHealth is the http field group of a target. Applied as one partial
// update so concurrent ssl/domain checks cannot clobber it.
type HTTPHealth struct {
	Status              domain.Status
	ConsecutiveFailures int
	HTTPStatus          *int
	ResponseTimeMS      *float64
	LastCheckedAt       time.Time
	LastStatusChangeAt  *time.Time // nil leaves the stored value untouched
}

// ExpiryHealth is the ssl or domain field group of a target.
type ExpiryHealth struct {
	Status        domain.ExpiryStatus
	ExpiresAt     *time.Time // nil leaves the stored value untouched
	LastCheckedAt time.Time
}

// TargetStore is the persistence port for targets. Get-style methods return
// nil, nil when the row does not exist.
//
// The three Apply* methods write disjoint field groups; a store must never
// implement them as full-document overwrites.
type TargetStore interface {
	Create(ctx context.Context, t *domain.Target) error
	Get(ctx context.Context, id domain.TargetID) (*domain.Target, error)
	GetByURL(ctx context.Context, url string) (*domain.Target, error)
	List(ctx context.Context) ([]domain.Target, error)
	ListActive(ctx context.Context) ([]domain.Target, error)
	Delete(ctx context.Context, id domain.TargetID) error

	SetActive(ctx context.Context, id domain.TargetID, active bool) error
	SetInterval(ctx context.Context, id domain.TargetID, minutes int) error
	MarkChecking(ctx context.Context, id domain.TargetID) error

	ApplyHTTPHealth(ctx context.Context, id domain.TargetID, h HTTPHealth) error
	ApplyTLSHealth(ctx context.Context, id domain.TargetID, h ExpiryHealth) error
	ApplyDomainHealth(ctx context.Context, id domain.TargetID, h ExpiryHealth) error
}

// AlertFilter narrows List. Zero values mean "any".
type AlertFilter struct {
	TargetID domain.TargetID
	Type     domain.AlertType
	Status   domain.AlertStatus
}

// AlertStore is the persistence port for alerts.
type AlertStore interface {
	Create(ctx context.Context, a *domain.Alert) error
	Get(ctx context.Context, id domain.AlertID) (*domain.Alert, error)
	Update(ctx context.Context, a *domain.Alert) error

	// FindActive returns the single ACTIVE-or-ACKNOWLEDGED alert for
	// (target, type), or nil, nil. Backs the one-open-alert invariant.
	FindActive(ctx context.Context, id domain.TargetID, typ domain.AlertType) (*domain.Alert, error)

	List(ctx context.Context, f AlertFilter) ([]domain.Alert, error)

	// Timeline returns DOWNTIME and RECOVERY alerts for the target with
	// triggered_at >= since, ascending. Feeds uptime reconstruction.
	Timeline(ctx context.Context, id domain.TargetID, since time.Time) ([]domain.Alert, error)

	MarkNotified(ctx context.Context, id domain.AlertID, at time.Time) error
}
