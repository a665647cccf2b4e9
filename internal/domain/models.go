package domain

import (
	"net/url"
	"strings"
	"time"
)

type TargetID string

type AlertID string

// Status is the availability state of a target's HTTP track.
type Status string

const (
	StatusUp       Status = "UP"
	StatusDown     Status = "DOWN"
	StatusUnknown  Status = "UNKNOWN"
	StatusChecking Status = "CHECKING"
	StatusPaused   Status = "PAUSED"
)

// ExpiryStatus classifies a TLS certificate or domain registration.
type ExpiryStatus string

const (
	ExpiryValid        ExpiryStatus = "VALID"
	ExpiryExpiringSoon ExpiryStatus = "EXPIRING_SOON"
	ExpiryExpired      ExpiryStatus = "EXPIRED"
	ExpiryError        ExpiryStatus = "ERROR"
	ExpiryNA           ExpiryStatus = "NA"
	ExpiryUnchecked    ExpiryStatus = "UNCHECKED"
)

// CheckKind names one of the three independent probing concerns.
type CheckKind string

const (
	KindHTTP   CheckKind = "http"
	KindSSL    CheckKind = "ssl"
	KindDomain CheckKind = "domain"
)

type Target struct {
	ID                     TargetID `json:"id"`
	URL                    string   `json:"url"`
	Name                   string   `json:"name,omitempty"`
	NotificationEmail      string   `json:"notification_email,omitempty"`
	NotificationWebhookURL string   `json:"notification_webhook_url,omitempty"`
	IsActive               bool     `json:"is_active"`
	CheckIntervalMinutes   int      `json:"check_interval_minutes"`

	Status              Status     `json:"status"`
	LastCheckedAt       *time.Time `json:"last_checked_at,omitempty"`
	LastStatusChangeAt  *time.Time `json:"last_status_change_at,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	HTTPStatus          *int       `json:"http_status,omitempty"`
	ResponseTimeMS      *float64   `json:"response_time_ms,omitempty"`

	SSLStatus        ExpiryStatus `json:"ssl_status"`
	SSLExpiresAt     *time.Time   `json:"ssl_expires_at,omitempty"`
	SSLLastCheckedAt *time.Time   `json:"ssl_last_checked_at,omitempty"`

	DomainStatus        ExpiryStatus `json:"domain_status"`
	DomainExpiresAt     *time.Time   `json:"domain_expires_at,omitempty"`
	DomainLastCheckedAt *time.Time   `json:"domain_last_checked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Target) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(t.URL)), "https://")
}

// Hostname returns the host part of the target URL, or the raw URL if it
// does not parse.
func (t *Target) Hostname() string {
	u, err := url.Parse(t.URL)
	if err != nil || u.Hostname() == "" {
		return t.URL
	}
	return u.Hostname()
}

type AlertType string

const (
	AlertDowntime     AlertType = "DOWNTIME"
	AlertSSLExpiry    AlertType = "SSL_EXPIRY"
	AlertDomainExpiry AlertType = "DOMAIN_EXPIRY"
	AlertRecovery     AlertType = "RECOVERY"
)

type AlertStatus string

const (
	AlertActive       AlertStatus = "ACTIVE"
	AlertAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertResolved     AlertStatus = "RESOLVED"
)

type Alert struct {
	ID             AlertID        `json:"id"`
	TargetID       TargetID       `json:"target_id"`
	Type           AlertType      `json:"type"`
	Status         AlertStatus    `json:"status"`
	Message        string         `json:"message"`
	TriggeredAt    time.Time      `json:"triggered_at"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	LastNotifiedAt *time.Time     `json:"last_notified_at,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}

// CheckJob is one unit of probing work. (TargetID, Kind) is the idempotency
// key: only one recurring registration may exist per pair.
type CheckJob struct {
	TargetID TargetID  `json:"target_id"`
	Kind     CheckKind `json:"kind"`
}

// Key mirrors the "<kind>-check:<id>" convention used for recurring-job dedup.
func (j CheckJob) Key() string {
	return string(j.Kind) + "-check:" + string(j.TargetID)
}
