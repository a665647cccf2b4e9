package probe

import (
	"math"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
)

// HTTPOutcome is the result of one availability probe. StatusCode is 0 on
// transport errors; Up follows the 200-399 rule regardless of transport
// security.
type HTTPOutcome struct {
	Up         bool
	StatusCode int
	LatencyMS  float64
	Reason     string
}

// ExpiryOutcome is the result of one TLS-certificate or domain-registration
// probe. ExpiresAt and DaysRemaining are only meaningful when Status is
// VALID, EXPIRING_SOON or EXPIRED.
type ExpiryOutcome struct {
	Status        domain.ExpiryStatus
	ExpiresAt     *time.Time
	DaysRemaining int
	Reason        string
}

// ClassifyExpiry maps a known expiry timestamp onto the shared
// VALID / EXPIRING_SOON / EXPIRED scale.
//
//	daysRemaining <= 0         -> EXPIRED
//	daysRemaining <= threshold -> EXPIRING_SOON
func ClassifyExpiry(expiresAt, now time.Time, thresholdDays int) (domain.ExpiryStatus, int) {
	days := int(math.Floor(expiresAt.Sub(now).Hours() / 24))
	switch {
	case days <= 0:
		return domain.ExpiryExpired, days
	case days <= thresholdDays:
		return domain.ExpiryExpiringSoon, days
	default:
		return domain.ExpiryValid, days
	}
}
