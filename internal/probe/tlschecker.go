package probe

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
)

// TLSChecker inspects the peer certificate of an HTTPS target and classifies
// its remaining lifetime. Chain validation is deliberately skipped: the point
// is reading NotAfter, not judging trust.
type TLSChecker struct {
	Timeout       time.Duration
	ThresholdDays int
	now           func() time.Time
}

func NewTLSChecker(timeout time.Duration, thresholdDays int) *TLSChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if thresholdDays <= 0 {
		thresholdDays = 14
	}
	return &TLSChecker{Timeout: timeout, ThresholdDays: thresholdDays, now: time.Now}
}

func (c *TLSChecker) Check(ctx context.Context, target string) ExpiryOutcome {
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "https" {
		return ExpiryOutcome{Status: domain.ExpiryNA, Reason: "not an https target"}
	}
	port := u.Port()
	if port == "" {
		port = "443"
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.Timeout},
		Config: &tls.Config{
			ServerName:         u.Hostname(),
			InsecureSkipVerify: true,
		},
	}
	dctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	conn, err := dialer.DialContext(dctx, "tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return ExpiryOutcome{Status: domain.ExpiryError, Reason: err.Error()}
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return ExpiryOutcome{Status: domain.ExpiryError, Reason: "no peer certificate"}
	}
	notAfter := state.PeerCertificates[0].NotAfter

	status, days := ClassifyExpiry(notAfter, c.now().UTC(), c.ThresholdDays)
	return ExpiryOutcome{Status: status, ExpiresAt: &notAfter, DaysRemaining: days}
}
