package probe

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hamed0406/netumo/internal/domain"
)

// expiryPatterns is the ordered strategy list for scraping an expiry date out
// of raw WHOIS text. Registries disagree wildly on labels; first match wins.
// New provider formats go here, nothing else has to change.
var expiryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Registry Expiry Date:\s*(.+)`),
	regexp.MustCompile(`(?i)Expires On:\s*(.+)`),
	regexp.MustCompile(`(?i)Expiration Date:\s*(.+)`),
	regexp.MustCompile(`(?i)Expiry Date:\s*(.+)`),
	regexp.MustCompile(`(?i)paid-till:\s*(.+)`), // .ru registries
	regexp.MustCompile(`(?i)renewal date:\s*(.+)`),
	regexp.MustCompile(`(?i)Record expires on\s*(.+)\.`),
}

// DomainChecker looks up domain-registration expiry over WHOIS and classifies
// it on the shared expiry scale.
type DomainChecker struct {
	Lookup        Lookuper
	ThresholdDays int
	now           func() time.Time
}

func NewDomainChecker(lookup Lookuper, thresholdDays int) *DomainChecker {
	if thresholdDays <= 0 {
		thresholdDays = 14
	}
	return &DomainChecker{Lookup: lookup, ThresholdDays: thresholdDays, now: time.Now}
}

func (c *DomainChecker) Check(ctx context.Context, hostname string) ExpiryOutcome {
	raw, err := c.Lookup.Lookup(ctx, hostname)
	if err != nil {
		if errors.Is(err, ErrNoWhoisServer) {
			return ExpiryOutcome{Status: domain.ExpiryNA, Reason: err.Error()}
		}
		return ExpiryOutcome{Status: domain.ExpiryError, Reason: err.Error()}
	}
	if strings.TrimSpace(raw) == "" {
		return ExpiryOutcome{Status: domain.ExpiryError, Reason: "empty whois response"}
	}

	expiresAt, ok := scrapeExpiry(raw)
	if !ok {
		return ExpiryOutcome{Status: domain.ExpiryError, Reason: "no expiry date in whois response"}
	}

	status, days := ClassifyExpiry(expiresAt, c.now().UTC(), c.ThresholdDays)
	return ExpiryOutcome{Status: status, ExpiresAt: &expiresAt, DaysRemaining: days}
}

func scrapeExpiry(raw string) (time.Time, bool) {
	for _, p := range expiryPatterns {
		m := p.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		ts, err := dateparse.ParseAny(strings.TrimSpace(m[1]))
		if err != nil {
			return time.Time{}, false // matched label but unparsable date
		}
		return ts, true
	}
	return time.Time{}, false
}
