package probe

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"
)

// HTTPChecker probes a target URL with a single GET. Any status code is
// accepted; only 200-399 counts as up. By default peer certificates are not
// validated so a broken cert does not mask an otherwise-live origin.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration, verifyTLS bool) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: !verifyTLS},
			},
		},
	}
}

func (c *HTTPChecker) Check(ctx context.Context, target string) HTTPOutcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return HTTPOutcome{Up: false, Reason: err.Error()}
	}

	resp, err := c.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return HTTPOutcome{Up: false, LatencyMS: latency, Reason: err.Error()}
	}
	defer resp.Body.Close()

	up := resp.StatusCode >= 200 && resp.StatusCode < 400
	return HTTPOutcome{
		Up:         up,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
		Reason:     resp.Status,
	}
}
