package probe

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/likexian/whois"
)

// ErrNoWhoisServer marks a TLD with no known authoritative WHOIS server.
// Permanently not applicable, as opposed to a transient lookup failure.
var ErrNoWhoisServer = errors.New("no whois server known for tld")

// Lookuper fetches the raw WHOIS response for a hostname.
type Lookuper interface {
	Lookup(ctx context.Context, hostname string) (string, error)
}

// WhoisClient is the default Lookuper, backed by likexian/whois.
type WhoisClient struct {
	client *whois.Client
}

func NewWhoisClient(timeout time.Duration) *WhoisClient {
	c := whois.NewClient()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &WhoisClient{client: c}
}

func (w *WhoisClient) Lookup(ctx context.Context, hostname string) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := w.client.Whois(hostname)
		ch <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if strings.Contains(strings.ToLower(r.err.Error()), "no whois server") {
				return "", ErrNoWhoisServer
			}
			return "", r.err
		}
		return r.text, nil
	}
}
