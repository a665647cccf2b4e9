package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamed0406/netumo/internal/domain"
)

func TestClassifyExpiry_Boundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	const threshold = 14

	cases := []struct {
		name      string
		expiresAt time.Time
		want      domain.ExpiryStatus
		wantDays  int
	}{
		{"exactly threshold days", now.Add(14 * 24 * time.Hour), domain.ExpiryExpiringSoon, 14},
		{"threshold plus one", now.Add(15 * 24 * time.Hour), domain.ExpiryValid, 15},
		{"under a day left", now.Add(12 * time.Hour), domain.ExpiryExpired, 0},
		{"already expired", now.Add(-36 * time.Hour), domain.ExpiryExpired, -2},
		{"far future", now.Add(365 * 24 * time.Hour), domain.ExpiryValid, 365},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, days := ClassifyExpiry(c.expiresAt, now, threshold)
			if got != c.want {
				t.Fatalf("want %s, got %s", c.want, got)
			}
			if days != c.wantDays {
				t.Fatalf("want %d days remaining, got %d", c.wantDays, days)
			}
		})
	}
}

func TestTLSChecker_NonHTTPSIsNA(t *testing.T) {
	chk := NewTLSChecker(time.Second, 14)
	out := chk.Check(context.Background(), "http://example.com")
	if out.Status != domain.ExpiryNA {
		t.Fatalf("want NA for http target, got %s", out.Status)
	}
}

func TestTLSChecker_ReadsPeerCertificate(t *testing.T) {
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer s.Close()

	chk := NewTLSChecker(2*time.Second, 14)
	out := chk.Check(context.Background(), s.URL)
	if out.Status == domain.ExpiryError || out.Status == domain.ExpiryNA {
		t.Fatalf("want a classification from the test cert, got %s (%s)", out.Status, out.Reason)
	}
	if out.ExpiresAt == nil {
		t.Fatal("want NotAfter captured")
	}
}

func TestTLSChecker_UnreachableHostIsError(t *testing.T) {
	chk := NewTLSChecker(200*time.Millisecond, 14)
	out := chk.Check(context.Background(), "https://127.0.0.1:1")
	if out.Status != domain.ExpiryError {
		t.Fatalf("want ERROR for refused connection, got %s", out.Status)
	}
	if out.Reason == "" {
		t.Fatal("want reason on error")
	}
}
