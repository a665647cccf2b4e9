package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2*time.Second, false)
	out := chk.Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("want up, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
}

func TestHTTPChecker_RedirectRangeIsUp(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2*time.Second, false)
	out := chk.Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("304 should classify as up, got %+v", out)
	}
}

func TestHTTPChecker_Status500IsDown(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2*time.Second, false)
	out := chk.Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down, got %+v", out)
	}
	if out.StatusCode != 500 {
		t.Fatalf("want status 500, got %d", out.StatusCode)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50*time.Millisecond, false)
	out := chk.Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
	if out.Reason == "" {
		t.Fatalf("want non-empty error reason")
	}
}

func TestHTTPChecker_SelfSignedCertStillUp(t *testing.T) {
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer s.Close()

	// default policy: cert validation failures must not mask a live origin
	chk := NewHTTPChecker(2*time.Second, false)
	out := chk.Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("lenient checker should pass self-signed cert, got %+v", out)
	}

	strict := NewHTTPChecker(2*time.Second, true)
	out = strict.Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("strict checker should reject self-signed cert, got %+v", out)
	}
}
