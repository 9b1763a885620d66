package resilience

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestGuard_OnlyTransientErrorsOpenCircuit(t *testing.T) {
	t.Parallel()

	g := NewGuard(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}, func(err error) bool { return errors.Is(err, errTransient) })

	for range 5 {
		if err := g.Allow(); err != nil {
			t.Fatalf("expected allow, got %v", err)
		}
		g.Record(errors.New("bad request"))
	}
	if state := g.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after non transient errors, got %s", state)
	}

	g.Record(errTransient)
	g.Record(errTransient)
	if err := g.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}
}

func TestGuard_DisabledAlwaysAllows(t *testing.T) {
	t.Parallel()

	g := NewGuard(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1}, nil)
	for range 3 {
		g.Record(errTransient)
	}
	if err := g.Allow(); err != nil {
		t.Fatalf("expected disabled guard to allow, got %v", err)
	}

	var nilGuard *Guard
	if err := nilGuard.Allow(); err != nil {
		t.Fatalf("expected nil guard to allow, got %v", err)
	}
	nilGuard.Record(errTransient)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusBadRequest:          false,
		http.StatusUnauthorized:        false,
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
	} {
		if got := IsRetryableHTTPStatus(code); got != want {
			t.Fatalf("IsRetryableHTTPStatus(%d)=%t want %t", code, got, want)
		}
	}
}
