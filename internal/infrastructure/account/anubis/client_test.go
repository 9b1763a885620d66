package anubis

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
	"github.com/riskibarqy/battlecode-league/internal/usecase"
)

func newTestClient(srv *httptest.Server, adminKey string, breaker CircuitBreakerConfig, opts ...Option) *Client {
	return NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", adminKey, breaker, logging.NewNop(), opts...)
}

func TestClientVerifyAccessToken_SendsAdminKeyAndParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Errorf("unexpected x-admin-key: %s", got)
		}

		var req map[string]string
		if err := jsoniter.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Errorf("unexpected token value: %s", req["token"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{
			"active":  true,
			"user_id": "user-alice",
			"email":   "alice@example.com",
			"roles":   []string{"competitor"},
			"jti":     "jti-001",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, "admin-secret", CircuitBreakerConfig{Enabled: false})

	principal, err := client.VerifyAccessToken(t.Context(), "token-abc")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if principal.UserID != "user-alice" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
	if principal.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", principal.Email)
	}
}

func TestClientVerifyAccessToken_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "inactive token", status: http.StatusOK, body: `{"active":false}`, wantErr: usecase.ErrUnauthorized},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantErr: usecase.ErrUnauthorized},
		{name: "admin key rejected", status: http.StatusForbidden, body: `{"error":"forbidden"}`, wantErr: usecase.ErrDependencyUnavailable},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantErr: usecase.ErrDependencyUnavailable},
		{name: "empty user", status: http.StatusOK, body: `{"active":true}`, wantErr: usecase.ErrDependencyUnavailable},
		{name: "malformed body", status: http.StatusOK, body: `{`, wantErr: usecase.ErrDependencyUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := newTestClient(srv, "admin-secret", CircuitBreakerConfig{Enabled: false})
			_, err := client.VerifyAccessToken(t.Context(), "token-abc")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestClientVerifyAccessToken_EmptyTokenSkipsCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(srv, "", CircuitBreakerConfig{Enabled: false})
	if _, err := client.VerifyAccessToken(t.Context(), "   "); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no introspection call, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_UsesInMemoryCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{
			"active":  true,
			"user_id": "user-carol",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, "admin-secret", CircuitBreakerConfig{Enabled: false})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			principal, err := client.VerifyAccessToken(t.Context(), "cached-token")
			if err != nil {
				t.Errorf("verify token failed: %v", err)
				return
			}
			if principal.UserID != "user-carol" {
				t.Errorf("unexpected user id: %s", principal.UserID)
			}
		}()
	}
	wg.Wait()

	if _, err := client.VerifyAccessToken(t.Context(), "cached-token"); err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if got := calls.Load(); got < 1 || got > 4 {
		t.Fatalf("unexpected introspection call count %d", got)
	}
	before := calls.Load()
	if _, err := client.VerifyAccessToken(t.Context(), "cached-token"); err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if calls.Load() != before {
		t.Fatalf("expected cached principal, got extra introspection call")
	}
}

func TestClientVerifyAccessToken_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, "admin-secret", CircuitBreakerConfig{Enabled: false})
	for range 2 {
		if _, err := client.VerifyAccessToken(t.Context(), "revoked"); !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two introspection calls, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv, "admin-secret", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for range 3 {
		_, err := client.VerifyAccessToken(t.Context(), "token-abc")
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected breaker to short-circuit the third call, got %d calls", calls.Load())
	}
}

func TestClientVerifyAccessToken_CacheBoundedByTokenExpiry(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(-time.Minute).Unix()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{
			"active":  true,
			"user_id": "user-dave",
			"exp":     expiry,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, "admin-secret", CircuitBreakerConfig{Enabled: false}, WithPrincipalCache(time.Hour, 10))
	for range 2 {
		if _, err := client.VerifyAccessToken(t.Context(), "short-lived"); err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected expired token not to be cached, got %d calls", calls.Load())
	}
}
