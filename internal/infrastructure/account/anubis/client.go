package anubis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/battlecode-league/internal/domain/user"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
	"github.com/riskibarqy/battlecode-league/internal/platform/resilience"
	"github.com/riskibarqy/battlecode-league/internal/usecase"
	"golang.org/x/sync/singleflight"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errAnubisTransient = crerr.New("anubis transient failure")

type CircuitBreakerConfig = resilience.CircuitBreakerConfig

const (
	defaultPrincipalTTL        = 30 * time.Second
	defaultPrincipalMaxEntries = 10_000
)

// Client verifies bearer tokens against the account service introspection
// endpoint and caches active principals for a short TTL.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	guard         *resilience.Guard
	cache         *principalCache
	flight        singleflight.Group
	logger        *logging.Logger
}

type Option func(*Client)

// WithPrincipalCache overrides the principal cache bounds. A non-positive
// ttl disables caching.
func WithPrincipalCache(ttl time.Duration, maxEntries int) Option {
	return func(c *Client) {
		c.cache = newInMemoryPrincipalCache(ttl, maxEntries)
	}
}

func NewClient(
	httpClient *http.Client,
	baseURL, introspectPath, adminKey string,
	breakerCfg CircuitBreakerConfig,
	logger *logging.Logger,
	opts ...Option,
) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	c := &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		adminKey:      strings.TrimSpace(adminKey),
		guard:         resilience.NewGuard(breakerCfg, isCircuitFailure),
		cache:         newInMemoryPrincipalCache(defaultPrincipalTTL, defaultPrincipalMaxEntries),
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.guard.OnStateChange(func(from, to resilience.CircuitState) {
		c.logger.Warn("anubis circuit breaker state changed", "from", from, "to", to)
	})

	return c
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cache.Get(key); ok {
		return principal, nil
	}

	value, err, _ := c.flight.Do(key, func() (any, error) {
		principal, expiresAt, err := c.introspect(ctx, token)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, principal, expiresAt)
		return principal, nil
	})
	if err != nil {
		return user.Principal{}, err
	}

	return value.(user.Principal), nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, time.Time, error) {
	if err := c.guard.Allow(); err != nil {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.guard.State())
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: anubis: %v", usecase.ErrDependencyUnavailable, err)
	}

	principal, expiresAt, err := c.doIntrospect(ctx, token)
	c.guard.Record(err)
	return principal, expiresAt, err
}

func (c *Client) doIntrospect(ctx context.Context, token string) (user.Principal, time.Time, error) {
	encoded, err := json.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, time.Time{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, time.Time{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: %w: request introspection: %v",
			usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: %w: read introspect response: %v",
			usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		// The admin key was rejected; callers are not at fault.
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", resp.StatusCode)
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: anubis rejected admin key", usecase.ErrDependencyUnavailable)
	case resilience.IsRetryableHTTPStatus(resp.StatusCode):
		c.logger.WarnContext(ctx, "anubis introspection unavailable", "status_code", resp.StatusCode)
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: %w: status=%d",
			usecase.ErrDependencyUnavailable, errAnubisTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: anubis introspection status=%d",
			usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: decode introspect response: %v",
			usecase.ErrDependencyUnavailable, err)
	}
	if !decoded.Active {
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, time.Time{}, fmt.Errorf("%w: introspect response has empty user_id",
			usecase.ErrDependencyUnavailable)
	}

	var expiresAt time.Time
	if decoded.ExpiresAt > 0 {
		expiresAt = time.Unix(decoded.ExpiresAt, 0)
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, expiresAt, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active    bool   `json:"active"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}
