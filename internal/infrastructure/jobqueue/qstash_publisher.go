package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
	"github.com/riskibarqy/battlecode-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

// InternalJobTokenHeader authenticates QStash deliveries on internal routes.
const InternalJobTokenHeader = "X-Internal-Job-Token"

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher enqueues HTTP callbacks into Upstash QStash. QStash later
// delivers the payload as a POST to TargetBaseURL + path.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	guard            *resilience.Guard
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &QStashPublisher{
		client:           &http.Client{Timeout: timeout},
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		guard:            resilience.NewGuard(cfg.CircuitBreaker, isQStashCircuitFailure),
	}
	p.guard.OnStateChange(func(from, to resilience.CircuitState) {
		p.logger.Warn("qstash circuit breaker state changed", "from", from, "to", to)
	})

	return p
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if err := p.guard.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.guard.State())
		return crerr.Wrap(err, "qstash is temporarily unavailable")
	}

	err := p.publish(ctx, path, payload, delay, strings.TrimSpace(deduplicationID))
	p.guard.Record(err)
	return err
}

type publishHeader struct {
	name   string
	value  string
	secret bool
}

// publishHeaders lists the Upstash control headers for one publish call.
// Secret values are masked in the curl preview.
func (p *QStashPublisher) publishHeaders(delay time.Duration, deduplicationID string) []publishHeader {
	headers := []publishHeader{
		{name: "Authorization", value: "Bearer " + p.token, secret: true},
		{name: "Content-Type", value: "application/json"},
		{name: "Upstash-Method", value: http.MethodPost},
	}
	if p.retries > 0 {
		headers = append(headers, publishHeader{name: "Upstash-Retries", value: strconv.Itoa(p.retries)})
	}
	if delay > 0 {
		headers = append(headers, publishHeader{name: "Upstash-Delay", value: normalizeDelay(delay)})
	}
	if deduplicationID != "" {
		headers = append(headers, publishHeader{name: "Upstash-Deduplication-Id", value: deduplicationID})
	}
	if p.internalJobToken != "" {
		headers = append(headers, publishHeader{name: "Upstash-Forward-" + InternalJobTokenHeader, value: p.internalJobToken, secret: true})
	}
	return headers
}

func (p *QStashPublisher) publishURL(path string) (publishURL, targetURL string, err error) {
	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return "", "", crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		return "", "", crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	targetURL = targetBaseURL + path
	return baseURL + "/v2/publish/" + targetURL, targetURL, nil
}

func (p *QStashPublisher) publish(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	publishURL, targetURL, err := p.publishURL(path)
	if err != nil {
		return err
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}
	headers := p.publishHeaders(delay, deduplicationID)

	bodyText := truncateForLog(string(body), maxLoggedBody)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.path", path),
			attribute.String("qstash.deduplication_id", deduplicationID),
			attribute.String("qstash.request_body", bodyText),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request",
		"path", path,
		"target_url", targetURL,
		"curl_preview", buildQStashCurlPreview(publishURL, headers, bodyText),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for _, h := range headers {
		req.Header.Set(h.name, h.value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish qstash job target_url=%s: %v", errQStashTransient, targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		detail := fmt.Sprintf("publish qstash job status=%d target_url=%s body=%s",
			resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
		if resilience.IsRetryableHTTPStatus(resp.StatusCode) {
			return fmt.Errorf("%w: %s", errQStashTransient, detail)
		}
		return crerr.New(detail)
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", normalizeDelay(delay), "deduplication_id", deduplicationID)
	return nil
}

const maxLoggedBody = 4096

// normalizeDelay renders delay in whole seconds, the unit Upstash-Delay takes.
func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

// buildQStashCurlPreview renders a redacted curl equivalent of the publish
// call for debug logs.
func buildQStashCurlPreview(publishURL string, headers []publishHeader, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(publishURL))
	for _, h := range headers {
		value := h.value
		if h.secret {
			value = maskSecret(value)
		}
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(h.name + ": " + value))
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(body))
	return buf.String()
}

// maskSecret keeps an auth scheme prefix such as "Bearer" visible.
func maskSecret(value string) string {
	if scheme, _, ok := strings.Cut(value, " "); ok {
		return scheme + " ***"
	}
	return "***"
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncateForLog(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}

func isQStashCircuitFailure(err error) bool {
	return crerr.Is(err, errQStashTransient)
}
