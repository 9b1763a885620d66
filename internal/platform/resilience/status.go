package resilience

import "net/http"

// IsRetryableHTTPStatus reports upstream responses that count as transient:
// timeouts, throttling and 5xx.
func IsRetryableHTTPStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	default:
		return code >= http.StatusInternalServerError && code <= 599
	}
}
