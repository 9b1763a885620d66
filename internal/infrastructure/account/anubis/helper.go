package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

func isCircuitFailure(err error) bool {
	return errors.Is(err, errAnubisTransient)
}

// hashToken keeps raw bearer tokens out of cache keys.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// buildURL joins path onto baseURL. An absolute path URL wins, which lets
// the introspection endpoint live on another host.
func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if path == "" {
		return baseURL
	}
	return baseURL + "/" + strings.TrimPrefix(path, "/")
}
