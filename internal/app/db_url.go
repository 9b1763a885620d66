package app

import (
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// isURLDSN reports whether raw is a postgres:// style connection string as
// opposed to libpq keyword/value pairs.
func isURLDSN(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.Scheme != ""
}

// keywordDSNValue looks up key in a "host=... dbname=..." connection string.
func keywordDSNValue(raw, key string) (string, bool) {
	for _, field := range strings.Fields(raw) {
		name, value, ok := strings.Cut(field, "=")
		if !ok || name != key {
			continue
		}
		return strings.Trim(value, `"'`), true
	}
	return "", false
}

// normalizeDBURL turns on disable_prepared_binary_result unless the DSN
// already sets it. Poolers in transaction mode cannot serve binary results
// for prepared statements.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	if !isURLDSN(trimmed) {
		if trimmed == "" {
			return raw
		}
		if _, ok := keywordDSNValue(trimmed, preparedBinaryParam); ok {
			return raw
		}
		return trimmed + " " + preparedBinaryParam + "=yes"
	}

	parsed, _ := url.Parse(trimmed)
	query := parsed.Query()
	if query.Has(preparedBinaryParam) {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL feeds the db.name span attribute.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if isURLDSN(trimmed) {
		parsed, _ := url.Parse(trimmed)
		return strings.Trim(parsed.Path, "/ ")
	}
	name, _ := keywordDSNValue(trimmed, "dbname")
	return name
}
