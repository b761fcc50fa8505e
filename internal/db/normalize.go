/**
 * @description
 * Connection string normalizer for managed Postgres.
 * Rewrites whatever DATABASE_URL a dashboard hands out into a canonical
 * postgresql:// URL that the driver accepts: legacy scheme alias, raw
 * credentials with special characters, and missing sslmode on hosts that
 * require TLS by policy.
 *
 * @dependencies
 * - standard "net/url"
 * - standard "strings"
 */

package db

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidConnectionString indicates the connection string could not be
// parsed into scheme and host.
var ErrInvalidConnectionString = errors.New("invalid connection string: missing scheme or host")

// managedTLSHostMarker identifies hosted Postgres providers that refuse
// plaintext connections. Supabase poolers drop connections without
// sslmode=require.
const managedTLSHostMarker = "supabase.co"

// NormalizePostgresURL canonicalizes a raw Postgres connection string.
// It is a pure string transform and is idempotent: normalizing an already
// normalized URL returns it unchanged.
func NormalizePostgresURL(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	normalized = strings.Trim(normalized, "'\"")

	// Legacy scheme alias, first occurrence only.
	if strings.HasPrefix(normalized, "postgres://") {
		normalized = "postgresql://" + strings.TrimPrefix(normalized, "postgres://")
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if parsed.Scheme == "" || parsed.Hostname() == "" {
		return "", ErrInvalidConnectionString
	}

	hostPart := parsed.Hostname()
	if port := parsed.Port(); port != "" {
		hostPart = hostPart + ":" + port
	}

	userinfo := ""
	if parsed.User != nil && parsed.User.Username() != "" {
		userinfo = encodeUserinfo(parsed.User.Username())
		if password, ok := parsed.User.Password(); ok {
			userinfo += ":" + encodeUserinfo(password)
		}
		userinfo += "@"
	}

	params := parseQueryOrdered(parsed.RawQuery)
	if strings.Contains(hostPart, managedTLSHostMarker) && !params.has("sslmode") {
		params = append(params, queryParam{key: "sslmode", value: "require"})
	}

	var b strings.Builder
	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(userinfo)
	b.WriteString(hostPart)
	b.WriteString(parsed.EscapedPath())
	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(params.encode())
	}
	if parsed.Fragment != "" {
		b.WriteString("#")
		b.WriteString(parsed.Fragment)
	}
	return b.String(), nil
}

// queryParam preserves the original ordering of query parameters, which a
// url.Values map would lose.
type queryParam struct {
	key   string
	value string
}

type queryParams []queryParam

func (q queryParams) has(key string) bool {
	for _, p := range q {
		if p.key == key {
			return true
		}
	}
	return false
}

func (q queryParams) encode() string {
	parts := make([]string, 0, len(q))
	for _, p := range q {
		parts = append(parts, url.QueryEscape(p.key)+"="+url.QueryEscape(p.value))
	}
	return strings.Join(parts, "&")
}

func parseQueryOrdered(rawQuery string) queryParams {
	var params queryParams
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			decodedKey = key
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			decodedValue = value
		}
		params = append(params, queryParam{key: decodedKey, value: decodedValue})
	}
	return params
}

// encodeUserinfo percent-encodes everything outside the unreserved set, the
// strictest encoding a Postgres URL accepts for credentials.
func encodeUserinfo(s string) string {
	const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(unreserved, c) >= 0 {
			b.WriteByte(c)
		} else {
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}
