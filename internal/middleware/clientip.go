// Package middleware provides HTTP middleware for authentication,
// CSRF protection and request rate limiting.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the client address used as the rate-limit identity.
// Prefers the first address in X-Forwarded-For (set by reverse proxies),
// then the direct connection address, then a literal "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple addresses; take the first one
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return "unknown"
}
