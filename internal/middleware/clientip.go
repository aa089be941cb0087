package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientKey derives the rate limiting key for a request: the first
// entry of X-Forwarded-For (trimmed) when the header is present and
// non-empty, otherwise the direct peer address with the port stripped.
func ClientKey(r *http.Request) string {
	xff := r.Header.Get(HeaderXForwardedFor)
	if xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	return stripPort(r.RemoteAddr)
}

// stripPort removes the port from an address string. Handles both
// IPv4 ("192.168.1.1:8080") and IPv6 ("[::1]:8080") formats.
func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// No port present or invalid format, return as-is
		return addr
	}
	return host
}
