// Package middleware provides HTTP middleware for the student records
// service: rate limiting, request logging, correlation IDs, panic
// recovery, and CORS.
package middleware

import (
	"net/http"
	"strings"
)

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderXForwardedFor is the X-Forwarded-For header name.
	HeaderXForwardedFor = "X-Forwarded-For"
)

// Content type constants.
const (
	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"

	// ContentTypeJSONUTF8 is the JSON content type with explicit charset.
	ContentTypeJSONUTF8 = "application/json;charset=UTF-8"
)

// Error response constants.
const (
	// ErrInternalServerError is the error message for internal server error.
	ErrInternalServerError = `{"error":"internal server error"}`
)

// Bypass paths shared by the rate limiter and the request logger.
// Monitoring probes must never be throttled or produce request logs.
const (
	// MonitoringPrefix is the path prefix of the metrics endpoint.
	MonitoringPrefix = "/metrics"

	// HealthPath is the health check path.
	HealthPath = "/health"

	// FaviconPath is the favicon path.
	FaviconPath = "/favicon.ico"
)

// isBypassed reports whether the path is exempt from rate limiting
// and request logging.
func isBypassed(r *http.Request) bool {
	path := r.URL.Path
	return strings.HasPrefix(path, MonitoringPrefix) ||
		path == HealthPath ||
		path == FaviconPath
}
