package middleware

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doanvh/studentsvc/internal/observability"
	"github.com/doanvh/studentsvc/internal/ratelimit"
)

// RateLimitOption is a functional option for the rate limit middleware.
type RateLimitOption func(*rateLimitOptions)

type rateLimitOptions struct {
	logger observability.Logger
	onHit  func()
}

// WithRateLimitLogger sets the logger used for rejection warnings.
func WithRateLimitLogger(logger observability.Logger) RateLimitOption {
	return func(o *rateLimitOptions) {
		o.logger = logger
	}
}

// WithRateLimitHitCallback sets a callback invoked on every rejected
// request, typically to record a metric.
func WithRateLimitHitCallback(cb func()) RateLimitOption {
	return func(o *rateLimitOptions) {
		o.onHit = cb
	}
}

// RateLimit returns a middleware that consults the limiter before any
// other request processing. Bypassed paths pass through untouched.
// Admitted requests continue unchanged; rejected requests are
// short-circuited with a 409 JSON body and never reach downstream
// handlers.
func RateLimit(limiter *ratelimit.Service, opts ...RateLimitOption) func(http.Handler) http.Handler {
	o := &rateLimitOptions{
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	body := rejectionBody(limiter.Capacity(), limiter.Window())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isBypassed(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientKey(r)
			if limiter.TryConsume(key) {
				next.ServeHTTP(w, r)
				return
			}

			o.logger.Warn("rate limit exceeded",
				observability.String("client", key),
				observability.String("path", r.URL.Path),
			)
			if o.onHit != nil {
				o.onHit()
			}

			w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, body)
		})
	}
}

// rejectionBody builds the rejection payload. With the default
// configuration it reads exactly:
//
//	{"error": "Rate limit exceeded", "message": "Too many requests - limit: 10 requests per minute", "code": 409}
func rejectionBody(capacity int, window time.Duration) string {
	return fmt.Sprintf(
		`{"error": "Rate limit exceeded", "message": "Too many requests - limit: %d requests per %s", "code": %d}`,
		capacity, windowText(window), http.StatusConflict,
	)
}

// windowText renders the refill window for the rejection message.
func windowText(window time.Duration) string {
	switch window {
	case time.Minute:
		return "minute"
	case time.Second:
		return "second"
	case time.Hour:
		return "hour"
	default:
		return window.String()
	}
}
