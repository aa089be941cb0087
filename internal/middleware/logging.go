package middleware

import (
	"net/http"
	"time"

	"github.com/doanvh/studentsvc/internal/observability"
)

// responseWriter wraps http.ResponseWriter to capture status code and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Flush implements http.Flusher for streaming support.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging returns a middleware that emits exactly one structured log
// record per completed request: method, path, status, duration in
// milliseconds, and the correlation ID. Bypassed paths (metrics,
// health, favicon) produce no record. The record is emitted via defer
// so a panicking handler still produces its log line; the correlation
// context lives in the request context and is discarded with it, so
// nothing leaks across requests on a reused connection.
func Logging(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isBypassed(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			defer func() {
				duration := time.Since(start)
				requestID := observability.RequestIDFromContext(r.Context())

				logger.Info("http request",
					observability.String("method", r.Method),
					observability.String("path", r.URL.Path),
					observability.Int("status", rw.status),
					observability.Int64("duration_ms", duration.Milliseconds()),
					observability.String("request_id", requestID),
				)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
