package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/doanvh/studentsvc/internal/observability"
)

// requestIDLength is the length of generated correlation IDs. Eight
// characters give uniqueness at practical request volumes without
// cryptographic guarantees.
const requestIDLength = 8

// newRequestID generates a short opaque correlation ID.
func newRequestID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:requestIDLength]
}

// RequestID returns a middleware that attaches a correlation ID to
// each request's context and echoes it in the X-Request-ID response
// header. An ID supplied by the client is preserved.
func RequestID() func(http.Handler) http.Handler {
	return RequestIDWithGenerator(newRequestID)
}

// RequestIDWithGenerator returns a middleware that uses a custom ID
// generator.
func RequestIDWithGenerator(generator func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if requestID == "" {
				requestID = generator()
			}

			ctx := observability.ContextWithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)

			w.Header().Set(HeaderXRequestID, requestID)

			next.ServeHTTP(w, r)
		})
	}
}
