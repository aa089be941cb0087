package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// DefaultCORSConfig returns a configuration that permits cross-origin
// calls from any origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		MaxAge:       86400,
	}
}

// corsHeaders holds pre-computed CORS header values.
type corsHeaders struct {
	allowOrigins    map[string]bool
	allowAllOrigins bool
	allowMethods    string
	allowHeaders    string
	maxAge          string
}

func newCORSHeaders(cfg CORSConfig) *corsHeaders {
	allowOrigins := make(map[string]bool)
	allowAllOrigins := false
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowAllOrigins = true
			continue
		}
		allowOrigins[origin] = true
	}

	return &corsHeaders{
		allowOrigins:    allowOrigins,
		allowAllOrigins: allowAllOrigins,
		allowMethods:    strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:    strings.Join(cfg.AllowHeaders, ", "),
		maxAge:          strconv.Itoa(cfg.MaxAge),
	}
}

func (h *corsHeaders) set(w http.ResponseWriter, origin string) {
	switch {
	case h.allowAllOrigins:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case origin != "" && h.allowOrigins[origin]:
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
	}

	if h.allowMethods != "" {
		w.Header().Set("Access-Control-Allow-Methods", h.allowMethods)
	}
	if h.allowHeaders != "" {
		w.Header().Set("Access-Control-Allow-Headers", h.allowHeaders)
	}
	if h.maxAge != "0" {
		w.Header().Set("Access-Control-Max-Age", h.maxAge)
	}
}

// CORS returns a middleware that handles CORS, answering preflight
// requests directly.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	headers := newCORSHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers.set(w, r.Header.Get("Origin"))

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
