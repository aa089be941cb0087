package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/doanvh/studentsvc/internal/observability"
)

func observedLogger() (observability.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return observability.NewLoggerFromZap(zap.New(core)), logs
}

func TestLogging_OneRecordPerRequest(t *testing.T) {
	logger, logs := observedLogger()

	handler := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/students", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http request", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/students", fields["path"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Contains(t, fields, "duration_ms")
	assert.Len(t, fields["request_id"], 8)
}

func TestLogging_DefaultStatus(t *testing.T) {
	logger, logs := observedLogger()

	// Handler writes the body without an explicit WriteHeader
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}

func TestLogging_BypassesMonitoring(t *testing.T) {
	logger, logs := observedLogger()

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/metrics", "/health", "/favicon.ico"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	assert.Equal(t, 0, logs.Len(), "monitoring paths must not produce request logs")
}

func TestLogging_RecordsPanicStatus(t *testing.T) {
	logger, logs := observedLogger()

	// Recovery sits inside Logging so the log line carries the 500
	handler := Logging(logger)(Recovery(observability.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusInternalServerError), logs.All()[0].ContextMap()["status"])
}

func TestLogging_ConcurrentRequestsKeepTheirIDs(t *testing.T) {
	logger, logs := observedLogger()

	handler := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	requests := 100
	var wg sync.WaitGroup
	wg.Add(requests)
	for i := 0; i < requests; i++ {
		go func(n int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
			req.Header.Set(HeaderXRequestID, fmt.Sprintf("id-%04d", n))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
		}(i)
	}
	wg.Wait()

	require.Equal(t, requests, logs.Len())

	// Every request logged exactly its own correlation id
	seen := make(map[string]bool, requests)
	for _, entry := range logs.All() {
		id, ok := entry.ContextMap()["request_id"].(string)
		require.True(t, ok)
		assert.False(t, seen[id], "request id %s logged twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, requests)
}
