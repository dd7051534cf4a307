package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestAccessMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "debug", "json")

	h := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hola"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_access", entry["msg"])
	assert.Equal(t, "/api/dashboard", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, 4, entry["bytes"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestAccessMiddlewareKeepsUpstreamRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "debug", "json")

	var seen string
	h := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestLConcurrentFirstUse(t *testing.T) {
	defaultLogger.Store(nil)
	t.Cleanup(func() { defaultLogger.Store(nil) })

	var wg sync.WaitGroup
	got := make([]*slog.Logger, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = L()
		}(i)
	}
	wg.Wait()
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}
