// file: internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestID(zap.NewNop())(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/badges", nil))

	require.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get(HeaderXRequestID))
}

func TestRequestIDHonorsUpstreamHeader(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})

	handler := RequestID(zap.NewNop())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "proxy-assigned-id")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "proxy-assigned-id", captured)
	assert.Equal(t, "proxy-assigned-id", rec.Header().Get(HeaderXRequestID))
}

func TestCORSShortCircuitsPreflight(t *testing.T) {
	reached := false
	inner := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		reached = true
	})

	handler := CORS("http://localhost:5173")(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil))

	assert.False(t, reached, "preflight must not hit the application handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRecoveryConvertsPanicToJSON500(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	})

	handler := Recovery(zap.NewNop())(panicking)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestHTTPMetricsCountsByStatusClass(t *testing.T) {
	metrics := NewHTTPMetrics()
	mw := metrics.Middleware()

	serve := func(status int) {
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	serve(http.StatusOK)
	serve(http.StatusCreated)
	serve(http.StatusNotFound)
	serve(http.StatusInternalServerError)

	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(4), snapshot.RequestsTotal)
	assert.Equal(t, int64(2), snapshot.Responses2xx)
	assert.Equal(t, int64(1), snapshot.Responses4xx)
	assert.Equal(t, int64(1), snapshot.Responses5xx)
	assert.Equal(t, int64(0), snapshot.InFlight)
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "203.0.113.9", getClientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", getClientIP(req))

	req.Header.Del("X-Real-IP")
	assert.Equal(t, "10.0.0.1:4321", getClientIP(req))
}
