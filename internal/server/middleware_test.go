package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/riskgate/internal/common"
)

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestResponseWriter_FlushesThroughController(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rc := http.NewResponseController(rw)
	assert.NoError(t, rc.Flush())
	assert.True(t, rec.Flushed)
	assert.Equal(t, rec, rw.Unwrap())
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var seen *responseWriter
	h := loggingMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, seen.statusCode)
	assert.Equal(t, len("short and stout"), seen.bytesWritten)
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("stale")

	rl.mu.Lock()
	rl.visitors["stale"].lastSeen = time.Now().Add(-2 * visitorTTL)
	rl.lastSweep = time.Now().Add(-2 * sweepInterval)
	rl.mu.Unlock()

	rl.Allow("fresh")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "stale")
	assert.Contains(t, rl.visitors, "fresh")
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, "198.51.100.7", clientKey(r))

	r.RemoteAddr = "198.51.100.7"
	assert.Equal(t, "198.51.100.7", clientKey(r))
}
