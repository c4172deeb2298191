package ratelimit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestLimiter(keyed, anon int) *Limiter {
	return New(Config{KeyedPerMinute: keyed, AnonymousPerMinute: anon}, MinLengthKeyValidator(32), testLogger())
}

func TestLimiter_AnonymousTier_AllowsUpToLimit(t *testing.T) {
	l := newTestLimiter(600, 60)
	handler := l.Middleware(okHandler())

	for i := 0; i < 60; i++ {
		req := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
		req.RemoteAddr = "198.51.100.7:4321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"retry_after":60`)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestLimiter_ValidKeySelectsKeyedTier(t *testing.T) {
	// Anonymous tier would exhaust at 2; the key's tier must carry the rest.
	l := newTestLimiter(100, 2)
	handler := l.Middleware(okHandler())
	key := strings.Repeat("k", 32)

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
		req.RemoteAddr = "198.51.100.7:4321"
		req.Header.Set(APIKeyHeader, key)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
}

func TestLimiter_ShortKeyFallsBackToAnonymousTier(t *testing.T) {
	l := newTestLimiter(100, 2)
	handler := l.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
		req.RemoteAddr = "198.51.100.7:4321"
		req.Header.Set(APIKeyHeader, "too-short")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	req.Header.Set(APIKeyHeader, "too-short")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLimiter_SeparateIPsGetSeparateBuckets(t *testing.T) {
	l := newTestLimiter(100, 1)
	handler := l.Middleware(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
	first.RemoteAddr = "198.51.100.7:4321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodGet, "/public/v1/reviews/commerce", nil)
	second.RemoteAddr = "203.0.113.9:5555"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP_ForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.RemoteAddr = "127.0.0.1:1234"
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestClientIP_RemoteAddrFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	assert.Equal(t, "198.51.100.7", clientIP(req))
}

func TestVisitorStore_CleanupEvictsStale(t *testing.T) {
	s := &visitorStore{
		visitors:  make(map[string]*visitor),
		perMinute: 60,
		ttl:       time.Minute,
		nowFunc:   time.Now,
	}

	s.get("ip:a")
	s.get("ip:b")
	require.Equal(t, 2, s.len())

	s.nowFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }
	s.cleanup()
	assert.Equal(t, 0, s.len())
}
