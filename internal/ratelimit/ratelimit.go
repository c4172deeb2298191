// Package ratelimit enforces the public API's two-tier request limits.
// Requests presenting a valid API key share a generous per-key bucket;
// anonymous requests get a tighter per-IP bucket.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// APIKeyHeader carries the public API key.
const APIKeyHeader = "X-Api-Key"

// retryAfter is what 429 responses advise, in seconds.
const retryAfter = 60

// KeyValidator decides whether a presented API key selects the keyed tier.
// The default checks a minimum length; a real key store can be injected.
type KeyValidator func(key string) bool

// MinLengthKeyValidator accepts keys of at least n characters.
func MinLengthKeyValidator(n int) KeyValidator {
	return func(key string) bool {
		return len(key) >= n
	}
}

// Config holds the two tier limits, in requests per minute.
type Config struct {
	KeyedPerMinute     int
	AnonymousPerMinute int
}

// DefaultConfig returns the standard public tiers.
func DefaultConfig() Config {
	return Config{
		KeyedPerMinute:     600,
		AnonymousPerMinute: 60,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore manages per-identity limiters with TTL eviction.
type visitorStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMinute int
	ttl       time.Duration
	nowFunc   func() time.Time // injectable clock for testing
}

func newVisitorStore(perMinute int, ttl time.Duration) *visitorStore {
	s := &visitorStore{
		visitors:  make(map[string]*visitor),
		perMinute: perMinute,
		ttl:       ttl,
		nowFunc:   time.Now,
	}
	go s.cleanupLoop()
	return s
}

func (s *visitorStore) get(id string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[id]
	if !ok {
		limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)
		s.visitors[id] = &visitor{limiter: limiter, lastSeen: s.nowFunc()}
		return limiter
	}
	v.lastSeen = s.nowFunc()
	return v.limiter
}

func (s *visitorStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *visitorStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for id, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, id)
		}
	}
}

func (s *visitorStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// Limiter is the two-tier public rate limiter.
type Limiter struct {
	keyed     *visitorStore
	anonymous *visitorStore
	validator KeyValidator
	logger    *slog.Logger
}

// New creates a limiter with the given tiers and key validator.
func New(cfg Config, validator KeyValidator, logger *slog.Logger) *Limiter {
	const storeTTL = 3 * time.Minute
	return &Limiter{
		keyed:     newVisitorStore(cfg.KeyedPerMinute, storeTTL),
		anonymous: newVisitorStore(cfg.AnonymousPerMinute, storeTTL),
		validator: validator,
		logger:    logger,
	}
}

// Middleware enforces the limit. Exceeding it returns 429 with a
// Retry-After header and a retry_after field in the body.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, identity := l.resolve(r)

		if !limiter.Allow() {
			l.logger.Warn("public rate limit exceeded",
				slog.String("identity", identity),
				slog.String("path", r.URL.Path),
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolve picks the bucket for the request: a valid API key selects the
// keyed tier, anything else falls back to the client IP.
func (l *Limiter) resolve(r *http.Request) (*rate.Limiter, string) {
	if key := r.Header.Get(APIKeyHeader); key != "" && l.validator(key) {
		return l.keyed.get("key:" + key), "api-key"
	}
	ip := clientIP(r)
	return l.anonymous.get("ip:" + ip), ip
}

// clientIP extracts the client address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
