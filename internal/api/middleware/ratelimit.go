package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rabucejojr/digial-logbook/internal/api/metrics"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// WindowStore counts hits per key within a fixed window.
type WindowStore interface {
	// Increment records a hit and returns the count in the current window
	// and the time until that window resets.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
	Store  WindowStore
	Logger zerolog.Logger
}

// RateLimit allows Max requests per client IP per Window. Store failures
// let the request through.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limit := strconv.Itoa(cfg.Max)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			count, ttl, err := cfg.Store.Increment(c.Request().Context(), ip, cfg.Window)
			if err != nil {
				cfg.Logger.Warn().Err(err).Str("ip", ip).Msg("rate limit store unavailable")
				return next(c)
			}

			remaining := int64(cfg.Max) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

			if count > int64(cfg.Max) {
				metrics.RateLimitedTotal.Inc()
				h.Set("Retry-After", strconv.Itoa(int((ttl+time.Second-1)/time.Second)))
				return echo.NewHTTPError(http.StatusTooManyRequests, rateLimitMessage)
			}
			return next(c)
		}
	}
}

// MemoryStore is a process-local WindowStore used when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	windows  map[string]*memoryWindow
	now      func() time.Time
	lastScan time.Time
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*memoryWindow), now: time.Now}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastScan) >= window {
		for k, w := range s.windows {
			if !now.Before(w.resetAt) {
				delete(s.windows, k)
			}
		}
		s.lastScan = now
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}
