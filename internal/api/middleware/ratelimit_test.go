package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis: connection refused")
}

func limitedEcho(store WindowStore, max int) *echo.Echo {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{Max: max, Window: time.Minute, Store: store, Logger: zerolog.Nop()}))
	e.GET("/api/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	return e
}

func hit(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_BlocksAfterMax(t *testing.T) {
	e := limitedEcho(NewMemoryStore(), 2)

	first := hit(e, "10.0.0.1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	require.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)

	blocked := hit(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, blocked.Body.String(), rateLimitMessage)

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.2").Code, "other clients keep their own window")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	e := limitedEcho(failingStore{}, 1)

	for i := 0; i < 3; i++ {
		rec := hit(e, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestMemoryStore_WindowResets(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	n, ttl, err := s.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, ttl)

	now = now.Add(20 * time.Second)
	n, ttl, _ = s.Increment(ctx, "k", time.Minute)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 40*time.Second, ttl)

	now = now.Add(40 * time.Second)
	n, ttl, _ = s.Increment(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n, "a new window starts at the reset instant")
	assert.Equal(t, time.Minute, ttl)
}

func TestMemoryStore_EvictsExpiredKeys(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = s.Increment(ctx, "a", time.Minute)
	_, _, _ = s.Increment(ctx, "b", time.Minute)
	now = now.Add(2 * time.Minute)
	_, _, _ = s.Increment(ctx, "c", time.Minute)

	assert.Len(t, s.windows, 1)
}
