package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakeMongo struct{ err error }

func (f fakeMongo) Ping(context.Context, *readpref.ReadPref) error { return f.err }

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("test", fakeMongo{}, nil)
	h.now = func() time.Time { return handlerNow }

	c, rec := newContext(http.MethodGet, "/health", "")
	if err := h.Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp livenessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "OK" || resp.Environment != "test" || !resp.Timestamp.Equal(handlerNow) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	cases := []struct {
		name   string
		mongo  fakeMongo
		redis  RedisPinger
		code   int
		status string
		deps   int
	}{
		{"all up", fakeMongo{}, fakeRedis{}, http.StatusOK, "ok", 2},
		{"no redis configured", fakeMongo{}, nil, http.StatusOK, "ok", 1},
		{"mongo down", fakeMongo{err: errors.New("no reachable servers")}, fakeRedis{}, http.StatusServiceUnavailable, "degraded", 2},
		{"redis down", fakeMongo{}, fakeRedis{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler("test", tc.mongo, tc.redis)

			c, rec := newContext(http.MethodGet, "/health/ready", "")
			if err := h.Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tc.status || len(resp.Dependencies) != tc.deps {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestHealthHandler_Banner(t *testing.T) {
	h := NewHealthHandler("test", fakeMongo{}, nil)

	c, rec := newContext(http.MethodGet, "/", "")
	if err := h.Banner(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp bannerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Version != serviceVersion || resp.Documentation != "/api-docs" {
		t.Fatalf("unexpected banner: %+v", resp)
	}
}
