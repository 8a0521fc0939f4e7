package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScripter answers EvalSha with a canned reply. Other Scripter methods
// are left to the embedded nil interface and panic if reached.
type fakeScripter struct {
	redis.Scripter
	reply   any
	err     error
	gotKeys []string
	gotArgs []any
}

func (f *fakeScripter) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.gotKeys = keys
	f.gotArgs = args
	return redis.NewCmdResult(f.reply, f.err)
}

func TestWindowCounter_Increment(t *testing.T) {
	fake := &fakeScripter{reply: []any{int64(3), int64(60000)}}
	wc := NewWindowCounter(fake)

	n, ttl, err := wc.Increment(context.Background(), "10.0.0.1", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.Minute, ttl)
	assert.Equal(t, []string{"ratelimit:10.0.0.1"}, fake.gotKeys)
	assert.Equal(t, []any{int64(900000)}, fake.gotArgs)
}

func TestWindowCounter_MissingTTLFallsBackToWindow(t *testing.T) {
	wc := NewWindowCounter(&fakeScripter{reply: []any{int64(1), int64(-1)}})

	_, ttl, err := wc.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func TestWindowCounter_Error(t *testing.T) {
	wc := NewWindowCounter(&fakeScripter{err: errors.New("connection refused")})

	_, _, err := wc.Increment(context.Background(), "k", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit incr")
}
