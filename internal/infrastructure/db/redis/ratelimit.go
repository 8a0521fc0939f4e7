package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// incrWindow bumps the counter and starts the window on the first hit, in
// one round trip so concurrent instances see a consistent count.
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {n, ttl}
`)

// WindowCounter is a fixed-window request counter shared by every API instance.
// Key format: ratelimit:<client key>
type WindowCounter struct {
	client redis.Scripter
}

func NewWindowCounter(client redis.Scripter) *WindowCounter {
	return &WindowCounter{client: client}
}

// Increment records a hit for key and returns the count within the current
// window and the time left until it resets.
func (w *WindowCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrWindow.Run(ctx, w.client, []string{keyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit incr: unexpected reply %v", res)
	}

	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return res[0], ttl, nil
}
