package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript increments the counter and guarantees the key carries
// the window TTL in the same server-side step. PTTL < 0 covers both the
// first hit of a window and a key whose TTL was lost, so a counter can
// never keep growing without an expiry.
var incrWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}`)

// RedisCounters is the shared CounterStore for multi-process deployments.
// The increment and the TTL check run as one script, so concurrent
// pipeline stages across processes agree on the count and rollover is
// simply the key expiring.
type RedisCounters struct {
	client redis.Scripter
}

func NewRedisCounters(client redis.Scripter) *RedisCounters {
	return &RedisCounters{client: client}
}

func (c *RedisCounters) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	vals, err := incrWindowScript.Run(ctx, c.client,
		[]string{"ratelimit:" + key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit incr: %w", err)
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("ratelimit incr: unexpected reply %v", vals)
	}

	count, countOK := vals[0].(int64)
	retryMs, retryOK := vals[1].(int64)
	if !countOK || !retryOK {
		return 0, 0, fmt.Errorf("ratelimit incr: unexpected reply %v", vals)
	}
	return count, time.Duration(retryMs) * time.Millisecond, nil
}
