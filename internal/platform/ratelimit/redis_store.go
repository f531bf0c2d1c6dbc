package ratelimit

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// fixedWindow increments KEYS[1], starting its window on the first hit, and
// returns the count with the remaining window in milliseconds.
var fixedWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisStore shares counters between API instances.
type RedisStore struct {
	rc     redis.UniversalClient
	prefix string
}

// NewRedisStore keeps counters under "rl:" keys.
func NewRedisStore(rc redis.UniversalClient) *RedisStore {
	return &RedisStore{rc: rc, prefix: "rl:"}
}

func (s *RedisStore) Allow(c echo.Context, key string, limit int, window time.Duration) (bool, int, error) {
	res, err := fixedWindow.Run(c.Request().Context(), s.rc, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	count, ttl := res[0], res[1]
	if count <= int64(limit) {
		return true, 0, nil
	}
	if ttl <= 0 {
		return false, 0, nil
	}
	return false, int((ttl + 999) / 1000), nil
}
