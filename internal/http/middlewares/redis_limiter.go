package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared across instances:
// INCR plus an EXPIRE set on the first hit of each window. On redis
// failure it lets the request through; auth endpoints should not go
// down with the cache.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
	limit  int
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		window: window,
		limit:  limit,
		prefix: "ratelimit:",
	}
}

func (rl *RedisLimiter) Allow(c *gin.Context, key string) (bool, time.Duration) {
	ctx := c.Request.Context()
	rkey := rl.prefix + key

	count, err := rl.rdb.Incr(ctx, rkey).Result()

	if err != nil {
		return true, 0
	}

	if count == 1 {
		_ = rl.rdb.Expire(ctx, rkey, rl.window).Err()
	}

	if count > int64(rl.limit) {
		ttl, err := rl.rdb.TTL(ctx, rkey).Result()
		if err != nil || ttl < 0 {
			ttl = rl.window
		}
		return false, ttl
	}

	return true, 0
}
