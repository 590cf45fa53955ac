package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"debo-engineering/job-portal/internal/logger"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

const rateLimitTimeout = 250 * time.Millisecond

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

type redisRateLimiter struct {
	client redis.Scripter
	script *redis.Script
	log    logger.Logger
}

// NewRedisRateLimiter returns a fixed-window limiter. Backend failures allow the request.
func NewRedisRateLimiter(client redis.Scripter, log logger.Logger) RateLimiter {
	return &redisRateLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		log:    log,
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}

	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, rateLimitTimeout)
	defer cancel()

	allowed, err := l.script.Run(ctx, l.client, []string{"ratelimit:" + key}, ttl, limit).Int64()
	if err != nil {
		l.log.Warn("rate limiter unavailable, allowing request", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return true
	}

	return allowed == 1
}

type noopRateLimiter struct{}

func NewNoopRateLimiter() RateLimiter {
	return noopRateLimiter{}
}

func (noopRateLimiter) Allow(context.Context, string, int, time.Duration) bool {
	return true
}
