package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debo-engineering/job-portal/internal/logger"
)

func TestRedisRateLimiterWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisRateLimiter(client, logger.NewNoOpLogger())
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "apply:1", 2, time.Minute))
	assert.True(t, limiter.Allow(ctx, "apply:1", 2, time.Minute))
	assert.False(t, limiter.Allow(ctx, "apply:1", 2, time.Minute))
	assert.True(t, limiter.Allow(ctx, "apply:2", 2, time.Minute), "keys are independent")

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, limiter.Allow(ctx, "apply:1", 2, time.Minute))
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRedisRateLimiter(client, logger.NewTestLogger(t))

	sha := redis.NewScript(rateLimitScript).Hash()
	mock.ExpectEvalSha(sha, []string{"ratelimit:login:ada@example.com"}, int64(900000), 5).
		SetErr(errors.New("READONLY You can't write against a read only replica"))

	assert.True(t, limiter.Allow(context.Background(), "login:ada@example.com", 5, 15*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRateLimiterIgnoresInvalidArguments(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRedisRateLimiter(client, logger.NewNoOpLogger())

	assert.True(t, limiter.Allow(context.Background(), "", 1, time.Minute))
	assert.True(t, limiter.Allow(context.Background(), "k", 0, time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopRateLimiter(t *testing.T) {
	assert.True(t, NewNoopRateLimiter().Allow(context.Background(), "k", 1, time.Second))
}
