package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
)

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocalRateLimiter_BurstThenBlock(t *testing.T) {
	rl := NewLocalRateLimiter(0.001, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i)
	}

	ok, err := rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rl.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other keys keep their own bucket")
	assert.Equal(t, 2, rl.Len())
}

func TestRedisRateLimiter_FixedWindow(t *testing.T) {
	mr, client := newRedisClient(t)
	rl := NewRedisRateLimiter(client, "test", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl := mr.TTL("test:1.2.3.4")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	mr.FastForward(time.Minute + time.Second)

	ok, err = rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "a new window starts after expiry")
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	_, client := newRedisClient(t)
	rl := NewRedisRateLimiter(client, "", 1, time.Minute)
	ctx := context.Background()

	ok, _ := rl.Allow(ctx, "k")
	require.True(t, ok)
	ok, _ = rl.Allow(ctx, "k")
	require.False(t, ok)

	require.NoError(t, rl.Reset(ctx, "k"))

	ok, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	mr, client := newRedisClient(t)
	rl := NewRedisRateLimiter(client, "test", 1, time.Minute)
	mr.Close()

	ok, err := rl.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok)
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) {
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test", "info")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	cases := []struct {
		name    string
		limiter Limiter
		want    int
	}{
		{name: "allowed", limiter: stubLimiter{allowed: true}, want: http.StatusTeapot},
		{name: "blocked", limiter: stubLimiter{allowed: false}, want: http.StatusTooManyRequests},
		{name: "backend error fails open", limiter: stubLimiter{allowed: true, err: assert.AnError}, want: http.StatusTeapot},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := RateLimitMiddleware(tc.limiter, "general", log)(next)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestNewRateLimiters_PicksBackend(t *testing.T) {
	local := NewRateLimiters(nil)
	assert.IsType(t, &LocalRateLimiter{}, local.Login)

	_, client := newRedisClient(t)
	shared := NewRateLimiters(client)
	assert.IsType(t, &RedisRateLimiter{}, shared.Register)
}
