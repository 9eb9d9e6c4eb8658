package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalRateLimiter keeps one token bucket per key in a bounded LRU. Entries
// expire after RateLimitIdleTTL and come back with a full bucket.
type LocalRateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewLocalRateLimiter(requestsPerSecond float64, burst int) *LocalRateLimiter {
	return &LocalRateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](constants.RateLimitCacheSize, nil, constants.RateLimitIdleTTL),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *LocalRateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter
}

func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	return rl.getLimiter(key).Allow(), nil
}

func (rl *LocalRateLimiter) Len() int {
	return rl.limiters.Len()
}

type RateLimiters struct {
	General  Limiter
	Login    Limiter
	Register Limiter
}

// NewRateLimiters shares limits through Redis when a client is given and
// falls back to per-process buckets otherwise.
func NewRateLimiters(client *redis.Client) RateLimiters {
	if client != nil {
		return RateLimiters{
			General:  NewRedisRateLimiter(client, "ratelimit:general", constants.RateLimitGeneralRequestsPerWindow, constants.RateLimitWindow),
			Login:    NewRedisRateLimiter(client, "ratelimit:login", constants.RateLimitLoginRequestsPerWindow, constants.RateLimitWindow),
			Register: NewRedisRateLimiter(client, "ratelimit:register", constants.RateLimitRegisterRequestsPerWindow, constants.RateLimitWindow),
		}
	}
	return RateLimiters{
		General:  NewLocalRateLimiter(constants.RateLimitGeneralRequestsPerSecond, constants.RateLimitGeneralBurst),
		Login:    NewLocalRateLimiter(constants.RateLimitLoginRequestsPerSecond, constants.RateLimitLoginBurst),
		Register: NewLocalRateLimiter(constants.RateLimitRegisterRequestsPerSecond, constants.RateLimitRegisterBurst),
	}
}

// RateLimitMiddleware rejects with 429 once limiter refuses the client key.
// Backend errors let the request through.
func RateLimitMiddleware(limiter Limiter, limiterType string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetClientIP(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				metrics.RateLimitBackendErrors.WithLabelValues(limiterType).Inc()
				log.WithFields(r.Context(), logger.Fields{
					"limiter_type": limiterType,
					"action":       "rate_limit_backend_error",
				}).Warnf("rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				metrics.RateLimitBlocked.WithLabelValues(r.URL.Path, limiterType).Inc()
				WriteDomainError(w, r, commonerrors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
