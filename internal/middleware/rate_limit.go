package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per key in fixed Redis windows. Without Redis,
// or while Redis is failing, it falls back to an in-process token bucket per
// key with the same average rate.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig

	mu        sync.Mutex
	local     map[string]*localEntry
	lastPrune time.Time
	now       func() time.Time
}

type localEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		local:  make(map[string]*localEntry),
		now:    time.Now,
	}
}

// NewRecipeCreationRateLimiter limits recipe creation per user per hour.
func NewRecipeCreationRateLimiter(redisClient *redis.Client, perHour int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:recipe_creation",
	})
}

// NewRecipeModificationRateLimiter limits updates of a single recipe per user
// per hour.
func NewRecipeModificationRateLimiter(redisClient *redis.Client, perHour int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:recipe_modification",
	})
}

// RateLimitMiddleware enforces the limit per authenticated user.
func (rl *RateLimiter) RateLimitMiddleware(scope string) gin.HandlerFunc {
	return rl.middleware(scope, func(c *gin.Context, userID string) string {
		return userID
	})
}

// PerRecipeRateLimitMiddleware enforces the limit per user and recipe id.
func (rl *RateLimiter) PerRecipeRateLimitMiddleware(scope string) gin.HandlerFunc {
	return rl.middleware(scope, func(c *gin.Context, userID string) string {
		return userID + ":" + c.Param("id")
	})
}

func (rl *RateLimiter) middleware(scope string, keyFor func(c *gin.Context, userID string) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), keyFor(c, userID.String()))
		if err != nil {
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimited.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          int(time.Until(resetTime).Seconds()),
			})
			return
		}

		c.Next()
	}
}

// IsAllowed checks if a request for the given key is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	if rl.config.Limit <= 0 {
		return true, 0, rl.now(), nil
	}
	if rl.redis == nil {
		allowed, remaining, reset := rl.allowLocal(key)
		return allowed, remaining, reset, nil
	}

	allowed, remaining, reset, err := rl.allowRedis(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("prefix", rl.config.KeyPrefix).Msg("redis rate limit check failed, using local limiter")
		allowed, remaining, reset = rl.allowLocal(key)
	}
	return allowed, remaining, reset, nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

func (rl *RateLimiter) allowLocal(key string) (bool, int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	rl.pruneLocked(now)
	entry, exists := rl.local[key]
	if !exists {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		entry = &localEntry{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.local[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	allowed := limiter.AllowN(now, 1)
	tokens := limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}
	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) / float64(limiter.Limit()) * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// pruneLocked drops buckets idle for a full window; an idle bucket is full
// again, so forgetting it changes nothing.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if now.Sub(rl.lastPrune) < rl.config.Window {
		return
	}
	rl.lastPrune = now
	threshold := now.Add(-rl.config.Window)
	for key, entry := range rl.local {
		if entry.lastAccess.Before(threshold) {
			delete(rl.local, key)
		}
	}
}
