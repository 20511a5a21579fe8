package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/core/port"
)

// RateLimiter enforces a sliding-window limit keyed by client IP. It is used
// on the dashboard login route to slow password guessing. A store outage
// fails open: login availability wins over throttling.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a rate limiter over the provided store. A nil store
// disables limiting.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock injects a custom clock, primarily for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// Limit returns a middleware allowing at most limit requests per window per
// client IP.
func (rl *RateLimiter) Limit(name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.store == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}
		key := name + ":" + ip

		now := rl.now()
		ctx := c.Request.Context()

		if err := rl.store.TrimWindow(ctx, key, window, now); err != nil {
			rl.logger.Warn("rate limit trim failed", zap.String("rule", name), zap.Error(err))
			c.Next()
			return
		}

		count, err := rl.store.CountAttempts(ctx, key, window, now)
		if err != nil {
			rl.logger.Warn("rate limit count failed", zap.String("rule", name), zap.Error(err))
			c.Next()
			return
		}

		if count >= limit {
			retryAfter := window
			if oldest, ok, err := rl.store.OldestAttempt(ctx, key, window, now); err == nil && ok {
				retryAfter = oldest.Add(window).Sub(now)
				if retryAfter < 0 {
					retryAfter = 0
				}
			}

			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
			rl.logger.Warn("rate limit record failed", zap.String("rule", name), zap.Error(err))
		}

		c.Next()
	}
}
