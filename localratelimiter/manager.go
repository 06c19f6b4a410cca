package localratelimiter

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mangashelf/mangashelf/internal/config"
)

const (
	cleanupInterval = time.Minute
	idleTimeout     = 3 * time.Minute
)

// RateLimiter throttles each client IP with its own token bucket.
type RateLimiter struct {
	clientLimiters map[string]*limiterEntry
	mutex          sync.Mutex
	limit          rate.Limit
	burst          int
	now            func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter starts a cleanup loop that runs until ctx is done.
func NewRateLimiter(ctx context.Context, rateLimitConfig config.RateLimitConfig) *RateLimiter {
	burst := rateLimitConfig.Burst
	if burst <= 0 {
		burst = 1
	}

	rl := &RateLimiter{
		clientLimiters: make(map[string]*limiterEntry),
		limit:          rate.Limit(rateLimitConfig.SummariesPerSecond),
		burst:          burst,
		now:            time.Now,
	}
	go rl.cleanupOldLimiters(ctx)
	return rl
}

// RateLimiterMiddleware aborts with 429 once a client exhausts its bucket.
func (rl *RateLimiter) RateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) Allow(clientKey string) bool {
	rl.mutex.Lock()
	entry := rl.getLimiter(clientKey)
	seen := entry.lastSeen
	rl.mutex.Unlock()

	return entry.limiter.AllowN(seen, 1)
}

func (rl *RateLimiter) getLimiter(key string) *limiterEntry {
	now := rl.now()
	if entry, exists := rl.clientLimiters[key]; exists {
		entry.lastSeen = now
		return entry
	}

	entry := &limiterEntry{
		limiter:  rate.NewLimiter(rl.limit, rl.burst),
		lastSeen: now,
	}
	rl.clientLimiters[key] = entry

	return entry
}

func (rl *RateLimiter) cleanupOldLimiters(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.removeIdle()
		}
	}
}

func (rl *RateLimiter) removeIdle() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, entry := range rl.clientLimiters {
		if now.Sub(entry.lastSeen) > idleTimeout {
			delete(rl.clientLimiters, key)
		}
	}
}
