package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/NazarKuzyk/TodoList/internal/config"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket. Buckets
// idle past the cleanup interval are dropped while serving requests, so the
// map does not grow without bound.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit       rate.Limit
	burst       int
	maxIdle     time.Duration
	lastCleanup time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	requestsPerMin := cfg.RequestsPerMin
	if requestsPerMin <= 0 {
		requestsPerMin = 100
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}

	maxIdle := cfg.CleanupInterval
	if maxIdle <= 0 {
		maxIdle = 10 * time.Minute
	}

	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		limit:       rate.Limit(float64(requestsPerMin) / 60.0),
		burst:       burst,
		maxIdle:     maxIdle,
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > rl.maxIdle {
		for addr, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.maxIdle {
				delete(rl.visitors, addr)
			}
		}
		rl.lastCleanup = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}

// RateLimit builds the throttling middleware from config. A disabled config
// yields a pass-through handler.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return NewRateLimiter(cfg).Middleware()
}
