package middleware

import (
	"net/http"
	"sync"

	"github.com/SolYield/yieldgate/internal/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterRegistry hands each caller its own token bucket.
type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	qps      rate.Limit
	burst    int
}

func newLimiterRegistry(cfg config.LimitsConfig) *limiterRegistry {
	qps := rate.Limit(cfg.QPS)
	if cfg.QPS <= 0 {
		qps = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &limiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		qps:      qps,
		burst:    burst,
	}
}

func (r *limiterRegistry) get(caller string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[caller]
	if !ok {
		l = rate.NewLimiter(r.qps, r.burst)
		r.limiters[caller] = l
	}
	return l
}

// RateLimitMiddleware throttles per caller. Must run after
// AuthMiddleware so the caller identity is resolved.
func RateLimitMiddleware(cfg config.LimitsConfig) gin.HandlerFunc {
	registry := newLimiterRegistry(cfg)
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		if !registry.get(caller).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
