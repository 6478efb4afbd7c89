package api

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewRateLimiter creates a limiter allowing rps sustained and burst at once
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[key] = limiter
	return limiter
}

// Allow reports whether key may make another request now
func (l *RateLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// callerKey identifies the caller by identity, or by address when anonymous
func callerKey(c *gin.Context) string {
	if id := CurrentIdentity(c); id != nil {
		return "uid:" + strconv.FormatInt(id.ID, 10)
	}
	return "ip:" + c.ClientIP()
}

// allow checks the caller's bucket; a nil limiter allows everything
func (l *RateLimiter) allow(c *gin.Context) error {
	if l == nil || l.Allow(callerKey(c)) {
		return nil
	}
	return ErrRateLimited
}

// Middleware rejects callers that exceed their bucket
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := l.allow(c); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}
