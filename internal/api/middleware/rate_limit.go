package middleware

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 3 * time.Minute
	limiterCleanupPeriod = time.Minute
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	ips sync.Map
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

type client struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewIPRateLimiter creates a limiter allowing r requests per second with
// bursts of b. Idle entries are evicted until ctx is done.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{r: r, b: b}
	go i.cleanupLoop(ctx)
	return i
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := i.ips.Load(ip); ok {
		c := v.(*client)
		c.lastSeen.Store(now)
		return c.limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	// Double check
	if v, ok := i.ips.Load(ip); ok {
		c := v.(*client)
		c.lastSeen.Store(now)
		return c.limiter
	}

	c := &client{limiter: rate.NewLimiter(i.r, i.b)}
	c.lastSeen.Store(now)
	i.ips.Store(ip, c)
	return c.limiter
}

// Allow reports whether ip may make a request now.
func (i *IPRateLimiter) Allow(ip string) bool {
	return i.getLimiter(ip).Allow()
}

func (i *IPRateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.evictIdle(time.Now().Add(-limiterIdleTTL))
		}
	}
}

func (i *IPRateLimiter) evictIdle(before time.Time) {
	cutoff := before.UnixNano()
	i.ips.Range(func(key, value interface{}) bool {
		if value.(*client).lastSeen.Load() < cutoff {
			i.ips.Delete(key)
		}
		return true
	})
}

// RateLimit throttles requests per client IP and answers 429 when the
// bucket is empty.
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too Many Attempts."})
			return
		}
		c.Next()
	}
}
