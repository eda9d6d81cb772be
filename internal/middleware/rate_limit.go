// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/utils"
)

const visitorIdleTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller. Callers are keyed by
// principal once authenticated, by client IP before.
type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int

	// writesOnly skips safe methods, so reads never spend write tokens.
	writesOnly bool
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	go rl.cleanupVisitors()

	return rl
}

func (rl *RateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		rl.evictIdle(time.Now())
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, key)
		}
	}
}

// Allow spends one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.writesOnly && isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		key := c.ClientIP()
		if principal, ok := utils.GetPrincipalFromContext(c); ok {
			key = principal
		}

		if !rl.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": i18n.T(utils.GetLangFromContext(c), i18n.KeyRateLimited),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

var (
	generalLimiter = NewRateLimiter(rate.Every(100*time.Millisecond), 20)
	writeLimiter   = newWriteLimiter(rate.Every(200*time.Millisecond), 30)
)

func newWriteLimiter(r rate.Limit, b int) *RateLimiter {
	rl := NewRateLimiter(r, b)
	rl.writesOnly = true
	return rl
}

func GeneralRateLimit() gin.HandlerFunc {
	return generalLimiter.Middleware()
}

// WriteRateLimit limits ledger writes per principal. Apply after AuthRequired.
func WriteRateLimit() gin.HandlerFunc {
	return writeLimiter.Middleware()
}
