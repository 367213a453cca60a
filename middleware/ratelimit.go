package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimit provides per-actor token-bucket rate limiting. Authenticated
// requests are keyed by character, anonymous ones by client IP, so it
// should be installed after Auth on protected groups.
// r = requests per second, b = burst size.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	limiters := &sync.Map{}

	// Cleanup goroutine: remove stale entries every 5 minutes.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-10 * time.Minute).UnixNano()
			limiters.Range(func(k, v interface{}) bool {
				if v.(*actorLimiter).lastSeen.Load() < cutoff {
					limiters.Delete(k)
				}
				return true
			})
		}
	}()

	getLimiter := func(key string) *rate.Limiter {
		v, _ := limiters.LoadOrStore(key, &actorLimiter{limiter: rate.NewLimiter(r, b)})
		al := v.(*actorLimiter)
		al.lastSeen.Store(time.Now().UnixNano())
		return al.limiter
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := GetCharID(c); id != 0 {
			key = "char:" + strconv.FormatInt(id, 10)
		}
		if !getLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
