package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultAnalysisPerMinute = 30
	defaultAnalysisBurst     = 10
)

// AnalysisRateLimit returns middleware that throttles the AI analysis
// endpoints per client IP. Every AI call costs upstream quota, so these
// routes are limited harder than the rest of the API. Limits come from
// ANALYSIS_RATE_LIMIT (requests per minute) and ANALYSIS_RATE_BURST.
func AnalysisRateLimit() gin.HandlerFunc {
	perMinute := envInt("ANALYSIS_RATE_LIMIT", defaultAnalysisPerMinute)
	burst := envInt("ANALYSIS_RATE_BURST", defaultAnalysisBurst)

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
			limiters[ip] = limiter
		}
		return limiter
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many analysis requests, please try again shortly",
			})
			return
		}
		c.Next()
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
