package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/iztro-mcp/internal/infra/config"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}
		requestID := c.GetString(requestIDKey)

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "request_id", requestID, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "request_id", requestID, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":      httpErr.Code,
				"message":   message,
				"requestId": requestID,
			},
		})
	}
}

// rateLimitMiddleware applies a token bucket per client. Authenticated
// callers are keyed by token subject, everyone else by IP.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newRateLimiter(cfg, time.Now)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := getClaims(c); ok {
			key = "sub:" + claims.Subject
		}
		allowed, retryAfter := limiter.allow(key)
		if allowed {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "client", key, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

type rateLimiter struct {
	clients       map[string]*bucket
	mu            sync.Mutex
	ratePerMinute float64
	burst         float64
	ttl           time.Duration
	now           func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newRateLimiter(cfg config.RateLimitConfig, now func() time.Time) *rateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		clients:       make(map[string]*bucket),
		ratePerMinute: float64(cfg.RequestsPerMinute),
		burst:         float64(burst),
		ttl:           5 * time.Minute,
		now:           now,
	}
}

// allow spends one token for key. When the bucket is empty it reports how
// long until the next token is available.
func (l *rateLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.clients[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.clients[key] = b
	} else {
		elapsed := now.Sub(b.lastSeen).Minutes()
		if elapsed > 0 {
			b.tokens = math.Min(l.burst, b.tokens+elapsed*l.ratePerMinute)
		}
		b.lastSeen = now
	}
	l.cleanupLocked(now)
	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / l.ratePerMinute * float64(time.Minute))
		return false, wait
	}
	b.tokens--
	return true, 0
}

func (l *rateLimiter) cleanupLocked(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.clients, key)
		}
	}
}
