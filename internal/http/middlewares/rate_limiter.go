package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/http/handlers"
)

// Counter counts hits against a key in fixed windows.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

type RateLimiter struct {
	counter Counter
	window  time.Duration
	limit   int64
	log     *slog.Logger
}

func NewRateLimiter(counter Counter, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		log:     log,
	}
}

// RateLimiterMiddleware enforces the limit for a derived key. A failing counter lets the request through.
func (rl *RateLimiter) RateLimiterMiddleware(scope string, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, resetIn, err := rl.counter.Hit(c.Request.Context(), scope+":"+key, rl.window)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limiter unavailable", "scope", scope, "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(math.Ceil(resetIn.Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			handlers.RespondError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.", nil)
			return
		}

		c.Next()
	}
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

// MemoryCounter keeps windows in process memory.
type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{clients: make(map[string]*clientBucket), now: time.Now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]
	if !ok || !now.Before(b.windowEnd) {
		m.prune(now)
		b = &clientBucket{windowEnd: now.Add(window)}
		m.clients[key] = b
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

func (m *MemoryCounter) prune(now time.Time) {
	for k, b := range m.clients {
		if !now.Before(b.windowEnd) {
			delete(m.clients, k)
		}
	}
}

// RedisCounter shares windows across instances through redis and falls back
// to process memory while redis is unreachable.
type RedisCounter struct {
	redis    Counter
	prefix   string
	fallback *MemoryCounter
	log      *slog.Logger
}

func NewRedisCounter(redis Counter, prefix string, log *slog.Logger) *RedisCounter {
	return &RedisCounter{redis: redis, prefix: prefix, fallback: NewMemoryCounter(), log: log}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, resetIn, err := r.redis.Hit(ctx, r.prefix+key, window)
	if err != nil {
		r.log.WarnContext(ctx, "redis rate limit failed, using memory", "err", err)
		return r.fallback.Hit(ctx, key, window)
	}

	return count, resetIn, nil
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByAdminOrIP keys authenticated requests by admin username.
func KeyByAdminOrIP(c *gin.Context) string {
	name, ok := UsernameFromContext(c)

	if ok && name != "" {
		return "admin:" + name
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
