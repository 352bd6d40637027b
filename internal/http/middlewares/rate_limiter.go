package middlewares

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key. Each bucket holds limit tokens
// and refills completely over window.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// RateLimiterMiddleware rejects a request with 429 when its key has no token
// left. A limit of zero or less disables it.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		now := rl.now()

		rl.mu.Lock()
		rl.evictIdle(now)
		b := rl.bucket(key, now)
		reservation := b.limiter.ReserveN(now, 1)
		rl.mu.Unlock()

		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)

			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			abortJSON(c, http.StatusTooManyRequests, "rate_limited", "Too Many Attempts.")
			return
		}

		c.Next()
	}
}

// callers hold rl.mu
func (rl *RateLimiter) bucket(key string, now time.Time) *clientBucket {
	b, ok := rl.clients[key]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		b = &clientBucket{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.clients[key] = b
	}
	b.lastSeen = now
	return b
}

// A bucket idle for a whole window is full again and can be dropped.
// callers hold rl.mu
func (rl *RateLimiter) evictIdle(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}
	for k, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.window {
			delete(rl.clients, k)
		}
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by user id if available
func KeyByUserOrIP(c *gin.Context) string {
	u, ok := UserFromContext(c)

	if ok && u.ID != 0 {
		return "user:" + strconv.FormatInt(u.ID, 10)
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
