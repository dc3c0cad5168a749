// package throttle smooths request bursts per caller with token buckets.
// it sits in front of the daily AI quota so a runaway client cannot spend
// the whole day's allowance in a few seconds.
package throttle

import (
	"context"
	"sync"
	"time"

	"codeberg.org/finpal/server/internal/auth"
	"codeberg.org/finpal/server/internal/errors"
	"codeberg.org/finpal/server/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// how long an idle bucket is kept before eviction
const defaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// per-key token bucket registry
type Throttle struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	entries map[string]*entry
}

// creates a throttle allowing rps sustained requests with the given burst per key
func New(rps float64, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}

	return &Throttle{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		entries: make(map[string]*entry),
	}
}

// reports whether key may proceed now, consuming a token if so
func (t *Throttle) Allow(key string) bool {
	return t.limiterFor(key, time.Now()).Allow()
}

func (t *Throttle) limiterFor(key string, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, exists := t.entries[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = e
	}

	e.lastSeen = now
	return e.limiter
}

// drops buckets idle for longer than the idle TTL
func (t *Throttle) Evict(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for key, e := range t.entries {
		if now.Sub(e.lastSeen) > t.idleTTL {
			delete(t.entries, key)
			evicted++
		}
	}

	return evicted
}

// evicts idle buckets every interval until ctx is done
func (t *Throttle) StartEvictor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := t.Evict(now); n > 0 {
					logger.Debug("evicted idle throttle buckets", "count", n)
				}
			}
		}
	}()
}

// returns a Gin middleware keyed by the authenticated user, falling back to client IP
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := auth.GetUserID(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}

		if !t.Allow(key) {
			logger.Debug("request throttled", "key", key, "path", c.Request.URL.Path)
			errors.TooManyRequests(c, "too many requests, please slow down")
			return
		}

		c.Next()
	}
}
