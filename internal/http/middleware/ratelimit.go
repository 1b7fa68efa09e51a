package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc maps a request to the identity whose bucket it draws from.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the authenticated user ("user:<id>") and
// falls back to the client address ("ip:<addr>") before authentication.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if uid := userIDFromCtx(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

const (
	// bucketIdleTTL is how long an untouched bucket survives a sweep.
	bucketIdleTTL = 10 * time.Minute
	// sweepEvery is the number of lookups between sweeps.
	sweepEvery = 5000
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a process-local token bucket per identity. It smooths bursts
// of API calls (swipes, messages) and is independent of the daily swipe
// quota, which the swipe service enforces in storage.
//
// Idle buckets are swept every sweepEvery lookups. Safe for concurrent use.
type RateLimiter struct {
	limit rate.Limit
	burst int
	key   keyFunc
	idle  time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups uint64
}

// NewRateLimiter returns a limiter refilling rps tokens per second with the
// given burst (coerced to at least 1).
func NewRateLimiter(rps float64, burst int, key keyFunc) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		key:     key,
		idle:    bucketIdleTTL,
		buckets: make(map[string]*bucket),
	}
}

// limiter returns the bucket for key, creating it on first use. A due sweep
// runs before the lookup so a stale bucket for key is replaced, not revived.
func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.lookups++; rl.lookups >= sweepEvery {
		rl.sweep(now)
		rl.lookups = 0
	}
	if b, ok := rl.buckets[key]; ok {
		b.seen = now
		return b.lim
	}
	b := &bucket{lim: rate.NewLimiter(rl.limit, rl.burst), seen: now}
	rl.buckets[key] = b
	return b.lim
}

// sweep drops buckets idle for at least rl.idle. Caller holds rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.seen) >= rl.idle {
			delete(rl.buckets, k)
		}
	}
}

// IsRateBypass reports whether IdempotencyValidator served a replay, which
// must not spend a token.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyRateBypass).(bool)
	return b
}

// retryAfter takes a token when one is available now. Otherwise it returns
// the whole seconds until the next token and leaves the bucket untouched.
func retryAfter(lim *rate.Limiter, now time.Time) (int, bool) {
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return 1, false
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return 0, true
	}
	res.CancelAt(now)
	return int(math.Ceil(delay.Seconds())), false
}

// Handler enforces the limit. A rejected request gets 429 with Retry-After
// and the envelope {"code": "rate_limited", "message": "rate limit exceeded"}.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		now := time.Now()
		wait, ok := retryAfter(rl.limiter(rl.key(c), now), now)
		if ok {
			c.Next()
			return
		}
		httpRateLimited.WithLabelValues(routeLabel(c)).Inc()
		c.Header("Retry-After", strconv.Itoa(wait))
		abortJSON(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}
