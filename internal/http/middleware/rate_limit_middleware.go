package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sandeepkv93/personal-website-backend/internal/http/response"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

// Limiter decides whether key may proceed now. When it may not, the returned
// duration is how long until a token is available.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration)
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TokenBucketLimiter keeps one golang.org/x/time/rate bucket per key. Idle
// buckets are evicted lazily once they have been unused for idleTTL.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	sweepAt time.Time
	now     func() time.Time
}

// NewTokenBucketLimiter allows perMinute requests per key per minute with the
// given burst. A burst below 1 defaults to perMinute.
func NewTokenBucketLimiter(perMinute, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = perMinute
	}
	return &TokenBucketLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.sweepAt) {
		for k, b := range l.buckets {
			if now.Sub(b.lastAccess) > l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.sweepAt = now.Add(l.idleTTL)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastAccess = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

type RateLimiter struct {
	limiter Limiter
	scope   string
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return NewScopedRateLimiter(NewTokenBucketLimiter(perMinute, burst), "api")
}

func NewScopedRateLimiter(limiter Limiter, scope string) *RateLimiter {
	if scope == "" {
		scope = "api"
	}
	return &RateLimiter{limiter: limiter, scope: scope}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := rl.limiter.Allow(r.Context(), clientIPKey(r))
			if !allowed {
				observability.RecordRateLimitDecision(r.Context(), rl.scope, "denied")
				observability.RecordRateLimitRetryAfter(r.Context(), rl.scope, retryAfter)
				slog.WarnContext(r.Context(), "rate limit exceeded", "scope", rl.scope, "client_ip", clientIPKey(r))
				w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			observability.RecordRateLimitDecision(r.Context(), rl.scope, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
