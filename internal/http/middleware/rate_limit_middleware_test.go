package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordingLimiter struct {
	lastKey string
	allow   bool
	retry   time.Duration
}

func (r *recordingLimiter) Allow(_ context.Context, key string) (bool, time.Duration) {
	r.lastKey = key
	return r.allow, r.retry
}

func TestRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	lim := &recordingLimiter{retry: 2500 * time.Millisecond}
	h := NewScopedRateLimiter(lim, "api").Middleware()(http.HandlerFunc(noContent))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "3" {
		t.Fatalf("expected Retry-After 3, got %q", got)
	}
	if lim.lastKey != "10.0.0.1" {
		t.Fatalf("expected limiter keyed by client ip, got %q", lim.lastKey)
	}
}

func TestRateLimiterAllowedPassesThrough(t *testing.T) {
	h := NewScopedRateLimiter(&recordingLimiter{allow: true}, "").Middleware()(http.HandlerFunc(noContent))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rr.Code)
	}
}

func TestTokenBucketLimiterPerKeyBurstAndRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lim := NewTokenBucketLimiter(60, 2)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := lim.Allow(ctx, "a"); !ok {
			t.Fatalf("request %d within burst denied", i)
		}
	}
	ok, retry := lim.Allow(ctx, "a")
	if ok {
		t.Fatal("expected burst to be exhausted")
	}
	if retry <= 0 || retry > time.Second {
		t.Fatalf("expected retry within one second, got %v", retry)
	}
	if ok, _ := lim.Allow(ctx, "b"); !ok {
		t.Fatal("expected independent bucket per key")
	}

	now = now.Add(time.Second)
	if ok, _ := lim.Allow(ctx, "a"); !ok {
		t.Fatal("expected a token after one second at 60/min")
	}
}

func TestTokenBucketLimiterEvictsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lim := NewTokenBucketLimiter(60, 0)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	lim.Allow(ctx, "a")
	lim.Allow(ctx, "b")
	if lim.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", lim.Len())
	}
	now = now.Add(30 * time.Minute)
	lim.Allow(ctx, "c")
	if lim.Len() != 1 {
		t.Fatalf("expected idle buckets evicted, got %d", lim.Len())
	}
}
