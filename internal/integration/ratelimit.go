package integration

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound sync per (tenant, provider). Injected so a
// shared-store implementation can replace the in-process one without touching
// call sites.
type Limiter interface {
	Allow(tenantID uint, provider string) bool
}

// TokenBucketLimiter keeps one token bucket per (tenant, provider) key.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewTokenBucketLimiter allows perMinute events per key with the given burst.
func NewTokenBucketLimiter(perMinute, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

func (l *TokenBucketLimiter) Allow(tenantID uint, provider string) bool {
	key := fmt.Sprintf("%d:%s", tenantID, provider)
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()
	return bucket.Allow()
}
