package policy

import (
	"sync"
	"time"
)

// tokenBucket is a refill-on-demand bucket. Buckets start full so a burst up
// to capacity is admitted immediately.
type tokenBucket struct {
	mu       sync.Mutex
	rate     float64
	capacity float64
	tokens   float64
	last     time.Time
}

func newTokenBucket(rate float64, capacity int) *tokenBucket {
	if rate <= 0 {
		rate = 1
	}
	if capacity <= 0 {
		capacity = 1
	}
	return &tokenBucket{
		rate:     rate,
		capacity: float64(capacity),
		tokens:   float64(capacity),
		last:     time.Now(),
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.last).Seconds() * tb.rate
	tb.last = now
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// limiterTable holds one bucket per (workspace, tool). Buckets are created
// lazily from the tool's manifest rate and never evicted; the key space is
// bounded by tenants x catalog size.
type limiterTable struct {
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
}

func newLimiterTable() *limiterTable {
	return &limiterTable{buckets: make(map[string]*tokenBucket)}
}

func (lt *limiterTable) allow(key string, rps float64) bool {
	if rps <= 0 {
		return true
	}

	lt.mu.RLock()
	tb, ok := lt.buckets[key]
	lt.mu.RUnlock()

	if !ok {
		lt.mu.Lock()
		if tb, ok = lt.buckets[key]; !ok {
			tb = newTokenBucket(rps, int(rps))
			lt.buckets[key] = tb
		}
		lt.mu.Unlock()
	}
	return tb.allow()
}
