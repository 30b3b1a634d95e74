package broker

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// DefaultIdempotencyTTL bounds how long a write observation is replayed for
// retries of the same key.
const DefaultIdempotencyTTL = 10 * time.Minute

type idemEntry struct {
	obs     models.Observation
	expires time.Time
}

// idemCache is the process-wide idempotency store for write calls. The
// singleflight group gives concurrent callers of the same key one underlying
// tool invocation; the TTL map replays it for later retries.
type idemCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]idemEntry
	group   singleflight.Group
}

func newIdemCache(ttl time.Duration) *idemCache {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &idemCache{ttl: ttl, entries: make(map[string]idemEntry)}
}

// do returns the cached observation for key, or runs fn exactly once across
// concurrent callers and caches its result. replayed is true when fn did not
// run for this caller.
func (c *idemCache) do(key string, fn func() models.Observation) (obs models.Observation, replayed bool) {
	if cached, ok := c.lookup(key); ok {
		return cached, true
	}

	v, _, shared := c.group.Do(key, func() (any, error) {
		if cached, ok := c.lookup(key); ok {
			return cached, nil
		}
		obs := fn()
		c.store(key, obs)
		return obs, nil
	})

	// A caller coalesced onto an in-flight execution also counts as a
	// replay: its fn never ran.
	return v.(models.Observation), shared
}

func (c *idemCache) lookup(key string) (models.Observation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return models.Observation{}, false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return models.Observation{}, false
	}
	return e.obs, true
}

// store caches successful and permanent outcomes. Transient failures are not
// cached so a later retry of the same key gets a fresh attempt.
func (c *idemCache) store(key string, obs models.Observation) {
	if !obs.OK && obs.ErrorKind != models.ErrorKindPermanent {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = idemEntry{obs: obs, expires: time.Now().Add(c.ttl)}
}

// sweep drops expired entries. Called opportunistically by the broker.
func (c *idemCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}
