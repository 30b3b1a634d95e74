package broker

import (
	"log/slog"
	"sync"
	"time"
)

// Breaker states.
const (
	circuitClosed   = "closed"
	circuitOpen     = "open"
	circuitHalfOpen = "half_open"
)

const (
	// consecutiveThreshold opens the circuit on an unbroken failure run.
	consecutiveThreshold = 5
	// windowSize and windowRatio open it on a statistical failure rate over
	// the most recent outcomes.
	windowSize  = 20
	windowRatio = 0.5

	// DefaultCooldown is how long an open circuit rejects before admitting
	// a half-open probe.
	DefaultCooldown = 30 * time.Second
)

// breaker tracks one (workspace, tool) pair. Counters are advisory; the
// thresholds are statistical, so lost updates under contention are tolerated.
type breaker struct {
	mu sync.Mutex

	cooldown time.Duration

	state       string
	consecutive int
	window      [windowSize]bool // true = failure
	windowPos   int
	windowLen   int
	openedAt    time.Time
	probing     bool
}

func newBreaker(cooldown time.Duration) *breaker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &breaker{cooldown: cooldown, state: circuitClosed}
}

// admit reports whether a call may proceed. In the open state it admits a
// single probe once the cooldown elapsed; concurrent callers during the
// probe are rejected.
func (b *breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return false
		}
		b.state = circuitHalfOpen
		b.probing = true
		return true
	case circuitHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return true
}

// record feeds an outcome back. A half-open probe success closes the
// circuit and resets the window; a probe failure re-opens it.
func (b *breaker) record(failure bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == circuitHalfOpen {
		b.probing = false
		if failure {
			b.open()
		} else {
			b.reset()
		}
		return
	}

	b.window[b.windowPos] = failure
	b.windowPos = (b.windowPos + 1) % windowSize
	if b.windowLen < windowSize {
		b.windowLen++
	}

	if failure {
		b.consecutive++
	} else {
		b.consecutive = 0
	}

	if b.state == circuitClosed && (b.consecutive >= consecutiveThreshold || b.windowTripped()) {
		b.open()
	}
}

func (b *breaker) windowTripped() bool {
	if b.windowLen < windowSize {
		return false
	}
	failures := 0
	for _, f := range b.window {
		if f {
			failures++
		}
	}
	return float64(failures) >= windowRatio*float64(windowSize)
}

func (b *breaker) open() {
	b.state = circuitOpen
	b.openedAt = time.Now()
}

func (b *breaker) reset() {
	b.state = circuitClosed
	b.consecutive = 0
	b.windowPos = 0
	b.windowLen = 0
	b.probing = false
}

func (b *breaker) currentState() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// breakerTable is the process-wide breaker map, one entry per
// (workspace, tool).
type breakerTable struct {
	mu       sync.RWMutex
	cooldown time.Duration
	breakers map[string]*breaker
}

func newBreakerTable(cooldown time.Duration) *breakerTable {
	return &breakerTable{cooldown: cooldown, breakers: make(map[string]*breaker)}
}

func (t *breakerTable) get(key string) *breaker {
	t.mu.RLock()
	b, ok := t.breakers[key]
	t.mu.RUnlock()
	if ok {
		return b
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok = t.breakers[key]; ok {
		return b
	}
	b = newBreaker(t.cooldown)
	t.breakers[key] = b

	slog.Debug("Circuit breaker created", "key", key)
	return b
}
