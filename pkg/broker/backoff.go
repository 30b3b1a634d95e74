package broker

import (
	"math"
	"math/rand"
	"time"
)

// DefaultRetryBase is the first retry delay; attempt n waits base*2^n plus
// jitter.
const DefaultRetryBase = 100 * time.Millisecond

const backoffJitter = 0.25

// computeBackoff returns the delay before retry attempt n (0-based).
func computeBackoff(base time.Duration, attempt int) time.Duration {
	return computeBackoffWithRand(base, attempt, rand.Float64())
}

// computeBackoffWithRand takes the random value explicitly so tests get
// deterministic delays. randomValue is in [0, 1).
func computeBackoffWithRand(base time.Duration, attempt int, randomValue float64) time.Duration {
	if base <= 0 {
		base = DefaultRetryBase
	}
	scaled := float64(base) * math.Pow(2, float64(attempt))
	jitter := scaled * backoffJitter * randomValue
	return time.Duration(scaled + jitter)
}
