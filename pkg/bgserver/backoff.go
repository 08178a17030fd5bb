package bgserver

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// jitterBackoff computes AutomaticRetryTask's delay:
// D = min(maxDelay, randint(i², (i+1)²+1)) seconds, where i is the
// 0-based attempt number and randint(low, high) draws uniformly from
// [low, high). It implements cenkalti/backoff/v4's BackOff interface,
// but with this squared-bucket jitter curve instead of the library's
// own exponential curve, which does not match the formula above.
type jitterBackoff struct {
	attempt  int
	maxDelay time.Duration
}

var _ backoff.BackOff = (*jitterBackoff)(nil)

func newJitterBackoff(maxDelay time.Duration) *jitterBackoff {
	return &jitterBackoff{maxDelay: maxDelay}
}

// NextBackOff returns the delay for the current attempt and advances
// to the next one.
func (b *jitterBackoff) NextBackOff() time.Duration {
	d := delayForAttempt(b.attempt, b.maxDelay)
	b.attempt++
	return d
}

// Reset returns the attempt counter to zero, so the next NextBackOff
// call computes bucket 0 again.
func (b *jitterBackoff) Reset() {
	b.attempt = 0
}

// delayForAttempt computes the spec's squared-bucket jitter delay for
// 0-based attempt i, capped at maxDelay.
func delayForAttempt(i int, maxDelay time.Duration) time.Duration {
	low := i * i
	high := (i + 1) * (i + 1)
	seconds := low + rand.IntN(high-low+1)
	d := time.Duration(seconds) * time.Second
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// logLevelForAttempt escalates log severity with the attempt number, per
// spec.md §4.2: Debug at i=0, Info at i=1, Warn at i=2, Error at i≥3.
func logLevelForAttempt(i int) string {
	switch {
	case i <= 0:
		return "debug"
	case i == 1:
		return "info"
	case i == 2:
		return "warn"
	default:
		return "error"
	}
}
