// Package limiter paces outbound requests so the origin never sees
// two of ours start closer together than the configured interval.
package limiter

import (
	"time"

	"go.uber.org/ratelimit"
)

// Limiter enforces a minimum interval between successive Take calls
// across every goroutine sharing it.
type Limiter interface {
	// Take blocks until the caller may proceed, then records the new
	// request timestamp. The read-then-write is atomic: two callers
	// can never both observe "enough time has passed" and race
	// through together.
	Take() time.Time
}

// New returns a limiter spacing requests at least interval apart.
// A zero or negative interval disables limiting entirely.
func New(interval time.Duration) Limiter {
	if interval <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(1, ratelimit.Per(interval), ratelimit.WithoutSlack)
}
