// internal/worker/throttler.go
package worker

import (
	"context"
	"math/rand"
	"time"
)

// Throttler spaces successive sends inside a batch by a jittered window.
// The jitter avoids a fixed cadence that providers flag as automation.
type Throttler struct {
	Min time.Duration
	Max time.Duration
}

func NewThrottler(min, max time.Duration) *Throttler {
	if max < min {
		max = min
	}
	return &Throttler{Min: min, Max: max}
}

// Wait blocks for a random duration in [Min, Max], or returns early with
// the context error on cancellation.
func (t *Throttler) Wait(ctx context.Context) error {
	d := t.Min
	if t.Max > t.Min {
		d += time.Duration(rand.Int63n(int64(t.Max - t.Min)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
