// internal/worker/poller.go
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
)

// TickRunner processes one delivery batch.
type TickRunner interface {
	ProcessTick(ctx context.Context) (service.TickResult, error)
}

// Poller drives the delivery worker on a fixed interval. Ticks never
// overlap: if a tick is still executing when the next fires, the next is
// skipped. Overlapping ticks could double-claim rows faster than the lease
// TTL protects against.
type Poller struct {
	Interval time.Duration
	Delivery TickRunner
	Log      *logger.Logger

	inFlight atomic.Bool
	ticksRun atomic.Int64
	skipped  atomic.Int64
}

// Run polls until ctx is cancelled, then drains: the in-flight tick
// finishes its current recipient before Run returns.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup

	// Immediate first tick so a restart does not sit idle for a full
	// interval with work pending.
	p.launch(ctx, &wg)

	for {
		select {
		case <-ctx.Done():
			p.Log.Info().Msg("shutdown requested, draining in-flight tick")
			wg.Wait()
			p.Log.Info().
				Int64("ticks", p.ticksRun.Load()).
				Int64("skipped", p.skipped.Load()).
				Msg("poller stopped")
			return
		case <-ticker.C:
			p.launch(ctx, &wg)
		}
	}
}

// launch starts one tick unless the previous is still in flight.
func (p *Poller) launch(ctx context.Context, wg *sync.WaitGroup) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.Log.Debug().Msg("tick skipped: previous tick still running")
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer p.inFlight.Store(false)
		p.tick(ctx)
	}()
}

func (p *Poller) tick(ctx context.Context) {
	p.ticksRun.Add(1)
	start := time.Now()

	res, err := p.Delivery.ProcessTick(ctx)
	if err != nil {
		// A verify or claim failure aborts only this tick; the next one
		// retries independently.
		p.Log.Error().Err(err).Msg("tick aborted")
		return
	}

	if res.Claimed > 0 {
		p.Log.Info().
			Int("claimed", res.Claimed).
			Int("sent", res.Sent).
			Int("errored", res.Errored).
			Int("bounced", res.Bounced).
			Dur("duration", time.Since(start)).
			Msg("batch processed")
	}
}
