package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Gate is the backpressure shared by every worker. It spaces request starts
// by a minimum interval and holds the cool-down deadline set after a 429.
// The cool-down only ever moves forward.
type Gate struct {
	mu          sync.Mutex
	logger      zerolog.Logger
	minInterval time.Duration
	next        time.Time // earliest start allowed by pacing
	until       time.Time // cool-down deadline

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGate creates a gate. A zero minInterval disables pacing.
func NewGate(minInterval time.Duration, logger zerolog.Logger) *Gate {
	return &Gate{
		logger:      logger.With().Str("component", "tracker-gate").Logger(),
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepWithContext,
	}
}

// Acquire blocks until both the cool-down and the pacing interval have
// elapsed, then claims the next request slot.
func (g *Gate) Acquire(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := g.now()
		slot := now
		if g.until.After(slot) {
			slot = g.until
		}
		if g.next.After(slot) {
			slot = g.next
		}
		if !slot.After(now) {
			g.next = now.Add(g.minInterval)
			g.mu.Unlock()
			return nil
		}
		g.mu.Unlock()

		wait := slot.Sub(now)
		g.logger.Trace().Dur("wait", wait).Msg("Waiting for request slot")
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Extend pushes the cool-down to at least now+d and returns the deadline in
// effect.
func (g *Gate) Extend(d time.Duration) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	if deadline := g.now().Add(d); deadline.After(g.until) {
		g.until = deadline
	}
	return g.until
}

// CooldownUntil returns the current cool-down deadline.
func (g *Gate) CooldownUntil() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.until
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
