package force

import (
	"context"
	"time"
)

// DefaultInterval paces ticks at roughly display refresh rate.
const DefaultInterval = 16 * time.Millisecond

// Scheduler paces simulation ticks.
type Scheduler interface {
	// Wait blocks until the next tick may run. It returns the context's
	// error if ctx is done first.
	Wait(ctx context.Context) error
}

// IntervalScheduler allows one tick per interval.
type IntervalScheduler struct {
	ticker *time.Ticker
}

// NewIntervalScheduler returns a ticker-backed scheduler. Non-positive
// intervals use DefaultInterval. Call Stop when done.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &IntervalScheduler{ticker: time.NewTicker(interval)}
}

// Wait implements Scheduler.
func (s *IntervalScheduler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ticker.C:
		return nil
	}
}

// Stop releases the ticker.
func (s *IntervalScheduler) Stop() { s.ticker.Stop() }

// ImmediateScheduler runs ticks back to back. It is used when only the
// settled layout matters, as in the CLI and the HTTP API.
type ImmediateScheduler struct{}

// Wait implements Scheduler.
func (ImmediateScheduler) Wait(ctx context.Context) error {
	return ctx.Err()
}

// ManualScheduler releases one tick per Step call. Intended for tests.
type ManualScheduler struct {
	ch chan struct{}
}

// NewManualScheduler returns a scheduler that blocks until stepped.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{ch: make(chan struct{})}
}

// Step releases one tick, blocking until a run is waiting for it or ctx
// is done. It reports whether a tick was delivered.
func (s *ManualScheduler) Step(ctx context.Context) bool {
	select {
	case s.ch <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait implements Scheduler.
func (s *ManualScheduler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ch:
		return nil
	}
}

var (
	_ Scheduler = (*IntervalScheduler)(nil)
	_ Scheduler = ImmediateScheduler{}
	_ Scheduler = (*ManualScheduler)(nil)
)
