// Package latency simulates slow operations for UX parity with the demo client.
package latency

import (
	"context"
	"time"
)

// Simulator delays callers by a fixed duration. The zero value does not delay.
type Simulator struct {
	delay time.Duration
}

func New(delay time.Duration) Simulator {
	return Simulator{delay: delay}
}

func (s Simulator) Delay() time.Duration { return s.delay }

// Wait blocks for the configured delay or until ctx ends, whichever comes first.
// The timer is stopped on cancellation so an abandoned wait holds nothing.
func (s Simulator) Wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
