package amp

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum gap between consecutive sends to an amplifier.
// Control ports on these devices drop or garble commands that arrive
// faster than the firmware processes them.
//
// Thread Safety: safe for concurrent use, though the connection worker is
// normally the only caller.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	lastSent time.Time
}

// NewPacer creates a pacer with the given minimum gap. A zero or negative
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the minimum gap since the last confirmed send has
// elapsed, or ctx is done. Waiting does not mark a send: a cancelled or
// failed send must not shorten the gap for the next one.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	remaining := p.interval - time.Since(p.lastSent)
	p.mu.Unlock()

	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MarkSent records the current time as the last confirmed send. Call only
// after the write actually happened.
func (p *Pacer) MarkSent() {
	p.mu.Lock()
	p.lastSent = time.Now()
	p.mu.Unlock()
}
