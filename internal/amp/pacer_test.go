package amp

import (
	"context"
	"testing"
	"time"
)

func TestPacer_FirstSendUnpaced(t *testing.T) {
	p := NewPacer(time.Second)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait() blocked for %s", elapsed)
	}
}

func TestPacer_EnforcesGap(t *testing.T) {
	const gap = 50 * time.Millisecond
	p := NewPacer(gap)

	p.MarkSent()
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < gap-5*time.Millisecond {
		t.Errorf("Wait() returned after %s, want at least %s", elapsed, gap)
	}
}

func TestPacer_WaitDoesNotMark(t *testing.T) {
	const gap = 50 * time.Millisecond
	p := NewPacer(gap)

	p.MarkSent()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// The gap elapsed during the first Wait and no send was marked, so a
	// second Wait must not block again.
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("second Wait() blocked for %s", elapsed)
	}
}

func TestPacer_Cancelled(t *testing.T) {
	p := NewPacer(time.Minute)
	p.MarkSent()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); err == nil {
		t.Errorf("Wait() with expired context returned nil")
	}
}

func TestPacer_Disabled(t *testing.T) {
	p := NewPacer(0)
	p.MarkSent()

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("disabled pacer blocked for %s", elapsed)
	}
}
