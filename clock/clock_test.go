package clock_test

import (
	"testing"

	"github.com/meridianlabs/agentfsm/clock"
)

func TestAdvanceAccumulatesTimeAndTicks(t *testing.T) {
	c := clock.New()
	if c.Now() != 0 || c.Tick() != 0 {
		t.Fatalf("expected a fresh Clock to start at (0, 0), got (%v, %v)", c.Now(), c.Tick())
	}

	if got := c.Advance(0.5); got != 0.5 {
		t.Fatalf("Advance(0.5) = %v, want 0.5", got)
	}
	if got := c.Advance(1.5); got != 2.0 {
		t.Fatalf("Advance(1.5) = %v, want 2.0", got)
	}
	if c.Tick() != 2 {
		t.Fatalf("expected 2 ticks, got %d", c.Tick())
	}
}

func TestAdvanceIgnoresNegativeDuration(t *testing.T) {
	c := clock.New()
	c.Advance(1.0)
	before := c.Now()
	beforeTick := c.Tick()

	if got := c.Advance(-1.0); got != before {
		t.Fatalf("Advance(-1.0) returned %v, want unchanged %v", got, before)
	}
	if c.Tick() != beforeTick {
		t.Fatalf("negative Advance should not increment the tick count")
	}
}
