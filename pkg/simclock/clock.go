// Package simclock provides the deterministic virtual-time primitives the
// top-level event loop is built on: a microsecond cursor that only ever
// advances, and a priority queue of pending wake-ups ordered by
// (time, insertion order) so concurrent activities (PE execution windows,
// job arrivals) resolve ties the same way on every run.
package simclock

import "fmt"

// Clock is a monotone virtual-time cursor measured in microseconds.
type Clock struct {
	nowUs int64
}

// NowUs returns the current virtual time.
func (c *Clock) NowUs() int64 { return c.nowUs }

// Advance moves the clock forward by deltaUs, which must be non-negative.
func (c *Clock) Advance(deltaUs int64) {
	if deltaUs < 0 {
		panic(fmt.Sprintf("simclock: negative advance %d", deltaUs))
	}
	c.nowUs += deltaUs
}

// Tick advances the clock by exactly one simulation_clk step.
func (c *Clock) Tick(simulationClkUs int64) { c.Advance(simulationClkUs) }
