package simclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockAdvanceAccumulates(t *testing.T) {
	var c Clock
	c.Advance(10)
	c.Advance(5)
	assert.Equal(t, int64(15), c.NowUs())
}

func TestClockTickUsesSimulationClkStep(t *testing.T) {
	var c Clock
	c.Tick(100)
	c.Tick(100)
	assert.Equal(t, int64(200), c.NowUs())
}

func TestClockAdvanceNegativePanics(t *testing.T) {
	var c Clock
	assert.Panics(t, func() { c.Advance(-1) })
}
