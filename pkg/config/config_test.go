package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTmp(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaultsAndValidate(t *testing.T) {
	p := writeTmp(t, `
simulation_clk_us: 10
simulation_length_us: 100000
scheduler: ETF
jobs:
  - application: wifi_transmitter
    probability: 1
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, CommSharedMemory, c.CommunicationMode)
	assert.Equal(t, PruneOldestJobFirst, c.CompletedQueue.Mode)
	assert.Equal(t, 50, c.CompletedQueue.MaxJobSpan)
	assert.Equal(t, ThrottleBoth, c.DTPM.ThrottlingPolicy)
	assert.Equal(t, int64(10), c.DTPM.SamplingPeriodUs)
	assert.Equal(t, 0.8, c.DTPM.OndemandHighThreshold)
	assert.Equal(t, 0.3, c.DTPM.OndemandLowThreshold)
}

func TestLoadReadsTripAndOndemandThresholds(t *testing.T) {
	p := writeTmp(t, `
simulation_clk_us: 10
simulation_length_us: 100000
scheduler: ETF
jobs:
  - application: a
dtpm:
  regular_trip_c: [70, 85]
  dtpm_trip_c: [60, 75]
  ondemand_high_threshold: 0.9
  ondemand_low_threshold: 0.2
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 85}, c.DTPM.RegularTripC)
	assert.Equal(t, []float64{60, 75}, c.DTPM.DTPMTripC)
	assert.Equal(t, 0.9, c.DTPM.OndemandHighThreshold)
	assert.Equal(t, 0.2, c.DTPM.OndemandLowThreshold)
}

func TestLoadRejectsBadClock(t *testing.T) {
	p := writeTmp(t, `
simulation_clk_us: 0
simulation_length_us: 100000
scheduler: ETF
jobs:
  - application: a
`)
	_, err := Load(p)
	assert.ErrorIs(t, err, ErrBadClock)
}

func TestLoadRejectsUnknownCommMode(t *testing.T) {
	p := writeTmp(t, `
simulation_clk_us: 10
simulation_length_us: 100
scheduler: ETF
communication_mode: telepathy
jobs:
  - application: a
`)
	_, err := Load(p)
	assert.ErrorIs(t, err, ErrUnknownCommMode)
}

func TestLoadRejectsMissingScheduler(t *testing.T) {
	p := writeTmp(t, `
simulation_clk_us: 10
simulation_length_us: 100
jobs:
  - application: a
`)
	_, err := Load(p)
	require.Error(t, err)
}

func TestLoadRejectsUnknownPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
