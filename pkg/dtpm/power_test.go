package dtpm

import (
	"math"
	"testing"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceSlowdownZeroAtMaxFreq(t *testing.T) {
	c := &model.Cluster{
		OPP:                 []model.OPP{{FreqMHz: 1000, VoltMV: 800}, {FreqMHz: 2000, VoltMV: 1000}},
		CurrentFrequencyMHz: 2000,
	}
	assert.Equal(t, 0.0, PerformanceSlowdown(c))
}

func TestPerformanceSlowdownDoublesAtHalfFreq(t *testing.T) {
	c := &model.Cluster{
		OPP:                 []model.OPP{{FreqMHz: 1000, VoltMV: 800}, {FreqMHz: 2000, VoltMV: 1000}},
		CurrentFrequencyMHz: 1000,
	}
	assert.InDelta(t, 1.0, PerformanceSlowdown(c), 1e-9)
}

func TestCdynAlphaRoundTripsDynamicPower(t *testing.T) {
	opp := []model.OPP{{FreqMHz: 2000, VoltMV: 1000}}
	alpha := CdynAlpha(2.0, 2000, opp)
	require.Greater(t, alpha, 0.0)
	got := DynamicPowerW(2000, 1000, alpha)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestStaticPowerZeroForAccelerator(t *testing.T) {
	p := StaticPowerW(model.TypeACC, 45, 900, 1e-9, 1000, 1e-6)
	assert.Equal(t, 0.0, p)
}

func TestStaticPowerScalesDownForLittle(t *testing.T) {
	big := StaticPowerW(model.TypeBig, 45, 900, 1e-9, 1000, 1e-6)
	ltl := StaticPowerW(model.TypeLTL, 45, 900, 1e-9, 1000, 1e-6)
	assert.True(t, ltl < big)
	assert.True(t, ltl > 0)
	assert.False(t, math.IsNaN(ltl))
}

func TestMaxPowerConsumptionLooksUpThreshold(t *testing.T) {
	c := &model.Cluster{
		CurrentFrequencyMHz: 1500,
		NumActiveCores:      4,
		PowerProfile: model.PowerProfile{
			2000: {1.0, 1.8, 2.4, 3.0},
			1000: {0.5, 0.9, 1.2, 1.5},
		},
	}
	w, threshold, err := MaxPowerConsumption(c, 2)
	require.NoError(t, err)
	assert.Equal(t, 2000, threshold)
	assert.Equal(t, 1.8, w)
}

func TestMaxPowerConsumptionZeroTasks(t *testing.T) {
	c := &model.Cluster{PowerProfile: model.PowerProfile{1000: {1.0}}}
	w, threshold, err := MaxPowerConsumption(c, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, w)
	assert.Equal(t, 0, threshold)
}

func TestMaxPowerConsumptionNoThresholdAboveCurrent(t *testing.T) {
	c := &model.Cluster{
		CurrentFrequencyMHz: 3000,
		NumActiveCores:      1,
		PowerProfile:        model.PowerProfile{2000: {1.0}},
	}
	_, _, err := MaxPowerConsumption(c, 1)
	require.ErrorIs(t, err, ErrNoPowerProfileEntry)
}
