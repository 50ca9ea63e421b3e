package dtpm

import (
	"testing"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/stretchr/testify/assert"
)

func ondemandCluster() *model.Cluster {
	return &model.Cluster{
		DVFS: model.DVFSMode{Kind: model.DVFSOndemand},
		OPP:  []model.OPP{{FreqMHz: 1000, VoltMV: 800}, {FreqMHz: 1500, VoltMV: 900}, {FreqMHz: 2000, VoltMV: 1000}},
	}
}

func TestInitializeFrequencyOndemandStartsAtMax(t *testing.T) {
	c := ondemandCluster()
	InitializeFrequency(c)
	assert.Equal(t, 2000, c.CurrentFrequencyMHz)
	assert.Equal(t, 1000, c.CurrentVoltageMV)
}

func TestInitializeFrequencyPowersaveStartsAtMin(t *testing.T) {
	c := ondemandCluster()
	c.DVFS.Kind = model.DVFSPowersave
	InitializeFrequency(c)
	assert.Equal(t, 1000, c.CurrentFrequencyMHz)
}

func TestOndemandPolicyDecreasesWhenUtilizationLow(t *testing.T) {
	c := ondemandCluster()
	InitializeFrequency(c)
	OndemandPolicy(c, 0.1, 0.8, 0.3, false)
	assert.Equal(t, 1500, c.CurrentFrequencyMHz)
}

func TestOndemandPolicyHoldsWhenThrottled(t *testing.T) {
	c := ondemandCluster()
	c.CurrentFrequencyMHz = 1000
	c.CurrentVoltageMV = 800
	OndemandPolicy(c, 0.95, 0.8, 0.3, true)
	assert.Equal(t, 1000, c.CurrentFrequencyMHz)
}

func TestOndemandPolicyRaisesWhenUtilizationHigh(t *testing.T) {
	c := ondemandCluster()
	c.CurrentFrequencyMHz = 1000
	c.CurrentVoltageMV = 800
	OndemandPolicy(c, 0.95, 0.8, 0.3, false)
	assert.Equal(t, 2000, c.CurrentFrequencyMHz)
}
