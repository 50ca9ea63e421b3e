package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDVFSModeString(t *testing.T) {
	cases := []struct {
		mode DVFSMode
		want string
	}{
		{DVFSMode{Kind: DVFSPerformance}, "performance"},
		{DVFSMode{Kind: DVFSPowersave}, "powersave"},
		{DVFSMode{Kind: DVFSOndemand}, "ondemand"},
		{DVFSMode{Kind: DVFSConstant, ConstantMHz: 1200}, "constant_1200"},
		{DVFSMode{Kind: DVFSNone}, "none"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.mode.String())
	}
}

func TestClusterMinMaxFreqAndOPPLookup(t *testing.T) {
	c := Cluster{OPP: []OPP{{FreqMHz: 400, VoltMV: 700}, {FreqMHz: 800, VoltMV: 900}}}

	assert.Equal(t, 400, c.MinFreqMHz())
	assert.Equal(t, 800, c.MaxFreqMHz())

	v, ok := c.VoltageFor(800)
	assert.True(t, ok)
	assert.Equal(t, 900, v)

	_, ok = c.VoltageFor(600)
	assert.False(t, ok)

	assert.Equal(t, 1, c.OPPIndex(800))
	assert.Equal(t, -1, c.OPPIndex(600))
}

func TestClusterMinMaxFreqEmptyOPP(t *testing.T) {
	var c Cluster
	assert.Equal(t, 0, c.MinFreqMHz())
	assert.Equal(t, 0, c.MaxFreqMHz())
}

func TestResourceSupports(t *testing.T) {
	r := Resource{SupportedFunctionalities: []string{"task_a", "task_b"}, Performance: []float64{10, 20}}
	assert.True(t, r.Supports("task_b"))
	assert.False(t, r.Supports("task_c"))
	assert.Equal(t, 1, r.FunctionalityIndex("task_b"))
	assert.Equal(t, -1, r.FunctionalityIndex("task_c"))
}
