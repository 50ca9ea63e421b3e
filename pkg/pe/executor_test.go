package pe

import (
	"testing"

	"github.com/dashsim/simcore/pkg/dtpm"
	"github.com/dashsim/simcore/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigCluster() *model.Cluster {
	return &model.Cluster{
		ID:                  0,
		Type:                model.TypeBig,
		DVFS:                model.DVFSMode{Kind: model.DVFSPerformance},
		OPP:                 []model.OPP{{FreqMHz: 1000, VoltMV: 800}, {FreqMHz: 2000, VoltMV: 1000}},
		CurrentFrequencyMHz: 2000,
		CurrentVoltageMV:    1000,
		NumActiveCores:      4,
		PowerProfile: model.PowerProfile{
			2000: {1.0, 1.8, 2.4, 3.0},
		},
	}
}

func newController(c *model.Cluster) *dtpm.Controller {
	ctrl := dtpm.NewController([]*model.Cluster{c}, 45)
	ctrl.LeakageC1 = 1e-9
	ctrl.LeakageC2 = 1000
	ctrl.LeakageIgate = 1e-6
	return ctrl
}

func TestAdvanceCompletesWithinSingleWindow(t *testing.T) {
	c := bigCluster()
	ctrl := newController(c)
	state := NewState(0, 1)
	rt := &RunningTask{TaskID: 1}

	result := Advance(state, rt, 500, 0, 10_000, c, ctrl, ClusterActivity{NumTasksExecuting: 1, PowerProfileEntries: 4})

	require.True(t, result.TaskComplete)
	assert.Equal(t, int64(500), result.SimulationStepUs)
	assert.Greater(t, state.TotalEnergyJ, 0.0)
	assert.Greater(t, TaskEnergyJ(rt), 0.0)
}

func TestAdvanceClipsToWindowBoundary(t *testing.T) {
	c := bigCluster()
	ctrl := newController(c)
	state := NewState(0, 1)
	rt := &RunningTask{TaskID: 1}

	result := Advance(state, rt, 50_000, 8_000, 10_000, c, ctrl, ClusterActivity{NumTasksExecuting: 1, PowerProfileEntries: 4})

	require.False(t, result.TaskComplete)
	assert.Equal(t, int64(2_000), result.SimulationStepUs)
	assert.Greater(t, rt.ElapsedTimeMaxFreq, 0.0)
	assert.Less(t, rt.ElapsedTimeMaxFreq, 50_000.0)
}

func TestAdvanceAppliesDVFSSlowdown(t *testing.T) {
	c := bigCluster()
	c.CurrentFrequencyMHz = 1000
	c.CurrentVoltageMV = 800
	ctrl := newController(c)
	state := NewState(0, 1)
	rt := &RunningTask{TaskID: 1}

	// At half max frequency the slowdown factor is 1.0, so a 500us
	// max-frequency task needs a 1000us window to finish.
	result := Advance(state, rt, 500, 0, 900, c, ctrl, ClusterActivity{NumTasksExecuting: 1, PowerProfileEntries: 4})
	require.False(t, result.TaskComplete)
	assert.Equal(t, int64(900), result.SimulationStepUs)
}

func TestAdvanceAccumulatesOverMultipleWindows(t *testing.T) {
	c := bigCluster()
	ctrl := newController(c)
	state := NewState(0, 1)
	rt := &RunningTask{TaskID: 1}

	var now int64
	var totalStep int64
	for i := 0; i < 10; i++ {
		result := Advance(state, rt, 5_000, now, 1_000, c, ctrl, ClusterActivity{NumTasksExecuting: 1, PowerProfileEntries: 4})
		now += result.SimulationStepUs
		totalStep += result.SimulationStepUs
		if result.TaskComplete {
			break
		}
	}
	assert.Equal(t, int64(5_000), totalStep)
	assert.Greater(t, state.TotalEnergyJ, 0.0)
}

func TestStateHelpers(t *testing.T) {
	s := NewState(1, 2)
	assert.True(t, s.HasFreeSlot())
	rt := &RunningTask{TaskID: 7}
	s.Running = append(s.Running, rt)
	assert.Equal(t, 1, s.NumRunning())
	assert.Same(t, rt, s.FindRunning(7))
	assert.True(t, s.HasFreeSlot())
	s.RemoveRunning(7)
	assert.Equal(t, 0, s.NumRunning())
	assert.Nil(t, s.FindRunning(7))
}
