package scheduler

import (
	"testing"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPEs() []model.Resource {
	return []model.Resource{
		{ID: 0, Name: "pe0", Type: model.TypeCPU, Capacity: 1, SupportedFunctionalities: []string{"t"}, Performance: []float64{10}},
		{ID: 1, Name: "pe1", Type: model.TypeCPU, Capacity: 1, SupportedFunctionalities: []string{"t"}, Performance: []float64{20}},
	}
}

func TestMETPicksFastestPE(t *testing.T) {
	ctx := &Context{PEs: twoPEs()}
	task := &model.Task{ID: 1, Name: "t"}
	require.NoError(t, (&met{}).Assign([]*model.Task{task}, 0, ctx))
	assert.Equal(t, model.PEID(0), task.PEID)
}

func TestMETReturnsErrorWhenNoPESupportsTask(t *testing.T) {
	ctx := &Context{PEs: twoPEs()}
	task := &model.Task{ID: 1, Name: "unknown"}
	err := (&met{}).Assign([]*model.Task{task}, 0, ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEligiblePE)
}

func TestEFTBreaksFinishTimeTieByLowerPEID(t *testing.T) {
	e := newEFT()
	ctx := &Context{PEs: twoPEs()}

	// Saturate PE0 with a long-running commitment first.
	first := &model.Task{ID: 1, Name: "t"}
	require.NoError(t, e.Assign([]*model.Task{first}, 0, ctx))
	assert.Equal(t, model.PEID(0), first.PEID)

	second := &model.Task{ID: 2, Name: "t"}
	require.NoError(t, e.Assign([]*model.Task{second}, 0, ctx))
	// PE0 finishes at t=10 (start 0 + 10us), so a second task starting at
	// t=0 finishes at max(0,10)+10=20 on PE0 vs 0+20=20 on PE1: tie goes to
	// the lower PE ID, which is PE0.
	assert.Equal(t, model.PEID(0), second.PEID)
}

func TestCPUOnlyLoadBalances(t *testing.T) {
	c := &cpuOnly{}
	ctx := &Context{
		PEs: []model.Resource{
			{ID: 0, Type: model.TypeCPU, SupportedFunctionalities: []string{"t"}, Performance: []float64{1}},
			{ID: 1, Type: model.TypeCPU, SupportedFunctionalities: []string{"t"}, Performance: []float64{1}},
		},
		Running: []model.Task{{PEID: 0}},
	}
	task := &model.Task{ID: 1, Name: "t"}
	require.NoError(t, c.Assign([]*model.Task{task}, 0, ctx))
	assert.Equal(t, model.PEID(1), task.PEID)
}

func TestSTFOrdersByPerformanceThenMET(t *testing.T) {
	ctx := &Context{PEs: twoPEs()}
	slow := &model.Task{ID: 1, Name: "t"}
	ctx.PEs = twoPEs()
	fast := &model.Task{ID: 2, Name: "t"}
	s := &stf{}
	require.NoError(t, s.Assign([]*model.Task{slow, fast}, 0, ctx))
	assert.Equal(t, model.PEID(0), slow.PEID)
	assert.Equal(t, model.PEID(0), fast.PEID)
}

func TestETFLBTieBreaksByLoad(t *testing.T) {
	e := newETF(true)
	ctx := &Context{
		PEs: []model.Resource{
			{ID: 0, Type: model.TypeCPU, SupportedFunctionalities: []string{"t"}, Performance: []float64{10}},
			{ID: 1, Type: model.TypeCPU, SupportedFunctionalities: []string{"t"}, Performance: []float64{10}},
		},
		Running: []model.Task{{PEID: 0}, {PEID: 0}},
	}
	task := &model.Task{ID: 1, Name: "t"}
	require.NoError(t, e.Assign([]*model.Task{task}, 0, ctx))
	assert.Equal(t, model.PEID(1), task.PEID)
}

func TestNewUnknownSchedulerErrors(t *testing.T) {
	_, err := New("nonexistent", nil)
	require.ErrorIs(t, err, ErrUnknownScheduler)
}

func TestRegisteredSchedulersConstructOK(t *testing.T) {
	for _, name := range []string{"cpu_only", "met", "eft", "stf", "etf", "etf_lb", "table"} {
		s, err := New(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}
}
