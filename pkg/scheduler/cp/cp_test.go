package cp

import (
	"testing"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/queue"
	"github.com/dashsim/simcore/pkg/scheduler"
	"github.com/dashsim/simcore/pkg/scheduler/cp/cporacle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp() *model.Application {
	return &model.Application{
		Name: "app",
		Tasks: []model.TaskTemplate{
			{Name: "a", BaseID: 0, Head: true},
			{Name: "b", BaseID: 1, Predecessors: []int{0}, Tail: true},
		},
		CommVol: [][]model.Bits{{0, 10}, {0, 0}},
	}
}

func baseCtx() *scheduler.Context {
	return &scheduler.Context{
		PEs:            []model.Resource{{ID: 0, Type: model.TypeCPU, SupportedFunctionalities: []string{"a", "b"}, Performance: []float64{5, 5}}},
		Apps:           map[string]*model.Application{"app": testApp()},
		JobApplication: map[int]string{0: "app"},
		LiveJobOrder:   []int{0},
	}
}

func TestOnJobArrivalPopulatesTableFromOracle(t *testing.T) {
	oracle := &cporacle.TableOracle{Table: map[int]cporacle.Assignment{0: {PEID: 0}, 1: {PEID: 0, Order: 1}}}
	s := New(oracle)

	q := queue.New()
	q.MoveToOutstanding(model.Task{ID: 1, BaseID: 1, JobID: 0, Predecessors: []model.TaskID{0}})
	q.MoveToReady(model.Task{ID: 0, BaseID: 0, JobID: 0})

	require.NoError(t, s.OnJobArrival(q, 0, baseCtx()))

	taskA := &model.Task{ID: 0, BaseID: 0, JobID: 0}
	require.NoError(t, s.Assign([]*model.Task{taskA}, 0, baseCtx()))
	assert.Equal(t, model.PEID(0), taskA.PEID)
}

func TestOnJobArrivalFallsBackToETFOnOracleFailure(t *testing.T) {
	oracle := &cporacle.TableOracle{Table: map[int]cporacle.Assignment{}} // empty: every lookup misses
	s := New(oracle)

	q := queue.New()
	q.MoveToReady(model.Task{ID: 0, BaseID: 0, JobID: 0})

	err := s.OnJobArrival(q, 0, baseCtx())
	require.Error(t, err)

	task := &model.Task{ID: 0, Name: "a"}
	require.NoError(t, s.Assign([]*model.Task{task}, 0, baseCtx()))
	assert.Equal(t, model.PEID(0), task.PEID)
}

func TestBuildRequestCarriesCommittedAndPinned(t *testing.T) {
	q := queue.New()
	q.MoveToReady(model.Task{ID: 0, BaseID: 0, JobID: 0})
	q.MoveToRunning(model.Task{ID: 5, BaseID: 0, JobID: 1, PEID: 0, Name: "a", StartTime: 0})
	q.MoveToCompleted(model.Task{ID: 6, BaseID: 0, JobID: 0, PEID: 0})

	ctx := baseCtx()
	ctx.LiveJobOrder = []int{0, 1}
	ctx.JobApplication[1] = "app"
	req := BuildRequest(q, 3, ctx)

	require.Len(t, req.Jobs, 1)
	assert.Equal(t, 0, req.Jobs[0].JobID)
	require.Len(t, req.Pinned, 1)
	assert.Equal(t, model.PEID(0), req.Pinned[0].PEID)
	// Running task 5 started at 0 with a 5us runtime; at now=3, 2us remain.
	require.Len(t, req.Committed, 1)
	assert.Equal(t, int64(2), req.Committed[0].FreeAtUs)
}
