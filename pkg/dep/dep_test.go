package dep

import (
	"testing"

	"github.com/dashsim/simcore/pkg/config"
	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// app is a 2-task chain: base 0 -> base 1, 1024 bits.
func chainApp() *model.Application {
	return &model.Application{
		Name: "chain",
		Tasks: []model.TaskTemplate{
			{Name: "a", BaseID: 0, Head: true},
			{Name: "b", BaseID: 1, Predecessors: []int{0}, Tail: true},
		},
		CommVol: [][]model.Bits{
			{0, 1024},
			{0, 0},
		},
	}
}

func bandwidth() model.BandwidthMatrix {
	// PE 0, PE 1, PE 2 (memory)
	return model.BandwidthMatrix{
		{8, 8, 4},
		{8, 8, 4},
		{4, 4, 8},
	}
}

func TestResolveCompletionSharedMemoryGatesOnWriteBack(t *testing.T) {
	q := queue.New()
	apps := map[string]*model.Application{"chain": chainApp()}

	taskB := model.Task{ID: 1, BaseID: 1, JobID: 0, JobName: "chain", Predecessors: []model.TaskID{0}}
	q.MoveToOutstanding(taskB)

	taskA := model.Task{ID: 0, BaseID: 0, JobID: 0, JobName: "chain", PEID: 0, FinishTime: 100}

	err := ResolveCompletion(q, apps, bandwidth(), 2, config.CommSharedMemory, taskA, 100)
	require.NoError(t, err)

	require.Len(t, q.Completed, 1)
	require.Empty(t, q.Outstanding)
	require.Len(t, q.WaitReady, 1)
	// write-back: 1024 bits over bandwidth 4 bits/us from PE0 to mem(PE2) = 256us.
	assert.Equal(t, int64(356), q.WaitReady[0].TimeStamp)
}

func TestResolveCompletionPEToPEGoesStraightToReady(t *testing.T) {
	q := queue.New()
	apps := map[string]*model.Application{"chain": chainApp()}

	taskB := model.Task{ID: 1, BaseID: 1, JobID: 0, JobName: "chain", Predecessors: []model.TaskID{0}}
	q.MoveToOutstanding(taskB)
	taskA := model.Task{ID: 0, BaseID: 0, JobID: 0, JobName: "chain", PEID: 0, FinishTime: 100}

	err := ResolveCompletion(q, apps, bandwidth(), 2, config.CommPEToPE, taskA, 100)
	require.NoError(t, err)

	require.Empty(t, q.WaitReady)
	require.Len(t, q.Ready, 1)
	assert.Equal(t, model.TaskID(1), q.Ready[0].ID)
}

func TestPromoteWaitReadyRespectsTimeStamp(t *testing.T) {
	q := queue.New()
	q.MoveToWaitReady(model.Task{ID: 5, TimeStamp: 200})
	q.MoveToWaitReady(model.Task{ID: 6, TimeStamp: 400})

	PromoteWaitReady(q, 300)

	require.Len(t, q.Ready, 1)
	assert.Equal(t, model.TaskID(5), q.Ready[0].ID)
	require.Len(t, q.WaitReady, 1)
	assert.Equal(t, model.TaskID(6), q.WaitReady[0].ID)
}

func TestMakeExecutablePEToPEUsesCompletedPredecessorFinishTime(t *testing.T) {
	q := queue.New()
	apps := map[string]*model.Application{"chain": chainApp()}

	q.MoveToCompleted(model.Task{ID: 0, BaseID: 0, JobID: 0, JobName: "chain", PEID: 0, FinishTime: 100})
	q.MoveToReady(model.Task{ID: 1, BaseID: 1, JobID: 0, JobName: "chain", PEID: 1})

	err := MakeExecutable(q, apps, bandwidth(), 2, config.CommPEToPE, 150)
	require.NoError(t, err)

	require.Empty(t, q.Ready)
	require.Len(t, q.Executable, 1)
	// direct PE0->PE1 transfer: 1024/8 = 128us after predecessor finish at 100.
	assert.Equal(t, int64(228), q.Executable[0].TimeStamp)
}

func TestMakeExecutableLeavesUnassignedTasksInReady(t *testing.T) {
	q := queue.New()
	apps := map[string]*model.Application{"chain": chainApp()}
	q.MoveToReady(model.Task{ID: 1, BaseID: 1, JobID: 0, JobName: "chain", PEID: model.NoPE})

	err := MakeExecutable(q, apps, bandwidth(), 2, config.CommSharedMemory, 150)
	require.NoError(t, err)

	assert.Len(t, q.Ready, 1)
	assert.Empty(t, q.Executable)
}

func TestResolveCompletionUnknownApplication(t *testing.T) {
	q := queue.New()
	task := model.Task{ID: 0, JobName: "missing"}
	err := ResolveCompletion(q, map[string]*model.Application{}, bandwidth(), 2, config.CommPEToPE, task, 0)
	require.ErrorIs(t, err, ErrUnknownApplication)
}
