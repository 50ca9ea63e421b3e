package scheduler

import (
	"testing"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoTaskApp(name string) *model.Application {
	return &model.Application{
		Name: name,
		Tasks: []model.TaskTemplate{
			{Name: "a", BaseID: 0, Head: true},
			{Name: "b", BaseID: 1, Predecessors: []int{0}, Tail: true},
		},
	}
}

func TestTableSchedulerAssignsFromTable(t *testing.T) {
	s := NewTableScheduler("table")
	s.SetTable(map[int]Assignment{0: {PEID: 0, Order: 0}, 1: {PEID: 1, Order: 0}})

	ctx := &Context{
		Apps:           map[string]*model.Application{"app": twoTaskApp("app")},
		LiveJobOrder:   []int{0},
		JobApplication: map[int]string{0: "app"},
	}
	taskA := &model.Task{ID: 0, BaseID: 0, JobID: 0}
	taskB := &model.Task{ID: 1, BaseID: 1, JobID: 0}

	require.NoError(t, s.Assign([]*model.Task{taskA, taskB}, 0, ctx))
	assert.Equal(t, model.PEID(0), taskA.PEID)
	assert.Equal(t, model.PEID(1), taskB.PEID)
}

func TestTableSchedulerOffsetsSecondJob(t *testing.T) {
	s := NewTableScheduler("table")
	s.SetTable(map[int]Assignment{0: {PEID: 0}, 1: {PEID: 0}, 2: {PEID: 1}, 3: {PEID: 1}})

	ctx := &Context{
		Apps:           map[string]*model.Application{"app": twoTaskApp("app")},
		LiveJobOrder:   []int{0, 1},
		JobApplication: map[int]string{0: "app", 1: "app"},
	}
	job1TaskA := &model.Task{ID: 10, BaseID: 0, JobID: 1}
	require.NoError(t, s.Assign([]*model.Task{job1TaskA}, 0, ctx))
	assert.Equal(t, model.PEID(1), job1TaskA.PEID)
}

func TestTableSchedulerInjectsDynamicDependencyForSameSlot(t *testing.T) {
	s := NewTableScheduler("table")
	s.SetTable(map[int]Assignment{0: {PEID: 0, Order: 0}, 1: {PEID: 0, Order: 1}})

	ctx := &Context{
		Apps:           map[string]*model.Application{"app": twoTaskApp("app")},
		LiveJobOrder:   []int{0},
		JobApplication: map[int]string{0: "app"},
	}
	taskA := &model.Task{ID: 0, BaseID: 0, JobID: 0}
	// taskB's predecessor list intentionally does NOT include taskA, so the
	// same-PE ordering constraint must be injected as a dynamic dependency.
	taskB := &model.Task{ID: 1, BaseID: 1, JobID: 0}

	require.NoError(t, s.Assign([]*model.Task{taskA, taskB}, 0, ctx))
	require.Len(t, taskB.DynamicDependencies, 1)
	assert.Equal(t, model.TaskID(0), taskB.DynamicDependencies[0])
}

func TestTableSchedulerMissingEntryErrors(t *testing.T) {
	s := NewTableScheduler("table")
	ctx := &Context{
		Apps:           map[string]*model.Application{"app": twoTaskApp("app")},
		LiveJobOrder:   []int{0},
		JobApplication: map[int]string{0: "app"},
	}
	task := &model.Task{ID: 0, BaseID: 0, JobID: 0}
	err := s.Assign([]*model.Task{task}, 0, ctx)
	require.Error(t, err)
}
