package scheduler

import (
	"fmt"
	"sort"

	"github.com/dashsim/simcore/pkg/model"
)

func init() {
	Register("table", func(cfg map[string]any) (Scheduler, error) { return NewTableScheduler("table"), nil })
}

// NewTableScheduler returns an empty TableScheduler named name, ready for
// SetTable to populate. Exported for pkg/scheduler/cp, which drives a
// TableScheduler from oracle solves rather than a static configuration.
func NewTableScheduler(name string) *TableScheduler { return newTableScheduler(name, nil) }

// Assignment is one entry of a precomputed schedule: the PE and per-PE
// ordinal assigned to the task at a given dense task_sched_ID.
type Assignment struct {
	PEID  model.PEID
	Order int
}

// TableScheduler consults a precomputed Assignment table keyed by a dense
// task_sched_ID, and injects dynamic dependencies between tasks sharing the
// same (PE, order-1) slot. It is the shape both the offline ILP solvers and
// the constraint-programming oracle (pkg/scheduler/cp) populate.
type TableScheduler struct {
	name  string
	table map[int]Assignment

	// sameSlot indexes (PEID, order) -> taskID, populated as tasks are
	// assigned, so that the task landing on (PEID, order+1) can be given a
	// dynamic dependency on it.
	sameSlot map[[2]int]model.TaskID
}

func newTableScheduler(name string, table map[int]Assignment) *TableScheduler {
	return &TableScheduler{name: name, table: table, sameSlot: map[[2]int]model.TaskID{}}
}

// SetTable replaces the assignment table, e.g. after a fresh CP solve.
func (s *TableScheduler) SetTable(table map[int]Assignment) { s.table = table }

func (s *TableScheduler) Name() string            { return s.name }
func (s *TableScheduler) ReassignEveryTick() bool { return false }

// Assign maps every ready task to its table entry, in job-arrival order so
// that task_sched_ID can be computed incrementally.
func (s *TableScheduler) Assign(ready []*model.Task, now int64, ctx *Context) error {
	schedID, err := taskSchedIDs(ready, ctx)
	if err != nil {
		return err
	}
	ordered := append([]*model.Task(nil), ready...)
	sort.SliceStable(ordered, func(i, j int) bool { return schedID[ordered[i].ID] < schedID[ordered[j].ID] })

	for _, task := range ordered {
		id := schedID[task.ID]
		a, ok := s.table[id]
		if !ok {
			return fmt.Errorf("scheduler: table %q has no entry for task_sched_ID %d (task %d)", s.name, id, task.ID)
		}
		task.PEID = a.PEID
		task.Order = a.Order

		if a.Order > 0 {
			if prev, ok := s.sameSlot[[2]int{int(a.PEID), a.Order - 1}]; ok && prev != task.ID && !task.HasDynamicDependency(prev) {
				task.DynamicDependencies = append(task.DynamicDependencies, prev)
			}
		}
		s.sameSlot[[2]int{int(a.PEID), a.Order}] = task.ID
	}
	return nil
}

// taskSchedIDs computes, for every ready task, the dense index
// sum(len(app[prev].tasks)) + task.base_ID summed over every live job that
// arrived before this task's job, using ctx.LiveJobOrder for arrival order.
func taskSchedIDs(ready []*model.Task, ctx *Context) (map[model.TaskID]int, error) {
	jobOffset := make(map[int]int, len(ctx.LiveJobOrder))
	offset := 0
	for _, jobID := range ctx.LiveJobOrder {
		jobOffset[jobID] = offset
		appName, ok := ctx.JobApplication[jobID]
		if !ok {
			return nil, fmt.Errorf("scheduler: live job %d has no application recorded", jobID)
		}
		app, ok := ctx.Apps[appName]
		if !ok {
			return nil, fmt.Errorf("scheduler: unknown application %q for job %d", appName, jobID)
		}
		offset += len(app.Tasks)
	}

	ids := make(map[model.TaskID]int, len(ready))
	for _, task := range ready {
		base, ok := jobOffset[task.JobID]
		if !ok {
			return nil, fmt.Errorf("scheduler: task %d belongs to job %d, which is not in LiveJobOrder", task.ID, task.JobID)
		}
		ids[task.ID] = base + task.BaseID
	}
	return ids, nil
}
