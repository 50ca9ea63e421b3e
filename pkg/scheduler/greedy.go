package scheduler

import (
	"sort"

	"github.com/dashsim/simcore/pkg/model"
)

func init() {
	Register("cpu_only", func(map[string]any) (Scheduler, error) { return &cpuOnly{}, nil })
	Register("met", func(map[string]any) (Scheduler, error) { return &met{}, nil })
	Register("eft", func(map[string]any) (Scheduler, error) { return newEFT(), nil })
	Register("stf", func(map[string]any) (Scheduler, error) { return &stf{}, nil })
	Register("etf", func(map[string]any) (Scheduler, error) { return newETF(false), nil })
	Register("etf_lb", func(map[string]any) (Scheduler, error) { return newETF(true), nil })
}

func currentLoad(ctx *Context) map[model.PEID]int {
	load := make(map[model.PEID]int, len(ctx.PEs))
	for _, t := range ctx.Running {
		load[t.PEID]++
	}
	return load
}

// cpuOnly picks the least-loaded PE of type CPU for every ready task.
type cpuOnly struct{}

func (*cpuOnly) Name() string            { return "cpu_only" }
func (*cpuOnly) ReassignEveryTick() bool { return false }
func (*cpuOnly) Assign(ready []*model.Task, now int64, ctx *Context) error {
	load := currentLoad(ctx)
	var firstErr error
	for _, task := range ready {
		best := model.NoPE
		bestLoad := -1
		for i := range ctx.PEs {
			pe := &ctx.PEs[i]
			if pe.Type != model.TypeCPU || !pe.Supports(task.Name) {
				continue
			}
			l := load[pe.ID]
			if bestLoad == -1 || l < bestLoad || (l == bestLoad && pe.ID < best) {
				best = pe.ID
				bestLoad = l
			}
		}
		if best == model.NoPE {
			if firstErr == nil {
				firstErr = &NoEligiblePEError{TaskID: task.ID, TaskName: task.Name}
			}
			continue
		}
		task.PEID = best
		load[best]++
	}
	return firstErr
}

// met picks the PE minimizing performance[task], tie-broken by PE ID.
type met struct{}

func (*met) Name() string            { return "met" }
func (*met) ReassignEveryTick() bool { return false }
func (*met) Assign(ready []*model.Task, now int64, ctx *Context) error {
	var firstErr error
	for _, task := range ready {
		pe, err := bestMETPE(task, ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		task.PEID = pe
	}
	return firstErr
}

func bestMETPE(task *model.Task, ctx *Context) (model.PEID, error) {
	best := model.NoPE
	bestUs := -1.0
	for _, i := range eligiblePEs(task, ctx) {
		pe := &ctx.PEs[i]
		us := performanceUs(task, pe)
		if bestUs < 0 || us < bestUs || (us == bestUs && pe.ID < best) {
			best = pe.ID
			bestUs = us
		}
	}
	if best == model.NoPE {
		return model.NoPE, &NoEligiblePEError{TaskID: task.ID, TaskName: task.Name}
	}
	return best, nil
}

// eft picks the PE minimizing max(now, PE.available_time) + performance,
// maintaining each PE's available-time estimate across Assign calls.
type eft struct {
	availableAt map[model.PEID]int64
}

func newEFT() *eft { return &eft{availableAt: map[model.PEID]int64{}} }

func (*eft) Name() string            { return "eft" }
func (*eft) ReassignEveryTick() bool { return false }
func (e *eft) Assign(ready []*model.Task, now int64, ctx *Context) error {
	var firstErr error
	for _, task := range ready {
		best, finish, err := e.bestEFTPE(task, now, ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		task.PEID = best
		e.availableAt[best] = finish
	}
	return firstErr
}

func (e *eft) bestEFTPE(task *model.Task, now int64, ctx *Context) (model.PEID, int64, error) {
	best := model.NoPE
	var bestFinish int64
	for _, i := range eligiblePEs(task, ctx) {
		pe := &ctx.PEs[i]
		us := performanceUs(task, pe)
		start := now
		if at := e.availableAt[pe.ID]; at > start {
			start = at
		}
		finish := start + int64(us)
		if best == model.NoPE || finish < bestFinish || (finish == bestFinish && pe.ID < best) {
			best = pe.ID
			bestFinish = finish
		}
	}
	if best == model.NoPE {
		return model.NoPE, 0, &NoEligiblePEError{TaskID: task.ID, TaskName: task.Name}
	}
	return best, bestFinish, nil
}

// stf orders Ready by ascending performance on each task's own best PE,
// then dispatches with MET.
type stf struct{}

func (*stf) Name() string            { return "stf" }
func (*stf) ReassignEveryTick() bool { return false }
func (*stf) Assign(ready []*model.Task, now int64, ctx *Context) error {
	type scored struct {
		task *model.Task
		us   float64
	}
	scoredTasks := make([]scored, 0, len(ready))
	var firstErr error
	for _, task := range ready {
		pe, err := bestMETPE(task, ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		idx := resourceByID(ctx, pe)
		scoredTasks = append(scoredTasks, scored{task: task, us: performanceUs(task, idx)})
	}
	sort.SliceStable(scoredTasks, func(i, j int) bool { return scoredTasks[i].us < scoredTasks[j].us })
	ordered := make([]*model.Task, len(scoredTasks))
	for i, s := range scoredTasks {
		ordered[i] = s.task
	}
	if err := (&met{}).Assign(ordered, now, ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func resourceByID(ctx *Context, id model.PEID) *model.Resource {
	for i := range ctx.PEs {
		if ctx.PEs[i].ID == id {
			return &ctx.PEs[i]
		}
	}
	return nil
}

// etf considers every (ready task, PE) pair and greedily commits the
// globally earliest finish time first, repeating until every task is
// assigned. etfLB breaks ties toward the PE of smallest cumulative load.
type etf struct {
	availableAt map[model.PEID]int64
	loadBalance bool
}

func newETF(loadBalance bool) *etf {
	return &etf{availableAt: map[model.PEID]int64{}, loadBalance: loadBalance}
}

// NewETF returns a fresh ETF scheduler (or its load-balanced variant),
// exported for pkg/scheduler/cp's oracle-failure fallback.
func NewETF(loadBalance bool) Scheduler { return newETF(loadBalance) }

func (e *etf) Name() string {
	if e.loadBalance {
		return "etf_lb"
	}
	return "etf"
}
func (*etf) ReassignEveryTick() bool { return false }

func (e *etf) Assign(ready []*model.Task, now int64, ctx *Context) error {
	load := currentLoad(ctx)
	remaining := append([]*model.Task(nil), ready...)
	for len(remaining) > 0 {
		var bestTask *model.Task
		bestPE := model.NoPE
		var bestFinish int64
		bestLoad := -1
		for _, task := range remaining {
			for _, i := range eligiblePEs(task, ctx) {
				pe := &ctx.PEs[i]
				us := performanceUs(task, pe)
				start := now
				if at := e.availableAt[pe.ID]; at > start {
					start = at
				}
				finish := start + int64(us)
				l := load[pe.ID]
				better := bestTask == nil || finish < bestFinish
				if !better && finish == bestFinish && e.loadBalance {
					better = bestLoad == -1 || l < bestLoad
				}
				if !better && finish == bestFinish && !e.loadBalance {
					better = pe.ID < bestPE
				}
				if better {
					bestTask, bestPE, bestFinish, bestLoad = task, pe.ID, finish, l
				}
			}
		}
		if bestTask == nil {
			return &NoEligiblePEError{TaskID: remaining[0].ID, TaskName: remaining[0].Name}
		}
		bestTask.PEID = bestPE
		e.availableAt[bestPE] = bestFinish
		load[bestPE]++
		remaining = removeTask(remaining, bestTask)
	}
	return nil
}

func removeTask(tasks []*model.Task, target *model.Task) []*model.Task {
	for i, t := range tasks {
		if t == target {
			return append(tasks[:i], tasks[i+1:]...)
		}
	}
	return tasks
}

// NoEligiblePEError reports that no PE in the resource matrix supports a
// task's functionality.
type NoEligiblePEError struct {
	TaskID   model.TaskID
	TaskName string
}

func (e *NoEligiblePEError) Error() string {
	return "scheduler: no PE supports task " + e.TaskName
}

func (e *NoEligiblePEError) Unwrap() error { return ErrNoEligiblePE }
