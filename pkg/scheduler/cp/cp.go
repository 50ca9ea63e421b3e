// Package cp drives the constraint-programming scheduler variant: an oracle
// invocation after every job arrival produces a fresh (PE, order) table
// which Assign then consults exactly like the static table-driven family.
// When the oracle cannot produce a table in time — a real solver missing
// its wall-clock budget, or a pre-baked TableOracle missing an entry —
// Assign falls back to ETF until the next successful solve rather than
// blocking the run.
package cp

import (
	"context"
	"time"

	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/queue"
	"github.com/dashsim/simcore/pkg/scheduler"
	"github.com/dashsim/simcore/pkg/scheduler/cp/cporacle"
)

func init() {
	scheduler.Register("cp", func(map[string]any) (scheduler.Scheduler, error) {
		return New(&cporacle.TableOracle{Table: map[int]cporacle.Assignment{}}), nil
	})
}

// SolveTimeout is the oracle's wall-clock budget for one solve.
const SolveTimeout = 60 * time.Second

// Scheduler wraps a TableScheduler whose table is refreshed by Oracle
// solves rather than static configuration.
type Scheduler struct {
	oracle       cporacle.Oracle
	table        *scheduler.TableScheduler
	fallback     scheduler.Scheduler
	fallbackTick bool
}

// New returns a CP scheduler driven by oracle.
func New(oracle cporacle.Oracle) *Scheduler {
	return &Scheduler{
		oracle:   oracle,
		table:    scheduler.NewTableScheduler("cp"),
		fallback: scheduler.NewETF(false),
	}
}

func (s *Scheduler) Name() string            { return "cp" }
func (s *Scheduler) ReassignEveryTick() bool { return false }

// Assign consults the last oracle-produced table, or ETF if the most
// recent OnJobArrival call could not produce one.
func (s *Scheduler) Assign(ready []*model.Task, now int64, ctx *scheduler.Context) error {
	if s.fallbackTick {
		return s.fallback.Assign(ready, now, ctx)
	}
	return s.table.Assign(ready, now, ctx)
}

// OnJobArrival re-solves the schedule for every live job (Outstanding and
// Ready tasks) given the current Running/Completed history, and installs
// the resulting table. q is the live queue state; ctx supplies the
// resource matrix, bandwidth, and application definitions. If the oracle
// fails — including a TableOracle missing an entry, or a real solver
// exceeding SolveTimeout — subsequent Assign calls use ETF until the next
// successful OnJobArrival.
func (s *Scheduler) OnJobArrival(q *queue.Queues, now int64, ctx *scheduler.Context) error {
	req := BuildRequest(q, now, ctx)

	solveCtx, cancel := context.WithTimeout(context.Background(), SolveTimeout)
	defer cancel()

	resp, err := s.oracle.Solve(solveCtx, req)
	if err != nil {
		s.fallbackTick = true
		return err
	}
	s.fallbackTick = false
	table := make(map[int]scheduler.Assignment, len(resp.Table))
	for id, a := range resp.Table {
		table[id] = scheduler.Assignment{PEID: a.PEID, Order: a.Order}
	}
	s.table.SetTable(table)
	return nil
}

// BuildRequest assembles an oracle Request from the live queue state: every
// job with tasks in Outstanding or Ready, its precedence edges from ctx.Apps,
// the PEs it has already committed to via Running, and the PE pins history
// leaves behind via Completed.
func BuildRequest(q *queue.Queues, now int64, ctx *scheduler.Context) cporacle.Request {
	liveJobIDs := map[int]bool{}
	for _, t := range q.Outstanding {
		liveJobIDs[t.JobID] = true
	}
	for _, t := range q.Ready {
		liveJobIDs[t.JobID] = true
	}

	// Walk ctx.LiveJobOrder (the deterministic arrival order the
	// table-driven scheduler also uses) rather than ranging over the
	// liveJobIDs set directly, so task_sched_ID offsets come out identical
	// across runs of the same logical state.
	jobs := make([]cporacle.JobSpec, 0, len(liveJobIDs))
	for _, jobID := range ctx.LiveJobOrder {
		if !liveJobIDs[jobID] {
			continue
		}
		appName := ctx.JobApplication[jobID]
		app, ok := ctx.Apps[appName]
		if !ok {
			continue
		}
		spec := cporacle.JobSpec{JobID: jobID}
		for _, tmpl := range app.Tasks {
			spec.Tasks = append(spec.Tasks, cporacle.TaskSpec{BaseID: tmpl.BaseID, Name: tmpl.Name})
			for _, predBase := range tmpl.Predecessors {
				vol := model.Bits(0)
				if len(app.CommVol) > predBase && len(app.CommVol[predBase]) > tmpl.BaseID {
					vol = app.CommVol[predBase][tmpl.BaseID]
				}
				spec.Precedence = append(spec.Precedence, cporacle.PrecedenceEdge{
					FromBaseID:  predBase,
					ToBaseID:    tmpl.BaseID,
					CommVolBits: vol,
				})
			}
		}
		jobs = append(jobs, spec)
	}

	var committed []cporacle.PEAssignment
	for _, t := range q.Running {
		res := resourceByID(ctx.PEs, t.PEID)
		if res == nil {
			continue
		}
		idx := res.FunctionalityIndex(t.Name)
		execUs := 0.0
		if idx >= 0 {
			execUs = res.Performance[idx]
		}
		committed = append(committed, cporacle.PEAssignment{
			JobID:    t.JobID,
			BaseID:   t.BaseID,
			PEID:     t.PEID,
			FreeAtUs: t.StartTime + int64(execUs) - now,
		})
	}

	var pinned []cporacle.PEPin
	for _, t := range q.Completed {
		if !liveJobIDs[t.JobID] {
			continue
		}
		pinned = append(pinned, cporacle.PEPin{JobID: t.JobID, BaseID: t.BaseID, PEID: t.PEID})
	}

	return cporacle.Request{
		NowUs:     now,
		Jobs:      jobs,
		Resources: nonMemResources(ctx.PEs),
		Bandwidth: ctx.Bandwidth,
		Committed: committed,
		Pinned:    pinned,
		TimeLimit: SolveTimeout,
	}
}

func resourceByID(pes []model.Resource, id model.PEID) *model.Resource {
	for i := range pes {
		if pes[i].ID == id {
			return &pes[i]
		}
	}
	return nil
}

func nonMemResources(pes []model.Resource) []model.Resource {
	out := make([]model.Resource, 0, len(pes))
	for _, pe := range pes {
		if pe.Type == model.TypeMEM || pe.Type == model.TypeCAC {
			continue
		}
		out = append(out, pe)
	}
	return out
}
