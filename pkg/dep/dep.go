// Package dep resolves inter-task dependencies as tasks complete: clearing
// predecessor edges, costing the resulting data transfer under the
// configured communication model, and moving tasks along the
// Outstanding -> WaitReady -> Ready -> Executable chain as each becomes
// eligible. It operates purely on pkg/queue state and pkg/model data; the
// top-level simulation loop owns when each of these functions is called.
package dep

import (
	"fmt"

	"github.com/dashsim/simcore/pkg/comm"
	"github.com/dashsim/simcore/pkg/config"
	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/queue"
)

// ResolveCompletion records a just-finished task as Completed and clears it
// from the predecessor list of every Outstanding task that depended on it.
// Under shared-memory communication, clearing a predecessor also schedules
// the write-back of its output to memory, recorded in the successor's
// ReadyWaitTimes. A task whose last predecessor clears moves to Ready
// directly (PE-to-PE mode) or to WaitReady gated on the write-back finishing
// (shared-memory mode).
func ResolveCompletion(q *queue.Queues, apps map[string]*model.Application, bw model.BandwidthMatrix, memPE model.PEID, mode config.CommunicationMode, completed model.Task, nowUs int64) error {
	app, ok := apps[completed.JobName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownApplication, completed.JobName)
	}
	q.MoveToCompleted(completed)

	var newlyReady []model.TaskID
	for i := range q.Outstanding {
		t := &q.Outstanding[i]
		removed, nowReady := t.RemovePredecessor(completed.ID)
		if !removed {
			continue
		}
		if mode == config.CommSharedMemory {
			vol := app.CommVol[completed.BaseID][t.BaseID]
			latencyUs := comm.WriteBackLatencyUs(bw, completed.PEID, memPE, vol)
			t.ReadyWaitTimes = append(t.ReadyWaitTimes, nowUs+int64(latencyUs))
		}
		if nowReady {
			newlyReady = append(newlyReady, t.ID)
		}
	}

	for _, id := range newlyReady {
		t, _ := q.TakeFromOutstanding(id)
		if mode == config.CommPEToPE {
			q.MoveToReady(t)
			continue
		}
		t.TimeStamp = maxInt64(t.ReadyWaitTimes)
		q.MoveToWaitReady(t)
	}
	return nil
}

// PromoteWaitReady moves every WaitReady task whose TimeStamp has elapsed
// into Ready.
func PromoteWaitReady(q *queue.Queues, nowUs int64) {
	var due []model.TaskID
	for _, t := range q.WaitReady {
		if t.TimeStamp <= nowUs {
			due = append(due, t.ID)
		}
	}
	for _, id := range due {
		t, _ := q.TakeFromWaitReady(id)
		q.MoveToReady(t)
	}
}

// MakeExecutable moves every Ready task that has been assigned a PE (by a
// scheduler, beforehand) into Executable, computing the time at which its
// input data will have finished arriving at that PE: the finish time of
// each predecessor plus a direct PE-to-PE transfer (PE-to-PE mode), or now
// plus a memory-to-PE read (shared-memory mode). A task is left in Ready if
// it has no PE assignment yet.
func MakeExecutable(q *queue.Queues, apps map[string]*model.Application, bw model.BandwidthMatrix, memPE model.PEID, mode config.CommunicationMode, nowUs int64) error {
	var moved []model.TaskID
	for i := range q.Ready {
		t := &q.Ready[i]
		if t.PEID == model.NoPE {
			continue
		}
		app, ok := apps[t.JobName]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownApplication, t.JobName)
		}
		tmpl := app.TaskByBaseID(t.BaseID)

		if t.Head {
			t.PEToPEWaitTime = append(t.PEToPEWaitTime, nowUs)
			t.ExecutionWaitTimes = append(t.ExecutionWaitTimes, nowUs)
		}

		for _, predBaseID := range tmpl.Predecessors {
			vol := app.CommVol[predBaseID][t.BaseID]
			realPredID := model.TaskID(predBaseID + int(t.ID) - t.BaseID)

			if mode == config.CommPEToPE {
				idx := queue.IndexByID(q.Completed, realPredID)
				if idx < 0 {
					continue
				}
				pred := q.Completed[idx]
				latencyUs := comm.DirectLatencyUs(bw, pred.PEID, t.PEID, vol)
				t.PEToPEWaitTime = append(t.PEToPEWaitTime, pred.FinishTime+int64(latencyUs))
				continue
			}
			latencyUs := comm.ReadLatencyUs(bw, memPE, t.PEID, vol)
			t.ExecutionWaitTimes = append(t.ExecutionWaitTimes, nowUs+int64(latencyUs))
		}

		if mode == config.CommPEToPE {
			t.TimeStamp = maxInt64(t.PEToPEWaitTime)
		} else {
			t.TimeStamp = maxInt64(t.ExecutionWaitTimes)
		}
		moved = append(moved, t.ID)
	}

	for _, id := range moved {
		t, _ := q.TakeFromReady(id)
		q.MoveToExecutable(t)
	}
	return nil
}

func maxInt64(xs []int64) int64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
