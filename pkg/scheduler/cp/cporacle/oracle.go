// Package cporacle defines the constraint-programming scheduler's solver
// boundary: a typed request describing every live job's tasks and
// precedence edges plus the PE commitments inherited from Running/
// Completed history, and a typed response carrying the resulting
// (PE, order) table. No CP/ILP solver library is linked — TableOracle, the
// default implementation, accepts only pre-baked tables, which is a
// documented-valid way to exercise this boundary without a solver
// dependency.
package cporacle

import (
	"context"
	"fmt"
	"time"

	"github.com/dashsim/simcore/pkg/model"
)

// TaskSpec identifies one task within a live job, by its application's
// dense base_ID.
type TaskSpec struct {
	BaseID int
	Name   string
}

// PrecedenceEdge is one producer/consumer edge within a job's DAG, carrying
// the communication volume the oracle needs to cost cross-PE transfers.
type PrecedenceEdge struct {
	FromBaseID  int
	ToBaseID    int
	CommVolBits model.Bits
}

// JobSpec is one live job's solver input: its tasks and their precedence
// edges, keyed by JobID for the response table's offset computation.
type JobSpec struct {
	JobID      int
	Tasks      []TaskSpec
	Precedence []PrecedenceEdge
}

// PEAssignment records a task already committed to a PE by virtue of
// currently running there; its FreeAtUs is the remaining run time, counted
// from the request's NowUs, until that PE slot becomes available, excluding
// the PE from being offered to other tasks until then.
type PEAssignment struct {
	JobID    int
	BaseID   int
	PEID     model.PEID
	FreeAtUs int64
}

// PEPin records a task already finished on a specific PE by history; the
// oracle must constrain that (jobID, baseID) to start no later than the PE
// pin implies ("start <= free_time" in the original formulation).
type PEPin struct {
	JobID  int
	BaseID int
	PEID   model.PEID
}

// Request is the full solver input for one oracle invocation.
type Request struct {
	NowUs int64

	Jobs      []JobSpec
	Resources []model.Resource // MEM and CAC already excluded
	Bandwidth model.BandwidthMatrix

	Committed []PEAssignment
	Pinned    []PEPin

	// TimeLimit bounds the solver's wall-clock budget. The default
	// TableOracle ignores it (it never searches); a real solver-backed
	// Oracle would pass it straight to its solve call.
	TimeLimit time.Duration
}

// Assignment is one task's resolved PE and per-PE execution order.
type Assignment struct {
	PEID  model.PEID
	Order int
}

// Response maps a dense task_sched_ID (computed the same way the
// table-driven scheduler computes it: summed task counts of every live job
// preceding this one in arrival order, plus base_ID) to its Assignment.
type Response struct {
	Table   map[int]Assignment
	Optimal bool
}

// Oracle solves one scheduling request. Implementations may search (a real
// CP/ILP solver) or simply replay a precomputed table (TableOracle).
type Oracle interface {
	Solve(ctx context.Context, req Request) (Response, error)
}

// ErrNoTableEntry means TableOracle was asked for a task_sched_ID its
// pre-baked table does not cover.
var ErrNoTableEntry = fmt.Errorf("cporacle: pre-baked table has no entry")

// TableOracle is the default Oracle: it replays a table supplied ahead of
// time (e.g. computed offline by an ILP solve and checked in, or populated
// by a test) rather than searching. Solve fails if the table is missing an
// entry any live task needs, which the caller (pkg/scheduler/cp) treats as
// a request to fall back to ETF until its next successful solve.
type TableOracle struct {
	Table map[int]Assignment
}

// Solve looks up every requested task_sched_ID in the configured table.
func (o *TableOracle) Solve(_ context.Context, req Request) (Response, error) {
	out := make(map[int]Assignment)
	offset := 0
	for _, job := range req.Jobs {
		for _, t := range job.Tasks {
			id := offset + t.BaseID
			a, ok := o.Table[id]
			if !ok {
				return Response{}, fmt.Errorf("%w: task_sched_ID %d (job %d, base %d)", ErrNoTableEntry, id, job.JobID, t.BaseID)
			}
			out[id] = a
		}
		offset += len(job.Tasks)
	}
	return Response{Table: out, Optimal: true}, nil
}
