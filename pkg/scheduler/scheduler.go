// Package scheduler assigns Ready tasks to processing elements. Every
// scheduler implements the same narrow port — Assign mutates each task's
// PEID (and optionally Order and DynamicDependencies) in place — so the
// event loop can swap heuristics by name without caring which one is
// active. Greedy heuristics, the table-driven ILP family, and the
// constraint-programming oracle client all satisfy this port; the table and
// CP families carry their assignment table across calls and eft carries each
// PE's estimated available time; every other heuristic is stateless across
// Assign calls.
package scheduler

import (
	"fmt"

	"github.com/dashsim/simcore/pkg/model"
)

// Context is the read-only simulation state a scheduler needs to decide PE
// assignments: the resource matrix, the live jobs' applications (for
// comm_vol and table indexing), and snapshots of the Running and Completed
// queues (the load-balancing heuristics count Running tasks per PE; no
// scheduler in this package reads Completed).
type Context struct {
	PEs       []model.Resource
	Clusters  []*model.Cluster
	Bandwidth model.BandwidthMatrix
	Apps      map[string]*model.Application

	Running   []model.Task
	Completed []model.Task

	// LiveJobOrder lists jobIDs in arrival order, oldest first, for every
	// job currently represented in Outstanding/WaitReady/Ready/Executable/
	// Running. The table scheduler needs this to compute each task's dense
	// task_sched_ID.
	LiveJobOrder []int
	// JobApplication maps a live jobID to its application name.
	JobApplication map[int]string
}

// Scheduler assigns PEs to Ready tasks.
type Scheduler interface {
	// Name identifies the scheduler for logging and table-variant dispatch.
	Name() string
	// Assign mutates each task in ready, setting PEID (and optionally Order
	// and DynamicDependencies). now is the current virtual time.
	Assign(ready []*model.Task, now int64, ctx *Context) error
	// ReassignEveryTick reports whether the event loop should return
	// Executable tasks to Ready every tick so this scheduler gets a chance
	// to re-evaluate them (the per-tick RL hook).
	ReassignEveryTick() bool
}

// Constructor builds a Scheduler from its YAML-decoded configuration blob
// (may be nil for heuristics that take no configuration).
type Constructor func(cfg map[string]any) (Scheduler, error)

var registry = map[string]Constructor{}

// Register adds name to the constructor registry. Called from each
// scheduler family's init().
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// New builds the named scheduler, returning ErrUnknownScheduler if name was
// never registered.
func New(name string, cfg map[string]any) (Scheduler, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheduler, name)
	}
	return ctor(cfg)
}

// eligiblePEs returns the indices into ctx.PEs that can run task.Name,
// excluding MEM and CAC (never scheduling targets).
func eligiblePEs(task *model.Task, ctx *Context) []int {
	var out []int
	for i := range ctx.PEs {
		pe := &ctx.PEs[i]
		if pe.Type == model.TypeMEM || pe.Type == model.TypeCAC {
			continue
		}
		if pe.Supports(task.Name) {
			out = append(out, i)
		}
	}
	return out
}

func performanceUs(task *model.Task, pe *model.Resource) float64 {
	idx := pe.FunctionalityIndex(task.Name)
	if idx < 0 {
		return -1
	}
	return pe.Performance[idx]
}
