// Package model holds the arena-indexed data records shared by every
// simulator component: task templates and instances, applications (DAGs),
// processing elements, clusters, and the bandwidth matrix.
//
// Per the redesign notes, object graphs (Task <-> PE <-> Cluster) are
// expressed as dense integer indices into slices owned by a Simulation
// context, never as back-pointers, so that deep-copying a job template is a
// cheap value copy.
package model

// TaskID uniquely identifies a task instance within a run.
type TaskID int

// NoTask is the sentinel (-1) for "not assigned" task references.
const NoTask TaskID = -1

// PEID identifies a processing element. NoPE means "not yet assigned".
type PEID int

const NoPE PEID = -1

// TaskTemplate is a task definition within an Application's DAG, addressed
// by its BaseID (0..n-1) before any job instantiates it.
type TaskTemplate struct {
	Name             string
	BaseID           int
	Predecessors     []int // by BaseID
	Head             bool  // no predecessors
	Tail             bool  // no successors
	InputPacketSize  Bits
	OutputPacketSize Bits
}

// Task is a single instance of a TaskTemplate, created by the job generator
// via a deep copy. ID is globally unique within a run (BaseID + the job's
// task-ID offset).
type Task struct {
	Name    string
	ID      TaskID
	BaseID  int
	JobID   int
	JobName string
	HeadID  TaskID // ID of this job's head task

	Predecessors []TaskID // mutated: entries are removed as they complete
	Head         bool
	Tail         bool

	PEID       PEID
	StartTime  int64 // -1 until set
	FinishTime int64 // -1 until set
	Order      int   // per-PE ordinal assigned by a list scheduler; -1 if unset

	// TimeStamp is the virtual time at which this instance becomes
	// eligible to leave whichever queue currently owns it.
	TimeStamp int64

	ReadyWaitTimes     []int64
	ExecutionWaitTimes []int64
	PEToPEWaitTime     []int64

	// DynamicDependencies are extra task IDs that must be Completed before
	// this task may enter Running, injected by a scheduler (e.g. the
	// table-driven family's same-PE ordering constraint).
	DynamicDependencies []TaskID

	// TaskElapsedTimeMaxFreq is progress normalized to max-frequency
	// equivalent runtime; it is the PE executor's resumable counter.
	TaskElapsedTimeMaxFreq float64

	InputPacketSize  Bits
	OutputPacketSize Bits

	// JobStart is set on the head task only: the virtual time the job (and
	// this task) was injected.
	JobStart int64
}

// NewInstance deep-copies t into a Task instance with identifiers rewritten
// by offset and jobID.
func (t *TaskTemplate) NewInstance(offset, jobID int, jobName string, headID TaskID) Task {
	preds := make([]TaskID, len(t.Predecessors))
	for i, p := range t.Predecessors {
		preds[i] = TaskID(p + offset)
	}
	return Task{
		Name:             t.Name,
		ID:               TaskID(t.BaseID + offset),
		BaseID:           t.BaseID,
		JobID:            jobID,
		JobName:          jobName,
		HeadID:           headID,
		Predecessors:     preds,
		Head:             t.Head,
		Tail:             t.Tail,
		PEID:             NoPE,
		StartTime:        -1,
		FinishTime:       -1,
		Order:            -1,
		TimeStamp:        -1,
		InputPacketSize:  t.InputPacketSize,
		OutputPacketSize: t.OutputPacketSize,
		JobStart:         -1,
	}
}

// RemovePredecessor removes id from the task's predecessor list, returning
// whether it was present and whether the list is now empty.
func (t *Task) RemovePredecessor(id TaskID) (removed, nowReady bool) {
	for i, p := range t.Predecessors {
		if p == id {
			t.Predecessors = append(t.Predecessors[:i], t.Predecessors[i+1:]...)
			removed = true
			break
		}
	}
	return removed, removed && len(t.Predecessors) == 0
}

// HasDynamicDependency reports whether d is already recorded.
func (t *Task) HasDynamicDependency(d TaskID) bool {
	for _, x := range t.DynamicDependencies {
		if x == d {
			return true
		}
	}
	return false
}
