// Package queue implements the simulator's task lifecycle queues:
// Outstanding, WaitReady, Ready, Executable, Running (owned per-PE), and
// Completed. Each is a plain slice preserving insertion order — the
// ordering invariant the core event loop and the schedulers rely on.
package queue

import (
	"strconv"

	"github.com/dashsim/simcore/pkg/model"
)

// Queues holds every live and terminal task, owned by exactly one of its
// six named slices at any given time.
type Queues struct {
	Outstanding []model.Task
	WaitReady   []model.Task
	Ready       []model.Task
	Executable  []model.Task
	Running     []model.Task
	Completed   []model.Task
}

// New returns an empty Queues.
func New() *Queues {
	return &Queues{}
}

// IndexByID returns the index of the task with id within s, or -1.
func IndexByID(s []model.Task, id model.TaskID) int {
	for i := range s {
		if s[i].ID == id {
			return i
		}
	}
	return -1
}

// removeAt deletes the element at index i, preserving the order of the
// remaining elements (stable, since later scans depend on insertion order).
func removeAt(s []model.Task, i int) []model.Task {
	return append(s[:i], s[i+1:]...)
}

// PopByID removes and returns the task with id from s, if present.
func PopByID(s *[]model.Task, id model.TaskID) (model.Task, bool) {
	i := IndexByID(*s, id)
	if i < 0 {
		return model.Task{}, false
	}
	t := (*s)[i]
	*s = removeAt(*s, i)
	return t, true
}

// MoveToOutstanding appends t, transferring ownership.
func (q *Queues) MoveToOutstanding(t model.Task) { q.Outstanding = append(q.Outstanding, t) }

// MoveToReady appends t to Ready.
func (q *Queues) MoveToReady(t model.Task) { q.Ready = append(q.Ready, t) }

// MoveToWaitReady appends t to WaitReady.
func (q *Queues) MoveToWaitReady(t model.Task) { q.WaitReady = append(q.WaitReady, t) }

// MoveToExecutable appends t to Executable.
func (q *Queues) MoveToExecutable(t model.Task) { q.Executable = append(q.Executable, t) }

// MoveToRunning appends t to Running.
func (q *Queues) MoveToRunning(t model.Task) { q.Running = append(q.Running, t) }

// MoveToCompleted appends t to Completed.
func (q *Queues) MoveToCompleted(t model.Task) { q.Completed = append(q.Completed, t) }

// TakeFromOutstanding removes and returns the task with id from Outstanding.
func (q *Queues) TakeFromOutstanding(id model.TaskID) (model.Task, bool) {
	return PopByID(&q.Outstanding, id)
}

// TakeFromWaitReady removes and returns the task with id from WaitReady.
func (q *Queues) TakeFromWaitReady(id model.TaskID) (model.Task, bool) {
	return PopByID(&q.WaitReady, id)
}

// TakeFromReady removes and returns the task with id from Ready.
func (q *Queues) TakeFromReady(id model.TaskID) (model.Task, bool) {
	return PopByID(&q.Ready, id)
}

// TakeFromExecutable removes and returns the task with id from Executable.
func (q *Queues) TakeFromExecutable(id model.TaskID) (model.Task, bool) {
	return PopByID(&q.Executable, id)
}

// TakeFromRunning removes and returns the task with id from Running.
func (q *Queues) TakeFromRunning(id model.TaskID) (model.Task, bool) {
	return PopByID(&q.Running, id)
}

// InAnyQueue reports whether id currently belongs to Outstanding, WaitReady,
// Ready, Executable, or Running (i.e. is "live" and not yet Completed).
func (q *Queues) InAnyQueue(id model.TaskID) bool {
	for _, s := range [][]model.Task{q.Outstanding, q.WaitReady, q.Ready, q.Executable, q.Running} {
		if IndexByID(s, id) >= 0 {
			return true
		}
	}
	return false
}

// AssertPartition checks that every live task id belongs to exactly one
// queue. It returns a *dupErr describing the first violation found.
func (q *Queues) AssertPartition() error {
	seen := make(map[model.TaskID]string)
	check := func(name string, s []model.Task) error {
		for _, t := range s {
			if prev, ok := seen[t.ID]; ok {
				return &dupErr{id: t.ID, a: prev, b: name}
			}
			seen[t.ID] = name
		}
		return nil
	}
	for _, pair := range []struct {
		name string
		s    []model.Task
	}{
		{"Outstanding", q.Outstanding},
		{"WaitReady", q.WaitReady},
		{"Ready", q.Ready},
		{"Executable", q.Executable},
		{"Running", q.Running},
		{"Completed", q.Completed},
	} {
		if err := check(pair.name, pair.s); err != nil {
			return err
		}
	}
	return nil
}

type dupErr struct {
	id   model.TaskID
	a, b string
}

func (e *dupErr) Error() string {
	return "task " + strconv.Itoa(int(e.id)) + " present in both " + e.a + " and " + e.b
}
