// Package pe models processing-element runtime state and drives task
// execution one sampling window at a time. Execution is cooperative: the
// top-level simulation loop calls Advance once per task per tick instead of
// each task running on its own goroutine, which keeps virtual-time
// ordering and energy accounting fully deterministic.
package pe

import "github.com/dashsim/simcore/pkg/model"

// State is the mutable runtime record for one PE, kept separate from the
// static model.Resource template so that the same template can back many
// PE instances in a cluster.
type State struct {
	ID       model.PEID
	Enabled  bool
	Idle     bool
	Capacity int

	UtilizationList []float64

	CurrentPowerActiveCoreW float64
	CurrentLeakageCoreW     float64
	SnippetEnergyJ          float64
	TotalEnergyJ            float64
	CdynAlpha               float64

	// BlockingUs and ActiveUs are the PE's blocked and active time counters.
	// Nothing in this module updates them; they stay 0 for the whole run.
	BlockingUs int64
	ActiveUs   int64

	AvailableTimeUs int64

	// Running holds one in-flight execution record per occupied capacity
	// slot.
	Running []*RunningTask
}

// NewState returns an enabled, idle PE state with the given slot capacity.
func NewState(id model.PEID, capacity int) *State {
	return &State{ID: id, Enabled: true, Idle: true, Capacity: capacity}
}

// RunningTask tracks one task's progress through its sampling-window loop.
type RunningTask struct {
	TaskID             model.TaskID
	StartTimeUs        int64
	ElapsedTimeMaxFreq float64 // max-frequency-equivalent progress, microseconds
	DynamicEnergyJ     float64
	StaticEnergyJ      float64
}

// NumRunning reports how many capacity slots are currently occupied.
func (s *State) NumRunning() int { return len(s.Running) }

// HasFreeSlot reports whether another task can start on this PE.
func (s *State) HasFreeSlot() bool { return s.Enabled && len(s.Running) < s.Capacity }

// FindRunning returns the running-task record for id, or nil.
func (s *State) FindRunning(id model.TaskID) *RunningTask {
	for _, r := range s.Running {
		if r.TaskID == id {
			return r
		}
	}
	return nil
}

// RemoveRunning drops the running-task record for id.
func (s *State) RemoveRunning(id model.TaskID) {
	for i, r := range s.Running {
		if r.TaskID == id {
			s.Running = append(s.Running[:i], s.Running[i+1:]...)
			return
		}
	}
}
