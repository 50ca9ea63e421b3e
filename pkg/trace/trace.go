// Package trace defines the simulator's trace-sink port: six append-only
// row kinds (tasks, frequency, PEs, temperature, load, system) describing a
// run as it progresses, plus CSV and optional HTML implementations: a
// csv.Writer per kind with its header emitted when the sink is created, and an
// html/template summary report built from the same accumulated rows.
package trace

import "github.com/dashsim/simcore/pkg/model"

// TaskRow is emitted once a task completes.
type TaskRow struct {
	DVFSMode   string
	TaskID     model.TaskID
	Cluster    int
	ExecTimeUs float64
	EnergyJ    float64
}

// FrequencyRow is emitted whenever a cluster's current frequency changes.
type FrequencyRow struct {
	PE           model.PEID
	TimestampUs  int64
	FrequencyMHz int
}

// Interval is one (start, finish) occupancy pair on a PE.
type Interval struct {
	StartUs  int64
	FinishUs int64
}

// PERow is a periodic snapshot of one PE's recent occupancy history. Info
// holds at most the PE's last 6 completed intervals (see BoundInfo); they
// are not filtered to the sampling window, and a task still running is not
// included.
type PERow struct {
	TimestampUs int64
	PE          model.PEID
	Info        []Interval
}

// MaxPEInfoIntervals bounds PERow.Info.
const MaxPEInfoIntervals = 6

// BoundInfo truncates intervals to the most recent MaxPEInfoIntervals entries.
func BoundInfo(intervals []Interval) []Interval {
	if len(intervals) <= MaxPEInfoIntervals {
		return intervals
	}
	return intervals[len(intervals)-MaxPEInfoIntervals:]
}

// TemperatureRow is a periodic sample of the board's thermal state.
type TemperatureRow struct {
	TimestampUs   int64
	Snippet       int
	TMaxC         float64
	ThrottleState int
}

// LoadRow is a periodic sample of per-cluster task concurrency.
type LoadRow struct {
	TimestampUs int64
	Snippet     int
	PerCluster  []int
	Total       int
}

// SystemRow summarizes one completed run.
type SystemRow struct {
	Jobs       []string
	DVFSModes  []string
	ExecTimeUs int64
	EnergyJ    float64
	EDP        float64
}

// Sink receives trace rows as a run progresses. Every method may be called
// zero or more times in any order consistent with virtual time; Close
// flushes and releases any underlying resources.
type Sink interface {
	WriteTask(TaskRow) error
	WriteFrequency(FrequencyRow) error
	WritePE(PERow) error
	WriteTemperature(TemperatureRow) error
	WriteLoad(LoadRow) error
	WriteSystem(SystemRow) error
	Close() error
}

// NopSink discards every row; useful for dry runs and tests that do not
// assert on trace output.
type NopSink struct{}

func (NopSink) WriteTask(TaskRow) error               { return nil }
func (NopSink) WriteFrequency(FrequencyRow) error     { return nil }
func (NopSink) WritePE(PERow) error                   { return nil }
func (NopSink) WriteTemperature(TemperatureRow) error { return nil }
func (NopSink) WriteLoad(LoadRow) error               { return nil }
func (NopSink) WriteSystem(SystemRow) error           { return nil }
func (NopSink) Close() error                          { return nil }
