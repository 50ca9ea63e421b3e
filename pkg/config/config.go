// Package config decodes and validates the YAML run configuration: clock
// granularity, run length, the active schedulers, the job-arrival process,
// communication model, completed-queue pruning, and the DTPM control loop's
// tunables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CommunicationMode selects how inter-task data transfer is costed.
type CommunicationMode string

const (
	CommSharedMemory CommunicationMode = "shared_memory"
	CommPEToPE       CommunicationMode = "pe_to_pe"
)

// PruneMode names the two recognized completed-queue pruning strategies. It
// mirrors pkg/queue.PruneMode as a string so it round-trips through YAML.
type PruneMode string

const (
	PruneOldestJobFirst PruneMode = "oldest_job_first"
	PruneOldestJobAll   PruneMode = "oldest_job_all"
)

// ThrottlingPolicy selects which of the dtpm.Controller's throttling tracks
// (regular, DTPM, or both) run.
type ThrottlingPolicy string

const (
	ThrottleRegular ThrottlingPolicy = "regular"
	ThrottleDTPM    ThrottlingPolicy = "dtpm"
	ThrottleBoth    ThrottlingPolicy = "both"
)

// JobArrival configures the injection process for one application: how
// often it is selected and how inter-arrival times are drawn.
type JobArrival struct {
	Application    string  `yaml:"application"`
	Count          int     `yaml:"count"`           // finite number to inject, 0 = unbounded
	Probability    float64 `yaml:"probability"`     // weight used by job_probabilities selection
	InterArrivalUs float64 `yaml:"inter_arrival_us"` // mean of the exponential, or fixed delay
	Fixed          bool    `yaml:"fixed"`           // true: InterArrivalUs is exact, not a mean
	Parallelism    int     `yaml:"parallelism"` // max concurrently live instances, 0 = unbounded
}

// DTPMConfig tunes the thermal/power control loop. The leakage coefficients
// (LeakageC1/C2/Igate) are board-calibrated constants read from the SoC's
// power-management profile, not simulator-internal tuning knobs.
type DTPMConfig struct {
	Enabled          bool             `yaml:"enabled"`
	SamplingPeriodUs int64            `yaml:"sampling_period_us"`
	ThrottlingPolicy ThrottlingPolicy `yaml:"throttling_policy"`
	AmbientTempC     float64          `yaml:"ambient_temp_c"`
	// RegularTripC/DTPMTripC are ascending temperature thresholds (C); trip
	// point i engages once the peak hotspot exceeds entry i. Each track's
	// table indexes into its clusters' TripFreqMHz/DTPMTripFreqMHz.
	RegularTripC    []float64 `yaml:"regular_trip_c"`
	DTPMTripC       []float64 `yaml:"dtpm_trip_c"`
	TripHysteresisC []float64 `yaml:"trip_hysteresis_c"`

	// OndemandHighThreshold/OndemandLowThreshold bound the ondemand
	// governor's hysteresis band, as a fraction of a cluster's active-core
	// count (e.g. 0.8 means "80% of cores busy").
	OndemandHighThreshold float64 `yaml:"ondemand_high_threshold"`
	OndemandLowThreshold  float64 `yaml:"ondemand_low_threshold"`

	LeakageC1    float64 `yaml:"leakage_c1"`
	LeakageC2    float64 `yaml:"leakage_c2"`
	LeakageIgate float64 `yaml:"leakage_igate"`
}

// CompletedQueueConfig bounds the Completed queue's memory footprint.
type CompletedQueueConfig struct {
	Mode       PruneMode `yaml:"mode"`
	MaxJobSpan int       `yaml:"max_job_span"`
}

// Config is the full decoded run configuration.
type Config struct {
	Seed               uint64             `yaml:"seed"`
	SimulationClockUs  int64              `yaml:"simulation_clk_us"`
	SimulationLengthUs int64              `yaml:"simulation_length_us"`
	Scheduler          string             `yaml:"scheduler"`
	CommunicationMode  CommunicationMode  `yaml:"communication_mode"`
	AllowMultiHeadTail bool               `yaml:"allow_multi_head_tail"`
	PerTickReassign    bool               `yaml:"per_tick_reassign"`

	Jobs           []JobArrival         `yaml:"jobs"`
	DTPM           DTPMConfig           `yaml:"dtpm"`
	CompletedQueue CompletedQueueConfig `yaml:"completed_queue"`

	// SnippetJobCounts activates snippet-scoped batch injection when
	// non-empty: row i is the per-application instance count for snippet i,
	// indexed in Jobs order. Injection exhausts one row, then stalls until
	// that snippet's last task completes before drawing from the next row.
	// Nil/empty preserves the flat Count/Probability selection in Jobs.
	SnippetJobCounts [][]int `yaml:"snippet_job_counts"`

	SoCFile string `yaml:"soc_file"`
	DAGDir  string `yaml:"dag_dir"`

	TraceCSVPath  string `yaml:"trace_csv_path"`
	TraceHTMLPath string `yaml:"trace_html_path"`
}

// Load reads and decodes a YAML configuration file, applying defaults and
// validating the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.CommunicationMode == "" {
		c.CommunicationMode = CommSharedMemory
	}
	if c.CompletedQueue.Mode == "" {
		c.CompletedQueue.Mode = PruneOldestJobFirst
	}
	if c.CompletedQueue.MaxJobSpan == 0 {
		c.CompletedQueue.MaxJobSpan = 50
	}
	if c.DTPM.ThrottlingPolicy == "" {
		c.DTPM.ThrottlingPolicy = ThrottleBoth
	}
	if c.DTPM.SamplingPeriodUs == 0 {
		c.DTPM.SamplingPeriodUs = c.SimulationClockUs
	}
	if c.DTPM.OndemandHighThreshold == 0 {
		c.DTPM.OndemandHighThreshold = 0.8
	}
	if c.DTPM.OndemandLowThreshold == 0 {
		c.DTPM.OndemandLowThreshold = 0.3
	}
}

// Validate checks field ranges and cross-field consistency, returning a
// wrapped sentinel error identifying the first problem found.
func (c *Config) Validate() error {
	if c.SimulationClockUs <= 0 {
		return ErrBadClock
	}
	if c.SimulationLengthUs <= 0 {
		return ErrBadRuntime
	}
	if len(c.Jobs) == 0 {
		return fmt.Errorf("config: no jobs configured")
	}
	switch c.CommunicationMode {
	case CommSharedMemory, CommPEToPE:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommMode, c.CommunicationMode)
	}
	switch c.CompletedQueue.Mode {
	case PruneOldestJobFirst, PruneOldestJobAll:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPruneMode, c.CompletedQueue.Mode)
	}
	switch c.DTPM.ThrottlingPolicy {
	case ThrottleRegular, ThrottleDTPM, ThrottleBoth:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownThrottlePolicy, c.DTPM.ThrottlingPolicy)
	}
	if c.Scheduler == "" {
		return fmt.Errorf("config: scheduler must be set")
	}
	for i, row := range c.SnippetJobCounts {
		if len(row) != len(c.Jobs) {
			return fmt.Errorf("config: snippet_job_counts row %d has %d entries, want %d (one per job)", i, len(row), len(c.Jobs))
		}
	}
	return nil
}
