package model

// ConfigError represents a configuration-time failure: unknown scheduler,
// bad DVFS mode, mismatched trip-point lengths, a frequency not present in
// a cluster's OPP list, etc. Callers surface it as a "[E] ..." log line and
// a non-zero exit; it is never silently swallowed.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// InvariantError represents a violated structural invariant: a task present
// in two queues, a predecessor cycle, and similar "this should be
// impossible" conditions. Code that detects one should treat it as fatal.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return e.Msg }
