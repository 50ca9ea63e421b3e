package config

import "errors"

var (
	// ErrNoSchedulers means the configuration named zero schedulers to run.
	ErrNoSchedulers = errors.New("config: no schedulers configured")

	// ErrBadClock means SimulationClockUs was <= 0.
	ErrBadClock = errors.New("config: simulation_clk_us must be > 0")

	// ErrBadRuntime means SimulationLengthUs was <= 0.
	ErrBadRuntime = errors.New("config: simulation_length_us must be > 0")

	// ErrUnknownCommMode means CommunicationMode named something other than
	// "shared_memory" or "pe_to_pe".
	ErrUnknownCommMode = errors.New("config: unknown communication_mode")

	// ErrUnknownPruneMode means CompletedQueue.Mode named something other
	// than the two recognized pruning strategies.
	ErrUnknownPruneMode = errors.New("config: unknown completed_queue.mode")

	// ErrUnknownThrottlePolicy means DTPM.ThrottlingPolicy named an
	// unrecognized policy.
	ErrUnknownThrottlePolicy = errors.New("config: unknown dtpm.throttling_policy")

	// ErrBadSeed means a seed field was negative.
	ErrBadSeed = errors.New("config: seed must be >= 0")
)
