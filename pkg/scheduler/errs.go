package scheduler

import "fmt"

// ErrUnknownScheduler names a scheduler requested by configuration that has
// no registered constructor.
var ErrUnknownScheduler = fmt.Errorf("scheduler: unknown scheduler")

// ErrNoEligiblePE means no PE in the resource matrix supports a ready
// task's functionality.
var ErrNoEligiblePE = fmt.Errorf("scheduler: no eligible PE for task")
