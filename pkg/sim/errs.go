package sim

import "errors"

// ErrNoMemoryPE means the SoC descriptor declared no TypeMEM resource, so
// shared-memory communication costing has nowhere to route through.
var ErrNoMemoryPE = errors.New("sim: soc descriptor has no memory resource")
