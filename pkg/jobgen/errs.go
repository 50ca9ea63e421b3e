package jobgen

import "fmt"

// ErrUnknownApplication means a configured job's application name has no
// loaded DAG.
var ErrUnknownApplication = fmt.Errorf("jobgen: unknown application")
