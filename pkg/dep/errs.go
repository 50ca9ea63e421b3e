package dep

import "fmt"

// ErrUnknownApplication means a task's job name does not match any loaded
// application template.
var ErrUnknownApplication = fmt.Errorf("dep: unknown application")
