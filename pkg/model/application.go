package model

import "strconv"

// Application is a DAG template: an ordered list of task templates plus the
// inter-task communication-volume matrix. CommVol[i][j] is the bit volume
// sent from the task with BaseID i to the task with BaseID j; a non-zero
// entry implies i is a predecessor of j (checked by Validate).
type Application struct {
	Name    string
	Tasks   []TaskTemplate
	CommVol [][]Bits
}

// Validate checks the structural invariants: exactly one head and one tail
// task (unless the caller allows multiple sources/sinks via
// allowMultiHeadTail), and that every non-zero CommVol entry implies a
// predecessor edge.
func (a *Application) Validate(allowMultiHeadTail bool) error {
	heads, tails := 0, 0
	baseSeen := make(map[int]bool, len(a.Tasks))
	for _, t := range a.Tasks {
		if baseSeen[t.BaseID] {
			return &ConfigError{Msg: "application " + a.Name + ": duplicate base_ID " + strconv.Itoa(t.BaseID)}
		}
		baseSeen[t.BaseID] = true
		if t.Head {
			heads++
		}
		if t.Tail {
			tails++
		}
	}
	if !allowMultiHeadTail && (heads != 1 || tails != 1) {
		return &ConfigError{Msg: "application " + a.Name + ": expected exactly one head and one tail task"}
	}
	if len(a.CommVol) != 0 {
		n := len(a.Tasks)
		if len(a.CommVol) != n {
			return &ConfigError{Msg: "application " + a.Name + ": comm_vol matrix dimension mismatch"}
		}
		predSet := make([]map[int]bool, n)
		for _, t := range a.Tasks {
			m := make(map[int]bool, len(t.Predecessors))
			for _, p := range t.Predecessors {
				m[p] = true
			}
			predSet[t.BaseID] = m
		}
		for i := 0; i < n; i++ {
			if len(a.CommVol[i]) != n {
				return &ConfigError{Msg: "application " + a.Name + ": comm_vol row dimension mismatch"}
			}
			for j := 0; j < n; j++ {
				if a.CommVol[i][j] > 0 && !predSet[j][i] {
					return &ConfigError{Msg: "application " + a.Name + ": comm_vol[" + strconv.Itoa(i) + "][" + strconv.Itoa(j) + "] is non-zero but " + strconv.Itoa(i) + " is not a predecessor of " + strconv.Itoa(j)}
				}
			}
		}
	}
	return nil
}

// TaskByBaseID returns a pointer to the template with the given BaseID, or
// nil.
func (a *Application) TaskByBaseID(id int) *TaskTemplate {
	for i := range a.Tasks {
		if a.Tasks[i].BaseID == id {
			return &a.Tasks[i]
		}
	}
	return nil
}
