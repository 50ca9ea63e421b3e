package queue

// PruneMode selects which of two observed original behaviors to reproduce
// when the Completed queue is pruned. Neither choice is a correctness
// property: both bound memory, they differ only in how aggressively.
type PruneMode int

const (
	// PruneOldestJobFirst drops only the first Completed entry belonging to
	// the oldest live jobID, matching the original's literal single-delete
	// behavior.
	PruneOldestJobFirst PruneMode = iota
	// PruneOldestJobAll drops every Completed entry belonging to the oldest
	// live jobID in one pass — the behavior the original's single-entry
	// delete looks like it was meant to implement.
	PruneOldestJobAll
)

// PruneCompleted drops entries from Completed once the span of live jobIDs
// (oldest Completed jobID vs. the newest jobID seen anywhere in the live
// queues) exceeds maxJobSpan. newestJobID is the newest jobID currently
// known to the caller (e.g. the most recently generated job).
func (q *Queues) PruneCompleted(mode PruneMode, maxJobSpan, newestJobID int) {
	if len(q.Completed) == 0 {
		return
	}
	for {
		oldest := q.Completed[0].JobID
		for _, t := range q.Completed {
			if t.JobID < oldest {
				oldest = t.JobID
			}
		}
		if newestJobID-oldest <= maxJobSpan {
			return
		}
		switch mode {
		case PruneOldestJobAll:
			kept := q.Completed[:0]
			for _, t := range q.Completed {
				if t.JobID != oldest {
					kept = append(kept, t)
				}
			}
			q.Completed = kept
			return
		default: // PruneOldestJobFirst
			for i, t := range q.Completed {
				if t.JobID == oldest {
					q.Completed = removeAt(q.Completed, i)
					break
				}
			}
			// One entry per call; the caller re-runs the check every tick.
			return
		}
	}
}
