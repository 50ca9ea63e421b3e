package simclock

import "container/heap"

// Event is a pending wake-up: some activity (a PE execution window closing,
// a job arrival, a sampling tick) that should resume at TimeUs. Seq breaks
// ties between events scheduled for the same instant in the order they were
// pushed, so replay is deterministic regardless of container/heap's
// internal tie-breaking.
type Event struct {
	TimeUs int64
	Seq    int64
	Kind   string
	Data   any
}

// EventQueue is a min-heap of Events ordered by (TimeUs, Seq).
type EventQueue struct {
	items []Event
	seq   int64
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue { return &EventQueue{} }

// Len reports the number of pending events.
func (q *EventQueue) Len() int { return len(q.items) }

// Push schedules kind/data to wake at timeUs, returning the assigned Seq.
func (q *EventQueue) Push(timeUs int64, kind string, data any) int64 {
	seq := q.seq
	q.seq++
	heap.Push((*eventHeap)(q), Event{TimeUs: timeUs, Seq: seq, Kind: kind, Data: data})
	return seq
}

// Peek returns the earliest-scheduled event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the earliest-scheduled event.
func (q *EventQueue) Pop() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return heap.Pop((*eventHeap)(q)).(Event), true
}

// eventHeap adapts EventQueue to container/heap.Interface without exposing
// heap.Interface's mutation methods on EventQueue's public API.
type eventHeap EventQueue

func (h *eventHeap) Len() int { return len(h.items) }
func (h *eventHeap) Less(i, j int) bool {
	if h.items[i].TimeUs != h.items[j].TimeUs {
		return h.items[i].TimeUs < h.items[j].TimeUs
	}
	return h.items[i].Seq < h.items[j].Seq
}
func (h *eventHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *eventHeap) Push(x any)    { h.items = append(h.items, x.(Event)) }
func (h *eventHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
