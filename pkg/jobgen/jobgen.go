// Package jobgen injects new job instances into the simulation: selecting
// which configured application to instantiate next, deep-copying its DAG
// into fresh task instances with globally unique IDs, routing each into
// Outstanding or Ready, and drawing the delay before the next injection
// attempt. Selection and inter-arrival timing are drawn from two
// independent streams so that neither perturbs the other's sequence.
package jobgen

import (
	"fmt"

	"github.com/dashsim/simcore/pkg/config"
	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/queue"
	"github.com/dashsim/simcore/pkg/rng"
)

// Generator holds the per-application counters a run needs to honor each
// job's configured Count (total instances ever injected) and Parallelism
// (instances live at once) caps.
//
// When snippetCounts is non-nil, injection instead cycles through a
// sequence of fixed-size batches ("snippets"): row i of snippetCounts gives
// the remaining per-application instance count for snippet i. A snippet's
// row must be fully exhausted, and every job it injected must have
// completed, before the next snippet's row may be drawn from.
type Generator struct {
	jobs    []config.JobArrival
	apps    []*model.Application
	streams *rng.Streams

	injected []int
	live     []int

	offset    int
	nextJobID int

	jobIndexByID map[int]int

	snippetCounts    [][]int
	snippetBatchSize []int
	currentSnippet   int
	snippetIDInj     int
	snippetIDExec    int
	snippetCompleted int
}

// New validates that every configured job's application was loaded and
// returns a Generator ready to inject. snippetJobCounts, when non-empty,
// activates snippet-scoped batch injection (see Generator); pass nil for
// the flat Count/Probability behavior.
func New(jobs []config.JobArrival, apps map[string]*model.Application, streams *rng.Streams, snippetJobCounts [][]int) (*Generator, error) {
	resolved := make([]*model.Application, len(jobs))
	for i, j := range jobs {
		app, ok := apps[j.Application]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownApplication, j.Application)
		}
		resolved[i] = app
	}
	g := &Generator{
		jobs:         jobs,
		apps:         resolved,
		streams:      streams,
		injected:     make([]int, len(jobs)),
		live:         make([]int, len(jobs)),
		jobIndexByID: make(map[int]int),
		snippetIDInj: -1,
	}
	if len(snippetJobCounts) > 0 {
		g.snippetCounts = make([][]int, len(snippetJobCounts))
		g.snippetBatchSize = make([]int, len(snippetJobCounts))
		for i, row := range snippetJobCounts {
			g.snippetCounts[i] = append([]int(nil), row...)
			sum := 0
			for _, n := range row {
				sum += n
			}
			g.snippetBatchSize[i] = sum
		}
		g.snippetIDExec = -1
	}
	return g, nil
}

// Injection describes one newly generated job instance.
type Injection struct {
	JobID      int
	HeadTaskID model.TaskID
	WaitUs     int64 // delay to wait before attempting the next injection
}

// Generate selects an eligible job, instantiates its tasks into q, and
// returns the resulting injection. ok is false when every configured job is
// currently at its Count or Parallelism cap; the caller should wait one
// clock tick and retry, mirroring the original's "all jobs exhausted"
// backoff.
func (g *Generator) Generate(q *queue.Queues, nowUs int64) (Injection, bool) {
	selection, ok := g.selectJob()
	if !ok {
		return Injection{}, false
	}

	app := g.apps[selection]
	job := g.jobs[selection]
	jobID := g.nextJobID
	g.nextJobID++
	offset := g.offset
	g.offset += len(app.Tasks)
	g.jobIndexByID[jobID] = selection

	var headID model.TaskID
	for _, t := range app.Tasks {
		if t.Head {
			headID = model.TaskID(t.BaseID + offset)
			break
		}
	}

	for _, t := range app.Tasks {
		instance := t.NewInstance(offset, jobID, app.Name, headID)
		if t.Head {
			instance.JobStart = nowUs
		}
		if len(instance.Predecessors) > 0 {
			q.MoveToOutstanding(instance)
		} else {
			q.MoveToReady(instance)
		}
	}

	g.injected[selection]++
	g.live[selection]++

	if g.snippetCounts != nil {
		g.snippetCounts[g.currentSnippet][selection]--
		if g.snippetRowExhausted(g.currentSnippet) && g.currentSnippet < len(g.snippetCounts)-1 {
			g.snippetIDInj = g.currentSnippet
			g.currentSnippet++
		}
	}

	return Injection{JobID: jobID, HeadTaskID: headID, WaitUs: g.waitUs(job)}, true
}

// Complete tells the generator a job's tail task has finished, freeing one
// slot of that job's Parallelism cap. The returned bool reports whether this
// completion was the snippet batch's last outstanding job, i.e. whether the
// caller must now apply the snippet rotation side effects.
func (g *Generator) Complete(jobID int) bool {
	idx, ok := g.jobIndexByID[jobID]
	if !ok {
		return false
	}
	if g.live[idx] > 0 {
		g.live[idx]--
	}
	delete(g.jobIndexByID, jobID)

	if g.snippetCounts == nil {
		return false
	}
	nextExec := g.snippetIDExec + 1
	if nextExec >= len(g.snippetBatchSize) {
		return false
	}
	g.snippetCompleted++
	if g.snippetCompleted < g.snippetBatchSize[nextExec] {
		return false
	}
	g.snippetIDExec = nextExec
	g.snippetCompleted = 0
	return true
}

// SnippetIndex reports the snippet currently executing, or 0 when snippet
// batching is not configured.
func (g *Generator) SnippetIndex() int {
	if g.snippetCounts == nil {
		return 0
	}
	return g.snippetIDExec + 1
}

func (g *Generator) snippetRowExhausted(row int) bool {
	for _, n := range g.snippetCounts[row] {
		if n > 0 {
			return false
		}
	}
	return true
}

// selectJob picks the next job index to instantiate. With snippet batching
// configured it delegates to selectSnippetJob; otherwise jobs with a finite
// Count target that haven't reached it are drawn uniformly among
// themselves, and once every capped job is exhausted, selection falls back
// to the configured Probability weights among the remaining uncapped jobs.
func (g *Generator) selectJob() (int, bool) {
	if g.snippetCounts != nil {
		return g.selectSnippetJob()
	}

	var valid []int
	for i, j := range g.jobs {
		if j.Count == 0 {
			continue
		}
		if g.injected[i] >= j.Count {
			continue
		}
		if g.atParallelismCap(i) {
			continue
		}
		valid = append(valid, i)
	}
	if len(valid) > 0 {
		return valid[rng.Choice(g.streams.Selection, len(valid))], true
	}

	var eligible []int
	var weights []float64
	for i, j := range g.jobs {
		if j.Count != 0 {
			continue
		}
		if g.atParallelismCap(i) {
			continue
		}
		eligible = append(eligible, i)
		weights = append(weights, j.Probability)
	}
	if len(eligible) == 0 {
		return 0, false
	}
	return eligible[rng.WeightedChoice(g.streams.Selection, weights)], true
}

// selectSnippetJob draws uniformly among applications with a positive
// remaining count in the current snippet row, subject to the Parallelism
// cap. It stalls (returns ok=false) while the most recently injected
// snippet index exceeds the most recently completed one, i.e. until every
// job the prior snippet injected has finished executing.
func (g *Generator) selectSnippetJob() (int, bool) {
	if g.snippetIDInj > g.snippetIDExec {
		return 0, false
	}
	row := g.snippetCounts[g.currentSnippet]
	var valid []int
	for i, n := range row {
		if n <= 0 {
			continue
		}
		if g.atParallelismCap(i) {
			continue
		}
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		return 0, false
	}
	return valid[rng.Choice(g.streams.Selection, len(valid))], true
}

func (g *Generator) atParallelismCap(i int) bool {
	p := g.jobs[i].Parallelism
	return p > 0 && g.live[i] >= p
}

func (g *Generator) waitUs(job config.JobArrival) int64 {
	if job.Fixed {
		return int64(job.InterArrivalUs)
	}
	return int64(rng.Exponential(g.streams.InterArrival, job.InterArrivalUs))
}
