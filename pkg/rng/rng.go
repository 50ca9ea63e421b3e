// Package rng provides the simulator's two independent, reproducibly seeded
// random streams: which application to inject next, and how long to wait
// before the next injection. Run-to-run determinism requires the algorithm
// itself to be pinned, not just the seed, so this wraps math/rand/v2's PCG
// generator directly rather than depending on an external, independently
// versioned RNG package.
package rng

import "math/rand/v2"

// Streams holds the job generator's two draw sources: which application to
// select next, and how long to wait before the next injection.
type Streams struct {
	Selection    *rand.Rand
	InterArrival *rand.Rand
}

// NewStreams derives two independent streams from a single configured seed,
// the same way job_generator.py re-seeds its single stream per iteration
// (common.iteration) but split across two purposes so that changing one
// distribution's draw count never perturbs the other's sequence.
func NewStreams(seed uint64) *Streams {
	return &Streams{
		Selection:    rand.New(rand.NewPCG(seed, 0x53_656c_6563)), // "Selec"
		InterArrival: rand.New(rand.NewPCG(seed, 0x49_6e_7465_72)), // "Inter"
	}
}

// Choice returns a uniformly random index in [0, n).
func Choice(r *rand.Rand, n int) int {
	if n <= 0 {
		return -1
	}
	return r.IntN(n)
}

// WeightedChoice draws an index proportional to weights (which need not sum
// to 1); it is used for configured job-probability selection.
func WeightedChoice(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return Choice(r, len(weights))
	}
	x := r.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Exponential draws from an exponential distribution with the given mean,
// matching random.expovariate(1/scale) in job_generator.py.
func Exponential(r *rand.Rand, mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	// rand.ExpFloat64 draws with rate 1 (mean 1); scale by the desired mean.
	return r.ExpFloat64() * mean
}
