package dtpm

import "github.com/dashsim/simcore/pkg/model"

// Track distinguishes the two independent throttling state machines that
// may run concurrently: the always-on safety cutoff ("regular") and the
// DTPM control loop's own trip points ("dtpm"), each with its own trip
// frequency table per cluster.
type Track int

const (
	TrackRegular Track = iota
	TrackDTPM
)

// ThrottleState tracks the current trip point reached by one track, so that
// recovery (raising the cap back up) only happens once the temperature has
// dropped with hysteresis below the point that triggered the throttle.
type ThrottleState struct {
	TripPoint int // -1 = not throttled
}

// NewThrottleState returns a state with no trip point engaged.
func NewThrottleState() *ThrottleState {
	return &ThrottleState{TripPoint: -1}
}

// TripFreqFor returns the configured trip frequency (MHz) for a cluster at
// a given trip point and track, and whether that trip point caps this
// cluster at all (-1 in the SoC descriptor means "no cap here").
func TripFreqFor(c *model.Cluster, track Track, tripPoint int) (int, bool) {
	var table []int
	switch track {
	case TrackDTPM:
		table = c.DTPMTripFreqMHz
	default:
		table = c.TripFreqMHz
	}
	if tripPoint < 0 || tripPoint >= len(table) {
		return 0, false
	}
	freq := table[tripPoint]
	return freq, freq != -1
}

// Evaluate applies or releases throttling against the current peak
// temperature, capping each cluster's desiredFreqMHz entry in place and
// returning the updated cap list. trips is ascending: trips[i] is the
// temperature (C) above which trip point i engages.
func (s *ThrottleState) Evaluate(peakTempC float64, trips []float64, hysteresisC []float64, clusters []*model.Cluster, track Track, desiredFreqMHz []int) []int {
	capped := make([]int, len(desiredFreqMHz))
	copy(capped, desiredFreqMHz)

	for tripPoint, tripTemp := range trips {
		if peakTempC > tripTemp {
			if s.TripPoint < tripPoint {
				for i, c := range clusters {
					if c.DVFS.Kind == model.DVFSNone {
						continue
					}
					freq, ok := TripFreqFor(c, track, tripPoint)
					if ok && capped[i] > freq {
						capped[i] = freq
					}
				}
				s.TripPoint = tripPoint
			}
			continue
		}
		hyst := 0.0
		if tripPoint < len(hysteresisC) {
			hyst = hysteresisC[tripPoint]
		}
		if s.TripPoint == tripPoint && peakTempC < tripTemp-hyst {
			s.TripPoint--
			if tripPoint == 0 {
				// capped already holds the un-throttled desired frequencies.
				continue
			}
			for i, c := range clusters {
				if c.DVFS.Kind == model.DVFSNone {
					continue
				}
				freq, ok := TripFreqFor(c, track, tripPoint-1)
				if ok && capped[i] > freq {
					capped[i] = freq
				}
			}
		}
	}
	return capped
}
