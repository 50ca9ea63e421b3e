package dtpm

import (
	"fmt"
	"math"

	"github.com/dashsim/simcore/pkg/model"
)

// ErrNoPowerProfileEntry means a cluster's frequency exceeded every profiled
// threshold in its power table.
var ErrNoPowerProfileEntry = fmt.Errorf("dtpm: power profile has no entry above the current frequency")

const hzPerMHz = 1e6
const voltsPerMV = 1e-3

// PerformanceSlowdown returns the fractional runtime penalty of running at
// the cluster's current frequency instead of its maximum: 0 at max
// frequency, growing as frequency drops.
func PerformanceSlowdown(c *model.Cluster) float64 {
	if c.CurrentFrequencyMHz == 0 || len(c.OPP) == 0 {
		return 0
	}
	return float64(c.MaxFreqMHz())/float64(c.CurrentFrequencyMHz) - 1
}

// CdynAlpha extracts the product of switching capacitance and activity
// factor from a profiled maximum power draw at freqThresholdMHz, so that
// dynamic power at any other operating point can be estimated via
// DynamicPowerW. The voltage used is the one opp lists for exactly
// freqThresholdMHz; it returns 0 when opp is empty or has no such entry.
func CdynAlpha(maxPowerW float64, freqThresholdMHz int, opp []model.OPP) float64 {
	if len(opp) == 0 {
		return 0
	}
	volt, ok := voltageAtOrBelow(opp, freqThresholdMHz)
	if !ok {
		return 0
	}
	freqHz := float64(freqThresholdMHz) * hzPerMHz
	voltV := float64(volt) * voltsPerMV
	return maxPowerW / (freqHz * voltV * voltV)
}

func voltageAtOrBelow(opp []model.OPP, freqMHz int) (int, bool) {
	for _, o := range opp {
		if o.FreqMHz == freqMHz {
			return o.VoltMV, true
		}
	}
	return 0, false
}

// StaticPowerW returns the leakage power of one core in a cluster of the
// given type, from the Arrhenius-style leakage model: scaled down for
// little cores (smaller die area) and divided across the cluster's four
// physical cores, mirroring the board's core layout.
func StaticPowerW(clusterType model.ResourceType, tempC float64, voltageMV int, c1, c2, igate float64) float64 {
	if clusterType == model.TypeACC {
		return 0
	}
	tempK := 273 + tempC
	voltV := float64(voltageMV) * voltsPerMV
	clusterPower := voltV*c1*tempK*tempK*math.Exp(-c2/tempK) + igate*voltV
	if clusterType == model.TypeLTL {
		clusterPower /= 4
	}
	return clusterPower / 4
}

// DynamicPowerW computes Cdyn * alpha * f * V^2 for one core.
func DynamicPowerW(freqMHz, voltageMV int, cdynAlpha float64) float64 {
	freqHz := float64(freqMHz) * hzPerMHz
	voltV := float64(voltageMV) * voltsPerMV
	return cdynAlpha * freqHz * voltV * voltV
}

// MaxPowerConsumption looks up the profiled maximum power draw for the
// number of concurrently active tasks on a cluster (capped at the number of
// active cores), at the lowest power-profile threshold at or above the
// cluster's current frequency. It returns 0, 0, nil if no tasks are running.
func MaxPowerConsumption(c *model.Cluster, numTasks int) (powerW float64, thresholdMHz int, err error) {
	if numTasks <= 0 {
		return 0, 0, nil
	}
	idx := numTasks
	if numTasks > c.NumActiveCores {
		idx = c.NumActiveCores
	}
	best := -1
	for threshold := range c.PowerProfile {
		if c.CurrentFrequencyMHz <= threshold && (best == -1 || threshold < best) {
			best = threshold
		}
	}
	if best == -1 {
		return 0, 0, fmt.Errorf("%w: cluster %d at %d MHz", ErrNoPowerProfileEntry, c.ID, c.CurrentFrequencyMHz)
	}
	vals := c.PowerProfile[best]
	if idx-1 < 0 || idx-1 >= len(vals) {
		return 0, 0, fmt.Errorf("dtpm: power profile for cluster %d has no entry for %d tasks", c.ID, idx)
	}
	return vals[idx-1], best, nil
}
