package dtpm

import "github.com/dashsim/simcore/pkg/model"

// InitializeFrequency sets a cluster's starting operating point according to
// its configured DVFS mode, run once before the first sample.
func InitializeFrequency(c *model.Cluster) {
	if c.CurrentFrequencyMHz != 0 {
		return
	}
	switch c.DVFS.Kind {
	case model.DVFSOndemand, model.DVFSPerformance:
		c.CurrentFrequencyMHz = c.MaxFreqMHz()
		c.CurrentVoltageMV, _ = c.VoltageFor(c.CurrentFrequencyMHz)
	case model.DVFSPowersave:
		c.CurrentFrequencyMHz = c.MinFreqMHz()
		c.CurrentVoltageMV, _ = c.VoltageFor(c.CurrentFrequencyMHz)
	case model.DVFSConstant:
		c.CurrentFrequencyMHz = c.DVFS.ConstantMHz
		c.CurrentVoltageMV, _ = c.VoltageFor(c.DVFS.ConstantMHz)
	}
	c.PolicyFrequencyMHz = c.CurrentFrequencyMHz
}

// DecreaseFrequency steps a cluster down to the previous OPP, reporting
// whether it changed (false if already at the minimum).
func DecreaseFrequency(c *model.Cluster) bool {
	idx := c.OPPIndex(c.CurrentFrequencyMHz)
	if idx <= 0 {
		return false
	}
	c.CurrentFrequencyMHz = c.OPP[idx-1].FreqMHz
	c.CurrentVoltageMV = c.OPP[idx-1].VoltMV
	return true
}

// IncreaseFrequency steps a cluster up to the next OPP, reporting whether it
// changed (false if already at the maximum).
func IncreaseFrequency(c *model.Cluster) bool {
	idx := c.OPPIndex(c.CurrentFrequencyMHz)
	if idx < 0 || idx >= len(c.OPP)-1 {
		return false
	}
	c.CurrentFrequencyMHz = c.OPP[idx+1].FreqMHz
	c.CurrentVoltageMV = c.OPP[idx+1].VoltMV
	return true
}

// SetMaxFrequency pins the cluster to its highest OPP.
func SetMaxFrequency(c *model.Cluster) {
	c.CurrentFrequencyMHz = c.MaxFreqMHz()
	c.CurrentVoltageMV, _ = c.VoltageFor(c.CurrentFrequencyMHz)
}

// OndemandPolicy is Linux's ondemand governor: raise to max when utilization
// exceeds the high threshold (unless a safety throttle is already engaged),
// step down by one OPP when it falls below the low threshold, otherwise
// hold. utilization is in [0, numActiveCores].
func OndemandPolicy(c *model.Cluster, utilization, highThreshold, lowThreshold float64, throttled bool) {
	switch {
	case utilization <= highThreshold && utilization >= lowThreshold:
		// hold
	case utilization > highThreshold:
		if !throttled {
			SetMaxFrequency(c)
		}
	default:
		DecreaseFrequency(c)
	}
	c.PolicyFrequencyMHz = c.CurrentFrequencyMHz
}
