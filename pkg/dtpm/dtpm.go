// Package dtpm implements the dynamic thermal and power management loop:
// per-cluster DVFS policies, the analytic static/dynamic power models, the
// board's thermal predictor, and dual-track (regular/DTPM) trip-point
// throttling with hysteresis. It operates purely on model.Cluster/Resource
// state — callers (the PE executor and the top-level simulation loop) feed
// it utilization samples and energy ticks; it never reaches into queues or
// scheduling.
package dtpm

import "github.com/dashsim/simcore/pkg/model"

// UtilThresholds configures the ondemand governor's hysteresis band.
type UtilThresholds struct {
	High float64
	Low  float64
}

// Controller owns the cross-cluster thermal state and the two throttling
// tracks; one Controller per simulation run.
type Controller struct {
	Clusters []*model.Cluster

	AmbientC     float64
	LeakageC1    float64
	LeakageC2    float64
	LeakageIgate float64

	RegularTripC   []float64
	DTPMTripC      []float64
	HysteresisC    []float64
	RegularEnabled bool
	DTPMEnabled    bool

	regular *ThrottleState
	dtpm    *ThrottleState

	temperature [NumHotspots]float64
}

// NewController builds a Controller and initializes every cluster's
// starting operating point per its configured DVFS policy.
func NewController(clusters []*model.Cluster, ambientC float64) *Controller {
	ctrl := &Controller{
		Clusters:    clusters,
		AmbientC:    ambientC,
		regular:     NewThrottleState(),
		dtpm:        NewThrottleState(),
		temperature: [NumHotspots]float64{ambientC, ambientC, ambientC, ambientC, ambientC},
	}
	for _, c := range clusters {
		InitializeFrequency(c)
	}
	return ctrl
}

// EvaluateOndemand runs the ondemand policy for every cluster configured
// for it, given each cluster's current utilization (in [0, NumActiveCores]).
func (ctrl *Controller) EvaluateOndemand(utilByCluster map[int]float64, thresholds UtilThresholds) {
	throttled := ctrl.regular.TripPoint >= 0
	for _, c := range ctrl.Clusters {
		if c.DVFS.Kind != model.DVFSOndemand {
			continue
		}
		OndemandPolicy(c, utilByCluster[c.ID], thresholds.High, thresholds.Low, throttled)
	}
}

// EvaluateIdlePEs refreshes the aggregate power of every cluster with no
// task running anywhere on it. pe.Advance only updates a cluster's
// CurrentPowerW while driving an active task, so a cluster that falls
// idle keeps whatever power value its last running task left behind;
// called once per sampling period this makes the idle reading
// leakage-only (plus this sample's shared memory/GPU draw) instead of
// stale, which matters because SampleTemperature reads CurrentPowerW
// directly.
func (ctrl *Controller) EvaluateIdlePEs(clusterHasRunning map[int]bool, memW, gpuW float64) {
	for _, c := range ctrl.Clusters {
		if c.Type == model.TypeMEM || clusterHasRunning[c.ID] {
			continue
		}
		leakageW := ctrl.StaticPowerForCluster(c)
		c.CurrentPowerW = leakageW*float64(c.NumActiveCores) + memW + gpuW
	}
}

// SampleTemperature advances the thermal model by one sampling period given
// each non-memory cluster's current power draw, and returns the peak
// hotspot temperature.
func (ctrl *Controller) SampleTemperature(memW, gpuW float64) float64 {
	powers := make([]float64, 0, len(ctrl.Clusters))
	types := make([]model.ResourceType, 0, len(ctrl.Clusters))
	for _, c := range ctrl.Clusters {
		if c.Type == model.TypeMEM {
			continue
		}
		powers = append(powers, c.CurrentPowerW)
		types = append(types, c.Type)
	}
	ctrl.temperature = PredictTemperature(ctrl.temperature, ctrl.AmbientC, memW, gpuW, powers, types)
	peak := ctrl.temperature[0]
	for _, t := range ctrl.temperature[1:] {
		if t > peak {
			peak = t
		}
	}
	return peak
}

// Temperature returns the last predicted per-hotspot temperature vector.
func (ctrl *Controller) Temperature() [NumHotspots]float64 { return ctrl.temperature }

// ResetThrottling clears both throttling tracks' trip points, called when a
// snippet batch completes so the next one starts unthrottled.
func (ctrl *Controller) ResetThrottling() {
	ctrl.regular.TripPoint = -1
	ctrl.dtpm.TripPoint = -1
}

// ThrottleState reports the current trip point reached by each track
// (-1 if not throttled), for trace reporting.
func (ctrl *Controller) ThrottleState() (regular, dtpmTrip int) {
	return ctrl.regular.TripPoint, ctrl.dtpm.TripPoint
}

// EvaluateThrottling applies both throttling tracks against the last
// predicted peak temperature, capping each cluster's current frequency in
// place when it is not configured for DVFSNone.
func (ctrl *Controller) EvaluateThrottling() {
	peak := ctrl.temperature[0]
	for _, t := range ctrl.temperature[1:] {
		if t > peak {
			peak = t
		}
	}

	desired := make([]int, len(ctrl.Clusters))
	for i, c := range ctrl.Clusters {
		desired[i] = c.CurrentFrequencyMHz
	}

	if ctrl.RegularEnabled {
		capped := ctrl.regular.Evaluate(peak, ctrl.RegularTripC, ctrl.HysteresisC, ctrl.Clusters, TrackRegular, desired)
		applyFrequencyCaps(ctrl.Clusters, capped)
	}
	if ctrl.DTPMEnabled {
		for i, c := range ctrl.Clusters {
			desired[i] = c.CurrentFrequencyMHz
		}
		capped := ctrl.dtpm.Evaluate(peak, ctrl.DTPMTripC, ctrl.HysteresisC, ctrl.Clusters, TrackDTPM, desired)
		applyFrequencyCaps(ctrl.Clusters, capped)
	}
}

func applyFrequencyCaps(clusters []*model.Cluster, capped []int) {
	for i, c := range clusters {
		if c.DVFS.Kind == model.DVFSNone {
			continue
		}
		if c.OPPIndex(capped[i]) < 0 {
			continue
		}
		c.CurrentFrequencyMHz = capped[i]
		c.CurrentVoltageMV, _ = c.VoltageFor(capped[i])
	}
}

// StaticPowerForCluster is a convenience wrapper binding the controller's
// configured leakage coefficients to StaticPowerW.
func (ctrl *Controller) StaticPowerForCluster(c *model.Cluster) float64 {
	peak := ctrl.temperature[0]
	for _, t := range ctrl.temperature[1:] {
		if t > peak {
			peak = t
		}
	}
	return StaticPowerW(c.Type, peak, c.CurrentVoltageMV, ctrl.LeakageC1, ctrl.LeakageC2, ctrl.LeakageIgate)
}
