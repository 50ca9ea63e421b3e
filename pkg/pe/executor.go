package pe

import (
	"github.com/dashsim/simcore/pkg/dtpm"
	"github.com/dashsim/simcore/pkg/model"
)

// ClusterActivity is the per-cluster information the executor needs but
// does not itself own: how many tasks are concurrently running on the
// cluster right now, and how many entries the profiled power table has at
// the threshold in use (both require looking across every PE in the
// cluster, not just the one executing).
type ClusterActivity struct {
	NumTasksExecuting   int
	PowerProfileEntries int
}

// StepResult reports the outcome of one Advance call.
type StepResult struct {
	SimulationStepUs int64
	TaskComplete     bool
}

// Advance runs one sampling-window slice of a task's execution: it predicts
// how long the task would take at the cluster's current frequency, clips
// that to the remaining time in the current sampling window, and updates
// energy accounting for the slice actually simulated. The caller advances
// the virtual clock by StepResult.SimulationStepUs and, when not complete,
// calls Advance again for the next window.
func Advance(state *State, rt *RunningTask, maxFreqRuntimeUs float64, nowUs, samplingPeriodUs int64, cluster *model.Cluster, ctrl *dtpm.Controller, activity ClusterActivity) StepResult {
	slowdown := dtpm.PerformanceSlowdown(cluster)
	remaining := maxFreqRuntimeUs - rt.ElapsedTimeMaxFreq
	predictedExecUs := remaining + remaining*slowdown

	windowRemainingUs := samplingPeriodUs - nowUs%samplingPeriodUs
	if windowRemainingUs <= 0 {
		windowRemainingUs = samplingPeriodUs
	}

	var simulationStepUs int64
	complete := false
	if predictedExecUs-float64(windowRemainingUs) > 0 {
		simulationStepUs = windowRemainingUs
		rt.ElapsedTimeMaxFreq += float64(simulationStepUs) / (slowdown + 1)
	} else {
		simulationStepUs = int64(predictedExecUs)
		if simulationStepUs < 0 {
			simulationStepUs = 0
		}
		complete = true
	}

	leakageW := ctrl.StaticPowerForCluster(cluster)
	rt.StaticEnergyJ += leakageW * float64(simulationStepUs) * 1e-6

	maxPowerW, freqThreshold, err := dtpm.MaxPowerConsumption(cluster, activity.NumTasksExecuting)
	var dynamicPowerPerCoreW float64
	if err == nil && maxPowerW > 0 && activity.NumTasksExecuting > 0 {
		dynamicPowerClusterW := maxPowerW - leakageW*float64(activity.PowerProfileEntries)
		dynamicPowerPerCoreW = dynamicPowerClusterW / float64(activity.NumTasksExecuting)
	}
	state.CdynAlpha = dtpm.CdynAlpha(dynamicPowerPerCoreW, freqThreshold, cluster.OPP)

	dynamicPowerW := dtpm.DynamicPowerW(cluster.CurrentFrequencyMHz, cluster.CurrentVoltageMV, state.CdynAlpha)
	rt.DynamicEnergyJ += dynamicPowerW * float64(simulationStepUs) * 1e-6

	cluster.CurrentPowerW = dynamicPowerW*float64(activity.NumTasksExecuting) + leakageW*float64(cluster.NumActiveCores)
	state.CurrentLeakageCoreW = leakageW
	state.CurrentPowerActiveCoreW = dynamicPowerW + leakageW

	energySampleJ := (dynamicPowerW + leakageW) * float64(simulationStepUs) * 1e-6
	state.SnippetEnergyJ += energySampleJ
	state.TotalEnergyJ += energySampleJ

	return StepResult{SimulationStepUs: simulationStepUs, TaskComplete: complete}
}

// TaskEnergyJ returns the total energy (dynamic + static) a completed
// execution accumulated.
func TaskEnergyJ(rt *RunningTask) float64 { return rt.DynamicEnergyJ + rt.StaticEnergyJ }

// CreditIdleEnergy charges one sampling period of leakage for every
// capacity slot Advance didn't drive this period (because no task
// occupies it), plus this PE's even share of the period's shared
// memory/GPU base power. Advance only ever accounts for the slots
// actually running a task, so a PE sitting fully or partially idle would
// otherwise never accrue energy for the sample.
func CreditIdleEnergy(state *State, leakageW, baseShareW float64, samplingPeriodUs int64) {
	unused := state.Capacity - len(state.Running)
	if unused <= 0 {
		return
	}
	energyJ := (leakageW*float64(unused) + baseShareW) * float64(samplingPeriodUs) * 1e-6
	state.SnippetEnergyJ += energyJ
	state.TotalEnergyJ += energyJ
}
