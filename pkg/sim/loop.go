package sim

import (
	"errors"

	"github.com/dashsim/simcore/pkg/dep"
	"github.com/dashsim/simcore/pkg/dtpm"
	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/pe"
	"github.com/dashsim/simcore/pkg/queue"
	"github.com/dashsim/simcore/pkg/scheduler"
	"github.com/dashsim/simcore/pkg/trace"
)

// Run drives the event loop to completion: job injection, dependency
// resolution, scheduling, PE execution, and DTPM sampling, advancing the
// virtual clock by simulation_clk_us each iteration until the configured
// run length elapses. It returns the run's summary row, having already
// written it (and every other row emitted along the way) to the configured
// sink.
func (s *Simulation) Run() (trace.SystemRow, error) {
	for {
		now := s.clock.NowUs()
		if now > s.cfg.SimulationLengthUs {
			break
		}

		if s.cfg.DTPM.Enabled && s.cfg.DTPM.SamplingPeriodUs > 0 && now%s.cfg.DTPM.SamplingPeriodUs == 0 {
			s.evaluateIdlePEs()
			if err := s.sampleDTPM(now); err != nil {
				return trace.SystemRow{}, err
			}
		}

		s.tryGenerateJob(now)

		dep.PromoteWaitReady(s.queues, now)

		if s.sched.ReassignEveryTick() {
			s.flushExecutableToReady()
		}

		if len(s.queues.Ready) > 0 {
			if err := s.assignReady(now); err != nil {
				return trace.SystemRow{}, err
			}
		}

		s.dispatchExecutable(now)

		if err := s.advanceRunning(now); err != nil {
			return trace.SystemRow{}, err
		}

		s.queues.PruneCompleted(prunePolicyFor(s.cfg.CompletedQueue.Mode), s.cfg.CompletedQueue.MaxJobSpan, s.newestJobIDSeen)
		if err := s.queues.AssertPartition(); err != nil {
			return trace.SystemRow{}, err
		}

		s.clock.Tick(s.cfg.SimulationClockUs)
	}

	row := s.buildSystemRow()
	if err := s.sink.WriteSystem(row); err != nil {
		return row, err
	}
	if err := s.sink.Close(); err != nil {
		return row, err
	}
	return row, nil
}

func (s *Simulation) schedulerContext() *scheduler.Context {
	return &scheduler.Context{
		PEs:            s.resources,
		Clusters:       s.clusters,
		Bandwidth:      s.bandwidth,
		Apps:           s.apps,
		Running:        s.queues.Running,
		Completed:      s.queues.Completed,
		LiveJobOrder:   s.liveJobOrder,
		JobApplication: s.jobApplication,
	}
}

func (s *Simulation) assignReady(now int64) error {
	ready := make([]*model.Task, len(s.queues.Ready))
	for i := range s.queues.Ready {
		ready[i] = &s.queues.Ready[i]
	}
	if err := s.sched.Assign(ready, now, s.schedulerContext()); err != nil {
		if errors.Is(err, scheduler.ErrNoEligiblePE) {
			s.log.Error("unsupported task functionality, no PE can ever run it", "scheduler", s.sched.Name(), "err", err.Error())
			return err
		}
		s.log.Warn("scheduler assign failed", "scheduler", s.sched.Name(), "err", err.Error())
	}
	return dep.MakeExecutable(s.queues, s.apps, s.bandwidth, s.memPE, s.cfg.CommunicationMode, now)
}

// flushExecutableToReady returns every Executable task to Ready with its PE
// assignment cleared, giving a per-tick-reassigning scheduler (the RL hook)
// a chance to reconsider it alongside tasks that just became Ready.
func (s *Simulation) flushExecutableToReady() {
	pending := s.queues.Executable
	s.queues.Executable = nil
	for _, t := range pending {
		t.PEID = model.NoPE
		s.queues.MoveToReady(t)
	}
}

// dispatchExecutable starts every Executable task whose input data has
// finished arriving, whose dynamic (same-PE ordering) dependencies have all
// completed, and whose assigned PE has a free execution slot.
func (s *Simulation) dispatchExecutable(now int64) {
	var started []model.TaskID
	for i := range s.queues.Executable {
		t := &s.queues.Executable[i]
		if t.TimeStamp > now || t.PEID == model.NoPE {
			continue
		}
		if !s.dynamicDepsSatisfied(t) {
			continue
		}
		st := s.peStates[t.PEID]
		if st == nil || !st.HasFreeSlot() {
			continue
		}
		t.StartTime = now
		st.Running = append(st.Running, &pe.RunningTask{TaskID: t.ID, StartTimeUs: now})
		started = append(started, t.ID)
	}
	for _, id := range started {
		t, _ := queue.PopByID(&s.queues.Executable, id)
		s.queues.MoveToRunning(t)
	}
}

func (s *Simulation) dynamicDepsSatisfied(t *model.Task) bool {
	for _, d := range t.DynamicDependencies {
		if queue.IndexByID(s.queues.Completed, d) < 0 {
			return false
		}
	}
	return true
}

// advanceRunning steps every Running task's PE executor by one tick,
// finalizing and resolving dependencies for every task whose execution
// completes this tick.
func (s *Simulation) advanceRunning(now int64) error {
	var finished []model.TaskID
	for i := range s.queues.Running {
		t := &s.queues.Running[i]
		st := s.peStates[t.PEID]
		if st == nil {
			continue
		}
		rt := st.FindRunning(t.ID)
		if rt == nil {
			continue
		}
		res := s.resByID[t.PEID]
		cluster := s.clusterByID[res.ClusterID]

		maxFreqRuntimeUs := 0.0
		if idx := res.FunctionalityIndex(t.Name); idx >= 0 {
			maxFreqRuntimeUs = res.Performance[idx]
		}
		activity := pe.ClusterActivity{
			NumTasksExecuting:   s.countRunningOnCluster(cluster.ID),
			PowerProfileEntries: cluster.NumActiveCores,
		}

		result := pe.Advance(st, rt, maxFreqRuntimeUs, now, s.cfg.SimulationClockUs, cluster, s.ctrl, activity)
		if !result.TaskComplete {
			continue
		}

		finish := now + result.SimulationStepUs
		t.FinishTime = finish
		energyJ := pe.TaskEnergyJ(rt)
		if err := s.sink.WriteTask(trace.TaskRow{
			DVFSMode:   cluster.DVFS.String(),
			TaskID:     t.ID,
			Cluster:    cluster.ID,
			ExecTimeUs: float64(finish - t.StartTime),
			EnergyJ:    energyJ,
		}); err != nil {
			return err
		}
		hist := append(s.peHistory[t.PEID], trace.Interval{StartUs: t.StartTime, FinishUs: finish})
		s.peHistory[t.PEID] = trace.BoundInfo(hist)
		st.RemoveRunning(t.ID)
		finished = append(finished, t.ID)
	}

	for _, id := range finished {
		t, _ := queue.PopByID(&s.queues.Running, id)
		if err := dep.ResolveCompletion(s.queues, s.apps, s.bandwidth, s.memPE, s.cfg.CommunicationMode, t, t.FinishTime); err != nil {
			return err
		}
		if t.Tail {
			rotated := s.jobs.Complete(t.JobID)
			s.removeLiveJob(t.JobID)
			s.completedJobs++
			if rotated {
				s.rotateSnippet(t.FinishTime)
			}
		}
	}
	return nil
}

// rotateSnippet applies the per-snippet-boundary reset once a snippet
// batch's last outstanding job completes: every PE's snippet-scoped energy
// counter restarts, both throttling tracks clear so the next snippet starts
// unthrottled, and the snippet index advances for trace reporting.
func (s *Simulation) rotateSnippet(nowUs int64) {
	for _, st := range s.peStates {
		st.SnippetEnergyJ = 0
	}
	s.ctrl.ResetThrottling()
	s.snippet = s.jobs.SnippetIndex()
	s.log.Info("snippet rotated", "snippet", s.snippet, "at_us", nowUs, "initial_temp_c", s.ctrl.Temperature())
}

func (s *Simulation) countRunningOnCluster(clusterID int) int {
	n := 0
	for _, t := range s.queues.Running {
		if res := s.resByID[t.PEID]; res != nil && res.ClusterID == clusterID {
			n++
		}
	}
	return n
}

func (s *Simulation) removeLiveJob(jobID int) {
	delete(s.jobApplication, jobID)
	for i, id := range s.liveJobOrder {
		if id == jobID {
			s.liveJobOrder = append(s.liveJobOrder[:i], s.liveJobOrder[i+1:]...)
			return
		}
	}
}

// tryGenerateJob attempts one job injection if the generator's inter-arrival
// wait has elapsed, and notifies a CP-style scheduler of the new arrival.
func (s *Simulation) tryGenerateJob(now int64) {
	if now < s.nextGenerateAtUs {
		return
	}
	inj, ok := s.jobs.Generate(s.queues, now)
	if !ok {
		s.nextGenerateAtUs = now + s.cfg.SimulationClockUs
		return
	}
	s.nextGenerateAtUs = now + inj.WaitUs
	s.newestJobIDSeen = inj.JobID
	s.liveJobOrder = append(s.liveJobOrder, inj.JobID)
	if idx := queue.IndexByID(s.queues.Ready, inj.HeadTaskID); idx >= 0 {
		s.jobApplication[inj.JobID] = s.queues.Ready[idx].JobName
	}

	if s.onArrival == nil {
		return
	}
	if err := s.onArrival.OnJobArrival(s.queues, now, s.schedulerContext()); err != nil {
		s.log.Warn("scheduler arrival hook failed", "scheduler", s.sched.Name(), "err", err.Error())
	}
}

// evaluateIdlePEs charges leakage energy for every PE slot with no task
// running on it this sampling period and refreshes the aggregate power of
// any fully idle cluster, since pe.Advance only accounts for slots it is
// actively driving. No separate GPU/memory power model exists (see
// sampleDTPM), so the shared base draw each idle PE's share is computed
// against is zero.
func (s *Simulation) evaluateIdlePEs() {
	const memW, gpuW = 0, 0

	splitW := 0.0
	if n := len(s.peStates); n > 0 {
		splitW = (memW + gpuW) / float64(n)
	}

	clusterHasRunning := make(map[int]bool, len(s.clusters))
	for _, t := range s.queues.Running {
		if res := s.resByID[t.PEID]; res != nil {
			clusterHasRunning[res.ClusterID] = true
		}
	}

	for peID, st := range s.peStates {
		res := s.resByID[peID]
		if res == nil {
			continue
		}
		cluster := s.clusterByID[res.ClusterID]
		leakageW := s.ctrl.StaticPowerForCluster(cluster)
		pe.CreditIdleEnergy(st, leakageW, splitW, s.cfg.DTPM.SamplingPeriodUs)
	}

	s.ctrl.EvaluateIdlePEs(clusterHasRunning, memW, gpuW)
}

// sampleDTPM runs one pass of the ondemand governor, the thermal predictor,
// and the throttling evaluators, emitting the temperature/frequency/load/PE
// trace rows the sampling period covers.
func (s *Simulation) sampleDTPM(now int64) error {
	utilByCluster := make(map[int]float64, len(s.clusters))
	perCluster := make([]int, len(s.clusters))
	total := 0
	for i, c := range s.clusters {
		if c.Type == model.TypeMEM {
			continue
		}
		n := s.countRunningOnCluster(c.ID)
		perCluster[i] = n
		total += n
		cores := c.NumActiveCores
		if cores <= 0 {
			cores = 1
		}
		utilByCluster[c.ID] = float64(n) / float64(cores)
	}

	s.ctrl.EvaluateOndemand(utilByCluster, dtpm.UtilThresholds{
		High: s.cfg.DTPM.OndemandHighThreshold,
		Low:  s.cfg.DTPM.OndemandLowThreshold,
	})

	peak := s.ctrl.SampleTemperature(0, 0)
	s.ctrl.EvaluateThrottling()
	regular, dtpmTrip := s.ctrl.ThrottleState()

	if err := s.sink.WriteTemperature(trace.TemperatureRow{
		TimestampUs:   now,
		Snippet:       s.snippet,
		TMaxC:         peak,
		ThrottleState: max(regular, dtpmTrip),
	}); err != nil {
		return err
	}

	for _, c := range s.clusters {
		if c.CurrentFrequencyMHz == s.lastFreqMHz[c.ID] {
			continue
		}
		s.lastFreqMHz[c.ID] = c.CurrentFrequencyMHz
		for _, peID := range c.PEIDs {
			if err := s.sink.WriteFrequency(trace.FrequencyRow{
				PE:           peID,
				TimestampUs:  now,
				FrequencyMHz: c.CurrentFrequencyMHz,
			}); err != nil {
				return err
			}
		}
	}

	if err := s.sink.WriteLoad(trace.LoadRow{TimestampUs: now, Snippet: s.snippet, PerCluster: perCluster, Total: total}); err != nil {
		return err
	}

	for peID, hist := range s.peHistory {
		if err := s.sink.WritePE(trace.PERow{TimestampUs: now, PE: peID, Info: hist}); err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulation) buildSystemRow() trace.SystemRow {
	var jobs []string
	seenJob := map[string]bool{}
	for _, j := range s.cfg.Jobs {
		if seenJob[j.Application] {
			continue
		}
		seenJob[j.Application] = true
		jobs = append(jobs, j.Application)
	}

	var modes []string
	seenMode := map[string]bool{}
	for _, c := range s.clusters {
		m := c.DVFS.String()
		if seenMode[m] {
			continue
		}
		seenMode[m] = true
		modes = append(modes, m)
	}

	energyJ := 0.0
	for _, st := range s.peStates {
		energyJ += st.TotalEnergyJ
	}
	execTimeUs := s.clock.NowUs()

	return trace.SystemRow{
		Jobs:       jobs,
		DVFSModes:  modes,
		ExecTimeUs: execTimeUs,
		EnergyJ:    energyJ,
		EDP:        energyJ * float64(execTimeUs),
	}
}
