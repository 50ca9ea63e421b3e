// Package sim wires every simulator subsystem into one runnable context and
// drives the per-tick event loop: job injection, dependency resolution,
// scheduling, PE execution, DTPM, and trace emission. It owns no globals —
// everything a run needs lives on the Simulation value, per the redesign
// notes that moved this codebase away from the original's module-level
// state.
package sim

import (
	"log/slog"

	"github.com/dashsim/simcore/pkg/config"
	"github.com/dashsim/simcore/pkg/dtpm"
	"github.com/dashsim/simcore/pkg/jobgen"
	"github.com/dashsim/simcore/pkg/model"
	"github.com/dashsim/simcore/pkg/pe"
	"github.com/dashsim/simcore/pkg/queue"
	"github.com/dashsim/simcore/pkg/rng"
	"github.com/dashsim/simcore/pkg/scheduler"
	"github.com/dashsim/simcore/pkg/simclock"
	"github.com/dashsim/simcore/pkg/soc"
	"github.com/dashsim/simcore/pkg/trace"
)

// arrivalNotifiee is satisfied by scheduler families (currently only
// pkg/scheduler/cp.Scheduler) that need to re-solve on every job arrival
// rather than per-Assign call.
type arrivalNotifiee interface {
	OnJobArrival(q *queue.Queues, now int64, ctx *scheduler.Context) error
}

// Simulation is one configured, runnable instance of the event loop.
type Simulation struct {
	cfg  *config.Config
	apps map[string]*model.Application

	resources   []model.Resource
	resByID     map[model.PEID]*model.Resource
	clusters    []*model.Cluster
	clusterByID map[int]*model.Cluster
	bandwidth   model.BandwidthMatrix
	memPE       model.PEID

	clock  simclock.Clock
	queues *queue.Queues

	sched     scheduler.Scheduler
	onArrival arrivalNotifiee

	jobs *jobgen.Generator
	ctrl *dtpm.Controller

	peStates map[model.PEID]*pe.State

	sink trace.Sink
	log  *slog.Logger

	liveJobOrder   []int
	jobApplication map[int]string

	peHistory   map[model.PEID][]trace.Interval
	lastFreqMHz map[int]int

	nextGenerateAtUs int64
	newestJobIDSeen  int
	snippet          int
	completedJobs    int
}

// New builds a Simulation from its decoded configuration, loaded SoC
// descriptor, and application set. sched and sink are supplied by the
// caller (cmd/dashsim resolves sched via scheduler.New and sink via
// trace.NewCSVSink/trace.NopSink).
func New(cfg *config.Config, apps map[string]*model.Application, socDesc *soc.Descriptor, sched scheduler.Scheduler, sink trace.Sink, log *slog.Logger) (*Simulation, error) {
	s := &Simulation{
		cfg:            cfg,
		apps:           apps,
		resources:      socDesc.Resources,
		resByID:        make(map[model.PEID]*model.Resource, len(socDesc.Resources)),
		clusterByID:    make(map[int]*model.Cluster, len(socDesc.Clusters)),
		bandwidth:      socDesc.Bandwidth,
		memPE:          model.NoPE,
		queues:         queue.New(),
		sched:          sched,
		peStates:       make(map[model.PEID]*pe.State),
		sink:           sink,
		log:            log,
		jobApplication: make(map[int]string),
		peHistory:      make(map[model.PEID][]trace.Interval),
		lastFreqMHz:    make(map[int]int),
	}

	s.clusters = make([]*model.Cluster, len(socDesc.Clusters))
	for i := range socDesc.Clusters {
		s.clusters[i] = &socDesc.Clusters[i]
		s.clusterByID[s.clusters[i].ID] = s.clusters[i]
	}

	for i := range s.resources {
		r := &s.resources[i]
		s.resByID[r.ID] = r
		if r.Type == model.TypeMEM {
			s.memPE = r.ID
			continue
		}
		if r.Type == model.TypeCAC {
			continue
		}
		s.peStates[r.ID] = pe.NewState(r.ID, r.Capacity)
	}
	if s.memPE == model.NoPE {
		return nil, ErrNoMemoryPE
	}

	s.ctrl = dtpm.NewController(s.clusters, cfg.DTPM.AmbientTempC)
	s.ctrl.LeakageC1 = cfg.DTPM.LeakageC1
	s.ctrl.LeakageC2 = cfg.DTPM.LeakageC2
	s.ctrl.LeakageIgate = cfg.DTPM.LeakageIgate
	s.ctrl.RegularTripC = cfg.DTPM.RegularTripC
	s.ctrl.DTPMTripC = cfg.DTPM.DTPMTripC
	s.ctrl.HysteresisC = cfg.DTPM.TripHysteresisC
	switch cfg.DTPM.ThrottlingPolicy {
	case config.ThrottleRegular:
		s.ctrl.RegularEnabled = true
	case config.ThrottleDTPM:
		s.ctrl.DTPMEnabled = true
	case config.ThrottleBoth:
		s.ctrl.RegularEnabled = true
		s.ctrl.DTPMEnabled = true
	}
	for _, c := range s.clusters {
		s.lastFreqMHz[c.ID] = c.CurrentFrequencyMHz
	}

	streams := rng.NewStreams(cfg.Seed)
	jobs, err := jobgen.New(cfg.Jobs, apps, streams, cfg.SnippetJobCounts)
	if err != nil {
		return nil, err
	}
	s.jobs = jobs

	if notifiee, ok := sched.(arrivalNotifiee); ok {
		s.onArrival = notifiee
	}

	return s, nil
}

func prunePolicyFor(mode config.PruneMode) queue.PruneMode {
	if mode == config.PruneOldestJobAll {
		return queue.PruneOldestJobAll
	}
	return queue.PruneOldestJobFirst
}
