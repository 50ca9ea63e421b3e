package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashsim/simcore/pkg/appdag"
	"github.com/dashsim/simcore/pkg/config"
	"github.com/dashsim/simcore/pkg/scheduler"
	_ "github.com/dashsim/simcore/pkg/scheduler/cp"
	"github.com/dashsim/simcore/pkg/sim"
	"github.com/dashsim/simcore/pkg/simlog"
	"github.com/dashsim/simcore/pkg/soc"
	"github.com/dashsim/simcore/pkg/trace"
)

type opts struct {
	configPath string
	socPath    string
	dagDir     string
	scheduler  string
	tracePath  string
	htmlPath   string
	quiet      bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "dashsim",
		Short: "Discrete-event simulator for heterogeneous multi-processor SoCs",
		Long: `dashsim runs a configured job mix through a modeled SoC: task DAGs are
injected per a configurable arrival process, scheduled onto processing
elements by a pluggable heuristic, and executed under a DVFS/thermal power
model. It reports per-task, per-cluster, and whole-run energy and timing
trace rows.

Examples:
  dashsim run -c run.yaml --soc board.soc --dag-dir apps/
  dashsim run -c run.yaml --scheduler eft --trace-csv ./trace`,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}
	runCmd.Flags().StringVarP(&o.configPath, "config", "c", "", "path to the run configuration YAML (required)")
	runCmd.Flags().StringVar(&o.socPath, "soc", "", "SoC descriptor path (overrides config's soc_file)")
	runCmd.Flags().StringVar(&o.dagDir, "dag-dir", "", "application DAG directory (overrides config's dag_dir)")
	runCmd.Flags().StringVar(&o.scheduler, "scheduler", "", "scheduler name (overrides config's scheduler)")
	runCmd.Flags().StringVar(&o.tracePath, "trace-csv", "", "directory to write per-kind trace CSVs (overrides config's trace_csv_path)")
	runCmd.Flags().StringVar(&o.htmlPath, "trace-html", "", "path to write an HTML summary report (overrides config's trace_html_path)")
	runCmd.Flags().BoolVar(&o.quiet, "quiet", false, "suppress the final summary line")
	_ = runCmd.MarkFlagRequired("config")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		log := simlog.New(os.Stderr)
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	log := simlog.New(os.Stderr)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.socPath != "" {
		cfg.SoCFile = o.socPath
	}
	if o.dagDir != "" {
		cfg.DAGDir = o.dagDir
	}
	if o.scheduler != "" {
		cfg.Scheduler = o.scheduler
	}
	if o.tracePath != "" {
		cfg.TraceCSVPath = o.tracePath
	}
	if o.htmlPath != "" {
		cfg.TraceHTMLPath = o.htmlPath
	}

	socFile, err := os.Open(cfg.SoCFile)
	if err != nil {
		return fmt.Errorf("dashsim: open soc file: %w", err)
	}
	defer socFile.Close()
	socDesc, err := soc.Parse(socFile)
	if err != nil {
		return fmt.Errorf("dashsim: parse soc file: %w", err)
	}

	apps, err := appdag.LoadDir(cfg.DAGDir, cfg.AllowMultiHeadTail)
	if err != nil {
		return fmt.Errorf("dashsim: load dags: %w", err)
	}

	sched, err := scheduler.New(cfg.Scheduler, nil)
	if err != nil {
		return fmt.Errorf("dashsim: build scheduler: %w", err)
	}

	sink, err := buildSink(cfg)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg, apps, socDesc, sched, sink, log)
	if err != nil {
		return fmt.Errorf("dashsim: build simulation: %w", err)
	}

	summary, err := s.Run()
	if err != nil {
		return fmt.Errorf("dashsim: run: %w", err)
	}

	if cfg.TraceHTMLPath != "" {
		if err := trace.WriteHTML(cfg.TraceHTMLPath, trace.HTMLReport{System: summary}); err != nil {
			return fmt.Errorf("dashsim: write html report: %w", err)
		}
	}

	if !o.quiet {
		log.Info("run complete",
			"exec_time_us", summary.ExecTimeUs,
			"energy_j", summary.EnergyJ,
			"edp", summary.EDP,
			"jobs", summary.Jobs,
		)
	}
	return nil
}

func buildSink(cfg *config.Config) (trace.Sink, error) {
	if cfg.TraceCSVPath == "" {
		return trace.NopSink{}, nil
	}
	sink, err := trace.NewCSVSink(cfg.TraceCSVPath)
	if err != nil {
		return nil, fmt.Errorf("dashsim: build trace sink: %w", err)
	}
	return sink, nil
}
