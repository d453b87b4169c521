package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"speedbench/internal/benchmark"
	"speedbench/internal/chart"
	"speedbench/internal/config"
	"speedbench/internal/db"
	"speedbench/internal/harness"
	"speedbench/internal/telemetry"
)

// newExecutor allows mocking process execution in tests.
var newExecutor = func() benchmark.Executor {
	return benchmark.NewProcessExecutor()
}

// newHistoryStore allows swapping the history backend in tests.
var newHistoryStore = db.NewStore

func runSweep(cmd *cobra.Command, args []string) error {
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
		viper.Set("progress", false)
	}

	cfg, err := config.Current()
	if err != nil {
		return err
	}

	// logs stay off the terminal while the progress bar owns it
	var logOut io.Writer = cmd.ErrOrStderr()
	if cfg.Progress && !cfg.Verbose {
		logOut = nil
	}
	logger, closeLog := telemetry.InitLogger(logOut, cfg.Verbose, cfg.LogFile)
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, runner, err := buildHarness(cfg, logger)
	if err != nil {
		return err
	}

	var metrics *telemetry.SweepMetrics
	if cfg.MetricsFile != "" {
		metrics = telemetry.NewSweepMetrics()
		runner.Observers = append(runner.Observers, metrics)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = newProgressBar(cmd.ErrOrStderr(), runner.Points())
		runner.Observers = append(runner.Observers, benchmark.ObserverFunc(func(ev benchmark.Event) {
			if ev.Err == nil {
				bar.Add(1)
			}
		}))
	}

	if cfg.HistoryType != "" {
		store, err := newHistoryStore(db.StoreConfig{Type: cfg.HistoryType, ConnectionString: cfg.HistoryDSN})
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer store.Close()
		h.History = store
	}

	report, runErr := h.Run(ctx)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			telemetry.LogError("Failed to write metrics", err, "path", cfg.MetricsFile)
		} else {
			telemetry.LogInfof("Metrics written to %s", cfg.MetricsFile)
		}
	}

	if runErr != nil {
		return runErr
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func buildHarness(cfg *config.Config, logger *slog.Logger) (*harness.Harness, *benchmark.SweepRunner, error) {
	ex := newExecutor()
	dir := cfg.ProjectPath()

	builder := benchmark.NewBuilder(dir, cfg.BuildTool, cfg.BuildArgs, ex, logger)
	builder.Timeout = cfg.BuildTimeout
	builder.AllowStderr = cfg.AllowStderr

	sweepCfg := benchmark.SweepConfig{
		Variants:         cfg.Variants,
		MinThreads:       cfg.MinThreads,
		ThreadMultiplier: cfg.ThreadMultiplier,
		Procs:            cfg.Procs,
		Timeout:          cfg.Timeout,
		Retries:          cfg.Retries,
		RetryBackoff:     cfg.RetryBackoff,
		AllowStderr:      cfg.AllowStderr,
	}
	bin := benchmark.Binary{
		Dir:         dir,
		Name:        cfg.Binary,
		VariantFlag: cfg.VariantFlag,
		ThreadFlag:  cfg.ThreadFlag,
	}
	runner := benchmark.NewSweepRunner(sweepCfg, bin, ex, logger)

	store, err := benchmark.NewFileStore(cfg.OutputDir, cfg.FilePrefix, cfg.Format)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := chart.NewRenderer(cfg.OutputDir, cfg.FilePrefix, cfg.ImageFormat)
	if err != nil {
		return nil, nil, err
	}
	renderer.Caption = cfg.Caption
	renderer.VariantLabel = cfg.VariantLabel

	h := harness.New(builder, runner, store, renderer, logger)
	h.Host, _ = os.Hostname()
	h.Procs = sweepCfg.ProcCount()
	return h, runner, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("sweeping"),
	)
}
