package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/physim/catalog"
	"github.com/pthm-cable/physim/config"
	"github.com/pthm-cable/physim/scenario"
	"github.com/pthm-cable/physim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshots")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	resume := flag.String("resume", "", "Snapshot file to resume from")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = configured duration)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if *maxSteps > 0 && *maxSteps < cfg.Derived.Steps {
		cfg.Derived.Steps = *maxSteps
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, *outputDir, *resume); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir, resume string) error {
	runner, err := scenario.NewRunner(cfg, catalog.Default())
	if err != nil {
		return err
	}
	defer runner.Close()

	if resume != "" {
		snap, err := telemetry.LoadSnapshot(resume)
		if err != nil {
			return err
		}
		if err := runner.Restore(snap); err != nil {
			return err
		}
		slog.Info("resumed from snapshot", "path", resume, "step", snap.Step)
	}

	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	runner.SetOutput(om)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"arms", runner.Arms(),
		"steps", cfg.Derived.Steps,
		"dt", cfg.Simulation.DT,
		"output_dir", om.Dir(),
	)

	runErr := runner.Run(ctx)
	if runErr != nil {
		slog.Warn("simulation interrupted", "step", runner.StepCount(), "error", runErr)
	}

	rows := runner.Finish()
	slog.Info("simulation finished", "step", runner.StepCount(), "summary_rows", len(rows))
	if !cfg.Telemetry.LogStats {
		telemetry.LogSummary(rows)
	}
	return runErr
}
