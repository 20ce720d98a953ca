package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/artifacts"
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends"
	"github.com/systemstart/shipyard/pkg/logging"
	"github.com/systemstart/shipyard/pkg/pipeline"
)

var version = "dev"

const (
	_ = iota
	exitInvalidArguments
	exitDotenvError
	exitLoadConfigurationFileFailed
	exitLoadContextFailed
	exitInterpolationFailed
	exitCollectArtifactsFailed
	exitReleaserResolutionFailed
	exitReleaseFailed
	exitBackendsDegraded
	exitCancelled
)

var (
	configFile          string
	contextFile         string
	dryRun              bool
	outputDirectory     string
	timeout             string
	announceParallelism int
	packageParallelism  int
	loggingType         string
	logLevel            string
	showVersion         bool
)

func init() {
	flag.StringVar(
		&configFile,
		"config",
		api.DefaultConfigFile,
		"release configuration file")
	flag.StringVar(
		&contextFile,
		"context-file",
		"",
		"extra template context YAML file (default: $XDG_CONFIG_HOME/shipyard/context.yaml if present)")
	flag.BoolVar(
		&dryRun,
		"dry-run",
		false,
		"run every backend without external side effects")
	flag.StringVar(
		&outputDirectory,
		"output-directory",
		"dist",
		"directory for generated package files")
	flag.StringVar(
		&timeout,
		"timeout",
		"",
		"per-backend timeout, overrides the configuration file")
	flag.IntVar(
		&announceParallelism,
		"announce-parallelism",
		0,
		"max concurrent announcers (0 or -1 = unlimited)")
	flag.IntVar(
		&packageParallelism,
		"package-parallelism",
		1,
		"max concurrent packagers (-1 = unlimited)")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [full|release|package|announce]\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := logging.Initialize(os.Stderr, loggingType, logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInvalidArguments)
	}

	stage := parseStage()
	includeEnv()
	cfg := loadConfig()
	found := collectArtifacts(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends.RegisterBuiltins(backend.Default)
	backend.Default.Seal()

	rc := backend.NewContext(cfg, backend.Options{
		DryRun:    dryRun,
		OutputDir: outputDirectory,
		Logger:    logger,
		Artifacts: found,
	})
	slog.Info("starting run", "run", rc.RunID, "project", rc.ProjectName, "tag", rc.Tag, "stage", stage, "dryRun", rc.DryRun)

	report, err := pipeline.Run(ctx, rc, pipeline.Options{
		Registry:            backend.Default,
		Stage:               stage,
		PackageParallelism:  packageParallelism,
		AnnounceParallelism: announceParallelism,
	})
	interrupted := ctx.Err() != nil
	stop()

	os.Exit(exitCode(report, err, interrupted))
}

func exitCode(report *pipeline.Report, err error, interrupted bool) int {
	switch {
	case interrupted:
		slog.Warn("run interrupted", "error", err)
		return exitCancelled
	case errors.Is(err, pipeline.ErrReleaseFailed):
		slog.Error("release failed", "error", err)
		return exitReleaseFailed
	case err != nil:
		slog.Error("releaser resolution failed", "error", err)
		return exitReleaserResolutionFailed
	case report.Degraded():
		slog.Warn("run finished with failed backends", "failed", report.Failed())
		return exitBackendsDegraded
	}
	slog.Info("done")
	return 0
}

func parseStage() pipeline.Stage {
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(exitInvalidArguments)
	}
	stage, err := pipeline.ParseStage(flag.Arg(0))
	if err != nil {
		slog.Error("invalid command", "error", err)
		os.Exit(exitInvalidArguments)
	}
	return stage
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}

func loadConfig() *api.Config {
	cfg, err := api.LoadConfig(configFile)
	if err != nil {
		slog.Error("failed to load configuration file", "filename", configFile, "error", err)
		os.Exit(exitLoadConfigurationFileFailed)
	}

	if contextFile == "" {
		contextFile = api.UserContextFile()
	}
	if contextFile != "" {
		slog.Debug("loading context file", "filename", contextFile)
		extra, err := api.LoadContextFile(contextFile)
		if err != nil {
			slog.Error("failed to load context file", "filename", contextFile, "error", err)
			os.Exit(exitLoadContextFailed)
		}
		cfg.Context = api.MergeContext(extra, cfg.Context)
	}

	if timeout != "" {
		if d, err := time.ParseDuration(timeout); err != nil || d <= 0 {
			slog.Error("-timeout must be a positive duration", "timeout", timeout)
			os.Exit(exitInvalidArguments)
		}
		cfg.Timeout = timeout
	}

	interpolated, err := cfg.Interpolate()
	if err != nil {
		slog.Error("failed to interpolate configuration", "error", err)
		os.Exit(exitInterpolationFailed)
	}
	return interpolated
}

func collectArtifacts(cfg *api.Config) []artifacts.Artifact {
	found, err := artifacts.Collect(cfg.Artifacts, cfg.Dir)
	if err != nil {
		slog.Error("failed to collect artifacts", "error", err)
		os.Exit(exitCollectArtifactsFailed)
	}
	slog.Info("artifacts collected", "count", len(found))
	return found
}
