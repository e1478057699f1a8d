// Video effects pipeline - command line entry point
//
// Usage:
//
//	app [flags] [run]            run every configured job (the presets when none are configured)
//	app [flags] preset <name>    run one preset
//	app [flags] generate         write the synthetic test clip to -input
//	app list                     list effects and presets
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"video-effects-pipeline/internal/config"
)

const (
	AppName    = "Video Effects Pipeline"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	input := flag.String("input", "", "Input video file")
	outputDir := flag.String("output-dir", "", "Directory for preset outputs")
	backend := flag.String("backend", "", "Codec backend: gocv or vidio")
	workers := flag.Int("workers", 0, "Number of effect workers per run")
	qualityEvery := flag.Int("quality-every", 0, "Sample output quality every n frames (0 disables)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	noGenerate := flag.Bool("no-generate", false, "Fail instead of generating a test clip when the input is missing")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// flags set on the command line override file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "backend":
			cfg.Backend = *backend
		case "workers":
			cfg.Workers = *workers
		case "quality-every":
			cfg.QualityEvery = *qualityEvery
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "no-generate":
			cfg.GenerateMissing = !*noGenerate
		case "debug":
			cfg.Debug = *debugMode
		}
	})

	logger := initLogger(cfg.Debug, cfg.LogLevel)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.Debug,
	}).Info("Starting " + AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, args := "run", flag.Args()
	if len(args) > 0 {
		mode, args = args[0], args[1:]
	}

	switch mode {
	case "run":
		err = runJobs(ctx, cfg, nil, logger)
	case "preset":
		if len(args) != 1 {
			err = fmt.Errorf("usage: preset <name> (available: %v)", config.PresetNames())
			break
		}
		var job config.Job
		job, err = config.Preset(args[0], cfg.OutputDir)
		if err == nil {
			err = runJobs(ctx, cfg, []config.Job{job}, logger)
		}
	case "generate":
		err = generate(cfg, logger)
	case "list":
		err = list(os.Stdout)
	default:
		err = fmt.Errorf("unknown mode %q (expected run, preset, generate or list)", mode)
	}

	if err != nil {
		logger.WithError(err).Error("Application failed")
		os.Exit(1)
	}
	logger.Info("Application shutting down gracefully")
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		logger.WithField("log_level", level).Warn("Unknown log level, using info")
	}

	return logger
}
