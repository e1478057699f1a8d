package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"video-effects-pipeline/internal/algorithms"
	"video-effects-pipeline/internal/config"
	"video-effects-pipeline/internal/core"
	videoio "video-effects-pipeline/internal/io"
	"video-effects-pipeline/internal/metrics"
)

// runJobs runs jobs, or the configured jobs when jobs is nil, or every preset
// when nothing is configured.
func runJobs(ctx context.Context, cfg *config.Config, jobs []config.Job, logger *logrus.Logger) error {
	if jobs == nil {
		jobs = cfg.Jobs
	}
	if len(jobs) == 0 {
		jobs = config.Presets(cfg.OutputDir)
	}

	validated := *cfg
	validated.Jobs = jobs
	if err := validated.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	codec, err := videoio.NewCodec(cfg.Backend, logger)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, cfg.MetricsAddr, logger)
	}

	return executeJobs(ctx, codec, &validated, logger)
}

// executeJobs runs cfg.Jobs one after another against the same input. A
// failed job does not stop the following ones; cancellation does.
func executeJobs(ctx context.Context, codec videoio.Codec, cfg *config.Config, logger logrus.FieldLogger) error {
	input, err := resolveInput(codec, cfg, logger)
	if err != nil {
		return err
	}

	runner := core.NewRunner(codec, core.Options{
		Workers:       cfg.Workers,
		QualityEvery:  cfg.QualityEvery,
		ProgressEvery: core.DefaultProgressEvery,
	}, logger)

	var errs []error
	for _, job := range cfg.Jobs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		jobLogger := logger.WithFields(logrus.Fields{
			"job":    job.Name,
			"effect": job.Effect.Kind.String(),
		})
		if err := ensureDirs(job.Outputs); err != nil {
			jobLogger.WithError(err).Error("Failed to create output directory")
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
			continue
		}

		start := time.Now()
		result, err := runner.RunFile(ctx, input, job.Effect, job.Outputs)
		fields := logrus.Fields{
			"run_id":      result.RunID,
			"frames":      result.Frames,
			"interrupted": result.Interrupted,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		for output, path := range result.Paths {
			fields["output_"+output] = path
		}
		if err != nil {
			jobLogger.WithFields(fields).WithError(err).Error("Job failed")
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
			continue
		}
		jobLogger.WithFields(fields).Info("Job completed")
	}

	return errors.Join(errs...)
}

// resolveInput returns the path to read. When cfg.Input cannot be opened and
// GenerateMissing is set, a synthetic clip is written there first.
func resolveInput(codec videoio.Codec, cfg *config.Config, logger logrus.FieldLogger) (string, error) {
	reader, err := codec.OpenReader(cfg.Input)
	if err == nil {
		reader.Close()
		return cfg.Input, nil
	}
	if !cfg.GenerateMissing {
		return "", err
	}

	logger.WithError(err).WithField("input", cfg.Input).Warn("Input not readable, generating test clip")
	written, genErr := videoio.GenerateClip(codec, cfg.Input, cfg.Clip)
	if genErr != nil {
		return "", fmt.Errorf("failed to generate test clip: %w", genErr)
	}
	logger.WithFields(logrus.Fields{
		"path":     written,
		"width":    cfg.Clip.Width,
		"height":   cfg.Clip.Height,
		"fps":      cfg.Clip.FPS,
		"duration": cfg.Clip.Duration,
	}).Info("Test clip generated")
	return written, nil
}

func ensureDirs(paths map[string]string) error {
	for _, path := range paths {
		dir := filepath.Dir(path)
		if dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func generate(cfg *config.Config, logger *logrus.Logger) error {
	codec, err := videoio.NewCodec(cfg.Backend, logger)
	if err != nil {
		return err
	}
	written, err := videoio.GenerateClip(codec, cfg.Input, cfg.Clip)
	if err != nil {
		return err
	}
	logger.WithField("path", written).Info("Test clip generated")
	return nil
}

// list prints the effect catalogue, the quality metrics sampled with
// -quality-every and the preset jobs.
func list(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "EFFECT\tOUTPUTS\tDESCRIPTION")
	var infos []algorithms.Info
	for _, kind := range algorithms.Kinds() {
		info, err := algorithms.Describe(kind)
		if err != nil {
			return err
		}
		infos = append(infos, info)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Kind, strings.Join(info.Outputs, ","), info.Description)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "EFFECT\tPARAMETER\tDEFAULT\tDESCRIPTION")
	for _, info := range infos {
		for _, p := range info.Parameters {
			fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", info.Kind, p.Name, p.Default, p.Description)
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "METRIC\tRANGE\tBETTER\tDESCRIPTION")
	evaluator := metrics.NewEvaluator()
	info := evaluator.Info()
	for _, name := range evaluator.Names() {
		m := info[name]
		better := "lower"
		if m.HigherBetter {
			better = "higher"
		}
		fmt.Fprintf(tw, "%s\t%g-%g\t%s\t%s\n", name, m.Range[0], m.Range[1], better, m.Description)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "PRESET\tEFFECT\tFILES")
	for _, job := range config.Presets(".") {
		files := make([]string, 0, len(job.Outputs))
		for _, path := range job.Outputs {
			files = append(files, path)
		}
		sort.Strings(files)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", job.Name, job.Effect.Kind, strings.Join(files, ","))
	}

	return tw.Flush()
}
