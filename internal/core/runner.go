package core

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"video-effects-pipeline/internal/algorithms"
	"video-effects-pipeline/internal/frame"
	videoio "video-effects-pipeline/internal/io"
)

// Runner runs effects from one input file to per-output files
type Runner struct {
	codec   videoio.Codec
	options Options
	logger  logrus.FieldLogger
}

func NewRunner(codec videoio.Codec, options Options, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{
		codec:   codec,
		options: options,
		logger:  logger,
	}
}

// RunFile applies the effect described by cfg to input and writes each
// output to paths[output].
func (r *Runner) RunFile(ctx context.Context, input string, cfg algorithms.Config, paths map[string]string) (Result, error) {
	reader, err := r.codec.OpenReader(input)
	if err != nil {
		return Result{}, err
	}
	defer reader.Close()

	return r.RunReader(ctx, reader, cfg, paths)
}

// RunReader is RunFile for an already opened source. The reader is not closed.
func (r *Runner) RunReader(ctx context.Context, reader videoio.Reader, cfg algorithms.Config, paths map[string]string) (Result, error) {
	effect, err := algorithms.New(cfg)
	if err != nil {
		return Result{}, err
	}
	for _, name := range effect.Outputs() {
		if paths[name] == "" {
			return Result{}, fmt.Errorf("no output path for %s output %q", cfg.Kind, name)
		}
	}

	written := make(map[string]string)
	pipeline := NewPipeline(effect, r.options, r.logger)
	result, err := pipeline.Run(ctx, reader, FileSinks(r.codec, paths, written))
	result.Paths = written
	return result, err
}

// FileSinks opens each output at paths[output] through codec and records the
// path actually written in written.
func FileSinks(codec videoio.Codec, paths map[string]string, written map[string]string) SinkOpener {
	return func(output string, meta frame.StreamMetadata, channels int) (videoio.Sink, error) {
		path, ok := paths[output]
		if !ok {
			return nil, fmt.Errorf("%w: no path for output %q", frame.ErrOpen, output)
		}
		sink, actual, err := codec.OpenWriter(path, meta, channels)
		if err != nil {
			return nil, err
		}
		if written != nil {
			written[output] = actual
		}
		return sink, nil
	}
}
