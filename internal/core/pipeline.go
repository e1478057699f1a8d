// Frame pipeline: decode, schedule, transform, and write in order
package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"video-effects-pipeline/internal/algorithms"
	"video-effects-pipeline/internal/frame"
	videoio "video-effects-pipeline/internal/io"
	"video-effects-pipeline/internal/metrics"
	"video-effects-pipeline/internal/schedule"
)

// DefaultProgressEvery is the frame interval between progress log lines.
const DefaultProgressEvery = 30

// SinkOpener opens the sink for one named effect output. It is called after
// the first frame is decoded, once per output, with the output channel count.
type SinkOpener func(output string, meta frame.StreamMetadata, channels int) (videoio.Sink, error)

// Options tunes a pipeline run
type Options struct {
	// Workers is the number of goroutines applying the effect. 1 processes
	// frames strictly one after another.
	Workers int
	// QualityEvery samples output quality every n frames; 0 disables it.
	QualityEvery int
	// ProgressEvery logs progress every n frames.
	ProgressEvery int
}

// DefaultOptions returns 4 workers, no quality sampling and progress every 30 frames.
func DefaultOptions() Options {
	return Options{
		Workers:       4,
		ProgressEvery: DefaultProgressEvery,
	}
}

// Result describes what a run produced. It is returned on failure too.
type Result struct {
	RunID string
	// Frames is the number of frames written to every sink.
	Frames int
	// Outputs counts frames written per output name.
	Outputs map[string]int
	// Interrupted is set when the source stopped before its announced end.
	Interrupted bool
	// Quality holds the last sampled metrics per output.
	Quality map[string]map[string]float64
	// Paths maps output names to the files written, when run through a Runner.
	Paths map[string]string
}

// Pipeline applies one effect to a frame sequence
type Pipeline struct {
	effect    algorithms.Effect
	opts      Options
	logger    logrus.FieldLogger
	evaluator *metrics.Evaluator
}

func NewPipeline(effect algorithms.Effect, opts Options, logger logrus.FieldLogger) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := &Pipeline{
		effect: effect,
		opts:   opts,
		logger: logger,
	}
	if opts.QualityEvery > 0 {
		p.evaluator = metrics.NewEvaluator()
	}
	return p
}

type job struct {
	index int
	src   *frame.Buffer
}

type jobResult struct {
	index   int
	src     *frame.Buffer
	outputs []algorithms.Output
	err     error
}

// namedSink pairs a sink with its output name, in effect output order
type namedSink struct {
	name string
	sink videoio.Sink
}

// Run reads every frame of reader, applies the effect and writes the outputs
// to sinks opened through open. Frames reach each sink in decode order. Every
// sink that was opened is closed exactly once before Run returns.
//
// A source that stops early yields a partial result with Interrupted set
// and an error wrapping frame.ErrDecodeInterrupted; the frames written so
// far are kept.
func (p *Pipeline) Run(ctx context.Context, reader videoio.Reader, open SinkOpener) (Result, error) {
	started := time.Now()
	effectName := p.effect.Kind().String()

	result := Result{
		RunID:   uuid.NewString(),
		Outputs: make(map[string]int),
		Quality: make(map[string]map[string]float64),
	}
	logger := p.logger.WithFields(logrus.Fields{
		"run_id": result.RunID,
		"effect": effectName,
	})

	status := "failed"
	defer func() {
		metrics.RunsTotal.WithLabelValues(effectName, status).Inc()
		metrics.RunDuration.WithLabelValues(effectName).Observe(time.Since(started).Seconds())
	}()

	meta := reader.Metadata()
	if err := meta.Validate(); err != nil {
		logger.WithError(err).Error("Rejecting stream")
		return result, err
	}

	logger.WithFields(logrus.Fields{
		"name":    p.effect.Name(),
		"frames":  meta.TotalFrames,
		"fps":     meta.FPS,
		"width":   meta.Width,
		"height":  meta.Height,
		"workers": p.opts.Workers,
	}).Info("Starting pipeline run")

	first, ok := reader.Next()
	if !ok {
		if err := reader.Err(); err != nil {
			result.Interrupted = true
			status = "interrupted"
			return result, decodeErr(err)
		}
		logger.Warn("Source produced no frames")
		status = "ok"
		return result, nil
	}
	metrics.FramesDecodedTotal.WithLabelValues(effectName).Inc()

	if !meta.Matches(first) {
		err := fmt.Errorf("%w: first frame is %dx%d, stream announces %dx%d",
			frame.ErrInvalidStream, first.Width, first.Height, meta.Width, meta.Height)
		logger.WithError(err).Error("Rejecting stream")
		return result, err
	}

	if err := p.effect.Prepare(meta, first.Channels); err != nil {
		return result, fmt.Errorf("failed to prepare %s: %w", effectName, err)
	}

	channels := p.effect.OutputChannels(first.Channels)
	sinks := make([]namedSink, 0, len(p.effect.Outputs()))
	for _, name := range p.effect.Outputs() {
		sink, err := open(name, meta, channels)
		if err != nil {
			closeErr := closeSinks(sinks)
			return result, errors.Join(fmt.Errorf("failed to open output %q: %w", name, err), closeErr)
		}
		sinks = append(sinks, namedSink{name: name, sink: sink})
	}

	runErr, readErr := p.process(ctx, logger, reader, meta, first, sinks, &result)

	if err := closeSinks(sinks); err != nil && runErr == nil {
		runErr = err
	}

	logger = logger.WithFields(logrus.Fields{
		"written":  result.Frames,
		"duration": time.Since(started).String(),
	})

	switch {
	case runErr != nil:
		logger.WithError(runErr).Error("Pipeline run failed")
		return result, runErr
	case readErr != nil:
		result.Interrupted = true
		status = "interrupted"
		logger.WithError(readErr).Warn("Source interrupted, partial output kept")
		return result, decodeErr(readErr)
	}

	status = "ok"
	logger.Info("Pipeline run completed")
	return result, nil
}

// process runs the worker pool and the in-order writer. It returns the first
// transform, write or cancellation error, and separately the read error that
// ended decoding early, if any.
func (p *Pipeline) process(
	ctx context.Context,
	logger logrus.FieldLogger,
	reader videoio.Reader,
	meta frame.StreamMetadata,
	first *frame.Buffer,
	sinks []namedSink,
	result *Result,
) (runErr, readErr error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	effectName := p.effect.Kind().String()
	window := make(chan struct{}, 2*p.opts.Workers)
	jobs := make(chan job, p.opts.Workers)
	results := make(chan jobResult, p.opts.Workers)

	readDone := make(chan struct{})

	// producer: the only goroutine touching reader from here on
	go func() {
		defer close(readDone)
		defer close(jobs)

		next := first
		for index := 0; index < meta.TotalFrames; index++ {
			if index > 0 {
				f, ok := reader.Next()
				if !ok {
					readErr = reader.Err()
					return
				}
				metrics.FramesDecodedTotal.WithLabelValues(effectName).Inc()
				next = f
			}

			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case jobs <- job{index: index, src: next}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- p.apply(j, meta.TotalFrames)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make(map[int]jobResult)
	next := 0
	milestone := max(1, meta.TotalFrames/10)

	for r := range results {
		if runErr != nil {
			continue
		}
		if r.err != nil {
			runErr = fmt.Errorf("frame %d: %w", r.index, r.err)
			cancel()
			continue
		}

		pending[r.index] = r
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			if err := p.write(sinks, ready, result); err != nil {
				runErr = fmt.Errorf("frame %d: %w", next, err)
				cancel()
				break
			}
			p.observe(logger, ready, meta, milestone, result)

			next++
			<-window
		}
	}

	<-readDone

	if runErr == nil && readErr == nil && next < meta.TotalFrames && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	return runErr, readErr
}

func (p *Pipeline) apply(j job, total int) jobResult {
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	start := time.Now()
	outputs, err := p.effect.Apply(j.src, schedule.Position{Index: j.index, Total: total})
	metrics.TransformDuration.WithLabelValues(p.effect.Kind().String()).Observe(time.Since(start).Seconds())

	if err == nil && len(outputs) != len(p.effect.Outputs()) {
		err = fmt.Errorf("%w: effect returned %d outputs, expected %d",
			frame.ErrTransform, len(outputs), len(p.effect.Outputs()))
	}
	return jobResult{index: j.index, src: j.src, outputs: outputs, err: err}
}

// write routes the outputs of one frame to their sinks by position.
func (p *Pipeline) write(sinks []namedSink, r jobResult, result *Result) error {
	for i, out := range r.outputs {
		s := sinks[i]
		if err := s.sink.Write(out.Frame); err != nil {
			return fmt.Errorf("failed to write output %q: %w", s.name, err)
		}
		result.Outputs[s.name]++
		metrics.FramesWrittenTotal.WithLabelValues(p.effect.Kind().String(), s.name).Inc()
	}
	result.Frames++
	return nil
}

// observe logs progress and samples quality for a frame that was written.
func (p *Pipeline) observe(logger logrus.FieldLogger, r jobResult, meta frame.StreamMetadata, milestone int, result *Result) {
	pos := schedule.Position{Index: r.index, Total: meta.TotalFrames}

	if r.index%p.opts.ProgressEvery == 0 || r.index%milestone == 0 {
		fields := logrus.Fields{
			"frame": r.index,
			"total": meta.TotalFrames,
		}
		if progress, err := pos.Progress(); err == nil {
			fields["progress"] = progress
		}
		if params, err := p.effect.Parameters(pos); err == nil {
			for k, v := range params {
				fields[k] = v
			}
		}
		logger.WithFields(fields).Info("Processing frame")
	}

	if p.evaluator == nil || r.index%p.opts.QualityEvery != 0 {
		return
	}
	effectName := p.effect.Kind().String()
	for _, out := range r.outputs {
		values := p.evaluator.CalculateAll(r.src, out.Frame)
		result.Quality[out.Name] = values
		for metric, v := range values {
			metrics.OutputQuality.WithLabelValues(effectName, out.Name, metric).Set(v)
		}
		logger.WithFields(logrus.Fields{
			"frame":  r.index,
			"output": out.Name,
		}).WithFields(toFields(values)).Debug("Sampled output quality")
	}
}

func toFields(values map[string]float64) logrus.Fields {
	fields := make(logrus.Fields, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return fields
}

func closeSinks(sinks []namedSink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close output %q: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func decodeErr(err error) error {
	if errors.Is(err, frame.ErrDecodeInterrupted) {
		return err
	}
	return fmt.Errorf("%w: %v", frame.ErrDecodeInterrupted, err)
}
