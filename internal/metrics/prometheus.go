package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vfx_runs_total",
		Help: "Total number of pipeline runs, by effect and status",
	}, []string{"effect", "status"})

	FramesDecodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vfx_frames_decoded_total",
		Help: "Total number of frames read from inputs",
	}, []string{"effect"})

	FramesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vfx_frames_written_total",
		Help: "Total number of frames written, by effect and output",
	}, []string{"effect", "output"})

	TransformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vfx_transform_duration_seconds",
		Help:    "Time spent applying an effect to one frame",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}, []string{"effect"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vfx_run_duration_seconds",
		Help:    "Duration of a whole pipeline run",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"effect"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vfx_active_workers",
		Help: "Number of workers currently applying effects",
	})

	OutputQuality = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vfx_output_quality",
		Help: "Last sampled quality metric of an output against its input",
	}, []string{"effect", "output", "metric"})
)
