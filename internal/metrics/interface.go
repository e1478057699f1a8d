// Output quality metrics and Prometheus instrumentation
package metrics

import (
	"sort"

	"video-effects-pipeline/internal/frame"
)

// Metric compares a processed frame with the frame it was produced from
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *frame.Buffer) (float64, error)

	// Name returns the metric name
	Name() string

	// Description returns the metric description
	Description() string

	// Range returns the value range (min, max)
	Range() (float64, float64)

	// HigherBetter returns true if higher values mean the output is closer to the input
	HigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	e.Register("mean_abs_diff", NewMeanAbsDiff())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names, sorted
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateAll calculates every registered metric. Values are clamped to
// the metric's range so that they stay finite; metrics that fail are left
// out.
func (e *Evaluator) CalculateAll(original, processed *frame.Buffer) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		value, err := metric.Calculate(original, processed)
		if err != nil {
			continue
		}
		lo, hi := metric.Range()
		if value < lo {
			value = lo
		}
		if value > hi {
			value = hi
		}
		results[name] = value
	}

	return results
}

// Info returns information about all metrics
func (e *Evaluator) Info() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		min, max := metric.Range()
		info[name] = MetricInfo{
			Name:         metric.Name(),
			Description:  metric.Description(),
			Range:        [2]float64{min, max},
			HigherBetter: metric.HigherBetter(),
		}
	}

	return info
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}
