// Run configuration: defaults, YAML file, then VFX_ environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"video-effects-pipeline/internal/algorithms"
	videoio "video-effects-pipeline/internal/io"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "VFX_"

// Config is the complete configuration of a CLI run
type Config struct {
	Input     string `yaml:"input"      env:"INPUT"`
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	Backend   string `yaml:"backend"    env:"BACKEND"`   // gocv or vidio
	Workers   int    `yaml:"workers"    env:"WORKERS"`   // effect goroutines per run
	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"` // logrus level name
	Debug     bool   `yaml:"debug"      env:"DEBUG"`

	MetricsAddr  string `yaml:"metrics_addr"  env:"METRICS_ADDR"` // empty disables the server
	QualityEvery int    `yaml:"quality_every" env:"QUALITY_EVERY"`

	// GenerateMissing writes a synthetic clip to Input when it cannot be opened
	GenerateMissing bool             `yaml:"generate_missing" env:"GENERATE_MISSING"`
	Clip            videoio.ClipSpec `yaml:"clip"`

	Jobs []Job `yaml:"jobs"`
}

// Job is one effect applied to the input, with a file per effect output
type Job struct {
	Name    string            `yaml:"name"`
	Effect  algorithms.Config `yaml:"effect"`
	Outputs map[string]string `yaml:"outputs"`
}

// UnmarshalYAML starts from the defaults of the job's effect kind, so a job
// only lists the parameters it changes.
func (j *Job) UnmarshalYAML(node *yaml.Node) error {
	var probe struct {
		Effect struct {
			Kind algorithms.Kind `yaml:"kind"`
		} `yaml:"effect"`
	}
	if err := node.Decode(&probe); err != nil {
		return err
	}

	type plain Job
	decoded := plain{Effect: algorithms.DefaultConfig(probe.Effect.Kind)}
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*j = Job(decoded)
	return nil
}

// Default returns the built-in configuration: every preset, read from
// my_test_video.mp4 and written to the working directory.
func Default() *Config {
	return &Config{
		Input:           "my_test_video.mp4",
		OutputDir:       ".",
		Backend:         videoio.BackendGoCV,
		Workers:         4,
		LogLevel:        "info",
		QualityEvery:    0,
		GenerateMissing: true,
		Clip:            videoio.DefaultClipSpec(),
	}
}

// Load applies the YAML file at path, when path is not empty, and then the
// environment on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the run settings and every job.
func (c *Config) Validate() error {
	var errs []error

	if c.Input == "" {
		errs = append(errs, errors.New("input is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.QualityEvery < 0 {
		errs = append(errs, fmt.Errorf("quality_every must not be negative, got %d", c.QualityEvery))
	}
	if _, err := videoio.NewCodec(c.Backend, nil); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]bool)
	for i, job := range c.Jobs {
		if job.Name == "" {
			errs = append(errs, fmt.Errorf("job %d: name is required", i))
		} else if seen[job.Name] {
			errs = append(errs, fmt.Errorf("job %q: duplicate name", job.Name))
		}
		seen[job.Name] = true

		effect, err := algorithms.New(job.Effect)
		if err != nil {
			errs = append(errs, fmt.Errorf("job %q: %w", job.Name, err))
			continue
		}
		for _, output := range effect.Outputs() {
			if job.Outputs[output] == "" {
				errs = append(errs, fmt.Errorf("job %q: no path for output %q", job.Name, output))
			}
		}
		for output := range job.Outputs {
			if !contains(effect.Outputs(), output) {
				errs = append(errs, fmt.Errorf("job %q: %s has no output %q", job.Name, job.Effect.Kind, output))
			}
		}
	}

	return errors.Join(errs...)
}

// Presets returns the eight reference jobs writing into dir.
func Presets(dir string) []Job {
	contrast := algorithms.DefaultConfig(algorithms.KindContrast)
	pulsate := algorithms.DefaultConfig(algorithms.KindContrast)
	pulsate.Contrast.Gain = algorithms.PulsatingContrast()

	scanLines := algorithms.DefaultConfig(algorithms.KindNightVision)
	scanLines.NightVision.NoiseStdDev = 15
	plainNight := algorithms.DefaultConfig(algorithms.KindNightVision)
	plainNight.NightVision.ScanLines = false

	static := algorithms.DefaultConfig(algorithms.KindVignette)
	pulsating := algorithms.DefaultConfig(algorithms.KindVignette)
	pulsating.Vignette.Pulsating = true

	presets := []struct {
		name   string
		effect algorithms.Config
	}{
		{"contrast", contrast},
		{"contrast_pulsate", pulsate},
		{"moving_blur", algorithms.DefaultConfig(algorithms.KindMovingBlur)},
		{"rotate_scale", algorithms.DefaultConfig(algorithms.KindRotateScale)},
		{"night_vision_scanlines", scanLines},
		{"night_vision", plainNight},
		{"vignette", static},
		{"vignette_pulsating", pulsating},
	}

	jobs := make([]Job, 0, len(presets))
	for _, p := range presets {
		effect, err := algorithms.New(p.effect)
		if err != nil {
			// defaults always validate
			panic(err)
		}
		jobs = append(jobs, Job{
			Name:    p.name,
			Effect:  p.effect,
			Outputs: OutputPaths(filepath.Join(dir, p.name), effect.Outputs()),
		})
	}
	return jobs
}

// PresetNames lists the names accepted by Preset
func PresetNames() []string {
	var names []string
	for _, job := range Presets("") {
		names = append(names, job.Name)
	}
	return names
}

// Preset returns the preset job called name.
func Preset(name, dir string) (Job, error) {
	for _, job := range Presets(dir) {
		if job.Name == name {
			return job, nil
		}
	}
	return Job{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
}

// OutputPaths derives one .mp4 path per output from base. A single output
// is written to base.mp4, several to base_<output>.mp4.
func OutputPaths(base string, outputs []string) map[string]string {
	paths := make(map[string]string, len(outputs))
	if len(outputs) == 1 {
		paths[outputs[0]] = base + ".mp4"
		return paths
	}
	for _, output := range outputs {
		paths[output] = base + "_" + output + ".mp4"
	}
	return paths
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
