package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-effects-pipeline/internal/algorithms"
	"video-effects-pipeline/internal/schedule"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vfx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeConfig(t, `
input: clips/in.mp4
workers: 2
backend: vidio
quality_every: 10
jobs:
  - name: soft
    effect:
      kind: vignette
      vignette:
        pulsating: true
    outputs:
      main: out/soft.mp4
  - name: sweep
    effect:
      kind: moving-blur
      moving_blur:
        band_width: 40
    outputs:
      hard: out/hard.mp4
      smooth: out/smooth.mp4
`)
	t.Setenv("VFX_WORKERS", "6")
	t.Setenv("VFX_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "clips/in.mp4", cfg.Input)
	assert.Equal(t, 6, cfg.Workers, "environment overrides the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "vidio", cfg.Backend)
	assert.Equal(t, 10, cfg.QualityEvery)
	assert.Equal(t, ".", cfg.OutputDir, "unset keys keep their defaults")

	require.Len(t, cfg.Jobs, 2)
	soft := cfg.Jobs[0]
	assert.Equal(t, algorithms.KindVignette, soft.Effect.Kind)
	assert.True(t, soft.Effect.Vignette.Pulsating)
	assert.Equal(t, 0.4, soft.Effect.Vignette.Sigma, "job parameters start from the kind defaults")
	assert.Equal(t, schedule.Sine, soft.Effect.Vignette.Pulse.Kind)

	sweep := cfg.Jobs[1]
	assert.Equal(t, algorithms.KindMovingBlur, sweep.Effect.Kind)
	assert.Equal(t, 40, sweep.Effect.MovingBlur.BandWidth)
	assert.Equal(t, 21, sweep.Effect.MovingBlur.KernelSize)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "workers: [1, 2]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "jobs:\n  - name: x\n    effect:\n      kind: sepia\n"))
	assert.Error(t, err)

	t.Setenv("VFX_WORKERS", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"no input", func(c *Config) { c.Input = "" }, "input is required"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad backend", func(c *Config) { c.Backend = "gstreamer" }, "gstreamer"},
		{"negative quality", func(c *Config) { c.QualityEvery = -1 }, "quality_every"},
		{"missing output path", func(c *Config) {
			c.Jobs = []Job{{Name: "blur", Effect: algorithms.DefaultConfig(algorithms.KindMovingBlur),
				Outputs: map[string]string{"hard": "h.mp4"}}}
		}, `no path for output "smooth"`},
		{"unknown output", func(c *Config) {
			c.Jobs = []Job{{Name: "c", Effect: algorithms.DefaultConfig(algorithms.KindContrast),
				Outputs: map[string]string{"main": "m.mp4", "extra": "e.mp4"}}}
		}, `has no output "extra"`},
		{"invalid effect", func(c *Config) {
			effect := algorithms.DefaultConfig(algorithms.KindVignette)
			effect.Vignette.Sigma = 0
			c.Jobs = []Job{{Name: "v", Effect: effect, Outputs: map[string]string{"main": "v.mp4"}}}
		}, "sigma"},
		{"duplicate names", func(c *Config) {
			c.Jobs = Presets("out")
			c.Jobs = append(c.Jobs, c.Jobs[0])
		}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPresets(t *testing.T) {
	jobs := Presets("out")
	require.Len(t, jobs, 8)

	outputs := 0
	for _, job := range jobs {
		outputs += len(job.Outputs)
	}
	assert.Equal(t, 10, outputs)

	cfg := Default()
	cfg.Jobs = jobs
	assert.NoError(t, cfg.Validate())

	byName := make(map[string]Job)
	for _, job := range jobs {
		byName[job.Name] = job
	}
	assert.Equal(t, algorithms.PulsatingContrast(), byName["contrast_pulsate"].Effect.Contrast.Gain)
	assert.Equal(t, 15.0, byName["night_vision_scanlines"].Effect.NightVision.NoiseStdDev)
	assert.True(t, byName["night_vision_scanlines"].Effect.NightVision.ScanLines)
	assert.False(t, byName["night_vision"].Effect.NightVision.ScanLines)
	assert.True(t, byName["vignette_pulsating"].Effect.Vignette.Pulsating)
	assert.Equal(t, map[string]string{
		"normal": filepath.Join("out", "rotate_scale") + "_normal.mp4",
		"scaled": filepath.Join("out", "rotate_scale") + "_scaled.mp4",
	}, byName["rotate_scale"].Outputs)
}

func TestPreset(t *testing.T) {
	job, err := Preset("vignette", "out")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"main": filepath.Join("out", "vignette.mp4")}, job.Outputs)

	_, err = Preset("sepia", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contrast_pulsate")
}

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, map[string]string{"main": "a/b.mp4"}, OutputPaths("a/b", []string{"main"}))
	assert.Equal(t, map[string]string{"hard": "b_hard.mp4", "smooth": "b_smooth.mp4"},
		OutputPaths("b", []string{"hard", "smooth"}))
}
