package algorithms

import (
	"video-effects-pipeline/internal/schedule"
)

// Config selects an effect and carries the parameters of every kind. Only
// the sub-configuration matching Kind is read.
type Config struct {
	Kind        Kind              `yaml:"kind"`
	Contrast    ContrastConfig    `yaml:"contrast"`
	MovingBlur  MovingBlurConfig  `yaml:"moving_blur"`
	RotateScale RotateScaleConfig `yaml:"rotate_scale"`
	NightVision NightVisionConfig `yaml:"night_vision"`
	Vignette    VignetteConfig    `yaml:"vignette"`
}

type ContrastConfig struct {
	Gain schedule.Spec `yaml:"gain"`
}

type MovingBlurConfig struct {
	KernelSize int `yaml:"kernel_size"`
	BandWidth  int `yaml:"band_width"`
}

type RotateScaleConfig struct {
	FinalAngle float64 `yaml:"final_angle"`
}

type NightVisionConfig struct {
	Gain           schedule.Spec `yaml:"gain"`
	Offset         float64       `yaml:"offset"`
	NoiseStdDev    float64       `yaml:"noise_stddev"`
	Seed           int64         `yaml:"seed"`
	ScanLines      bool          `yaml:"scan_lines"`
	ScanLinePeriod int           `yaml:"scan_line_period"`
	Falloff        float64       `yaml:"falloff"`
}

type VignetteConfig struct {
	Sigma     float64       `yaml:"sigma"`
	Pulsating bool          `yaml:"pulsating"`
	Pulse     schedule.Spec `yaml:"pulse"`
}

// DefaultConfig returns the parameters used by the reference clips.
func DefaultConfig(k Kind) Config {
	return Config{
		Kind: k,
		Contrast: ContrastConfig{
			Gain: schedule.LinearRamp(0.8, 1.5),
		},
		MovingBlur: MovingBlurConfig{
			KernelSize: 21,
			BandWidth:  100,
		},
		RotateScale: RotateScaleConfig{
			FinalAngle: 360,
		},
		NightVision: NightVisionConfig{
			Gain:           schedule.SineWave(1.2, 0.2, 0.5),
			Offset:         10,
			NoiseStdDev:    10,
			Seed:           1,
			ScanLines:      true,
			ScanLinePeriod: 3,
			Falloff:        0.3,
		},
		Vignette: VignetteConfig{
			Sigma: 0.4,
			Pulse: schedule.SineWave(0.8, 0.2, 2),
		},
	}
}

// PulsatingContrast is the oscillating contrast variant.
func PulsatingContrast() schedule.Spec {
	return schedule.SineWave(1.15, 0.35, 2)
}
