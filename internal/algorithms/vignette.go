package algorithms

import (
	"fmt"
	"math"

	"video-effects-pipeline/internal/frame"
	"video-effects-pipeline/internal/mask"
	"video-effects-pipeline/internal/schedule"
)

// Vignette darkens frames with a Gaussian radial mask. The static variant
// builds its mask once; the pulsating variant rescales sigma every frame
// and remaps the shared distance field.
type Vignette struct {
	cfg      VignetteConfig
	width    int
	height   int
	channels int
	field    *mask.DistanceField
	static   *mask.Mask
}

// NewVignette validates cfg and creates the effect
func NewVignette(cfg VignetteConfig) (*Vignette, error) {
	if !(cfg.Sigma > 0) || math.IsInf(cfg.Sigma, 0) {
		return nil, transformErr("sigma must be a positive finite number, got %v", cfg.Sigma)
	}
	if cfg.Pulsating {
		if err := cfg.Pulse.Validate(); err != nil {
			return nil, transformErr("vignette pulse: %v", err)
		}
	}
	return &Vignette{cfg: cfg}, nil
}

func (v *Vignette) Kind() Kind {
	return KindVignette
}

func (v *Vignette) Name() string {
	if v.cfg.Pulsating {
		return fmt.Sprintf("Vignette(sigma=%g, pulse=%s)", v.cfg.Sigma, v.cfg.Pulse)
	}
	return fmt.Sprintf("Vignette(sigma=%g)", v.cfg.Sigma)
}

func (v *Vignette) Outputs() []string {
	return []string{OutputMain}
}

func (v *Vignette) OutputChannels(in int) int {
	return in
}

// Prepare computes the distance field and, for the static variant, the mask.
// The channel count of the first frame is fixed for the run.
func (v *Vignette) Prepare(meta frame.StreamMetadata, channels int) error {
	if channels != 1 && channels != 3 {
		return transformErr("unsupported number of channels: %d", channels)
	}

	field, err := mask.NewDistanceField(meta.Width, meta.Height)
	if err != nil {
		return transformErr("%v", err)
	}

	v.field = field
	v.static = nil
	if !v.cfg.Pulsating {
		v.static, err = field.Gaussian(v.cfg.Sigma)
		if err != nil {
			return transformErr("%v", err)
		}
	}

	v.width, v.height, v.channels = meta.Width, meta.Height, channels
	return nil
}

// SigmaAt is the Gaussian width used for a frame position.
func (v *Vignette) SigmaAt(pos schedule.Position) (float64, error) {
	if !v.cfg.Pulsating {
		return v.cfg.Sigma, nil
	}
	p, err := pos.Progress()
	if err != nil {
		return 0, err
	}
	return v.cfg.Sigma * v.cfg.Pulse.At(p), nil
}

func (v *Vignette) Parameters(pos schedule.Position) (map[string]float64, error) {
	sigma, err := v.SigmaAt(pos)
	if err != nil {
		return nil, err
	}
	return map[string]float64{"sigma": sigma}, nil
}

// MaskAt returns the mask for a frame position: the static mask, or a fresh
// remap of the distance field for the pulsating variant.
func (v *Vignette) MaskAt(pos schedule.Position) (*mask.Mask, error) {
	if v.field == nil {
		return nil, transformErr("effect used before Prepare")
	}
	if v.static != nil {
		return v.static, nil
	}

	sigma, err := v.SigmaAt(pos)
	if err != nil {
		return nil, err
	}
	m, err := v.field.Gaussian(sigma)
	if err != nil {
		return nil, transformErr("pulsating sigma: %v", err)
	}
	return m, nil
}

func (v *Vignette) Apply(src *frame.Buffer, pos schedule.Position) ([]Output, error) {
	if err := checkFrame(src, v.width, v.height); err != nil {
		return nil, err
	}
	if src.Channels != v.channels {
		return nil, transformErr("frame has %d channels, run was prepared for %d", src.Channels, v.channels)
	}

	m, err := v.MaskAt(pos)
	if err != nil {
		return nil, err
	}

	out := src.Clone()
	ApplyMask(out, m, -1)

	return []Output{{Name: OutputMain, Frame: out}}, nil
}
