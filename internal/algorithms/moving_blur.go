package algorithms

import (
	"fmt"

	"video-effects-pipeline/internal/frame"
	"video-effects-pipeline/internal/mask"
	"video-effects-pipeline/internal/schedule"
)

// MovingBlur blurs a vertical band whose centre sweeps across the frame.
// It produces a hard-cut output and a sine-ramped smooth blend from one
// blur pass.
type MovingBlur struct {
	cfg    MovingBlurConfig
	width  int
	height int
}

// NewMovingBlur validates cfg and creates the effect
func NewMovingBlur(cfg MovingBlurConfig) (*MovingBlur, error) {
	if cfg.KernelSize <= 0 {
		return nil, transformErr("kernel_size must be positive, got %d", cfg.KernelSize)
	}
	if cfg.BandWidth < 0 {
		return nil, transformErr("band_width must be non-negative, got %d", cfg.BandWidth)
	}
	return &MovingBlur{cfg: cfg}, nil
}

func (m *MovingBlur) Kind() Kind {
	return KindMovingBlur
}

func (m *MovingBlur) Name() string {
	return fmt.Sprintf("MovingBlur(k=%d, band=%d)", m.cfg.KernelSize, m.cfg.BandWidth)
}

func (m *MovingBlur) Outputs() []string {
	return []string{OutputHard, OutputSmooth}
}

func (m *MovingBlur) OutputChannels(in int) int {
	return in
}

func (m *MovingBlur) Prepare(meta frame.StreamMetadata, channels int) error {
	m.width, m.height = meta.Width, meta.Height
	return nil
}

// BandAt returns the clipped band for a frame position.
func (m *MovingBlur) BandAt(pos schedule.Position, frameWidth int) (mask.Band, error) {
	p, err := pos.Progress()
	if err != nil {
		return mask.Band{}, err
	}
	cx := int(p * float64(frameWidth))
	band, err := mask.NewBand(cx, m.cfg.BandWidth, frameWidth)
	if err != nil {
		return mask.Band{}, transformErr("%v", err)
	}
	return band, nil
}

func (m *MovingBlur) Parameters(pos schedule.Position) (map[string]float64, error) {
	band, err := m.BandAt(pos, m.width)
	if err != nil {
		return nil, err
	}
	return map[string]float64{
		"band_start": float64(band.Start),
		"band_end":   float64(band.End),
	}, nil
}

func (m *MovingBlur) Apply(src *frame.Buffer, pos schedule.Position) ([]Output, error) {
	if err := checkFrame(src, m.width, m.height); err != nil {
		return nil, err
	}

	band, err := m.BandAt(pos, src.Width)
	if err != nil {
		return nil, err
	}

	if band.Empty() {
		return []Output{
			{Name: OutputHard, Frame: src.Clone()},
			{Name: OutputSmooth, Frame: src.Clone()},
		}, nil
	}

	blurred, err := BoxBlur(src, m.cfg.KernelSize)
	if err != nil {
		return nil, err
	}

	return []Output{
		{Name: OutputHard, Frame: HardCut(src, blurred, band)},
		{Name: OutputSmooth, Frame: SmoothBlend(src, blurred, band)},
	}, nil
}

// HardCut copies the band columns of blurred over a copy of src.
func HardCut(src, blurred *frame.Buffer, band mask.Band) *frame.Buffer {
	out := src.Clone()
	c := src.Channels
	for y := 0; y < src.Height; y++ {
		lo := src.Offset(band.Start, y, 0)
		hi := lo + band.Len()*c
		copy(out.Pix[lo:hi], blurred.Pix[lo:hi])
	}
	return out
}

// SmoothBlend mixes blurred into src across the band using the band's sine
// alpha ramp.
func SmoothBlend(src, blurred *frame.Buffer, band mask.Band) *frame.Buffer {
	out := src.Clone()
	ramp := band.AlphaRamp()
	c := src.Channels
	for y := 0; y < src.Height; y++ {
		for i, alpha := range ramp {
			base := src.Offset(band.Start+i, y, 0)
			for k := 0; k < c; k++ {
				// blurred*alpha + src*(1-alpha), arranged so equal inputs stay exact
				orig := float64(src.Pix[base+k])
				v := orig + alpha*(float64(blurred.Pix[base+k])-orig)
				out.Pix[base+k] = frame.ClampByte(v)
			}
		}
	}
	return out
}
