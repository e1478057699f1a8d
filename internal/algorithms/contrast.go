package algorithms

import (
	"video-effects-pipeline/internal/frame"
	"video-effects-pipeline/internal/schedule"
)

// Contrast stretches luma around each frame's own mean with a scheduled gain.
type Contrast struct {
	cfg    ContrastConfig
	width  int
	height int
}

// NewContrast validates cfg and creates the effect
func NewContrast(cfg ContrastConfig) (*Contrast, error) {
	if err := cfg.Gain.Validate(); err != nil {
		return nil, transformErr("contrast gain: %v", err)
	}
	return &Contrast{cfg: cfg}, nil
}

func (c *Contrast) Kind() Kind {
	return KindContrast
}

func (c *Contrast) Name() string {
	return "Contrast(" + c.cfg.Gain.String() + ")"
}

func (c *Contrast) Outputs() []string {
	return []string{OutputMain}
}

func (c *Contrast) OutputChannels(int) int {
	return 1
}

func (c *Contrast) Prepare(meta frame.StreamMetadata, channels int) error {
	c.width, c.height = meta.Width, meta.Height
	return nil
}

func (c *Contrast) Parameters(pos schedule.Position) (map[string]float64, error) {
	alpha, err := c.gain(pos)
	if err != nil {
		return nil, err
	}
	return map[string]float64{"alpha": alpha}, nil
}

func (c *Contrast) Apply(src *frame.Buffer, pos schedule.Position) ([]Output, error) {
	if err := checkFrame(src, c.width, c.height); err != nil {
		return nil, err
	}

	alpha, err := c.gain(pos)
	if err != nil {
		return nil, err
	}

	gray, err := src.Gray()
	if err != nil {
		return nil, transformErr("luma conversion: %v", err)
	}

	out, err := AdjustContrast(gray, alpha)
	if err != nil {
		return nil, err
	}
	return []Output{{Name: OutputMain, Frame: out}}, nil
}

func (c *Contrast) gain(pos schedule.Position) (float64, error) {
	p, err := pos.Progress()
	if err != nil {
		return 0, err
	}
	return c.cfg.Gain.At(p), nil
}

// AdjustContrast remaps every sample to alpha*(p-mean)+mean, where mean is
// the mean of gray itself, clamped to [0,255].
func AdjustContrast(gray *frame.Buffer, alpha float64) (*frame.Buffer, error) {
	mean, err := MeanIntensity(gray)
	if err != nil {
		return nil, err
	}

	out := frame.New(gray.Width, gray.Height, gray.Channels)
	for i, p := range gray.Pix {
		out.Pix[i] = frame.ClampByte(alpha*(float64(p)-mean) + mean)
	}
	return out, nil
}

// MeanIntensity is the mean over every sample of b.
func MeanIntensity(b *frame.Buffer) (float64, error) {
	mat, err := b.ToMat()
	defer mat.Close()
	if err != nil {
		return 0, transformErr("mean intensity: %v", err)
	}

	m := mat.Mean()
	if b.Channels == 3 {
		return (m.Val1 + m.Val2 + m.Val3) / 3, nil
	}
	return m.Val1, nil
}
