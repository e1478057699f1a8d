package algorithms

import (
	"fmt"
	"math"
	"math/rand"

	"gocv.io/x/gocv"

	"video-effects-pipeline/internal/frame"
	"video-effects-pipeline/internal/mask"
	"video-effects-pipeline/internal/schedule"
)

const (
	scanLineSpacing   = 20
	scanLineThickness = 2
	scanLineDivisor   = 3
	greenChannel      = 1
)

// NightVision renders luma into the green channel with a scheduled gain,
// then adds sensor noise, periodic scan lines and a radial falloff, in that
// order.
type NightVision struct {
	cfg     NightVisionConfig
	width   int
	height  int
	falloff *mask.Mask
}

// NewNightVision validates cfg and creates the effect
func NewNightVision(cfg NightVisionConfig) (*NightVision, error) {
	if err := cfg.Gain.Validate(); err != nil {
		return nil, transformErr("night vision gain: %v", err)
	}
	if math.IsNaN(cfg.Offset) || math.IsInf(cfg.Offset, 0) {
		return nil, transformErr("offset must be finite, got %v", cfg.Offset)
	}
	if cfg.NoiseStdDev < 0 || math.IsNaN(cfg.NoiseStdDev) || math.IsInf(cfg.NoiseStdDev, 0) {
		return nil, transformErr("noise_stddev must be a non-negative finite number, got %v", cfg.NoiseStdDev)
	}
	if cfg.ScanLines && cfg.ScanLinePeriod <= 0 {
		return nil, transformErr("scan_line_period must be positive, got %d", cfg.ScanLinePeriod)
	}
	if cfg.Falloff < 0 || cfg.Falloff > 1 {
		return nil, transformErr("falloff must be in [0,1], got %v", cfg.Falloff)
	}
	return &NightVision{cfg: cfg}, nil
}

func (n *NightVision) Kind() Kind {
	return KindNightVision
}

func (n *NightVision) Name() string {
	return fmt.Sprintf("NightVision(noise=%g, scan_lines=%t)", n.cfg.NoiseStdDev, n.cfg.ScanLines)
}

func (n *NightVision) Outputs() []string {
	return []string{OutputMain}
}

func (n *NightVision) OutputChannels(int) int {
	return 3
}

// Prepare builds the static radial falloff.
func (n *NightVision) Prepare(meta frame.StreamMetadata, channels int) error {
	falloff, err := mask.RadialFalloff(meta.Width, meta.Height, n.cfg.Falloff)
	if err != nil {
		return transformErr("%v", err)
	}
	n.width, n.height = meta.Width, meta.Height
	n.falloff = falloff
	return nil
}

func (n *NightVision) gain(pos schedule.Position) (float64, error) {
	p, err := pos.Progress()
	if err != nil {
		return 0, err
	}
	return n.cfg.Gain.At(p), nil
}

func (n *NightVision) Parameters(pos schedule.Position) (map[string]float64, error) {
	alpha, err := n.gain(pos)
	if err != nil {
		return nil, err
	}
	scan := 0.0
	if n.scanLinesAt(pos) {
		scan = 1
	}
	return map[string]float64{"alpha": alpha, "beta": n.cfg.Offset, "scan_lines": scan}, nil
}

func (n *NightVision) scanLinesAt(pos schedule.Position) bool {
	return n.cfg.ScanLines && pos.Index%n.cfg.ScanLinePeriod == 0
}

func (n *NightVision) Apply(src *frame.Buffer, pos schedule.Position) ([]Output, error) {
	if err := checkFrame(src, n.width, n.height); err != nil {
		return nil, err
	}

	alpha, err := n.gain(pos)
	if err != nil {
		return nil, err
	}

	gray, err := src.Gray()
	if err != nil {
		return nil, transformErr("luma conversion: %v", err)
	}

	luma, err := ScaleAbs(gray, alpha, n.cfg.Offset)
	if err != nil {
		return nil, err
	}

	out := frame.New(src.Width, src.Height, 3)
	for i, p := range luma.Pix {
		out.Pix[i*3+greenChannel] = p
	}

	if n.cfg.NoiseStdDev > 0 {
		// per-frame seed keeps the noise independent of worker scheduling
		rng := rand.New(rand.NewSource(n.cfg.Seed + int64(pos.Index)))
		AddGaussianNoise(out, greenChannel, n.cfg.NoiseStdDev, rng)
	}

	if n.scanLinesAt(pos) {
		DarkenScanLines(out)
	}

	ApplyMask(out, n.falloff, greenChannel)

	return []Output{{Name: OutputMain, Frame: out}}, nil
}

// ScaleAbs maps every sample p of b to saturate(round(|alpha*p + beta|)).
func ScaleAbs(b *frame.Buffer, alpha, beta float64) (*frame.Buffer, error) {
	src, err := b.ToMat()
	defer src.Close()
	if err != nil {
		return nil, transformErr("scale abs: %v", err)
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.ConvertScaleAbs(src, &dst, alpha, beta)

	return frame.FromMat(dst)
}

// AddGaussianNoise adds N(0, stddev^2) samples, truncated toward zero, to
// channel c of b and clamps the result.
func AddGaussianNoise(b *frame.Buffer, c int, stddev float64, rng *rand.Rand) {
	for i := c; i < len(b.Pix); i += b.Channels {
		noise := int(rng.NormFloat64() * stddev)
		v := int(b.Pix[i]) + noise
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		b.Pix[i] = uint8(v)
	}
}

// DarkenScanLines divides every channel of rows y and y+1, for y a
// multiple of 20, by 3.
func DarkenScanLines(b *frame.Buffer) {
	rowLen := b.Width * b.Channels
	for y := 0; y < b.Height; y += scanLineSpacing {
		for yy := y; yy < y+scanLineThickness && yy < b.Height; yy++ {
			row := b.Pix[yy*rowLen : (yy+1)*rowLen]
			for i := range row {
				row[i] /= scanLineDivisor
			}
		}
	}
}

// ApplyMask multiplies channel c of b by m, clamping and truncating. A
// negative c applies the mask to every channel.
func ApplyMask(b *frame.Buffer, m *mask.Mask, c int) {
	for i, w := range m.Weights {
		base := i * b.Channels
		if c >= 0 {
			b.Pix[base+c] = frame.ClampByte(float64(b.Pix[base+c]) * w)
			continue
		}
		for k := 0; k < b.Channels; k++ {
			b.Pix[base+k] = frame.ClampByte(float64(b.Pix[base+k]) * w)
		}
	}
}
