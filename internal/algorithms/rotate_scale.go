package algorithms

import (
	"fmt"
	"math"

	"video-effects-pipeline/internal/frame"
	"video-effects-pipeline/internal/schedule"
)

// RotateScale rotates frames about their centre by an angle that grows
// linearly to FinalAngle on the last frame. The scaled output shrinks the
// frame so the rotated corners stay inside it.
type RotateScale struct {
	cfg    RotateScaleConfig
	width  int
	height int
}

// NewRotateScale validates cfg and creates the effect
func NewRotateScale(cfg RotateScaleConfig) (*RotateScale, error) {
	if math.IsNaN(cfg.FinalAngle) || math.IsInf(cfg.FinalAngle, 0) {
		return nil, transformErr("final_angle must be finite, got %v", cfg.FinalAngle)
	}
	return &RotateScale{cfg: cfg}, nil
}

func (r *RotateScale) Kind() Kind {
	return KindRotateScale
}

func (r *RotateScale) Name() string {
	return fmt.Sprintf("RotateScale(%g°)", r.cfg.FinalAngle)
}

func (r *RotateScale) Outputs() []string {
	return []string{OutputNormal, OutputScaled}
}

func (r *RotateScale) OutputChannels(in int) int {
	return in
}

func (r *RotateScale) Prepare(meta frame.StreamMetadata, channels int) error {
	r.width, r.height = meta.Width, meta.Height
	return nil
}

// AngleAt is the rotation in degrees for a frame position.
func (r *RotateScale) AngleAt(pos schedule.Position) (float64, error) {
	p, err := pos.SpanProgress()
	if err != nil {
		return 0, err
	}
	return r.cfg.FinalAngle * p, nil
}

func (r *RotateScale) Parameters(pos schedule.Position) (map[string]float64, error) {
	angle, err := r.AngleAt(pos)
	if err != nil {
		return nil, err
	}
	return map[string]float64{
		"angle": angle,
		"scale": ScaleFor(r.width, r.height, angle),
	}, nil
}

func (r *RotateScale) Apply(src *frame.Buffer, pos schedule.Position) ([]Output, error) {
	if err := checkFrame(src, r.width, r.height); err != nil {
		return nil, err
	}

	angle, err := r.AngleAt(pos)
	if err != nil {
		return nil, err
	}

	normal, err := WarpRotate(src, angle, 1.0)
	if err != nil {
		return nil, err
	}

	scaled, err := WarpRotate(src, angle, ScaleFor(src.Width, src.Height, angle))
	if err != nil {
		return nil, err
	}

	return []Output{
		{Name: OutputNormal, Frame: normal},
		{Name: OutputScaled, Frame: scaled},
	}, nil
}
