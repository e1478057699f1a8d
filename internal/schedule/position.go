package schedule

import (
	"fmt"

	"video-effects-pipeline/internal/frame"
)

// Position is a frame's index within a clip of Total frames.
type Position struct {
	Index int
	Total int
}

// Progress is Index/Total, in [0,1) for indices inside the clip.
func (p Position) Progress() (float64, error) {
	if p.Total <= 0 {
		return 0, fmt.Errorf("%w: progress undefined for total frame count %d", frame.ErrInvalidStream, p.Total)
	}
	if p.Index < 0 {
		return 0, fmt.Errorf("negative frame index %d", p.Index)
	}
	return float64(p.Index) / float64(p.Total), nil
}

// SpanProgress is Index/(Total-1), reaching exactly 1 on the last frame.
// Single-frame clips stay at 0.
func (p Position) SpanProgress() (float64, error) {
	if p.Total <= 0 {
		return 0, fmt.Errorf("%w: progress undefined for total frame count %d", frame.ErrInvalidStream, p.Total)
	}
	if p.Total == 1 {
		return 0, nil
	}
	return float64(p.Index) / float64(p.Total-1), nil
}
