package mask

import (
	"fmt"
	"math"
)

// Band is a half-open column range [Start, End) of a frame.
type Band struct {
	Start int
	End   int
}

// NewBand centres a band of the given width on column cx and clips it to
// [0, frameWidth).
func NewBand(cx, width, frameWidth int) (Band, error) {
	if width < 0 {
		return Band{}, fmt.Errorf("band width must be non-negative, got %d", width)
	}
	if frameWidth <= 0 {
		return Band{}, fmt.Errorf("frame width must be positive, got %d", frameWidth)
	}

	half := width / 2
	start := min(max(0, cx-half), frameWidth)
	end := max(min(frameWidth, cx+half), start)
	return Band{Start: start, End: end}, nil
}

func (b Band) Len() int {
	return b.End - b.Start
}

func (b Band) Empty() bool {
	return b.Len() <= 0
}

// AlphaRamp returns sin(pi * x/len) for every column x of the band: zero at
// the leading edge, one at the centre, falling back toward zero.
func (b Band) AlphaRamp() []float64 {
	n := b.Len()
	if n <= 0 {
		return nil
	}

	ramp := make([]float64, n)
	for x := range ramp {
		rel := float64(x) / float64(n)
		ramp[x] = clamp01(math.Sin(rel * math.Pi))
	}
	return ramp
}
