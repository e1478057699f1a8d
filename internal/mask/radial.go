// Spatial weight grids used to attenuate or blend frames
package mask

import (
	"fmt"
	"math"
)

// Mask is a per-pixel weight grid in [0,1], broadcast across channels.
type Mask struct {
	Width   int
	Height  int
	Weights []float64
}

func (m *Mask) At(x, y int) float64 {
	return m.Weights[y*m.Width+x]
}

// DistanceField holds squared distances from the frame centre normalized by
// max(cx, cy)^2 and clipped to [0,1]. It is built once per run and shared
// read-only between workers.
type DistanceField struct {
	Width  int
	Height int
	Values []float64
}

// NewDistanceField computes the normalized squared distance field for a
// width x height frame, centred on (width/2, height/2).
func NewDistanceField(width, height int) (*DistanceField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask dimensions: %dx%d", width, height)
	}

	cx, cy := width/2, height/2
	norm := float64(max(cx, cy))
	norm *= norm

	field := &DistanceField{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}

	// 1x1 frames have a zero radius; everything sits at the centre
	if norm == 0 {
		return field, nil
	}

	for y := 0; y < height; y++ {
		dy := float64(y - cy)
		row := field.Values[y*width : (y+1)*width]
		for x := range row {
			dx := float64(x - cx)
			row[x] = clamp01((dx*dx + dy*dy) / norm)
		}
	}

	return field, nil
}

// Gaussian maps the field through exp(-d / (2 sigma^2)).
func (f *DistanceField) Gaussian(sigma float64) (*Mask, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("sigma must be a positive finite number, got %v", sigma)
	}

	denom := 2 * sigma * sigma
	m := &Mask{
		Width:   f.Width,
		Height:  f.Height,
		Weights: make([]float64, len(f.Values)),
	}
	for i, d := range f.Values {
		m.Weights[i] = clamp01(math.Exp(-d / denom))
	}
	return m, nil
}

// RadialFalloff builds 1 - strength*(dist/maxDist)^2, where maxDist is the
// distance from the centre to the origin corner.
func RadialFalloff(width, height int, strength float64) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask dimensions: %dx%d", width, height)
	}
	if strength < 0 || strength > 1 {
		return nil, fmt.Errorf("falloff strength must be in [0,1], got %v", strength)
	}

	cx, cy := width/2, height/2
	maxDistSq := float64(cx*cx + cy*cy)

	m := &Mask{
		Width:   width,
		Height:  height,
		Weights: make([]float64, width*height),
	}
	for y := 0; y < height; y++ {
		dy := float64(y - cy)
		for x := 0; x < width; x++ {
			w := 1.0
			if maxDistSq > 0 {
				dx := float64(x - cx)
				w = 1 - strength*(dx*dx+dy*dy)/maxDistSq
			}
			m.Weights[y*width+x] = clamp01(w)
		}
	}
	return m, nil
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
