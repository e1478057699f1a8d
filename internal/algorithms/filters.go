// OpenCV-backed spatial filters shared by the effects
package algorithms

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"video-effects-pipeline/internal/frame"
)

// BoxBlur applies a normalized kernelSize x kernelSize box filter to every
// channel of src.
func BoxBlur(src *frame.Buffer, kernelSize int) (*frame.Buffer, error) {
	if kernelSize <= 0 {
		return nil, transformErr("kernel_size must be positive, got %d", kernelSize)
	}

	input, err := src.ToMat()
	if err != nil {
		return nil, err
	}
	defer input.Close()

	output := gocv.NewMat()
	defer output.Close()
	gocv.Blur(input, &output, image.Pt(kernelSize, kernelSize))

	return frame.FromMat(output)
}

// WarpRotate rotates src by angle degrees (counter-clockwise) about its
// centre and scales it uniformly, keeping the original frame size. Pixels
// mapped from outside the source are black.
func WarpRotate(src *frame.Buffer, angle, scale float64) (*frame.Buffer, error) {
	if !(scale > 0) || math.IsInf(scale, 0) || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, transformErr("invalid rotation angle %v or scale %v", angle, scale)
	}

	input, err := src.ToMat()
	if err != nil {
		return nil, err
	}
	defer input.Close()

	center := image.Pt(src.Width/2, src.Height/2)
	rotation := gocv.GetRotationMatrix2D(center, angle, scale)
	defer rotation.Close()
	if rotation.Empty() {
		return nil, fmt.Errorf("failed to build rotation matrix")
	}

	output := gocv.NewMat()
	defer output.Close()
	gocv.WarpAffine(input, &output, rotation, image.Pt(src.Width, src.Height))

	return frame.FromMat(output)
}

// ScaleFor returns the uniform scale that fits a width x height frame,
// rotated by angle degrees, inside the original frame size. Multiples of
// 90 degrees return exactly 1.
func ScaleFor(width, height int, angle float64) float64 {
	rem := math.Abs(math.Mod(angle, 90))
	if rem < 1e-9 || 90-rem < 1e-9 {
		return 1.0
	}

	rad := math.Abs(angle * math.Pi / 180)
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))

	w, h := float64(width), float64(height)
	newW := w*cos + h*sin
	newH := w*sin + h*cos

	return math.Min(w/newW, h/newH)
}
