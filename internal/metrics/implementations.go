package metrics

import (
	"fmt"
	"math"

	"video-effects-pipeline/internal/frame"
)

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed *frame.Buffer) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	maxVal := 255.0
	return 20 * math.Log10(maxVal/math.Sqrt(mse)), nil
}

func (p *PSNR) Name() string {
	return "PSNR"
}

func (p *PSNR) Description() string {
	return "Peak Signal-to-Noise Ratio of the output luma against the input luma"
}

func (p *PSNR) Range() (float64, float64) {
	return 0, 100
}

func (p *PSNR) HigherBetter() bool {
	return true
}

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed *frame.Buffer) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) Name() string {
	return "MSE"
}

func (m *MSE) Description() string {
	return "Mean Squared Error between luma planes"
}

func (m *MSE) Range() (float64, float64) {
	return 0, 65025 // 255^2
}

func (m *MSE) HigherBetter() bool {
	return false
}

// MeanAbsDiff is the mean absolute luma difference
type MeanAbsDiff struct{}

func NewMeanAbsDiff() *MeanAbsDiff {
	return &MeanAbsDiff{}
}

func (m *MeanAbsDiff) Calculate(original, processed *frame.Buffer) (float64, error) {
	g1, g2, err := lumaPair(original, processed)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for i := range g1.Pix {
		sum += math.Abs(float64(g1.Pix[i]) - float64(g2.Pix[i]))
	}
	return sum / float64(len(g1.Pix)), nil
}

func (m *MeanAbsDiff) Name() string {
	return "MeanAbsDiff"
}

func (m *MeanAbsDiff) Description() string {
	return "Mean absolute difference between luma planes"
}

func (m *MeanAbsDiff) Range() (float64, float64) {
	return 0, 255
}

func (m *MeanAbsDiff) HigherBetter() bool {
	return false
}

func meanSquaredError(original, processed *frame.Buffer) (float64, error) {
	g1, g2, err := lumaPair(original, processed)
	if err != nil {
		return 0, err
	}

	sumSquaredDiff := 0.0
	for i := range g1.Pix {
		diff := float64(g1.Pix[i]) - float64(g2.Pix[i])
		sumSquaredDiff += diff * diff
	}
	return sumSquaredDiff / float64(len(g1.Pix)), nil
}

// lumaPair converts both frames to luma after checking their sizes match.
func lumaPair(original, processed *frame.Buffer) (*frame.Buffer, *frame.Buffer, error) {
	if original == nil || processed == nil || len(original.Pix) == 0 || len(processed.Pix) == 0 {
		return nil, nil, fmt.Errorf("empty images")
	}
	if original.Width != processed.Width || original.Height != processed.Height {
		return nil, nil, fmt.Errorf("image dimensions mismatch")
	}

	g1, err := original.Gray()
	if err != nil {
		return nil, nil, err
	}
	g2, err := processed.Gray()
	if err != nil {
		return nil, nil, err
	}
	return g1, g2, nil
}
