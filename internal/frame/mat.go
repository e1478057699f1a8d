package frame

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ToMat copies the buffer into a new gocv.Mat. The caller closes it.
func (b *Buffer) ToMat() (gocv.Mat, error) {
	if err := b.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	mt := gocv.MatTypeCV8UC1
	if b.Channels == 3 {
		mt = gocv.MatTypeCV8UC3
	}

	// NewMatFromBytes borrows the Go slice, so hand out an owned clone
	view, err := gocv.NewMatFromBytes(b.Height, b.Width, mt, b.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap frame buffer: %w", err)
	}
	defer view.Close()

	return view.Clone(), nil
}

// FromMat copies an 8-bit, 1- or 3-channel Mat into a new Buffer.
func FromMat(mat gocv.Mat) (*Buffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("input image is empty")
	}

	channels := mat.Channels()
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("unsupported number of channels: %d", channels)
	}
	if mat.Type() != gocv.MatTypeCV8UC1 && mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("unsupported mat type: %v", mat.Type())
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	b := &Buffer{
		Width:    src.Cols(),
		Height:   src.Rows(),
		Channels: channels,
		Pix:      src.ToBytes(),
	}
	return b, b.Validate()
}

// Gray returns the single-channel luma of b. A 1-channel buffer is copied as is.
func (b *Buffer) Gray() (*Buffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.Channels == 1 {
		return b.Clone(), nil
	}

	src, err := b.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	return FromMat(gray)
}
