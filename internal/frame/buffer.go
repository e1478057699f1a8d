// Raw decoded frame buffers and stream metadata shared by every stage
package frame

import (
	"fmt"
)

// Buffer is a decoded frame: a row-major, channel-interleaved 8-bit pixel grid.
// Colour frames use OpenCV's BGR channel order.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed buffer of the given shape.
func New(width, height, channels int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Validate checks dimensions, channel count and pixel slice length
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("frame buffer is nil")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions: %dx%d", b.Width, b.Height)
	}
	if b.Channels != 1 && b.Channels != 3 {
		return fmt.Errorf("unsupported number of channels: %d", b.Channels)
	}
	if len(b.Pix) != b.Width*b.Height*b.Channels {
		return fmt.Errorf("pixel data length %d does not match %dx%dx%d",
			len(b.Pix), b.Width, b.Height, b.Channels)
	}
	return nil
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Pix:      append([]uint8(nil), b.Pix...),
	}
}

// Offset returns the index of channel c of pixel (x, y) in Pix.
func (b *Buffer) Offset(x, y, c int) int {
	return (y*b.Width+x)*b.Channels + c
}

func (b *Buffer) At(x, y, c int) uint8 {
	return b.Pix[b.Offset(x, y, c)]
}

func (b *Buffer) Set(x, y, c int, v uint8) {
	b.Pix[b.Offset(x, y, c)] = v
}

// SameShape reports whether o has the same width, height and channel count.
func (b *Buffer) SameShape(o *Buffer) bool {
	return o != nil && b.Width == o.Width && b.Height == o.Height && b.Channels == o.Channels
}

// Fill sets every sample of every channel to v.
func (b *Buffer) Fill(v uint8) {
	for i := range b.Pix {
		b.Pix[i] = v
	}
}

// StreamMetadata is read once when a stream is opened and stays fixed for the run.
type StreamMetadata struct {
	FPS         float64
	Width       int
	Height      int
	TotalFrames int
}

// Validate rejects streams no effect can be scheduled over.
func (m StreamMetadata) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidStream, m.Width, m.Height)
	}
	if m.TotalFrames <= 0 {
		return fmt.Errorf("%w: total frame count is %d", ErrInvalidStream, m.TotalFrames)
	}
	if !(m.FPS > 0) {
		return fmt.Errorf("%w: fps is %v", ErrInvalidStream, m.FPS)
	}
	return nil
}

// Matches reports whether b has the frame size announced by the stream.
func (m StreamMetadata) Matches(b *Buffer) bool {
	return b != nil && b.Width == m.Width && b.Height == m.Height
}

// ClampByte saturates v to [0,255] and truncates toward zero.
func ClampByte(v float64) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
