package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-effects-pipeline/internal/frame"
)

func TestClipSpec_Metadata(t *testing.T) {
	meta := DefaultClipSpec().Metadata()
	assert.Equal(t, frame.StreamMetadata{FPS: 30, Width: 640, Height: 480, TotalFrames: 150}, meta)

	_, err := NewSyntheticReader(ClipSpec{Width: 64, Height: 48, FPS: 30, Duration: 0})
	assert.ErrorIs(t, err, frame.ErrInvalidStream)
}

func TestSyntheticReader_FrameCount(t *testing.T) {
	reader, err := NewSyntheticReader(ClipSpec{Width: 160, Height: 120, FPS: 4, Duration: 2})
	require.NoError(t, err)
	defer reader.Close()

	n := 0
	for {
		b, ok := reader.Next()
		if !ok {
			break
		}
		require.NoError(t, b.Validate())
		assert.Equal(t, 3, b.Channels)
		n++
	}
	assert.NoError(t, reader.Err())
	assert.Equal(t, 8, n)

	_, ok := reader.Next()
	assert.False(t, ok)
}

func TestRenderSyntheticFrame_Shapes(t *testing.T) {
	meta := DefaultClipSpec().Metadata()
	b, err := RenderSyntheticFrame(0, meta)
	require.NoError(t, err)

	// frame 0: circle centred at (320, 384), square centred at (512, 240)
	assert.Equal(t, []uint8{0, 0, 255}, b.Pix[b.Offset(320, 384, 0):b.Offset(320, 384, 0)+3])
	assert.Equal(t, []uint8{0, 255, 0}, b.Pix[b.Offset(512, 240, 0):b.Offset(512, 240, 0)+3])
	assert.Equal(t, []uint8{0, 0, 0}, b.Pix[b.Offset(320, 240, 0):b.Offset(320, 240, 0)+3])

	again, err := RenderSyntheticFrame(0, meta)
	require.NoError(t, err)
	assert.Equal(t, b.Pix, again.Pix)

	other, err := RenderSyntheticFrame(40, meta)
	require.NoError(t, err)
	assert.NotEqual(t, b.Pix, other.Pix)
}
