package algorithms

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"video-effects-pipeline/internal/frame"
)

func createTestFrame(width, height, channels int, value uint8) *frame.Buffer {
	b := frame.New(width, height, channels)
	b.Fill(value)
	return b
}

func createRandomFrame(rng *rand.Rand, width, height, channels int) *frame.Buffer {
	b := frame.New(width, height, channels)
	rng.Read(b.Pix)
	return b
}

func metaFor(b *frame.Buffer, total int) frame.StreamMetadata {
	return frame.StreamMetadata{FPS: 30, Width: b.Width, Height: b.Height, TotalFrames: total}
}

func prepared(t *testing.T, e Effect, b *frame.Buffer, total int) Effect {
	t.Helper()
	require.NoError(t, e.Prepare(metaFor(b, total), b.Channels))
	return e
}
