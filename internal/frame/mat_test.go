package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatRoundTrip(t *testing.T) {
	for _, channels := range []int{1, 3} {
		b := New(7, 5, channels)
		for i := range b.Pix {
			b.Pix[i] = uint8(i * 3)
		}

		mat, err := b.ToMat()
		require.NoError(t, err)
		assert.Equal(t, 5, mat.Rows())
		assert.Equal(t, 7, mat.Cols())
		assert.Equal(t, channels, mat.Channels())

		// the mat owns its memory
		b.Pix[0] = 200
		back, err := FromMat(mat)
		mat.Close()
		require.NoError(t, err)
		assert.Equal(t, uint8(0), back.Pix[0])
		assert.Equal(t, b.Pix[1:], back.Pix[1:])
	}
}

func TestGray(t *testing.T) {
	b := New(2, 1, 3)
	// pure white and pure black in BGR
	copy(b.Pix, []uint8{255, 255, 255, 0, 0, 0})

	gray, err := b.Gray()
	require.NoError(t, err)
	assert.Equal(t, 1, gray.Channels)
	assert.Equal(t, []uint8{255, 0}, gray.Pix)

	single := New(2, 2, 1)
	single.Fill(3)
	g, err := single.Gray()
	require.NoError(t, err)
	assert.Equal(t, single.Pix, g.Pix)
	g.Pix[0] = 9
	assert.Equal(t, uint8(3), single.Pix[0])
}

func TestToMat_InvalidBuffer(t *testing.T) {
	mat, err := (&Buffer{Width: 2, Height: 2, Channels: 3}).ToMat()
	defer mat.Close()
	assert.Error(t, err)
}
