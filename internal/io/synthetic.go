package io

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"video-effects-pipeline/internal/frame"
)

// ClipSpec describes a synthetic test clip
type ClipSpec struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FPS      float64 `yaml:"fps"`
	Duration int     `yaml:"duration"` // seconds
}

// DefaultClipSpec is a five second 640x480 clip at 30 fps.
func DefaultClipSpec() ClipSpec {
	return ClipSpec{Width: 640, Height: 480, FPS: 30, Duration: 5}
}

func (s ClipSpec) Metadata() frame.StreamMetadata {
	return frame.StreamMetadata{
		FPS:         s.FPS,
		Width:       s.Width,
		Height:      s.Height,
		TotalFrames: int(float64(s.Duration) * s.FPS),
	}
}

// SyntheticReader renders a red circle and a green square orbiting the
// frame centre, with a frame counter in the top left corner.
type SyntheticReader struct {
	meta  frame.StreamMetadata
	index int
	err   error
}

// NewSyntheticReader validates spec and returns a reader over its frames.
func NewSyntheticReader(spec ClipSpec) (*SyntheticReader, error) {
	meta := spec.Metadata()
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &SyntheticReader{meta: meta}, nil
}

func (r *SyntheticReader) Metadata() frame.StreamMetadata {
	return r.meta
}

func (r *SyntheticReader) Next() (*frame.Buffer, bool) {
	if r.err != nil || r.index >= r.meta.TotalFrames {
		return nil, false
	}
	b, err := RenderSyntheticFrame(r.index, r.meta)
	if err != nil {
		r.err = interruptedErr(r.index, r.meta.TotalFrames, err)
		return nil, false
	}
	r.index++
	return b, true
}

func (r *SyntheticReader) Err() error {
	return r.err
}

func (r *SyntheticReader) Close() error {
	return nil
}

// RenderSyntheticFrame draws frame i of a synthetic clip.
func RenderSyntheticFrame(i int, meta frame.StreamMetadata) (*frame.Buffer, error) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), meta.Height, meta.Width, gocv.MatTypeCV8UC3)
	defer img.Close()

	phase := float64(i) * 2 * math.Pi / float64(meta.TotalFrames)
	w, h := float64(meta.Width), float64(meta.Height)

	circle := image.Pt(int(w*(0.5+0.3*math.Sin(phase))), int(h*(0.5+0.3*math.Cos(phase))))
	gocv.Circle(&img, circle, 50, color.RGBA{R: 255, A: 255}, -1)

	square := image.Pt(int(w*(0.5+0.3*math.Cos(phase))), int(h*(0.5+0.3*math.Sin(phase))))
	gocv.Rectangle(&img, image.Rect(square.X-30, square.Y-30, square.X+30, square.Y+30), color.RGBA{G: 255, A: 255}, -1)

	gocv.PutText(&img, fmt.Sprintf("Frame: %d/%d", i, meta.TotalFrames), image.Pt(20, 30),
		gocv.FontHersheySimplex, 0.7, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

	return frame.FromMat(img)
}

// GenerateClip writes a synthetic clip to path and returns the path actually
// written.
func GenerateClip(codec Codec, path string, spec ClipSpec) (string, error) {
	reader, err := NewSyntheticReader(spec)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	sink, written, err := codec.OpenWriter(path, reader.Metadata(), 3)
	if err != nil {
		return "", err
	}

	if _, err := Copy(sink, reader); err != nil {
		sink.Close()
		return written, fmt.Errorf("failed to generate clip %s: %w", written, err)
	}
	if err := sink.Close(); err != nil {
		return written, fmt.Errorf("failed to finalize clip %s: %w", written, err)
	}
	return written, nil
}
