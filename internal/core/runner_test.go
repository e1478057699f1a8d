package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-effects-pipeline/internal/algorithms"
	"video-effects-pipeline/internal/frame"
	videoio "video-effects-pipeline/internal/io"
)

type fakeCodec struct {
	reader   *fakeReader
	sinks    map[string]*fakeSink
	fallback bool
}

func (c *fakeCodec) OpenReader(path string) (videoio.Reader, error) {
	if c.reader == nil {
		return nil, fmt.Errorf("%w: %s", frame.ErrOpen, path)
	}
	return c.reader, nil
}

func (c *fakeCodec) OpenWriter(path string, meta frame.StreamMetadata, channels int) (videoio.Sink, string, error) {
	if c.fallback {
		path = videoio.WithExtension(path, ".avi")
	}
	sink := &fakeSink{channels: channels}
	c.sinks[path] = sink
	return sink, path, nil
}

func grayClip(n int) []*frame.Buffer {
	frames := make([]*frame.Buffer, n)
	for i := range frames {
		frames[i] = frame.New(20, 10, 1)
		frames[i].Fill(uint8(10 * i))
	}
	return frames
}

func TestRunner_RunFile(t *testing.T) {
	codec := &fakeCodec{
		reader:   streamOf(grayClip(5), 5),
		sinks:    make(map[string]*fakeSink),
		fallback: true,
	}
	runner := NewRunner(codec, Options{Workers: 2}, quietLogger())

	cfg := algorithms.DefaultConfig(algorithms.KindVignette)
	result, err := runner.RunFile(context.Background(), "in.mp4", cfg, map[string]string{
		algorithms.OutputMain: "out/vignette.mp4",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Frames)
	assert.Equal(t, map[string]string{algorithms.OutputMain: "out/vignette.avi"}, result.Paths)
	require.Contains(t, codec.sinks, "out/vignette.avi")
	assert.Len(t, codec.sinks["out/vignette.avi"].frames, 5)
	assert.Equal(t, 1, codec.reader.closed)
}

func TestRunner_MissingOutputPath(t *testing.T) {
	codec := &fakeCodec{reader: streamOf(grayClip(2), 2), sinks: make(map[string]*fakeSink)}
	runner := NewRunner(codec, Options{Workers: 1}, quietLogger())

	_, err := runner.RunFile(context.Background(), "in.mp4", algorithms.DefaultConfig(algorithms.KindMovingBlur),
		map[string]string{algorithms.OutputHard: "hard.mp4"})
	assert.Error(t, err)
	assert.Empty(t, codec.sinks)
}

func TestRunner_OpenFailure(t *testing.T) {
	runner := NewRunner(&fakeCodec{sinks: make(map[string]*fakeSink)}, Options{Workers: 1}, quietLogger())
	_, err := runner.RunFile(context.Background(), "missing.mp4", algorithms.DefaultConfig(algorithms.KindContrast),
		map[string]string{algorithms.OutputMain: "out.mp4"})
	assert.ErrorIs(t, err, frame.ErrOpen)
}

func TestFileSinks_UnknownOutput(t *testing.T) {
	open := FileSinks(&fakeCodec{sinks: make(map[string]*fakeSink)}, map[string]string{}, nil)
	_, err := open("main", frame.StreamMetadata{FPS: 1, Width: 1, Height: 1, TotalFrames: 1}, 1)
	assert.ErrorIs(t, err, frame.ErrOpen)
}
