package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-effects-pipeline/internal/algorithms"
	"video-effects-pipeline/internal/config"
	"video-effects-pipeline/internal/frame"
	videoio "video-effects-pipeline/internal/io"
)

// memoryCodec keeps written clips in memory and replays them on open.
type memoryCodec struct {
	mu    sync.Mutex
	clips map[string]*memoryClip
}

type memoryClip struct {
	meta   frame.StreamMetadata
	frames []*frame.Buffer
}

func newMemoryCodec() *memoryCodec {
	return &memoryCodec{clips: make(map[string]*memoryClip)}
}

func (c *memoryCodec) OpenReader(path string) (videoio.Reader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip, ok := c.clips[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", frame.ErrOpen, path)
	}
	return &memoryReader{clip: clip}, nil
}

func (c *memoryCodec) OpenWriter(path string, meta frame.StreamMetadata, channels int) (videoio.Sink, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip := &memoryClip{meta: meta}
	c.clips[path] = clip
	return &memorySink{clip: clip}, path, nil
}

func (c *memoryCodec) frames(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if clip, ok := c.clips[path]; ok {
		return len(clip.frames)
	}
	return -1
}

type memoryReader struct {
	clip *memoryClip
	next int
}

func (r *memoryReader) Metadata() frame.StreamMetadata { return r.clip.meta }

func (r *memoryReader) Next() (*frame.Buffer, bool) {
	if r.next >= len(r.clip.frames) {
		return nil, false
	}
	f := r.clip.frames[r.next].Clone()
	r.next++
	return f, true
}

func (r *memoryReader) Err() error   { return nil }
func (r *memoryReader) Close() error { return nil }

type memorySink struct {
	clip *memoryClip
}

func (s *memorySink) Write(f *frame.Buffer) error {
	s.clip.frames = append(s.clip.frames, f.Clone())
	return nil
}

func (s *memorySink) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Input = filepath.Join(t.TempDir(), "input.mp4")
	cfg.OutputDir = t.TempDir()
	cfg.Workers = 2
	cfg.Clip = videoio.ClipSpec{Width: 64, Height: 48, FPS: 4, Duration: 1}
	return cfg
}

func TestInitLogger(t *testing.T) {
	logger := initLogger(true, "error")
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = initLogger(false, "warn")
	assert.Equal(t, logrus.WarnLevel, logger.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = initLogger(false, "loud")
	assert.Equal(t, logrus.InfoLevel, logger.Level)
}

func TestResolveInput_Existing(t *testing.T) {
	codec := newMemoryCodec()
	cfg := testConfig(t)
	codec.clips[cfg.Input] = &memoryClip{meta: cfg.Clip.Metadata()}
	logger, _ := logtest.NewNullLogger()

	path, err := resolveInput(codec, cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, cfg.Input, path)
}

func TestResolveInput_GeneratesMissingClip(t *testing.T) {
	codec := newMemoryCodec()
	cfg := testConfig(t)
	logger, hook := logtest.NewNullLogger()

	path, err := resolveInput(codec, cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, cfg.Input, path)
	assert.Equal(t, 4, codec.frames(cfg.Input))
	assert.Equal(t, "Test clip generated", hook.LastEntry().Message)
}

func TestResolveInput_NoGenerate(t *testing.T) {
	cfg := testConfig(t)
	cfg.GenerateMissing = false
	logger, _ := logtest.NewNullLogger()

	_, err := resolveInput(newMemoryCodec(), cfg, logger)
	assert.ErrorIs(t, err, frame.ErrOpen)
}

func TestExecuteJobs(t *testing.T) {
	codec := newMemoryCodec()
	cfg := testConfig(t)

	contrast, err := config.Preset("contrast", cfg.OutputDir)
	require.NoError(t, err)
	vignette, err := config.Preset("vignette_pulsating", cfg.OutputDir)
	require.NoError(t, err)
	cfg.Jobs = []config.Job{contrast, vignette}
	require.NoError(t, cfg.Validate())

	logger, hook := logtest.NewNullLogger()
	require.NoError(t, executeJobs(context.Background(), codec, cfg, logger))

	assert.Equal(t, 4, codec.frames(contrast.Outputs[algorithms.OutputMain]))
	assert.Equal(t, 4, codec.frames(vignette.Outputs[algorithms.OutputMain]))

	completed := 0
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Job completed" {
			completed++
			assert.Equal(t, 4, entry.Data["frames"])
		}
	}
	assert.Equal(t, 2, completed)
}

func TestExecuteJobs_FailedJobDoesNotStopOthers(t *testing.T) {
	codec := newMemoryCodec()
	cfg := testConfig(t)

	broken := algorithms.DefaultConfig(algorithms.KindVignette)
	broken.Vignette.Sigma = -1
	good, err := config.Preset("night_vision", cfg.OutputDir)
	require.NoError(t, err)
	cfg.Jobs = []config.Job{
		{Name: "broken", Effect: broken, Outputs: map[string]string{algorithms.OutputMain: filepath.Join(cfg.OutputDir, "broken.mp4")}},
		good,
	}

	logger, _ := logtest.NewNullLogger()
	err = executeJobs(context.Background(), codec, cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job broken")
	assert.Equal(t, 4, codec.frames(good.Outputs[algorithms.OutputMain]))
}

func TestExecuteJobs_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Jobs = config.Presets(cfg.OutputDir)[:1]

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := logtest.NewNullLogger()
	err := executeJobs(ctx, newMemoryCodec(), cfg, logger)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, list(&out))

	text := out.String()
	for _, kind := range algorithms.Kinds() {
		assert.Contains(t, text, kind.String())
	}
	for _, name := range config.PresetNames() {
		assert.Contains(t, text, name)
	}
	for _, metric := range []string{"psnr", "mse", "mean_abs_diff"} {
		assert.Contains(t, text, metric)
	}
	assert.Contains(t, text, "0-65025")
	assert.Contains(t, text, "higher")
	assert.Contains(t, text, "kernel_size")
	assert.Contains(t, text, "hard,smooth")
}
