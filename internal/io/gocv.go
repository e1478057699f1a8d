package io

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"video-effects-pipeline/internal/frame"
)

// Encoders tried in order by the gocv writer. The fallback changes the
// container to .avi since XVID is not accepted in mp4 by most builds.
var gocvEncoders = []struct {
	fourcc string
	ext    string
}{
	{"mp4v", ""},
	{"XVID", ".avi"},
}

// GoCVCodec reads and writes video through OpenCV's VideoCapture and
// VideoWriter.
type GoCVCodec struct {
	logger logrus.FieldLogger
}

func NewGoCVCodec(logger logrus.FieldLogger) *GoCVCodec {
	return &GoCVCodec{
		logger: logger,
	}
}

func (c *GoCVCodec) OpenReader(path string) (Reader, error) {
	c.logger.WithField("path", path).Debug("Opening video")

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, openErr("failed to open video %s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, openErr("failed to open video %s", path)
	}

	meta := frame.StreamMetadata{
		FPS:         capture.Get(gocv.VideoCaptureFPS),
		Width:       int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:      int(capture.Get(gocv.VideoCaptureFrameHeight)),
		TotalFrames: int(math.Max(0, capture.Get(gocv.VideoCaptureFrameCount))),
	}

	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"fps":    meta.FPS,
		"width":  meta.Width,
		"height": meta.Height,
		"frames": meta.TotalFrames,
	}).Info("Video opened successfully")

	return &gocvReader{
		capture: capture,
		meta:    meta,
		mat:     gocv.NewMat(),
	}, nil
}

func (c *GoCVCodec) OpenWriter(path string, meta frame.StreamMetadata, channels int) (Sink, string, error) {
	if channels != 1 && channels != 3 {
		return nil, "", openErr("unsupported number of channels: %d", channels)
	}

	var lastErr error
	for _, enc := range gocvEncoders {
		target := path
		if enc.ext != "" {
			target = WithExtension(path, enc.ext)
		}

		writer, err := gocv.VideoWriterFile(target, enc.fourcc, meta.FPS, meta.Width, meta.Height, channels == 3)
		if err == nil && writer.IsOpened() {
			c.logger.WithFields(logrus.Fields{
				"path":     target,
				"fourcc":   enc.fourcc,
				"channels": channels,
			}).Info("Video writer opened")
			return &gocvSink{writer: writer, width: meta.Width, height: meta.Height, channels: channels}, target, nil
		}
		if writer != nil {
			writer.Close()
		}
		if err == nil {
			err = fmt.Errorf("encoder %s unavailable", enc.fourcc)
		}
		lastErr = err

		c.logger.WithFields(logrus.Fields{
			"path":   target,
			"fourcc": enc.fourcc,
		}).Warn("Encoder unavailable, trying next")
	}

	return nil, "", openErr("no encoder available for %s: %v", path, lastErr)
}

type gocvReader struct {
	capture *gocv.VideoCapture
	meta    frame.StreamMetadata
	mat     gocv.Mat
	decoded int
	err     error
	done    bool
}

func (r *gocvReader) Metadata() frame.StreamMetadata {
	return r.meta
}

func (r *gocvReader) Next() (*frame.Buffer, bool) {
	if r.done {
		return nil, false
	}

	if !r.capture.Read(&r.mat) || r.mat.Empty() {
		r.done = true
		if r.decoded < r.meta.TotalFrames {
			r.err = interruptedErr(r.decoded, r.meta.TotalFrames, nil)
		}
		return nil, false
	}

	b, err := frame.FromMat(r.mat)
	if err != nil {
		r.done = true
		r.err = interruptedErr(r.decoded, r.meta.TotalFrames, err)
		return nil, false
	}

	r.decoded++
	return b, true
}

func (r *gocvReader) Err() error {
	return r.err
}

func (r *gocvReader) Close() error {
	r.mat.Close()
	return r.capture.Close()
}

type gocvSink struct {
	writer   *gocv.VideoWriter
	width    int
	height   int
	channels int
}

func (s *gocvSink) Write(f *frame.Buffer) error {
	if f.Width != s.width || f.Height != s.height || f.Channels != s.channels {
		return fmt.Errorf("frame %dx%dx%d does not match writer %dx%dx%d",
			f.Width, f.Height, f.Channels, s.width, s.height, s.channels)
	}

	mat, err := f.ToMat()
	if err != nil {
		return err
	}
	defer mat.Close()

	return s.writer.Write(mat)
}

func (s *gocvSink) Close() error {
	return s.writer.Close()
}
