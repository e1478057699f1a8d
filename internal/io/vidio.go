package io

import (
	"fmt"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/sirupsen/logrus"

	"video-effects-pipeline/internal/frame"
)

// VidioCodec decodes and encodes through the ffmpeg binaries on PATH.
// Vidio exchanges RGBA frames; they are converted to and from BGR here.
type VidioCodec struct {
	logger logrus.FieldLogger
}

func NewVidioCodec(logger logrus.FieldLogger) *VidioCodec {
	return &VidioCodec{logger: logger}
}

func (c *VidioCodec) OpenReader(path string) (Reader, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, openErr("failed to open video %s: %v", path, err)
	}

	meta := frame.StreamMetadata{
		FPS:         video.FPS(),
		Width:       video.Width(),
		Height:      video.Height(),
		TotalFrames: video.Frames(),
	}

	c.logger.WithFields(logrus.Fields{
		"path":    path,
		"fps":     meta.FPS,
		"width":   meta.Width,
		"height":  meta.Height,
		"frames":  meta.TotalFrames,
		"codec":   video.Codec(),
		"bitrate": video.Bitrate(),
	}).Info("Video opened successfully")

	return &vidioReader{video: video, meta: meta}, nil
}

func (c *VidioCodec) OpenWriter(path string, meta frame.StreamMetadata, channels int) (Sink, string, error) {
	if channels != 1 && channels != 3 {
		return nil, "", openErr("unsupported number of channels: %d", channels)
	}

	options := vidio.Options{
		FPS: meta.FPS,
	}
	writer, err := vidio.NewVideoWriter(path, meta.Width, meta.Height, &options)
	if err != nil {
		return nil, "", openErr("failed to create video writer %s: %v", path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"path":     path,
		"channels": channels,
	}).Info("Video writer opened")

	return &vidioSink{
		writer:   writer,
		width:    meta.Width,
		height:   meta.Height,
		channels: channels,
		rgba:     make([]byte, meta.Width*meta.Height*4),
	}, path, nil
}

type vidioReader struct {
	video   *vidio.Video
	meta    frame.StreamMetadata
	decoded int
	err     error
	done    bool
}

func (r *vidioReader) Metadata() frame.StreamMetadata {
	return r.meta
}

func (r *vidioReader) Next() (*frame.Buffer, bool) {
	if r.done {
		return nil, false
	}
	if !r.video.Read() {
		r.done = true
		if r.decoded < r.meta.TotalFrames {
			r.err = interruptedErr(r.decoded, r.meta.TotalFrames, nil)
		}
		return nil, false
	}

	b, err := FromRGBA(r.video.FrameBuffer(), r.meta.Width, r.meta.Height)
	if err != nil {
		r.done = true
		r.err = interruptedErr(r.decoded, r.meta.TotalFrames, err)
		return nil, false
	}

	r.decoded++
	return b, true
}

func (r *vidioReader) Err() error {
	return r.err
}

func (r *vidioReader) Close() error {
	r.video.Close()
	return nil
}

type vidioSink struct {
	writer   *vidio.VideoWriter
	width    int
	height   int
	channels int
	rgba     []byte
}

func (s *vidioSink) Write(f *frame.Buffer) error {
	if f.Width != s.width || f.Height != s.height || f.Channels != s.channels {
		return fmt.Errorf("frame %dx%dx%d does not match writer %dx%dx%d",
			f.Width, f.Height, f.Channels, s.width, s.height, s.channels)
	}
	ToRGBA(f, s.rgba)
	return s.writer.Write(s.rgba)
}

func (s *vidioSink) Close() error {
	s.writer.Close()
	return nil
}

// FromRGBA converts an RGBA frame to a 3-channel BGR buffer, dropping alpha.
func FromRGBA(rgba []byte, width, height int) (*frame.Buffer, error) {
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("RGBA frame has %d bytes, expected %d", len(rgba), width*height*4)
	}

	b := frame.New(width, height, 3)
	for i, j := 0, 0; i < len(rgba); i, j = i+4, j+3 {
		b.Pix[j] = rgba[i+2]
		b.Pix[j+1] = rgba[i+1]
		b.Pix[j+2] = rgba[i]
	}
	return b, nil
}

// ToRGBA writes f into dst as opaque RGBA. Gray frames are replicated
// across the colour channels.
func ToRGBA(f *frame.Buffer, dst []byte) {
	n := f.Width * f.Height
	for p := 0; p < n; p++ {
		o := p * 4
		if f.Channels == 1 {
			v := f.Pix[p]
			dst[o], dst[o+1], dst[o+2] = v, v, v
		} else {
			s := p * 3
			dst[o], dst[o+1], dst[o+2] = f.Pix[s+2], f.Pix[s+1], f.Pix[s]
		}
		dst[o+3] = 255
	}
}
