// Video decoding and encoding adapters
package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"video-effects-pipeline/internal/frame"
)

// Reader is a sequence of decoded frames. Next returns false at the end of
// the stream or on a decode failure; Err tells the two apart.
type Reader interface {
	Metadata() frame.StreamMetadata
	Next() (*frame.Buffer, bool)
	Err() error
	Close() error
}

// Sink consumes frames in order.
type Sink interface {
	Write(f *frame.Buffer) error
	Close() error
}

// Codec opens readers and writers for one container/codec backend.
type Codec interface {
	OpenReader(path string) (Reader, error)
	// OpenWriter opens an encoder for frames with the given channel count.
	// The returned path is the file actually written, which differs from
	// path when the backend falls back to another container.
	OpenWriter(path string, meta frame.StreamMetadata, channels int) (Sink, string, error)
}

// Backend names accepted by NewCodec
const (
	BackendGoCV  = "gocv"
	BackendVidio = "vidio"
)

// Backends lists the supported backend names
func Backends() []string {
	return []string{BackendGoCV, BackendVidio}
}

// NewCodec selects a backend by name. An empty name selects gocv.
func NewCodec(backend string, logger logrus.FieldLogger) (Codec, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendGoCV, "opencv":
		return NewGoCVCodec(logger), nil
	case BackendVidio, "ffmpeg":
		return NewVidioCodec(logger), nil
	default:
		return nil, fmt.Errorf("unknown codec backend %q (supported: %s)", backend, strings.Join(Backends(), ", "))
	}
}

// WithExtension replaces the extension of path with ext.
func WithExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func openErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", frame.ErrOpen, fmt.Sprintf(format, args...))
}

func interruptedErr(decoded, total int, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: decoded %d of %d frames: %v", frame.ErrDecodeInterrupted, decoded, total, cause)
	}
	return fmt.Errorf("%w: decoded %d of %d frames", frame.ErrDecodeInterrupted, decoded, total)
}

// Copy writes every frame of r to s and returns the number written. It does
// not close either end.
func Copy(s Sink, r Reader) (int, error) {
	n := 0
	for {
		f, ok := r.Next()
		if !ok {
			return n, r.Err()
		}
		if err := s.Write(f); err != nil {
			return n, fmt.Errorf("failed to write frame %d: %w", n, err)
		}
		n++
	}
}
