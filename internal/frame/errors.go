package frame

import "errors"

// Error classes reported by the pipeline. Callers match them with errors.Is.
var (
	// ErrOpen: input unreadable or no encoder available for an output.
	ErrOpen = errors.New("open failed")
	// ErrInvalidStream: zero frame count or inconsistent metadata.
	ErrInvalidStream = errors.New("invalid stream")
	// ErrDecodeInterrupted: the source stopped mid-stream; output written so far is kept.
	ErrDecodeInterrupted = errors.New("decode interrupted")
	// ErrTransform: an effect received an out-of-range parameter or frame.
	ErrTransform = errors.New("transform error")
)
