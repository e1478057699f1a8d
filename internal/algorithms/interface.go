// Time-parameterized frame effects
package algorithms

import (
	"fmt"
	"strings"

	"video-effects-pipeline/internal/frame"
	"video-effects-pipeline/internal/schedule"
)

// Effect transforms one decoded frame into one or more named outputs.
//
// Prepare is called once per run, before any Apply, with the stream
// metadata and the channel count of the first decoded frame. After that
// Apply must not mutate the effect, so it is safe to call from several
// goroutines at once.
type Effect interface {
	Kind() Kind
	Name() string
	// Outputs lists the output names in the order Apply returns them.
	Outputs() []string
	// OutputChannels is the channel count of every output for a given input.
	OutputChannels(inputChannels int) int
	Prepare(meta frame.StreamMetadata, channels int) error
	Apply(src *frame.Buffer, pos schedule.Position) ([]Output, error)
	// Parameters reports the scheduled values used for a frame, for logging.
	Parameters(pos schedule.Position) (map[string]float64, error)
}

// Output is one named result of Apply.
type Output struct {
	Name  string
	Frame *frame.Buffer
}

// Output names
const (
	OutputMain   = "main"
	OutputHard   = "hard"
	OutputSmooth = "smooth"
	OutputNormal = "normal"
	OutputScaled = "scaled"
)

// Kind is the closed set of effects.
type Kind int

const (
	KindContrast Kind = iota
	KindMovingBlur
	KindRotateScale
	KindNightVision
	KindVignette
)

var kindNames = map[Kind]string{
	KindContrast:    "contrast",
	KindMovingBlur:  "moving_blur",
	KindRotateScale: "rotate_scale",
	KindNightVision: "night_vision",
	KindVignette:    "vignette",
}

// Kinds returns every effect kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindContrast, KindMovingBlur, KindRotateScale, KindNightVision, KindVignette}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the String form, with dashes or underscores.
func ParseKind(s string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range Kinds() {
		if kindNames[k] == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown effect: %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// New builds the effect selected by cfg.Kind from its sub-configuration.
func New(cfg Config) (Effect, error) {
	switch cfg.Kind {
	case KindContrast:
		return NewContrast(cfg.Contrast)
	case KindMovingBlur:
		return NewMovingBlur(cfg.MovingBlur)
	case KindRotateScale:
		return NewRotateScale(cfg.RotateScale)
	case KindNightVision:
		return NewNightVision(cfg.NightVision)
	case KindVignette:
		return NewVignette(cfg.Vignette)
	default:
		return nil, fmt.Errorf("%w: unknown effect kind %v", frame.ErrTransform, cfg.Kind)
	}
}

// ParameterInfo describes a configurable parameter of an effect
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float", "bool", "schedule"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
}

// Info is the catalogue entry printed by the CLI for an effect kind.
type Info struct {
	Kind        Kind
	Description string
	Outputs     []string
	Parameters  []ParameterInfo
}

// Describe returns the catalogue entry for k.
func Describe(k Kind) (Info, error) {
	d := DefaultConfig(k)
	switch k {
	case KindContrast:
		return Info{
			Kind:        k,
			Description: "Luma contrast stretched around the per-frame mean by a scheduled gain",
			Outputs:     []string{OutputMain},
			Parameters: []ParameterInfo{
				{Name: "gain", Type: "schedule", Default: d.Contrast.Gain.String(), Description: "Contrast gain over the clip"},
			},
		}, nil
	case KindMovingBlur:
		return Info{
			Kind:        k,
			Description: "Box-blurred vertical band sweeping left to right",
			Outputs:     []string{OutputHard, OutputSmooth},
			Parameters: []ParameterInfo{
				{Name: "kernel_size", Type: "int", Min: 1, Default: d.MovingBlur.KernelSize, Description: "Box blur kernel size"},
				{Name: "band_width", Type: "int", Min: 0, Default: d.MovingBlur.BandWidth, Description: "Width of the blurred band in pixels"},
			},
		}, nil
	case KindRotateScale:
		return Info{
			Kind:        k,
			Description: "Rotation about the frame centre, plain and scaled to avoid corner clipping",
			Outputs:     []string{OutputNormal, OutputScaled},
			Parameters: []ParameterInfo{
				{Name: "final_angle", Type: "float", Default: d.RotateScale.FinalAngle, Description: "Angle in degrees reached on the last frame"},
			},
		}, nil
	case KindNightVision:
		return Info{
			Kind:        k,
			Description: "Green-phosphor night vision with noise, scan lines and falloff",
			Outputs:     []string{OutputMain},
			Parameters: []ParameterInfo{
				{Name: "gain", Type: "schedule", Default: d.NightVision.Gain.String(), Description: "Luma gain over the clip"},
				{Name: "offset", Type: "float", Default: d.NightVision.Offset, Description: "Luma offset"},
				{Name: "noise_stddev", Type: "float", Min: 0.0, Default: d.NightVision.NoiseStdDev, Description: "Gaussian noise standard deviation"},
				{Name: "scan_lines", Type: "bool", Default: d.NightVision.ScanLines, Description: "Darken scan-line bands periodically"},
				{Name: "scan_line_period", Type: "int", Min: 1, Default: d.NightVision.ScanLinePeriod, Description: "Frames between scan-line frames"},
				{Name: "falloff", Type: "float", Min: 0.0, Max: 1.0, Default: d.NightVision.Falloff, Description: "Radial falloff strength"},
			},
		}, nil
	case KindVignette:
		return Info{
			Kind:        k,
			Description: "Gaussian radial vignette, static or pulsating",
			Outputs:     []string{OutputMain},
			Parameters: []ParameterInfo{
				{Name: "sigma", Type: "float", Min: 0.0, Default: d.Vignette.Sigma, Description: "Gaussian width relative to the half frame"},
				{Name: "pulsating", Type: "bool", Default: d.Vignette.Pulsating, Description: "Modulate sigma over the clip"},
				{Name: "pulse", Type: "schedule", Default: d.Vignette.Pulse.String(), Description: "Sigma multiplier when pulsating"},
			},
		}, nil
	default:
		return Info{}, fmt.Errorf("unknown effect kind %v", k)
	}
}

// transformErr wraps a parameter or frame problem as a transform error.
func transformErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", frame.ErrTransform, fmt.Sprintf(format, args...))
}

// checkFrame verifies src against the shape recorded by Prepare.
func checkFrame(src *frame.Buffer, width, height int) error {
	if width == 0 {
		return transformErr("effect used before Prepare")
	}
	if err := src.Validate(); err != nil {
		return transformErr("%v", err)
	}
	if src.Width != width || src.Height != height {
		return transformErr("frame size %dx%d differs from stream size %dx%d",
			src.Width, src.Height, width, height)
	}
	return nil
}
