// Package schedule maps a frame's position in a clip to effect parameters.
//
// Every function here is pure: the same (index, total, spec) always yields
// the same value.
package schedule

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects the rule that turns progress into a value.
type Kind int

const (
	Linear Kind = iota
	Sine
	Constant
)

func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Sine:
		return "sine"
	case Constant:
		return "constant"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts the names produced by String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return Linear, nil
	case "sine", "sin":
		return Sine, nil
	case "constant", "const":
		return Constant, nil
	default:
		return 0, fmt.Errorf("unknown schedule kind: %q", s)
	}
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

// Spec describes one schedule. Only the fields of its Kind are read.
type Spec struct {
	Kind      Kind    `yaml:"kind"`
	Lo        float64 `yaml:"lo,omitempty"`
	Hi        float64 `yaml:"hi,omitempty"`
	Center    float64 `yaml:"center,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Cycles    float64 `yaml:"cycles,omitempty"`
	Value     float64 `yaml:"value,omitempty"`
}

func LinearRamp(lo, hi float64) Spec {
	return Spec{Kind: Linear, Lo: lo, Hi: hi}
}

func SineWave(center, amplitude, cycles float64) Spec {
	return Spec{Kind: Sine, Center: center, Amplitude: amplitude, Cycles: cycles}
}

func Fixed(v float64) Spec {
	return Spec{Kind: Constant, Value: v}
}

// Validate rejects unknown kinds and non-finite parameters.
func (s Spec) Validate() error {
	var params []float64
	switch s.Kind {
	case Linear:
		params = []float64{s.Lo, s.Hi}
	case Sine:
		params = []float64{s.Center, s.Amplitude, s.Cycles}
		if s.Cycles < 0 {
			return fmt.Errorf("sine cycles must be non-negative, got %v", s.Cycles)
		}
	case Constant:
		params = []float64{s.Value}
	default:
		return fmt.Errorf("unknown schedule kind: %v", s.Kind)
	}
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%v schedule has non-finite parameter %v", s.Kind, p)
		}
	}
	return nil
}

// At evaluates the schedule at a progress value.
func (s Spec) At(progress float64) float64 {
	switch s.Kind {
	case Linear:
		return s.Lo + (s.Hi-s.Lo)*progress
	case Sine:
		return s.Center + s.Amplitude*math.Sin(2*math.Pi*progress*s.Cycles)
	default:
		return s.Value
	}
}

func (s Spec) String() string {
	switch s.Kind {
	case Linear:
		return fmt.Sprintf("linear(%g→%g)", s.Lo, s.Hi)
	case Sine:
		return fmt.Sprintf("sine(%g±%g, %g cycles)", s.Center, s.Amplitude, s.Cycles)
	default:
		return fmt.Sprintf("constant(%g)", s.Value)
	}
}

// Evaluate computes the value of spec for frame index of total.
func Evaluate(index, total int, spec Spec) (float64, error) {
	p, err := Position{Index: index, Total: total}.Progress()
	if err != nil {
		return 0, err
	}
	return spec.At(p), nil
}
