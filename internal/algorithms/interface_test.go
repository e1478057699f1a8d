package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"video-effects-pipeline/internal/frame"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"contrast", KindContrast, false},
		{"moving_blur", KindMovingBlur, false},
		{"moving-blur", KindMovingBlur, false},
		{" Rotate_Scale ", KindRotateScale, false},
		{"night-vision", KindNightVision, false},
		{"vignette", KindVignette, false},
		{"sepia", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, k)
		})
	}
}

func TestNew_DefaultsForEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			effect, err := New(DefaultConfig(k))
			require.NoError(t, err)
			assert.Equal(t, k, effect.Kind())
			assert.NotEmpty(t, effect.Name())

			info, err := Describe(k)
			require.NoError(t, err)
			assert.Equal(t, info.Outputs, effect.Outputs())
			assert.NotEmpty(t, info.Parameters)
		})
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Config{Kind: Kind(17)})
	assert.ErrorIs(t, err, frame.ErrTransform)

	_, err = Describe(Kind(17))
	assert.Error(t, err)
	assert.Equal(t, "Kind(17)", Kind(17).String())
}

func TestOutputChannels(t *testing.T) {
	tests := []struct {
		kind     Kind
		in       int
		expected int
	}{
		{KindContrast, 3, 1},
		{KindMovingBlur, 3, 3},
		{KindMovingBlur, 1, 1},
		{KindRotateScale, 3, 3},
		{KindNightVision, 1, 3},
		{KindVignette, 1, 1},
	}

	for _, tt := range tests {
		effect, err := New(DefaultConfig(tt.kind))
		require.NoError(t, err)
		assert.Equal(t, tt.expected, effect.OutputChannels(tt.in), "%s with %d channels", tt.kind, tt.in)
	}
}

func TestConfig_YAML(t *testing.T) {
	doc := `
kind: night-vision
night_vision:
  gain: {kind: sine, center: 1.1, amplitude: 0.1, cycles: 1}
  offset: 5
  noise_stddev: 2
  scan_lines: false
  falloff: 0.5
`
	cfg := DefaultConfig(KindContrast)
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	assert.Equal(t, KindNightVision, cfg.Kind)
	assert.Equal(t, 5.0, cfg.NightVision.Offset)
	assert.False(t, cfg.NightVision.ScanLines)
	assert.Equal(t, 1.1, cfg.NightVision.Gain.Center)
	// untouched fields keep their defaults
	assert.Equal(t, 21, cfg.MovingBlur.KernelSize)

	effect, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, KindNightVision, effect.Kind())
}
