package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Color
	}{
		{"named", "red", Color{1, 0, 0, 1}},
		{"named mixed case", "  White ", Color{1, 1, 1, 1}},
		{"hex6", "#00ff00", Color{0, 1, 0, 1}},
		{"hex3", "#00f", Color{0, 0, 1, 1}},
		{"hex8", "#ff000080", Color{1, 0, 0, 128.0 / 255}},
		{"0x prefix", "0x0000ff", Color{0, 0, 1, 1}},
		{"packed int", 0xff0000, Color{1, 0, 0, 1}},
		{"packed uint32", uint32(0x00ff00), Color{0, 1, 0, 1}},
		{"json number", float64(0x0000ff), Color{0, 0, 1, 1}},
		{"std color", color.NRGBA{R: 255, A: 255}, Color{1, 0, 0, 1}},
		{"vec4", [4]float32{0.1, 0.2, 0.3, 0.4}, Color{0.1, 0.2, 0.3, 0.4}},
		{"vec3", [3]float32{0.1, 0.2, 0.3}, Color{0.1, 0.2, 0.3, 1}},
		{"color", Color{0.5, 0.5, 0.5, 1}, Color{0.5, 0.5, 0.5, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.value)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.R, got.R, 1e-6)
			assert.InDelta(t, tt.want.G, got.G, 1e-6)
			assert.InDelta(t, tt.want.B, got.B, 1e-6)
			assert.InDelta(t, tt.want.A, got.A, 1e-6)
		})
	}
}

func TestParseColorRejects(t *testing.T) {
	for _, v := range []any{"", "notacolor", "#12", "#gggggg", -1, 0x1000000, 1.5, struct{}{}, nil} {
		_, err := ParseColor(v)
		assert.ErrorIs(t, err, ErrInvalidColor, "value %v", v)
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#00ff00", Color{0, 1, 0, 1}.Hex())
	assert.Equal(t, "#ff000080", Color{1, 0, 0, 128.0 / 255}.Hex())
}
