package common

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned when a value cannot be interpreted as a color.
var ErrInvalidColor = errors.New("invalid color")

// Color is a non-premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is the default surface color for materials without a base color factor.
var White = Color{1, 1, 1, 1}

// Vec4 returns the color as an RGBA array, the layout used by materials and GPU uniforms.
func (c Color) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Hex formats the color as #rrggbb, or #rrggbbaa when not fully opaque.
func (c Color) Hex() string {
	to8 := func(f float32) uint8 { return uint8(Clamp(f, 0, 1)*255 + 0.5) }
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

// ColorFromVec4 builds a Color from an RGBA array.
func ColorFromVec4(v [4]float32) Color {
	return Color{v[0], v[1], v[2], v[3]}
}

// ParseColor interprets the value forms a host UI typically hands over when asking for a color change.
//
// Accepted forms:
//   - named color strings (CSS/SVG names, case-insensitive), e.g. "red"
//   - hex strings: #rgb, #rrggbb, #rrggbbaa, optionally with a 0x prefix instead of #
//   - integers holding a packed 0xRRGGBB value
//   - Color, color.Color, [3]float32 and [4]float32
//
// Parameters:
//   - value: the color value to interpret
//
// Returns:
//   - Color: the parsed color
//   - error: ErrInvalidColor wrapped with the offending value if parsing fails
func ParseColor(value any) (Color, error) {
	switch v := value.(type) {
	case Color:
		return v, nil
	case *Color:
		if v == nil {
			break
		}
		return *v, nil
	case [4]float32:
		return ColorFromVec4(v), nil
	case [3]float32:
		return Color{v[0], v[1], v[2], 1}, nil
	case string:
		return parseColorString(v)
	case int:
		return packedColor(int64(v))
	case int32:
		return packedColor(int64(v))
	case int64:
		return packedColor(v)
	case uint32:
		return packedColor(int64(v))
	case uint64:
		return packedColor(int64(v))
	case float64:
		// JSON numbers decode as float64.
		if v != float64(int64(v)) {
			break
		}
		return packedColor(int64(v))
	case color.Color:
		return fromStdColor(v), nil
	}
	return Color{}, fmt.Errorf("%w: %v", ErrInvalidColor, value)
}

func parseColorString(s string) (Color, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if str == "" {
		return Color{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}

	if named, ok := colornames.Map[str]; ok {
		return fromStdColor(named), nil
	}

	hex, ok := strings.CutPrefix(str, "#")
	if !ok {
		hex, ok = strings.CutPrefix(str, "0x")
	}
	if !ok {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	if len(hex) == 6 {
		return unpackRGB(uint32(n)), nil
	}
	return Color{
		R: float32(n>>24&0xff) / 255,
		G: float32(n>>16&0xff) / 255,
		B: float32(n>>8&0xff) / 255,
		A: float32(n&0xff) / 255,
	}, nil
}

func packedColor(n int64) (Color, error) {
	if n < 0 || n > 0xffffff {
		return Color{}, fmt.Errorf("%w: packed value %#x out of range", ErrInvalidColor, n)
	}
	return unpackRGB(uint32(n)), nil
}

func unpackRGB(n uint32) Color {
	return Color{
		R: float32(n>>16&0xff) / 255,
		G: float32(n>>8&0xff) / 255,
		B: float32(n&0xff) / 255,
		A: 1,
	}
}

func fromStdColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}
