package verse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA color with each channel expressed in [0, 1]. The zero
// value means the channel set is absent; ColorWhite is the conventional
// default for rendered assets.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// ColorWhite is fully opaque white.
var ColorWhite = Color{R: 1, G: 1, B: 1, A: 1}

// ColorFromHex parses a #RGB, #RRGGBB, or #RRGGBBAA string. The leading #
// is optional and hex digits are case-insensitive. Alpha defaults to fully
// opaque when the string omits it.
func ColorFromHex(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3:
		var expanded strings.Builder
		for _, digit := range hex {
			expanded.WriteRune(digit)
			expanded.WriteRune(digit)
		}
		hex = expanded.String()
	case 6, 8:
	default:
		return Color{}, newError(CodeValidation, "parse color", fmt.Sprintf("invalid hex color %q", value))
	}

	channels := make([]float64, 0, 4)
	for i := 0; i+2 <= len(hex); i += 2 {
		parsed, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return Color{}, newError(CodeValidation, "parse color", fmt.Sprintf("invalid hex color %q", value))
		}
		channels = append(channels, float64(parsed)/255)
	}

	color := Color{R: channels[0], G: channels[1], B: channels[2], A: 1}
	if len(channels) == 4 {
		color.A = channels[3]
	}
	return color, nil
}

// Hex renders the color as #rrggbb, or #rrggbbaa when includeAlpha is set.
// Channels are clamped before conversion, and rounding keeps
// ColorFromHex(c.Hex(...)) an exact round trip.
func (c Color) Hex(includeAlpha bool) string {
	clamped := c.Clamp()
	r := int(math.Round(clamped.R * 255))
	g := int(math.Round(clamped.G * 255))
	b := int(math.Round(clamped.B * 255))
	if includeAlpha {
		return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, int(math.Round(clamped.A*255)))
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Clamp returns the color with every channel forced into [0, 1].
func (c Color) Clamp() Color {
	return Color{
		R: clampChannel(c.R),
		G: clampChannel(c.G),
		B: clampChannel(c.B),
		A: clampChannel(c.A),
	}
}

// IsZero reports whether no channel has been set.
func (c Color) IsZero() bool {
	return c == Color{}
}

func clampChannel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
