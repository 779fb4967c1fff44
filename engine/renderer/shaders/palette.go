package shaders

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// ParseColor accepts a CSS/SVG colour name ("tomato") or #rrggbb / #rgb.
func ParseColor(s string) (metadata.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		c, err := colorful.Hex(name)
		if err != nil {
			return metadata.Color{}, fmt.Errorf("colour %q: %v: %w", s, err, core.ErrInvalidConfig)
		}
		return metadata.ColorFromColorful(c), nil
	}
	if rgba, ok := colornames.Map[name]; ok {
		return metadata.NewColor(rgba.R, rgba.G, rgba.B), nil
	}
	return metadata.Color{}, fmt.Errorf("unknown colour %q: %w", s, core.ErrInvalidConfig)
}

// MustParseColor is ParseColor for literals known to be valid.
func MustParseColor(s string) metadata.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Dim scales every channel of c by factor, clamped to [0, 1].
func Dim(c metadata.Color, factor float64) metadata.Color {
	f := math.Clamp(factor, 0, 1)
	cc := c.Colorful()
	return metadata.ColorFromColorful(colorful.Color{R: cc.R * f, G: cc.G * f, B: cc.B * f})
}
