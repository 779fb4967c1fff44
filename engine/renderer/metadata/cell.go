package metadata

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

/** @brief A 24-bit colour. */
type Color struct {
	R, G, B uint8
}

// NewColor builds a colour from 8-bit channels.
func NewColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromColorful quantizes a go-colorful colour to 8 bits per channel.
func ColorFromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Colorful converts c for colour-space arithmetic.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Hex formats c as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

/**
 * @brief Selects which character a cell is drawn with.
 */
type Glyph uint8

const (
	/** @brief A space. */
	GLYPH_BLANK Glyph = iota
	/** @brief U+2588, whole cell in the foreground colour. */
	GLYPH_FULL
	/** @brief U+2580, top half foreground, bottom half background. */
	GLYPH_HALF_TOP
	/** @brief U+2584, bottom half foreground, top half background. */
	GLYPH_HALF_BOTTOM
	/** @brief U+2591 */
	GLYPH_SHADE_LIGHT
	/** @brief U+2592 */
	GLYPH_SHADE_MEDIUM
	/** @brief U+2593 */
	GLYPH_SHADE_DARK
)

var glyphRunes = [...]rune{
	GLYPH_BLANK:        ' ',
	GLYPH_FULL:         '█',
	GLYPH_HALF_TOP:     '▀',
	GLYPH_HALF_BOTTOM:  '▄',
	GLYPH_SHADE_LIGHT:  '░',
	GLYPH_SHADE_MEDIUM: '▒',
	GLYPH_SHADE_DARK:   '▓',
}

// Rune returns the character drawn for g. Unknown values draw as blank.
func (g Glyph) Rune() rune {
	if int(g) >= len(glyphRunes) {
		return ' '
	}
	return glyphRunes[g]
}

func (g Glyph) String() string {
	return string(g.Rune())
}

/**
 * @brief The state of one terminal character cell. One cell covers two
 * vertically adjacent pixels.
 */
type Cell struct {
	Glyph Glyph
	Fg    Color
	Bg    Color
	/** @brief True while no fragment has set the foreground this frame. */
	FgDefault bool
	/** @brief True while no fragment has set the background this frame. */
	BgDefault bool
}

// DefaultCell is the cleared state: blank glyph, both channels unset.
func DefaultCell() Cell {
	return Cell{
		Glyph:     GLYPH_BLANK,
		FgDefault: true,
		BgDefault: true,
	}
}

// IsDefault reports whether neither colour channel has been written.
func (c Cell) IsDefault() bool {
	return c.FgDefault && c.BgDefault
}
