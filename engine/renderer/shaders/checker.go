package shaders

import (
	stdmath "math"

	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

const (
	/** @brief Checker squares per texture unit along each axis. */
	DEFAULT_CHECKER_FREQUENCY float32 = 2.0
	/** @brief Brightness of the secondary checker colour relative to the primary. */
	DEFAULT_CHECKER_DIM float64 = 0.4
)

/**
 * @brief Procedural checkerboard over the texture coordinates.
 */
type CheckerShader struct {
	Primary   metadata.Color
	Secondary metadata.Color
	/** @brief Squares per texture unit. Non-positive values use the default. */
	Frequency float32
}

// NewCheckerShader returns a checker of primary and a dimmed primary.
func NewCheckerShader(primary metadata.Color) *CheckerShader {
	return &CheckerShader{
		Primary:   primary,
		Secondary: Dim(primary, DEFAULT_CHECKER_DIM),
		Frequency: DEFAULT_CHECKER_FREQUENCY,
	}
}

// Pattern reports whether (s, t) falls on a primary square.
func (c *CheckerShader) Pattern(s, t float32) bool {
	m := c.Frequency
	if m <= 0 {
		m = DEFAULT_CHECKER_FREQUENCY
	}
	u := stdmath.Mod(float64(s*m), 1.0) > 0.5
	v := stdmath.Mod(float64(t*m), 1.0) < 0.5
	return u != v
}

func (c *CheckerShader) Color(v metadata.Vertex) metadata.Color {
	if c.Pattern(v.Texcoord.X, v.Texcoord.Y) {
		return c.Primary
	}
	return c.Secondary
}

func (c *CheckerShader) Shade(v metadata.Vertex, cell metadata.Cell, secondRow bool) metadata.Cell {
	return PackHalfBlock(cell, c.Color(v), secondRow)
}
