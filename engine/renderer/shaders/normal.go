package shaders

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// NormalShader is a debug view that maps the interpolated normal from
// [-1, 1] onto RGB.
type NormalShader struct{}

func NewNormalShader() *NormalShader {
	return &NormalShader{}
}

func (NormalShader) Color(v metadata.Vertex) metadata.Color {
	n := v.Normal
	if n.LengthSquared() > math.K_DIRECTION_EPSILON {
		n = n.Normalize()
	}
	return metadata.ColorFromColorful(colorful.Color{
		R: float64(n.X)*0.5 + 0.5,
		G: float64(n.Y)*0.5 + 0.5,
		B: float64(n.Z)*0.5 + 0.5,
	})
}

func (s NormalShader) Shade(v metadata.Vertex, cell metadata.Cell, secondRow bool) metadata.Cell {
	return PackHalfBlock(cell, s.Color(v), secondRow)
}
