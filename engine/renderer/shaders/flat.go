package shaders

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

const DEFAULT_AMBIENT float32 = 0.25

/**
 * @brief Single colour with Lambert lighting from one directional light.
 * The light direction is given in the same space as the mesh normals.
 * Lighting is mixed in Lab space so dark tones keep their hue.
 */
type FlatShader struct {
	Base metadata.Color
	/** @brief Direction towards the light. Zero disables lighting. */
	Light math.Vec3
	/** @brief Minimum brightness in [0, 1]. */
	Ambient float32

	base  colorful.Color
	black colorful.Color
}

func NewFlatShader(base metadata.Color, light math.Vec3, ambient float32) *FlatShader {
	if light.LengthSquared() > math.K_DIRECTION_EPSILON {
		light = light.Normalize()
	}
	return &FlatShader{
		Base:    base,
		Light:   light,
		Ambient: math.Clamp(ambient, 0, 1),
		base:    base.Colorful(),
		black:   colorful.Color{},
	}
}

// Intensity is the light reaching a surface with normal n.
func (f *FlatShader) Intensity(n math.Vec3) float32 {
	if f.Light.LengthSquared() <= math.K_DIRECTION_EPSILON || n.LengthSquared() <= math.K_DIRECTION_EPSILON {
		return 1
	}
	diffuse := max(n.Normalize().Dot(f.Light), 0)
	return math.Clamp(f.Ambient+(1-f.Ambient)*diffuse, 0, 1)
}

func (f *FlatShader) Color(v metadata.Vertex) metadata.Color {
	i := f.Intensity(v.Normal)
	if i >= 1 {
		return f.Base
	}
	return metadata.ColorFromColorful(f.black.BlendLab(f.base, float64(i)))
}

func (f *FlatShader) Shade(v metadata.Vertex, cell metadata.Cell, secondRow bool) metadata.Cell {
	return PackHalfBlock(cell, f.Color(v), secondRow)
}
