package metadata

/**
 * @brief A fragment shader. Called once per accepted fragment with the
 * perspective-corrected vertex, the current state of the cell the fragment
 * falls in, and whether the fragment sits on the cell's lower pixel row.
 * The returned cell replaces the current one.
 */
type Shader interface {
	Shade(v Vertex, cell Cell, secondRow bool) Cell
}

// ShaderFunc adapts a plain function to the Shader interface.
type ShaderFunc func(v Vertex, cell Cell, secondRow bool) Cell

func (f ShaderFunc) Shade(v Vertex, cell Cell, secondRow bool) Cell {
	return f(v, cell, secondRow)
}
