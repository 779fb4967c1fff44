package metadata

import (
	"github.com/spaghettifunk/halfblock/engine/math"
)

/**
 * @brief A single mesh vertex. Attributes always travel together through
 * the pipeline even when a shader ignores some of them.
 */
type Vertex struct {
	/** @brief Homogeneous position. Object space on input, clip space after the MVP transform. */
	Position math.Vec4
	/** @brief Texture coordinate. */
	Texcoord math.Vec2
	/** @brief Surface normal. */
	Normal math.Vec3
}

/**
 * @brief Exactly three vertices. Winding is significant: triangles whose
 * screen-space area comes out negative are culled by the rasterizer.
 */
type Triangle [3]Vertex

/**
 * @brief An ordered list of triangles with every attribute already resolved
 * per vertex.
 */
type Mesh struct {
	/** @brief Name used in logs. */
	Name string
	/** @brief The triangles, drawn in slice order. */
	Triangles []Triangle
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Transform returns a copy of t with every position multiplied by mvp and
// every normal carried into world space by normalMatrix (see
// math.Mat4.NormalMatrix) and renormalized. Texture coordinates pass through.
func (t Triangle) Transform(mvp, normalMatrix math.Mat4) Triangle {
	var out Triangle
	for i := range t {
		out[i] = t[i]
		out[i].Position = t[i].Position.Transform(mvp)
		n := t[i].Normal.TransformDirection(normalMatrix)
		if n.LengthSquared() > math.K_DIRECTION_EPSILON {
			n = n.Normalize()
		}
		out[i].Normal = n
	}
	return out
}
