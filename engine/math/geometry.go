package math

// FaceNormal returns the unit normal of the triangle p0, p1, p2 following the
// right-hand rule on the edge order. Returns the zero vector for collinear points.
func FaceNormal(p0, p1, p2 Vec3) Vec3 {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)

	c := edge1.Cross(edge2)
	if c.LengthSquared() < K_DIRECTION_EPSILON {
		return NewVec3Zero()
	}
	return c.Normalize()
}
