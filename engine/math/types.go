package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 matrix, used to represent projection, view and model transforms.
 * Elements are addressed as Data[row*4+col]. A vector is treated as a row and
 * multiplied from the left, so out[col] = sum over row of v[row] * Data[row*4+col].
 * Every builder in this package follows that convention.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}
