package math

import (
	"fmt"
	m "math"

	"github.com/spaghettifunk/halfblock/engine/core"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
	/** @brief Squared length under which a direction is considered zero. */
	K_DIRECTION_EPSILON float32 = 1e-12
)

/**
 * Note that these are here in order to prevent having to import the
 * entire standard math package everywhere.
 */
func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func ktan(x float32) float32 {
	return float32(m.Tan(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// Sin is the float32 sine.
func Sin(x float32) float32 {
	return ksin(x)
}

// Cos is the float32 cosine.
func Cos(x float32) float32 {
	return kcos(x)
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float32) bool {
	f := float64(x)
	return !m.IsNaN(f) && !m.IsInf(f, 0)
}

// ------------------------------------------
// Vector 2
// ------------------------------------------

/**
 * @brief Creates and returns a new 2-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @return A new 2-element vector.
 */
func NewVec2(x, y float32) Vec2 {
	return Vec2{
		X: x,
		Y: y,
	}
}

/**
 *  Adds other to v and returns a copy of the result.
 */
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

/**
 * Subtracts other from v and returns a copy of the result.
 */
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

/**
 * Multiplies every component of v by scalar.
 */
func (v Vec2) MulScalar(scalar float32) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

/**
 * @brief Linearly interpolates between v (amount 0) and other (amount 1).
 */
func (v Vec2) Lerp(other Vec2, amount float32) Vec2 {
	return Vec2{
		v.X + (other.X-v.X)*amount,
		v.Y + (other.Y-v.Y)*amount,
	}
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec2) Compare(other Vec2, tolerance float32) bool {
	if kabs(v.X-other.X) > tolerance {
		return false
	}
	if kabs(v.Y-other.Y) > tolerance {
		return false
	}
	return true
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @param z The z value.
 * @return A new 3-element vector.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{
		X: x,
		Y: y,
		Z: z,
	}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 0.0f.
 */
func NewVec3Zero() Vec3 {
	return Vec3{0.0, 0.0, 0.0}
}

/**
 * @brief Returns a new Vec4 using v as the x, y and z components and w for w.
 */
func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

/**
 * @brief Adds other to v and returns a copy of the result.
 */
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		v.X + other.X,
		v.Y + other.Y,
		v.Z + other.Z}
}

/**
 * @brief Subtracts other from v and returns a copy of the result.
 */
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		v.X - other.X,
		v.Y - other.Y,
		v.Z - other.Z}
}

/**
 * @brief Multiplies all elements of v by scalar and returns a copy of the result.
 */
func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{
		v.X * scalar,
		v.Y * scalar,
		v.Z * scalar}
}

/**
 * @brief Linearly interpolates between v (amount 0) and other (amount 1).
 */
func (v Vec3) Lerp(other Vec3, amount float32) Vec3 {
	return Vec3{
		v.X + (other.X-v.X)*amount,
		v.Y + (other.Y-v.Y)*amount,
		v.Z + (other.Z-v.Z)*amount,
	}
}

/**
 * @brief Returns the squared length of the provided vector.
 */
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

/**
 * @brief Returns the length of the provided vector.
 */
func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

/**
 * @brief Returns a unit-length copy of the vector. A zero vector produces
 * NaN components; callers that cannot rule that out check LengthSquared first.
 */
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	return Vec3{
		v.X / length,
		v.Y / length,
		v.Z / length}
}

/**
 * @brief Returns the dot product between the provided vectors.
 */
func (v Vec3) Dot(other Vec3) float32 {
	p := float32(0)
	p += v.X * other.X
	p += v.Y * other.Y
	p += v.Z * other.Z
	return p
}

/**
 * @brief Calculates and returns the cross product of the supplied vectors.
 * The cross product is a new vector which is orthoganal to both provided vectors.
 */
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X}
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 *
 * @param tolerance The difference tolerance. Typically K_FLOAT_EPSILON or similar.
 * @return True if within tolerance; otherwise false.
 */
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	if kabs(v.X-other.X) > tolerance {
		return false
	}

	if kabs(v.Y-other.Y) > tolerance {
		return false
	}

	if kabs(v.Z-other.Z) > tolerance {
		return false
	}

	return true
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

/**
 * @brief Creates and returns a new 4-element vector using the supplied values.
 */
func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{
		X: x,
		Y: y,
		Z: z,
		W: w,
	}
}

/**
 * @brief Returns a new Vec3 containing the x, y and z components of v,
 * dropping the w component.
 */
func (v Vec4) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

/**
 * @brief Linearly interpolates all four components between v (amount 0)
 * and other (amount 1).
 */
func (v Vec4) Lerp(other Vec4, amount float32) Vec4 {
	return Vec4{
		v.X + (other.X-v.X)*amount,
		v.Y + (other.Y-v.Y)*amount,
		v.Z + (other.Z-v.Z)*amount,
		v.W + (other.W-v.W)*amount,
	}
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec4) Compare(other Vec4, tolerance float32) bool {
	if kabs(v.X-other.X) > tolerance {
		return false
	}
	if kabs(v.Y-other.Y) > tolerance {
		return false
	}
	if kabs(v.Z-other.Z) > tolerance {
		return false
	}
	if kabs(v.W-other.W) > tolerance {
		return false
	}
	return true
}

/**
 * @brief Transform v by m, treating v as a row vector on the left of m:
 * out[col] = sum over row of m[row][col] * v[row]. The sum is accumulated
 * in row order starting from zero so repeated transforms stay bit-identical.
 *
 * @param m The matrix to transform by.
 * @return A transformed copy of v.
 */
func (v Vec4) Transform(m Mat4) Vec4 {
	in := [4]float32{v.X, v.Y, v.Z, v.W}
	var out [4]float32
	for col := 0; col < 4; col++ {
		sum := float32(0)
		for row := 0; row < 4; row++ {
			sum += m.Data[row*4+col] * in[row]
		}
		out[col] = sum
	}
	return Vec4{out[0], out[1], out[2], out[3]}
}

/**
 * @brief Transform direction v by the upper 3x3 of m, treating v as a row
 * vector on the left. Translation is ignored.
 *
 * @param m The matrix to transform by.
 * @return A transformed copy of v.
 */
func (v Vec3) TransformDirection(m Mat4) Vec3 {
	return Vec3{
		X: v.X*m.Data[0] + v.Y*m.Data[4] + v.Z*m.Data[8],
		Y: v.X*m.Data[1] + v.Y*m.Data[5] + v.Z*m.Data[9],
		Z: v.X*m.Data[2] + v.Y*m.Data[6] + v.Z*m.Data[10],
	}
}

// ------------------------------------------
// Matrix 4
// ------------------------------------------

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 *
 * @return A new identity matrix
 */
func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

/**
 * @brief Returns the result of multiplying mt by other (mt on the left).
 * Applying the result to a vector is the same as applying mt first and
 * other second.
 *
 * @param other The matrix on the right hand side.
 * @return The result of the matrix multiplication.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out_matrix := Mat4{}

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out_matrix.Data[row*4+col] = sum
		}
	}

	return out_matrix
}

/**
 * @brief Creates and returns a perspective matrix. Typically used to render 3d scenes.
 * The result is undefined for fov_radians >= PI or near_clip == far_clip; use
 * NewMat4PerspectiveChecked when the inputs come from the outside.
 *
 * @param fov_radians The vertical field of view in radians.
 * @param aspect_ratio The aspect ratio (width / height).
 * @param near_clip The near clipping plane distance. Must be positive.
 * @param far_clip The far clipping plane distance.
 * @return A new perspective matrix.
 */
func NewMat4Perspective(fov_radians, aspect_ratio, near_clip, far_clip float32) Mat4 {
	half_tan_fov := ktan(fov_radians * 0.5)
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0 / (half_tan_fov * aspect_ratio)
	out_matrix.Data[5] = 1.0 / half_tan_fov
	out_matrix.Data[10] = -(far_clip + near_clip) / (far_clip - near_clip)
	out_matrix.Data[11] = -1.0
	out_matrix.Data[14] = -(2.0 * far_clip * near_clip) / (far_clip - near_clip)
	return out_matrix
}

// NewMat4PerspectiveChecked validates the projection parameters before
// building the matrix.
func NewMat4PerspectiveChecked(fov_radians, aspect_ratio, near_clip, far_clip float32) (Mat4, error) {
	switch {
	case !(fov_radians > 0) || fov_radians >= K_PI:
		return Mat4{}, fmt.Errorf("fov %v outside (0, pi): %w", fov_radians, core.ErrInvalidProjection)
	case !(aspect_ratio > 0):
		return Mat4{}, fmt.Errorf("aspect ratio %v must be positive: %w", aspect_ratio, core.ErrInvalidProjection)
	case !(near_clip > 0):
		return Mat4{}, fmt.Errorf("near plane %v must be positive: %w", near_clip, core.ErrInvalidProjection)
	case !(far_clip > near_clip):
		return Mat4{}, fmt.Errorf("far plane %v must lie beyond near plane %v: %w", far_clip, near_clip, core.ErrInvalidProjection)
	}
	return NewMat4Perspective(fov_radians, aspect_ratio, near_clip, far_clip), nil
}

/**
 * @brief Creates and returns a look-at matrix, or a matrix looking
 * at target from the perspective of position. The basis is right =
 * forward x up, local up = right x forward, with -forward on the z axis.
 * Degenerate when position == target or when forward is parallel to up.
 *
 * @param position The position of the matrix.
 * @param target The position to "look at".
 * @param up The up vector.
 * @return A matrix looking at target from the perspective of position.
 */
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	forward := target.Sub(position).Normalize()
	right := forward.Cross(up).Normalize()
	local_up := right.Cross(forward).Normalize()

	out_matrix := Mat4{}
	out_matrix.Data[0] = right.X
	out_matrix.Data[4] = right.Y
	out_matrix.Data[8] = right.Z
	out_matrix.Data[1] = local_up.X
	out_matrix.Data[5] = local_up.Y
	out_matrix.Data[9] = local_up.Z
	out_matrix.Data[2] = -forward.X
	out_matrix.Data[6] = -forward.Y
	out_matrix.Data[10] = -forward.Z
	out_matrix.Data[12] = -right.Dot(position)
	out_matrix.Data[13] = -local_up.Dot(position)
	out_matrix.Data[14] = forward.Dot(position)
	out_matrix.Data[15] = 1.0

	return out_matrix
}

// NewMat4LookAtChecked rejects the two degenerate look-at configurations
// instead of producing NaNs.
func NewMat4LookAtChecked(position, target, up Vec3) (Mat4, error) {
	diff := target.Sub(position)
	if diff.LengthSquared() < K_DIRECTION_EPSILON {
		return Mat4{}, fmt.Errorf("eye and target coincide: %w", core.ErrDegenerateView)
	}
	if up.LengthSquared() < K_DIRECTION_EPSILON {
		return Mat4{}, fmt.Errorf("up vector has zero length: %w", core.ErrDegenerateView)
	}
	side := diff.Normalize().Cross(up.Normalize())
	if side.LengthSquared() < K_DIRECTION_EPSILON {
		return Mat4{}, fmt.Errorf("view direction is parallel to up: %w", core.ErrDegenerateView)
	}
	return NewMat4LookAt(position, target, up), nil
}

/**
 * @brief Creates a rotation matrix about the x axis.
 *
 * @param angle_radians The x angle in radians.
 * @return A rotation matrix.
 */
func NewMat4RotationX(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()
	c := kcos(angle_radians)
	s := ksin(angle_radians)

	out_matrix.Data[5] = c
	out_matrix.Data[6] = -s
	out_matrix.Data[9] = s
	out_matrix.Data[10] = c
	return out_matrix
}

/**
 * @brief Creates a rotation matrix about the y axis.
 *
 * @param angle_radians The y angle in radians.
 * @return A rotation matrix.
 */
func NewMat4RotationY(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()
	c := kcos(angle_radians)
	s := ksin(angle_radians)

	out_matrix.Data[0] = c
	out_matrix.Data[2] = s
	out_matrix.Data[8] = -s
	out_matrix.Data[10] = c
	return out_matrix
}

/**
 * @brief Creates a rotation matrix about the z axis.
 *
 * @param angle_radians The z angle in radians.
 * @return A rotation matrix.
 */
func NewMat4RotationZ(angle_radians float32) Mat4 {
	out_matrix := NewMat4Identity()
	c := kcos(angle_radians)
	s := ksin(angle_radians)

	out_matrix.Data[0] = c
	out_matrix.Data[1] = -s
	out_matrix.Data[4] = s
	out_matrix.Data[5] = c
	return out_matrix
}

/**
 * @brief Returns mt right-composed with a rotation about the x axis
 * (mt x Rx). mt itself is not modified; chained calls accumulate in call order.
 */
func (mt Mat4) RotateX(angle_radians float32) Mat4 {
	return mt.Mul(NewMat4RotationX(angle_radians))
}

/**
 * @brief Returns mt right-composed with a rotation about the y axis (mt x Ry).
 */
func (mt Mat4) RotateY(angle_radians float32) Mat4 {
	return mt.Mul(NewMat4RotationY(angle_radians))
}

/**
 * @brief Returns mt right-composed with a rotation about the z axis (mt x Rz).
 */
func (mt Mat4) RotateZ(angle_radians float32) Mat4 {
	return mt.Mul(NewMat4RotationZ(angle_radians))
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 */
func NewMat4Translation(position Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[12] = position.X
	out_matrix.Data[13] = position.Y
	out_matrix.Data[14] = position.Z
	return out_matrix
}

/**
 * @brief Returns a scale matrix using the provided scale.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[0] = scale.X
	out_matrix.Data[5] = scale.Y
	out_matrix.Data[10] = scale.Z
	return out_matrix
}

/**
 * @brief Returns the matrix that carries surface normals through mt: the
 * inverse transpose of its upper 3x3, with the translation row and column
 * cleared. A singular upper 3x3 has no inverse, in which case the upper 3x3
 * itself is returned so normals still follow rotations.
 *
 * @return The normal matrix of mt.
 */
func (mt Mat4) NormalMatrix() Mat4 {
	a := mt.Data
	// cofactors of the upper 3x3; for row vectors n' = n * cofactor / det
	c00 := a[5]*a[10] - a[6]*a[9]
	c01 := -(a[4]*a[10] - a[6]*a[8])
	c02 := a[4]*a[9] - a[5]*a[8]
	c10 := -(a[1]*a[10] - a[2]*a[9])
	c11 := a[0]*a[10] - a[2]*a[8]
	c12 := -(a[0]*a[9] - a[1]*a[8])
	c20 := a[1]*a[6] - a[2]*a[5]
	c21 := -(a[0]*a[6] - a[2]*a[4])
	c22 := a[0]*a[5] - a[1]*a[4]

	out_matrix := NewMat4Identity()
	det := a[0]*c00 + a[1]*c01 + a[2]*c02
	if kabs(det) < K_FLOAT_EPSILON || !IsFinite(det) {
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				out_matrix.Data[row*4+col] = a[row*4+col]
			}
		}
		return out_matrix
	}

	inv := 1 / det
	out_matrix.Data[0], out_matrix.Data[1], out_matrix.Data[2] = c00*inv, c01*inv, c02*inv
	out_matrix.Data[4], out_matrix.Data[5], out_matrix.Data[6] = c10*inv, c11*inv, c12*inv
	out_matrix.Data[8], out_matrix.Data[9], out_matrix.Data[10] = c20*inv, c21*inv, c22*inv
	return out_matrix
}

/**
 * @brief Compares every element of mt and other against tolerance.
 */
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}

/**
 * @brief Converts provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}
