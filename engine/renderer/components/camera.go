package components

import (
	"github.com/spaghettifunk/halfblock/engine/math"
)

/**
 * @brief A look-at camera with a perspective lens. The view and
 * projection matrices are cached and rebuilt only after a setter
 * changed the camera.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. Use SetTarget(). */
	Target math.Vec3
	/** @brief The up direction. Use SetUp(). */
	Up math.Vec3
	/** @brief Vertical field of view in radians. */
	FOV float32
	/** @brief Near clip distance, strictly positive. */
	Near float32
	/** @brief Far clip distance, beyond Near. */
	Far float32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use View() instead
	 * so the view matrix is recalculated when needed.
	 */
	ViewMatrix math.Mat4

	projection       math.Mat4
	projectionAspect float32
	projectionDirty  bool
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera(position, target, up math.Vec3, fovRadians, near, far float32) *Camera {
	return &Camera{
		Position:        position,
		Target:          target,
		Up:              up,
		FOV:             fovRadians,
		Near:            near,
		Far:             far,
		IsDirty:         true,
		projectionDirty: true,
	}
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetTarget(target math.Vec3) {
	c.Target = target
	c.IsDirty = true
}

func (c *Camera) SetUp(up math.Vec3) {
	c.Up = up
	c.IsDirty = true
}

// SetLens replaces the projection parameters.
func (c *Camera) SetLens(fovRadians, near, far float32) {
	c.FOV, c.Near, c.Far = fovRadians, near, far
	c.projectionDirty = true
}

// View returns the world-to-camera matrix. A camera whose position equals
// its target, or that looks along its up vector, yields ErrDegenerateView
// and keeps the last good matrix cached.
func (c *Camera) View() (math.Mat4, error) {
	if c.IsDirty {
		view, err := math.NewMat4LookAtChecked(c.Position, c.Target, c.Up)
		if err != nil {
			return math.Mat4{}, err
		}
		c.ViewMatrix = view
		c.IsDirty = false
	}
	return c.ViewMatrix, nil
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) (math.Mat4, error) {
	if c.projectionDirty || aspect != c.projectionAspect {
		proj, err := math.NewMat4PerspectiveChecked(c.FOV, aspect, c.Near, c.Far)
		if err != nil {
			return math.Mat4{}, err
		}
		c.projection = proj
		c.projectionAspect = aspect
		c.projectionDirty = false
	}
	return c.projection, nil
}

// ViewProjection returns view * projection, ready to be prefixed with a
// model matrix.
func (c *Camera) ViewProjection(aspect float32) (math.Mat4, error) {
	view, err := c.View()
	if err != nil {
		return math.Mat4{}, err
	}
	proj, err := c.Projection(aspect)
	if err != nil {
		return math.Mat4{}, err
	}
	return view.Mul(proj), nil
}

// Forward is the unit direction from the position to the target.
func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Distance is how far the target is from the camera.
func (c *Camera) Distance() float32 {
	return c.Target.Sub(c.Position).Length()
}
