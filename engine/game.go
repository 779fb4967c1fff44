package engine

import (
	m "math"

	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// Game is the scene handed to the engine: a mesh and the callbacks that
// animate it. Nil callbacks are skipped; a nil FnUpdate spins the mesh
// with the periods from the config.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Mesh              *metadata.Mesh
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error

// Update returns the model matrix for the frame rendered at elapsedMS.
type Update func(elapsedMS float64) (math.Mat4, error)
type OnResize func(width, height int) error
type Shutdown func() error

// SpinModel tumbles an object about Y and then X. Each period is the time
// in milliseconds for half a turn; a zero period leaves that axis alone.
func SpinModel(elapsedMS float64, yPeriodMS, xPeriodMS float32) math.Mat4 {
	model := math.NewMat4Identity()
	if yPeriodMS > 0 {
		model = model.RotateY(spinAngle(elapsedMS, yPeriodMS))
	}
	if xPeriodMS > 0 {
		model = model.RotateX(spinAngle(elapsedMS, xPeriodMS))
	}
	return model
}

// spinAngle wraps the time to one full turn in float64 before narrowing,
// so the angle keeps millisecond resolution on long runs.
func spinAngle(elapsedMS float64, halfTurnMS float32) float32 {
	period := float64(halfTurnMS)
	return float32(m.Mod(elapsedMS, 2*period) * m.Pi / period)
}
