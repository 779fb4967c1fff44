package testbed

import (
	"github.com/spaghettifunk/halfblock/engine"
	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/systems"
)

// A torus is wider than the unit cube; it is scaled to fill the same view.
const torusScale float32 = 0.8

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  int
	height int
	// applied before the spin
	scale math.Mat4
}

// NewTestGame builds the tumbling-mesh scene described by config.
func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	mesh, err := systems.GenerateMesh(config.Mesh)
	if err != nil {
		return nil, err
	}

	state := &gameState{scale: math.NewMat4Identity()}
	if mesh.Name == systems.MESH_TORUS {
		state.scale = math.NewMat4Scale(math.NewVec3(torusScale, torusScale, torusScale))
	}

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			Mesh:              mesh,
			State:             state,
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("testbed: %s with %d triangles", g.Mesh.Name, g.Mesh.TriangleCount())
	return nil
}

// Update tumbles the mesh about Y, then X.
func (g *TestGame) Update(elapsedMS float64) (math.Mat4, error) {
	state := g.State.(*gameState)
	config := g.ApplicationConfig
	spin := engine.SpinModel(elapsedMS, config.SpinYPeriodMS, config.SpinXPeriodMS)
	return state.scale.Mul(spin), nil
}

func (g *TestGame) OnResize(width, height int) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	core.LogDebug("testbed: framebuffer %dx%d (%d rows)", width, height, height/2)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("testbed: shutdown")
	return nil
}
