package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer"
	"github.com/spaghettifunk/halfblock/engine/renderer/components"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
	"github.com/spaghettifunk/halfblock/engine/renderer/shaders"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// How often the terminal size is polled while auto-sizing.
const sizePollInterval = 250 * time.Millisecond

// Framebuffer size used when auto-sizing has nothing to measure.
const (
	fallbackWidth  = 80
	fallbackHeight = 48
)

// SizeProbe reports the framebuffer size, in pixels, that fills the output.
type SizeProbe func() (width, height int, err error)

// Engine is the frame driver. Every frame it derives the model matrix from
// the elapsed time, transforms the mesh into clip space, rasterizes it and
// hands the framebuffer to the backend. Config reloads and resizes arrive
// as events from other goroutines and are applied between frames.
type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	runID        uuid.UUID

	events   *core.EventBus
	renderer *renderer.Renderer
	camera   *components.Camera
	shader   metadata.Shader
	clock    *core.Clock
	metrics  *core.Metrics
	probe    SizeProbe

	// scratch for the clip-space copy of the mesh
	transformed []metadata.Triangle

	isRunning atomic.Bool
	lastProbe time.Time

	mu            sync.Mutex
	pendingConfig *ApplicationConfig
	pendingWidth  int
	pendingHeight int
	resizePending bool
}

// New wires a game to a backend. metrics may be shared with the backend
// for its status line; nil allocates a private one.
func New(g *Game, backend renderer.RendererBackend, metrics *core.Metrics) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	if g.Mesh == nil {
		return nil, fmt.Errorf("game has no mesh: %w", core.ErrInvalidConfig)
	}
	if metrics == nil {
		metrics = core.NewMetrics()
	}

	config := g.ApplicationConfig
	rasterizer := renderer.NewRasterizer()
	if err := configureRasterizer(rasterizer, config); err != nil {
		return nil, err
	}
	shader, err := buildShader(config)
	if err != nil {
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		runID:        uuid.New(),
		events:       core.NewEventBus(),
		renderer:     renderer.New(backend, rasterizer),
		camera: components.NewCamera(config.EyeVec(), config.TargetVec(), config.UpVec(),
			config.FOVRadians(), config.Near, config.Far),
		shader:      shader,
		clock:       core.NewClock(),
		metrics:     metrics,
		transformed: make([]metadata.Triangle, 0, g.Mesh.TriangleCount()),
	}, nil
}

func configureRasterizer(r *renderer.Rasterizer, config *ApplicationConfig) error {
	cull, err := ParseCullMode(config.CullMode)
	if err != nil {
		return err
	}
	r.CullMode = cull
	r.Workers = config.Workers
	if r.Workers == 0 {
		r.Workers = renderer.AutoWorkers()
	}
	return nil
}

func buildShader(config *ApplicationConfig) (metadata.Shader, error) {
	opts, err := config.ShaderOptions()
	if err != nil {
		return nil, err
	}
	return shaders.New(config.Shader, opts)
}

func closeShader(s metadata.Shader) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}

// SetSizeProbe installs the function auto-sizing measures the output with.
func (e *Engine) SetSizeProbe(probe SizeProbe) {
	e.probe = probe
}

// Events is the bus the engine listens on for quit, resize and config
// change events.
func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}

// Framebuffer returns the buffer of the last rendered frame.
func (e *Engine) Framebuffer() *renderer.Framebuffer {
	return e.renderer.Framebuffer()
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine initialized twice")
	}
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_CONFIG_CHANGED, e, e.onConfigChanged)

	width, height := e.framebufferSize()
	if err := e.renderer.Initialize(e.config.Name, width, height); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			return err
		}
	}

	core.LogInfo("%s initialized: run %s, %dx%d pixels, %d triangles, shader %s, %d workers",
		e.config.Name, e.runID, width, height, e.gameInstance.Mesh.TriangleCount(),
		e.config.Shader, e.renderer.Rasterizer().Workers)
	e.currentStage = EngineStageInitialized
	e.isRunning.Store(true)
	return nil
}

// framebufferSize resolves the configured size, measuring the output when
// the config asks for auto-sizing.
func (e *Engine) framebufferSize() (int, int) {
	if !e.config.AutoSize() {
		return e.config.Width, e.config.Height
	}
	if e.probe != nil {
		w, h, err := e.probe()
		if err == nil {
			return w, h
		}
		core.LogWarn("cannot measure the terminal (%v), using %dx%d", err, fallbackWidth, fallbackHeight)
	}
	return fallbackWidth, fallbackHeight
}

// RenderFrame draws the scene as it looks elapsedMS milliseconds into the
// animation. Pending config changes and resizes are applied first.
func (e *Engine) RenderFrame(ctx context.Context, elapsedMS float64) (*metadata.RenderPacket, error) {
	if e.currentStage < EngineStageInitialized {
		return nil, fmt.Errorf("RenderFrame before Initialize")
	}
	start := time.Now()
	e.applyPending()

	if timed, ok := e.shader.(interface{ SetTime(float64) }); ok {
		timed.SetTime(elapsedMS)
	}

	model := SpinModel(elapsedMS, e.config.SpinYPeriodMS, e.config.SpinXPeriodMS)
	if e.gameInstance.FnUpdate != nil {
		m, err := e.gameInstance.FnUpdate(elapsedMS)
		if err != nil {
			return nil, err
		}
		model = m
	}

	fb := e.renderer.Framebuffer()
	viewProjection, err := e.camera.ViewProjection(fb.AspectRatio())
	if err != nil {
		return nil, err
	}
	mvp := model.Mul(viewProjection)
	normalMatrix := model.NormalMatrix()

	e.transformed = e.transformed[:0]
	for _, tri := range e.gameInstance.Mesh.Triangles {
		e.transformed = append(e.transformed, tri.Transform(mvp, normalMatrix))
	}

	packet := &metadata.RenderPacket{ElapsedMS: elapsedMS}
	if err := e.renderer.DrawFrame(ctx, packet, e.transformed, e.shader); err != nil {
		return packet, err
	}

	if failing, ok := e.shader.(interface{ Err() error }); ok {
		if err := failing.Err(); err != nil {
			return packet, err
		}
	}

	e.metrics.Update(time.Since(start).Seconds())
	return packet, nil
}

// Run renders frames until ctx is cancelled or a quit event arrives.
// Without a target frame rate it runs as fast as the host allows.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("Run needs an initialized engine, stage is %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()

	var frameBudget time.Duration
	if e.config.TargetFPS > 0 {
		frameBudget = time.Second / time.Duration(e.config.TargetFPS)
	}

	for e.isRunning.Load() {
		if err := ctx.Err(); err != nil {
			break
		}
		frameStart := time.Now()
		e.pollSize(frameStart)

		// Update clock and get the animation time.
		e.clock.Update()
		if _, err := e.RenderFrame(ctx, e.clock.ElapsedMS()); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			core.LogError("frame failed, shutting down: %v", err)
			e.isRunning.Store(false)
			return err
		}

		if frameBudget > 0 {
			if remaining := frameBudget - time.Since(frameStart); remaining > 0 {
				// give the rest of the frame back to the OS
				timer := time.NewTimer(remaining)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
		}
	}
	e.clock.Stop()
	e.isRunning.Store(false)
	return nil
}

func (e *Engine) pollSize(now time.Time) {
	if !e.config.AutoSize() || e.probe == nil || now.Sub(e.lastProbe) < sizePollInterval {
		return
	}
	e.lastProbe = now
	w, h, err := e.probe()
	if err != nil {
		return
	}
	if fb := e.renderer.Framebuffer(); fb.Width() != w || fb.Height() != h {
		e.events.Fire(core.EVENT_CODE_RESIZED, e, core.EventContext{Width: w, Height: h})
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)
	e.events.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Unregister(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Unregister(core.EVENT_CODE_CONFIG_CHANGED, e, e.onConfigChanged)

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs, e.renderer.Shutdown())
	closeShader(e.shader)
	core.LogInfo("%s shut down after %d frames", e.config.Name, e.metrics.TotalFrames())
	return errors.Join(errs...)
}

// applyPending swaps in a reloaded config and resizes the framebuffer.
// A config that fails to apply is logged and dropped; the old one stays.
func (e *Engine) applyPending() {
	e.mu.Lock()
	config := e.pendingConfig
	resize := e.resizePending
	width, height := e.pendingWidth, e.pendingHeight
	e.pendingConfig = nil
	e.resizePending = false
	e.mu.Unlock()

	if config != nil {
		if err := e.applyConfig(config); err != nil {
			core.LogError("config reload rejected: %v", err)
		} else if !config.AutoSize() {
			resize, width, height = true, config.Width, config.Height
		}
	}
	if resize {
		e.resize(width, height)
	}
}

func (e *Engine) applyConfig(config *ApplicationConfig) error {
	shader, err := buildShader(config)
	if err != nil {
		return err
	}
	if err := configureRasterizer(e.renderer.Rasterizer(), config); err != nil {
		closeShader(shader)
		return err
	}
	if config.LogLevel != e.config.LogLevel {
		if err := core.SetLogLevel(config.LogLevel); err != nil {
			core.LogWarn("keeping log level %s: %v", e.config.LogLevel, err)
		}
	}
	if config.ColorMode != e.config.ColorMode || config.StatusLine != e.config.StatusLine || config.Mesh != e.config.Mesh {
		core.LogWarn("mesh, color_mode and status_line changes take effect on restart")
	}

	closeShader(e.shader)
	e.shader = shader
	e.camera.SetPosition(config.EyeVec())
	e.camera.SetTarget(config.TargetVec())
	e.camera.SetUp(config.UpVec())
	e.camera.SetLens(config.FOVRadians(), config.Near, config.Far)
	e.config = config
	e.gameInstance.ApplicationConfig = config
	core.LogInfo("config reloaded: shader %s, cull %s", config.Shader, e.renderer.Rasterizer().CullMode)
	return nil
}

func (e *Engine) resize(width, height int) {
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError("resize to %dx%d failed: %v", width, height, err)
		return
	}
	core.LogDebug("framebuffer resized to %dx%d", width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize: %v", err)
		}
	}
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, ctx core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, ctx core.EventContext) bool {
	width, height := ctx.Width, ctx.Height
	if width <= 0 || height <= 0 {
		core.LogDebug("ignoring resize to %dx%d", width, height)
		return true
	}
	e.mu.Lock()
	e.pendingWidth, e.pendingHeight = width, height
	e.resizePending = true
	e.mu.Unlock()
	return true
}

func (e *Engine) onConfigChanged(code core.SystemEventCode, sender interface{}, listener interface{}, ctx core.EventContext) bool {
	config, err := LoadConfig(ctx.Path)
	if err != nil {
		core.LogError("config reload: %v", err)
		return true
	}
	e.mu.Lock()
	e.pendingConfig = config
	e.mu.Unlock()
	return true
}
