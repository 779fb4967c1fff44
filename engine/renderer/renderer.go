package renderer

import (
	"context"
	"time"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// Renderer owns the framebuffer and pairs the rasterizer with a backend.
type Renderer struct {
	backend     RendererBackend
	rasterizer  *Rasterizer
	framebuffer *Framebuffer
}

func New(backend RendererBackend, rasterizer *Rasterizer) *Renderer {
	if rasterizer == nil {
		rasterizer = NewRasterizer()
	}
	return &Renderer{
		backend:    backend,
		rasterizer: rasterizer,
	}
}

// Initialize allocates the framebuffer and brings the backend up.
func (r *Renderer) Initialize(appName string, width, height int) error {
	fb, err := NewFramebuffer(width, height)
	if err != nil {
		return err
	}
	r.framebuffer = fb
	return r.backend.Initialize(appName, width, height)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// OnResize reallocates the framebuffer. The old buffer is kept on error.
func (r *Renderer) OnResize(width, height int) error {
	if r.framebuffer != nil && r.framebuffer.width == width && r.framebuffer.height == height {
		return nil
	}
	fb, err := NewFramebuffer(width, height)
	if err != nil {
		return err
	}
	r.framebuffer = fb
	return r.backend.Resized(width, height)
}

func (r *Renderer) Framebuffer() *Framebuffer {
	return r.framebuffer
}

func (r *Renderer) Rasterizer() *Rasterizer {
	return r.rasterizer
}

// DrawFrame clears the framebuffer, rasterizes tris with shader and hands
// the result to the backend. packet.Stats and packet.DeltaTime are filled in.
func (r *Renderer) DrawFrame(ctx context.Context, packet *metadata.RenderPacket, tris []metadata.Triangle, shader metadata.Shader) error {
	start := time.Now()
	r.framebuffer.Clear()

	if err := r.backend.BeginFrame(packet); err != nil {
		core.LogError("RendererBeginFrame failed: %v", err)
		return err
	}

	stats, err := r.rasterizer.DrawTriangles(ctx, r.framebuffer, tris, shader)
	packet.Stats = stats
	if err != nil {
		return err
	}
	packet.DeltaTime = time.Since(start).Seconds()

	if err := r.backend.EndFrame(r.framebuffer, packet); err != nil {
		core.LogError("RendererEndFrame failed: %v", err)
		return err
	}
	return nil
}
