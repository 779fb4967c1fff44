package renderer

import "github.com/spaghettifunk/halfblock/engine/renderer/metadata"

// RendererBackend presents finished framebuffers. BeginFrame and EndFrame
// bracket every frame; EndFrame receives the buffer once rasterization is
// complete and must not keep it past the call.
type RendererBackend interface {
	Initialize(appName string, width, height int) error
	Shutdown() error
	Resized(width, height int) error
	BeginFrame(packet *metadata.RenderPacket) error
	EndFrame(fb *Framebuffer, packet *metadata.RenderPacket) error
}

// HeadlessBackend discards frames. It backs offscreen benchmarks and tests.
type HeadlessBackend struct {
	Frames  int
	Last    metadata.RenderPacket
	Resizes int
}

func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{}
}

func (h *HeadlessBackend) Initialize(appName string, width, height int) error {
	return nil
}

func (h *HeadlessBackend) Shutdown() error {
	return nil
}

func (h *HeadlessBackend) Resized(width, height int) error {
	h.Resizes++
	return nil
}

func (h *HeadlessBackend) BeginFrame(packet *metadata.RenderPacket) error {
	return nil
}

func (h *HeadlessBackend) EndFrame(fb *Framebuffer, packet *metadata.RenderPacket) error {
	h.Frames++
	h.Last = *packet
	return nil
}
