package metadata

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief Only back faces (negative screen area) are culled. */
	FaceCullModeBack FaceCullMode = iota
	/** @brief No faces are culled; back faces are rasterized with their winding flipped. */
	FaceCullModeNone
	/** @brief Only front faces are culled. */
	FaceCullModeFront
)

func (m FaceCullMode) String() string {
	switch m {
	case FaceCullModeNone:
		return "none"
	case FaceCullModeFront:
		return "front"
	default:
		return "back"
	}
}

/**
 * @brief Counters gathered while drawing one frame.
 */
type FrameStats struct {
	/** @brief Triangles handed to the rasterizer. */
	Submitted int
	/** @brief Triangles that produced extra geometry or were dropped by the near plane. */
	Clipped int
	/** @brief Triangles rejected by the face cull test. */
	Culled int
	/** @brief Triangles skipped for having (near) zero screen area. */
	Degenerate int
	/** @brief Fragments that passed the depth test. */
	Fragments int
}

// Add accumulates o into s.
func (s *FrameStats) Add(o FrameStats) {
	s.Submitted += o.Submitted
	s.Clipped += o.Clipped
	s.Culled += o.Culled
	s.Degenerate += o.Degenerate
	s.Fragments += o.Fragments
}

/**
 * @brief Generated by the frame driver for every frame and handed to the
 * backend together with the finished framebuffer.
 */
type RenderPacket struct {
	/** @brief Animation time the frame was rendered at, in milliseconds. */
	ElapsedMS float64
	/** @brief Wall time spent drawing, in seconds. */
	DeltaTime float64
	/** @brief Frame counters. */
	Stats FrameStats
}
