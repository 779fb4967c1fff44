package renderer

import (
	"fmt"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

/**
 * @brief The two per-frame surfaces: a depth value per pixel and a cell per
 * pair of vertically adjacent pixels. Allocated once and cleared every frame.
 */
type Framebuffer struct {
	/** @brief Width in pixels, equal to the width in cells. */
	width int
	/** @brief Height in pixels. Always even. */
	height int
	/**
	 * @brief Reciprocal depth per pixel, row-major. Larger is nearer; 0 is
	 * the cleared, infinitely far state.
	 */
	depth []float32
	/** @brief Cell records, row-major, height/2 rows. */
	cells []metadata.Cell
}

// NewFramebuffer allocates a framebuffer of width x height pixels. The
// height must be even since every cell row covers two pixel rows.
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, core.ErrInvalidFramebuffer)
	}
	if height%2 != 0 {
		return nil, fmt.Errorf("height %d is odd: %w", height, core.ErrInvalidFramebuffer)
	}
	fb := &Framebuffer{
		width:  width,
		height: height,
		depth:  make([]float32, width*height),
		cells:  make([]metadata.Cell, width*(height/2)),
	}
	fb.Clear()
	return fb, nil
}

// Clear resets every depth to 0 and every cell to the default blank state.
func (fb *Framebuffer) Clear() {
	clear(fb.depth)
	def := metadata.DefaultCell()
	for i := range fb.cells {
		fb.cells[i] = def
	}
}

func (fb *Framebuffer) Width() int {
	return fb.width
}

func (fb *Framebuffer) Height() int {
	return fb.height
}

// Rows is the number of cell rows, half the pixel height.
func (fb *Framebuffer) Rows() int {
	return fb.height / 2
}

// AspectRatio is the pixel aspect of the buffer, width over height.
func (fb *Framebuffer) AspectRatio() float32 {
	return float32(fb.width) / float32(fb.height)
}

// DepthAt returns the stored reciprocal depth of pixel (x, y).
func (fb *Framebuffer) DepthAt(x, y int) float32 {
	return fb.depth[y*fb.width+x]
}

// CellAt returns the cell in column x of cell row row.
func (fb *Framebuffer) CellAt(x, row int) metadata.Cell {
	return fb.cells[row*fb.width+x]
}

// Row returns the cells of one cell row. The slice aliases the buffer.
func (fb *Framebuffer) Row(row int) []metadata.Cell {
	start := row * fb.width
	return fb.cells[start : start+fb.width]
}

// Cells returns every cell, row-major. The slice aliases the buffer.
func (fb *Framebuffer) Cells() []metadata.Cell {
	return fb.cells
}

// Depth returns every depth value, row-major. The slice aliases the buffer.
func (fb *Framebuffer) Depth() []float32 {
	return fb.depth
}
