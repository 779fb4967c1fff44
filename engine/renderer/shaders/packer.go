package shaders

import (
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// PackHalfBlock stores colour c for one of the two pixels a cell covers.
//
// The top pixel always takes the foreground of an upper half block. The
// bottom pixel takes the foreground of a lower half block when the top of
// the cell was not painted this frame, and otherwise the background of the
// upper half block, so both pixels keep independent colours.
func PackHalfBlock(cell metadata.Cell, c metadata.Color, secondRow bool) metadata.Cell {
	if !secondRow {
		cell.Glyph = metadata.GLYPH_HALF_TOP
		cell.Fg = c
		cell.FgDefault = false
		return cell
	}
	if cell.FgDefault {
		cell.Glyph = metadata.GLYPH_HALF_BOTTOM
		cell.Fg = c
		cell.FgDefault = false
		return cell
	}
	cell.Glyph = metadata.GLYPH_HALF_TOP
	cell.Bg = c
	cell.BgDefault = false
	return cell
}

// Colorer computes the colour of a fragment.
type Colorer interface {
	Color(v metadata.Vertex) metadata.Color
}

// ColorerFunc adapts a function to Colorer.
type ColorerFunc func(v metadata.Vertex) metadata.Color

func (f ColorerFunc) Color(v metadata.Vertex) metadata.Color {
	return f(v)
}

// HalfBlock turns any Colorer into a shader that packs two pixels per cell.
func HalfBlock(c Colorer) metadata.Shader {
	return metadata.ShaderFunc(func(v metadata.Vertex, cell metadata.Cell, secondRow bool) metadata.Cell {
		return PackHalfBlock(cell, c.Color(v), secondRow)
	})
}
