package terminal

import (
	"errors"
	"os"

	"golang.org/x/term"
)

var ErrNotATerminal = errors.New("not a terminal")

// Size returns the column and row count of the terminal behind f.
func Size(f *os.File) (cols, rows int, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, 0, ErrNotATerminal
	}
	return term.GetSize(fd)
}

// FitFramebuffer converts a terminal of cols x rows into framebuffer pixel
// dimensions, keeping reserved rows free below the picture. Two pixel rows
// share one text row.
func FitFramebuffer(cols, rows, reserved int) (width, height int) {
	return max(cols, 1), max(rows-reserved, 1) * 2
}
