package terminal

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// ColorMode selects how cell colours are written.
type ColorMode int

const (
	// ColorModeAuto picks a mode from the environment.
	ColorModeAuto ColorMode = iota
	// ColorModeTrueColor writes 24-bit SGR sequences (38;2 / 48;2).
	ColorModeTrueColor
	// ColorModeANSI256 writes the nearest xterm palette index (38;5 / 48;5).
	ColorModeANSI256
	// ColorModeANSI writes the nearest of the 16 basic colours.
	ColorModeANSI
)

var colorModeNames = map[string]ColorMode{
	"auto":      ColorModeAuto,
	"truecolor": ColorModeTrueColor,
	"ansi256":   ColorModeANSI256,
	"ansi":      ColorModeANSI,
}

// ParseColorMode maps a config string onto a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	if m, ok := colorModeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return ColorModeAuto, fmt.Errorf("colour mode %q (want auto, truecolor, ansi256 or ansi): %w", s, core.ErrInvalidConfig)
}

func (m ColorMode) String() string {
	for name, mode := range colorModeNames {
		if mode == m {
			return name
		}
	}
	return "unknown"
}

// Profile returns the termenv profile for m. Auto consults the environment
// and never settles for a colourless profile.
func (m ColorMode) Profile() termenv.Profile {
	switch m {
	case ColorModeTrueColor:
		return termenv.TrueColor
	case ColorModeANSI256:
		return termenv.ANSI256
	case ColorModeANSI:
		return termenv.ANSI
	}
	p := termenv.EnvColorProfile()
	if p == termenv.Ascii {
		return termenv.ANSI256
	}
	return p
}

var resetSeq = termenv.CSI + termenv.ResetSeq + "m"

type paletteKey struct {
	c  metadata.Color
	bg bool
}

// Encoder serializes framebuffers into terminal text. Every cell starts
// with a reset, then the foreground and background SGR sequences of the
// channels that were painted, then the glyph. A cell with neither channel
// painted is a reset and a space. Rows end with CRLF.
// An Encoder reuses its buffer and is not safe for concurrent use.
type Encoder struct {
	profile termenv.Profile
	buf     bytes.Buffer
	palette map[paletteKey]string
}

func NewEncoder(mode ColorMode) *Encoder {
	return &Encoder{
		profile: mode.Profile(),
		palette: make(map[paletteKey]string),
	}
}

// Profile is the colour profile the encoder writes.
func (e *Encoder) Profile() termenv.Profile {
	return e.profile
}

// sgr appends the colour sequence for c.
func (e *Encoder) sgr(buf *bytes.Buffer, c metadata.Color, bg bool) {
	if e.profile == termenv.TrueColor {
		// formatted in place: this runs for every cell of every frame
		var scratch [24]byte
		b := append(scratch[:0], termenv.CSI...)
		if bg {
			b = append(b, termenv.Background...)
		} else {
			b = append(b, termenv.Foreground...)
		}
		b = append(b, ";2;"...)
		b = strconv.AppendUint(b, uint64(c.R), 10)
		b = append(b, ';')
		b = strconv.AppendUint(b, uint64(c.G), 10)
		b = append(b, ';')
		b = strconv.AppendUint(b, uint64(c.B), 10)
		b = append(b, 'm')
		buf.Write(b)
		return
	}

	key := paletteKey{c: c, bg: bg}
	seq, ok := e.palette[key]
	if !ok {
		converted := e.profile.Convert(termenv.RGBColor(c.Hex()))
		if s := converted.Sequence(bg); s != "" {
			seq = termenv.CSI + s + "m"
		}
		e.palette[key] = seq
	}
	buf.WriteString(seq)
}

// WriteCell appends one cell to buf.
func (e *Encoder) WriteCell(buf *bytes.Buffer, c metadata.Cell) {
	buf.WriteString(resetSeq)
	if c.IsDefault() {
		buf.WriteByte(' ')
		return
	}
	if !c.FgDefault {
		e.sgr(buf, c.Fg, false)
	}
	if !c.BgDefault {
		e.sgr(buf, c.Bg, true)
	}
	buf.WriteRune(c.Glyph.Rune())
}

// WriteFrame appends every row of fb to buf.
func (e *Encoder) WriteFrame(buf *bytes.Buffer, fb *renderer.Framebuffer) {
	// worst case per cell: reset, two truecolor sequences, a 3-byte glyph
	buf.Grow(fb.Width()*fb.Rows()*45 + fb.Rows()*2)
	for row := 0; row < fb.Rows(); row++ {
		for _, c := range fb.Row(row) {
			e.WriteCell(buf, c)
		}
		buf.WriteString("\r\n")
	}
}

// Encode returns the serialized frame. The slice is only valid until the
// next call.
func (e *Encoder) Encode(fb *renderer.Framebuffer) []byte {
	e.buf.Reset()
	e.WriteFrame(&e.buf, fb)
	return e.buf.Bytes()
}
