package terminal

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

var (
	restoreCursorSeq = termenv.CSI + termenv.RestoreCursorPositionSeq
	eraseLineSeq     = termenv.CSI + termenv.EraseLineRightSeq
)

// Terminal is the RendererBackend that draws frames onto a text terminal.
// The cursor is hidden and its position saved on Initialize; every frame is
// written in place from the saved position with a single Write.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	out     *termenv.Output
	encoder *Encoder
	metrics *core.Metrics
	status  bool
	frame   bytes.Buffer
}

// New builds a terminal backend writing to w. When metrics is non-nil and
// status is set, a line with fps and frame time follows every frame.
func New(w io.Writer, mode ColorMode, metrics *core.Metrics, status bool) *Terminal {
	enc := NewEncoder(mode)
	return &Terminal{
		w:       w,
		out:     termenv.NewOutput(w, termenv.WithProfile(enc.Profile())),
		encoder: enc,
		metrics: metrics,
		status:  status,
	}
}

func (t *Terminal) Initialize(appName string, width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.HideCursor()
	t.out.SaveCursorPosition()
	core.LogDebug("terminal backend ready: %s %dx%d (%d cell rows), profile %d", appName, width, height, height/2, t.encoder.Profile())
	return nil
}

func (t *Terminal) Shutdown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.w, resetSeq+"\r\n"); err != nil {
		return err
	}
	t.out.ShowCursor()
	return nil
}

// Resized wipes the old picture and re-anchors the frame at the top left.
func (t *Terminal) Resized(width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.Reset()
	t.out.ClearScreen()
	t.out.SaveCursorPosition()
	return nil
}

func (t *Terminal) BeginFrame(packet *metadata.RenderPacket) error {
	return nil
}

func (t *Terminal) EndFrame(fb *renderer.Framebuffer, packet *metadata.RenderPacket) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frame.Reset()
	t.frame.WriteString(restoreCursorSeq)
	t.encoder.WriteFrame(&t.frame, fb)
	if t.status && t.metrics != nil {
		t.frame.WriteString(resetSeq)
		t.frame.WriteString(StatusLine(t.metrics, packet))
		t.frame.WriteString(eraseLineSeq)
	}
	_, err := t.w.Write(t.frame.Bytes())
	return err
}

// StatusLine summarizes frame rate and the last frame's counters.
func StatusLine(metrics *core.Metrics, packet *metadata.RenderPacket) string {
	fps, avg := metrics.Frame()
	return fmt.Sprintf("%4.0f fps  %6.2f ms  %3d tris  %5d frags",
		fps, avg, packet.Stats.Submitted, packet.Stats.Fragments)
}
