package remote

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gliderlabs/ssh"
	"github.com/muesli/termenv"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
	"github.com/spaghettifunk/halfblock/engine/renderer/terminal"
)

var (
	homeSeq      = termenv.CSI + "H"
	clearSeq     = termenv.CSI + fmt.Sprintf(termenv.EraseDisplaySeq, 2) + homeSeq
	hideSeq      = termenv.CSI + termenv.HideCursorSeq
	showSeq      = termenv.CSI + termenv.ShowCursorSeq
	resetSeq     = termenv.CSI + termenv.ResetSeq + "m"
	eraseLineSeq = termenv.CSI + termenv.EraseLineRightSeq
)

const (
	keyQuit  = 'q'
	keyCtrlC = 0x03
)

// Server is the RendererBackend that streams frames to SSH viewers. Every
// session that opens a shell joins the broadcast and sees the same
// animation; the frame ends with a line counting connected viewers.
type Server struct {
	addr        string
	hostKeyFile string
	metrics     *core.Metrics
	status      bool
	hub         *Hub

	mu       sync.Mutex
	encoder  *terminal.Encoder
	srv      *ssh.Server
	listener net.Listener
	frame    bytes.Buffer
	clear    bool
}

// New builds an SSH backend that listens on addr once initialized. An
// empty hostKeyFile makes the server generate a throwaway host key.
func New(addr, hostKeyFile string, mode terminal.ColorMode, metrics *core.Metrics, status bool) *Server {
	return &Server{
		addr:        addr,
		hostKeyFile: hostKeyFile,
		metrics:     metrics,
		status:      status,
		hub:         NewHub(),
		encoder:     terminal.NewEncoder(mode),
	}
}

func (s *Server) Initialize(appName string, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	srv := &ssh.Server{
		Addr:    s.addr,
		Handler: s.handleSession,
	}
	if s.hostKeyFile != "" {
		if err := srv.SetOption(ssh.HostKeyFile(s.hostKeyFile)); err != nil {
			return fmt.Errorf("host key %q: %w", s.hostKeyFile, err)
		}
	}
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.srv = srv
	s.listener = l

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			core.LogError("ssh server stopped: %v", err)
		}
	}()
	core.LogInfo("%s: serving %dx%d cells over ssh on %s", appName, width, height/2, l.Addr())
	return nil
}

// Addr is the address the server listens on, nil before Initialize.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Viewers is the number of connected sessions.
func (s *Server) Viewers() int {
	return s.hub.Count()
}

func (s *Server) Shutdown() error {
	s.hub.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	err := s.srv.Close()
	s.srv = nil
	s.listener = nil
	return err
}

// Resized clears every viewer's screen before the next frame.
func (s *Server) Resized(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear = true
	return nil
}

func (s *Server) BeginFrame(packet *metadata.RenderPacket) error {
	return nil
}

func (s *Server) EndFrame(fb *renderer.Framebuffer, packet *metadata.RenderPacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame.Reset()
	if s.clear {
		s.frame.WriteString(clearSeq)
		s.clear = false
	}
	s.frame.WriteString(hideSeq)
	s.frame.WriteString(homeSeq)
	s.encoder.WriteFrame(&s.frame, fb)
	s.frame.WriteString(resetSeq)
	s.frame.WriteString(StatusLine(s.hub.Count()))
	if s.status && s.metrics != nil {
		s.frame.WriteString("  ")
		s.frame.WriteString(terminal.StatusLine(s.metrics, packet))
	}
	s.frame.WriteString(eraseLineSeq)
	s.frame.WriteString("\r\n")
	s.hub.Broadcast(s.frame.Bytes())
	return nil
}

// StatusLine is the footer every viewer sees below the picture.
func StatusLine(viewers int) string {
	if viewers == 1 {
		return "1 viewer online"
	}
	return fmt.Sprintf("%d viewers online", viewers)
}

func (s *Server) handleSession(sess ssh.Session) {
	if _, err := io.WriteString(sess, clearSeq+hideSeq); err != nil {
		return
	}
	id, done := s.hub.Join(sess)
	core.LogInfo("viewer %s joined from %s, %d online", sess.User(), sess.RemoteAddr(), s.hub.Count())

	go func() {
		if waitForQuit(sess) {
			s.hub.Leave(id)
		}
	}()

	select {
	case <-sess.Context().Done():
	case <-done:
	}
	s.hub.Leave(id)
	_, _ = io.WriteString(sess, resetSeq+showSeq+"\r\n")
	core.LogInfo("viewer %s left, %d online", sess.User(), s.hub.Count())
}

// waitForQuit reads viewer keystrokes until q or ctrl-c arrives, reporting
// false when the input ends first.
func waitForQuit(r io.Reader) bool {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if b == keyQuit || b == keyCtrlC {
				return true
			}
		}
		if err != nil {
			return false
		}
	}
}
