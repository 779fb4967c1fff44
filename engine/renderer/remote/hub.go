package remote

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/halfblock/engine/core"
)

// Hub fans finished frames out to every connected viewer. Each viewer has
// its own writer goroutine and holds at most one pending frame, so a slow
// connection skips frames instead of stalling the render loop.
type Hub struct {
	mu      sync.Mutex
	viewers map[uuid.UUID]*viewer
}

type viewer struct {
	w      io.Writer
	frames chan []byte
	done   chan struct{}
}

func NewHub() *Hub {
	return &Hub{viewers: make(map[uuid.UUID]*viewer)}
}

// Join registers w as a viewer. The returned channel is closed once the
// viewer has left, either through Leave or because a write to w failed.
func (h *Hub) Join(w io.Writer) (uuid.UUID, <-chan struct{}) {
	v := &viewer{
		w:      w,
		frames: make(chan []byte, 1),
		done:   make(chan struct{}),
	}
	id := uuid.New()

	h.mu.Lock()
	h.viewers[id] = v
	h.mu.Unlock()

	go h.pump(id, v)
	return id, v.done
}

func (h *Hub) pump(id uuid.UUID, v *viewer) {
	for {
		select {
		case <-v.done:
			return
		case frame := <-v.frames:
			if _, err := v.w.Write(frame); err != nil {
				core.LogDebug("viewer %s dropped: %v", id, err)
				h.Leave(id)
				return
			}
		}
	}
}

// Leave removes a viewer. Unknown ids are ignored.
func (h *Hub) Leave(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.viewers[id]; ok {
		delete(h.viewers, id)
		close(v.done)
	}
}

// Count is the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Broadcast queues a copy of frame for every viewer, replacing any frame a
// viewer has not picked up yet.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.viewers) == 0 {
		return
	}
	shared := append([]byte(nil), frame...)
	for _, v := range h.viewers {
		select {
		case <-v.frames:
		default:
		}
		v.frames <- shared
	}
}

// Close removes every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, v := range h.viewers {
		delete(h.viewers, id)
		close(v.done)
	}
}
