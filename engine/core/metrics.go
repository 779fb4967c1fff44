package core

import (
	"sync"

	"github.com/spaghettifunk/halfblock/engine/containers"
)

const AVG_COUNT = 30

// Metrics keeps a rolling average of frame times and a once-per-second
// frame counter. Safe for concurrent use; the status line reads it while
// the driver writes it.
type Metrics struct {
	mu                 sync.Mutex
	msTimes            *containers.RingQueue[float64]
	msSum              float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
	totalFrames        uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		msTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records one frame that took frameElapsed seconds.
func (m *Metrics) Update(frameElapsed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Calculate frame ms average
	frameMS := frameElapsed * 1000.0
	if oldest, err := m.msTimes.Peek(); err == nil && m.msTimes.IsFull() {
		m.msSum -= oldest
	}
	m.msTimes.Push(frameMS)
	m.msSum += frameMS
	m.msAvg = m.msSum / float64(m.msTimes.Len())

	// Calculate Frames per second.
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	// Count all Frames.
	m.frames++
	m.totalFrames++
}

func (m *Metrics) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msAvg
}

// Frame returns fps and the average frame time in milliseconds.
func (m *Metrics) Frame() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps, m.msAvg
}

func (m *Metrics) TotalFrames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalFrames
}
