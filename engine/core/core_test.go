package core

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func fakeClock(start time.Time) (*Clock, *time.Time) {
	now := start
	c := NewClock()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestClockElapsed(t *testing.T) {
	c, now := fakeClock(time.Unix(100, 0))

	c.Update()
	if c.Elapsed() != 0 {
		t.Fatalf("unstarted clock advanced: %v", c.Elapsed())
	}

	c.Start()
	*now = now.Add(1500*time.Millisecond + 700*time.Microsecond)
	c.Update()
	if got := c.ElapsedMS(); got != 1500 {
		t.Errorf("ElapsedMS = %v, want 1500", got)
	}

	c.Stop()
	*now = now.Add(time.Second)
	c.Update()
	if got := c.ElapsedMS(); got != 1500 {
		t.Errorf("stopped clock moved to %v", got)
	}
}

func TestMetricsAverageAndFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 10; i++ {
		m.Update(0.010)
	}
	if got := m.FrameTime(); got < 9.999 || got > 10.001 {
		t.Errorf("FrameTime = %v, want 10", got)
	}
	if m.FPS() != 0 {
		t.Errorf("FPS before a full second = %v", m.FPS())
	}

	for i := 0; i < 100; i++ {
		m.Update(0.010)
	}
	fps, avg := m.Frame()
	if fps < 99 || fps > 101 {
		t.Errorf("FPS = %v, want ~100", fps)
	}
	if avg < 9.999 || avg > 10.001 {
		t.Errorf("avg = %v", avg)
	}
	if m.TotalFrames() != 110 {
		t.Errorf("TotalFrames = %d", m.TotalFrames())
	}
}

func TestMetricsWindowDropsOldSamples(t *testing.T) {
	m := NewMetrics()
	m.Update(1.0)
	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.002)
	}
	if got := m.FrameTime(); got < 1.999 || got > 2.001 {
		t.Errorf("FrameTime = %v, want 2 once the slow frame leaves the window", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogWriter(&buf)
	defer SetLogWriter(os.Stderr)

	if err := SetLogLevel("warn"); err != nil {
		t.Fatal(err)
	}
	LogInfo("hidden %d", 1)
	LogWarn("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown 2") {
		t.Errorf("log output = %q", out)
	}

	if err := SetLogLevel("loud"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetLogLevel(loud) = %v", err)
	}
	_ = SetLogLevel("info")
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	var got []int
	first := func(code SystemEventCode, sender, listener interface{}, ctx EventContext) bool {
		got = append(got, ctx.Width)
		return false
	}
	second := func(code SystemEventCode, sender, listener interface{}, ctx EventContext) bool {
		got = append(got, ctx.Height)
		return true
	}
	third := func(code SystemEventCode, sender, listener interface{}, ctx EventContext) bool {
		t.Error("handled event reached a later listener")
		return true
	}

	owner := &struct{ name string }{"a"}
	if !bus.Register(EVENT_CODE_RESIZED, owner, first) {
		t.Fatal("first registration failed")
	}
	if bus.Register(EVENT_CODE_RESIZED, owner, first) {
		t.Error("duplicate registration accepted")
	}
	bus.Register(EVENT_CODE_RESIZED, owner, second)
	bus.Register(EVENT_CODE_RESIZED, nil, third)

	if !bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{Width: 80, Height: 48}) {
		t.Error("Fire reported unhandled")
	}
	if len(got) != 2 || got[0] != 80 || got[1] != 48 {
		t.Errorf("listeners saw %v", got)
	}

	if !bus.Unregister(EVENT_CODE_RESIZED, owner, second) {
		t.Error("Unregister failed")
	}
	if !bus.Unregister(EVENT_CODE_RESIZED, nil, third) {
		t.Error("Unregister failed")
	}
	got = got[:0]
	if bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{Width: 1}) {
		t.Error("Fire reported handled with only a passive listener left")
	}
	if len(got) != 1 {
		t.Errorf("listeners saw %v", got)
	}
	if bus.Fire(EVENT_CODE_CONFIG_CHANGED, nil, EventContext{}) {
		t.Error("event without listeners reported handled")
	}
}
