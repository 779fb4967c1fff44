package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BenchFrameStepMS advances the animation by one 60 Hz frame per render.
const BenchFrameStepMS = 1000.0 / 60.0

// BenchResult summarizes an offscreen run.
type BenchResult struct {
	RunID     uuid.UUID
	Frames    int
	Elapsed   time.Duration
	Triangles int
	Fragments int
}

// FPS is the sustained frame rate of the run.
func (r BenchResult) FPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

func (r BenchResult) String() string {
	ms := 0.0
	if r.Frames > 0 {
		ms = float64(r.Elapsed.Microseconds()) / 1000 / float64(r.Frames)
	}
	return fmt.Sprintf("run %s: %d frames in %s, %.1f fps, %.3f ms/frame, %d triangles, %d fragments",
		r.RunID, r.Frames, r.Elapsed.Round(time.Millisecond), r.FPS(), ms, r.Triangles, r.Fragments)
}

// Bench renders frames back to back at simulated times 0, step, 2*step...
// so the result does not depend on the wall clock. progress, when not nil,
// runs after every frame.
func (e *Engine) Bench(ctx context.Context, frames int, stepMS float64, progress func()) (BenchResult, error) {
	result := BenchResult{RunID: e.runID}
	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		packet, err := e.RenderFrame(ctx, float64(i)*stepMS)
		if err != nil {
			return result, err
		}
		result.Frames++
		result.Triangles += packet.Stats.Submitted
		result.Fragments += packet.Stats.Fragments
		if progress != nil {
			progress()
		}
	}
	result.Elapsed = time.Since(start)
	return result, nil
}
