package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

const (
	/** @brief Screen areas with an absolute value below this are degenerate. */
	DEGENERATE_AREA_EPSILON float32 = 1e-6
	/** @brief Default clip-space z below which geometry is clipped away. */
	DEFAULT_NEAR_Z float32 = 1e-4
)

/**
 * @brief Turns clip-space triangles into depth-tested fragments and feeds
 * them to a shader. A Rasterizer holds configuration only; all per-frame
 * state lives in the Framebuffer.
 */
type Rasterizer struct {
	/** @brief Clip-space z of the near clipping plane. Must be positive. */
	NearZ float32
	/** @brief Which winding is discarded. */
	CullMode metadata.FaceCullMode
	/**
	 * @brief Number of horizontal bands DrawTriangles splits the framebuffer
	 * into. Values below 2 rasterize on the calling goroutine.
	 */
	Workers int
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		NearZ:    DEFAULT_NEAR_Z,
		CullMode: metadata.FaceCullModeBack,
		Workers:  1,
	}
}

// AutoWorkers returns a band count suited to the host.
func AutoWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// screenVertex is a vertex after the divide and viewport transform.
// Attributes are pre-divided by the clip z and z holds 1/z.
type screenVertex struct {
	x, y  float32
	recip float32
	tex   math.Vec2
	nrm   math.Vec3
}

// preparedTriangle is everything the scan loop needs for one triangle.
type preparedTriangle struct {
	v    [3]screenVertex
	area float32
	// inclusive pixel bounds, already clamped to the framebuffer
	minX, maxX, minY, maxY int
}

func edge(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

func (r *Rasterizer) nearZ() float32 {
	if r.NearZ > 0 {
		return r.NearZ
	}
	return DEFAULT_NEAR_Z
}

// toScreen performs the perspective divide and viewport transform.
func toScreen(v metadata.Vertex, width, height float32) screenVertex {
	z := v.Position.Z
	return screenVertex{
		x:     (1 + v.Position.X/z) * 0.5 * width,
		y:     (1 + v.Position.Y/z) * 0.5 * height,
		recip: 1 / z,
		tex:   v.Texcoord.MulScalar(1 / z),
		nrm:   v.Normal.MulScalar(1 / z),
	}
}

// prepare sets up one clip-space triangle that lies entirely in front of
// the near plane. It reports culled triangles with ok=false and a nil
// error, and degenerate ones with ErrDegenerateTriangle.
func (r *Rasterizer) prepare(fb *Framebuffer, tri metadata.Triangle) (pt preparedTriangle, ok bool, err error) {
	w := float32(fb.width)
	h := float32(fb.height)
	for i := range tri {
		pt.v[i] = toScreen(tri[i], w, h)
	}

	v0, v1, v2 := &pt.v[0], &pt.v[1], &pt.v[2]
	area := edge(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if !math.IsFinite(area) || (area < DEGENERATE_AREA_EPSILON && area > -DEGENERATE_AREA_EPSILON) {
		return pt, false, fmt.Errorf("screen area %v: %w", area, core.ErrDegenerateTriangle)
	}

	front := area > 0
	switch r.CullMode {
	case metadata.FaceCullModeBack:
		if !front {
			return pt, false, nil
		}
	case metadata.FaceCullModeFront:
		if front {
			return pt, false, nil
		}
	}
	if !front {
		// flip to the winding the coverage test expects
		pt.v[1], pt.v[2] = pt.v[2], pt.v[1]
		area = -area
	}
	pt.area = area

	minX, maxX := v0.x, v0.x
	minY, maxY := v0.y, v0.y
	for _, v := range pt.v[1:] {
		minX = min(minX, v.x)
		maxX = max(maxX, v.x)
		minY = min(minY, v.y)
		maxY = max(maxY, v.y)
	}
	pt.minX = int(math.Clamp(minX, 0, w-1))
	pt.maxX = int(math.Clamp(maxX, 0, w-1))
	pt.minY = int(math.Clamp(minY, 0, h-1))
	pt.maxY = int(math.Clamp(maxY, 0, h-1))
	return pt, true, nil
}

// prepareAll clips tri and sets up every piece. A degenerate triangle never
// reaches the buffers. Degenerate slivers produced by clipping are dropped
// while the remaining pieces are kept.
func (r *Rasterizer) prepareAll(dst []preparedTriangle, fb *Framebuffer, tri metadata.Triangle, stats *metadata.FrameStats) ([]preparedTriangle, error) {
	stats.Submitted++

	var storage [2]metadata.Triangle
	pieces, clipped := clipNear(storage[:0], tri, r.nearZ())
	if clipped {
		stats.Clipped++
	}

	start := len(dst)
	usable := 0
	var degenerate error
	for _, piece := range pieces {
		pt, ok, err := r.prepare(fb, piece)
		if err != nil {
			if !clipped {
				stats.Degenerate++
				return dst[:start], err
			}
			// a sliver cut off at the near plane; the other piece still counts
			degenerate = err
			continue
		}
		usable++
		if !ok {
			stats.Culled++
			continue
		}
		dst = append(dst, pt)
	}
	if usable == 0 && degenerate != nil {
		stats.Degenerate++
		return dst[:start], degenerate
	}
	return dst, nil
}

// scan rasterizes pt into pixel rows [y0, y1) and returns the number of
// fragments that passed the depth test.
func scan(fb *Framebuffer, pt *preparedTriangle, shader metadata.Shader, y0, y1 int) int {
	minY := max(pt.minY, y0)
	maxY := min(pt.maxY, y1-1)

	v0, v1, v2 := &pt.v[0], &pt.v[1], &pt.v[2]
	accepted := 0
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := pt.minX; x <= pt.maxX; x++ {
			px := float32(x) + 0.5

			w0 := edge(v1.x, v1.y, v2.x, v2.y, px, py)
			w1 := edge(v2.x, v2.y, v0.x, v0.y, px, py)
			w2 := edge(v0.x, v0.y, v1.x, v1.y, px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			w0 /= pt.area
			w1 /= pt.area
			w2 /= pt.area

			recip := w0*v0.recip + w1*v1.recip + w2*v2.recip
			idx := y*fb.width + x
			if !(recip > fb.depth[idx]) {
				continue
			}
			fb.depth[idx] = recip

			z := 1 / recip
			frag := metadata.Vertex{
				Position: math.NewVec4(px, py, z, recip),
				Texcoord: v0.tex.MulScalar(w0).Add(v1.tex.MulScalar(w1)).Add(v2.tex.MulScalar(w2)).MulScalar(z),
				Normal:   v0.nrm.MulScalar(w0).Add(v1.nrm.MulScalar(w1)).Add(v2.nrm.MulScalar(w2)).MulScalar(z),
			}

			cell := (y/2)*fb.width + x
			fb.cells[cell] = shader.Shade(frag, fb.cells[cell], y%2 == 1)
			accepted++
		}
	}
	return accepted
}

/**
 * @brief Rasterizes one clip-space triangle into fb. Every covered pixel
 * whose interpolated reciprocal depth is strictly greater than the stored
 * one is written and handed to shader. The fragment vertex carries the
 * pixel centre in X/Y, the depth in Z and its reciprocal in W, with
 * perspective-correct texture coordinates and normals.
 *
 * @return Counters for the triangle, and ErrDegenerateTriangle if its
 * screen area is (near) zero or not finite. Buffers are untouched on error.
 */
func (r *Rasterizer) DrawTriangle(fb *Framebuffer, tri metadata.Triangle, shader metadata.Shader) (metadata.FrameStats, error) {
	var stats metadata.FrameStats
	var storage [2]preparedTriangle
	prepared, err := r.prepareAll(storage[:0], fb, tri, &stats)
	if err != nil {
		return stats, err
	}
	for i := range prepared {
		stats.Fragments += scan(fb, &prepared[i], shader, 0, fb.height)
	}
	return stats, nil
}

/**
 * @brief Rasterizes tris in order. Degenerate triangles are skipped and
 * counted; any other failure aborts. With Workers > 1 the framebuffer is
 * split into bands of whole cell rows, each band replaying every triangle
 * in submission order, so the output matches the serial result exactly.
 * The shader must then be safe for concurrent use.
 */
func (r *Rasterizer) DrawTriangles(ctx context.Context, fb *Framebuffer, tris []metadata.Triangle, shader metadata.Shader) (metadata.FrameStats, error) {
	var stats metadata.FrameStats
	prepared := make([]preparedTriangle, 0, len(tris))
	for _, tri := range tris {
		var err error
		prepared, err = r.prepareAll(prepared, fb, tri, &stats)
		if err != nil {
			if errors.Is(err, core.ErrDegenerateTriangle) {
				core.LogDebug("skipping triangle: %v", err)
				continue
			}
			return stats, err
		}
	}

	bands := r.bands(fb)
	if len(bands) == 1 {
		for i := range prepared {
			stats.Fragments += scan(fb, &prepared[i], shader, 0, fb.height)
		}
		return stats, nil
	}

	fragments := make([]int, len(bands))
	g, gctx := errgroup.WithContext(ctx)
	for b, band := range bands {
		g.Go(func() error {
			for i := range prepared {
				if i%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				fragments[b] += scan(fb, &prepared[i], shader, band[0], band[1])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	for _, n := range fragments {
		stats.Fragments += n
	}
	return stats, nil
}

// bands splits the pixel rows into [start, end) ranges that begin on even
// rows, so no two bands share a cell.
func (r *Rasterizer) bands(fb *Framebuffer) [][2]int {
	rows := fb.Rows()
	n := min(max(r.Workers, 1), rows)
	if n == 1 {
		return [][2]int{{0, fb.height}}
	}
	per := (rows + n - 1) / n
	out := make([][2]int, 0, n)
	for start := 0; start < rows; start += per {
		end := min(start+per, rows)
		out = append(out, [2]int{start * 2, end * 2})
	}
	return out
}
