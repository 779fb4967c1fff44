package renderer

import (
	"context"
	"errors"
	stdmath "math"
	"math/rand"
	"testing"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// flatTri builds a clip-space triangle at constant depth z whose vertices
// land on the given NDC coordinates.
func flatTri(z float32, ndc [3][2]float32) metadata.Triangle {
	var tri metadata.Triangle
	for i, p := range ndc {
		tri[i] = metadata.Vertex{
			Position: math.NewVec4(p[0]*z, p[1]*z, z, z),
			Texcoord: math.NewVec2(p[0], p[1]),
		}
	}
	return tri
}

// coverAll is wound front facing and covers the whole viewport.
var coverAll = [3][2]float32{{-1, -1}, {-1, 3}, {3, -1}}

func mustFramebuffer(t *testing.T, w, h int) *Framebuffer {
	t.Helper()
	fb, err := NewFramebuffer(w, h)
	if err != nil {
		t.Fatalf("NewFramebuffer(%d, %d): %v", w, h, err)
	}
	return fb
}

// paint writes c into whichever half the fragment lands on.
func paint(c metadata.Color) metadata.Shader {
	return metadata.ShaderFunc(func(v metadata.Vertex, cell metadata.Cell, second bool) metadata.Cell {
		if second {
			cell.Bg, cell.BgDefault = c, false
		} else {
			cell.Fg, cell.FgDefault = c, false
		}
		cell.Glyph = metadata.GLYPH_HALF_TOP
		return cell
	})
}

func TestNewFramebufferValidates(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{0, 4}, {4, 0}, {-2, 4}, {4, 5}} {
		if _, err := NewFramebuffer(tc.w, tc.h); !errors.Is(err, core.ErrInvalidFramebuffer) {
			t.Errorf("NewFramebuffer(%d, %d) = %v", tc.w, tc.h, err)
		}
	}
	fb := mustFramebuffer(t, 6, 4)
	if fb.Rows() != 2 || len(fb.Cells()) != 12 || len(fb.Depth()) != 24 {
		t.Errorf("rows=%d cells=%d depth=%d", fb.Rows(), len(fb.Cells()), len(fb.Depth()))
	}
}

func TestClearResetsBuffers(t *testing.T) {
	fb := mustFramebuffer(t, 8, 8)
	r := NewRasterizer()
	if _, err := r.DrawTriangle(fb, flatTri(2, coverAll), paint(metadata.NewColor(1, 2, 3))); err != nil {
		t.Fatal(err)
	}
	fb.Clear()
	for i, d := range fb.Depth() {
		if d != 0 {
			t.Fatalf("depth[%d] = %v after Clear", i, d)
		}
	}
	for i, c := range fb.Cells() {
		if c != metadata.DefaultCell() {
			t.Fatalf("cell[%d] = %+v after Clear", i, c)
		}
	}
}

func TestBarycentricWeightsSumToOne(t *testing.T) {
	fb := mustFramebuffer(t, 32, 32)
	r := NewRasterizer()
	tri := metadata.Triangle{
		{Position: math.NewVec4(-0.9, -0.8, 1, 1)},
		{Position: math.NewVec4(0.2, 1.6, 2, 2)},
		{Position: math.NewVec4(2.4, -0.3, 3, 3)},
	}
	pt, ok, err := r.prepare(fb, tri)
	if err != nil || !ok {
		t.Fatalf("prepare: ok=%v err=%v", ok, err)
	}

	v0, v1, v2 := pt.v[0], pt.v[1], pt.v[2]
	inside := 0
	for y := pt.minY; y <= pt.maxY; y++ {
		for x := pt.minX; x <= pt.maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(v1.x, v1.y, v2.x, v2.y, px, py) / pt.area
			w1 := edge(v2.x, v2.y, v0.x, v0.y, px, py) / pt.area
			w2 := edge(v0.x, v0.y, v1.x, v1.y, px, py) / pt.area
			if w0 <= 0 || w1 <= 0 || w2 <= 0 {
				continue
			}
			inside++
			if sum := w0 + w1 + w2; sum < 1-1e-5 || sum > 1+1e-5 {
				t.Errorf("pixel (%d,%d): weights sum to %v", x, y, sum)
			}
		}
	}
	if inside == 0 {
		t.Fatal("no pixel strictly inside the triangle")
	}
}

func TestConstantAttributeSurvivesInterpolation(t *testing.T) {
	fb := mustFramebuffer(t, 16, 16)
	tri := metadata.Triangle{
		{Position: math.NewVec4(-1, -1, 1, 1), Texcoord: math.NewVec2(0.3, 0.7)},
		{Position: math.NewVec4(-4, 12, 4, 4), Texcoord: math.NewVec2(0.3, 0.7)},
		{Position: math.NewVec4(6, -2, 2, 2), Texcoord: math.NewVec2(0.3, 0.7)},
	}
	n := 0
	shader := metadata.ShaderFunc(func(v metadata.Vertex, cell metadata.Cell, _ bool) metadata.Cell {
		n++
		if !v.Texcoord.Compare(math.NewVec2(0.3, 0.7), 1e-4) {
			t.Errorf("texcoord at (%v,%v) = %+v", v.Position.X, v.Position.Y, v.Texcoord)
		}
		return cell
	})
	if _, err := NewRasterizer().DrawTriangle(fb, tri, shader); err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("no fragments")
	}
}

func TestPerspectiveCorrectTexcoords(t *testing.T) {
	const size = 64
	fb := mustFramebuffer(t, size, size)

	// A plane receding to the right: Z = X + 2. u is linear in world X.
	world := [3][3]float32{{-1, -1, 1}, {1, 1, 3}, {1, -1, 3}}
	var tri metadata.Triangle
	for i, p := range world {
		tri[i] = metadata.Vertex{
			Position: math.NewVec4(p[0], p[1], p[2], p[2]),
			Texcoord: math.NewVec2((p[0]+1)/2, 0),
		}
	}

	got := map[[2]int]float32{}
	shader := metadata.ShaderFunc(func(v metadata.Vertex, cell metadata.Cell, _ bool) metadata.Cell {
		got[[2]int{int(v.Position.X), int(v.Position.Y)}] = v.Texcoord.X
		return cell
	})
	if _, err := NewRasterizer().DrawTriangle(fb, tri, shader); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("no fragments")
	}

	expected := func(x int) (u, recip float32) {
		ndc := (float32(x)+0.5)/(size/2) - 1
		X := 2 * ndc / (1 - ndc)
		return (X + 1) / 2, (1 - ndc) / 2
	}
	for p, u := range got {
		wantU, wantRecip := expected(p[0])
		if d := u - wantU; d > 1e-3 || d < -1e-3 {
			t.Errorf("pixel %v: u = %v, want %v", p, u, wantU)
		}
		if d := fb.DepthAt(p[0], p[1]) - wantRecip; d > 1e-4 || d < -1e-4 {
			t.Errorf("pixel %v: depth = %v, want %v", p, fb.DepthAt(p[0], p[1]), wantRecip)
		}
	}

	// Near the centroid the screen-linear value is far from the true one.
	centroid := [2]int{28, 21}
	u, ok := got[centroid]
	if !ok {
		t.Fatalf("centroid pixel %v not covered", centroid)
	}
	a, c, b := [2]float32{0, 0}, [2]float32{128.0 / 3, 128.0 / 3}, [2]float32{128.0 / 3, 64.0 / 3}
	area := edge(a[0], a[1], c[0], c[1], b[0], b[1])
	wA := edge(c[0], c[1], b[0], b[1], 28.5, 21.5) / area
	naive := 1 - wA
	if d := naive - u; d < 0.1 && d > -0.1 {
		t.Errorf("u = %v is indistinguishable from screen-linear %v", u, naive)
	}
}

func TestDepthTestIsStrict(t *testing.T) {
	near := metadata.NewColor(255, 0, 0)
	far := metadata.NewColor(0, 0, 255)

	type layer struct {
		z float32
		c metadata.Color
	}
	tests := []struct {
		name          string
		first, second layer
		want          metadata.Color
	}{
		{"near then far", layer{2, near}, layer{5, far}, near},
		{"far then near", layer{5, far}, layer{2, near}, near},
		{"tie keeps first", layer{3, far}, layer{3, near}, far},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := mustFramebuffer(t, 8, 8)
			r := NewRasterizer()
			if _, err := r.DrawTriangle(fb, flatTri(tt.first.z, coverAll), paint(tt.first.c)); err != nil {
				t.Fatal(err)
			}
			before := append([]float32(nil), fb.Depth()...)

			stats, err := r.DrawTriangle(fb, flatTri(tt.second.z, coverAll), paint(tt.second.c))
			if err != nil {
				t.Fatal(err)
			}
			for row := 0; row < fb.Rows(); row++ {
				for x := 0; x < fb.Width(); x++ {
					c := fb.CellAt(x, row)
					if c.Fg != tt.want || c.Bg != tt.want {
						t.Fatalf("cell (%d,%d) = %+v, want colour %+v", x, row, c, tt.want)
					}
				}
			}
			for i, d := range fb.Depth() {
				if d < before[i] {
					t.Fatalf("depth[%d] decreased from %v to %v", i, before[i], d)
				}
			}
			if tt.want == tt.first.c && stats.Fragments != 0 {
				t.Errorf("rejected triangle reported %d fragments", stats.Fragments)
			}
		})
	}
}

func TestSecondRowFlag(t *testing.T) {
	fb := mustFramebuffer(t, 4, 4)
	shader := metadata.ShaderFunc(func(v metadata.Vertex, cell metadata.Cell, second bool) metadata.Cell {
		if y := int(v.Position.Y); (y%2 == 1) != second {
			t.Errorf("y=%d second=%v", y, second)
		}
		return cell
	})
	stats, err := NewRasterizer().DrawTriangle(fb, flatTri(1, coverAll), shader)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Fragments != 16 {
		t.Errorf("fragments = %d, want 16", stats.Fragments)
	}
}

func TestDegenerateTriangleLeavesBuffersUntouched(t *testing.T) {
	nan := float32(stdmath.NaN())
	tests := []struct {
		name string
		tri  metadata.Triangle
	}{
		{"collinear", flatTri(2, [3][2]float32{{-1, -1}, {0, 0}, {1, 1}})},
		{"repeated vertex", flatTri(2, [3][2]float32{{-1, -1}, {-1, -1}, {1, 0}})},
		{"nan position", metadata.Triangle{
			{Position: math.NewVec4(nan, 0, 1, 1)},
			{Position: math.NewVec4(0, 1, 1, 1)},
			{Position: math.NewVec4(1, 0, 1, 1)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := mustFramebuffer(t, 8, 8)
			r := NewRasterizer()
			// something unrelated already on screen
			if _, err := r.DrawTriangle(fb, flatTri(4, [3][2]float32{{-1, -1}, {-1, 0}, {0, -1}}), paint(metadata.NewColor(9, 9, 9))); err != nil {
				t.Fatal(err)
			}
			depth := append([]float32(nil), fb.Depth()...)
			cells := append([]metadata.Cell(nil), fb.Cells()...)

			called := false
			shader := metadata.ShaderFunc(func(_ metadata.Vertex, c metadata.Cell, _ bool) metadata.Cell {
				called = true
				return c
			})
			_, err := r.DrawTriangle(fb, tt.tri, shader)
			if !errors.Is(err, core.ErrDegenerateTriangle) {
				t.Fatalf("err = %v, want ErrDegenerateTriangle", err)
			}
			if called {
				t.Error("shader invoked for a degenerate triangle")
			}
			for i := range depth {
				if fb.Depth()[i] != depth[i] {
					t.Fatalf("depth[%d] changed", i)
				}
			}
			for i := range cells {
				if fb.Cells()[i] != cells[i] {
					t.Fatalf("cell[%d] changed", i)
				}
			}
		})
	}
}

func TestFaceCulling(t *testing.T) {
	front := flatTri(2, coverAll)
	back := metadata.Triangle{front[0], front[2], front[1]}

	tests := []struct {
		name      string
		mode      metadata.FaceCullMode
		tri       metadata.Triangle
		wantDrawn bool
	}{
		{"back culls back", metadata.FaceCullModeBack, back, false},
		{"back keeps front", metadata.FaceCullModeBack, front, true},
		{"front culls front", metadata.FaceCullModeFront, front, false},
		{"front keeps back", metadata.FaceCullModeFront, back, true},
		{"none keeps back", metadata.FaceCullModeNone, back, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := mustFramebuffer(t, 8, 8)
			r := NewRasterizer()
			r.CullMode = tt.mode
			stats, err := r.DrawTriangle(fb, tt.tri, paint(metadata.NewColor(1, 1, 1)))
			if err != nil {
				t.Fatal(err)
			}
			if drawn := stats.Fragments > 0; drawn != tt.wantDrawn {
				t.Errorf("drawn = %v (stats %+v)", drawn, stats)
			}
			if !tt.wantDrawn && stats.Culled != 1 {
				t.Errorf("culled = %d", stats.Culled)
			}
		})
	}
}

func TestClipNear(t *testing.T) {
	const near = 0.5
	v := func(x, y, z float32) metadata.Vertex {
		return metadata.Vertex{Position: math.NewVec4(x, y, z, z), Texcoord: math.NewVec2(z, 0)}
	}
	tests := []struct {
		name    string
		tri     metadata.Triangle
		pieces  int
		clipped bool
	}{
		{"all visible", metadata.Triangle{v(0, 0, 1), v(1, 0, 2), v(0, 1, 3)}, 1, false},
		{"all behind", metadata.Triangle{v(0, 0, 0), v(1, 0, -1), v(0, 1, 0.2)}, 0, true},
		{"one behind", metadata.Triangle{v(0, 0, -1), v(1, 0, 2), v(0, 1, 2)}, 2, true},
		{"two behind", metadata.Triangle{v(0, 0, -1), v(1, 0, -1), v(0, 1, 2)}, 1, true},
		{"vertex on plane", metadata.Triangle{v(0, 0, near), v(1, 0, 2), v(0, 1, -1)}, 1, true},
		{"edge on plane", metadata.Triangle{v(0, 0, near), v(1, 0, near), v(0, 1, -1)}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, clipped := clipNear(nil, tt.tri, near)
			if len(out) != tt.pieces || clipped != tt.clipped {
				t.Fatalf("pieces=%d clipped=%v, want %d %v", len(out), clipped, tt.pieces, tt.clipped)
			}
			if !clipped && out[0] != tt.tri {
				t.Fatal("visible triangle was modified")
			}
			for _, piece := range out {
				for _, pv := range piece {
					if pv.Position.Z < near {
						t.Errorf("vertex z %v in front of near plane", pv.Position.Z)
					}
					// attributes are carried with the position
					if d := pv.Texcoord.X - pv.Position.Z; d > 1e-5 || d < -1e-5 {
						t.Errorf("texcoord %v does not follow z %v", pv.Texcoord.X, pv.Position.Z)
					}
				}
			}
		})
	}
}

func TestClippedTriangleStillRasterizes(t *testing.T) {
	tests := []struct {
		name string
		tri  metadata.Triangle
	}{
		{"one vertex behind", metadata.Triangle{
			{Position: math.NewVec4(-1, -1, 1, 1)},
			{Position: math.NewVec4(0, 2, -1, -1)},
			{Position: math.NewVec4(1, -1, 1, 1)},
		}},
		{"one vertex on the plane", metadata.Triangle{
			{Position: math.NewVec4(-0.25, -0.25, 0.5, 0.5)},
			{Position: math.NewVec4(0, 2, 2, 2)},
			{Position: math.NewVec4(1, -1, -1, -1)},
		}},
		{"one vertex just past the plane", metadata.Triangle{
			{Position: math.NewVec4(-0.25, -0.25, 0.50001, 0.50001)},
			{Position: math.NewVec4(0, 2, 2, 2)},
			{Position: math.NewVec4(1, -1, -1, -1)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := mustFramebuffer(t, 16, 16)
			r := NewRasterizer()
			r.NearZ = 0.5
			r.CullMode = metadata.FaceCullModeNone
			stats, err := r.DrawTriangle(fb, tt.tri, paint(metadata.NewColor(5, 5, 5)))
			if err != nil {
				t.Fatal(err)
			}
			if stats.Clipped != 1 || stats.Degenerate != 0 || stats.Fragments == 0 {
				t.Errorf("stats = %+v", stats)
			}
		})
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tris := make([]metadata.Triangle, 200)
	for i := range tris {
		for k := 0; k < 3; k++ {
			z := 1 + rng.Float32()*4
			tris[i][k] = metadata.Vertex{
				Position: math.NewVec4((rng.Float32()*2-1)*z, (rng.Float32()*2-1)*z, z, z),
				Texcoord: math.NewVec2(rng.Float32(), rng.Float32()),
			}
		}
	}
	// exact depth ties between triangles exercise the draw-order rule
	tris = append(tris, flatTri(3, coverAll), flatTri(3, coverAll))

	shader := metadata.ShaderFunc(func(v metadata.Vertex, cell metadata.Cell, second bool) metadata.Cell {
		c := metadata.NewColor(uint8(v.Texcoord.X*250), uint8(v.Texcoord.Y*250), uint8(v.Position.Z*10))
		if second {
			cell.Bg, cell.BgDefault = c, false
		} else {
			cell.Fg, cell.FgDefault = c, false
		}
		return cell
	})

	render := func(workers int) (*Framebuffer, metadata.FrameStats) {
		fb := mustFramebuffer(t, 37, 30)
		r := NewRasterizer()
		r.Workers = workers
		stats, err := r.DrawTriangles(context.Background(), fb, tris, shader)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		return fb, stats
	}

	serial, serialStats := render(1)
	for _, workers := range []int{2, 3, 4, 16, 64} {
		fb, stats := render(workers)
		if stats != serialStats {
			t.Errorf("workers=%d: stats %+v, serial %+v", workers, stats, serialStats)
		}
		for i := range serial.Depth() {
			if fb.Depth()[i] != serial.Depth()[i] {
				t.Fatalf("workers=%d: depth[%d] = %v, serial %v", workers, i, fb.Depth()[i], serial.Depth()[i])
			}
		}
		for i := range serial.Cells() {
			if fb.Cells()[i] != serial.Cells()[i] {
				t.Fatalf("workers=%d: cell[%d] = %+v, serial %+v", workers, i, fb.Cells()[i], serial.Cells()[i])
			}
		}
	}
}

func TestDrawTrianglesSkipsDegenerate(t *testing.T) {
	fb := mustFramebuffer(t, 8, 8)
	tris := []metadata.Triangle{
		flatTri(2, [3][2]float32{{-1, -1}, {0, 0}, {1, 1}}),
		flatTri(2, coverAll),
	}
	stats, err := NewRasterizer().DrawTriangles(context.Background(), fb, tris, paint(metadata.NewColor(3, 3, 3)))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Submitted != 2 || stats.Degenerate != 1 || stats.Fragments != 64 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBandsCoverEvenRows(t *testing.T) {
	fb := mustFramebuffer(t, 4, 14)
	r := NewRasterizer()
	r.Workers = 3
	bands := r.bands(fb)
	next := 0
	for _, b := range bands {
		if b[0] != next || b[0]%2 != 0 || b[1]%2 != 0 || b[1] <= b[0] {
			t.Fatalf("bands = %v", bands)
		}
		next = b[1]
	}
	if next != 14 {
		t.Fatalf("bands end at %d", next)
	}
}
