package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// checkWinding asserts that every triangle winds clockwise seen from the
// side its vertex normals point to.
func checkWinding(t *testing.T, mesh *metadata.Mesh) {
	t.Helper()
	for i, tri := range mesh.Triangles {
		n := math.FaceNormal(tri[0].Position.ToVec3(), tri[1].Position.ToVec3(), tri[2].Position.ToVec3())
		if n.LengthSquared() == 0 {
			t.Errorf("%s triangle %d is degenerate", mesh.Name, i)
			continue
		}
		for k, v := range tri {
			if d := n.Dot(v.Normal); d >= 0 {
				t.Errorf("%s triangle %d vertex %d: face normal %v against vertex normal %v", mesh.Name, i, k, n, v.Normal)
			}
		}
	}
}

func TestGenerateCube(t *testing.T) {
	mesh := GenerateCube()
	if mesh.TriangleCount() != 12 {
		t.Fatalf("TriangleCount = %d, want 12", mesh.TriangleCount())
	}
	for i, tri := range mesh.Triangles {
		for k, v := range tri {
			p := v.Position
			if p.W != 1 {
				t.Errorf("triangle %d vertex %d w = %v", i, k, p.W)
			}
			for _, c := range []float32{p.X, p.Y, p.Z} {
				if c != 0.5 && c != -0.5 {
					t.Errorf("triangle %d vertex %d off the unit cube: %v", i, k, p)
				}
			}
			if v.Texcoord.X < 0 || v.Texcoord.X > 1 || v.Texcoord.Y < 0 || v.Texcoord.Y > 1 {
				t.Errorf("triangle %d vertex %d texcoord %v", i, k, v.Texcoord)
			}
		}
	}
	checkWinding(t, mesh)
}

func TestGenerateCubeConfigDefaults(t *testing.T) {
	config := GenerateCubeConfig(0, 2, 0, 0, 3, "")
	if config.Name != DefaultGeometryName {
		t.Errorf("Name = %q", config.Name)
	}
	if len(config.Vertices) != 24 || len(config.Indices) != 36 {
		t.Fatalf("got %d vertices, %d indices", len(config.Vertices), len(config.Indices))
	}
	want := math.NewVec3(0.5, 1, 0.5)
	if !config.MaxExtents.Compare(want, 0) || !config.MinExtents.Compare(want.MulScalar(-1), 0) {
		t.Errorf("extents %v..%v", config.MinExtents, config.MaxExtents)
	}
	var maxU, maxV float32
	for _, v := range config.Vertices {
		maxU = max(maxU, v.Texcoord.X)
		maxV = max(maxV, v.Texcoord.Y)
	}
	if maxU != 1 || maxV != 3 {
		t.Errorf("texcoord range u<=%v v<=%v, want 1 and 3", maxU, maxV)
	}
}

func TestGenerateTorus(t *testing.T) {
	mesh, err := GenerateTorus(1, 0.4, 12, 8)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.TriangleCount() != 12*8*2 {
		t.Fatalf("TriangleCount = %d", mesh.TriangleCount())
	}
	for i, tri := range mesh.Triangles {
		for k, v := range tri {
			p := v.Position.ToVec3()
			ring := math.NewVec3(p.X, 0, p.Z)
			// distance from the tube centre line
			centre := ring.Normalize()
			if d := p.Sub(centre).Length(); d < 0.399 || d > 0.401 {
				t.Errorf("triangle %d vertex %d is %v from the tube centre", i, k, d)
			}
			if l := v.Normal.Length(); l < 0.999 || l > 1.001 {
				t.Errorf("triangle %d vertex %d normal length %v", i, k, l)
			}
		}
	}
	checkWinding(t, mesh)
}

func TestGenerateTorusRejectsBadInput(t *testing.T) {
	tests := []struct {
		name         string
		major, minor float32
		rings, segs  int
	}{
		{"too few rings", 1, 0.3, 2, 8},
		{"too few segments", 1, 0.3, 8, 2},
		{"zero tube", 1, 0, 8, 8},
		{"self intersecting", 0.3, 0.5, 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateTorus(tt.major, tt.minor, tt.rings, tt.segs); !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestBuildMeshRejectsBadIndices(t *testing.T) {
	config := GenerateCubeConfig(1, 1, 1, 1, 1, "broken")
	config.Indices = config.Indices[:4]
	if _, err := BuildMesh(config); err == nil {
		t.Error("partial triangle accepted")
	}
	config.Indices = []uint32{0, 1, 99}
	if _, err := BuildMesh(config); err == nil {
		t.Error("out of range index accepted")
	}
}

func TestBuildMeshFillsMissingNormals(t *testing.T) {
	config := GenerateCubeConfig(1, 1, 1, 1, 1, "bare")
	for i := range config.Vertices {
		config.Vertices[i].Normal = math.NewVec3Zero()
	}
	bare, err := BuildMesh(config)
	if err != nil {
		t.Fatal(err)
	}
	want := GenerateCube()
	for i, tri := range bare.Triangles {
		for k, v := range tri {
			if !v.Normal.Compare(want.Triangles[i][k].Normal, 1e-5) {
				t.Errorf("triangle %d vertex %d: normal %+v, want %+v", i, k, v.Normal, want.Triangles[i][k].Normal)
			}
		}
	}
	checkWinding(t, bare)
}

func TestGenerateMesh(t *testing.T) {
	for _, name := range MeshNames() {
		mesh, err := GenerateMesh(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if mesh.TriangleCount() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if _, err := GenerateMesh("teapot"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("teapot: %v", err)
	}
}
