package metadata

import (
	"testing"

	"github.com/spaghettifunk/halfblock/engine/math"
)

func TestTriangleTransformRotatesNormals(t *testing.T) {
	v := Vertex{
		Position: math.NewVec4(1, 0, 0, 1),
		Texcoord: math.NewVec2(0.25, 0.75),
		Normal:   math.NewVec3(1, 0, 0),
	}
	model := math.NewMat4Identity().RotateY(math.K_HALF_PI)
	out := Triangle{v, v, v}.Transform(model, model.NormalMatrix())

	for i, got := range out {
		// the normal turns exactly as the position does
		want := got.Position.ToVec3()
		if !got.Normal.Compare(want, 1e-5) {
			t.Errorf("vertex %d: normal %+v, want %+v", i, got.Normal, want)
		}
		if got.Normal.Compare(v.Normal, 1e-3) {
			t.Errorf("vertex %d: normal was not rotated", i)
		}
		if got.Texcoord != v.Texcoord {
			t.Errorf("vertex %d: texcoord %+v changed", i, got.Texcoord)
		}
	}
}

func TestTriangleTransformRenormalizes(t *testing.T) {
	v := Vertex{Position: math.NewVec4(0, 0, 0, 1), Normal: math.NewVec3(0, 1, 0)}
	model := math.NewMat4Scale(math.NewVec3(3, 3, 3))
	out := Triangle{v, v, v}.Transform(model, model.NormalMatrix())
	if n := out[0].Normal; !n.Compare(math.NewVec3(0, 1, 0), 1e-5) {
		t.Errorf("scaled normal = %+v, want unit +y", n)
	}

	// a zero normal stays zero
	v.Normal = math.NewVec3Zero()
	out = Triangle{v, v, v}.Transform(model, model.NormalMatrix())
	if out[0].Normal != math.NewVec3Zero() {
		t.Errorf("zero normal became %+v", out[0].Normal)
	}
}
