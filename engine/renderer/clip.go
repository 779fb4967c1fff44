package renderer

import (
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

// lerpVertex interpolates every attribute of a and b in clip space.
func lerpVertex(a, b metadata.Vertex, t float32) metadata.Vertex {
	return metadata.Vertex{
		Position: a.Position.Lerp(b.Position, t),
		Texcoord: a.Texcoord.Lerp(b.Texcoord, t),
		Normal:   a.Normal.Lerp(b.Normal, t),
	}
}

// insideNear reports whether a clip-space vertex lies on the visible side
// of the near plane. NaN positions are never inside.
func insideNear(v metadata.Vertex, near float32) bool {
	return v.Position.Z >= near
}

// onNear reports whether the visible endpoint of edge ab sits exactly on
// the plane.
func onNear(a, b metadata.Vertex, aIn bool, near float32) bool {
	if aIn {
		return a.Position.Z == near
	}
	return b.Position.Z == near
}

// clipNear clips tri against the plane z = near in clip space and appends
// the resulting triangles to dst. A triangle that is entirely visible is
// appended untouched, one that is entirely behind the plane appends nothing.
// The clipped polygon is fan triangulated from its first vertex so every
// piece keeps the winding of the input. Vertices exactly on the plane are
// kept once, so no zero-area piece is emitted for them. The second return value reports
// whether the triangle crossed the plane.
func clipNear(dst []metadata.Triangle, tri metadata.Triangle, near float32) ([]metadata.Triangle, bool) {
	in0 := insideNear(tri[0], near)
	in1 := insideNear(tri[1], near)
	in2 := insideNear(tri[2], near)
	if in0 && in1 && in2 {
		return append(dst, tri), false
	}
	if !in0 && !in1 && !in2 {
		return dst, true
	}

	// Sutherland-Hodgman against one plane yields at most four vertices.
	var poly [4]metadata.Vertex
	n := 0
	for i := 0; i < 3; i++ {
		a := tri[i]
		b := tri[(i+1)%3]
		aIn := insideNear(a, near)
		if aIn {
			poly[n] = a
			n++
		}
		bIn := insideNear(b, near)
		// a vertex lying on the plane is its own crossing point
		if aIn != bIn && !onNear(a, b, aIn, near) {
			t := (near - a.Position.Z) / (b.Position.Z - a.Position.Z)
			v := lerpVertex(a, b, t)
			// pin the crossing exactly onto the plane
			v.Position.Z = near
			poly[n] = v
			n++
		}
	}

	for i := 1; i+1 < n; i++ {
		dst = append(dst, metadata.Triangle{poly[0], poly[i], poly[i+1]})
	}
	return dst, true
}
