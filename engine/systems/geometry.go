package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

/** @brief The name of the default geometry. */
const DefaultGeometryName string = "default"

/**
 * @brief An indexed mesh description: a vertex table and triangles as
 * index triples into it. Front faces wind clockwise when seen from outside.
 */
type GeometryConfig struct {
	/** @brief An array of Vertices. */
	Vertices []metadata.Vertex
	/** @brief Three indices per triangle. */
	Indices []uint32

	Center     math.Vec3
	MinExtents math.Vec3
	MaxExtents math.Vec3

	/** @brief The Name of the geometry. */
	Name string
}

// BuildMesh resolves the index table into a flat triangle list. Vertices
// with a zero normal take the normal of the triangle they end up in.
func BuildMesh(config *GeometryConfig) (*metadata.Mesh, error) {
	if len(config.Indices)%3 != 0 {
		return nil, fmt.Errorf("geometry %q: %d indices is not a whole number of triangles", config.Name, len(config.Indices))
	}
	mesh := &metadata.Mesh{
		Name:      config.Name,
		Triangles: make([]metadata.Triangle, len(config.Indices)/3),
	}
	for t := range mesh.Triangles {
		for k := 0; k < 3; k++ {
			idx := config.Indices[t*3+k]
			if int(idx) >= len(config.Vertices) {
				return nil, fmt.Errorf("geometry %q: index %d out of range (%d vertices)", config.Name, idx, len(config.Vertices))
			}
			mesh.Triangles[t][k] = config.Vertices[idx]
		}
		fillFaceNormals(&mesh.Triangles[t])
	}
	return mesh, nil
}

// fillFaceNormals gives vertices without a normal the outward normal of
// their triangle. Front faces wind clockwise seen from outside, so the
// right-handed face normal points in and is flipped.
func fillFaceNormals(tri *metadata.Triangle) {
	var face math.Vec3
	for k := range tri {
		if tri[k].Normal != math.NewVec3Zero() {
			continue
		}
		if face == math.NewVec3Zero() {
			face = math.FaceNormal(tri[0].Position.ToVec3(), tri[1].Position.ToVec3(), tri[2].Position.ToVec3()).MulScalar(-1)
		}
		tri[k].Normal = face
	}
}

type cubeFace struct {
	normal  math.Vec3
	corners [4][3]float32 // -1 picks the min extent, +1 the max
}

var cubeFaces = [6]cubeFace{
	// Front face
	{math.NewVec3(0, 0, 1), [4][3]float32{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}}},
	// Back face
	{math.NewVec3(0, 0, -1), [4][3]float32{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}}},
	// Left
	{math.NewVec3(-1, 0, 0), [4][3]float32{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}}},
	// Right face
	{math.NewVec3(1, 0, 0), [4][3]float32{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}}},
	// Bottom face
	{math.NewVec3(0, -1, 0), [4][3]float32{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}}},
	// Top face
	{math.NewVec3(0, 1, 0), [4][3]float32{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}}},
}

/**
 * @brief Generates a box centred on the origin, four vertices and two
 * triangles per face, each face mapped once over [0, tile].
 *
 * @param width The x extent. Zero defaults to one.
 * @param height The y extent. Zero defaults to one.
 * @param depth The z extent. Zero defaults to one.
 * @param tileX How many times the texture repeats across a face horizontally.
 * @param tileY How many times the texture repeats across a face vertically.
 * @param name The geometry name.
 */
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name string) *GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	config := &GeometryConfig{
		Vertices:   make([]metadata.Vertex, 0, 4*6), // 4 verts per side, 6 sides
		Indices:    make([]uint32, 0, 6*6),          // 6 indices per side, 6 sides
		MinExtents: half.MulScalar(-1),
		MaxExtents: half,
		// Always 0 since min/max of each axis are -/+ half of the size.
		Center: math.NewVec3Zero(),
		Name:   name,
	}
	if config.Name == "" {
		config.Name = DefaultGeometryName
	}

	uvs := [4]math.Vec2{
		math.NewVec2(0, 0),
		math.NewVec2(tileX, tileY),
		math.NewVec2(0, tileY),
		math.NewVec2(tileX, 0),
	}
	for i, face := range cubeFaces {
		for k, c := range face.corners {
			config.Vertices = append(config.Vertices, metadata.Vertex{
				Position: math.NewVec4(c[0]*half.X, c[1]*half.Y, c[2]*half.Z, 1),
				Texcoord: uvs[k],
				Normal:   face.normal,
			})
		}
		v := uint32(i * 4)
		config.Indices = append(config.Indices, v+0, v+2, v+1, v+0, v+1, v+3)
	}
	return config
}

// GenerateCube returns the unit cube: 12 triangles, one texture tile per face.
func GenerateCube() *metadata.Mesh {
	mesh, err := BuildMesh(GenerateCubeConfig(1, 1, 1, 1, 1, "cube"))
	if err != nil {
		// the generated table is always consistent
		panic(err)
	}
	return mesh
}

/**
 * @brief Generates a torus around the y axis.
 *
 * @param majorRadius Distance from the centre of the tube to the centre of the torus.
 * @param minorRadius Radius of the tube.
 * @param majorSegments Segments around the ring. Minimum 3.
 * @param minorSegments Segments around the tube. Minimum 3.
 * @param name The geometry name.
 */
func GenerateTorusConfig(majorRadius, minorRadius float32, majorSegments, minorSegments int, name string) (*GeometryConfig, error) {
	if majorSegments < 3 || minorSegments < 3 {
		return nil, fmt.Errorf("torus needs at least 3x3 segments, got %dx%d: %w", majorSegments, minorSegments, core.ErrInvalidConfig)
	}
	if !(minorRadius > 0) || !(majorRadius > minorRadius) {
		return nil, fmt.Errorf("torus radii %v/%v must satisfy 0 < minor < major: %w", majorRadius, minorRadius, core.ErrInvalidConfig)
	}

	stride := minorSegments + 1
	config := &GeometryConfig{
		Vertices:   make([]metadata.Vertex, 0, (majorSegments+1)*stride),
		Indices:    make([]uint32, 0, majorSegments*minorSegments*6),
		MinExtents: math.NewVec3(-(majorRadius + minorRadius), -minorRadius, -(majorRadius + minorRadius)),
		MaxExtents: math.NewVec3(majorRadius+minorRadius, minorRadius, majorRadius+minorRadius),
		Center:     math.NewVec3Zero(),
		Name:       name,
	}
	if config.Name == "" {
		config.Name = DefaultGeometryName
	}

	// seams are duplicated so the texture wraps without a jump
	for i := 0; i <= majorSegments; i++ {
		s := float32(i) / float32(majorSegments)
		u := s * math.K_PI_2
		cu, su := math.Cos(u), math.Sin(u)
		for j := 0; j <= minorSegments; j++ {
			t := float32(j) / float32(minorSegments)
			v := t * math.K_PI_2
			cv, sv := math.Cos(v), math.Sin(v)
			ring := majorRadius + minorRadius*cv
			config.Vertices = append(config.Vertices, metadata.Vertex{
				Position: math.NewVec4(ring*cu, minorRadius*sv, ring*su, 1),
				Texcoord: math.NewVec2(s*4, t),
				Normal:   math.NewVec3(cv*cu, sv, cv*su),
			})
		}
	}

	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			a := uint32(i*stride + j)
			b := uint32((i+1)*stride + j)
			c := uint32((i+1)*stride + j + 1)
			d := uint32(i*stride + j + 1)
			config.Indices = append(config.Indices, a, b, d, b, c, d)
		}
	}
	return config, nil
}

// GenerateTorus builds a torus mesh with the given radii and tessellation.
func GenerateTorus(majorRadius, minorRadius float32, majorSegments, minorSegments int) (*metadata.Mesh, error) {
	config, err := GenerateTorusConfig(majorRadius, minorRadius, majorSegments, minorSegments, "torus")
	if err != nil {
		return nil, err
	}
	return BuildMesh(config)
}

const (
	MESH_CUBE  = "cube"
	MESH_TORUS = "torus"
)

// MeshNames lists the meshes GenerateMesh knows.
func MeshNames() []string {
	return []string{MESH_CUBE, MESH_TORUS}
}

// GenerateMesh builds one of the stock meshes by name.
func GenerateMesh(name string) (*metadata.Mesh, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case MESH_CUBE, "":
		return GenerateCube(), nil
	case MESH_TORUS:
		return GenerateTorus(0.7, 0.3, 24, 12)
	}
	return nil, fmt.Errorf("unknown mesh %q (want %s): %w", name, strings.Join(MeshNames(), " or "), core.ErrInvalidConfig)
}
