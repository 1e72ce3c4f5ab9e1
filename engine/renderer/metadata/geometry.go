package metadata

import (
	"github.com/spaghettifunk/volren/engine/math"
)

/**
 * @brief A cube vertex: position in [-0.5,0.5]^3 and the matching volume-space
 * coordinate in [0,1]^3 carried as a vertex attribute. The face passes
 * rasterize this coordinate into the entry/exit textures.
 */
type CubeVertex struct {
	Position math.Vec3
	Coord    math.Vec3
}

// A fullscreen quad vertex used by the composite pass.
type QuadVertex struct {
	Position math.Vec2
	UV       math.Vec2
}

const (
	CubeVertexStride = 6 * 4 // two vec3 attributes
	QuadVertexStride = 4 * 4 // two vec2 attributes
)

var cubeVertices = []CubeVertex{
	// 4 vertices on z = +0.5
	{Position: math.Vec3{X: -0.5, Y: -0.5, Z: 0.5}, Coord: math.Vec3{X: 0, Y: 0, Z: 1}},
	{Position: math.Vec3{X: 0.5, Y: -0.5, Z: 0.5}, Coord: math.Vec3{X: 1, Y: 0, Z: 1}},
	{Position: math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Coord: math.Vec3{X: 1, Y: 1, Z: 1}},
	{Position: math.Vec3{X: -0.5, Y: 0.5, Z: 0.5}, Coord: math.Vec3{X: 0, Y: 1, Z: 1}},
	// 4 vertices on z = -0.5
	{Position: math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, Coord: math.Vec3{X: 0, Y: 0, Z: 0}},
	{Position: math.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, Coord: math.Vec3{X: 1, Y: 0, Z: 0}},
	{Position: math.Vec3{X: 0.5, Y: 0.5, Z: -0.5}, Coord: math.Vec3{X: 1, Y: 1, Z: 0}},
	{Position: math.Vec3{X: -0.5, Y: 0.5, Z: -0.5}, Coord: math.Vec3{X: 0, Y: 1, Z: 0}},
}

var cubeIndices = []uint16{
	0, 1, 3, 3, 1, 2,
	2, 1, 5, 2, 5, 6,
	3, 2, 7, 7, 2, 6,
	4, 0, 3, 4, 3, 7,
	4, 1, 0, 4, 5, 1,
	7, 6, 5, 7, 5, 4,
}

var quadVertices = []QuadVertex{
	{Position: math.Vec2{X: -1, Y: -1}, UV: math.Vec2{X: 0, Y: 0}},
	{Position: math.Vec2{X: 1, Y: -1}, UV: math.Vec2{X: 1, Y: 0}},
	{Position: math.Vec2{X: 1, Y: 1}, UV: math.Vec2{X: 1, Y: 1}},
	{Position: math.Vec2{X: -1, Y: 1}, UV: math.Vec2{X: 0, Y: 1}},
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// CubeMesh returns the unit cube: 8 vertices, 12 triangles. Callers must not
// mutate the returned slices.
func CubeMesh() ([]CubeVertex, []uint16) {
	return cubeVertices, cubeIndices
}

// QuadMesh returns the fullscreen quad: 4 vertices, 2 triangles.
func QuadMesh() ([]QuadVertex, []uint16) {
	return quadVertices, quadIndices
}

// CubeVertexData flattens the cube mesh for vertex-buffer upload.
func CubeVertexData() []float32 {
	out := make([]float32, 0, len(cubeVertices)*6)
	for _, v := range cubeVertices {
		out = append(out, v.Position.X, v.Position.Y, v.Position.Z, v.Coord.X, v.Coord.Y, v.Coord.Z)
	}
	return out
}

// QuadVertexData flattens the quad mesh for vertex-buffer upload.
func QuadVertexData() []float32 {
	out := make([]float32, 0, len(quadVertices)*4)
	for _, v := range quadVertices {
		out = append(out, v.Position.X, v.Position.Y, v.UV.X, v.UV.Y)
	}
	return out
}
