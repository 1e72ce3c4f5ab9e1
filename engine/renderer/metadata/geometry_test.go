package metadata

import (
	"testing"
	"unsafe"

	"github.com/spaghettifunk/volren/engine/math"
)

func TestCubeMeshShape(t *testing.T) {
	vertices, indices := CubeMesh()
	if len(vertices) != 8 {
		t.Fatalf("cube must have 8 vertices, got %d", len(vertices))
	}
	if len(indices) != 36 {
		t.Fatalf("cube must have 36 indices, got %d", len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			t.Fatalf("index %d out of range at position %d", idx, i)
		}
	}
}

func TestCubeCoordsMatchPositions(t *testing.T) {
	vertices, _ := CubeMesh()
	half := math.NewVec3(0.5, 0.5, 0.5)
	for i, v := range vertices {
		if !v.Coord.Compare(v.Position.Add(half), 1e-6) {
			t.Fatalf("vertex %d: coord %+v does not equal position %+v + 0.5", i, v.Coord, v.Position)
		}
	}
}

func TestQuadMeshShape(t *testing.T) {
	vertices, indices := QuadMesh()
	if len(vertices) != 4 {
		t.Fatalf("quad must have 4 vertices, got %d", len(vertices))
	}
	if len(indices) != 6 {
		t.Fatalf("quad must have 6 indices, got %d", len(indices))
	}
	for _, v := range vertices {
		if absf(v.Position.X) != 1 || absf(v.Position.Y) != 1 {
			t.Fatalf("quad corner %+v must lie on the NDC border", v.Position)
		}
	}
}

func TestVertexDataMatchesStride(t *testing.T) {
	cube := CubeVertexData()
	if len(cube)*4 != 8*CubeVertexStride {
		t.Fatalf("cube vertex data is %d bytes, want %d", len(cube)*4, 8*CubeVertexStride)
	}
	quad := QuadVertexData()
	if len(quad)*4 != 4*QuadVertexStride {
		t.Fatalf("quad vertex data is %d bytes, want %d", len(quad)*4, 4*QuadVertexStride)
	}
}

func TestUniformBlockSizes(t *testing.T) {
	// the fragment shader declares the matching std140 block, which has no
	// implicit padding with this field order
	if size := unsafe.Sizeof(ShadingUniforms{}); size != 48 {
		t.Fatalf("shading uniform block is %d bytes, want 48", size)
	}
	if size := unsafe.Sizeof(MVPUniform{}); size != 64 {
		t.Fatalf("mvp uniform block is %d bytes, want 64", size)
	}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
