package software

import (
	"github.com/spaghettifunk/volren/engine/math"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
)

type DepthCompare int

const (
	DepthLess DepthCompare = iota
	DepthGreater
)

type CullMode int

const (
	CullBack CullMode = iota
	CullFront
)

// FacePass rasterizes the proxy cube into a float target, carrying the box
// coordinate of each covered pixel. The entry variant keeps the nearest
// fragment against a depth buffer cleared to 1, the exit variant the
// farthest against a clear of 0.
type FacePass struct {
	Compare    DepthCompare
	Cull       CullMode
	ClearDepth float32

	Target *FloatImage
	Depth  *DepthBuffer
}

// NewEntryFacePass keeps the faces nearest the eye.
func NewEntryFacePass(width, height uint32) *FacePass {
	return &FacePass{
		Compare:    DepthLess,
		Cull:       CullBack,
		ClearDepth: 1.0,
		Target:     NewFloatImage(width, height),
		Depth:      NewDepthBuffer(width, height),
	}
}

// NewExitFacePass keeps the faces farthest from the eye.
func NewExitFacePass(width, height uint32) *FacePass {
	return &FacePass{
		Compare:    DepthGreater,
		Cull:       CullFront,
		ClearDepth: 0.0,
		Target:     NewFloatImage(width, height),
		Depth:      NewDepthBuffer(width, height),
	}
}

func (p *FacePass) Resize(width, height uint32) {
	p.Target.Resize(width, height)
	p.Depth.Resize(width, height)
}

// Render clears the targets and rasterizes the cube under the given
// model-view-projection matrix. Uncovered pixels keep the (0,0,0,0) clear
// value, the miss sentinel of the composite kernel.
func (p *FacePass) Render(mvp math.Mat4) {
	p.Target.Clear(0, 0, 0, 0)
	p.Depth.Clear(p.ClearDepth)

	vertices, indices := metadata.CubeMesh()
	for i := 0; i+2 < len(indices); i += 3 {
		p.rasterizeTriangle(mvp,
			vertices[indices[i]],
			vertices[indices[i+1]],
			vertices[indices[i+2]])
	}
}

type projectedVertex struct {
	sx, sy float32 // screen position, pixel units, y down
	z      float32 // NDC depth in [0,1]
	invW   float32
	coord  math.Vec3 // box coordinate divided by w
}

func (p *FacePass) project(mvp math.Mat4, v metadata.CubeVertex) (projectedVertex, bool) {
	clip := mvp.TransformVec4(v.Position.ToVec4(1))
	if clip.W <= 0 {
		return projectedVertex{}, false
	}
	invW := 1.0 / clip.W
	ndcX := clip.X * invW
	ndcY := clip.Y * invW
	ndcZ := clip.Z * invW

	return projectedVertex{
		sx:    (ndcX*0.5 + 0.5) * float32(p.Target.Width),
		sy:    (ndcY*0.5 + 0.5) * float32(p.Target.Height),
		z:     ndcZ,
		invW:  invW,
		coord: v.Coord.MulScalar(invW),
	}, true
}

func (p *FacePass) rasterizeTriangle(mvp math.Mat4, v0, v1, v2 metadata.CubeVertex) {
	a, ok := p.project(mvp, v0)
	if !ok {
		return
	}
	b, ok := p.project(mvp, v1)
	if !ok {
		return
	}
	c, ok := p.project(mvp, v2)
	if !ok {
		return
	}

	// Signed twice-area in framebuffer coordinates (y down). Counter-
	// clockwise triangles are front facing.
	area := (b.sx-a.sx)*(c.sy-a.sy) - (b.sy-a.sy)*(c.sx-a.sx)
	if area == 0 {
		return
	}
	frontFacing := area < 0
	if p.Cull == CullBack && !frontFacing {
		return
	}
	if p.Cull == CullFront && frontFacing {
		return
	}

	minX := clampPixel(minf3(a.sx, b.sx, c.sx), p.Target.Width)
	maxX := clampPixel(maxf3(a.sx, b.sx, c.sx)+1, p.Target.Width)
	minY := clampPixel(minf3(a.sy, b.sy, c.sy), p.Target.Height)
	maxY := clampPixel(maxf3(a.sy, b.sy, c.sy)+1, p.Target.Height)

	invArea := 1.0 / area
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5
			py := float32(y) + 0.5

			// Barycentric weights, same sign as the area.
			w0 := ((b.sx-px)*(c.sy-py) - (b.sy-py)*(c.sx-px)) * invArea
			w1 := ((c.sx-px)*(a.sy-py) - (c.sy-py)*(a.sx-px)) * invArea
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			depth := w0*a.z + w1*b.z + w2*c.z
			stored := p.Depth.At(x, y)
			if p.Compare == DepthLess {
				if depth >= stored {
					continue
				}
			} else {
				if depth <= stored {
					continue
				}
			}

			// Perspective-correct attribute interpolation.
			invW := w0*a.invW + w1*b.invW + w2*c.invW
			coord := a.coord.MulScalar(w0).
				Add(b.coord.MulScalar(w1)).
				Add(c.coord.MulScalar(w2)).
				MulScalar(1 / invW)

			p.Depth.Set(x, y, depth)
			p.Target.Set(x, y, math.Vec4{X: coord.X, Y: coord.Y, Z: coord.Z, W: 1})
		}
	}
}

func clampPixel(v float32, limit uint32) uint32 {
	if v < 0 {
		return 0
	}
	if v > float32(limit) {
		return limit
	}
	return uint32(v)
}

func minf3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxf3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
