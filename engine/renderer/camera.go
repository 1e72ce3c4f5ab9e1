package renderer

import (
	"github.com/spaghettifunk/volren/engine/math"
)

// clipCorrection converts the OpenGL-style clip space produced by the math
// package (z in -1..1, y up) into Vulkan's (z in 0..1, y down). Process-wide
// constant, shared by value.
var clipCorrection = math.Mat4{Data: [16]float32{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}}

// ClipCorrection returns the coordinate-conversion matrix applied after
// projection.
func ClipCorrection() math.Mat4 {
	return clipCorrection
}

/**
 * @brief Camera for the volume scene. A plain value type: the rendering core
 * reads it, the controller and resize handler mutate it between frames.
 */
type Camera struct {
	Eye    math.Vec3
	Center math.Vec3
	Up     math.Vec3
	// Vertical field of view in degrees.
	Fovy   float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewDefaultCamera places the eye below and slightly above the volume,
// looking at its center with z up.
func NewDefaultCamera(aspect float32) *Camera {
	return &Camera{
		Eye:    math.NewVec3(0.0, -2.5, 1.0),
		Center: math.NewVec3Zero(),
		Up:     math.NewVec3(0.0, 0.0, 1.0),
		Fovy:   45.0,
		Aspect: aspect,
		Near:   0.1,
		Far:    100.0,
	}
}

// ViewProjection derives the combined view-projection matrix, including the
// Vulkan clip correction.
func (c *Camera) ViewProjection() math.Mat4 {
	view := math.NewMat4LookAt(c.Eye, c.Center, c.Up)
	proj := math.NewMat4Perspective(math.DegToRad(c.Fovy), c.Aspect, c.Near, c.Far)
	return clipCorrection.Mul(proj).Mul(view)
}
