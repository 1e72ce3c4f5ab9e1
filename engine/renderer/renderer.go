package renderer

import (
	"fmt"

	"github.com/spaghettifunk/volren/engine/config"
	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/math"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
	"github.com/spaghettifunk/volren/engine/volume"
)

// Backend executes the three-pass pipeline on a device. The Vulkan backend
// renders to a window; the software backend renders headless frames with the
// same math.
type Backend interface {
	Initialize(appName string, width, height uint32) error
	SetVolume(dims [3]uint32, halfBits []uint16) error
	SetTransferFunction(pix []uint8) error
	Resized(width, height uint32)
	DrawFrame(mvp *metadata.MVPUniform, shading *metadata.ShadingUniforms) error
	Shutdown() error
}

// Renderer owns the camera and the per-frame uniform computation and hands
// the results to its backend.
type Renderer struct {
	backend Backend

	Camera  *Camera
	Shading metadata.ShadingUniforms

	model    math.Mat4
	invModel math.Mat4
}

func New(backend Backend) *Renderer {
	return &Renderer{
		backend:  backend,
		Shading:  metadata.DefaultShadingUniforms(),
		model:    math.NewMat4Identity(),
		invModel: math.NewMat4Identity(),
	}
}

// Initialize brings up the backend and uploads the volume and transfer
// function. The camera starts at the default pose looking at the volume
// center.
func (r *Renderer) Initialize(appName string, width, height uint32, dataset *volume.Dataset, lut *volume.LUT) error {
	if dataset == nil {
		return fmt.Errorf("renderer requires a dataset")
	}
	if lut == nil {
		return fmt.Errorf("renderer requires a transfer function")
	}

	if err := r.backend.Initialize(appName, width, height); err != nil {
		return err
	}
	if err := r.backend.SetVolume(dataset.Dims, dataset.HalfBits()); err != nil {
		return err
	}
	if err := r.backend.SetTransferFunction(lut.Bytes()); err != nil {
		return err
	}

	r.model = dataset.ScaleMatrix()
	r.invModel = r.model.Inverse()
	r.Camera = NewDefaultCamera(float32(width) / float32(height))

	core.LogInfo("renderer initialized (%dx%d, volume %dx%dx%d)",
		width, height, dataset.Dims[0], dataset.Dims[1], dataset.Dims[2])
	return nil
}

// OnResize adjusts the camera aspect and forwards the new extent to the
// backend.
func (r *Renderer) OnResize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	r.Camera.Aspect = float32(width) / float32(height)
	r.backend.Resized(width, height)
}

// SetShading replaces the shading parameters, typically after a config hot
// reload.
func (r *Renderer) SetShading(s config.Shading) {
	eye := r.Shading.Eye
	r.Shading = metadata.ShadingFromConfig(s)
	r.Shading.Eye = eye
}

// SetTransferFunction re-uploads the color lookup.
func (r *Renderer) SetTransferFunction(lut *volume.LUT) error {
	return r.backend.SetTransferFunction(lut.Bytes())
}

// DrawFrame computes the per-frame uniforms and renders. The eye position is
// carried into volume coordinate space so specular highlights stay correct
// under the model scale.
func (r *Renderer) DrawFrame() error {
	mvp := metadata.MVPUniform{
		ModelViewProj: r.Camera.ViewProjection().Mul(r.model),
	}

	eyeLocal := r.invModel.TransformPoint(r.Camera.Eye)
	eyeBox := eyeLocal.Add(math.NewVec3(0.5, 0.5, 0.5))
	r.Shading.Eye = eyeBox.ToVec4(1)

	return r.backend.DrawFrame(&mvp, &r.Shading)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}
