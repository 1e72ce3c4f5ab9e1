package software

import (
	"fmt"

	"github.com/mrjoshuak/go-openexr/half"

	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/math"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
	"github.com/spaghettifunk/volren/engine/volume"
)

// Renderer runs the identical three-pass pipeline on the CPU and keeps the
// result in memory. It renders headless, which makes it the backend for the
// test suite and for environments without a GPU.
type Renderer struct {
	width  uint32
	height uint32

	// Supersampling factor derived from the configured sample count; the
	// high-resolution result is box-filtered down on resolve.
	ss uint32

	dataset *volume.Dataset
	lut     *volume.LUT

	entry *FacePass
	exit  *FacePass
	big   *FloatImage
	frame *FloatImage

	FrameNumber uint64
}

func New(sampleCount uint32) *Renderer {
	ss := uint32(1)
	if sampleCount >= 4 {
		ss = 2
	}
	return &Renderer{ss: ss}
}

func (sr *Renderer) Initialize(appName string, width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid framebuffer extent %dx%d", width, height)
	}
	sr.width = width
	sr.height = height

	sw, sh := width*sr.ss, height*sr.ss
	sr.entry = NewEntryFacePass(sw, sh)
	sr.exit = NewExitFacePass(sw, sh)
	sr.big = NewFloatImage(sw, sh)
	sr.frame = NewFloatImage(width, height)

	core.LogInfo("software renderer initialized (%dx%d, %dx supersampling)", width, height, sr.ss)
	return nil
}

// SetVolume rebuilds the dataset from the half-float texel stream the
// backends share.
func (sr *Renderer) SetVolume(dims [3]uint32, halfBits []uint16) error {
	data := make([]float32, len(halfBits))
	for i, bits := range halfBits {
		data[i] = half.FromBits(bits).Float32()
	}
	ds, err := volume.NewDataset(dims, data)
	if err != nil {
		return err
	}
	sr.dataset = ds
	return nil
}

func (sr *Renderer) SetTransferFunction(pix []uint8) error {
	if len(pix) == 0 || len(pix)%4 != 0 {
		return fmt.Errorf("transfer function pixels must be non-empty RGBA")
	}
	sr.lut = &volume.LUT{Size: len(pix) / 4, Pix: append([]uint8(nil), pix...)}
	return nil
}

// Resized takes effect immediately; there is no swapchain to wait for.
func (sr *Renderer) Resized(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	sr.width = width
	sr.height = height

	sw, sh := width*sr.ss, height*sr.ss
	sr.entry.Resize(sw, sh)
	sr.exit.Resize(sw, sh)
	sr.big.Resize(sw, sh)
	sr.frame.Resize(width, height)
}

// DrawFrame executes the passes in order: entry faces, exit faces, then the
// ray march over every pixel.
func (sr *Renderer) DrawFrame(mvp *metadata.MVPUniform, shading *metadata.ShadingUniforms) error {
	if sr.dataset == nil || sr.lut == nil {
		return fmt.Errorf("volume and transfer function must be set before drawing")
	}

	sr.entry.Render(mvp.ModelViewProj)
	sr.exit.Render(mvp.ModelViewProj)

	for y := uint32(0); y < sr.big.Height; y++ {
		for x := uint32(0); x < sr.big.Width; x++ {
			entry := sr.entry.Target.At(x, y)
			exit := sr.exit.Target.At(x, y)
			c := CompositeRay(
				math.NewVec3(entry.X, entry.Y, entry.Z),
				math.NewVec3(exit.X, exit.Y, exit.Z),
				sr.dataset, sr.lut, shading)
			sr.big.Set(x, y, c)
		}
	}

	sr.resolve()
	sr.FrameNumber++
	return nil
}

// resolve box-filters the supersampled image into the output frame.
func (sr *Renderer) resolve() {
	if sr.ss == 1 {
		copy(sr.frame.Pix, sr.big.Pix)
		return
	}
	n := float32(sr.ss * sr.ss)
	for y := uint32(0); y < sr.frame.Height; y++ {
		for x := uint32(0); x < sr.frame.Width; x++ {
			var sum math.Vec4
			for dy := uint32(0); dy < sr.ss; dy++ {
				for dx := uint32(0); dx < sr.ss; dx++ {
					sum = sum.Add(sr.big.At(x*sr.ss+dx, y*sr.ss+dy))
				}
			}
			sr.frame.Set(x, y, sum.MulScalar(1/n))
		}
	}
}

// Frame exposes the last resolved image. Valid until the next DrawFrame or
// Resized call.
func (sr *Renderer) Frame() *FloatImage {
	return sr.frame
}

// EntryTarget exposes the entry face buffer of the last frame.
func (sr *Renderer) EntryTarget() *FloatImage {
	return sr.entry.Target
}

// ExitTarget exposes the exit face buffer of the last frame.
func (sr *Renderer) ExitTarget() *FloatImage {
	return sr.exit.Target
}

func (sr *Renderer) Shutdown() error {
	return nil
}
