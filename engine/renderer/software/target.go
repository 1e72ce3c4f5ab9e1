package software

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/volren/engine/math"
)

// FloatImage is an RGBA float32 render target. The face passes store box
// coordinates in RGB; the composite pass stores the blended color.
type FloatImage struct {
	Width  uint32
	Height uint32
	Pix    []float32 // 4 floats per pixel
}

func NewFloatImage(width, height uint32) *FloatImage {
	return &FloatImage{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// Clear fills every pixel with the given value.
func (img *FloatImage) Clear(r, g, b, a float32) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
}

// Resize reallocates the pixel store when the extent changes. Contents are
// undefined afterwards until the next clear.
func (img *FloatImage) Resize(width, height uint32) {
	if width == img.Width && height == img.Height {
		return
	}
	img.Width = width
	img.Height = height
	img.Pix = make([]float32, width*height*4)
}

func (img *FloatImage) At(x, y uint32) math.Vec4 {
	i := (y*img.Width + x) * 4
	return math.Vec4{X: img.Pix[i], Y: img.Pix[i+1], Z: img.Pix[i+2], W: img.Pix[i+3]}
}

func (img *FloatImage) Set(x, y uint32, v math.Vec4) {
	i := (y*img.Width + x) * 4
	img.Pix[i] = v.X
	img.Pix[i+1] = v.Y
	img.Pix[i+2] = v.Z
	img.Pix[i+3] = v.W
}

// ToRGBA quantizes the float image into an 8-bit RGBA image, for encoding
// and streaming.
func (img *FloatImage) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))
	for y := uint32(0); y < img.Height; y++ {
		for x := uint32(0); x < img.Width; x++ {
			c := img.At(x, y)
			out.SetRGBA(int(x), int(y), color.RGBA{
				R: quantize(c.X),
				G: quantize(c.Y),
				B: quantize(c.Z),
				A: quantize(c.W),
			})
		}
	}
	return out
}

func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// DepthBuffer is a single-channel float target with a configurable clear
// value and compare function.
type DepthBuffer struct {
	Width  uint32
	Height uint32
	Pix    []float32
}

func NewDepthBuffer(width, height uint32) *DepthBuffer {
	return &DepthBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

func (db *DepthBuffer) Clear(value float32) {
	for i := range db.Pix {
		db.Pix[i] = value
	}
}

func (db *DepthBuffer) Resize(width, height uint32) {
	if width == db.Width && height == db.Height {
		return
	}
	db.Width = width
	db.Height = height
	db.Pix = make([]float32, width*height)
}

func (db *DepthBuffer) At(x, y uint32) float32 {
	return db.Pix[y*db.Width+x]
}

func (db *DepthBuffer) Set(x, y uint32, v float32) {
	db.Pix[y*db.Width+x] = v
}
