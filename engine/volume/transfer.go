package volume

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/volren/engine/math"
)

// DefaultLUTSize is the number of entries in the transfer-function texture.
const DefaultLUTSize = 256

/**
 * @brief A transfer-function control point: a density in [0,1] mapped to an
 * RGBA color in [0,1]^4.
 */
type ControlPoint struct {
	Position float32
	Color    math.Vec4
}

/**
 * @brief A 1-D RGBA8 lookup table resampled from an ordered control-point
 * list. Built once at session start; immutable afterwards.
 */
type LUT struct {
	Size int
	Pix  []uint8 // RGBA, Size*4 bytes
}

/**
 * @brief BuildLUT resamples the control points into an n-entry RGBA8 table by
 * linear interpolation. Positions outside the first/last control point clamp
 * to their colors. An empty control-point list is a configuration error.
 */
func BuildLUT(points []ControlPoint, n int) (*LUT, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("transfer function has no control points")
	}
	if n <= 0 || n > DefaultLUTSize {
		return nil, fmt.Errorf("lut size %d out of range (1..%d)", n, DefaultLUTSize)
	}
	for _, p := range points {
		if p.Position < 0 || p.Position > 1 {
			return nil, fmt.Errorf("control point position %f out of [0,1]", p.Position)
		}
	}
	sorted := append([]ControlPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	lut := &LUT{Size: n, Pix: make([]uint8, n*4)}
	for i := 0; i < n; i++ {
		pos := float32(i) / float32(n-1)
		if n == 1 {
			pos = 0
		}
		c := evalControlPoints(sorted, pos)
		lut.Pix[i*4+0] = quantize(c.X)
		lut.Pix[i*4+1] = quantize(c.Y)
		lut.Pix[i*4+2] = quantize(c.Z)
		lut.Pix[i*4+3] = quantize(c.W)
	}
	return lut, nil
}

func evalControlPoints(sorted []ControlPoint, pos float32) math.Vec4 {
	if pos <= sorted[0].Position {
		return sorted[0].Color
	}
	last := sorted[len(sorted)-1]
	if pos >= last.Position {
		return last.Color
	}
	for i := 1; i < len(sorted); i++ {
		if pos <= sorted[i].Position {
			a, b := sorted[i-1], sorted[i]
			span := b.Position - a.Position
			if span <= 0 {
				return b.Color
			}
			t := (pos - a.Position) / span
			return a.Color.MulScalar(1 - t).Add(b.Color.MulScalar(t))
		}
	}
	return last.Color
}

func quantize(v float32) uint8 {
	return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
}

func (l *LUT) entry(i int) math.Vec4 {
	i = math.Clamp(i, 0, l.Size-1)
	return math.NewVec4(
		float32(l.Pix[i*4+0])/255,
		float32(l.Pix[i*4+1])/255,
		float32(l.Pix[i*4+2])/255,
		float32(l.Pix[i*4+3])/255,
	)
}

/**
 * @brief Sample returns the color for a density in [0,1], linearly filtered
 * between adjacent entries the way the GPU sampler magnifies the 1-D texture.
 */
func (l *LUT) Sample(density float32) math.Vec4 {
	if l.Size == 1 {
		return l.entry(0)
	}
	f := math.Clamp(density, 0, 1) * float32(l.Size-1)
	i := int(f)
	t := f - float32(i)
	if i >= l.Size-1 {
		return l.entry(l.Size - 1)
	}
	return l.entry(i).MulScalar(1 - t).Add(l.entry(i + 1).MulScalar(t))
}

// Bytes returns the raw RGBA8 pixels for texture upload.
func (l *LUT) Bytes() []uint8 {
	return l.Pix
}
