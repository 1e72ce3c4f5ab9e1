package software

import (
	stdmath "math"

	"github.com/spaghettifunk/volren/engine/math"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
	"github.com/spaghettifunk/volren/engine/volume"
)

// gradientDelta is the half step of the central differences used for
// shading normals, in volume texture coordinates.
const gradientDelta = 0.01

// CompositeRay marches a single ray between the entry and exit coordinates
// and returns the front-to-back blended color. The all-zero coordinate pair
// is the miss sentinel and yields full transparency.
func CompositeRay(entry, exit math.Vec3, ds *volume.Dataset, lut *volume.LUT, sh *metadata.ShadingUniforms) math.Vec4 {
	zero := math.NewVec3Zero()
	if entry.Compare(zero, 0) && exit.Compare(zero, 0) {
		return math.Vec4{}
	}

	ray := exit.Sub(entry)
	length := ray.Length()
	if length <= 0 {
		return math.Vec4{}
	}
	dir := ray.MulScalar(1 / length)

	// Opacity correction keeps perceived density independent of the step
	// size.
	alphaExponent := sh.StepSize / sh.BaseDistance

	var accColor math.Vec3
	var accAlpha float32

	// The march starts one base distance past the entry face, so the first
	// sample never sits on the surface the rasterizer just produced.
	for i := 0; ; i++ {
		traveled := sh.BaseDistance + sh.StepSize*float32(i)
		if traveled >= length {
			break
		}
		p := entry.Add(dir.MulScalar(traveled))

		density := ds.Sample(p)
		s := lut.Sample(density)
		sColor := math.NewVec3(s.X, s.Y, s.Z)
		sAlpha := 1 - powf(1-s.W, alphaExponent)

		if sh.Shaded != 0 && sAlpha > 0 {
			sColor = shadeSample(p, sColor, ds, sh)
		}

		accColor = accColor.Add(sColor.MulScalar((1 - accAlpha) * sAlpha))
		accAlpha += (1 - accAlpha) * sAlpha

		if accAlpha >= sh.OpacityThreshold {
			break
		}
	}

	return math.Vec4{X: accColor.X, Y: accColor.Y, Z: accColor.Z, W: accAlpha}
}

// shadeSample applies Blinn-Phong lighting with a headlight at the eye. The
// normal is the negated density gradient; in homogeneous regions the
// gradient vanishes and the sample stays unshaded except for the ambient
// term.
func shadeSample(p math.Vec3, color math.Vec3, ds *volume.Dataset, sh *metadata.ShadingUniforms) math.Vec3 {
	gradient := ds.Gradient(p, gradientDelta)
	if gradient.LengthSquared() == 0 {
		return color.MulScalar(sh.Ambient)
	}
	normal := gradient.MulScalar(-1).Normalized()

	eye := math.NewVec3(sh.Eye.X, sh.Eye.Y, sh.Eye.Z)
	view := eye.Sub(p)
	if view.LengthSquared() == 0 {
		return color.MulScalar(sh.Ambient)
	}
	view = view.Normalized()

	// Light direction equals the view direction, so the halfway vector is
	// the view vector itself.
	diffuse := view.Dot(normal)
	if diffuse < 0 {
		diffuse = 0
	}
	specular := powf(diffuse, sh.Shininess)

	shaded := color.MulScalar(sh.Ambient + sh.Diffuse*diffuse)
	shaded = shaded.Add(math.NewVec3(1, 1, 1).MulScalar(sh.Specular * specular))
	return shaded
}

func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(stdmath.Pow(float64(base), float64(exp)))
}
