package software

import (
	"testing"

	"github.com/spaghettifunk/volren/engine/math"
	"github.com/spaghettifunk/volren/engine/renderer"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
	"github.com/spaghettifunk/volren/engine/volume"
)

func constantDataset(t *testing.T, n uint32, value float32) *volume.Dataset {
	t.Helper()
	data := make([]float32, n*n*n)
	for i := range data {
		data[i] = value
	}
	ds, err := volume.NewDataset([3]uint32{n, n, n}, data)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	return ds
}

func solidLUT(r, g, b, a uint8) []uint8 {
	pix := make([]uint8, 256*4)
	for i := 0; i < 256; i++ {
		pix[i*4+0] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = a
	}
	return pix
}

func defaultShading() metadata.ShadingUniforms {
	return metadata.ShadingUniforms{
		StepSize:         0.0025,
		BaseDistance:     0.0025,
		OpacityThreshold: 0.95,
		Shininess:        32,
		Ambient:          0.5,
		Diffuse:          0.5,
		Specular:         0.5,
	}
}

func newTestRenderer(t *testing.T, width, height uint32, ds *volume.Dataset, lutPix []uint8) *Renderer {
	t.Helper()
	sr := New(1)
	if err := sr.Initialize("test", width, height); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := sr.SetVolume(ds.Dims, ds.HalfBits()); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if err := sr.SetTransferFunction(lutPix); err != nil {
		t.Fatalf("set transfer function: %v", err)
	}
	return sr
}

func defaultMVP(aspect float32) *metadata.MVPUniform {
	cam := renderer.NewDefaultCamera(aspect)
	return &metadata.MVPUniform{ModelViewProj: cam.ViewProjection()}
}

func TestSilhouetteCoversCenterNotCorners(t *testing.T) {
	ds := constantDataset(t, 8, 1.0)
	sr := newTestRenderer(t, 64, 64, ds, solidLUT(255, 0, 0, 255))

	shading := defaultShading()
	mvp := defaultMVP(1)
	if err := sr.DrawFrame(mvp, &shading); err != nil {
		t.Fatalf("draw frame: %v", err)
	}

	frame := sr.Frame()
	center := frame.At(32, 32)
	if center.W <= 0 {
		t.Fatalf("center pixel should be covered, got alpha %f", center.W)
	}
	if center.X <= 0 {
		t.Fatalf("center pixel should carry the transfer color, got %+v", center)
	}

	for _, p := range [][2]uint32{{0, 0}, {63, 0}, {0, 63}, {63, 63}} {
		c := frame.At(p[0], p[1])
		if c.W != 0 || c.X != 0 || c.Y != 0 || c.Z != 0 {
			t.Fatalf("corner pixel (%d,%d) should be transparent, got %+v", p[0], p[1], c)
		}
	}
}

func TestEntryExitOrdering(t *testing.T) {
	ds := constantDataset(t, 8, 1.0)
	sr := newTestRenderer(t, 64, 64, ds, solidLUT(255, 255, 255, 255))

	shading := defaultShading()
	if err := sr.DrawFrame(defaultMVP(1), &shading); err != nil {
		t.Fatalf("draw frame: %v", err)
	}

	// Every covered pixel must have a non-negative ray length: where the
	// entry buffer is written, the exit buffer must be too.
	entry := sr.EntryTarget()
	exit := sr.ExitTarget()
	for y := uint32(0); y < entry.Height; y++ {
		for x := uint32(0); x < entry.Width; x++ {
			e := entry.At(x, y)
			o := exit.At(x, y)
			if e.W != 0 && o.W == 0 {
				t.Fatalf("pixel (%d,%d) has an entry face but no exit face", x, y)
			}
		}
	}
}

func TestZeroAlphaTransferFunctionYieldsTransparency(t *testing.T) {
	ds := constantDataset(t, 8, 1.0)
	sr := newTestRenderer(t, 32, 32, ds, solidLUT(255, 255, 255, 0))

	shading := defaultShading()
	if err := sr.DrawFrame(defaultMVP(1), &shading); err != nil {
		t.Fatalf("draw frame: %v", err)
	}

	frame := sr.Frame()
	for y := uint32(0); y < frame.Height; y++ {
		for x := uint32(0); x < frame.Width; x++ {
			if c := frame.At(x, y); c.W != 0 {
				t.Fatalf("pixel (%d,%d) should be fully transparent with a zero-alpha transfer function, got alpha %f", x, y, c.W)
			}
		}
	}
}

func TestResizeKeepsRenderingCorrect(t *testing.T) {
	ds := constantDataset(t, 8, 1.0)
	sr := newTestRenderer(t, 64, 64, ds, solidLUT(0, 255, 0, 255))

	shading := defaultShading()
	if err := sr.DrawFrame(defaultMVP(1), &shading); err != nil {
		t.Fatalf("draw frame: %v", err)
	}

	sr.Resized(32, 32)
	if err := sr.DrawFrame(defaultMVP(1), &shading); err != nil {
		t.Fatalf("draw frame after resize: %v", err)
	}

	frame := sr.Frame()
	if frame.Width != 32 || frame.Height != 32 {
		t.Fatalf("frame should follow the new extent, got %dx%d", frame.Width, frame.Height)
	}
	center := frame.At(16, 16)
	if center.W <= 0 || center.Y <= 0 {
		t.Fatalf("center pixel should still be covered after resize, got %+v", center)
	}
	corner := frame.At(0, 0)
	if corner.W != 0 {
		t.Fatalf("corner pixel should stay transparent after resize, got %+v", corner)
	}
}

func TestDrawFrameIsDeterministic(t *testing.T) {
	ds := constantDataset(t, 8, 0.5)
	sr := newTestRenderer(t, 48, 48, ds, solidLUT(200, 100, 50, 128))

	shading := defaultShading()
	if err := sr.DrawFrame(defaultMVP(1), &shading); err != nil {
		t.Fatalf("draw frame: %v", err)
	}
	first := append([]float32(nil), sr.Frame().Pix...)

	if err := sr.DrawFrame(defaultMVP(1), &shading); err != nil {
		t.Fatalf("second draw frame: %v", err)
	}
	for i, v := range sr.Frame().Pix {
		if v != first[i] {
			t.Fatalf("frames differ at float %d: %f vs %f", i, first[i], v)
		}
	}
}

func TestCompositeRayMissSentinel(t *testing.T) {
	ds := constantDataset(t, 4, 1.0)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 255, 255, 255)}
	shading := defaultShading()

	c := CompositeRay(math.NewVec3Zero(), math.NewVec3Zero(), ds, lut, &shading)
	if c.X != 0 || c.Y != 0 || c.Z != 0 || c.W != 0 {
		t.Fatalf("sentinel coordinates must produce full transparency, got %+v", c)
	}
}

func TestCompositeRayZeroLength(t *testing.T) {
	ds := constantDataset(t, 4, 1.0)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 255, 255, 255)}
	shading := defaultShading()

	p := math.NewVec3(0.25, 0.5, 0.75)
	c := CompositeRay(p, p, ds, lut, &shading)
	if c.W != 0 {
		t.Fatalf("a zero-length ray must stay transparent, got %+v", c)
	}
}

func TestCompositeRayZeroThresholdSingleSample(t *testing.T) {
	ds := constantDataset(t, 4, 1.0)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 0, 0, 128)}

	shading := defaultShading()
	shading.OpacityThreshold = 0

	entry := math.NewVec3(0.5, 0.1, 0.5)
	exit := math.NewVec3(0.5, 0.9, 0.5)
	c := CompositeRay(entry, exit, ds, lut, &shading)

	// With the threshold at zero the march terminates after its first
	// sample; the result must match compositing exactly one sample.
	wantAlpha := float32(128.0 / 255.0)
	if absf(c.W-wantAlpha) > 1e-6 {
		t.Fatalf("expected a single-sample alpha of %f, got %f", wantAlpha, c.W)
	}
	if absf(c.X-wantAlpha) > 1e-6 {
		t.Fatalf("expected a single-sample red of %f, got %f", wantAlpha, c.X)
	}
}

func TestCompositeRayEarlyTerminationBound(t *testing.T) {
	ds := constantDataset(t, 4, 1.0)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 255, 255, 64)}

	entry := math.NewVec3(0.5, 0.0, 0.5)
	exit := math.NewVec3(0.5, 1.0, 0.5)

	early := defaultShading()
	early.OpacityThreshold = 0.95
	full := defaultShading()
	full.OpacityThreshold = 2 // never reached, full march

	cEarly := CompositeRay(entry, exit, ds, lut, &early)
	cFull := CompositeRay(entry, exit, ds, lut, &full)

	// Skipped samples can only contribute the remaining transmittance, so
	// the early result differs from the full march by at most 1-threshold.
	if absf(cEarly.W-cFull.W) > 1-early.OpacityThreshold+1e-6 {
		t.Fatalf("early termination changed alpha by %f, more than the %f bound",
			absf(cEarly.W-cFull.W), 1-early.OpacityThreshold)
	}
	for _, d := range []float32{cEarly.X - cFull.X, cEarly.Y - cFull.Y, cEarly.Z - cFull.Z} {
		if absf(d) > 1-early.OpacityThreshold+1e-6 {
			t.Fatalf("early termination changed color by %f, more than the %f bound", absf(d), 1-early.OpacityThreshold)
		}
	}
}

func TestCompositeRayStartsOneBaseDistanceIn(t *testing.T) {
	// empty slab on the entry side, fully dense beyond it
	data := make([]float32, 16)
	for i := range data {
		if i >= 2 {
			data[i] = 1
		}
	}
	ds, err := volume.NewDataset([3]uint32{1, 16, 1}, data)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 255, 255, 255)}

	shading := defaultShading()
	shading.StepSize = 0.5
	shading.BaseDistance = 0.25

	// Samples land at 0.25 and 0.75 along the ray, inside the dense region;
	// a march starting on the entry face would only ever see the empty slab.
	c := CompositeRay(math.NewVec3(0.5, 0, 0.5), math.NewVec3(0.5, 0.8, 0.5), ds, lut, &shading)
	if c.W != 1 {
		t.Fatalf("first sample should land one base distance past the entry face, got alpha %f", c.W)
	}

	// A ray shorter than the base distance has no room for a sample.
	c = CompositeRay(math.NewVec3(0.5, 0.4, 0.5), math.NewVec3(0.5, 0.6, 0.5), ds, lut, &shading)
	if c.W != 0 {
		t.Fatalf("a ray shorter than the base distance must stay transparent, got alpha %f", c.W)
	}
}

func TestCompositeRayTerminationIgnoresRemainingSteps(t *testing.T) {
	ds := constantDataset(t, 4, 1.0)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 255, 255, 200)}

	shading := defaultShading()
	shading.StepSize = 0.05
	shading.BaseDistance = 0.05

	entry := math.NewVec3(0.5, 0.1, 0.5)
	near := CompositeRay(entry, math.NewVec3(0.5, 0.5, 0.5), ds, lut, &shading)
	far := CompositeRay(entry, math.NewVec3(0.5, 0.9, 0.5), ds, lut, &shading)

	if near.W < shading.OpacityThreshold {
		t.Fatalf("the march should cross the opacity threshold, got alpha %f", near.W)
	}
	// Once the threshold is crossed, the extra steps the longer ray could
	// still take must not change the output at all.
	if near != far {
		t.Fatalf("post-threshold steps changed the output: %+v vs %+v", near, far)
	}
}

func TestCompositeRayAlphaMonotonicAndBounded(t *testing.T) {
	ds := constantDataset(t, 4, 0.7)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(50, 100, 150, 90)}
	shading := defaultShading()
	shading.OpacityThreshold = 2

	short := CompositeRay(math.NewVec3(0.5, 0.4, 0.5), math.NewVec3(0.5, 0.6, 0.5), ds, lut, &shading)
	long := CompositeRay(math.NewVec3(0.5, 0.1, 0.5), math.NewVec3(0.5, 0.9, 0.5), ds, lut, &shading)

	if short.W < 0 || short.W > 1 || long.W < 0 || long.W > 1 {
		t.Fatalf("accumulated alpha must stay in [0,1], got %f and %f", short.W, long.W)
	}
	if long.W < short.W {
		t.Fatalf("a longer ray through a uniform volume must accumulate at least as much alpha: %f < %f", long.W, short.W)
	}
}

func TestShadedSampleStaysFiniteInUniformVolume(t *testing.T) {
	ds := constantDataset(t, 8, 0.5)
	lut := &volume.LUT{Size: 256, Pix: solidLUT(255, 255, 255, 255)}

	shading := defaultShading()
	shading.Shaded = 1
	shading.Eye = math.NewVec4(0.5, -2.0, 0.5, 1)

	c := CompositeRay(math.NewVec3(0.5, 0.1, 0.5), math.NewVec3(0.5, 0.9, 0.5), ds, lut, &shading)
	for _, v := range []float32{c.X, c.Y, c.Z, c.W} {
		if v != v || v < 0 {
			t.Fatalf("shaded composite produced an invalid component: %+v", c)
		}
	}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
