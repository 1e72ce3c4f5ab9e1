package renderer

import (
	"testing"

	"github.com/spaghettifunk/volren/engine/math"
)

func TestDefaultCameraPose(t *testing.T) {
	cam := NewDefaultCamera(1.0)

	if !cam.Eye.Compare(math.NewVec3(0, -2.5, 1), 0) {
		t.Fatalf("unexpected default eye: %+v", cam.Eye)
	}
	if !cam.Center.Compare(math.NewVec3Zero(), 0) {
		t.Fatalf("unexpected default center: %+v", cam.Center)
	}
	if !cam.Up.Compare(math.NewVec3(0, 0, 1), 0) {
		t.Fatalf("unexpected default up: %+v", cam.Up)
	}
	if cam.Fovy != 45 || cam.Near != 0.1 || cam.Far != 100 {
		t.Fatalf("unexpected default frustum: fovy=%f near=%f far=%f", cam.Fovy, cam.Near, cam.Far)
	}
}

func TestViewProjectionCentersTheLookTarget(t *testing.T) {
	cam := NewDefaultCamera(1.0)
	vp := cam.ViewProjection()

	clip := vp.TransformVec4(cam.Center.ToVec4(1))
	if clip.W <= 0 {
		t.Fatalf("look target ended up behind the camera, w=%f", clip.W)
	}

	ndcX := clip.X / clip.W
	ndcY := clip.Y / clip.W
	ndcZ := clip.Z / clip.W
	if absf(ndcX) > 1e-5 || absf(ndcY) > 1e-5 {
		t.Fatalf("look target should project to the screen center, got (%f, %f)", ndcX, ndcY)
	}
	if ndcZ < 0 || ndcZ > 1 {
		t.Fatalf("depth must land in Vulkan's 0..1 range, got %f", ndcZ)
	}
}

func TestViewProjectionRejectsPointsBehindTheEye(t *testing.T) {
	cam := NewDefaultCamera(1.0)
	vp := cam.ViewProjection()

	behind := math.NewVec3(0, -5, 1)
	clip := vp.TransformVec4(behind.ToVec4(1))
	if clip.W > 0 {
		t.Fatalf("a point behind the eye must have non-positive clip w, got %f", clip.W)
	}
}

func TestAspectAffectsHorizontalScaleOnly(t *testing.T) {
	narrow := NewDefaultCamera(1.0)
	wide := NewDefaultCamera(2.0)

	p := math.NewVec3(0.5, 0, 1).ToVec4(1)
	cn := narrow.ViewProjection().TransformVec4(p)
	cw := wide.ViewProjection().TransformVec4(p)

	if absf(cw.X/cw.W) >= absf(cn.X/cn.W) {
		t.Fatalf("a wider aspect must shrink horizontal NDC: %f vs %f", cw.X/cw.W, cn.X/cn.W)
	}
	if absf(cw.Y/cw.W-cn.Y/cn.W) > 1e-5 {
		t.Fatalf("aspect must not change vertical NDC: %f vs %f", cw.Y/cw.W, cn.Y/cn.W)
	}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
