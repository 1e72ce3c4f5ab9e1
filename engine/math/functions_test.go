package math

import (
	"testing"
)

func TestMat4IdentityTransform(t *testing.T) {
	I := NewMat4Identity()
	v := NewVec3(1, 2, 3)
	out := I.TransformPoint(v)
	if out != v {
		t.Fatalf("I*v != v: %+v", out)
	}
}

func TestMat4MulComposition(t *testing.T) {
	// scaling then translating must equal applying translation * scale
	S := NewMat4Scale(NewVec3(2, 2, 2))
	T := NewMat4Translation(NewVec3(1, 0, 0))
	M := T.Mul(S)

	v := NewVec3(1, 1, 1)
	got := M.TransformPoint(v)
	want := T.TransformPoint(S.TransformPoint(v))
	if !got.Compare(want, 1e-6) {
		t.Fatalf("composition mismatch: got %+v want %+v", got, want)
	}
	if !got.Compare(NewVec3(3, 2, 2), 1e-6) {
		t.Fatalf("unexpected transform result: %+v", got)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	M := NewMat4Translation(NewVec3(1, -2, 3)).Mul(NewMat4Scale(NewVec3(2, 4, 0.5)))
	inv := M.Inverse()

	v := NewVec3(0.3, -0.7, 1.9)
	back := inv.TransformPoint(M.TransformPoint(v))
	if !back.Compare(v, 1e-5) {
		t.Fatalf("inverse round trip failed: %+v", back)
	}
}

func TestLookAtEyeMapsToOrigin(t *testing.T) {
	eye := NewVec3(0, -2.5, 1)
	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3(0, 0, 1))

	out := view.TransformPoint(eye)
	if !out.Compare(NewVec3Zero(), 1e-5) {
		t.Fatalf("eye should map to view-space origin, got %+v", out)
	}

	// the look target must land on the negative z axis in view space
	tgt := view.TransformPoint(NewVec3Zero())
	if tgt.Z >= 0 || kabs(tgt.X) > 1e-5 || kabs(tgt.Y) > 1e-5 {
		t.Fatalf("target not on -z axis: %+v", tgt)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100.0)
	P := NewMat4Perspective(DegToRad(45), 1.0, near, far)

	nearClip := P.TransformPoint(NewVec3(0, 0, -near))
	farClip := P.TransformPoint(NewVec3(0, 0, -far))
	if kabs(nearClip.Z+1) > 1e-4 {
		t.Fatalf("near plane should map to z=-1, got %f", nearClip.Z)
	}
	if kabs(farClip.Z-1) > 1e-4 {
		t.Fatalf("far plane should map to z=1, got %f", farClip.Z)
	}
}

func TestVec3Ops(t *testing.T) {
	a := NewVec3(1, 0, 0)
	b := NewVec3(0, 1, 0)
	if c := a.Cross(b); !c.Compare(NewVec3(0, 0, 1), 1e-7) {
		t.Fatalf("cross product wrong: %+v", c)
	}
	if d := a.Dot(b); d != 0 {
		t.Fatalf("dot product wrong: %f", d)
	}
	n := NewVec3(3, 4, 0).Normalized()
	if kabs(n.Length()-1) > 1e-6 {
		t.Fatalf("normalize wrong: %+v", n)
	}
	if NewVec3Zero().Normalized() != NewVec3Zero() {
		t.Fatal("zero vector should survive normalization")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.5, 0.0, 1.0) != 1.0 {
		t.Fatal("clamp high failed")
	}
	if Clamp(-3, 0, 10) != 0 {
		t.Fatal("clamp low failed")
	}
	if Clamp(uint32(5), uint32(1), uint32(10)) != 5 {
		t.Fatal("clamp identity failed")
	}
}
