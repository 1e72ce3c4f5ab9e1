package volume

import (
	"testing"

	"github.com/spaghettifunk/volren/engine/math"
)

func TestBuildLUTEmpty(t *testing.T) {
	if _, err := BuildLUT(nil, 256); err == nil {
		t.Fatal("empty transfer function should be rejected")
	}
}

func TestBuildLUTBadPosition(t *testing.T) {
	points := []ControlPoint{{Position: 1.5, Color: math.NewVec4(1, 0, 0, 1)}}
	if _, err := BuildLUT(points, 256); err == nil {
		t.Fatal("out-of-range position should be rejected")
	}
}

func TestLUTControlPointRoundTrip(t *testing.T) {
	points := []ControlPoint{
		{Position: 0.0, Color: math.NewVec4(0, 0, 0, 0)},
		{Position: 51.0 / 255.0, Color: math.NewVec4(1, 0, 0, 0.2)},
		{Position: 153.0 / 255.0, Color: math.NewVec4(0, 1, 0, 0.6)},
		{Position: 1.0, Color: math.NewVec4(0, 0, 1, 1)},
	}
	lut, err := BuildLUT(points, 256)
	if err != nil {
		t.Fatal(err)
	}

	const tol = 1.0 / 255.0
	absf := func(f float32) float32 {
		if f < 0 {
			return -f
		}
		return f
	}
	for _, cp := range points {
		got := lut.Sample(cp.Position)
		want := cp.Color
		if absf(got.X-want.X) > tol || absf(got.Y-want.Y) > tol ||
			absf(got.Z-want.Z) > tol || absf(got.W-want.W) > tol {
			t.Fatalf("round trip at %f: got %+v want %+v", cp.Position, got, want)
		}
	}
}

func TestLUTInterpolatesBetweenPoints(t *testing.T) {
	points := []ControlPoint{
		{Position: 0, Color: math.NewVec4(0, 0, 0, 0)},
		{Position: 1, Color: math.NewVec4(1, 1, 1, 1)},
	}
	lut, err := BuildLUT(points, 256)
	if err != nil {
		t.Fatal(err)
	}
	mid := lut.Sample(0.5)
	if mid.X < 0.49 || mid.X > 0.51 || mid.W < 0.49 || mid.W > 0.51 {
		t.Fatalf("midpoint should interpolate: %+v", mid)
	}
}

func TestLUTClampsOutsideRange(t *testing.T) {
	points := []ControlPoint{
		{Position: 0.4, Color: math.NewVec4(1, 0, 0, 1)},
		{Position: 0.6, Color: math.NewVec4(0, 1, 0, 1)},
	}
	lut, err := BuildLUT(points, 128)
	if err != nil {
		t.Fatal(err)
	}
	lo := lut.Sample(0)
	if lo.X != 1 || lo.Y != 0 {
		t.Fatalf("below first point should clamp to its color: %+v", lo)
	}
	hi := lut.Sample(1)
	if hi.X != 0 || hi.Y != 1 {
		t.Fatalf("above last point should clamp to its color: %+v", hi)
	}
}

func TestLUTBytesLayout(t *testing.T) {
	points := []ControlPoint{{Position: 0, Color: math.NewVec4(1, 0.5, 0.25, 1)}}
	lut, err := BuildLUT(points, 4)
	if err != nil {
		t.Fatal(err)
	}
	b := lut.Bytes()
	if len(b) != 16 {
		t.Fatalf("wrong byte count: %d", len(b))
	}
	if b[0] != 255 || b[3] != 255 {
		t.Fatalf("rgba order wrong: %v", b[:4])
	}
}
