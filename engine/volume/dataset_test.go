package volume

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/spaghettifunk/volren/engine/math"
)

func encodeDat(t *testing.T, dims [3]uint16, samples []uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, dims); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, samples); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadDat(t *testing.T) {
	samples := []uint16{0, 4095, 2047, 1000, 0, 4095, 2047, 1000}
	raw := encodeDat(t, [3]uint16{2, 2, 2}, samples)

	ds, err := ReadDat(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadDat failed: %v", err)
	}
	if ds.Dims != [3]uint32{2, 2, 2} {
		t.Fatalf("wrong dims: %v", ds.Dims)
	}
	if ds.Data[0] != 0 || ds.Data[1] != 1 {
		t.Fatalf("normalization wrong: %v %v", ds.Data[0], ds.Data[1])
	}
	for _, v := range ds.Data {
		if v < 0 || v > 1 {
			t.Fatalf("sample out of range: %f", v)
		}
	}
}

func TestReadDatTruncated(t *testing.T) {
	raw := encodeDat(t, [3]uint16{4, 4, 4}, []uint16{1, 2, 3})
	if _, err := ReadDat(bytes.NewReader(raw)); err == nil {
		t.Fatal("truncated volume should fail to load")
	}
}

func TestReadDatZeroDims(t *testing.T) {
	raw := encodeDat(t, [3]uint16{0, 2, 2}, nil)
	if _, err := ReadDat(bytes.NewReader(raw)); err == nil {
		t.Fatal("zero dimension should fail to load")
	}
}

func TestNewDatasetSizeMismatch(t *testing.T) {
	if _, err := NewDataset([3]uint32{2, 2, 2}, make([]float32, 7)); err == nil {
		t.Fatal("size mismatch should be rejected")
	}
}

func TestLoadDatGzip(t *testing.T) {
	samples := make([]uint16, 8)
	for i := range samples {
		samples[i] = uint16(i * 500)
	}
	raw := encodeDat(t, [3]uint16{2, 2, 2}, samples)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	gr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := ReadDat(gr)
	if err != nil {
		t.Fatalf("gzip round trip failed: %v", err)
	}
	if len(ds.Data) != 8 {
		t.Fatalf("wrong sample count: %d", len(ds.Data))
	}
}

func TestSampleTrilinear(t *testing.T) {
	// constant volume: any coordinate samples to the same value
	data := make([]float32, 8)
	for i := range data {
		data[i] = 0.5
	}
	ds, err := NewDataset([3]uint32{2, 2, 2}, data)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 0.5, Y: 0.5, Z: 0.5}, {X: 0.25, Y: 0.75, Z: 0.1},
	} {
		if got := ds.Sample(p); got < 0.4999 || got > 0.5001 {
			t.Fatalf("constant volume sampled to %f at %+v", got, p)
		}
	}
}

func TestSampleInterpolatesBetweenTexels(t *testing.T) {
	// two texels along x: 0 and 1; the midpoint must interpolate
	ds, err := NewDataset([3]uint32{2, 1, 1}, []float32{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	mid := ds.Sample(math.NewVec3(0.5, 0.5, 0.5))
	if mid < 0.49 || mid > 0.51 {
		t.Fatalf("midpoint should interpolate to 0.5, got %f", mid)
	}
	lo := ds.Sample(math.NewVec3(0, 0.5, 0.5))
	hi := ds.Sample(math.NewVec3(1, 0.5, 0.5))
	if lo != 0 || hi != 1 {
		t.Fatalf("edge samples should clamp to texel values, got %f %f", lo, hi)
	}
}

func TestGradientDirection(t *testing.T) {
	// density ramp along x gives a gradient pointing in +x
	ds, err := NewDataset([3]uint32{4, 1, 1}, []float32{0, 0.25, 0.5, 0.75})
	if err != nil {
		t.Fatal(err)
	}
	g := ds.Gradient(math.NewVec3(0.5, 0.5, 0.5), 0.1)
	if g.X <= 0 {
		t.Fatalf("gradient should point along +x: %+v", g)
	}
	if g.Y != 0 || g.Z != 0 {
		t.Fatalf("gradient should have no y/z component: %+v", g)
	}
}

func TestScaleMatrix(t *testing.T) {
	ds, err := NewDataset([3]uint32{100, 200, 400}, make([]float32, 100*200*400))
	if err != nil {
		t.Fatal(err)
	}
	m := ds.ScaleMatrix()
	// median dimension is 200
	got := m.TransformPoint(math.NewVec3(1, 1, 1))
	if !got.Compare(math.NewVec3(0.5, 1, 2), 1e-6) {
		t.Fatalf("scale matrix wrong: %+v", got)
	}
}

func TestHalfBits(t *testing.T) {
	ds, err := NewDataset([3]uint32{2, 1, 1}, []float32{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	bits := ds.HalfBits()
	if len(bits) != 2 {
		t.Fatalf("wrong length: %d", len(bits))
	}
	if bits[0] != 0x0000 {
		t.Fatalf("half(0) should be 0x0000, got %#x", bits[0])
	}
	if bits[1] != 0x3C00 {
		t.Fatalf("half(1) should be 0x3c00, got %#x", bits[1])
	}
}
