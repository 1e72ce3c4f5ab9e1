package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/mrjoshuak/go-openexr/half"

	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/math"
)

// maxSample is the largest raw value in the 12-bit .dat sample range.
const maxSample = 4095.0

/**
 * @brief A scalar density volume. Samples are normalized to [0,1] and laid
 * out row-major with X fastest-varying. Immutable for the session once loaded.
 */
type Dataset struct {
	Dims [3]uint32
	Data []float32
}

// NewDataset validates dimensions against the sample count.
func NewDataset(dims [3]uint32, data []float32) (*Dataset, error) {
	if dims[0] == 0 || dims[1] == 0 || dims[2] == 0 {
		return nil, fmt.Errorf("volume dimensions must be non-zero, got %v", dims)
	}
	expected := int(dims[0]) * int(dims[1]) * int(dims[2])
	if len(data) != expected {
		return nil, fmt.Errorf("volume sample count %d does not match dimensions %v (want %d)", len(data), dims, expected)
	}
	return &Dataset{Dims: dims, Data: data}, nil
}

/**
 * @brief Loads a .dat volume: three little-endian uint16 dimensions followed
 * by x*y*z little-endian uint16 samples in a 12-bit range. Files ending in
 * .gz are decompressed transparently.
 */
func LoadDat(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open volume %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open compressed volume %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	ds, err := ReadDat(r)
	if err != nil {
		return nil, fmt.Errorf("read volume %s: %w", path, err)
	}
	core.LogInfo("loaded volume %s (%dx%dx%d)", path, ds.Dims[0], ds.Dims[1], ds.Dims[2])
	return ds, nil
}

// ReadDat parses the .dat layout from an already-opened stream.
func ReadDat(r io.Reader) (*Dataset, error) {
	var rawDims [3]uint16
	if err := binary.Read(r, binary.LittleEndian, &rawDims); err != nil {
		return nil, fmt.Errorf("reading dimensions: %w", err)
	}
	dims := [3]uint32{uint32(rawDims[0]), uint32(rawDims[1]), uint32(rawDims[2])}
	if dims[0] == 0 || dims[1] == 0 || dims[2] == 0 {
		return nil, fmt.Errorf("volume dimensions must be non-zero, got %v", dims)
	}

	count := int(dims[0]) * int(dims[1]) * int(dims[2])
	raw := make([]uint16, count)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("reading %d samples: %w", count, err)
	}

	data := make([]float32, count)
	for i, v := range raw {
		data[i] = math.Clamp(float32(v)/maxSample, 0.0, 1.0)
	}
	return &Dataset{Dims: dims, Data: data}, nil
}

// HalfBits converts the samples to IEEE binary16 for R16Float texture upload.
func (ds *Dataset) HalfBits() []uint16 {
	halves := make([]half.Half, len(ds.Data))
	half.ConvertBatch32(halves, ds.Data)
	bits := make([]uint16, len(halves))
	for i, h := range halves {
		bits[i] = uint16(h)
	}
	return bits
}

/**
 * @brief ScaleMatrix returns the non-uniform cube scaling that restores the
 * volume's physical aspect ratio: each dimension divided by the median one.
 */
func (ds *Dataset) ScaleMatrix() math.Mat4 {
	dims := []float32{float32(ds.Dims[0]), float32(ds.Dims[1]), float32(ds.Dims[2])}
	sorted := append([]float32(nil), dims...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := sorted[1]
	return math.NewMat4Scale(math.NewVec3(dims[0]/mid, dims[1]/mid, dims[2]/mid))
}

func (ds *Dataset) at(x, y, z int) float32 {
	x = math.Clamp(x, 0, int(ds.Dims[0])-1)
	y = math.Clamp(y, 0, int(ds.Dims[1])-1)
	z = math.Clamp(z, 0, int(ds.Dims[2])-1)
	return ds.Data[(z*int(ds.Dims[1])+y)*int(ds.Dims[0])+x]
}

/**
 * @brief Sample performs trilinear filtering with clamp-to-edge addressing,
 * matching the GPU sampler configuration. p is a [0,1]^3 volume coordinate.
 */
func (ds *Dataset) Sample(p math.Vec3) float32 {
	// texel-center convention: coordinate u maps to u*N - 0.5
	fx := p.X*float32(ds.Dims[0]) - 0.5
	fy := p.Y*float32(ds.Dims[1]) - 0.5
	fz := p.Z*float32(ds.Dims[2]) - 0.5

	x0, y0, z0 := floor(fx), floor(fy), floor(fz)
	tx, ty, tz := fx-float32(x0), fy-float32(y0), fz-float32(z0)

	c000 := ds.at(x0, y0, z0)
	c100 := ds.at(x0+1, y0, z0)
	c010 := ds.at(x0, y0+1, z0)
	c110 := ds.at(x0+1, y0+1, z0)
	c001 := ds.at(x0, y0, z0+1)
	c101 := ds.at(x0+1, y0, z0+1)
	c011 := ds.at(x0, y0+1, z0+1)
	c111 := ds.at(x0+1, y0+1, z0+1)

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)
	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// Gradient estimates the density gradient at p via central differences.
func (ds *Dataset) Gradient(p math.Vec3, delta float32) math.Vec3 {
	dx := ds.Sample(math.NewVec3(p.X+delta, p.Y, p.Z)) - ds.Sample(math.NewVec3(p.X-delta, p.Y, p.Z))
	dy := ds.Sample(math.NewVec3(p.X, p.Y+delta, p.Z)) - ds.Sample(math.NewVec3(p.X, p.Y-delta, p.Z))
	dz := ds.Sample(math.NewVec3(p.X, p.Y, p.Z+delta)) - ds.Sample(math.NewVec3(p.X, p.Y, p.Z-delta))
	return math.NewVec3(dx, dy, dz)
}

func floor(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
