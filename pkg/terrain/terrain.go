// Package terrain decodes the fixed-grid .terrain heightmap sidecar of a
// map tile and samples it bilinearly.
package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/chewxy/math32"

	vecmath "github.com/o3dtools/o3dkit/pkg/math"
)

const (
	// GridDim is the heightmap resolution per axis.
	GridDim = 61
	// TileSize is the world extent covered by one tile, in meters.
	TileSize = 300
	// Spacing is the world distance between adjacent grid points.
	Spacing = TileSize / (GridDim - 1)

	headerSize = 4
	dataSize   = headerSize + GridDim*GridDim*4
)

// ErrTruncatedData reports a .terrain file shorter than the fixed layout.
var ErrTruncatedData = errors.New("o3dkit/terrain: truncated data")

// Heightmap is a decoded 61x61 terrain grid. Heights are indexed [y][x].
type Heightmap struct {
	Heights [GridDim][GridDim]float32
}

// Decode parses a .terrain byte stream: a 4-byte header followed by the
// row-major little-endian float32 grid. Trailing bytes are ignored.
func Decode(data []byte) (*Heightmap, error) {
	if len(data) < dataSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncatedData, len(data), dataSize)
	}

	h := &Heightmap{}
	off := headerSize
	for y := 0; y < GridDim; y++ {
		for x := 0; x < GridDim; x++ {
			bits := binary.LittleEndian.Uint32(data[off:])
			h.Heights[y][x] = math.Float32frombits(bits)
			off += 4
		}
	}
	return h, nil
}

// DecodeFile parses a .terrain file from disk.
func DecodeFile(path string) (*Heightmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terrain file: %w", err)
	}
	return Decode(data)
}

// At returns the stored height at a grid point, clamping indices to the
// grid edge.
func (h *Heightmap) At(x, y int) float32 {
	return h.Heights[clampIndex(y)][clampIndex(x)]
}

// Height bilinearly interpolates the terrain height at tile-local world
// coordinates. Out-of-range coordinates clamp to the grid edge.
func (h *Heightmap) Height(x, y float32) float32 {
	// Multiply before dividing so grid-aligned coordinates map to exact
	// integer grid positions.
	gx := x * (GridDim - 1) / TileSize
	gy := y * (GridDim - 1) / TileSize

	x0 := int(math32.Floor(gx))
	y0 := int(math32.Floor(gy))
	fx := gx - math32.Floor(gx)
	fy := gy - math32.Floor(gy)

	ll := h.At(x0, y0)
	lh := h.At(x0+1, y0)
	hl := h.At(x0, y0+1)
	hh := h.At(x0+1, y0+1)

	low := lerp(ll, lh, fx)
	high := lerp(hl, hh, fx)
	return lerp(low, high, fy)
}

// Mesh triangulates the grid into tile-local geometry: positions on the
// 5-meter lattice, UVs spanning the unit square, two triangles per cell.
func (h *Heightmap) Mesh() (verts []vecmath.Vec3, uvs []vecmath.Vec2, tris [][3]uint32) {
	verts = make([]vecmath.Vec3, 0, GridDim*GridDim)
	uvs = make([]vecmath.Vec2, 0, GridDim*GridDim)
	for y := 0; y < GridDim; y++ {
		for x := 0; x < GridDim; x++ {
			verts = append(verts, vecmath.Vec3{
				X: float32(x) * Spacing,
				Y: float32(y) * Spacing,
				Z: h.Heights[y][x],
			})
			uvs = append(uvs, vecmath.Vec2{
				X: float32(x) / (GridDim - 1),
				Y: 1 - float32(y)/(GridDim-1),
			})
		}
	}

	tris = make([][3]uint32, 0, (GridDim-1)*(GridDim-1)*2)
	for y := 0; y < GridDim-1; y++ {
		for x := 0; x < GridDim-1; x++ {
			i := uint32(y*GridDim + x)
			tris = append(tris,
				[3]uint32{i, i + 1, i + GridDim + 1},
				[3]uint32{i, i + GridDim + 1, i + GridDim},
			)
		}
	}
	return verts, uvs, tris
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= GridDim {
		return GridDim - 1
	}
	return i
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
