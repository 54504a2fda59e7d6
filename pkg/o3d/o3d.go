// Package o3d implements the O3D binary mesh container format.
//
// An O3D file is a three byte header (magic 0x84 0x19 plus a version in the
// range 1-7) followed by tagged sections in no fixed order: vertex list,
// triangle list, material list, bone list and a 4x4 transform. Files with
// version > 3 carry a five byte extended header selecting 32-bit triangle
// indices and an optional vertex encryption key.
package o3d

import (
	"errors"
	"fmt"
)

// O3D format errors.
var (
	ErrInvalidMagic       = errors.New("invalid O3D magic: expected 0x84 0x19")
	ErrUnsupportedVersion = errors.New("unsupported O3D version")
	ErrTruncatedData      = errors.New("truncated O3D data")
	ErrVersionFeature     = errors.New("feature requires O3D version > 3")
	ErrIndexOutOfRange    = errors.New("triangle index exceeds vertex count")
)

// Section tags of the O3D body.
const (
	sectionVertices  = 0x17
	sectionTriangles = 0x49
	sectionMaterials = 0x26
	sectionBones     = 0x54
	sectionTransform = 0x79
)

// Magic bytes of every O3D file.
const (
	magic0 = 0x84
	magic1 = 0x19
)

// NoEncryptionKey marks a file whose vertex list is stored in the clear.
const NoEncryptionKey uint32 = 0xFFFFFFFF

// Vertex is a position, normal and texture coordinate record.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	U, V     float32
}

// Triangle references three vertices and a material slot.
type Triangle struct {
	Indices  [3]uint32
	Material uint16
}

// Material is a fixed-function material description.
// The three Emission floats are carried through unchanged; their exact
// meaning varies between producers.
type Material struct {
	Diffuse       [4]float32 // RGBA
	Specular      [3]float32 // RGB
	Emission      [3]float32
	SpecularPower float32
	Texture       string // cp1252 in the file; empty when undecodable
}

// Weight binds a vertex to a bone with a blend factor.
type Weight struct {
	Vertex uint32
	Value  float32
}

// Bone is a named set of vertex weights.
type Bone struct {
	Name    string
	Weights []Weight
}

// Document is a fully decoded O3D container.
// Transform is row-major; the file stores it column-major.
type Document struct {
	Version       uint8
	LongIndices   bool   // 32-bit triangle indices (version > 3 only)
	AltSeed       bool   // alternate encryption-seed algorithm (version > 3 only)
	EncryptionKey uint32 // NoEncryptionKey when the vertex list is plain

	Vertices  []Vertex
	Triangles []Triangle
	Materials []Material
	Bones     []Bone
	Transform [4][4]float32
}

// IdentityTransform returns the identity 4x4 matrix.
func IdentityTransform() [4][4]float32 {
	return [4][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Encrypted reports whether the vertex list is stored encrypted.
func (d *Document) Encrypted() bool {
	return d.EncryptionKey != NoEncryptionKey
}

// Validate checks the structural invariants of the document: the version
// range, triangle index bounds, and that extended-header features are only
// used with versions that can represent them.
func (d *Document) Validate() error {
	if d.Version < 1 || d.Version > 7 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	if d.Version <= 3 {
		if d.LongIndices {
			return fmt.Errorf("%w: long triangle indices", ErrVersionFeature)
		}
		if d.AltSeed {
			return fmt.Errorf("%w: alternate encryption seed", ErrVersionFeature)
		}
		if d.Encrypted() {
			return fmt.Errorf("%w: encryption", ErrVersionFeature)
		}
	}
	limit := uint32(len(d.Vertices))
	for i, tri := range d.Triangles {
		for _, idx := range tri.Indices {
			if idx >= limit {
				return fmt.Errorf("%w: triangle %d index %d (have %d vertices)",
					ErrIndexOutOfRange, i, idx, limit)
			}
		}
	}
	if !d.LongIndices && len(d.Vertices) > 0x10000 {
		return fmt.Errorf("16-bit triangle indices cannot address %d vertices", len(d.Vertices))
	}
	return nil
}
