package o3d

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/encoding"
)

// Options control how a document is decoded or encoded.
type Options struct {
	// InvertWinding reverses the triangle index order on both decode and
	// encode. File winding is opposite to the usual counter-clockwise
	// front-face convention, so importers normally set this.
	InvertWinding bool

	// Cipher handles encrypted vertex lists. When nil and the file is
	// encrypted, the codec degrades to IdentityCipher and warns once.
	Cipher VertexCipher
}

func (o Options) cipher(d *diag.List, file string, encrypted bool) VertexCipher {
	if o.Cipher != nil {
		return o.Cipher
	}
	if encrypted {
		d.Warnf(file, 0, "encrypted vertex list but no cipher available; geometry left as stored")
	}
	return IdentityCipher{}
}

// Decode parses an O3D container from raw bytes. Unrecognized section tags
// end the parse with a warning and a partial document; truncated sections
// are reported as ErrTruncatedData.
func Decode(data []byte, opts Options, diags *diag.List) (*Document, error) {
	return decode(data, "", opts, diags)
}

// DecodeFile parses an O3D container from disk.
func DecodeFile(path string, opts Options, diags *diag.List) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading O3D file: %w", err)
	}
	return decode(data, path, opts, diags)
}

func decode(data []byte, file string, opts Options, diags *diag.List) (*Document, error) {
	if len(data) < 3 {
		return nil, ErrTruncatedData
	}
	if data[0] != magic0 || data[1] != magic1 {
		return nil, fmt.Errorf("%w: found 0x%02x 0x%02x", ErrInvalidMagic, data[0], data[1])
	}

	doc := &Document{
		Version:       data[2],
		EncryptionKey: NoEncryptionKey,
		Transform:     IdentityTransform(),
	}
	if doc.Version < 1 || doc.Version > 7 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	r := bytes.NewReader(data[3:])
	longHeader := doc.Version > 3
	if longHeader {
		var optionsByte uint8
		if err := binary.Read(r, binary.LittleEndian, &optionsByte); err != nil {
			return nil, fmt.Errorf("%w: reading extended header", ErrTruncatedData)
		}
		doc.LongIndices = optionsByte&0x01 != 0
		doc.AltSeed = optionsByte&0x02 != 0
		if err := binary.Read(r, binary.LittleEndian, &doc.EncryptionKey); err != nil {
			return nil, fmt.Errorf("%w: reading encryption key", ErrTruncatedData)
		}
	}

	cipher := opts.cipher(diags, file, doc.Encrypted())

	// The body runs to EOF-1: a single trailing byte is padding in files
	// written by the original tooling.
	for r.Len() > 1 {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: reading section tag", ErrTruncatedData)
		}

		switch tag {
		case sectionVertices:
			if err := decodeVertices(r, doc, longHeader, cipher); err != nil {
				return nil, err
			}
		case sectionTriangles:
			if err := decodeTriangles(r, doc, longHeader, opts.InvertWinding); err != nil {
				return nil, err
			}
		case sectionMaterials:
			if err := decodeMaterials(r, doc, diags, file); err != nil {
				return nil, err
			}
		case sectionBones:
			if err := decodeBones(r, doc, longHeader); err != nil {
				return nil, err
			}
		case sectionTransform:
			if err := decodeTransform(r, doc); err != nil {
				return nil, err
			}
		default:
			offset := len(data) - r.Len() - 1
			diags.Warnf(file, 0, "unexpected section tag 0x%02x at offset 0x%x; returning partial document", tag, offset)
			return doc, nil
		}
	}

	limit := uint32(len(doc.Vertices))
	for i, tri := range doc.Triangles {
		for _, idx := range tri.Indices {
			if idx >= limit {
				diags.Warnf(file, 0, "triangle %d references vertex %d of %d", i, idx, limit)
			}
		}
	}

	return doc, nil
}

// readCount reads a section element count: 4 bytes when the extended header
// is present, otherwise 2.
func readCount(r *bytes.Reader, longHeader bool) (int, error) {
	if longHeader {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, err
		}
		return int(n), nil
	}
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func decodeVertices(r *bytes.Reader, doc *Document, longHeader bool, cipher VertexCipher) error {
	count, err := readCount(r, longHeader)
	if err != nil {
		return fmt.Errorf("%w: reading vertex count", ErrTruncatedData)
	}

	st := cipher.Init(doc.EncryptionKey, doc.AltSeed, doc.Version)
	// Empty sections keep the slice nil so decode(encode(d)) stays
	// DeepEqual to d.
	if count > 0 {
		doc.Vertices = make([]Vertex, count)
	}
	for i := 0; i < count; i++ {
		var raw [8]float32
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return fmt.Errorf("%w: reading vertex %d", ErrTruncatedData, i)
		}
		v := Vertex{
			Position: [3]float32{raw[0], raw[1], raw[2]},
			Normal:   [3]float32{raw[3], raw[4], raw[5]},
			U:        raw[6],
			V:        raw[7],
		}
		if doc.Encrypted() {
			v, st = cipher.Decrypt(v, doc.EncryptionKey, doc.AltSeed, st, count)
		}
		doc.Vertices[i] = v
	}
	return nil
}

func decodeTriangles(r *bytes.Reader, doc *Document, longHeader, invertWinding bool) error {
	count, err := readCount(r, longHeader)
	if err != nil {
		return fmt.Errorf("%w: reading triangle count", ErrTruncatedData)
	}

	if count > 0 {
		doc.Triangles = make([]Triangle, count)
	}
	for i := 0; i < count; i++ {
		var tri Triangle
		if doc.LongIndices {
			var idx [3]uint32
			if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
				return fmt.Errorf("%w: reading triangle %d", ErrTruncatedData, i)
			}
			tri.Indices = idx
		} else {
			var idx [3]uint16
			if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
				return fmt.Errorf("%w: reading triangle %d", ErrTruncatedData, i)
			}
			tri.Indices = [3]uint32{uint32(idx[0]), uint32(idx[1]), uint32(idx[2])}
		}
		if err := binary.Read(r, binary.LittleEndian, &tri.Material); err != nil {
			return fmt.Errorf("%w: reading triangle %d material", ErrTruncatedData, i)
		}
		if invertWinding {
			tri.Indices[0], tri.Indices[2] = tri.Indices[2], tri.Indices[0]
		}
		doc.Triangles[i] = tri
	}
	return nil
}

func decodeMaterials(r *bytes.Reader, doc *Document, diags *diag.List, file string) error {
	// Material counts are always 16-bit, extended header or not.
	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: reading material count", ErrTruncatedData)
	}

	if count > 0 {
		doc.Materials = make([]Material, count)
	}
	for i := 0; i < int(count); i++ {
		var raw [11]float32
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return fmt.Errorf("%w: reading material %d", ErrTruncatedData, i)
		}
		m := Material{
			Diffuse:       [4]float32{raw[0], raw[1], raw[2], raw[3]},
			Specular:      [3]float32{raw[4], raw[5], raw[6]},
			Emission:      [3]float32{raw[7], raw[8], raw[9]},
			SpecularPower: raw[10],
		}

		name, err := readPascalString(r)
		if err != nil {
			return fmt.Errorf("%w: reading material %d texture name", ErrTruncatedData, i)
		}
		decoded, ok := encoding.DecodeCP1252(name)
		if !ok {
			diags.Warnf(file, 0, "material %d has an undecodable texture name; using empty name", i)
			decoded = ""
		}
		m.Texture = decoded
		doc.Materials[i] = m
	}
	return nil
}

func decodeBones(r *bytes.Reader, doc *Document, longHeader bool) error {
	count, err := readCount(r, longHeader)
	if err != nil {
		return fmt.Errorf("%w: reading bone count", ErrTruncatedData)
	}

	if count > 0 {
		doc.Bones = make([]Bone, count)
	}
	for i := 0; i < count; i++ {
		name, err := readPascalString(r)
		if err != nil {
			return fmt.Errorf("%w: reading bone %d name", ErrTruncatedData, i)
		}
		decoded, ok := encoding.DecodeCP1252(name)
		if !ok {
			decoded = ""
		}
		bone := Bone{Name: decoded}

		var weightCount uint16
		if err := binary.Read(r, binary.LittleEndian, &weightCount); err != nil {
			return fmt.Errorf("%w: reading bone %d weight count", ErrTruncatedData, i)
		}
		if weightCount > 0 {
			bone.Weights = make([]Weight, weightCount)
		}
		for w := 0; w < int(weightCount); w++ {
			var idx uint32
			if doc.LongIndices {
				if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
					return fmt.Errorf("%w: reading bone %d weight %d", ErrTruncatedData, i, w)
				}
			} else {
				var short uint16
				if err := binary.Read(r, binary.LittleEndian, &short); err != nil {
					return fmt.Errorf("%w: reading bone %d weight %d", ErrTruncatedData, i, w)
				}
				idx = uint32(short)
			}
			var value float32
			if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
				return fmt.Errorf("%w: reading bone %d weight %d value", ErrTruncatedData, i, w)
			}
			bone.Weights[w] = Weight{Vertex: idx, Value: value}
		}
		doc.Bones[i] = bone
	}
	return nil
}

func decodeTransform(r *bytes.Reader, doc *Document) error {
	var raw [16]float32
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return fmt.Errorf("%w: reading transform", ErrTruncatedData)
	}
	// The file stores the matrix column-major.
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			doc.Transform[row][col] = raw[col*4+row]
		}
	}
	return nil
}

// readPascalString reads a 1-byte length-prefixed string's raw bytes.
func readPascalString(r *bytes.Reader) ([]byte, error) {
	length, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
