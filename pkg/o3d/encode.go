package o3d

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/encoding"
)

// Encode serializes a document to O3D bytes. It is the exact inverse of
// Decode: for any document whose feature use is legal under its declared
// version, Decode(Encode(d)) == d.
//
// A version <= 3 combined with encryption, long indices or the alternate
// encryption seed is a validation error; silently emitting such a file would
// make it unreadable.
func Encode(doc *Document, opts Options, diags *diag.List) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte(magic0)
	buf.WriteByte(magic1)
	buf.WriteByte(doc.Version)

	longHeader := doc.Version > 3
	if longHeader {
		var optionsByte uint8
		if doc.LongIndices {
			optionsByte |= 0x01
		}
		if doc.AltSeed {
			optionsByte |= 0x02
		}
		buf.WriteByte(optionsByte)
		binary.Write(&buf, binary.LittleEndian, doc.EncryptionKey)
	}

	cipher := opts.cipher(diags, "", doc.Encrypted())

	encodeVertices(&buf, doc, longHeader, cipher)
	encodeTriangles(&buf, doc, longHeader, opts.InvertWinding)
	if len(doc.Materials) > 0 {
		if err := encodeMaterials(&buf, doc, diags); err != nil {
			return nil, err
		}
	}
	if len(doc.Bones) > 0 {
		if err := encodeBones(&buf, doc, longHeader); err != nil {
			return nil, err
		}
	}
	encodeTransform(&buf, doc)

	return buf.Bytes(), nil
}

// EncodeFile serializes a document and writes it to disk.
func EncodeFile(doc *Document, path string, opts Options, diags *diag.List) error {
	data, err := Encode(doc, opts, diags)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing O3D file: %w", err)
	}
	return nil
}

func writeCount(buf *bytes.Buffer, n int, longHeader bool) {
	if longHeader {
		binary.Write(buf, binary.LittleEndian, uint32(n))
	} else {
		binary.Write(buf, binary.LittleEndian, uint16(n))
	}
}

func encodeVertices(buf *bytes.Buffer, doc *Document, longHeader bool, cipher VertexCipher) {
	buf.WriteByte(sectionVertices)
	writeCount(buf, len(doc.Vertices), longHeader)

	st := cipher.Init(doc.EncryptionKey, doc.AltSeed, doc.Version)
	for _, v := range doc.Vertices {
		if doc.Encrypted() {
			v, st = cipher.Encrypt(v, doc.EncryptionKey, doc.AltSeed, st, len(doc.Vertices))
		}
		raw := [8]float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.U, v.V,
		}
		binary.Write(buf, binary.LittleEndian, raw)
	}
}

func encodeTriangles(buf *bytes.Buffer, doc *Document, longHeader, invertWinding bool) {
	buf.WriteByte(sectionTriangles)
	writeCount(buf, len(doc.Triangles), longHeader)

	for _, tri := range doc.Triangles {
		idx := tri.Indices
		if invertWinding {
			idx[0], idx[2] = idx[2], idx[0]
		}
		if doc.LongIndices {
			binary.Write(buf, binary.LittleEndian, idx)
		} else {
			binary.Write(buf, binary.LittleEndian, [3]uint16{uint16(idx[0]), uint16(idx[1]), uint16(idx[2])})
		}
		binary.Write(buf, binary.LittleEndian, tri.Material)
	}
}

func encodeMaterials(buf *bytes.Buffer, doc *Document, diags *diag.List) error {
	buf.WriteByte(sectionMaterials)
	// Material counts are always 16-bit.
	binary.Write(buf, binary.LittleEndian, uint16(len(doc.Materials)))

	for i, m := range doc.Materials {
		raw := [11]float32{
			m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], m.Diffuse[3],
			m.Specular[0], m.Specular[1], m.Specular[2],
			m.Emission[0], m.Emission[1], m.Emission[2],
			m.SpecularPower,
		}
		binary.Write(buf, binary.LittleEndian, raw)

		name := encoding.EncodeCP1252(m.Texture)
		if len(name) > 255 {
			diags.Warnf("", 0, "material %d texture name exceeds 255 bytes; truncating", i)
			name = name[:255]
		}
		buf.WriteByte(uint8(len(name)))
		buf.Write(name)
	}
	return nil
}

func encodeBones(buf *bytes.Buffer, doc *Document, longHeader bool) error {
	buf.WriteByte(sectionBones)
	writeCount(buf, len(doc.Bones), longHeader)

	for i, bone := range doc.Bones {
		name := encoding.EncodeCP1252(bone.Name)
		if len(name) > 255 {
			return fmt.Errorf("bone %d name exceeds 255 bytes", i)
		}
		buf.WriteByte(uint8(len(name)))
		buf.Write(name)

		binary.Write(buf, binary.LittleEndian, uint16(len(bone.Weights)))
		for _, w := range bone.Weights {
			if doc.LongIndices {
				binary.Write(buf, binary.LittleEndian, w.Vertex)
			} else {
				binary.Write(buf, binary.LittleEndian, uint16(w.Vertex))
			}
			binary.Write(buf, binary.LittleEndian, w.Value)
		}
	}
	return nil
}

func encodeTransform(buf *bytes.Buffer, doc *Document) {
	buf.WriteByte(sectionTransform)
	var raw [16]float32
	// Stored column-major.
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			raw[col*4+row] = doc.Transform[row][col]
		}
	}
	binary.Write(buf, binary.LittleEndian, raw)
}
