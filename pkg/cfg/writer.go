package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/o3dtools/o3dkit/pkg/encoding"
)

// Write serializes a document back to config bytes in canonical section
// order. Recognized properties are re-emitted from their parsed values;
// unrecognized sections are replayed verbatim in their scope. Output is
// Windows-1252 with CRLF line endings, as the original tooling writes.
func Write(doc *Document) []byte {
	var b sectionWriter

	if len(doc.Groups) > 0 {
		b.section("[groups]", doc.Groups...)
	}
	if doc.FriendlyName != "" {
		b.section("[friendlyname]", doc.FriendlyName)
	}
	if doc.Surface {
		b.section("[surface]")
	}
	if doc.Tree != nil {
		b.section("[tree]", doc.Tree...)
	}
	if doc.EditorOnly {
		b.section("[editor_only]")
	}
	for _, sec := range doc.Unrecognized {
		b.section(sec.Tag, sec.Params...)
	}

	for _, lod := range doc.LODs {
		if lod.Threshold != DefaultLOD {
			b.section("[LOD]", ftoa(lod.Threshold))
		}
		for _, sec := range lod.Unrecognized {
			b.section(sec.Tag, sec.Params...)
		}
		for _, mesh := range lod.Meshes {
			writeMesh(&b, mesh)
		}
	}

	return encoding.EncodeCP1252(b.String())
}

// WriteFile serializes a document and writes it to disk.
func WriteFile(doc *Document, path string) error {
	if err := os.WriteFile(path, Write(doc), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func writeMesh(b *sectionWriter, mesh *Mesh) {
	if mesh.Viewpoint != 0 {
		b.section("[viewpoint]", strconv.Itoa(mesh.Viewpoint))
	}
	b.section("[mesh]", mesh.Path)

	for _, light := range mesh.Lights {
		b.section("[interiorlight]",
			light.Variable,
			ftoa(light.Range),
			ftoa(light.Color[0]*255), ftoa(light.Color[1]*255), ftoa(light.Color[2]*255),
			ftoa(light.Position[0]), ftoa(light.Position[1]), ftoa(light.Position[2]))
	}
	for _, spot := range mesh.Spotlights {
		b.section("[spotlight]",
			ftoa(spot.Position[0]), ftoa(spot.Position[1]), ftoa(spot.Position[2]),
			ftoa(spot.Direction[0]), ftoa(spot.Direction[1]), ftoa(spot.Direction[2]),
			ftoa(spot.Color[0]), ftoa(spot.Color[1]), ftoa(spot.Color[2]),
			ftoa(spot.Range), ftoa(spot.InnerAngle), ftoa(spot.OuterAngle))
	}
	for _, flare := range mesh.Flares {
		b.section(flare.Tag, flare.Params...)
	}

	for _, matl := range mesh.Materials {
		writeMaterial(b, matl)
	}
	for _, sec := range mesh.Unrecognized {
		b.section(sec.Tag, sec.Params...)
	}
}

func writeMaterial(b *sectionWriter, matl *MaterialProps) {
	if matl.ChangeVar != "" {
		b.section("[matl_change]", matl.Texture, strconv.Itoa(matl.Slot), matl.ChangeVar)
	} else {
		b.section("[matl]", matl.Texture, strconv.Itoa(matl.Slot))
	}

	if matl.Alpha != nil {
		b.section("[matl_alpha]", strconv.Itoa(matl.Alpha.Value))
	}
	if matl.Transmap != nil {
		b.section("[matl_transmap]", matl.Transmap.Value)
	}
	if matl.Envmap != nil {
		b.section("[matl_envmap]", matl.Envmap.Texture, ftoa(matl.Envmap.Strength))
	}
	if matl.EnvmapMask != nil {
		b.section("[matl_envmap_mask]", matl.EnvmapMask.Value)
	}
	if matl.Bumpmap != nil {
		b.section("[matl_bumpmap]", matl.Bumpmap.Texture, ftoa(matl.Bumpmap.Strength))
	}
	if matl.NoZWrite {
		b.section("[matl_noZwrite]")
	}
	if matl.NoZCheck {
		b.section("[matl_noZcheck]")
	}
	if len(matl.AllColor) > 0 {
		params := make([]string, len(matl.AllColor))
		for i, p := range matl.AllColor {
			params[i] = ftoa(p.Value)
		}
		b.section("[matl_allcolor]", params...)
	}
	if matl.Nightmap != nil {
		b.section("[matl_nightmap]", matl.Nightmap.Value)
	}
	if matl.Lightmap != nil {
		b.section("[matl_lightmap]", matl.Lightmap.Value)
	}
	for _, sec := range matl.Unrecognized {
		b.section(sec.Tag, sec.Params...)
	}
}

// sectionWriter emits sections with a blank separator line between them.
type sectionWriter struct {
	sb strings.Builder
}

func (w *sectionWriter) section(tag string, params ...string) {
	if w.sb.Len() > 0 {
		w.sb.WriteString("\r\n")
	}
	w.sb.WriteString(tag)
	w.sb.WriteString("\r\n")
	for _, p := range params {
		w.sb.WriteString(p)
		w.sb.WriteString("\r\n")
	}
}

func (w *sectionWriter) String() string { return w.sb.String() }

func ftoa(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
