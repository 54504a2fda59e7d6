package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/encoding"
)

// ReadOptions control text decoding of a config file.
type ReadOptions struct {
	// Encoding overrides the default Windows-1252 interpretation.
	Encoding encoding.Name
}

func (o ReadOptions) encoding() encoding.Name {
	if o.Encoding == "" {
		return encoding.Windows1252
	}
	return o.Encoding
}

// scope is the parser's nesting state. It is passed by value so each
// committed section derives the next state without hidden mutation, which
// keeps partial and malformed inputs easy to reason about.
type scope struct {
	lod       *LOD
	mesh      *Mesh
	matl      *MaterialProps
	tag       string // most recently opened section tag
	viewpoint int
}

// rawSection is a section accumulated from the line stream before commit.
type rawSection struct {
	tag    string
	line   int // 1-based header line
	params []string
}

// Read parses a model config from raw bytes. Grammar problems are reported
// to diags and recovered; Read itself never fails.
//
// path is used to resolve [mesh] entries: they are relative to the config's
// directory, and `.sco` configs resolve them under a `model` subfolder.
func Read(data []byte, path string, opts ReadOptions, diags *diag.List) *Document {
	dir := filepath.Dir(path)
	if strings.EqualFold(filepath.Ext(path), ".sco") {
		dir = filepath.Join(dir, "model")
	}

	doc := &Document{Path: path, Dir: dir}
	sc := scope{}

	for _, sec := range splitSections(data, opts.encoding()) {
		sc = commitSection(doc, sc, sec, diags)
	}
	return doc
}

// ReadFile parses a model config from disk.
func ReadFile(path string, opts ReadOptions, diags *diag.List) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Read(data, path, opts, diags), nil
}

// isHeader reports whether a line opens a section: `[tag]` with a non-empty
// tag and no stray bracket inside.
func isHeader(line string) bool {
	if len(line) <= 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return false
	}
	return !strings.ContainsAny(line[1:len(line)-1], "[]")
}

// splitSections decodes the byte stream and groups lines into sections.
// Lines before the first header belong to no section and are ignored, as
// the original tooling does.
func splitSections(data []byte, enc encoding.Name) []rawSection {
	text := encoding.DecodeText(data, enc)
	lines := strings.Split(text, "\n")

	var sections []rawSection
	current := -1
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if isHeader(line) {
			sections = append(sections, rawSection{tag: line, line: i + 1})
			current = len(sections) - 1
			continue
		}
		if current >= 0 {
			sections[current].params = append(sections[current].params, line)
		}
	}

	// Trailing blank parameter lines are separators between sections, not
	// data; strip them so verbatim sections stay stable across round trips.
	for i := range sections {
		p := sections[i].params
		for len(p) > 0 && p[len(p)-1] == "" {
			p = p[:len(p)-1]
		}
		sections[i].params = p
	}
	return sections
}

// commitSection applies one completed section to the document and returns
// the scope for the sections that follow it.
func commitSection(doc *Document, sc scope, sec rawSection, diags *diag.List) scope {
	sc.tag = sec.tag

	switch sec.tag {
	case "[LOD]":
		threshold, ok := wantFloat(sec, 0, doc, diags)
		if !ok {
			return sc
		}
		sc.lod = bucketFor(doc, threshold, sec.line)
		sc.mesh = nil
		sc.matl = nil

	case "[groups]":
		doc.Groups = sec.params

	case "[friendlyname]":
		if len(sec.params) > 0 {
			doc.FriendlyName = sec.params[0]
		}

	case "[surface]":
		doc.Surface = true

	case "[tree]":
		doc.Tree = sec.params

	case "[editor_only]":
		doc.EditorOnly = true

	case "[viewpoint]":
		if v, ok := wantInt(sec, 0, doc, diags); ok {
			sc.viewpoint = v
		}

	case "[mesh]":
		if len(sec.params) < 1 || sec.params[0] == "" {
			diags.Warnf(doc.Path, sec.line, "[mesh] without a path; skipping")
			return sc
		}
		rel := sec.params[0]
		mesh := &Mesh{
			Path:      rel,
			FullPath:  filepath.Join(doc.Dir, filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/"))),
			Line:      sec.line,
			Viewpoint: sc.viewpoint,
		}
		if sc.lod == nil {
			sc.lod = bucketFor(doc, DefaultLOD, sec.line)
		}
		sc.lod.Meshes = append(sc.lod.Meshes, mesh)
		sc.mesh = mesh
		sc.matl = nil
		doc.Files = append(doc.Files, MeshRef{FullPath: mesh.FullPath, LOD: sc.lod.Threshold})

	case "[interiorlight]":
		mesh, ok := wantMesh(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		light, ok := parseInteriorLight(sec, doc, diags)
		if ok {
			mesh.Lights = append(mesh.Lights, light)
		}

	case "[spotlight]":
		mesh, ok := wantMesh(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		spot, ok := parseSpotlight(sec, doc, diags)
		if ok {
			mesh.Spotlights = append(mesh.Spotlights, spot)
		}

	case "[light_enh]", "[light_enh_2]":
		mesh, ok := wantMesh(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		want := 13
		if sec.tag == "[light_enh_2]" {
			want = 24
		}
		if len(sec.params) < want {
			diags.Warnf(doc.Path, sec.line, "%s expects %d parameters, found %d; skipping", sec.tag, want, len(sec.params))
			return sc
		}
		mesh.Flares = append(mesh.Flares, Flare{Tag: sec.tag, Params: sec.params[:want], Line: sec.line})

	case "[matl]", "[matl_change]":
		mesh, ok := wantMesh(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		if len(sec.params) < 1 || sec.params[0] == "" {
			diags.Warnf(doc.Path, sec.line, "%s without a texture name; skipping", sec.tag)
			return sc
		}
		matl := &MaterialProps{Texture: sec.params[0], Line: sec.line}
		if slot, ok := wantInt(sec, 1, doc, diags); ok {
			matl.Slot = slot
		}
		if sec.tag == "[matl_change]" && len(sec.params) > 2 {
			matl.ChangeVar = sec.params[2]
		}
		mesh.Materials = append(mesh.Materials, matl)
		sc.matl = matl

	case "[matl_alpha]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		if v, ok := wantInt(sec, 0, doc, diags); ok {
			matl.Alpha = &IntProp{Value: v, Line: sec.line}
		}

	case "[matl_transmap]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		if len(sec.params) > 0 {
			matl.Transmap = &StringProp{Value: sec.params[0], Line: sec.line}
		}

	case "[matl_envmap]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		prop := &EnvmapProp{Line: sec.line}
		if len(sec.params) > 0 {
			prop.Texture = sec.params[0]
		}
		if v, ok := wantFloat(sec, 1, doc, diags); ok {
			prop.Strength = v
		}
		matl.Envmap = prop

	case "[matl_envmap_mask]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		if len(sec.params) > 0 {
			matl.EnvmapMask = &StringProp{Value: sec.params[0], Line: sec.line}
		}

	case "[matl_bumpmap]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		prop := &BumpmapProp{Line: sec.line}
		if len(sec.params) > 0 {
			prop.Texture = sec.params[0]
		}
		if v, ok := wantFloat(sec, 1, doc, diags); ok {
			prop.Strength = v
		}
		matl.Bumpmap = prop

	case "[matl_noZwrite]":
		if matl, ok := wantMaterial(sc, sec, doc, diags); ok {
			matl.NoZWrite = true
		}

	case "[matl_noZcheck]":
		if matl, ok := wantMaterial(sc, sec, doc, diags); ok {
			matl.NoZCheck = true
		}

	case "[matl_allcolor]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		matl.AllColor = nil
		for i := 0; i < 14 && i < len(sec.params); i++ {
			v, ok := wantFloat(sec, i, doc, diags)
			if !ok {
				break
			}
			matl.AllColor = append(matl.AllColor, FloatProp{Value: v, Line: sec.line + 1 + i})
		}

	case "[matl_nightmap]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		if len(sec.params) > 0 {
			matl.Nightmap = &StringProp{Value: sec.params[0], Line: sec.line}
		}

	case "[matl_lightmap]":
		matl, ok := wantMaterial(sc, sec, doc, diags)
		if !ok {
			return sc
		}
		if len(sec.params) > 0 {
			matl.Lightmap = &StringProp{Value: sec.params[0], Line: sec.line}
		}

	default:
		// Preserve unknown syntax verbatim in the innermost open scope.
		section := Section{Tag: sec.tag, Params: sec.params, Line: sec.line}
		switch {
		case sc.matl != nil:
			sc.matl.Unrecognized = append(sc.matl.Unrecognized, section)
		case sc.mesh != nil:
			sc.mesh.Unrecognized = append(sc.mesh.Unrecognized, section)
		case sc.lod != nil:
			sc.lod.Unrecognized = append(sc.lod.Unrecognized, section)
		default:
			doc.Unrecognized = append(doc.Unrecognized, section)
		}
	}

	return sc
}

// bucketFor finds or creates the LOD bucket with the given threshold.
func bucketFor(doc *Document, threshold float32, line int) *LOD {
	if l := doc.LOD(threshold); l != nil {
		return l
	}
	l := &LOD{Threshold: threshold, Line: line}
	doc.LODs = append(doc.LODs, l)
	return l
}

func wantMesh(sc scope, sec rawSection, doc *Document, diags *diag.List) (*Mesh, bool) {
	if sc.mesh == nil {
		diags.Warnf(doc.Path, sec.line, "%s outside a [mesh] scope; skipping", sec.tag)
		return nil, false
	}
	return sc.mesh, true
}

func wantMaterial(sc scope, sec rawSection, doc *Document, diags *diag.List) (*MaterialProps, bool) {
	if sc.matl == nil {
		diags.Warnf(doc.Path, sec.line, "%s outside a [matl] scope; skipping", sec.tag)
		return nil, false
	}
	return sc.matl, true
}

func wantFloat(sec rawSection, index int, doc *Document, diags *diag.List) (float32, bool) {
	if index >= len(sec.params) {
		diags.Warnf(doc.Path, sec.line, "%s missing parameter %d; skipping", sec.tag, index)
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(sec.params[index]), 32)
	if err != nil {
		diags.Warnf(doc.Path, sec.line+1+index, "%s has invalid number %q; skipping", sec.tag, sec.params[index])
		return 0, false
	}
	return float32(v), true
}

func wantInt(sec rawSection, index int, doc *Document, diags *diag.List) (int, bool) {
	if index >= len(sec.params) {
		diags.Warnf(doc.Path, sec.line, "%s missing parameter %d; skipping", sec.tag, index)
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(sec.params[index]))
	if err != nil {
		diags.Warnf(doc.Path, sec.line+1+index, "%s has invalid integer %q; skipping", sec.tag, sec.params[index])
		return 0, false
	}
	return v, true
}

func parseInteriorLight(sec rawSection, doc *Document, diags *diag.List) (InteriorLight, bool) {
	if len(sec.params) < 8 {
		diags.Warnf(doc.Path, sec.line, "[interiorlight] expects 8 parameters, found %d; skipping", len(sec.params))
		return InteriorLight{}, false
	}
	light := InteriorLight{Variable: sec.params[0], Line: sec.line}

	fields := []*float32{
		&light.Range,
		&light.Color[0], &light.Color[1], &light.Color[2],
		&light.Position[0], &light.Position[1], &light.Position[2],
	}
	for i, dst := range fields {
		v, ok := wantFloat(sec, i+1, doc, diags)
		if !ok {
			return InteriorLight{}, false
		}
		*dst = v
	}
	// Color channels are stored 0-255.
	for i := range light.Color {
		light.Color[i] /= 255
	}
	return light, true
}

func parseSpotlight(sec rawSection, doc *Document, diags *diag.List) (Spotlight, bool) {
	if len(sec.params) < 12 {
		diags.Warnf(doc.Path, sec.line, "[spotlight] expects 12 parameters, found %d; skipping", len(sec.params))
		return Spotlight{}, false
	}
	spot := Spotlight{Line: sec.line}
	fields := []*float32{
		&spot.Position[0], &spot.Position[1], &spot.Position[2],
		&spot.Direction[0], &spot.Direction[1], &spot.Direction[2],
		&spot.Color[0], &spot.Color[1], &spot.Color[2],
		&spot.Range, &spot.InnerAngle, &spot.OuterAngle,
	}
	for i, dst := range fields {
		v, ok := wantFloat(sec, i, doc, diags)
		if !ok {
			return Spotlight{}, false
		}
		*dst = v
	}
	return spot, true
}
