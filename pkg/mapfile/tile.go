package mapfile

import (
	"strconv"

	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
	vecmath "github.com/o3dtools/o3dkit/pkg/math"
	"github.com/o3dtools/o3dkit/pkg/spline"
)

// Kind discriminates the placement record variants of a tile.
type Kind int

const (
	KindObject Kind = iota
	KindAttachObject
	KindSplineAttachment
	KindSplineRepeater
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindAttachObject:
		return "attachObj"
	case KindSplineAttachment:
		return "splineAttachement"
	case KindSplineRepeater:
		return "splineAttachement_repeater"
	}
	return "unknown"
}

// TreeData is the extra record carried by type-4 (tree) placements.
type TreeData struct {
	Texture string
	Height  float32
	Aspect  float32
}

// Placement is one object instance on a tile. Spline-attachment fields are
// only meaningful for the spline kinds; Attach only for attached objects.
type Placement struct {
	Kind Kind
	Path string // scenery object path relative to the installation root
	ID   int
	Pos  vecmath.Vec3
	Rot  vecmath.Vec3 // euler degrees, z-up
	Type int
	Tree *TreeData
	Line int

	Attach int

	Spline          int // index into the tile's spline definition list
	RepDistance     float32
	RepRange        float32
	TangentToSpline bool
	RepeaterX       int
	RepeaterY       int
}

// Tile is a parsed .map file.
type Tile struct {
	Path        string
	Placements  []Placement
	Splines     []spline.Def
	Entrypoints [][]string // raw, uninterpreted
	GroundTex   [][]string // raw, uninterpreted
}

// ParseTile interprets a tile's section stream. Malformed records are
// skipped with a warning; the rest of the tile still loads.
func ParseTile(f *cfg.GenericFile, diags *diag.List) *Tile {
	t := &Tile{
		Path:        f.Path,
		Entrypoints: f.Get("[entrypoints]"),
		GroundTex:   f.Get("[groundtex]"),
	}

	for _, sec := range f.Sections {
		switch sec.Tag {
		case "[object]":
			if p, ok := parseObject(sec, f.Path, diags); ok {
				t.Placements = append(t.Placements, p)
			}
		case "[attachObj]":
			if p, ok := parseAttachObject(sec, f.Path, diags); ok {
				t.Placements = append(t.Placements, p)
			}
		case "[splineAttachement]":
			if p, ok := parseSplineAttachment(sec, f.Path, diags); ok {
				t.Placements = append(t.Placements, p)
			}
		case "[splineAttachement_repeater]":
			if p, ok := parseSplineRepeater(sec, f.Path, diags); ok {
				t.Placements = append(t.Placements, p)
			}
		case "[spline]", "[spline_h]":
			if d, ok := parseSplineDef(sec, f.Path, diags); ok {
				t.Splines = append(t.Splines, d)
			}
		}
	}
	return t
}

// rec wraps one record's parameters with fault-tolerant field accessors.
// A failed conversion marks the record bad; the caller checks once at the
// end instead of after every field.
type rec struct {
	sec   cfg.GenericSection
	path  string
	diags *diag.List
	bad   bool
}

func (r *rec) str(i int) string {
	if i >= len(r.sec.Params) {
		r.fail(i, "missing parameter")
		return ""
	}
	return r.sec.Params[i]
}

func (r *rec) intAt(i int) int {
	s := r.str(i)
	if r.bad {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.fail(i, "invalid integer "+strconv.Quote(s))
		return 0
	}
	return v
}

func (r *rec) floatAt(i int) float32 {
	s := r.str(i)
	if r.bad {
		return 0
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		r.fail(i, "invalid number "+strconv.Quote(s))
		return 0
	}
	return float32(v)
}

func (r *rec) vec3At(i int) vecmath.Vec3 {
	return vecmath.Vec3{X: r.floatAt(i), Y: r.floatAt(i + 1), Z: r.floatAt(i + 2)}
}

// typeAt reads the object-type field, which is absent or non-numeric in
// plenty of real map files and then means a plain object.
func (r *rec) typeAt(i int) int {
	if i >= len(r.sec.Params) {
		return 0
	}
	v, err := strconv.Atoi(r.sec.Params[i])
	if err != nil {
		return 0
	}
	return v
}

// treeAt reads the tree record following a type-4 placement.
func (r *rec) treeAt(objType, i int) *TreeData {
	if objType != 4 {
		return nil
	}
	return &TreeData{
		Texture: r.str(i),
		Height:  r.floatAt(i + 1),
		Aspect:  r.floatAt(i + 2),
	}
}

func (r *rec) fail(i int, msg string) {
	if !r.bad {
		r.diags.Warnf(r.path, r.sec.Line, "%s parameter %d: %s; skipping record", r.sec.Tag, i, msg)
	}
	r.bad = true
}

func parseObject(sec cfg.GenericSection, path string, diags *diag.List) (Placement, bool) {
	r := rec{sec: sec, path: path, diags: diags}
	p := Placement{
		Kind: KindObject,
		Line: sec.Line,
		Path: r.str(1),
		ID:   r.intAt(2),
		Pos:  r.vec3At(3),
		Rot:  r.vec3At(6),
	}
	p.Type = r.typeAt(9)
	p.Tree = r.treeAt(p.Type, 10)
	return p, !r.bad
}

func parseAttachObject(sec cfg.GenericSection, path string, diags *diag.List) (Placement, bool) {
	r := rec{sec: sec, path: path, diags: diags}
	p := Placement{
		Kind:   KindAttachObject,
		Line:   sec.Line,
		Path:   r.str(1),
		ID:     r.intAt(2),
		Attach: r.intAt(3),
		Pos:    r.vec3At(4),
		Rot:    r.vec3At(5),
	}
	p.Type = r.typeAt(10)
	p.Tree = r.treeAt(p.Type, 11)
	return p, !r.bad
}

func parseSplineAttachment(sec cfg.GenericSection, path string, diags *diag.List) (Placement, bool) {
	r := rec{sec: sec, path: path, diags: diags}
	p := Placement{
		Kind:            KindSplineAttachment,
		Line:            sec.Line,
		Path:            r.str(1),
		ID:              r.intAt(2),
		Spline:          r.intAt(3),
		Pos:             r.vec3At(4),
		Rot:             r.vec3At(7),
		RepDistance:     r.floatAt(10),
		RepRange:        r.floatAt(11),
		TangentToSpline: r.intAt(12) == 1,
	}
	p.Type = r.typeAt(13)
	p.Tree = r.treeAt(p.Type, 14)
	return p, !r.bad
}

func parseSplineRepeater(sec cfg.GenericSection, path string, diags *diag.List) (Placement, bool) {
	r := rec{sec: sec, path: path, diags: diags}
	p := Placement{
		Kind:            KindSplineRepeater,
		Line:            sec.Line,
		RepeaterX:       r.intAt(1),
		RepeaterY:       r.intAt(2),
		Path:            r.str(3),
		ID:              r.intAt(4),
		Spline:          r.intAt(5),
		Pos:             r.vec3At(6),
		Rot:             r.vec3At(9),
		RepDistance:     r.floatAt(12),
		RepRange:        r.floatAt(13),
		TangentToSpline: r.intAt(14) == 1,
	}
	p.Type = r.typeAt(15)
	p.Tree = r.treeAt(p.Type, 16)
	return p, !r.bad
}

func parseSplineDef(sec cfg.GenericSection, path string, diags *diag.List) (spline.Def, bool) {
	r := rec{sec: sec, path: path, diags: diags}
	d := spline.Def{
		Path:       r.str(1),
		ID:         r.intAt(2),
		NextID:     r.intAt(3),
		PrevID:     r.intAt(4),
		Pos:        r.vec3At(5),
		Rot:        r.floatAt(8),
		Length:     r.floatAt(9),
		Radius:     r.floatAt(10),
		StartGrade: r.floatAt(11),
		EndGrade:   r.floatAt(12),
		CantStart:  r.floatAt(13),
		CantEnd:    r.floatAt(14),
		SkewStart:  r.floatAt(15),
		SkewEnd:    r.floatAt(16),
	}
	if sec.Tag == "[spline_h]" {
		d.DeltaHeight = r.floatAt(17)
		d.UseDeltaHeight = true
	}
	if len(sec.Params) > 18 {
		d.Mirror = sec.Params[18] == "mirror"
	}
	return d, !r.bad
}
