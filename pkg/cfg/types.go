// Package cfg parses and writes the line-oriented keyed configuration
// formats used to compose meshes, materials and lights into objects (.cfg
// and .sco model configs) and the shared grammar of the map dialect
// (global.cfg, *.map).
//
// The grammar is one token per line: a line matching `[tag]` opens a
// section, every following line is a positional parameter of that section
// until the next header. Section meaning depends on the currently open
// scopes (LOD bucket, mesh, material); a section found outside its required
// scope is skipped with a warning, never a parse failure. Unrecognized
// sections are preserved verbatim so a document can be re-emitted without
// losing unknown syntax.
package cfg

import "github.com/o3dtools/o3dkit/pkg/encoding"

// DefaultLOD is the threshold key of the bucket holding meshes declared
// before any [LOD] section.
const DefaultLOD float32 = -1

// Section is a verbatim copy of a section the parser does not interpret.
// Tag includes the surrounding brackets exactly as written.
type Section struct {
	Tag    string
	Params []string
	Line   int // 1-based header line
}

// IntProp is an integer property with its source line.
type IntProp struct {
	Value int
	Line  int
}

// FloatProp is a float property with its source line.
type FloatProp struct {
	Value float32
	Line  int
}

// StringProp is a string property with its source line.
type StringProp struct {
	Value string
	Line  int
}

// EnvmapProp is an environment-map declaration: a reflection mask texture
// and a blend strength.
type EnvmapProp struct {
	Texture  string
	Strength float32
	Line     int
}

// BumpmapProp is a bump-map declaration: a normal texture and a strength.
type BumpmapProp struct {
	Texture  string
	Strength float32
	Line     int
}

// MaterialProps holds every recognized [matl_*] property attached to one
// [matl] or [matl_change] declaration. Material keys are scoped per mesh.
type MaterialProps struct {
	Texture   string // as written in the file
	Slot      int    // material slot index within the mesh
	ChangeVar string // script variable of [matl_change], empty for [matl]
	Line      int

	Alpha      *IntProp // 0 opaque, 1 clip, 2 hashed
	Transmap   *StringProp
	Envmap     *EnvmapProp
	EnvmapMask *StringProp
	Bumpmap    *BumpmapProp
	NoZWrite   bool
	NoZCheck   bool
	Nightmap   *StringProp
	Lightmap   *StringProp

	// AllColor is the 14-float [matl_allcolor] record. Its visual mapping is
	// only partially documented, so it is carried as opaque data.
	AllColor []FloatProp

	Unrecognized []Section
}

// Key returns the lower-cased lookup key of the material.
func (m *MaterialProps) Key() string {
	return encoding.NormalizeKey(m.Texture)
}

// InteriorLight is a point light bound to a script variable.
// Color components are normalized to 0-1 (stored /255 in the file).
type InteriorLight struct {
	Variable string
	Range    float32
	Color    [3]float32
	Position [3]float32
	Line     int
}

// Spotlight is a directional cone light.
type Spotlight struct {
	Position   [3]float32
	Direction  [3]float32
	Color      [3]float32
	Range      float32
	InnerAngle float32
	OuterAngle float32
	Line       int
}

// Flare is a [light_enh] or [light_enh_2] record. The two variants differ
// only in arity; parameters are kept in file order.
type Flare struct {
	Tag    string // "[light_enh]" or "[light_enh_2]"
	Params []string
	Line   int
}

// Mesh is one [mesh] declaration with everything scoped under it.
type Mesh struct {
	Path     string // relative path as written
	FullPath string // resolved against the config directory
	Line     int

	Viewpoint int

	Materials    []*MaterialProps // registration order
	Lights       []InteriorLight
	Spotlights   []Spotlight
	Flares       []Flare
	Unrecognized []Section
}

// Material looks a material up by its lower-cased texture key.
// Returns nil when the mesh declares no such material.
func (m *Mesh) Material(key string) *MaterialProps {
	key = encoding.NormalizeKey(key)
	for _, matl := range m.Materials {
		if matl.Key() == key {
			return matl
		}
	}
	return nil
}

// LOD is a level-of-detail bucket keyed by its view-distance threshold.
type LOD struct {
	Threshold    float32 // DefaultLOD for meshes outside any [LOD] section
	Line         int
	Meshes       []*Mesh // declaration order
	Unrecognized []Section
}

// Mesh looks a mesh up by its relative path.
func (l *LOD) Mesh(path string) *Mesh {
	for _, m := range l.Meshes {
		if m.Path == path {
			return m
		}
	}
	return nil
}

// MeshRef is one entry of the flat load-scheduling list: the resolved mesh
// path plus the LOD threshold it belongs to.
type MeshRef struct {
	FullPath string
	LOD      float32
}

// Document is a parsed model config.
type Document struct {
	Path string // source file path, empty when parsed from bytes
	Dir  string // directory mesh paths resolve against

	FriendlyName string
	Groups       []string
	Surface      bool
	Tree         []string // [tree] marker parameters, verbatim
	EditorOnly   bool

	LODs         []*LOD // declaration order; the default bucket comes first when used
	Unrecognized []Section

	// Files lists every declared mesh for load scheduling.
	Files []MeshRef
}

// LOD returns the bucket with the given threshold, or nil.
func (d *Document) LOD(threshold float32) *LOD {
	for _, l := range d.LODs {
		if l.Threshold == threshold {
			return l
		}
	}
	return nil
}
