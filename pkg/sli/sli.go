// Package sli loads spline cross-section profiles. A profile is an ordered
// list of strips, each strip an ordered list of points extruded along a
// spline; strips usually join up with each other but are not required to.
package sli

import (
	"os"
	"strconv"

	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/encoding"
)

// Point is one cross-section point: lateral offset, height, fixed U texture
// coordinate and the V-per-distance tiling factor.
type Point struct {
	X       float32
	Z       float32
	U       float32
	VTiling float32
}

// Strip is a run of points sharing one material slot.
type Strip struct {
	Material int
	Points   []Point
}

// Patchwork is the texture-chaining record of a material: a repeat count and
// three chained texture names cycled along the spline.
type Patchwork struct {
	Repeat int
	Chains [3]string
}

// Material is one [texture] declaration with its attributes.
type Material struct {
	Texture        string // as written in the file
	Alpha          int
	Patchwork      *Patchwork
	TerrainMapping bool
	Line           int
}

// Profile is a parsed spline profile.
type Profile struct {
	Path      string
	Strips    []Strip
	Materials map[string]*Material // keyed by lower-cased texture name
	Order     []string             // material keys in declaration order
}

// Material returns the material declared for the given texture name, or nil.
func (p *Profile) Material(texture string) *Material {
	return p.Materials[encoding.NormalizeKey(texture)]
}

// SidecarFinder locates the sidecar config of a texture referenced by a
// profile, used to detect per-texture [terrainmapping] flags. Returning nil
// means no sidecar exists. File lookup stays with the host so the loader
// itself never searches the filesystem.
type SidecarFinder func(profilePath, texture string) *cfg.GenericFile

// Options control profile loading.
type Options struct {
	Encoding    encoding.Name
	FindSidecar SidecarFinder
}

// Default returns the substitute profile used when a referenced .sli file is
// missing: a single flat strip with no materials.
func Default(path string) *Profile {
	return &Profile{
		Path: path,
		Strips: []Strip{{
			Material: 0,
			Points: []Point{
				{X: -3, Z: 0, U: 0, VTiling: 1},
				{X: 3, Z: 0, U: 1, VTiling: 1},
			},
		}},
		Materials: map[string]*Material{},
	}
}

// Parse reads a profile from raw bytes. Grammar problems are reported to
// diags and recovered.
func Parse(data []byte, path string, opts Options, diags *diag.List) *Profile {
	p := &Profile{Path: path, Materials: map[string]*Material{}}

	var strip *Strip
	var matl *Material

	f := cfg.ReadGeneric(data, path, cfg.ReadOptions{Encoding: opts.Encoding})
	for _, sec := range f.Sections {
		switch sec.Tag {
		case "[profile]":
			slot := 0
			if len(sec.Params) > 0 {
				v, err := strconv.Atoi(sec.Params[0])
				if err != nil {
					diags.Warnf(path, sec.Line, "[profile] has invalid material slot %q; using 0", sec.Params[0])
				} else {
					slot = v
				}
			}
			p.Strips = append(p.Strips, Strip{Material: slot})
			strip = &p.Strips[len(p.Strips)-1]

		case "[profilepnt]":
			if strip == nil {
				diags.Warnf(path, sec.Line, "[profilepnt] outside a [profile] scope; skipping")
				continue
			}
			pt, ok := parsePoint(sec, path, diags)
			if ok {
				strip.Points = append(strip.Points, pt)
			}

		case "[texture]":
			if len(sec.Params) < 1 || sec.Params[0] == "" {
				diags.Warnf(path, sec.Line, "[texture] without a name; skipping")
				matl = nil
				continue
			}
			matl = &Material{Texture: sec.Params[0], Line: sec.Line}
			key := encoding.NormalizeKey(matl.Texture)
			if _, seen := p.Materials[key]; !seen {
				p.Order = append(p.Order, key)
			}
			p.Materials[key] = matl

		case "[matl_alpha]":
			if matl == nil {
				diags.Warnf(path, sec.Line, "[matl_alpha] outside a [texture] scope; skipping")
				continue
			}
			if len(sec.Params) < 1 {
				diags.Warnf(path, sec.Line, "[matl_alpha] without a value; skipping")
				continue
			}
			v, err := strconv.Atoi(sec.Params[0])
			if err != nil {
				diags.Warnf(path, sec.Line, "[matl_alpha] has invalid value %q; skipping", sec.Params[0])
				continue
			}
			matl.Alpha = v

		case "[patchwork_chain]":
			if matl == nil {
				diags.Warnf(path, sec.Line, "[patchwork_chain] outside a [texture] scope; skipping")
				continue
			}
			if len(sec.Params) < 4 {
				diags.Warnf(path, sec.Line, "[patchwork_chain] expects 4 parameters, found %d; skipping", len(sec.Params))
				continue
			}
			repeat, err := strconv.Atoi(sec.Params[0])
			if err != nil {
				diags.Warnf(path, sec.Line, "[patchwork_chain] has invalid repeat count %q; skipping", sec.Params[0])
				continue
			}
			matl.Patchwork = &Patchwork{
				Repeat: repeat,
				Chains: [3]string{sec.Params[1], sec.Params[2], sec.Params[3]},
			}
		}
	}

	if opts.FindSidecar != nil {
		for _, m := range p.Materials {
			sidecar := opts.FindSidecar(path, m.Texture)
			if sidecar != nil && sidecar.Has("[terrainmapping]") {
				m.TerrainMapping = true
			}
		}
	}
	return p
}

// Load reads a profile from disk. A missing or unreadable file substitutes
// the built-in default with a warning so one broken reference never fails a
// whole import.
func Load(path string, opts Options, diags *diag.List) *Profile {
	data, err := os.ReadFile(path)
	if err != nil {
		diags.Warnf(path, 0, "spline profile unavailable (%v); using built-in default", err)
		return Default(path)
	}
	return Parse(data, path, opts, diags)
}

func parsePoint(sec cfg.GenericSection, path string, diags *diag.List) (Point, bool) {
	if len(sec.Params) < 4 {
		diags.Warnf(path, sec.Line, "[profilepnt] expects 4 parameters, found %d; skipping", len(sec.Params))
		return Point{}, false
	}
	var vals [4]float32
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(sec.Params[i], 32)
		if err != nil {
			diags.Warnf(path, sec.Line+1+i, "[profilepnt] has invalid number %q; skipping", sec.Params[i])
			return Point{}, false
		}
		vals[i] = float32(v)
	}
	return Point{X: vals[0], Z: vals[1], U: vals[2], VTiling: vals[3]}, true
}
