package spline

import (
	"github.com/o3dtools/o3dkit/pkg/diag"
	vecmath "github.com/o3dtools/o3dkit/pkg/math"
	"github.com/o3dtools/o3dkit/pkg/sli"
)

// Triangle is one output face with the material slot of its strip.
type Triangle struct {
	Indices  [3]uint32
	Material int
}

// Mesh is tessellated spline geometry in spline-local space.
type Mesh struct {
	Vertices  []vecmath.Vec3
	UVs       []vecmath.Vec2
	Triangles []Triangle
}

// Tessellate extrudes a profile along a spline definition. Each profile
// strip becomes a samples-by-points grid with two triangles per cell; the
// winding flips when the definition is mirrored so faces keep their
// orientation. A zero-length definition returns an empty mesh.
func Tessellate(def Def, profile *sli.Profile, opts Options, diags *diag.List) Mesh {
	var mesh Mesh
	if def.Length <= 0 {
		return mesh
	}

	e := NewEvaluator(def)
	samples := e.sampleDistances(opts)
	if len(samples) < 2 {
		return mesh
	}

	for _, strip := range profile.Strips {
		if len(strip.Points) < 2 {
			diags.Warnf(profile.Path, 0, "profile strip with %d points cannot be extruded; skipping", len(strip.Points))
			continue
		}
		tessellateStrip(&mesh, e, strip, samples)
	}
	return mesh
}

func tessellateStrip(mesh *Mesh, e *Evaluator, strip sli.Strip, samples []float32) {
	base := uint32(len(mesh.Vertices))
	cols := len(strip.Points)

	for _, s := range samples {
		skew := e.skew(s)
		for _, p := range strip.Points {
			mesh.Vertices = append(mesh.Vertices, e.point(s, p.X, p.Z))
			// V follows the skew-lengthened path of this point, not the
			// centerline distance.
			mesh.UVs = append(mesh.UVs, vecmath.Vec2{
				X: p.U,
				Y: (s + skew*p.X) * p.VTiling,
			})
		}
	}

	mirror := e.def.Mirror
	for row := 0; row+1 < len(samples); row++ {
		for col := 0; col+1 < cols; col++ {
			a := base + uint32(row*cols+col)
			b := a + 1
			c := a + uint32(cols)
			d := c + 1
			if mirror {
				mesh.Triangles = append(mesh.Triangles,
					Triangle{Indices: [3]uint32{a, d, b}, Material: strip.Material},
					Triangle{Indices: [3]uint32{a, c, d}, Material: strip.Material},
				)
			} else {
				mesh.Triangles = append(mesh.Triangles,
					Triangle{Indices: [3]uint32{b, d, a}, Material: strip.Material},
					Triangle{Indices: [3]uint32{d, c, a}, Material: strip.Material},
				)
			}
		}
	}
}
