package importer

import (
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"

	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/mapfile"
	vecmath "github.com/o3dtools/o3dkit/pkg/math"
	"github.com/o3dtools/o3dkit/pkg/spline"
	"github.com/o3dtools/o3dkit/pkg/terrain"
)

// PlacedObject is one resolved scenery instance in tile-local space.
// Rotation is euler degrees, z-up. Repeated spline attachments expand into
// one PlacedObject per instance, all pointing at the same source placement.
type PlacedObject struct {
	Source   *mapfile.Placement
	Path     string // resolved config path under the installation root
	Position vecmath.Vec3
	Rotation vecmath.Vec3
}

// placeObjects positions every placement of a tile: ground objects are
// lifted onto the terrain, spline attachments are evaluated along their
// spline and expanded by their repeat range.
func (imp *Importer) placeObjects(tile *mapfile.Tile, hm *terrain.Heightmap, diags *diag.List) []PlacedObject {
	var out []PlacedObject
	for i := range tile.Placements {
		p := &tile.Placements[i]
		resolved := filepath.Join(imp.fs.Root, filepath.FromSlash(strings.ReplaceAll(p.Path, "\\", "/")))

		switch p.Kind {
		case mapfile.KindObject, mapfile.KindAttachObject:
			pos := p.Pos
			if hm != nil {
				pos.Z += hm.Height(pos.X, pos.Y)
			}
			out = append(out, PlacedObject{Source: p, Path: resolved, Position: pos, Rotation: p.Rot})

		case mapfile.KindSplineAttachment, mapfile.KindSplineRepeater:
			out = append(out, imp.placeOnSpline(tile, p, resolved, diags)...)
		}
	}
	return out
}

// placeOnSpline expands a spline attachment into its instances. The stored
// position is spline-relative: x lateral, y height above the deck, z
// distance along the spline. Attachments past either end of the spline are
// dropped, matching how maps in the wild rely on this.
func (imp *Importer) placeOnSpline(tile *mapfile.Tile, p *mapfile.Placement, resolved string, diags *diag.List) []PlacedObject {
	if p.Spline < 0 || p.Spline >= len(tile.Splines) {
		diags.Warnf(tile.Path, p.Line, "%s references spline %d of %d; skipping", p.Kind, p.Spline, len(tile.Splines))
		return nil
	}
	def := tile.Splines[p.Spline]
	if p.Pos.Z < 0 || p.Pos.Z > def.Length {
		return nil
	}

	e := spline.NewEvaluator(def)
	out := []PlacedObject{instanceAt(e, p, resolved, p.Pos.Z)}

	// Repeats march along the spline from the anchor until either bound.
	if p.RepDistance > 0 {
		for d := p.RepDistance; d < p.RepRange && d+p.Pos.Z < def.Length; d += p.RepDistance {
			out = append(out, instanceAt(e, p, resolved, p.Pos.Z+d))
		}
	}
	return out
}

func instanceAt(e *spline.Evaluator, p *mapfile.Placement, resolved string, dist float32) PlacedObject {
	pos, rot := e.Evaluate(dist, p.Pos.X, true)
	pos.Z += p.Pos.Y

	splineRot := vecmath.Vec3{Z: -rad2deg(rot.Z)}
	if p.TangentToSpline {
		splineRot.X = -rad2deg(rot.X)
		splineRot.Y = -rad2deg(rot.Y)
	}
	return PlacedObject{
		Source:   p,
		Path:     resolved,
		Position: pos,
		Rotation: p.Rot.Add(splineRot),
	}
}

func rad2deg(r float32) float32 {
	return r * 180 / math32.Pi
}
