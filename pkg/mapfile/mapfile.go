// Package mapfile interprets the map dialect of the shared config grammar:
// the global map config with its tile list, and per-tile .map files holding
// object placements, spline attachments and spline definitions.
package mapfile

import (
	"strconv"

	"github.com/chewxy/math32"

	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
)

// TileRef is one [map] entry of the global config: tile grid coordinates
// and the .map file path relative to the map directory.
type TileRef struct {
	X, Y int
	Path string
}

// Global is the parsed global map config. Raw keeps the full section stream
// for sections the typed view does not interpret.
type Global struct {
	Raw   *cfg.GenericFile
	Tiles []TileRef
}

// ParseGlobal extracts the tile list from a global config.
func ParseGlobal(f *cfg.GenericFile, diags *diag.List) *Global {
	g := &Global{Raw: f}
	for _, sec := range f.Sections {
		if sec.Tag != "[map]" {
			continue
		}
		if len(sec.Params) < 3 {
			diags.Warnf(f.Path, sec.Line, "[map] expects 3 parameters, found %d; skipping", len(sec.Params))
			continue
		}
		x, errX := strconv.Atoi(sec.Params[0])
		y, errY := strconv.Atoi(sec.Params[1])
		if errX != nil || errY != nil {
			diags.Warnf(f.Path, sec.Line, "[map] has invalid tile coordinates %q, %q; skipping", sec.Params[0], sec.Params[1])
			continue
		}
		g.Tiles = append(g.Tiles, TileRef{X: x, Y: y, Path: sec.Params[2]})
	}
	return g
}

// TilesWithin returns the tiles inside the load radius around a centre tile.
func (g *Global) TilesWithin(centreX, centreY, radius float32) []TileRef {
	var out []TileRef
	for _, t := range g.Tiles {
		dx := centreX - float32(t.X)
		dy := centreY - float32(t.Y)
		if math32.Sqrt(dx*dx+dy*dy) > radius*0.5+0.5 {
			continue
		}
		out = append(out, t)
	}
	return out
}
