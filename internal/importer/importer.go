// Package importer assembles map tiles: it loads the global config, filters
// tiles by load radius, decodes terrain, tessellates splines and resolves
// object placements into positioned instances. Decoded meshes, configs and
// profiles are memoized per importer so repeated placements of the same
// scenery object never hit the disk twice.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/o3dtools/o3dkit/internal/host"
	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/encoding"
	"github.com/o3dtools/o3dkit/pkg/mapfile"
	"github.com/o3dtools/o3dkit/pkg/o3d"
	"github.com/o3dtools/o3dkit/pkg/sli"
	"github.com/o3dtools/o3dkit/pkg/spline"
	"github.com/o3dtools/o3dkit/pkg/terrain"
)

// Options tune an import run.
type Options struct {
	TessDist      float32
	CurveSag      float32
	Encoding      encoding.Name
	InvertWinding bool
}

// Importer loads map content beneath an installation root.
type Importer struct {
	fs   *host.FS
	opts Options

	meshes   map[string]*o3d.Document
	configs  map[string]*cfg.Document
	profiles map[string]*sli.Profile
}

// SplineMesh pairs a tessellated spline with its definition.
type SplineMesh struct {
	Def  spline.Def
	Mesh spline.Mesh
}

// TileScene is everything loaded from one .map file, in tile-local space.
type TileScene struct {
	Ref     mapfile.TileRef
	Map     *mapfile.Tile
	Terrain *terrain.Heightmap
	Objects []PlacedObject
	Splines []SplineMesh
}

// Scene is a whole map import.
type Scene struct {
	Global *mapfile.Global
	Tiles  []*TileScene
}

// New returns an importer rooted at the installation directory the global
// config lives under.
func New(fs *host.FS, opts Options) *Importer {
	return &Importer{
		fs:       fs,
		opts:     opts,
		meshes:   map[string]*o3d.Document{},
		configs:  map[string]*cfg.Document{},
		profiles: map[string]*sli.Profile{},
	}
}

// LoadMap reads a global map config and imports every tile within the load
// radius of the centre tile. Per-tile problems are reported to diags and
// the remaining tiles still load; only an unreadable global config fails.
func (imp *Importer) LoadMap(globalPath string, centreX, centreY, radius float32, diags *diag.List) (*Scene, error) {
	raw, err := cfg.ReadGenericFile(globalPath, cfg.ReadOptions{Encoding: imp.opts.Encoding})
	if err != nil {
		return nil, errors.Wrap(err, "loading global map config")
	}

	scene := &Scene{Global: mapfile.ParseGlobal(raw, diags)}
	mapDir := filepath.Dir(globalPath)
	for _, ref := range scene.Global.TilesWithin(centreX, centreY, radius) {
		tile, err := imp.LoadTile(filepath.Join(mapDir, filepath.FromSlash(strings.ReplaceAll(ref.Path, "\\", "/"))), diags)
		if err != nil {
			diags.Errorf(ref.Path, 0, "tile failed to load: %v", err)
			continue
		}
		tile.Ref = ref
		scene.Tiles = append(scene.Tiles, tile)
	}
	return scene, nil
}

// LoadTile imports a single .map file with its .terrain sidecar.
func (imp *Importer) LoadTile(mapPath string, diags *diag.List) (*TileScene, error) {
	raw, err := cfg.ReadGenericFile(mapPath, cfg.ReadOptions{Encoding: imp.opts.Encoding})
	if err != nil {
		return nil, err
	}
	tile := mapfile.ParseTile(raw, diags)

	scene := &TileScene{Map: tile}
	scene.Terrain, err = terrain.DecodeFile(mapPath + ".terrain")
	if err != nil {
		diags.Warnf(mapPath, 0, "terrain unavailable (%v); placements sit at height 0", err)
		scene.Terrain = nil
	}

	scene.Splines = imp.tessellateSplines(tile, diags)
	scene.Objects = imp.placeObjects(tile, scene.Terrain, diags)
	return scene, nil
}

// tessellateSplines generates geometry for every spline definition of a
// tile, loading each referenced profile once.
func (imp *Importer) tessellateSplines(tile *mapfile.Tile, diags *diag.List) []SplineMesh {
	opts := spline.Options{TessDist: imp.opts.TessDist, CurveSag: imp.opts.CurveSag}
	out := make([]SplineMesh, 0, len(tile.Splines))
	for _, def := range tile.Splines {
		profile := imp.Profile(def.Path, diags)
		out = append(out, SplineMesh{
			Def:  def,
			Mesh: spline.Tessellate(def, profile, opts, diags),
		})
	}
	return out
}

// Mesh decodes an O3D file, memoized by its resolved path.
func (imp *Importer) Mesh(path string, diags *diag.List) (*o3d.Document, error) {
	if doc, ok := imp.meshes[path]; ok {
		return doc, nil
	}
	doc, err := o3d.DecodeFile(path, o3d.Options{InvertWinding: imp.opts.InvertWinding}, diags)
	if err != nil {
		return nil, err
	}
	imp.meshes[path] = doc
	return doc, nil
}

// Config reads a model config, memoized by its resolved path.
func (imp *Importer) Config(path string, diags *diag.List) (*cfg.Document, error) {
	if doc, ok := imp.configs[path]; ok {
		return doc, nil
	}
	doc, err := cfg.ReadFile(path, cfg.ReadOptions{Encoding: imp.opts.Encoding}, diags)
	if err != nil {
		return nil, err
	}
	imp.configs[path] = doc
	return doc, nil
}

// Profile loads a spline profile relative to the installation root,
// memoized by key. Missing profiles substitute the built-in default.
func (imp *Importer) Profile(path string, diags *diag.List) *sli.Profile {
	key := encoding.NormalizeKey(path)
	if p, ok := imp.profiles[key]; ok {
		return p
	}
	full := filepath.Join(imp.fs.Root, filepath.FromSlash(strings.ReplaceAll(path, "\\", "/")))
	p := sli.Load(full, sli.Options{
		Encoding:    imp.opts.Encoding,
		FindSidecar: imp.fs.SidecarFinder(),
	}, diags)
	imp.profiles[key] = p
	return p
}
