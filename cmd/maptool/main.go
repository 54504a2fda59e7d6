// maptool inspects and imports map tiles.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/o3dtools/o3dkit/internal/config"
	"github.com/o3dtools/o3dkit/internal/host"
	"github.com/o3dtools/o3dkit/internal/importer"
	"github.com/o3dtools/o3dkit/internal/logger"
	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/mapfile"
)

func main() {
	// Flags come before the command: maptool -radius 1 import maps/x/global.cfg
	config.ParseFlags()

	conf, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(conf.Logging.Level, conf.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "tiles":
		cmdTiles(conf, args[1:])
	case "import":
		cmdImport(conf, args[1:])
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`maptool - map inspection and import

Usage:
  maptool [options] <command> [args]

Commands:
  tiles <global.cfg>              List the tiles a map declares
  import <global.cfg> [x y]      Import tiles around (x, y) and summarize

Options:
  -root PATH        Installation root (default: derived from the map path)
  -radius N         Tile load radius
  -tess-dist N      Max spline chord length
  -curve-sag N      Max spline chord-to-curve error
  -encoding NAME    Text encoding of config files
  -config PATH      Config file
  -debug            Debug logging

Examples:
  maptool tiles maps/City/global.cfg
  maptool -radius 1 import maps/City/global.cfg 5 5`)
}

func cmdTiles(conf *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: maptool tiles <global.cfg>")
		os.Exit(1)
	}

	raw, err := cfg.ReadGenericFile(args[0], cfg.ReadOptions{Encoding: conf.EncodingName()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var diags diag.List
	global := mapfile.ParseGlobal(raw, &diags)
	for _, tile := range global.Tiles {
		fmt.Printf("  (%3d, %3d)  %s\n", tile.X, tile.Y, tile.Path)
	}
	fmt.Printf("%d tile(s)\n", len(global.Tiles))
	logger.Diagnostics(&diags)
}

func cmdImport(conf *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: maptool import <global.cfg> [x y]")
		os.Exit(1)
	}
	globalPath := args[0]

	var centreX, centreY float32
	if len(args) >= 3 {
		centreX = parseCoord(args[1])
		centreY = parseCoord(args[2])
	}

	fs := &host.FS{Root: installRoot(conf, globalPath), Encoding: conf.EncodingName()}
	imp := importer.New(fs, importer.Options{
		TessDist:      conf.Import.TessDist,
		CurveSag:      conf.Import.CurveSag,
		Encoding:      conf.EncodingName(),
		InvertWinding: conf.Import.InvertWinding,
	})

	var diags diag.List
	scene, err := imp.LoadMap(globalPath, centreX, centreY, conf.Import.LoadRadius, &diags)
	if err != nil {
		logger.Error("import failed", zap.Error(err))
		os.Exit(1)
	}

	var objects, splines int
	for _, tile := range scene.Tiles {
		terrainState := "no terrain"
		if tile.Terrain != nil {
			terrainState = "terrain"
		}
		fmt.Printf("  (%3d, %3d)  %d object(s), %d spline(s), %s\n",
			tile.Ref.X, tile.Ref.Y, len(tile.Objects), len(tile.Splines), terrainState)
		objects += len(tile.Objects)
		splines += len(tile.Splines)
	}
	fmt.Printf("%d of %d tile(s) loaded, %d object(s), %d spline(s)\n",
		len(scene.Tiles), len(scene.Global.Tiles), objects, splines)
	logger.Diagnostics(&diags)
}

func parseCoord(s string) float32 {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad tile coordinate %q: %v\n", s, err)
		os.Exit(1)
	}
	return float32(v)
}

// installRoot picks the asset resolution root. Maps conventionally sit at
// <root>/maps/<name>/global.cfg, so when no root is configured the map's
// grandparent directory is the best guess.
func installRoot(conf *config.Config, globalPath string) string {
	if conf.Paths.InstallRoot != "" && conf.Paths.InstallRoot != "." {
		return conf.Paths.InstallRoot
	}
	return filepath.Dir(filepath.Dir(filepath.Dir(globalPath)))
}
