package importer

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/o3dtools/o3dkit/internal/host"
	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/o3d"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeTerrain writes a .terrain sidecar with a constant height.
func writeTerrain(t *testing.T, path string, height float32) {
	t.Helper()
	data := make([]byte, 4, 4+61*61*4)
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(height))
	for i := 0; i < 61*61; i++ {
		data = append(data, scratch[:]...)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func testInstallation(t *testing.T) (root string) {
	t.Helper()
	root = t.TempDir()
	mapDir := filepath.Join(root, "maps", "testmap")

	writeFile(t, filepath.Join(mapDir, "global.cfg"), strings.Join([]string{
		"[name]",
		"Test Map",
		"",
		"[map]",
		"0", "0", "tile_0_0.map",
		"",
		"[map]",
		"5", "5", "tile_5_5.map",
		"",
	}, "\r\n"))

	writeFile(t, filepath.Join(mapDir, "tile_0_0.map"), strings.Join([]string{
		"[object]",
		"0",
		"Sceneryobjects\\house.sco",
		"1",
		"10", "20", "0",
		"0", "0", "90",
		"0",
		"",
		"[spline]",
		"0",
		"Splines\\street.sli",
		"7", "0", "0",
		"0", "0", "0",
		"0",
		"100",
		"0",
		"0", "0", "0", "0", "0", "0",
		"0",
		"0",
		"",
		"[splineAttachement]",
		"0",
		"Sceneryobjects\\lamp.sco",
		"2",
		"0",
		"2", "1", "50",
		"0", "0", "0",
		"20",
		"50",
		"0",
		"0",
		"",
	}, "\r\n"))
	writeTerrain(t, filepath.Join(mapDir, "tile_0_0.map.terrain"), 7)

	writeFile(t, filepath.Join(root, "Splines", "street.sli"), strings.Join([]string{
		"[profile]",
		"0",
		"",
		"[profilepnt]",
		"-3", "0", "0", "1",
		"",
		"[profilepnt]",
		"3", "0", "1", "1",
		"",
	}, "\r\n"))

	return root
}

func TestLoadMap_AssemblesTilesWithinRadius(t *testing.T) {
	root := testInstallation(t)
	imp := New(&host.FS{Root: root}, Options{TessDist: 10, CurveSag: 0.1})

	var diags diag.List
	scene, err := imp.LoadMap(filepath.Join(root, "maps", "testmap", "global.cfg"), 0, 0, 2, &diags)
	if err != nil {
		t.Fatal(err)
	}
	if diags.Errors() != 0 {
		t.Fatalf("unexpected errors: %v", diags.Records())
	}

	if len(scene.Global.Tiles) != 2 {
		t.Fatalf("global tiles = %d, want 2", len(scene.Global.Tiles))
	}
	if len(scene.Tiles) != 1 || scene.Tiles[0].Ref.Path != "tile_0_0.map" {
		t.Fatalf("loaded tiles = %+v, want only the centre tile", scene.Tiles)
	}

	tile := scene.Tiles[0]
	if tile.Terrain == nil {
		t.Fatal("terrain not loaded")
	}
	if len(tile.Splines) != 1 || len(tile.Splines[0].Mesh.Vertices) == 0 {
		t.Fatalf("splines = %+v", tile.Splines)
	}

	// One ground object plus three spline-attachment instances
	// (anchor at 50, repeats at 70 and 90).
	if len(tile.Objects) != 4 {
		t.Fatalf("objects = %d, want 4: %+v", len(tile.Objects), tile.Objects)
	}

	house := tile.Objects[0]
	if !strings.HasSuffix(house.Path, filepath.Join("Sceneryobjects", "house.sco")) {
		t.Errorf("house path = %q", house.Path)
	}
	if house.Position.Z != 7 {
		t.Errorf("house must sit on the terrain: z = %v", house.Position.Z)
	}
	if house.Rotation.Z != 90 {
		t.Errorf("house rotation = %+v", house.Rotation)
	}

	lamps := tile.Objects[1:]
	wantDist := []float32{50, 70, 90}
	for i, lamp := range lamps {
		if got := lamp.Position.Y; float32(math.Abs(float64(got-wantDist[i]))) > 1e-3 {
			t.Errorf("lamp %d at distance %v, want %v", i, got, wantDist[i])
		}
		if got := lamp.Position.X; float32(math.Abs(float64(got-2))) > 1e-4 {
			t.Errorf("lamp %d lateral offset = %v, want 2", i, got)
		}
		if got := lamp.Position.Z; float32(math.Abs(float64(got-1))) > 1e-4 {
			t.Errorf("lamp %d height = %v, want 1", i, got)
		}
	}
}

func TestLoadTile_AttachmentBeyondSplineDropped(t *testing.T) {
	root := testInstallation(t)
	mapPath := filepath.Join(root, "maps", "testmap", "beyond.map")
	writeFile(t, mapPath, strings.Join([]string{
		"[spline]",
		"0",
		"Splines\\street.sli",
		"1", "0", "0",
		"0", "0", "0",
		"0",
		"100",
		"0",
		"0", "0", "0", "0", "0", "0",
		"0",
		"0",
		"",
		"[splineAttachement]",
		"0",
		"Sceneryobjects\\lamp.sco",
		"2",
		"0",
		"0", "0", "150", // past the end of the 100m spline
		"0", "0", "0",
		"0",
		"0",
		"0",
		"0",
	}, "\r\n"))

	imp := New(&host.FS{Root: root}, Options{})
	var diags diag.List
	tile, err := imp.LoadTile(mapPath, &diags)
	if err != nil {
		t.Fatal(err)
	}
	if len(tile.Objects) != 0 {
		t.Errorf("objects = %+v, want none", tile.Objects)
	}
}

func TestMesh_Memoized(t *testing.T) {
	root := t.TempDir()
	doc := &o3d.Document{
		Version:       7,
		LongIndices:   true,
		EncryptionKey: o3d.NoEncryptionKey,
		Vertices:      []o3d.Vertex{{}, {}, {}},
		Triangles:     []o3d.Triangle{{Indices: [3]uint32{0, 1, 2}}},
		Transform:     o3d.IdentityTransform(),
	}
	path := filepath.Join(root, "model", "box.o3d")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := o3d.EncodeFile(doc, path, o3d.Options{}, nil); err != nil {
		t.Fatal(err)
	}

	imp := New(&host.FS{Root: root}, Options{})
	first, err := imp.Mesh(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := imp.Mesh(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("repeated loads must return the cached document")
	}
}

func TestProfile_MissingSubstitutesDefaultOnce(t *testing.T) {
	root := t.TempDir()
	imp := New(&host.FS{Root: root}, Options{})

	var diags diag.List
	first := imp.Profile("Splines\\missing.sli", &diags)
	second := imp.Profile("Splines\\missing.sli", &diags)

	if first != second {
		t.Error("profiles must be memoized")
	}
	if diags.Warnings() != 1 {
		t.Errorf("warnings = %d, want exactly 1", diags.Warnings())
	}
	if len(first.Strips) != 1 {
		t.Errorf("default profile = %+v", first)
	}
}
