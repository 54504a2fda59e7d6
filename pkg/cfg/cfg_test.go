package cfg

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/o3dtools/o3dkit/pkg/diag"
)

func TestRead_LODBuckets(t *testing.T) {
	input := strings.Join([]string{
		"[friendlyname]",
		"Test Bus",
		"",
		"[LOD]",
		"1",
		"",
		"[mesh]",
		"body.o3d",
		"",
		"[matl]",
		"bus.bmp",
		"0",
		"",
		"[matl_alpha]",
		"1",
		"",
		"[LOD]",
		"0.2",
		"",
		"[mesh]",
		"body_far.o3d",
	}, "\r\n")

	var diags diag.List
	doc := Read([]byte(input), "bus.cfg", ReadOptions{}, &diags)
	if diags.Warnings() != 0 {
		t.Fatalf("unexpected warnings: %v", diags.Records())
	}

	if doc.FriendlyName != "Test Bus" {
		t.Errorf("FriendlyName = %q", doc.FriendlyName)
	}
	if len(doc.LODs) != 2 {
		t.Fatalf("got %d LOD buckets, want 2", len(doc.LODs))
	}

	near := doc.LOD(1)
	if near == nil || len(near.Meshes) != 1 || near.Meshes[0].Path != "body.o3d" {
		t.Fatalf("near bucket = %+v", near)
	}
	far := doc.LOD(0.2)
	if far == nil || len(far.Meshes) != 1 || far.Meshes[0].Path != "body_far.o3d" {
		t.Fatalf("far bucket = %+v", far)
	}

	matl := near.Meshes[0].Material("bus.bmp")
	if matl == nil {
		t.Fatal("material bus.bmp not found")
	}
	if matl.Alpha == nil || matl.Alpha.Value != 1 {
		t.Errorf("Alpha = %+v, want value 1", matl.Alpha)
	}

	want := []MeshRef{
		{FullPath: "body.o3d", LOD: 1},
		{FullPath: "body_far.o3d", LOD: 0.2},
	}
	if !reflect.DeepEqual(doc.Files, want) {
		t.Errorf("Files = %+v, want %+v", doc.Files, want)
	}
}

func TestRead_DefaultLODBucket(t *testing.T) {
	doc := Read([]byte("[mesh]\r\nbody.o3d\r\n"), "bus.cfg", ReadOptions{}, nil)
	if len(doc.LODs) != 1 || doc.LODs[0].Threshold != DefaultLOD {
		t.Fatalf("LODs = %+v, want one bucket at DefaultLOD", doc.LODs)
	}
}

func TestRead_ScopeViolationsAreSkipped(t *testing.T) {
	input := strings.Join([]string{
		"[matl_alpha]", // no material open
		"1",
		"",
		"[matl]", // no mesh open
		"bus.bmp",
		"0",
		"",
		"[interiorlight]", // no mesh open
		"lights", "5", "255", "255", "200", "0", "0", "1",
	}, "\r\n")

	var diags diag.List
	doc := Read([]byte(input), "bus.cfg", ReadOptions{}, &diags)
	if got := diags.Warnings(); got != 3 {
		t.Errorf("warnings = %d, want 3: %v", got, diags.Records())
	}
	if len(doc.LODs) != 0 {
		t.Errorf("out-of-scope sections must not create buckets: %+v", doc.LODs)
	}
}

func TestRead_MaterialScopeClosesAtNextMesh(t *testing.T) {
	input := strings.Join([]string{
		"[mesh]",
		"a.o3d",
		"",
		"[matl]",
		"a.bmp",
		"0",
		"",
		"[mesh]",
		"b.o3d",
		"",
		"[matl_alpha]", // material scope ended with the new mesh
		"2",
	}, "\r\n")

	var diags diag.List
	doc := Read([]byte(input), "bus.cfg", ReadOptions{}, &diags)
	if diags.Warnings() != 1 {
		t.Errorf("warnings = %d, want 1", diags.Warnings())
	}
	matl := doc.LODs[0].Meshes[0].Material("a.bmp")
	if matl == nil || matl.Alpha != nil {
		t.Errorf("alpha leaked into the previous material: %+v", matl)
	}
}

func TestRead_InteriorLightColorNormalized(t *testing.T) {
	input := strings.Join([]string{
		"[mesh]",
		"cabin.o3d",
		"",
		"[interiorlight]",
		"light_var",
		"4.5",
		"255",
		"127.5",
		"0",
		"1", "2", "3",
	}, "\r\n")

	doc := Read([]byte(input), "bus.cfg", ReadOptions{}, nil)
	lights := doc.LODs[0].Meshes[0].Lights
	if len(lights) != 1 {
		t.Fatalf("got %d lights, want 1", len(lights))
	}
	l := lights[0]
	if l.Variable != "light_var" || l.Range != 4.5 {
		t.Errorf("light = %+v", l)
	}
	if l.Color != [3]float32{1, 0.5, 0} {
		t.Errorf("Color = %v, want normalized 0-1", l.Color)
	}
	if l.Position != [3]float32{1, 2, 3} {
		t.Errorf("Position = %v", l.Position)
	}
}

func TestRead_UnrecognizedSectionsKeepScope(t *testing.T) {
	input := strings.Join([]string{
		"[docscope_custom]",
		"x",
		"",
		"[LOD]",
		"300",
		"",
		"[lodscope_custom]",
		"w",
		"",
		"[mesh]",
		"body.o3d",
		"",
		"[meshscope_custom]",
		"y",
		"z",
		"",
		"[matl]",
		"bus.bmp",
		"0",
		"",
		"[matlscope_custom]",
	}, "\r\n")

	doc := Read([]byte(input), "bus.cfg", ReadOptions{}, nil)

	if len(doc.Unrecognized) != 1 || doc.Unrecognized[0].Tag != "[docscope_custom]" {
		t.Errorf("document unrecognized = %+v", doc.Unrecognized)
	}
	lod := doc.LODs[0]
	if len(lod.Unrecognized) != 1 || lod.Unrecognized[0].Tag != "[lodscope_custom]" {
		t.Errorf("lod unrecognized = %+v", lod.Unrecognized)
	}
	mesh := lod.Meshes[0]
	if len(mesh.Unrecognized) != 1 || !reflect.DeepEqual(mesh.Unrecognized[0].Params, []string{"y", "z"}) {
		t.Errorf("mesh unrecognized = %+v", mesh.Unrecognized)
	}
	if len(mesh.Materials[0].Unrecognized) != 1 {
		t.Errorf("material unrecognized = %+v", mesh.Materials[0].Unrecognized)
	}
}

func TestRead_ScoResolvesUnderModelFolder(t *testing.T) {
	doc := Read([]byte("[mesh]\r\nhouse.o3d\r\n"), filepath.Join("Sceneryobjects", "house.sco"), ReadOptions{}, nil)
	want := filepath.Join("Sceneryobjects", "model", "house.o3d")
	if doc.Files[0].FullPath != want {
		t.Errorf("FullPath = %q, want %q", doc.Files[0].FullPath, want)
	}
}

func TestRead_Windows1252Default(t *testing.T) {
	// "straße" with 0xDF, invalid as UTF-8.
	input := append([]byte("[friendlyname]\r\nstra"), 0xDF)
	input = append(input, []byte("e\r\n")...)

	doc := Read(input, "bus.cfg", ReadOptions{}, nil)
	if doc.FriendlyName != "straße" {
		t.Errorf("FriendlyName = %q, want straße", doc.FriendlyName)
	}
}

func TestWrite_Fixpoint(t *testing.T) {
	input := strings.Join([]string{
		"[groups]",
		"1",
		"bus",
		"",
		"[friendlyname]",
		"Test Bus",
		"",
		"[LOD]",
		"1",
		"",
		"[mesh]",
		"body.o3d",
		"",
		"[matl]",
		"bus.bmp",
		"0",
		"",
		"[matl_alpha]",
		"1",
		"",
		"[matl_envmap]",
		"envmap.bmp",
		"0.5",
		"",
		"[custom_thing]",
		"keepme",
	}, "\r\n")

	doc := Read([]byte(input), "bus.cfg", ReadOptions{}, nil)
	first := Write(doc)
	second := Write(Read(first, "bus.cfg", ReadOptions{}, nil))
	if !bytes.Equal(first, second) {
		t.Errorf("write->read->write is not stable:\n%q\n%q", first, second)
	}
	if !bytes.Contains(first, []byte("[custom_thing]\r\nkeepme\r\n")) {
		t.Errorf("unrecognized section lost:\n%q", first)
	}
}

func TestReadGeneric(t *testing.T) {
	input := strings.Join([]string{
		"ignored preamble",
		"[object]",
		"0",
		"path\\a.sco",
		"",
		"[object]",
		"1",
		"path\\b.sco",
		"",
		"[worldcoordinates]",
	}, "\r\n")

	f := ReadGeneric([]byte(input), "tile.map", ReadOptions{})
	objs := f.Get("[object]")
	if len(objs) != 2 || objs[1][1] != "path\\b.sco" {
		t.Fatalf("Get([object]) = %+v", objs)
	}
	if !f.Has("[worldcoordinates]") || f.Has("[missing]") {
		t.Error("Has misreported section presence")
	}
}

func TestIsHeader(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"[mesh]", true},
		{"[LOD]", true},
		{"mesh", false},
		{"[mesh] trailing", false},
		{"[]", false},
		{"[a]b]", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isHeader(tt.line); got != tt.want {
			t.Errorf("isHeader(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
