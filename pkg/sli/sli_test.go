package sli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
)

const roadProfile = `[profile]
0

[profilepnt]
-5.5
0
0
0.125

[profilepnt]
5.5
0
1
0.125

[profile]
1

[profilepnt]
5.5
0
0
0.25

[profilepnt]
7
0.15
1
0.25

[texture]
Street_1.bmp

[matl_alpha]
1

[texture]
Kerb_1.bmp

[patchwork_chain]
3
kerb_a.bmp
kerb_b.bmp
kerb_c.bmp
`

func TestParse_StripsAndMaterials(t *testing.T) {
	var diags diag.List
	p := Parse([]byte(roadProfile), "street.sli", Options{}, &diags)
	if diags.Warnings() != 0 {
		t.Fatalf("unexpected warnings: %v", diags.Records())
	}

	if len(p.Strips) != 2 {
		t.Fatalf("got %d strips, want 2", len(p.Strips))
	}
	if p.Strips[0].Material != 0 || p.Strips[1].Material != 1 {
		t.Errorf("strip slots = %d, %d", p.Strips[0].Material, p.Strips[1].Material)
	}
	road := p.Strips[0]
	if len(road.Points) != 2 {
		t.Fatalf("got %d road points, want 2", len(road.Points))
	}
	if road.Points[0] != (Point{X: -5.5, Z: 0, U: 0, VTiling: 0.125}) {
		t.Errorf("road point 0 = %+v", road.Points[0])
	}
	kerb := p.Strips[1]
	if kerb.Points[1] != (Point{X: 7, Z: 0.15, U: 1, VTiling: 0.25}) {
		t.Errorf("kerb point 1 = %+v", kerb.Points[1])
	}

	street := p.Material("Street_1.bmp")
	if street == nil || street.Alpha != 1 {
		t.Fatalf("street material = %+v", street)
	}
	kerbMatl := p.Material("KERB_1.BMP") // lookup is case-insensitive
	if kerbMatl == nil || kerbMatl.Patchwork == nil {
		t.Fatalf("kerb material = %+v", kerbMatl)
	}
	if kerbMatl.Patchwork.Repeat != 3 || kerbMatl.Patchwork.Chains[2] != "kerb_c.bmp" {
		t.Errorf("patchwork = %+v", kerbMatl.Patchwork)
	}
	if len(p.Order) != 2 || p.Order[0] != "street_1.bmp" {
		t.Errorf("Order = %v", p.Order)
	}
}

func TestParse_ScopeViolations(t *testing.T) {
	input := strings.Join([]string{
		"[profilepnt]", // no strip open
		"0", "0", "0", "1",
		"",
		"[matl_alpha]", // no texture open
		"1",
	}, "\r\n")

	var diags diag.List
	p := Parse([]byte(input), "street.sli", Options{}, &diags)
	if diags.Warnings() != 2 {
		t.Errorf("warnings = %d, want 2: %v", diags.Warnings(), diags.Records())
	}
	if len(p.Strips) != 0 || len(p.Materials) != 0 {
		t.Errorf("out-of-scope records must be dropped: %+v", p)
	}
}

func TestParse_TerrainMappingViaSidecar(t *testing.T) {
	finder := func(profilePath, texture string) *cfg.GenericFile {
		if texture == "Street_1.bmp" {
			return cfg.ReadGeneric([]byte("[terrainmapping]\r\n"), texture+".cfg", cfg.ReadOptions{})
		}
		return nil
	}

	p := Parse([]byte(roadProfile), "street.sli", Options{FindSidecar: finder}, nil)
	if !p.Material("Street_1.bmp").TerrainMapping {
		t.Error("terrain mapping flag not detected from sidecar config")
	}
	if p.Material("Kerb_1.bmp").TerrainMapping {
		t.Error("terrain mapping flag set without a sidecar")
	}
}

func TestLoad_MissingFileSubstitutesDefault(t *testing.T) {
	var diags diag.List
	p := Load(filepath.Join(t.TempDir(), "missing.sli"), Options{}, &diags)
	if diags.Warnings() != 1 {
		t.Fatalf("warnings = %d, want 1", diags.Warnings())
	}
	if len(p.Strips) != 1 || len(p.Strips[0].Points) != 2 {
		t.Fatalf("default profile = %+v", p)
	}
}

func TestLoad_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "street.sli")
	if err := os.WriteFile(path, []byte(roadProfile), 0644); err != nil {
		t.Fatal(err)
	}

	var diags diag.List
	p := Load(path, Options{}, &diags)
	if diags.Warnings() != 0 {
		t.Fatalf("unexpected warnings: %v", diags.Records())
	}
	if len(p.Strips) != 2 || len(p.Materials) != 2 {
		t.Errorf("profile = %d strips, %d materials", len(p.Strips), len(p.Materials))
	}
}
