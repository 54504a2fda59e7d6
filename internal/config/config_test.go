package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/o3dtools/o3dkit/pkg/encoding"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Paths.InstallRoot != "." {
		t.Errorf("expected install root '.', got %s", cfg.Paths.InstallRoot)
	}

	// Test import defaults
	if cfg.Import.TessDist != 6 {
		t.Errorf("expected tess_dist 6, got %f", cfg.Import.TessDist)
	}
	if cfg.Import.CurveSag != 0.1 {
		t.Errorf("expected curve_sag 0.1, got %f", cfg.Import.CurveSag)
	}
	if cfg.Import.LoadRadius != 2 {
		t.Errorf("expected load_radius 2, got %f", cfg.Import.LoadRadius)
	}
	if !cfg.Import.InvertWinding {
		t.Error("expected invert_winding to be true by default")
	}

	// Test text defaults
	if cfg.Text.Encoding != "windows-1252" {
		t.Errorf("expected encoding 'windows-1252', got %s", cfg.Text.Encoding)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestEncodingName(t *testing.T) {
	cfg := Default()
	if cfg.EncodingName() != encoding.Windows1252 {
		t.Errorf("expected windows-1252, got %s", cfg.EncodingName())
	}

	cfg.Text.Encoding = "UTF-8"
	if cfg.EncodingName() != encoding.UTF8 {
		t.Errorf("expected utf-8, got %s", cfg.EncodingName())
	}

	cfg.Text.Encoding = "something-else"
	if cfg.EncodingName() != encoding.Windows1252 {
		t.Error("unknown encodings should fall back to windows-1252")
	}
}

func TestSaveToAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Paths.InstallRoot = "/srv/omsi"
	cfg.Import.TessDist = 2.5
	cfg.Logging.Level = "debug"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}
	if loaded.Paths.InstallRoot != "/srv/omsi" {
		t.Errorf("install root not round-tripped: %s", loaded.Paths.InstallRoot)
	}
	if loaded.Import.TessDist != 2.5 {
		t.Errorf("tess_dist not round-tripped: %f", loaded.Import.TessDist)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("log level not round-tripped: %s", loaded.Logging.Level)
	}

	// Values absent from the file keep their defaults.
	if loaded.Import.CurveSag != 0.1 {
		t.Errorf("curve_sag default lost: %f", loaded.Import.CurveSag)
	}
}
