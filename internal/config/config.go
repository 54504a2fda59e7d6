// Package config handles tool configuration loading and management.
package config

import (
	"strings"

	"github.com/o3dtools/o3dkit/pkg/encoding"
)

// Config holds all tool settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Import  ImportConfig  `yaml:"import"`
	Text    TextConfig    `yaml:"text"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// InstallRoot is the installation directory all relative asset paths
	// resolve against.
	InstallRoot string `yaml:"install_root"`
}

// ImportConfig holds map and spline import settings.
type ImportConfig struct {
	TessDist      float32 `yaml:"tess_dist"`   // max chord length along a spline
	CurveSag      float32 `yaml:"curve_sag"`   // max chord-to-curve error
	LoadRadius    float32 `yaml:"load_radius"` // tile load radius around the centre tile
	InvertWinding bool    `yaml:"invert_winding"`
}

// TextConfig holds text decoding settings.
type TextConfig struct {
	// Encoding overrides the default Windows-1252 interpretation of config
	// files. Accepts "windows-1252" or "utf-8".
	Encoding string `yaml:"encoding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// EncodingName maps the configured text encoding to the parser constant.
func (c *Config) EncodingName() encoding.Name {
	if strings.EqualFold(c.Text.Encoding, "utf-8") {
		return encoding.UTF8
	}
	return encoding.Windows1252
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InstallRoot: ".",
		},
		Import: ImportConfig{
			TessDist:      6,
			CurveSag:      0.1,
			LoadRadius:    2,
			InvertWinding: true,
		},
		Text: TextConfig{
			Encoding: "windows-1252",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
