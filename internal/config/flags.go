package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagRoot     = flag.String("root", "", "Installation root directory")
	flagTessDist = flag.Float64("tess-dist", 0, "Max spline chord length")
	flagCurveSag = flag.Float64("curve-sag", 0, "Max spline chord-to-curve error")
	flagRadius   = flag.Float64("radius", -1, "Tile load radius")
	flagEncoding = flag.String("encoding", "", "Text encoding of config files")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRoot != "" {
		cfg.Paths.InstallRoot = *flagRoot
	}
	if *flagTessDist > 0 {
		cfg.Import.TessDist = float32(*flagTessDist)
	}
	if *flagCurveSag > 0 {
		cfg.Import.CurveSag = float32(*flagCurveSag)
	}
	if *flagRadius >= 0 {
		cfg.Import.LoadRadius = float32(*flagRadius)
	}
	if *flagEncoding != "" {
		cfg.Text.Encoding = *flagEncoding
	}
}
