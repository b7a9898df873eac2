package config

import (
	"flag"
	"math"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagHeightScale = flag.Float64("height-scale", 0, "Height per unit of luminance (0 keeps config value)")
	flagDownsample  = flag.Float64("downsample", 0, "Fraction of image size kept for the height field (0 keeps config value)")
	flagTilt        = flag.Float64("tilt", math.NaN(), "Camera elevation tilt in degrees (unset keeps config value)")
	flagWidth       = flag.Int("width", 0, "Canvas width")
	flagHeight      = flag.Int("height", 0, "Canvas height")
	flagEmbedded    = flag.Bool("embedded", false, "Output for embedding in a host page")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
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
	if *flagHeightScale > 0 {
		cfg.Mesh.HeightScale = *flagHeightScale
	}
	if *flagDownsample > 0 {
		cfg.Mesh.Downsample = *flagDownsample
	}
	if !math.IsNaN(*flagTilt) {
		cfg.Camera.Tilt = *flagTilt
	}
	if *flagWidth > 0 {
		cfg.Display.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Display.Height = *flagHeight
	}
	if *flagEmbedded {
		cfg.Display.Embedded = true
	}
}
