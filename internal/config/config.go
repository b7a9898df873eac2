// Package config handles pipeline configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/heightmesh/internal/camera"
	"github.com/Faultbox/heightmesh/internal/luminance"
	"github.com/Faultbox/heightmesh/internal/scene"
	"github.com/Faultbox/heightmesh/internal/terrain"
)

// Config holds all settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Opacity OpacityConfig `yaml:"opacity"`
	Camera  CameraConfig  `yaml:"camera"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds height field sampling and smoothing settings.
type MeshConfig struct {
	HeightScale       float64 `yaml:"height_scale"` // height = -height_scale * luminance(0-255)
	Downsample        float64 `yaml:"downsample"`
	Resample          string  `yaml:"resample"` // box, bilinear, catmullrom
	SmoothIterations  int     `yaml:"smooth_iterations"`
	Relaxation        float64 `yaml:"relaxation"`
	Convergence       float64 `yaml:"convergence"`
	EdgeAngle         float64 `yaml:"edge_angle"` // degrees
	BoundarySmoothing bool    `yaml:"boundary_smoothing"`
}

// OpacityConfig holds the elevation fade settings.
type OpacityConfig struct {
	UpperBound float64 `yaml:"upper_bound"`
}

// CameraConfig holds the default camera framing.
type CameraConfig struct {
	Tilt      float64 `yaml:"tilt"`       // degrees
	PullIn    float64 `yaml:"pull_in"`    // 0..1
	ViewAngle float64 `yaml:"view_angle"` // degrees
}

// DisplayConfig holds presentation constants passed through to the renderer.
type DisplayConfig struct {
	Name          string `yaml:"name"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Background    string `yaml:"background"`
	Label         string `yaml:"label"`
	ShowScalarBar bool   `yaml:"show_scalar_bar"`
	// Embedded is for the presentation layer only; the pipeline ignores it.
	Embedded bool `yaml:"embedded"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config matching scene.DefaultOptions.
func Default() *Config {
	def := scene.DefaultOptions()
	return &Config{
		Mesh: MeshConfig{
			HeightScale:       def.Sampling.HeightScale,
			Downsample:        def.Sampling.Downsample,
			Resample:          def.Sampling.Resample,
			SmoothIterations:  def.Mesh.Smooth.Iterations,
			Relaxation:        def.Mesh.Smooth.Relaxation,
			Convergence:       def.Mesh.Smooth.Convergence,
			EdgeAngle:         def.Mesh.Smooth.EdgeAngle,
			BoundarySmoothing: def.Mesh.Smooth.BoundarySmoothing,
		},
		Opacity: OpacityConfig{
			UpperBound: def.UpperBound,
		},
		Camera: CameraConfig{
			Tilt:      def.Camera.Tilt,
			PullIn:    def.Camera.PullIn,
			ViewAngle: def.Camera.ViewAngle,
		},
		Display: DisplayConfig{
			Name:       def.Name,
			Width:      def.Display.Width,
			Height:     def.Display.Height,
			Background: scene.FormatHexColor(def.Display.Background),
			Label:      def.Label.Text,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options converts the config into pipeline options.
func (c *Config) Options() (scene.Options, error) {
	bg, err := scene.ParseHexColor(c.Display.Background)
	if err != nil {
		return scene.Options{}, fmt.Errorf("display.background: %w", err)
	}

	opts := scene.DefaultOptions()
	opts.Name = c.Display.Name
	opts.Sampling = luminance.Params{
		HeightScale: c.Mesh.HeightScale,
		Downsample:  c.Mesh.Downsample,
		Resample:    c.Mesh.Resample,
	}
	if err := opts.Sampling.Validate(); err != nil {
		return scene.Options{}, fmt.Errorf("mesh: %w", err)
	}
	opts.Mesh = terrain.MeshParams{
		Smooth: terrain.SmoothParams{
			Iterations:        c.Mesh.SmoothIterations,
			Relaxation:        c.Mesh.Relaxation,
			Convergence:       c.Mesh.Convergence,
			EdgeAngle:         c.Mesh.EdgeAngle,
			BoundarySmoothing: c.Mesh.BoundarySmoothing,
		},
	}
	opts.UpperBound = c.Opacity.UpperBound
	opts.Camera = camera.Params{
		Tilt:      c.Camera.Tilt,
		PullIn:    c.Camera.PullIn,
		ViewAngle: c.Camera.ViewAngle,
	}
	if opts.Camera.ViewAngle <= 0 || opts.Camera.ViewAngle >= 180 {
		return scene.Options{}, fmt.Errorf("camera.view_angle %g not in (0,180)", opts.Camera.ViewAngle)
	}
	opts.Display = scene.Display{
		Width:         c.Display.Width,
		Height:        c.Display.Height,
		Background:    bg,
		ShowScalarBar: c.Display.ShowScalarBar,
	}
	opts.Label.Text = c.Display.Label
	return opts, nil
}
