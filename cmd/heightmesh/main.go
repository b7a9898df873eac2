// heightmesh turns images into textured elevation surfaces and reports on them.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/heightmesh/internal/config"
	"github.com/Faultbox/heightmesh/internal/logger"
	"github.com/Faultbox/heightmesh/internal/scene"
	"github.com/Faultbox/heightmesh/internal/scenecache"
	"github.com/Faultbox/heightmesh/pkg/math"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	status := run(cfg, config.Args())
	logger.Sync()
	os.Exit(status)
}

func run(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		return cmdInfo(cfg, args)
	case "config":
		return cmdConfig(cfg, args)
	case "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`heightmesh - image to elevation surface generator

Usage:
  heightmesh [flags] <command> [options]

Commands:
  info <image>...      Build the surface for each image and print a summary
  config [-save]       Print the effective configuration (optionally save it)

Flags:
  -config <path>       Config file
  -debug               Debug logging
  -height-scale <f>    Height per unit of luminance
  -downsample <f>      Fraction of image size kept
  -tilt <deg>          Camera elevation tilt
  -width, -height      Canvas size
  -embedded            Omit the info banner

Examples:
  heightmesh info terrain.png
  heightmesh -downsample 0.25 -tilt -20 info terrain.png
  heightmesh config -save`)
}

func cmdInfo(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: heightmesh info <image>...")
		return 1
	}

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cache := scenecache.New(opts)

	if !cfg.Display.Embedded {
		fmt.Println("=== heightmesh ===")
		fmt.Println()
	}

	status := 0
	for _, path := range args {
		sc, err := cache.Get(path)
		if err != nil {
			logger.Error("build failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			status = 1
			continue
		}
		printScene(path, sc)
	}

	hits, misses := cache.Stats()
	logger.Debug("scene cache", zap.Int("hits", hits), zap.Int("misses", misses), zap.Int("entries", cache.Len()))
	return status
}

func printScene(path string, sc *scene.Scene) {
	b := sc.Surface.Bounds()
	lo, hi := 1.0, 0.0
	for _, a := range sc.Opacity {
		lo = min(lo, a)
		hi = max(hi, a)
	}
	tw, th := sc.Texture.Size()
	cam := sc.Camera

	fmt.Printf("Image:     %s (%dx%d)\n", path, tw, th)
	fmt.Printf("Grid:      %dx%d\n", sc.Surface.Cols, sc.Surface.Rows)
	fmt.Printf("Points:    %d\n", len(sc.Surface.Points))
	fmt.Printf("Triangles: %d\n", len(sc.Surface.Triangles))
	fmt.Printf("Z range:   [%.3f, %.3f]\n", b.Min.Z, b.Max.Z)
	fmt.Printf("Opacity:   [%.3f, %.3f]\n", lo, hi)
	fmt.Printf("Buffers:   %d floats, %d indices\n", len(sc.VertexBuffer()), len(sc.IndexBuffer()))
	fmt.Println()
	fmt.Println("Camera:")
	fmt.Printf("  position  (%.3f, %.3f, %.3f)\n", cam.Position.X, cam.Position.Y, cam.Position.Z)
	fmt.Printf("  focal     (%.3f, %.3f, %.3f)\n", cam.FocalPoint.X, cam.FocalPoint.Y, cam.FocalPoint.Z)
	fmt.Printf("  view up   (%.3f, %.3f, %.3f)\n", cam.ViewUp.X, cam.ViewUp.Y, cam.ViewUp.Z)
	fmt.Printf("  angle     %.1f deg, distance %.3f\n", cam.ViewAngle, cam.Distance())

	near := float32(cam.Distance() / 100)
	far := float32(cam.Distance() * 10)
	mvp := cam.Projection(sc.Display.Aspect(), near, far).Mul(cam.ViewMatrix())
	focal := mvp.TransformPoint(math.FromR3(cam.FocalPoint))
	fmt.Printf("  focal NDC (%.3f, %.3f, %.3f)\n", focal.X, focal.Y, focal.Z)
	fmt.Println()
	fmt.Printf("Canvas:    %dx%d, background %s\n", sc.Display.Width, sc.Display.Height, scene.FormatHexColor(sc.Display.Background))
	for _, l := range sc.Labels {
		fmt.Printf("Label:     %q %s\n", l.Text, l.Position)
	}
	fmt.Println()
}

func cmdConfig(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Write the configuration to the user config directory")
	fs.Parse(args)

	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Print(string(data))

	if *save {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Saved to %s\n", config.ConfigDir())
	}
	return 0
}
