// Package scene assembles textured elevation surfaces and their camera into
// renderer-ready scenes.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightmesh/internal/camera"
	"github.com/Faultbox/heightmesh/internal/logger"
	"github.com/Faultbox/heightmesh/internal/luminance"
	"github.com/Faultbox/heightmesh/internal/terrain"
)

// Scene errors.
var (
	ErrTextureBind   = errors.New("texture bind failed")
	ErrSceneMismatch = errors.New("scene attribute count mismatch")
)

// FloatsPerVertex is the stride of VertexBuffer: x, y, z, u, v, alpha.
const FloatsPerVertex = 6

// Display holds presentation constants handed to the renderer.
type Display struct {
	Width         int
	Height        int
	Background    color.RGBA
	ShowScalarBar bool
}

// Label is a text overlay drawn in a corner of the canvas.
type Label struct {
	Text     string
	Position string // "upper_left", "upper_right", "lower_left", "lower_right"
	Color    color.RGBA
	FontSize int
	Shadow   bool
}

// Options holds every constant of the pipeline. It is comparable so it can
// be part of a cache key.
type Options struct {
	Name       string
	Sampling   luminance.Params
	Mesh       terrain.MeshParams
	UpperBound float64 // opacity ramp reaches 1 at UpperBound*zmax
	Camera     camera.Params
	Display    Display
	Label      Label
}

// DefaultOptions returns the reference pipeline settings.
func DefaultOptions() Options {
	return Options{
		Name:       "surface",
		Sampling:   luminance.DefaultParams(),
		Mesh:       terrain.DefaultMeshParams(),
		UpperBound: 0.90,
		Camera:     camera.DefaultParams(),
		Display: Display{
			Width:      400,
			Height:     350,
			Background: color.RGBA{R: 0xef, G: 0xe4, B: 0xcf, A: 0xff},
		},
		Label: Label{
			Text:     "🐾",
			Position: "upper_left",
			Color:    color.RGBA{A: 0xff},
			FontSize: 18,
			Shadow:   true,
		},
	}
}

// Scene is everything the renderer needs to draw one elevation surface.
type Scene struct {
	Name    string
	Surface *terrain.Surface
	Texture *Texture
	Opacity []float64
	Camera  camera.Pose
	Display Display
	Labels  []Label
}

// Build runs the whole pipeline for the image at path.
func Build(path string, opts Options) (*Scene, error) {
	start := time.Now()

	img, hf, err := luminance.NewSampler(opts.Sampling).Load(path)
	if err != nil {
		return nil, err
	}

	surface, err := terrain.BuildSurface(hf, opts.Mesh)
	if err != nil {
		return nil, fmt.Errorf("meshing %s: %w", path, err)
	}

	opacity := terrain.OpacityRamp(surface, opts.UpperBound)

	tex, err := BindTexture(img, surface)
	if err != nil {
		return nil, err
	}

	sc, err := Compose(surface, tex, opacity, opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("scene built",
		zap.String("path", path),
		zap.Int("points", len(surface.Points)),
		zap.Int("triangles", len(surface.Triangles)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sc, nil
}

// Compose frames the camera on a decorated surface and assembles the scene.
// It performs no I/O.
func Compose(surface *terrain.Surface, tex *Texture, opacity []float64, opts Options) (*Scene, error) {
	if surface == nil {
		return nil, fmt.Errorf("%w: nil surface", ErrSceneMismatch)
	}
	if len(opacity) != len(surface.Points) {
		return nil, fmt.Errorf("%w: %d opacities for %d points", ErrSceneMismatch, len(opacity), len(surface.Points))
	}
	if tex == nil {
		return nil, fmt.Errorf("%w: surface is not textured", ErrTextureBind)
	}
	if len(tex.UV) != len(surface.Points) {
		return nil, fmt.Errorf("%w: %d UVs for %d points", ErrSceneMismatch, len(tex.UV), len(surface.Points))
	}

	sc := &Scene{
		Name:    opts.Name,
		Surface: surface,
		Texture: tex,
		Opacity: opacity,
		Camera:  camera.Frame(surface.Bounds(), opts.Camera),
		Display: opts.Display,
	}
	if opts.Label.Text != "" {
		sc.Labels = []Label{opts.Label}
	}
	return sc, nil
}

// VertexBuffer returns interleaved x, y, z, u, v, alpha per point.
func (s *Scene) VertexBuffer() []float32 {
	buf := make([]float32, 0, len(s.Surface.Points)*FloatsPerVertex)
	for i, p := range s.Surface.Points {
		uv := s.Texture.UV[i]
		buf = append(buf,
			float32(p.X), float32(p.Y), float32(p.Z),
			float32(uv[0]), float32(uv[1]),
			float32(s.Opacity[i]),
		)
	}
	return buf
}

// IndexBuffer returns the triangle list flattened for indexed drawing.
func (s *Scene) IndexBuffer() []uint32 {
	buf := make([]uint32, 0, len(s.Surface.Triangles)*3)
	for _, tri := range s.Surface.Triangles {
		buf = append(buf, tri[0], tri[1], tri[2])
	}
	return buf
}

// Aspect returns the canvas width over height.
func (d Display) Aspect() float32 {
	if d.Height == 0 {
		return 1
	}
	return float32(d.Width) / float32(d.Height)
}
