// Package luminance loads raster images and samples them into height fields.
package luminance

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/Faultbox/heightmesh/internal/logger"
	"github.com/Faultbox/heightmesh/internal/terrain"
)

// Sampling errors.
var (
	ErrImageLoad     = errors.New("image load failed")
	ErrInvalidParams = errors.New("invalid sampling parameters")
)

// Resample kernel names accepted by Params.Resample.
const (
	ResampleBox        = "box"
	ResampleBilinear   = "bilinear"
	ResampleCatmullRom = "catmullrom"
)

// boxKernel averages every source pixel under the destination footprint.
var boxKernel = &draw.Kernel{
	Support: 0.5,
	At:      func(t float64) float64 { return 1 },
}

// Params controls height field sampling.
type Params struct {
	// HeightScale multiplies 8-bit luminance (0-255); heights are -HeightScale*L.
	HeightScale float64
	// Downsample is the fraction of the source width and height kept.
	Downsample float64
	Resample   string
}

// DefaultParams halves the image with a box filter and scales luminance by 0.25.
func DefaultParams() Params {
	return Params{
		HeightScale: 0.25,
		Downsample:  0.5,
		Resample:    ResampleBox,
	}
}

// Validate reports whether the parameters can be sampled with.
func (p Params) Validate() error {
	if p.HeightScale <= 0 {
		return fmt.Errorf("%w: height scale %g must be positive", ErrInvalidParams, p.HeightScale)
	}
	if p.Downsample <= 0 || p.Downsample > 1 {
		return fmt.Errorf("%w: downsample %g not in (0,1]", ErrInvalidParams, p.Downsample)
	}
	if _, err := kernelFor(p.Resample); err != nil {
		return err
	}
	return nil
}

// Sampler loads images from disk and samples them with fixed parameters.
type Sampler struct {
	Params Params
}

// NewSampler creates a sampler with the given parameters.
func NewSampler(params Params) *Sampler {
	return &Sampler{Params: params}
}

// Load decodes the image at path and returns it with its height field.
func (s *Sampler) Load(path string) (image.Image, *terrain.HeightField, error) {
	img, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	hf, err := Sample(img, s.Params)
	if err != nil {
		return nil, nil, err
	}
	return img, hf, nil
}

// Load reads and decodes the image file at path.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageLoad, path, err)
	}

	var (
		img    image.Image
		format string
	)
	switch {
	case strings.EqualFold(filepath.Ext(path), ".tga"):
		format = "tga"
		img, err = decodeTGA(data)
	case kind == filetype.Unknown || !filetype.IsImage(data):
		return nil, fmt.Errorf("%w: %s: not an image (%s)", ErrImageLoad, path, describe(kind.MIME.Value))
	default:
		img, format, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decoding %s: %w", ErrImageLoad, path, format, err)
	}

	b := img.Bounds()
	logger.Debug("image loaded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)
	return img, nil
}

// Grayscale converts img to 8-bit luminance using ITU-R 601 weights.
// Alpha is ignored: a transparent pixel keeps the luminance of its colour.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: Luminance(img.At(x, y))})
		}
	}
	return gray
}

// Sample builds a height field from img: grayscale, resize, then scale.
// The result has floor(W*Downsample) x floor(H*Downsample) cells.
func Sample(img image.Image, params Params) (*terrain.HeightField, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrImageLoad)
	}

	gray := Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	cols := int(float64(w) * params.Downsample)
	rows := int(float64(h) * params.Downsample)

	hf := terrain.NewHeightField(cols, rows)
	if cols == 0 || rows == 0 {
		return hf, nil
	}

	small := gray
	if cols != w || rows != h {
		kernel, _ := kernelFor(params.Resample)
		small = image.NewGray(image.Rect(0, 0, cols, rows))
		kernel.Scale(small, small.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	}

	for row := range rows {
		for col := range cols {
			l := small.GrayAt(col, row).Y
			hf.Set(col, row, -params.HeightScale*float64(l))
		}
	}

	logger.Debug("height field sampled",
		zap.Int("cols", cols),
		zap.Int("rows", rows),
		zap.String("kernel", params.Resample),
	)
	return hf, nil
}

// Luminance returns the 8-bit luminance of c's un-premultiplied colour.
func Luminance(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	r, g, b := uint32(n.R)*0x101, uint32(n.G)*0x101, uint32(n.B)*0x101
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}

func kernelFor(name string) (*draw.Kernel, error) {
	switch name {
	case ResampleBox, "":
		return boxKernel, nil
	case ResampleBilinear:
		return draw.BiLinear, nil
	case ResampleCatmullRom:
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("%w: unknown resample kernel %q", ErrInvalidParams, name)
}

func describe(mime string) string {
	if mime == "" {
		return "unknown type"
	}
	return mime
}
