package scene

import (
	"fmt"
	"image"

	"github.com/Faultbox/heightmesh/internal/terrain"
)

// Texture binds the full-colour source image to a surface's UV coordinates.
// The image is not resampled; the renderer samples it at draw time.
type Texture struct {
	Image image.Image
	UV    [][2]float64
}

// BindTexture attaches img to s through its planar UVs.
func BindTexture(img image.Image, s *terrain.Surface) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no texture image", ErrTextureBind)
	}
	if s == nil || s.UV == nil {
		return nil, fmt.Errorf("%w: surface has no UV coordinates", ErrTextureBind)
	}
	if len(s.UV) != len(s.Points) {
		return nil, fmt.Errorf("%w: %d UVs for %d points", ErrTextureBind, len(s.UV), len(s.Points))
	}
	return &Texture{Image: img, UV: s.UV}, nil
}

// Size returns the texture image dimensions.
func (t *Texture) Size() (width, height int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}
