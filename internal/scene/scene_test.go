package scene

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/heightmesh/internal/terrain"
)

func writeImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surface.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func noiseImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8((x*53 + y*97 + x*y*13) % 256)
			img.Set(x, y, color.RGBA{R: v, G: 255 - v, B: uint8(x * 8), A: 255})
		}
	}
	return img
}

func TestBuild_FlatGray(t *testing.T) {
	path := writeImage(t, uniformImage(4, 4, color.Gray{Y: 128}))

	sc, err := Build(path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "surface", sc.Name)
	assert.Len(t, sc.Surface.Points, 4)
	assert.Len(t, sc.Surface.Triangles, 2)
	for i, a := range sc.Opacity {
		assert.Equal(t, 1.0, a, "opacity %d", i)
	}
	for _, p := range sc.Surface.Points {
		assert.InDelta(t, -32, p.Z, 0.25)
	}

	// Bounds are x in [0,1], y in [1,2].
	focal := sc.Camera.FocalPoint
	assert.InDelta(t, 0.5, focal.X, 1e-9)
	assert.InDelta(t, 1.5, focal.Y, 1e-9)

	d := (math.Sqrt2 / 2) / math.Sin(15*math.Pi/180)
	assert.InDelta(t, 0.65*d, sc.Camera.Distance(), 1e-9)
	assert.Less(t, sc.Camera.Position.Y, focal.Y, "tilt should swing the camera toward -Y")
	assert.Greater(t, sc.Camera.Position.Z, focal.Z)
	assert.Equal(t, 30.0, sc.Camera.ViewAngle)

	assert.Equal(t, DefaultOptions().Display, sc.Display)
	require.Len(t, sc.Labels, 1)
	assert.Equal(t, "🐾", sc.Labels[0].Text)
	assert.Equal(t, "upper_left", sc.Labels[0].Position)
}

func TestBuild_TextureKeepsFullImage(t *testing.T) {
	path := writeImage(t, noiseImage(20, 14))

	sc, err := Build(path, DefaultOptions())
	require.NoError(t, err)

	w, h := sc.Texture.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 14, h)
	assert.Len(t, sc.Surface.Points, 10*7)
	assert.Len(t, sc.Surface.Triangles, 2*9*6)

	require.Len(t, sc.Texture.UV, len(sc.Surface.Points))
	for _, uv := range sc.Texture.UV {
		assert.True(t, uv[0] >= 0 && uv[0] <= 1, "u %f out of range", uv[0])
		assert.True(t, uv[1] >= 0 && uv[1] <= 1, "v %f out of range", uv[1])
	}
	for _, a := range sc.Opacity {
		assert.True(t, a >= 0 && a <= 1, "opacity %f out of range", a)
	}
}

func TestBuild_TooSmall(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	img.Set(1, 1, color.RGBA{R: 40, A: 255})
	path := writeImage(t, img)

	_, err := Build(path, DefaultOptions())
	assert.ErrorIs(t, err, terrain.ErrDegenerateMesh)
}

func TestBuild_MissingFile(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope.png"), DefaultOptions())
	assert.Error(t, err)
}

func TestBuild_Deterministic(t *testing.T) {
	path := writeImage(t, noiseImage(16, 16))

	a, err := Build(path, DefaultOptions())
	require.NoError(t, err)
	b, err := Build(path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Surface, b.Surface)
	assert.Equal(t, a.Opacity, b.Opacity)
	assert.Equal(t, a.Camera, b.Camera)
	assert.Equal(t, a.VertexBuffer(), b.VertexBuffer())
}

func TestBuild_NoLabel(t *testing.T) {
	path := writeImage(t, noiseImage(8, 8))
	opts := DefaultOptions()
	opts.Label.Text = ""

	sc, err := Build(path, opts)
	require.NoError(t, err)
	assert.Empty(t, sc.Labels)
}

func triangleSurface() *terrain.Surface {
	return &terrain.Surface{
		Points:    []r3.Vec{{X: 0, Y: 0, Z: -1}, {X: 1, Y: 0, Z: -2}, {X: 0, Y: 1, Z: -3}},
		Triangles: [][3]uint32{{0, 1, 2}},
		UV:        [][2]float64{{0, 0}, {1, 0}, {0, 1}},
	}
}

func TestBindTexture(t *testing.T) {
	img := uniformImage(3, 3, color.White)
	s := triangleSurface()

	tex, err := BindTexture(img, s)
	require.NoError(t, err)
	assert.Equal(t, s.UV, tex.UV)

	_, err = BindTexture(nil, s)
	assert.ErrorIs(t, err, ErrTextureBind)

	noUV := triangleSurface()
	noUV.UV = nil
	_, err = BindTexture(img, noUV)
	assert.ErrorIs(t, err, ErrTextureBind)

	short := triangleSurface()
	short.UV = short.UV[:2]
	_, err = BindTexture(img, short)
	assert.ErrorIs(t, err, ErrTextureBind)
}

func TestCompose_Mismatch(t *testing.T) {
	s := triangleSurface()
	tex, err := BindTexture(uniformImage(2, 2, color.White), s)
	require.NoError(t, err)

	_, err = Compose(s, tex, []float64{1, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrSceneMismatch)

	_, err = Compose(nil, tex, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrSceneMismatch)

	_, err = Compose(s, nil, []float64{1, 1, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrTextureBind)
}

func TestScene_Buffers(t *testing.T) {
	s := triangleSurface()
	tex, err := BindTexture(uniformImage(2, 2, color.White), s)
	require.NoError(t, err)

	sc, err := Compose(s, tex, []float64{0, 0.5, 1}, DefaultOptions())
	require.NoError(t, err)

	want := []float32{
		0, 0, -1, 0, 0, 0,
		1, 0, -2, 1, 0, 0.5,
		0, 1, -3, 0, 1, 1,
	}
	assert.Equal(t, want, sc.VertexBuffer())
	assert.Len(t, sc.VertexBuffer(), len(s.Points)*FloatsPerVertex)
	assert.Equal(t, []uint32{0, 1, 2}, sc.IndexBuffer())
}

func TestDisplay_Aspect(t *testing.T) {
	assert.InDelta(t, 400.0/350.0, float64(DefaultOptions().Display.Aspect()), 1e-6)
	assert.Equal(t, float32(1), Display{Width: 10}.Aspect())
}
