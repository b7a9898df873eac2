// Package terrain builds smoothed elevation surfaces from image height fields.
package terrain

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerateMesh is returned when a height field is too small to triangulate.
	ErrDegenerateMesh = errors.New("height field too small to triangulate")
)

// HeightField is a row-major grid of elevations.
// Row 0 corresponds to the top row of the source image.
type HeightField struct {
	Cols int
	Rows int
	Z    []float64 // len == Cols*Rows
}

// NewHeightField allocates a zeroed height field.
func NewHeightField(cols, rows int) *HeightField {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &HeightField{
		Cols: cols,
		Rows: rows,
		Z:    make([]float64, cols*rows),
	}
}

// At returns the elevation at (col, row).
func (hf *HeightField) At(col, row int) float64 {
	return hf.Z[row*hf.Cols+col]
}

// Set stores the elevation at (col, row).
func (hf *HeightField) Set(col, row int, z float64) {
	hf.Z[row*hf.Cols+col] = z
}

// Surface is a triangulated elevation mesh.
type Surface struct {
	Points    []r3.Vec
	Triangles [][3]uint32
	UV        [][2]float64 // nil until ProjectUV runs

	// Grid dimensions the surface was built from.
	Cols int
	Rows int
}

// Bounds returns the axis-aligned bounding box of all points.
func (s *Surface) Bounds() r3.Box {
	if len(s.Points) == 0 {
		return r3.Box{}
	}
	b := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, p := range s.Points {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Min.Z = math.Min(b.Min.Z, p.Z)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
		b.Max.Z = math.Max(b.Max.Z, p.Z)
	}
	return b
}

// Heights returns the Z coordinate of every point, in point order.
func (s *Surface) Heights() []float64 {
	zs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		zs[i] = p.Z
	}
	return zs
}

// Clone returns a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	c := &Surface{
		Points:    append([]r3.Vec(nil), s.Points...),
		Triangles: append([][3]uint32(nil), s.Triangles...),
		Cols:      s.Cols,
		Rows:      s.Rows,
	}
	if s.UV != nil {
		c.UV = append([][2]float64(nil), s.UV...)
	}
	return c
}
