package terrain

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/heightmesh/internal/logger"
)

// MeshParams controls surface construction.
type MeshParams struct {
	Smooth SmoothParams
}

// DefaultMeshParams returns the parameters used by the reference terrain look.
func DefaultMeshParams() MeshParams {
	return MeshParams{Smooth: DefaultSmoothParams()}
}

// BuildSurface runs the full mesher: grid, triangulation, surface extraction,
// smoothing, a second extraction and planar UV projection.
func BuildSurface(hf *HeightField, params MeshParams) (*Surface, error) {
	grid, err := BuildGrid(hf)
	if err != nil {
		return nil, err
	}

	surface := ExtractSurface(grid)
	surface = Smooth(surface, params.Smooth)
	surface = ExtractSurface(surface)
	ProjectUV(surface)

	logger.Debug("surface built",
		zap.Int("cols", hf.Cols),
		zap.Int("rows", hf.Rows),
		zap.Int("points", len(surface.Points)),
		zap.Int("triangles", len(surface.Triangles)),
	)

	return surface, nil
}

// BuildGrid creates the unsmoothed triangulated grid for a height field.
// Point (col, row) sits at x=col, y=Rows-row so the first row is the top edge.
// Each quad is split along the top-left to bottom-right diagonal and both
// triangles wind counter-clockwise seen from +Z.
func BuildGrid(hf *HeightField) (*Surface, error) {
	if hf == nil || hf.Cols < 2 || hf.Rows < 2 {
		cols, rows := 0, 0
		if hf != nil {
			cols, rows = hf.Cols, hf.Rows
		}
		return nil, fmt.Errorf("%w: %dx%d cells", ErrDegenerateMesh, cols, rows)
	}
	if len(hf.Z) != hf.Cols*hf.Rows {
		return nil, fmt.Errorf("%w: %d heights for %dx%d cells", ErrDegenerateMesh, len(hf.Z), hf.Cols, hf.Rows)
	}

	points := make([]r3.Vec, 0, hf.Cols*hf.Rows)
	for row := range hf.Rows {
		y := float64(hf.Rows - row)
		for col := range hf.Cols {
			points = append(points, r3.Vec{X: float64(col), Y: y, Z: hf.At(col, row)})
		}
	}

	quads := (hf.Cols - 1) * (hf.Rows - 1)
	triangles := make([][3]uint32, 0, quads*2)
	for row := range hf.Rows - 1 {
		for col := range hf.Cols - 1 {
			v00 := uint32(row*hf.Cols + col)
			v01 := v00 + 1
			v10 := v00 + uint32(hf.Cols)
			v11 := v10 + 1
			triangles = append(triangles,
				[3]uint32{v00, v10, v11},
				[3]uint32{v00, v11, v01},
			)
		}
	}

	return &Surface{
		Points:    points,
		Triangles: triangles,
		Cols:      hf.Cols,
		Rows:      hf.Rows,
	}, nil
}

// ExtractSurface returns the pure triangle surface of s: degenerate and
// duplicate triangles are dropped and unreferenced points are removed.
// Surviving points keep their relative order. UVs are carried along.
func ExtractSurface(s *Surface) *Surface {
	seen := make(map[[3]uint32]struct{}, len(s.Triangles))
	used := make([]bool, len(s.Points))
	kept := make([][3]uint32, 0, len(s.Triangles))

	for _, tri := range s.Triangles {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			continue
		}
		if int(tri[0]) >= len(s.Points) || int(tri[1]) >= len(s.Points) || int(tri[2]) >= len(s.Points) {
			continue
		}
		key := tri
		sort.Slice(key[:], func(i, j int) bool { return key[i] < key[j] })
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, tri)
		used[tri[0]], used[tri[1]], used[tri[2]] = true, true, true
	}

	remap := make([]uint32, len(s.Points))
	out := &Surface{
		Points: make([]r3.Vec, 0, len(s.Points)),
		Cols:   s.Cols,
		Rows:   s.Rows,
	}
	if s.UV != nil {
		out.UV = make([][2]float64, 0, len(s.UV))
	}
	for i, p := range s.Points {
		if !used[i] {
			continue
		}
		remap[i] = uint32(len(out.Points))
		out.Points = append(out.Points, p)
		if s.UV != nil {
			out.UV = append(out.UV, s.UV[i])
		}
	}

	out.Triangles = make([][3]uint32, len(kept))
	for i, tri := range kept {
		out.Triangles[i] = [3]uint32{remap[tri[0]], remap[tri[1]], remap[tri[2]]}
	}
	return out
}

// ProjectUV assigns planar texture coordinates by normalising each point's
// X and Y into [0,1] over the surface's own bounds. An axis with no extent maps to 0.
func ProjectUV(s *Surface) {
	b := s.Bounds()
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y

	s.UV = make([][2]float64, len(s.Points))
	for i, p := range s.Points {
		var u, v float64
		if dx > 0 {
			u = clamp01((p.X - b.Min.X) / dx)
		}
		if dy > 0 {
			v = clamp01((p.Y - b.Min.Y) / dy)
		}
		s.UV[i] = [2]float64{u, v}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
