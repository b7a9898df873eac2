package terrain

import (
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/heightmesh/internal/logger"
)

// SmoothParams configures Laplacian smoothing.
type SmoothParams struct {
	Iterations int
	Relaxation float64
	// Convergence stops iterating once the largest displacement drops to
	// Convergence times the bounding box diagonal.
	Convergence float64
	// EdgeAngle is the largest turn, in degrees, a boundary vertex may have
	// and still slide along the boundary. Sharper boundary vertices are fixed.
	EdgeAngle         float64
	BoundarySmoothing bool
}

// DefaultSmoothParams returns 20 passes at relaxation 0.01 with boundary
// smoothing below a 15 degree edge angle.
func DefaultSmoothParams() SmoothParams {
	return SmoothParams{
		Iterations:        20,
		Relaxation:        0.01,
		Convergence:       0,
		EdgeAngle:         15,
		BoundarySmoothing: true,
	}
}

type vertexKind uint8

const (
	vertexInterior vertexKind = iota
	vertexBoundary
	vertexFixed
)

// Smooth returns a copy of s with every movable point relaxed toward the
// average of its neighbours. Topology is unchanged.
func Smooth(s *Surface, params SmoothParams) *Surface {
	out := s.Clone()
	if params.Iterations <= 0 || params.Relaxation == 0 || len(out.Points) == 0 {
		return out
	}

	neighbors := buildNeighbors(out, params)

	b := out.Bounds()
	conv := params.Convergence * r3.Norm(r3.Sub(b.Max, b.Min))

	cur := out.Points
	next := make([]r3.Vec, len(cur))
	iter := 0
	for iter < params.Iterations {
		maxDisp := 0.0
		for i, p := range cur {
			ring := neighbors[i]
			if len(ring) == 0 {
				next[i] = p
				continue
			}
			var sum r3.Vec
			for _, n := range ring {
				sum = r3.Add(sum, cur[n])
			}
			k := float64(len(ring))
			mean := r3.Vec{X: sum.X / k, Y: sum.Y / k, Z: sum.Z / k}

			delta := r3.Scale(params.Relaxation, r3.Sub(mean, p))
			next[i] = r3.Add(p, delta)
			maxDisp = math.Max(maxDisp, r3.Norm(delta))
		}
		cur, next = next, cur
		iter++
		if maxDisp <= conv {
			break
		}
	}
	out.Points = cur

	logger.Debug("surface smoothed",
		zap.Int("iterations", iter),
		zap.Float64("relaxation", params.Relaxation),
	)
	return out
}

// buildNeighbors returns, for each point, the points it is averaged with.
// Fixed points get an empty ring.
func buildNeighbors(s *Surface, params SmoothParams) [][]uint32 {
	type edge [2]uint32
	mkEdge := func(a, b uint32) edge {
		if a > b {
			a, b = b, a
		}
		return edge{a, b}
	}

	edgeUse := make(map[edge]int, len(s.Triangles)*3/2)
	for _, tri := range s.Triangles {
		edgeUse[mkEdge(tri[0], tri[1])]++
		edgeUse[mkEdge(tri[1], tri[2])]++
		edgeUse[mkEdge(tri[2], tri[0])]++
	}

	ring := make([][]uint32, len(s.Points))
	boundary := make([][]uint32, len(s.Points))
	kind := make([]vertexKind, len(s.Points))
	for e, uses := range edgeUse {
		a, b := e[0], e[1]
		ring[a] = append(ring[a], b)
		ring[b] = append(ring[b], a)
		switch {
		case uses == 1:
			boundary[a] = append(boundary[a], b)
			boundary[b] = append(boundary[b], a)
		case uses > 2:
			kind[a], kind[b] = vertexFixed, vertexFixed
		}
	}

	cosLimit := math.Cos(params.EdgeAngle * math.Pi / 180)
	for i := range ring {
		slices.Sort(ring[i])
		slices.Sort(boundary[i])
		if kind[i] == vertexFixed {
			ring[i] = nil
			continue
		}
		if len(boundary[i]) == 0 {
			kind[i] = vertexInterior
			continue
		}
		kind[i] = vertexFixed
		if params.BoundarySmoothing && len(boundary[i]) == 2 {
			p := s.Points[i]
			in := r3.Unit(r3.Sub(p, s.Points[boundary[i][0]]))
			out := r3.Unit(r3.Sub(s.Points[boundary[i][1]], p))
			if r3.Dot(in, out) >= cosLimit {
				kind[i] = vertexBoundary
			}
		}
		switch kind[i] {
		case vertexBoundary:
			ring[i] = boundary[i]
		default:
			ring[i] = nil
		}
	}
	return ring
}
