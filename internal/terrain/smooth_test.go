package terrain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSmooth_FlatFieldUnchanged(t *testing.T) {
	grid, err := BuildGrid(flatField(6, 5, -32))
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	out := Smooth(grid, DefaultSmoothParams())

	if diff := cmp.Diff(grid.Points, out.Points); diff != "" {
		t.Errorf("flat grid moved under smoothing (-want +got):\n%s", diff)
	}
}

func TestSmooth_CornersFixed(t *testing.T) {
	hf := rampField(8, 6)
	grid, err := BuildGrid(hf)
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	params := DefaultSmoothParams()
	params.Relaxation = 0.5
	out := Smooth(grid, params)

	corners := []int{0, hf.Cols - 1, (hf.Rows - 1) * hf.Cols, hf.Rows*hf.Cols - 1}
	for _, i := range corners {
		if out.Points[i] != grid.Points[i] {
			t.Errorf("corner %d moved: %v -> %v", i, grid.Points[i], out.Points[i])
		}
	}
}

func TestSmooth_BoundaryStaysOnEdge(t *testing.T) {
	hf := rampField(8, 6)
	grid, err := BuildGrid(hf)
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	params := DefaultSmoothParams()
	params.Relaxation = 0.3
	out := Smooth(grid, params)

	// Points on the top edge only ever average with top-edge neighbours.
	top := float64(hf.Rows)
	for col := range hf.Cols {
		if y := out.Points[col].Y; y != top {
			t.Errorf("top edge point %d left the edge: y = %f", col, y)
		}
	}
	// Left edge keeps x = 0.
	for row := range hf.Rows {
		if x := out.Points[row*hf.Cols].X; x != 0 {
			t.Errorf("left edge point row %d left the edge: x = %f", row, x)
		}
	}
}

func TestSmooth_NoBoundarySmoothing(t *testing.T) {
	hf := rampField(6, 6)
	grid, err := BuildGrid(hf)
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	params := DefaultSmoothParams()
	params.BoundarySmoothing = false
	params.Relaxation = 0.2
	out := Smooth(grid, params)

	for col := range hf.Cols {
		if out.Points[col] != grid.Points[col] {
			t.Errorf("boundary point %d moved with boundary smoothing off", col)
		}
	}
}

func TestSmooth_ReducesRoughness(t *testing.T) {
	// Single spike in the middle of a flat field.
	hf := flatField(7, 7, 0)
	hf.Set(3, 3, -60)
	grid, err := BuildGrid(hf)
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	out := Smooth(grid, DefaultSmoothParams())

	spike := 3*7 + 3
	if out.Points[spike].Z <= grid.Points[spike].Z {
		t.Errorf("spike not relaxed: %f -> %f", grid.Points[spike].Z, out.Points[spike].Z)
	}
	if out.Points[spike-1].Z >= 0 {
		t.Errorf("neighbour not pulled toward spike: z = %f", out.Points[spike-1].Z)
	}
}

func TestSmooth_DoesNotMutateInput(t *testing.T) {
	grid, err := BuildGrid(rampField(5, 5))
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	before := grid.Clone()

	Smooth(grid, DefaultSmoothParams())

	if diff := cmp.Diff(before, grid); diff != "" {
		t.Errorf("Smooth mutated its input:\n%s", diff)
	}
}

func TestSmooth_ZeroIterations(t *testing.T) {
	grid, err := BuildGrid(rampField(5, 5))
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	params := DefaultSmoothParams()
	params.Iterations = 0
	out := Smooth(grid, params)

	if diff := cmp.Diff(grid.Points, out.Points); diff != "" {
		t.Errorf("zero iterations moved points:\n%s", diff)
	}
}

func TestBuildNeighbors_NonManifoldFixed(t *testing.T) {
	// Three triangles share the edge 0-1.
	s := &Surface{
		Points: []r3.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0},
			{X: 0.5, Y: 1}, {X: 0.5, Y: -1}, {X: 0.5, Y: 0, Z: 1},
		},
		Triangles: [][3]uint32{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}},
	}

	ring := buildNeighbors(s, DefaultSmoothParams())

	if len(ring[0]) != 0 || len(ring[1]) != 0 {
		t.Errorf("non-manifold edge vertices should be fixed, got rings %v %v", ring[0], ring[1])
	}
	// The apexes only touch boundary edges whose turn is sharp.
	for i := 2; i < 5; i++ {
		if len(ring[i]) != 0 {
			t.Errorf("apex %d should be fixed, got ring %v", i, ring[i])
		}
	}
}
