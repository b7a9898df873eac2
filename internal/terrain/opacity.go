package terrain

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// flatTolerance is the relative z-range below which a surface counts as flat.
const flatTolerance = 1e-9

// OpacityRamp maps each point's elevation to an alpha in [0,1]: 0 at the
// lowest point rising linearly to 1 at upperBound*zmax, clamped beyond.
// Flat surfaces, and ramps whose upper end does not lie above zmin, are fully
// opaque. The surface is not modified.
func OpacityRamp(s *Surface, upperBound float64) []float64 {
	opacity := make([]float64, len(s.Points))
	if len(opacity) == 0 {
		return opacity
	}

	zs := s.Heights()
	zmin := floats.Min(zs)
	zmax := floats.Max(zs)
	hi := upperBound * zmax

	span := hi - zmin
	if isFlat(zmin, zmax) || span <= 0 {
		for i := range opacity {
			opacity[i] = 1
		}
		return opacity
	}

	for i, z := range zs {
		opacity[i] = clamp01((z - zmin) / span)
	}
	return opacity
}

func isFlat(zmin, zmax float64) bool {
	scale := math.Max(1, math.Max(math.Abs(zmin), math.Abs(zmax)))
	return zmax-zmin <= flatTolerance*scale
}
