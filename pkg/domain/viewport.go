package domain

import (
	"densitymap/pkg/serrors"
	"math"

	"github.com/paulmach/orb"
)

// Viewport is a WGS84 bounding box in decimal degrees.
type Viewport struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Validate rejects non-finite coordinates, latitudes outside [-90, 90],
// longitudes outside [-180, 180] and inverted edges. Viewports crossing the
// antimeridian are not supported.
func (v Viewport) Validate() error {
	for _, c := range []float64{v.North, v.South, v.East, v.West} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return serrors.With(serrors.ErrValidation, "viewport coordinates must be finite numbers")
		}
	}
	if v.North > 90 || v.South < -90 {
		return serrors.With(serrors.ErrValidation, "viewport latitudes must be within [-90, 90]")
	}
	if v.East > 180 || v.West < -180 {
		return serrors.With(serrors.ErrValidation, "viewport longitudes must be within [-180, 180]")
	}
	if v.South > v.North {
		return serrors.With(serrors.ErrValidation, "viewport south %v is above north %v", v.South, v.North)
	}
	if v.West > v.East {
		return serrors.With(serrors.ErrValidation, "viewport west %v is east of %v", v.West, v.East)
	}

	return nil
}

// Bound converts the viewport to an orb bound.
func (v Viewport) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{v.West, v.South},
		Max: orb.Point{v.East, v.North},
	}
}
