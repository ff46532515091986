package domain

import (
	"densitymap/pkg/serrors"

	"github.com/paulmach/orb"
)

// AdministrativeUnit is a commune with its boundary. Code is the INSEE code
// and is unique across the boundary dataset.
type AdministrativeUnit struct {
	Code     string
	Name     string
	Geometry orb.Geometry
	// Bound is the bounding box of Geometry, computed once when the unit is built.
	Bound orb.Bound
}

// NewAdministrativeUnit validates geometry and computes its bounding box.
func NewAdministrativeUnit(code, name string, geometry orb.Geometry) (AdministrativeUnit, error) {
	if code == "" {
		return AdministrativeUnit{}, serrors.With(serrors.ErrValidation, "administrative unit without code")
	}
	if err := ValidateGeometry(geometry); err != nil {
		return AdministrativeUnit{}, serrors.Wrap(serrors.ErrValidation, err, "unit %s", code)
	}

	return AdministrativeUnit{
		Code:     code,
		Name:     name,
		Geometry: geometry,
		Bound:    geometry.Bound(),
	}, nil
}

// ValidateGeometry accepts a Polygon or MultiPolygon holding at least one
// closed ring of four points or more.
func ValidateGeometry(g orb.Geometry) error {
	switch geom := g.(type) {
	case orb.Polygon:
		if hasClosedRing(geom) {
			return nil
		}
	case orb.MultiPolygon:
		for _, p := range geom {
			if hasClosedRing(p) {
				return nil
			}
		}
	case nil:
		return serrors.With(serrors.ErrValidation, "missing geometry")
	default:
		return serrors.With(serrors.ErrValidation, "unsupported geometry type %s", g.GeoJSONType())
	}

	return serrors.With(serrors.ErrValidation, "geometry has no closed ring of at least 4 points")
}

func hasClosedRing(p orb.Polygon) bool {
	for _, r := range p {
		if len(r) >= 4 && r.Closed() {
			return true
		}
	}

	return false
}

// ZoningRecord is one source row: the tier of a commune for a profession.
type ZoningRecord struct {
	Code       string
	Name       string
	Profession Profession
	Tier       Tier
}

// DensityEntry is the consolidated zoning of one commune, keyed by
// profession. A profession without a tier for the commune has no key.
type DensityEntry struct {
	Name  string              `json:"name"`
	Zones map[Profession]Tier `json:"zones"`
}

// DensityResult is a density entry joined with its geometry and presentation.
type DensityResult struct {
	Code         string
	Name         string
	Profession   Profession
	Tier         Tier
	Color        string
	Label        string
	DensityScore int
	Geometry     orb.Geometry
}
