package boundary

import (
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// shardUnit is the on-disk form of a commune: {"name": ..., "geometry": <GeoJSON>}.
type shardUnit struct {
	Name     string            `json:"name"`
	Geometry *geojson.Geometry `json:"geometry"`
}

// EncodeShard serializes units as a code-keyed JSON object. Keys are
// written in ascending order, so equal inputs give identical files.
func EncodeShard(units []domain.AdministrativeUnit) ([]byte, error) {
	doc := make(map[string]shardUnit, len(units))
	for _, u := range units {
		doc[u.Code] = shardUnit{Name: u.Name, Geometry: geojson.NewGeometry(u.Geometry)}
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not encode shard: %w", err)
	}

	return b, nil
}

// DecodeShard parses a shard written by EncodeShard. Any invalid entry
// makes the whole shard unreadable.
func DecodeShard(data []byte) (map[string]domain.AdministrativeUnit, error) {
	var doc map[string]shardUnit
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceRead, err, "decoding shard")
	}

	out := make(map[string]domain.AdministrativeUnit, len(doc))
	for code, su := range doc {
		if su.Geometry == nil {
			return nil, serrors.With(serrors.ErrSourceRead, "commune %s has no geometry", code)
		}
		u, err := domain.NewAdministrativeUnit(code, su.Name, su.Geometry.Geometry())
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrSourceRead, err, "decoding shard")
		}
		out[code] = u
	}

	return out, nil
}
