package v1handler

import (
	"densitymap/internal/towndensity"
	"densitymap/pkg/domain"
	"encoding/json"
	"fmt"

	"github.com/go-faster/jx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func encodeGeometry(e *jx.Encoder, g orb.Geometry) error {
	if g == nil {
		e.Null()

		return nil
	}
	b, err := json.Marshal(geojson.NewGeometry(g))
	if err != nil {
		return fmt.Errorf("could not encode geometry: %w", err)
	}
	e.Raw(b)

	return nil
}

func encodeTown(e *jx.Encoder, t domain.DensityResult) error {
	var gErr error
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(t.Code) })
		e.Field("name", func(e *jx.Encoder) { e.Str(t.Name) })
		e.Field("tier", func(e *jx.Encoder) { e.Str(t.Tier.String()) })
		e.Field("color", func(e *jx.Encoder) { e.Str(t.Color) })
		e.Field("label", func(e *jx.Encoder) { e.Str(t.Label) })
		e.Field("densityScore", func(e *jx.Encoder) { e.Int(t.DensityScore) })
		e.Field("geometry", func(e *jx.Encoder) { gErr = encodeGeometry(e, t.Geometry) })
	})

	return gErr
}

func encodeResult(e *jx.Encoder, res *towndensity.Result) error {
	var err error
	e.Obj(func(e *jx.Encoder) {
		e.Field("profession", func(e *jx.Encoder) { e.Str(string(res.Profession)) })
		e.Field("towns", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, t := range res.Towns {
					if err != nil {
						return
					}
					err = encodeTown(e, t)
				}
			})
		})
		e.Field("count", func(e *jx.Encoder) { e.Int(res.Count) })
		if m := res.Meta; m != nil {
			e.Field("meta", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("requestedLimit", func(e *jx.Encoder) { e.Int(m.RequestedLimit) })
					e.Field("actualLimit", func(e *jx.Encoder) { e.Int(m.ActualLimit) })
					e.Field("total", func(e *jx.Encoder) { e.Int(m.Total) })
					e.Field("note", func(e *jx.Encoder) { e.Str(m.Note) })
				})
			})
		}
	})

	return err
}

// encodeStatistics lists the tiers in enumeration order. Tiers without any
// commune are omitted.
func encodeStatistics(e *jx.Encoder, stats *towndensity.Statistics) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("profession", func(e *jx.Encoder) { e.Str(string(stats.Profession)) })
		e.Field("tiers", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, t := range domain.Tiers() {
					if n, ok := stats.Tiers[t]; ok {
						e.Field(t.String(), func(e *jx.Encoder) { e.Int(n) })
					}
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.Int(stats.Total) })
	})
}

func encodeBoundaries(e *jx.Encoder, b *towndensity.Boundaries) error {
	var err error
	e.Obj(func(e *jx.Encoder) {
		e.Field("communes", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, u := range b.Units {
					e.Obj(func(e *jx.Encoder) {
						e.Field("code", func(e *jx.Encoder) { e.Str(u.Code) })
						e.Field("name", func(e *jx.Encoder) { e.Str(u.Name) })
						e.Field("geometry", func(e *jx.Encoder) {
							if gErr := encodeGeometry(e, u.Geometry); gErr != nil && err == nil {
								err = gErr
							}
						})
					})
				}
			})
		})
		e.Field("count", func(e *jx.Encoder) { e.Int(len(b.Units)) })
		e.Field("total", func(e *jx.Encoder) { e.Int(b.Total) })
	})

	return err
}

func encodeLegend(e *jx.Encoder, entries []towndensity.LegendEntry) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("tiers", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, entry := range entries {
					e.Obj(func(e *jx.Encoder) {
						e.Field("tier", func(e *jx.Encoder) { e.Str(entry.Tier.String()) })
						e.Field("label", func(e *jx.Encoder) { e.Str(entry.Label) })
						e.Field("color", func(e *jx.Encoder) { e.Str(entry.Color) })
						e.Field("densityScore", func(e *jx.Encoder) { e.Int(entry.Score) })
					})
				}
			})
		})
	})
}
