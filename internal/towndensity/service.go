package towndensity

import (
	"context"
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"fmt"
	"slices"
	"strings"
)

// Filters are the optional query parameters of GetTownDensity.
type Filters struct {
	// Tier is TierUnknown when no tier filter applies.
	Tier     domain.Tier
	Viewport *domain.Viewport
	// Limit is zero when the caller sent none.
	Limit int
}

// Meta describes how the requested limit was applied. It is only attached
// to a result when the limit was clamped or the towns were truncated.
type Meta struct {
	RequestedLimit int
	ActualLimit    int
	Total          int
	Note           string
}

// Result is the payload of GetTownDensity and GetByTier.
type Result struct {
	Profession domain.Profession
	Towns      []domain.DensityResult
	Count      int
	Meta       *Meta
}

// Statistics counts the communes of each tier for a profession.
type Statistics struct {
	Profession domain.Profession
	Tiers      map[domain.Tier]int
	Total      int
}

// BoundaryQuery selects communes either by code or by page.
type BoundaryQuery struct {
	// Codes, when not empty, takes precedence over Offset and Limit.
	Codes  []string
	Offset int
	Limit  int
}

// Boundaries is the payload of GetBoundaries.
type Boundaries struct {
	// Units is sorted by ascending code.
	Units []domain.AdministrativeUnit
	// Total is the number of units in the store for a paged query, and the
	// number of units found for a query by code.
	Total int
}

// LegendEntry is one line of the map legend.
type LegendEntry struct {
	Tier domain.Tier
	domain.Presentation
}

type service struct {
	aggregator *Aggregator
	densities  DensityReader
	boundaries BoundaryReader
	limits     Limits
}

// New creates the Service backed by the two readers.
func New(aggregator *Aggregator, densities DensityReader, boundaries BoundaryReader) Service {
	return &service{
		aggregator: aggregator,
		densities:  densities,
		boundaries: boundaries,
		limits:     aggregator.limits,
	}
}

// GetTownDensity aggregates the towns of profession and reports in Meta
// when the requested limit was clamped or the result was truncated.
func (s *service) GetTownDensity(ctx context.Context, profession string, filters Filters) (*Result, error) {
	agg, err := s.aggregator.Aggregate(ctx, profession, Options{
		Tier:       filters.Tier,
		Viewport:   filters.Viewport,
		MaxResults: filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not aggregate town density: %w", err)
	}

	requested := filters.Limit
	if requested == 0 {
		requested = s.limits.Default
	}
	res := &Result{
		Profession: domain.Profession(strings.TrimSpace(profession)),
		Towns:      agg.Towns,
		Count:      len(agg.Towns),
	}
	if note := limitNote(requested, agg); note != "" {
		res.Meta = &Meta{
			RequestedLimit: requested,
			ActualLimit:    agg.Limit,
			Total:          agg.Total,
			Note:           note,
		}
	}

	return res, nil
}

func limitNote(requested int, agg *Aggregation) string {
	var parts []string
	if requested > agg.Limit {
		parts = append(parts, fmt.Sprintf("requested limit %d exceeds the maximum of %d", requested, agg.Limit))
	}
	if agg.Total > len(agg.Towns) {
		parts = append(parts, fmt.Sprintf("showing %d of %d towns, narrow the viewport or filter by tier to see the others",
			len(agg.Towns), agg.Total))
	}

	return strings.Join(parts, "; ")
}

// GetStatistics counts the communes per tier from the dataset alone. Towns
// without a boundary are counted.
func (s *service) GetStatistics(ctx context.Context, profession string) (*Statistics, error) {
	p, err := domain.ParseProfession(profession)
	if err != nil {
		return nil, err
	}
	tiers, err := s.densities.Statistics(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("could not compute statistics: %w", err)
	}

	total := 0
	for _, n := range tiers {
		total += n
	}

	return &Statistics{Profession: p, Tiers: tiers, Total: total}, nil
}

// GetByTier is GetTownDensity restricted to one tier.
func (s *service) GetByTier(ctx context.Context, profession string, tier domain.Tier, maxResults int) (*Result, error) {
	if !tier.Valid() {
		return nil, serrors.With(serrors.ErrValidation, "a valid tier is required")
	}

	return s.GetTownDensity(ctx, profession, Filters{Tier: tier, Limit: maxResults})
}

// GetBoundaries returns the communes named in query.Codes, or a page of
// every commune when no code is given. Unknown codes are omitted.
func (s *service) GetBoundaries(ctx context.Context, query BoundaryQuery) (*Boundaries, error) {
	if len(query.Codes) > 0 {
		if len(query.Codes) > s.limits.Max {
			return nil, serrors.With(serrors.ErrValidation,
				"at most %d codes may be requested, got %d", s.limits.Max, len(query.Codes))
		}
		found, err := s.boundaries.Get(ctx, query.Codes)
		if err != nil {
			return nil, fmt.Errorf("could not get boundaries: %w", err)
		}
		units := make([]domain.AdministrativeUnit, 0, len(found))
		for _, u := range found {
			units = append(units, u)
		}
		slices.SortFunc(units, func(a, b domain.AdministrativeUnit) int { return strings.Compare(a.Code, b.Code) })

		return &Boundaries{Units: units, Total: len(units)}, nil
	}

	if query.Limit < 0 {
		return nil, serrors.With(serrors.ErrValidation, "limit must not be negative")
	}
	units, total, err := s.boundaries.Page(ctx, query.Offset, s.limits.Clamp(query.Limit))
	if err != nil {
		return nil, fmt.Errorf("could not get boundaries page: %w", err)
	}

	return &Boundaries{Units: units, Total: total}, nil
}

// Legend lists every tier with its presentation in enumeration order.
func (s *service) Legend() []LegendEntry {
	tiers := domain.Tiers()
	out := make([]LegendEntry, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, LegendEntry{Tier: t, Presentation: t.Presentation()})
	}

	return out
}
