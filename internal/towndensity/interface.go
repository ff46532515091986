package towndensity

import (
	"context"
	"densitymap/pkg/domain"
)

//go:generate mockgen -package mocktowndensity -source=interface.go -destination=mock/mocktowndensity.go *

// DensityReader is the zoning dataset as seen by the aggregator. The slice
// returned by AllForProfession belongs to the caller.
type DensityReader interface {
	AllForProfession(ctx context.Context, p domain.Profession) ([]domain.ZoningRecord, error)
	Statistics(ctx context.Context, p domain.Profession) (map[domain.Tier]int, error)
}

// BoundaryReader is the commune boundary store as seen by the aggregator.
type BoundaryReader interface {
	Get(ctx context.Context, codes []string) (map[string]domain.AdministrativeUnit, error)
	Page(ctx context.Context, offset, limit int) ([]domain.AdministrativeUnit, int, error)
}

// Service is the query surface of the density map.
type Service interface {
	GetTownDensity(ctx context.Context, profession string, filters Filters) (*Result, error)
	GetStatistics(ctx context.Context, profession string) (*Statistics, error)
	GetByTier(ctx context.Context, profession string, tier domain.Tier, maxResults int) (*Result, error)
	GetBoundaries(ctx context.Context, query BoundaryQuery) (*Boundaries, error)
	Legend() []LegendEntry
}
