// Package towndensity joins the zoning dataset with commune boundaries and
// serves the classified, filtered result sets drawn on the density map.
package towndensity

import (
	"context"
	"densitymap/internal/config"
	"densitymap/pkg/domain"
	"densitymap/pkg/logger"
	"densitymap/pkg/metrics"
	"densitymap/pkg/serrors"
	"slices"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// maxLoggedGaps bounds the codes listed in the data-quality debug log.
const maxLoggedGaps = 20

// Limits bounds the number of towns a single aggregation returns.
type Limits struct {
	// Default applies when the caller asks for no particular limit.
	Default int
	// Max is the ceiling applied to every request.
	Max int
}

// DefaultLimits are used when no configuration is given.
var DefaultLimits = Limits{Default: 500, Max: 2000} //nolint: gochecknoglobals

// NewLimits reads the limits from the application config.
func NewLimits(cfg *config.Config) Limits {
	return Limits{Default: cfg.Query.DefaultMaxResults, Max: cfg.Query.HardMaxResults}
}

// Clamp returns the effective limit for a requested one. Zero selects the
// default.
func (l Limits) Clamp(requested int) int {
	if requested <= 0 {
		return l.Default
	}

	return min(requested, l.Max)
}

// Options filter an aggregation.
type Options struct {
	// Tier keeps only this tier unless it is TierUnknown.
	Tier domain.Tier
	// Viewport keeps only communes whose bounding box intersects it.
	Viewport *domain.Viewport
	// MaxResults is clamped with Limits.Clamp.
	MaxResults int
}

// Aggregation is the outcome of Aggregate.
type Aggregation struct {
	// Towns is sorted by ascending commune code.
	Towns []domain.DensityResult
	// Total counts the matches before truncation.
	Total int
	// Limit is the effective limit that was applied.
	Limit int
	// Gaps counts entries dropped for lack of a boundary.
	Gaps int
}

// Aggregator joins zoning entries with their boundaries. It holds no state
// of its own beyond the readers it is given.
type Aggregator struct {
	densities   DensityReader
	boundaries  BoundaryReader
	limits      Limits
	instruments *metrics.Instruments
	now         func() time.Time
}

// NewAggregator creates an Aggregator. instruments may be nil.
func NewAggregator(densities DensityReader, boundaries BoundaryReader, limits Limits,
	instruments *metrics.Instruments) *Aggregator {
	return &Aggregator{
		densities:   densities,
		boundaries:  boundaries,
		limits:      limits,
		instruments: instruments,
		now:         time.Now,
	}
}

// Aggregate returns the communes having a tier for profession, joined with
// their boundary and filtered by opts. Communes without a boundary are
// dropped. An empty result is not an error.
func (a *Aggregator) Aggregate(ctx context.Context, profession string, opts Options) (*Aggregation, error) {
	started := a.now()
	p, err := domain.ParseProfession(profession)
	if err != nil {
		return nil, err
	}
	if opts.Tier != domain.TierUnknown && !opts.Tier.Valid() {
		return nil, serrors.With(serrors.ErrValidation, "invalid tier %d", uint8(opts.Tier))
	}
	if opts.Viewport != nil {
		if err := opts.Viewport.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.MaxResults < 0 {
		return nil, serrors.With(serrors.ErrValidation, "limit must not be negative")
	}
	limit := a.limits.Clamp(opts.MaxResults)

	records, err := a.densities.AllForProfession(ctx, p)
	if err != nil {
		return nil, err
	}
	if opts.Tier != domain.TierUnknown {
		records = slices.DeleteFunc(records, func(r domain.ZoningRecord) bool { return r.Tier != opts.Tier })
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(records))
	for _, r := range records {
		codes = append(codes, r.Code)
	}
	units, err := a.boundaries.Get(ctx, codes)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var viewport orb.Bound
	if opts.Viewport != nil {
		viewport = opts.Viewport.Bound()
	}
	var missing []string
	towns := make([]domain.DensityResult, 0, min(len(records), limit))
	total := 0
	slices.SortFunc(records, func(x, y domain.ZoningRecord) int { return strings.Compare(x.Code, y.Code) })
	for _, r := range records {
		u, ok := units[r.Code]
		if !ok {
			missing = append(missing, r.Code)

			continue
		}
		if opts.Viewport != nil && !viewport.Intersects(u.Bound) {
			continue
		}
		total++
		if len(towns) < limit {
			towns = append(towns, newResult(r, u))
		}
	}

	if len(missing) > 0 {
		logger.Debug(ctx, "communes without boundary dropped",
			zap.String("profession", string(p)),
			zap.Int("count", len(missing)),
			zap.Strings("codes", missing[:min(len(missing), maxLoggedGaps)]))
	}
	a.instruments.Aggregated(ctx, string(p), a.now().Sub(started), len(towns), len(missing))

	return &Aggregation{Towns: towns, Total: total, Limit: limit, Gaps: len(missing)}, nil
}

func newResult(r domain.ZoningRecord, u domain.AdministrativeUnit) domain.DensityResult {
	pres := r.Tier.Presentation()

	return domain.DensityResult{
		Code:         r.Code,
		Name:         r.Name,
		Profession:   r.Profession,
		Tier:         r.Tier,
		Color:        pres.Color,
		Label:        pres.Label,
		DensityScore: pres.Score,
		Geometry:     u.Geometry,
	}
}
