// Package boundary stores commune boundaries in shard files partitioned by
// department prefix, builds those shards from a GeoJSON source and serves
// them from a TTL cache.
package boundary

import (
	"context"
	"densitymap/pkg/cache"
	"densitymap/pkg/domain"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentShards bounds the shards decoded at the same time.
const maxConcurrentShards = 4

// ShardFailureRecorder is notified of every shard skipped during a load.
type ShardFailureRecorder interface {
	ShardFailed(ctx context.Context, shard string)
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Dir string
	// Ranges defaults to DefaultRanges.
	Ranges []Range
	Cache  cache.Options
	// Failures may be nil.
	Failures ShardFailureRecorder
}

// index is one immutable merged view of all shards.
type index struct {
	units  map[string]domain.AdministrativeUnit
	codes  []string
	failed []string
}

// Status describes the snapshot currently served.
type Status struct {
	Loaded       bool
	Units        int
	FailedShards []string
}

// Store serves commune boundaries from the shard files of a directory.
type Store struct {
	dir      string
	ranges   []Range
	failures ShardFailureRecorder
	loader   *cache.Loader[*index]
}

// NewStore creates a Store. Shards are only read on first use.
func NewStore(opts StoreOptions) (*Store, error) {
	ranges := opts.Ranges
	if len(ranges) == 0 {
		ranges = DefaultRanges
	}
	ranges, err := ValidateRanges(ranges)
	if err != nil {
		return nil, err
	}

	s := &Store{dir: opts.Dir, ranges: ranges, failures: opts.Failures}
	s.loader = cache.New("boundaries", s.load, opts.Cache)

	return s, nil
}

// load reads every shard concurrently and merges them. A missing or
// unreadable shard is logged and skipped; Load fails only when no shard
// could be read. Codes found in several shards keep the unit of the first
// shard in file name order.
func (s *Store) load(ctx context.Context) (*index, error) {
	results := make([]map[string]domain.AdministrativeUnit, len(s.ranges))
	errs := make([]error, len(s.ranges))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentShards)
	for i, r := range s.ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = s.readShard(r.FileName())

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &index{units: make(map[string]domain.AdministrativeUnit)}
	for i, r := range s.ranges {
		name := r.FileName()
		if errs[i] != nil {
			idx.failed = append(idx.failed, name)
			logger.Error(ctx, "could not load boundary shard", zap.String("shard", name), zap.Error(errs[i]))
			if s.failures != nil {
				s.failures.ShardFailed(ctx, name)
			}

			continue
		}
		for code, u := range results[i] {
			if _, dup := idx.units[code]; dup {
				logger.Warn(ctx, "commune present in several shards, keeping the first",
					zap.String("code", code), zap.String("shard", name))

				continue
			}
			idx.units[code] = u
		}
	}

	if len(idx.failed) == len(s.ranges) {
		return nil, serrors.With(serrors.ErrSourceRead, "no boundary shard could be loaded from %s", s.dir)
	}

	idx.codes = make([]string, 0, len(idx.units))
	for code := range idx.units {
		idx.codes = append(idx.codes, code)
	}
	slices.Sort(idx.codes)
	logger.Info(ctx, "boundary shards loaded",
		zap.Int("units", len(idx.units)), zap.Strings("failedShards", idx.failed))

	return idx, nil
}

func (s *Store) readShard(name string) (map[string]domain.AdministrativeUnit, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceRead, err, "reading shard %s", name)
	}

	return DecodeShard(b)
}

// Get returns the units of codes found in the store. Unknown codes are
// omitted.
func (s *Store) Get(ctx context.Context, codes []string) (map[string]domain.AdministrativeUnit, error) {
	idx, err := s.loader.Get(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.AdministrativeUnit, len(codes))
	for _, code := range codes {
		if u, ok := idx.units[code]; ok {
			out[code] = u
		}
	}

	return out, nil
}

// Page returns up to limit units starting at offset in ascending code
// order, and the total number of units. The order is stable for the
// lifetime of a snapshot.
func (s *Store) Page(ctx context.Context, offset, limit int) ([]domain.AdministrativeUnit, int, error) {
	if offset < 0 {
		return nil, 0, serrors.With(serrors.ErrValidation, "offset must not be negative")
	}
	if limit <= 0 {
		return nil, 0, serrors.With(serrors.ErrValidation, "limit must be positive")
	}
	idx, err := s.loader.Get(ctx)
	if err != nil {
		return nil, 0, err
	}

	total := len(idx.codes)
	if offset >= total {
		return []domain.AdministrativeUnit{}, total, nil
	}
	end := min(offset+limit, total)
	out := make([]domain.AdministrativeUnit, 0, end-offset)
	for _, code := range idx.codes[offset:end] {
		out = append(out, idx.units[code])
	}

	return out, total, nil
}

// Status reports the snapshot currently served without loading.
func (s *Store) Status() Status {
	idx, _, ok := s.loader.Peek()
	if !ok {
		return Status{}
	}

	return Status{Loaded: true, Units: len(idx.units), FailedShards: slices.Clone(idx.failed)}
}

// Invalidate makes the next call reload every shard.
func (s *Store) Invalidate() {
	s.loader.Invalidate()
}
