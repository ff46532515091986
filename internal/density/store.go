package density

import (
	"context"
	"densitymap/pkg/cache"
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"maps"
	"slices"
	"strings"
)

// Source provides a complete dataset to the Store.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}

// FileSource reads the JSON file written by WriteFile.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) (Dataset, error) {
	return ReadFile(s.Path)
}

// RecordReader lists published zoning records.
type RecordReader interface {
	ZoningRecords(ctx context.Context) ([]domain.ZoningRecord, error)
}

// TableSource consolidates the records published in the database.
type TableSource struct {
	Reader RecordReader
}

func (s TableSource) Load(ctx context.Context) (Dataset, error) {
	records, err := s.Reader.ZoningRecords(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceRead, err, "reading published zoning")
	}
	if len(records) == 0 {
		return nil, serrors.With(serrors.ErrSourceRead, "no published zoning records")
	}

	return Consolidate(records), nil
}

// index is an immutable view of a dataset with per-profession listings
// precomputed.
type index struct {
	entries      Dataset
	byProfession map[domain.Profession][]domain.ZoningRecord
	stats        map[domain.Profession]map[domain.Tier]int
}

func newIndex(ds Dataset) *index {
	idx := &index{
		entries:      ds,
		byProfession: make(map[domain.Profession][]domain.ZoningRecord),
		stats:        make(map[domain.Profession]map[domain.Tier]int),
	}
	for code, entry := range ds {
		for p, t := range entry.Zones {
			idx.byProfession[p] = append(idx.byProfession[p], domain.ZoningRecord{
				Code: code, Name: entry.Name, Profession: p, Tier: t,
			})
			if idx.stats[p] == nil {
				idx.stats[p] = make(map[domain.Tier]int)
			}
			idx.stats[p][t]++
		}
	}
	for _, recs := range idx.byProfession {
		slices.SortFunc(recs, func(a, b domain.ZoningRecord) int { return strings.Compare(a.Code, b.Code) })
	}

	return idx
}

// Store serves the dataset from memory. It is loaded on first use and kept
// until Invalidate.
type Store struct {
	loader *cache.Loader[*index]
}

// NewStore creates a Store reading src. opts.TTL is normally zero: the
// dataset only changes when a rebuild invalidates it.
func NewStore(src Source, opts cache.Options) *Store {
	return &Store{
		loader: cache.New("density", func(ctx context.Context) (*index, error) {
			ds, err := src.Load(ctx)
			if err != nil {
				return nil, err
			}

			return newIndex(ds), nil
		}, opts),
	}
}

// Get returns the entry of code, or a DATA_NOT_FOUND error.
func (s *Store) Get(ctx context.Context, code string) (domain.DensityEntry, error) {
	idx, err := s.loader.Get(ctx)
	if err != nil {
		return domain.DensityEntry{}, err
	}
	entry, ok := idx.entries[code]
	if !ok {
		return domain.DensityEntry{}, serrors.With(serrors.ErrDataNotFound, "no density entry for commune %s", code)
	}
	entry.Zones = maps.Clone(entry.Zones)

	return entry, nil
}

// AllForProfession returns every commune with a tier for p, sorted by code.
func (s *Store) AllForProfession(ctx context.Context, p domain.Profession) ([]domain.ZoningRecord, error) {
	idx, err := s.loader.Get(ctx)
	if err != nil {
		return nil, err
	}

	return slices.Clone(idx.byProfession[p]), nil
}

// Statistics counts the communes of each tier for p. Tiers without any
// commune are absent.
func (s *Store) Statistics(ctx context.Context, p domain.Profession) (map[domain.Tier]int, error) {
	idx, err := s.loader.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := maps.Clone(idx.stats[p])
	if out == nil {
		out = map[domain.Tier]int{}
	}

	return out, nil
}

// Len returns the number of communes in the dataset.
func (s *Store) Len(ctx context.Context) (int, error) {
	idx, err := s.loader.Get(ctx)
	if err != nil {
		return 0, err
	}

	return len(idx.entries), nil
}

// Invalidate makes the next call reload the dataset.
func (s *Store) Invalidate() {
	s.loader.Invalidate()
}
