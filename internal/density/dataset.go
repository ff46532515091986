package density

import (
	"cmp"
	"context"
	"densitymap/pkg/domain"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// Dataset is the consolidated zoning dataset keyed by commune code. It is
// serialized as {"<code>": {"name": "...", "zones": {"<profession>": "<tier>"}}}.
type Dataset map[string]domain.DensityEntry

// Consolidate groups records by code. The name of a commune is the one of
// its first record. A (code, profession) pair already present is kept.
func Consolidate(records []domain.ZoningRecord) Dataset {
	ds := make(Dataset)
	for _, r := range records {
		entry, ok := ds[r.Code]
		if !ok {
			entry = domain.DensityEntry{Name: r.Name, Zones: make(map[domain.Profession]domain.Tier)}
		}
		if _, exists := entry.Zones[r.Profession]; !exists {
			entry.Zones[r.Profession] = r.Tier
		}
		ds[r.Code] = entry
	}

	return ds
}

// Records flattens the dataset back into zoning records, sorted by code
// then profession.
func (ds Dataset) Records() []domain.ZoningRecord {
	out := make([]domain.ZoningRecord, 0, len(ds))
	for code, entry := range ds {
		for p, t := range entry.Zones {
			out = append(out, domain.ZoningRecord{Code: code, Name: entry.Name, Profession: p, Tier: t})
		}
	}
	slices.SortFunc(out, func(a, b domain.ZoningRecord) int {
		return cmp.Or(cmp.Compare(a.Code, b.Code), cmp.Compare(a.Profession, b.Profession))
	})

	return out
}

// SourceFiles maps each profession to its raw source file.
type SourceFiles map[domain.Profession]string

// ParseSourceFiles validates the profession names of a configuration map.
func ParseSourceFiles(raw map[string]string) (SourceFiles, error) {
	out := make(SourceFiles, len(raw))
	for name, path := range raw {
		p, err := domain.ParseProfession(name)
		if err != nil {
			return nil, fmt.Errorf("density source %q: %w", name, err)
		}
		out[p] = path
	}

	return out, nil
}

// Build parses every source file and consolidates the result. Professions
// are processed in a fixed order so logs and duplicate resolution are
// reproducible. A missing or unreadable file fails the whole build.
func Build(ctx context.Context, sources SourceFiles, encoding string) (Dataset, ParseReport, error) {
	var total ParseReport
	if len(sources) == 0 {
		return nil, total, serrors.With(serrors.ErrValidation, "no density source configured")
	}

	var records []domain.ZoningRecord
	for _, p := range domain.Professions() {
		path, ok := sources[p]
		if !ok {
			continue
		}
		recs, report, err := parseFile(ctx, path, p, encoding)
		if err != nil {
			return nil, total, err
		}
		total.add(report)
		records = append(records, recs...)
	}

	ds := Consolidate(records)
	logger.Info(ctx, "density dataset built", append(total.fields(), zap.Int("communes", len(ds)))...)

	return ds, total, nil
}

func parseFile(ctx context.Context, path string, p domain.Profession, encoding string) ([]domain.ZoningRecord, ParseReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ParseReport{}, serrors.Wrap(serrors.ErrSourceRead, err, "opening %s source", p)
	}
	defer f.Close()

	r, err := DecodeReader(f, encoding)
	if err != nil {
		return nil, ParseReport{}, err
	}

	return ParseSource(ctx, r, p)
}

// WriteFile writes ds to path atomically: the JSON is written to a
// temporary file in the same directory, then renamed.
func WriteFile(path string, ds Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck

	if err := json.NewEncoder(tmp).Encode(ds); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not encode dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not sync dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not move dataset into place: %w", err)
	}

	return nil
}

// ReadFile loads a dataset written by WriteFile. Entries are validated:
// a tier that does not decode fails the read.
func ReadFile(path string) (Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceRead, err, "reading density dataset")
	}

	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, serrors.Wrap(serrors.ErrSourceRead, err, "decoding density dataset %s", path)
	}
	for code, entry := range ds {
		for p := range entry.Zones {
			if !p.Valid() {
				return nil, serrors.With(serrors.ErrSourceRead, "commune %s has unknown profession %q", code, p)
			}
		}
	}

	return ds, nil
}
