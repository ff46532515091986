package rebuild

import (
	"densitymap/internal/boundary"
	"densitymap/internal/config"
	"densitymap/pkg/metrics"
)

// Options configure where a rebuild reads its sources and writes its
// outputs. They are usually derived from the application config.
type Options struct {
	DensitySources  map[string]string
	DensityEncoding string
	DensityPath     string

	BoundarySourcePath string
	// BoundarySourceURL, when set, is downloaded instead of BoundarySourcePath.
	BoundarySourceURL string
	BoundaryDir       string
	Ranges            []boundary.Range
	MaxShardBytes     int64
	CodeProperties    []string
	NameProperties    []string

	// MaxAttempts of enqueued jobs.
	MaxAttempts int
	// Progress, when set, creates the progress reporter of the shard writer.
	Progress func(total int, description string) boundary.Progress
	// Instruments may be nil.
	Instruments *metrics.Instruments
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) Options {
	ranges := make([]boundary.Range, 0, len(cfg.Boundaries.Shards))
	for _, r := range cfg.Boundaries.Shards {
		ranges = append(ranges, boundary.Range{From: r.From, To: r.To})
	}

	return Options{
		DensitySources:     cfg.Density.Sources,
		DensityEncoding:    cfg.Density.SourceEncoding,
		DensityPath:        cfg.Density.Path,
		BoundarySourcePath: cfg.Boundaries.SourcePath,
		BoundarySourceURL:  cfg.Boundaries.SourceURL,
		BoundaryDir:        cfg.Boundaries.Dir,
		Ranges:             ranges,
		MaxShardBytes:      cfg.Boundaries.MaxShardBytes,
		CodeProperties:     cfg.Boundaries.CodeProperties,
		NameProperties:     cfg.Boundaries.NameProperties,
		MaxAttempts:        cfg.Rebuild.MaxAttempts,
	}
}
