// Package rebuild regenerates the reference data served by the density
// map: the consolidated zoning dataset and the boundary shards. It runs
// from the build command or as a River job.
package rebuild

import (
	"context"
	"densitymap/internal/boundary"
	"densitymap/internal/density"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"densitymap/pkg/storage"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Report summarizes a rebuild. Steps that were not requested stay nil.
type Report struct {
	Density     *density.ParseReport
	Communes    int
	Boundaries  *boundary.SourceReport
	Shards      []boundary.ShardInfo
	Publication *storage.Publication
	Took        time.Duration
}

type rebuilder struct {
	options     Options
	fetcher     *boundary.Fetcher
	storage     storage.Storage
	invalidates []Invalidator
}

// New creates a Rebuilder. storage may be nil, in which case publishing and
// enqueueing are refused. invalidates are refreshed after every successful
// rebuild.
func New(options Options, fetcher *boundary.Fetcher, storage storage.Storage, invalidates ...Invalidator) Rebuilder {
	return &rebuilder{
		options:     options,
		fetcher:     fetcher,
		storage:     storage,
		invalidates: invalidates,
	}
}

func (r *rebuilder) validate(req Request) error {
	if !req.Density && !req.Boundaries {
		return serrors.With(serrors.ErrValidation, "nothing to rebuild, select the density dataset or the boundaries")
	}
	if req.Publish && !req.Density {
		return serrors.With(serrors.ErrValidation, "publishing requires rebuilding the density dataset")
	}
	if req.Publish && r.storage == nil {
		return serrors.With(serrors.ErrUnavailable, "publishing requires a database")
	}

	return nil
}

func (r *rebuilder) Rebuild(ctx context.Context, req Request) (*Report, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}
	started := time.Now()
	report := &Report{}

	if req.Density {
		if err := r.rebuildDensity(ctx, req.Publish, report); err != nil {
			return nil, err
		}
	}
	if req.Boundaries {
		if err := r.rebuildBoundaries(ctx, report); err != nil {
			return nil, err
		}
	}

	for _, c := range r.invalidates {
		c.Invalidate()
	}
	report.Took = time.Since(started)
	logger.Info(ctx, "rebuild completed",
		zap.Bool("density", req.Density),
		zap.Bool("boundaries", req.Boundaries),
		zap.Bool("publish", req.Publish),
		zap.Duration("took", report.Took))

	return report, nil
}

func (r *rebuilder) rebuildDensity(ctx context.Context, publish bool, report *Report) error {
	sources, err := density.ParseSourceFiles(r.options.DensitySources)
	if err != nil {
		return err
	}
	ds, parsed, err := density.Build(ctx, sources, r.options.DensityEncoding)
	if err != nil {
		return fmt.Errorf("could not build density dataset: %w", err)
	}
	if len(ds) == 0 {
		return serrors.With(serrors.ErrSourceRead, "density sources hold no usable row")
	}
	if err := density.WriteFile(r.options.DensityPath, ds); err != nil {
		return fmt.Errorf("could not write density dataset: %w", err)
	}
	report.Density = &parsed
	report.Communes = len(ds)

	if !publish {
		return nil
	}
	if err := r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		pub, err := tx.ReplaceZoning(ctx, ds.Records())
		if err != nil {
			return fmt.Errorf("could not replace zoning: %w", err)
		}
		report.Publication = pub

		return nil
	}); err != nil {
		return fmt.Errorf("could not publish density dataset: %w", err)
	}
	logger.Info(ctx, "density dataset published",
		zap.Stringer("publication", report.Publication.ID),
		zap.Int("records", report.Publication.Records))

	return nil
}

func (r *rebuilder) rebuildBoundaries(ctx context.Context, report *Report) error {
	data, err := boundary.ReadSource(ctx, r.fetcher, r.options.BoundarySourcePath, r.options.BoundarySourceURL)
	if err != nil {
		return fmt.Errorf("could not read boundary source: %w", err)
	}

	units, decoded, err := boundary.DecodeSource(ctx, data, boundary.SourceOptions{
		CodeProperties: r.options.CodeProperties,
		NameProperties: r.options.NameProperties,
		OnReject:       r.options.Instruments.FeatureRejected,
	})
	if err != nil {
		return fmt.Errorf("could not decode boundary source: %w", err)
	}
	if len(units) == 0 {
		return serrors.With(serrors.ErrSourceRead, "boundary source holds no usable feature")
	}

	opts := boundary.BuildOptions{Ranges: r.options.Ranges, MaxShardBytes: r.options.MaxShardBytes}
	if r.options.Progress != nil {
		n := len(r.options.Ranges)
		if n == 0 {
			n = len(boundary.DefaultRanges)
		}
		opts.Progress = r.options.Progress(n, "writing boundary shards")
	}
	shards, err := boundary.WriteShards(ctx, r.options.BoundaryDir, units, opts)
	if err != nil {
		return fmt.Errorf("could not write boundary shards: %w", err)
	}
	report.Boundaries = &decoded
	report.Shards = shards

	return nil
}

func (r *rebuilder) Enqueue(ctx context.Context, req Request) error {
	if err := r.validate(req); err != nil {
		return err
	}
	if r.storage == nil {
		return serrors.With(serrors.ErrUnavailable, "the job queue requires a database")
	}

	added, err := r.storage.AddJob(ctx, NewJobArgs(req, r.options.MaxAttempts), nil)
	if err != nil {
		return fmt.Errorf("could not enqueue rebuild: %w", err)
	}
	if !added {
		return serrors.With(serrors.ErrConflict, "an identical rebuild is already queued or running")
	}

	return nil
}
