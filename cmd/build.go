package main

import (
	"densitymap/internal/boundary"
	"densitymap/internal/config"
	"densitymap/internal/rebuild"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"densitymap/pkg/storage"
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// terminalProgress draws a progress bar on stderr when it is a terminal.
func terminalProgress(total int, description string) boundary.Progress {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func logReport(cmd *cobra.Command, report *rebuild.Report) {
	ctx := cmd.Context()
	fields := []zap.Field{zap.Duration("took", report.Took)}
	if report.Density != nil {
		fields = append(fields,
			zap.Int("communes", report.Communes),
			zap.Int("rows", report.Density.Rows),
			zap.Int("keptRows", report.Density.Kept))
	}
	if report.Boundaries != nil {
		fields = append(fields,
			zap.Int("features", report.Boundaries.Features),
			zap.Int("acceptedFeatures", report.Boundaries.Accepted),
			zap.Any("rejectedFeatures", report.Boundaries.Rejected),
			zap.Int("shards", len(report.Shards)))
	}
	if report.Publication != nil {
		fields = append(fields,
			zap.Stringer("publication", report.Publication.ID),
			zap.Int("publishedRecords", report.Publication.Records))
	}
	logger.Info(ctx, "build finished", fields...)
}

// buildCommand constructs the 'build' subcommand running the offline
// pipeline: raw CSV to density.json and the GeoJSON source to shards.
func buildCommand(cfg *config.Config) *cobra.Command {
	var req rebuild.Request
	var async bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the density dataset and the boundary shards",
		Long: "Builds the density dataset and the boundary shards from their sources.\n" +
			"Without --density or --boundaries both are built.",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if !req.Density && !req.Boundaries {
				req.Density, req.Boundaries = true, true
			}

			var strg storage.Storage
			if req.Publish || async {
				pg, closeStrg := getPostgres(ctx, cfg)
				defer closeStrg()
				strg = pg
			}

			opts := rebuild.NewOptions(cfg)
			opts.Progress = terminalProgress
			rebuilder := rebuild.New(opts, boundary.NewFetcher(nil, cfg.Boundaries.FetchTimeout), strg)

			if async {
				err := rebuilder.Enqueue(ctx, req)
				if errors.Is(err, serrors.ErrConflict) {
					logger.Info(ctx, "an identical rebuild is already queued", zap.Error(err))

					return
				}
				if err != nil {
					logger.Fatal(ctx, "could not enqueue rebuild", zap.Error(err))
				}
				logger.Info(ctx, "rebuild enqueued")

				return
			}

			report, err := rebuilder.Rebuild(ctx, req)
			if err != nil {
				logger.Fatal(ctx, "build failed", zap.Error(err))
			}
			logReport(cmd, report)
		},
	}

	cmd.Flags().BoolVar(&req.Density, "density", false, "build density.json from the profession CSV files")
	cmd.Flags().BoolVar(&req.Boundaries, "boundaries", false, "build the boundary shards from the GeoJSON source")
	cmd.Flags().BoolVar(&req.Publish, "publish", false, "replace the published zoning table with the new dataset")
	cmd.Flags().BoolVar(&async, "async", false, "enqueue the build for the rebuild worker instead of running it")

	return cmd
}
