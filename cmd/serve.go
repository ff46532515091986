package main

import (
	"context"
	"densitymap/internal/api"
	"densitymap/internal/api/handler/v1handler"
	"densitymap/internal/boundary"
	"densitymap/internal/config"
	"densitymap/internal/density"
	"densitymap/internal/rebuild"
	"densitymap/internal/towndensity"
	"densitymap/internal/worker"
	"densitymap/pkg/cache"
	"densitymap/pkg/logger"
	"densitymap/pkg/metrics"
	"densitymap/pkg/storage"
	"densitymap/pkg/storage/postgres"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, deps api.Deps, cfg *config.Config) func(ctx context.Context) {
	server := api.NewServer(deps, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// setupStores creates the density and boundary caches. Their metrics are
// recorded on instruments.
func setupStores(
	ctx context.Context, cfg *config.Config, pg *postgres.PgSQL, instruments *metrics.Instruments,
) (*density.Store, *boundary.Store) {
	var src density.Source = density.FileSource{Path: cfg.Density.Path}
	if cfg.Density.Source == config.DensitySourcePostgres {
		src = density.TableSource{Reader: pg}
		switch last, err := pg.LastPublication(ctx); {
		case err != nil:
			logger.Warn(ctx, "could not read last zoning publication", zap.Error(err))
		case last == nil:
			logger.Warn(ctx, "no zoning published yet, run build --publish")
		default:
			logger.Info(ctx, "serving published zoning",
				zap.Stringer("publication", last.ID),
				zap.Time("publishedAt", last.PublishedAt),
				zap.Int("records", last.Records))
		}
	}
	densities := density.NewStore(src, cache.Options{OnLoad: instruments.CacheLoaded})

	boundaries, err := boundary.NewStore(boundary.StoreOptions{
		Dir:      cfg.Boundaries.Dir,
		Ranges:   rebuild.NewOptions(cfg).Ranges,
		Cache:    cache.Options{TTL: cfg.Boundaries.CacheTTL, OnLoad: instruments.CacheLoaded},
		Failures: instruments,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create boundary store", zap.Error(err))
	}

	// the density dataset is small, loading it upfront surfaces a broken
	// file at startup instead of on the first request
	if n, err := densities.Len(ctx); err != nil {
		logger.Warn(ctx, "could not preload density dataset", zap.Error(err))
	} else {
		logger.Info(ctx, "density dataset loaded", zap.Int("communes", n))
	}

	return densities, boundaries
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and the rebuild worker",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			instruments, err := metrics.NewInstruments(mp)
			if err != nil {
				logger.Fatal(ctx, "could not create instruments", zap.Error(err))
			}

			var (
				pg   *postgres.PgSQL
				strg storage.Storage
			)
			if cfg.Density.Source == config.DensitySourcePostgres || cfg.Rebuild.Enabled {
				var closeStrg func()
				pg, closeStrg = getPostgres(ctx, cfg)
				defer closeStrg()
				strg = pg
			}

			densities, boundaries := setupStores(ctx, cfg, pg, instruments)
			aggregator := towndensity.NewAggregator(densities, boundaries, towndensity.NewLimits(cfg), instruments)

			deps := api.Deps{Deps: v1handler.Deps{
				TownDensity: towndensity.New(aggregator, densities, boundaries),
				Boundaries:  boundaries,
			}}
			if pg != nil {
				deps.Database = pg
			}
			stopWebserver := setupServer(ctx, deps, cfg)

			var stopWorker func(ctx context.Context)
			if cfg.Rebuild.Enabled {
				opts := rebuild.NewOptions(cfg)
				opts.Instruments = instruments
				rebuilder := rebuild.New(opts,
					boundary.NewFetcher(nil, cfg.Boundaries.FetchTimeout), strg, densities, boundaries)

				riverClient, err := worker.Start(ctx, pg.Pool, rebuilder, worker.Options{
					Interval:    cfg.Rebuild.Interval,
					Request:     rebuild.Request{Density: true, Boundaries: true, Publish: cfg.Rebuild.Publish},
					MaxAttempts: cfg.Rebuild.MaxAttempts,
					JobTimeout:  worker.DefaultJobTimeout,
				})
				if err != nil {
					logger.Fatal(ctx, "could not start rebuild worker", zap.Error(err))
				}
				stopWorker = func(ctx context.Context) {
					logger.Info(ctx, "stopping rebuild worker...")
					if err := riverClient.Stop(ctx); err != nil {
						logger.Error(ctx, "could not stop rebuild worker", zap.Error(err))
					}
				}
			}

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			if stopWorker != nil {
				stopWorker(shutdownCtx)
			}
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shutdown meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
