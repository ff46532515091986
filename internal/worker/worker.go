// Package worker runs the River job queue of the serve command: the rebuild
// worker and its periodic schedule.
package worker

import (
	"context"
	"densitymap/internal/rebuild"
	"densitymap/pkg/logger"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// rebuildWorkers is the queue concurrency; rebuilds rewrite shared files so
// only one runs at a time.
const rebuildWorkers = 1

// Options configure the queue.
type Options struct {
	// Interval schedules a periodic rebuild of Request. Zero disables it.
	Interval time.Duration
	Request  rebuild.Request
	// MaxAttempts of periodic jobs.
	MaxAttempts int
	// JobTimeout bounds a single rebuild.
	JobTimeout time.Duration
}

// Start creates and starts the River client working rebuild jobs.
func Start(ctx context.Context, dbPool *pgxpool.Pool, rebuilder rebuild.Rebuilder, opts Options) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewRebuildWorker(rebuilder, opts.JobTimeout))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: rebuildWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(opts),
		Logger:       slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}

func periodicJobs(opts Options) []*river.PeriodicJob {
	if opts.Interval <= 0 {
		return nil
	}

	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(opts.Interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return rebuild.NewJobArgs(opts.Request, opts.MaxAttempts), nil
			},
			nil,
		),
	}
}
