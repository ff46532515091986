package worker

import (
	"context"
	"densitymap/internal/rebuild"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds a rebuild when no timeout is configured. River's
// own default of one minute is too short to download and split the
// boundary source.
const DefaultJobTimeout = 30 * time.Minute

// RebuildWorker runs rebuild jobs. Invalid or impossible requests are
// cancelled; other failures are retried by River up to the job's
// MaxAttempts.
type RebuildWorker struct {
	river.WorkerDefaults[rebuild.JobArgs]

	rebuilder rebuild.Rebuilder
	timeout   time.Duration
}

// NewRebuildWorker creates the worker. timeout <= 0 selects DefaultJobTimeout.
func NewRebuildWorker(rebuilder rebuild.Rebuilder, timeout time.Duration) *RebuildWorker {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	return &RebuildWorker{rebuilder: rebuilder, timeout: timeout}
}

func (w *RebuildWorker) Timeout(*river.Job[rebuild.JobArgs]) time.Duration {
	return w.timeout
}

func (w *RebuildWorker) Work(ctx context.Context, job *river.Job[rebuild.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.Int("attempt", job.Attempt),
		zap.Bool("density", job.Args.Density),
		zap.Bool("boundaries", job.Args.Boundaries),
		zap.Bool("publish", job.Args.Publish))

	report, err := w.rebuilder.Rebuild(ctx, job.Args.Request)
	if err != nil {
		if errors.Is(err, serrors.ErrValidation) || errors.Is(err, serrors.ErrUnavailable) {
			logger.Warn(ctx, "cancelling rebuild job", zap.Error(err))

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in rebuilding dataset", zap.Error(err))

		return fmt.Errorf("could not rebuild dataset: %w", err)
	}

	logger.Info(ctx, "dataset rebuilt",
		zap.Int("communes", report.Communes),
		zap.Int("shards", len(report.Shards)),
		zap.Duration("took", report.Took))

	return nil
}
