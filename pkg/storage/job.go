package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs. Inside a transaction the job only
// becomes visible once the transaction commits.
type JobStorage interface {
	// AddJob enqueues a job and reports whether it was inserted; false means
	// a unique job with the same arguments already exists.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
