package rebuild

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// Request selects the rebuild steps.
type Request struct {
	Density    bool `json:"density"`
	Boundaries bool `json:"boundaries"`
	// Publish replaces the published zoning table with the new dataset.
	Publish bool `json:"publish"`
}

// JobArgs is the River payload of a rebuild. Identical requests are unique
// while one of them is still waiting or running.
type JobArgs struct {
	Request

	maxAttempts int
}

// NewJobArgs wraps req. maxAttempts <= 0 keeps the River default.
func NewJobArgs(req Request, maxAttempts int) JobArgs {
	return JobArgs{Request: req, maxAttempts: maxAttempts}
}

func (args JobArgs) Kind() string { return "RebuildDatasetJob" }

func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			// completed jobs are left out so the next period can run again
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
