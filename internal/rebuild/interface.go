package rebuild

import "context"

//go:generate mockgen -package mockrebuild -source=interface.go -destination=mock/mockrebuild.go *

// Rebuilder regenerates the density dataset and the boundary shards from
// their raw sources.
type Rebuilder interface {
	// Rebuild runs the requested steps now. Nothing is replaced when a step
	// fails before writing its output.
	Rebuild(ctx context.Context, req Request) (*Report, error)
	// Enqueue schedules req on the job queue. It fails with CONFLICT when an
	// identical rebuild is already queued or running.
	Enqueue(ctx context.Context, req Request) error
}

// Invalidator is a cache to refresh once a rebuild completed.
type Invalidator interface {
	Invalidate()
}
