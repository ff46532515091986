package storage

import (
	"context"
	"densitymap/pkg/domain"
	"time"

	"github.com/google/uuid"
)

// Publication describes one replacement of the published zoning records.
type Publication struct {
	ID          uuid.UUID
	Records     int
	PublishedAt time.Time
}

// ZoningStorage publishes the consolidated zoning dataset so that several
// service instances can serve the same data.
type ZoningStorage interface {
	// ReplaceZoning removes every published record and stores records under
	// a new publication. Call it within WithTx so readers never observe an
	// empty table.
	ReplaceZoning(ctx context.Context, records []domain.ZoningRecord) (*Publication, error)
	// ZoningRecords returns every published record ordered by code and
	// profession.
	ZoningRecords(ctx context.Context) ([]domain.ZoningRecord, error)
	// LastPublication returns the latest publication, or nil when nothing
	// was ever published.
	LastPublication(ctx context.Context) (*Publication, error)
}
