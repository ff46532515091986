package postgres

import (
	"context"
	"densitymap/pkg/domain"
	"densitymap/pkg/storage"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	zoningTable       = "town_density"
	publicationsTable = "density_publications"

	// insertBatchSize keeps each insert well below the bind parameter limit.
	insertBatchSize = 1000
)

// ReplaceZoning records a new publication, deletes the previously published
// records and inserts records in batches.
func (p *PgSQL) ReplaceZoning(ctx context.Context, records []domain.ZoningRecord) (*storage.Publication, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("could not generate publication id: %w", err)
	}

	var pub PgPublication
	if _, err := p.Builder.Insert(publicationsTable).
		Rows(PgPublication{ID: id, Records: len(records)}).
		Returning(&PgPublication{}).
		Executor().ScanStructContext(ctx, &pub); err != nil {
		return nil, fmt.Errorf("could not store publication into pg: %w", err)
	}

	if _, err := p.Builder.Delete(zoningTable).Executor().ExecContext(ctx); err != nil {
		return nil, fmt.Errorf("could not delete published zoning from pg: %w", err)
	}

	rows := make([]PgZoningRecord, len(records))
	for i := range records {
		if err := rows[i].FromDomain(records[i], id); err != nil {
			return nil, err
		}
	}
	for start := 0; start < len(rows); start += insertBatchSize {
		batch := rows[start:min(start+insertBatchSize, len(rows))]
		if _, err := p.Builder.Insert(zoningTable).Rows(batch).Executor().ExecContext(ctx); err != nil {
			return nil, fmt.Errorf("could not store zoning into pg: %w", err)
		}
	}

	return pub.ToDomain(), nil
}

// ZoningRecords returns every published record ordered by code and profession.
func (p *PgSQL) ZoningRecords(ctx context.Context) ([]domain.ZoningRecord, error) {
	var rows []PgZoningRecord
	if err := p.Builder.From(zoningTable).
		Order(goqu.I("code").Asc(), goqu.I("profession").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch zoning from pg: %w", err)
	}

	return pgRecordsToDomain(rows)
}

// LastPublication returns the most recent publication, or nil when the
// dataset was never published.
func (p *PgSQL) LastPublication(ctx context.Context) (*storage.Publication, error) {
	var row PgPublication
	found, err := p.Builder.From(publicationsTable).
		Order(goqu.I("published_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch last publication from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
