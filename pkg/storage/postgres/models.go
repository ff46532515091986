package postgres

import (
	"densitymap/pkg/domain"
	"densitymap/pkg/storage"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PgZoningRecord struct {
	Code          string    `db:"code"`
	Profession    string    `db:"profession"`
	Name          string    `db:"name"`
	Tier          string    `db:"tier"`
	PublicationID uuid.UUID `db:"publication_id"`
}

func (p *PgZoningRecord) ToDomain() (domain.ZoningRecord, error) {
	profession, err := domain.ParseProfession(p.Profession)
	if err != nil {
		return domain.ZoningRecord{}, fmt.Errorf("invalid published record %s: %w", p.Code, err)
	}
	tier, err := domain.ParseTier(p.Tier)
	if err != nil {
		return domain.ZoningRecord{}, fmt.Errorf("invalid published record %s: %w", p.Code, err)
	}

	return domain.ZoningRecord{Code: p.Code, Name: p.Name, Profession: profession, Tier: tier}, nil
}

func (p *PgZoningRecord) FromDomain(r domain.ZoningRecord, publication uuid.UUID) error {
	tier, err := r.Tier.MarshalText()
	if err != nil {
		return fmt.Errorf("record %s: %w", r.Code, err)
	}
	if !r.Profession.Valid() {
		return fmt.Errorf("record %s: invalid profession %q", r.Code, r.Profession)
	}

	*p = PgZoningRecord{
		Code:          r.Code,
		Profession:    string(r.Profession),
		Name:          r.Name,
		Tier:          string(tier),
		PublicationID: publication,
	}

	return nil
}

type PgPublication struct {
	ID          uuid.UUID `db:"id"`
	Records     int       `db:"records"`
	PublishedAt time.Time `db:"published_at" goqu:"skipinsert"`
}

func (p *PgPublication) ToDomain() *storage.Publication {
	return &storage.Publication{ID: p.ID, Records: p.Records, PublishedAt: p.PublishedAt}
}

func pgRecordsToDomain(rows []PgZoningRecord) ([]domain.ZoningRecord, error) {
	out := make([]domain.ZoningRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}
