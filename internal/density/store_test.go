package density_test

import (
	"context"
	"densitymap/internal/density"
	"densitymap/pkg/cache"
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ds    density.Dataset
	err   error
	calls int
}

func (f *fakeSource) Load(context.Context) (density.Dataset, error) {
	f.calls++

	return f.ds, f.err
}

func sampleDataset() density.Dataset {
	return density.Dataset{
		"75105": {Name: "Paris 5e Arrondissement", Zones: map[domain.Profession]domain.Tier{
			domain.ProfessionNurse: domain.TierVeryUnderserved,
		}},
		"01001": {Name: "L'Abergement-Clémenciat", Zones: map[domain.Profession]domain.Tier{
			domain.ProfessionNurse:   domain.TierVeryUnderserved,
			domain.ProfessionMidwife: domain.TierIntermediate,
		}},
		"2A004": {Name: "Ajaccio", Zones: map[domain.Profession]domain.Tier{
			domain.ProfessionNurse: domain.TierOverserved,
		}},
	}
}

func TestStore(t *testing.T) {
	src := &fakeSource{ds: sampleDataset()}
	store := density.NewStore(src, cache.Options{})
	ctx := context.Background()

	entry, err := store.Get(ctx, "01001")
	require.NoError(t, err)
	require.Equal(t, "L'Abergement-Clémenciat", entry.Name)
	require.Len(t, entry.Zones, 2)

	_, err = store.Get(ctx, "99999")
	require.ErrorIs(t, err, serrors.ErrDataNotFound)

	nurses, err := store.AllForProfession(ctx, domain.ProfessionNurse)
	require.NoError(t, err)
	codes := make([]string, len(nurses))
	for i, r := range nurses {
		codes[i] = r.Code
		require.Equal(t, domain.ProfessionNurse, r.Profession)
	}
	require.Equal(t, []string{"01001", "2A004", "75105"}, codes)

	// A commune without a tier for a profession is absent for it.
	midwives, err := store.AllForProfession(ctx, domain.ProfessionMidwife)
	require.NoError(t, err)
	require.Len(t, midwives, 1)

	dentists, err := store.AllForProfession(ctx, domain.ProfessionDentist)
	require.NoError(t, err)
	require.Empty(t, dentists)

	stats, err := store.Statistics(ctx, domain.ProfessionNurse)
	require.NoError(t, err)
	require.Equal(t, map[domain.Tier]int{domain.TierVeryUnderserved: 2, domain.TierOverserved: 1}, stats)

	stats, err = store.Statistics(ctx, domain.ProfessionDentist)
	require.NoError(t, err)
	require.Empty(t, stats)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 1, src.calls, "dataset loads once")
}

func TestStoreReturnsCopies(t *testing.T) {
	store := density.NewStore(&fakeSource{ds: sampleDataset()}, cache.Options{})
	ctx := context.Background()

	entry, err := store.Get(ctx, "01001")
	require.NoError(t, err)
	delete(entry.Zones, domain.ProfessionNurse)

	recs, err := store.AllForProfession(ctx, domain.ProfessionNurse)
	require.NoError(t, err)
	recs[0].Code = "mutated"

	entry, err = store.Get(ctx, "01001")
	require.NoError(t, err)
	require.Contains(t, entry.Zones, domain.ProfessionNurse)

	recs, err = store.AllForProfession(ctx, domain.ProfessionNurse)
	require.NoError(t, err)
	require.Equal(t, "01001", recs[0].Code)
}

func TestStoreInvalidate(t *testing.T) {
	src := &fakeSource{ds: sampleDataset()}
	store := density.NewStore(src, cache.Options{})
	ctx := context.Background()

	_, err := store.Len(ctx)
	require.NoError(t, err)

	src.ds = density.Dataset{}
	store.Invalidate()
	n, err := store.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 2, src.calls)
}

func TestStoreLoadFailure(t *testing.T) {
	boom := serrors.With(serrors.ErrSourceRead, "density file missing")
	store := density.NewStore(&fakeSource{err: boom}, cache.Options{})

	_, err := store.AllForProfession(context.Background(), domain.ProfessionNurse)
	require.ErrorIs(t, err, serrors.ErrSourceRead)
}

type fakeReader struct {
	records []domain.ZoningRecord
	err     error
}

func (f fakeReader) ZoningRecords(context.Context) ([]domain.ZoningRecord, error) {
	return f.records, f.err
}

func TestTableSource(t *testing.T) {
	ds, err := density.TableSource{Reader: fakeReader{records: sampleDataset().Records()}}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, sampleDataset(), ds)

	_, err = density.TableSource{Reader: fakeReader{}}.Load(context.Background())
	require.ErrorIs(t, err, serrors.ErrSourceRead)

	boom := errors.New("connection refused")
	_, err = density.TableSource{Reader: fakeReader{err: boom}}.Load(context.Background())
	require.ErrorIs(t, err, serrors.ErrSourceRead)
	require.ErrorIs(t, err, boom)
}
