package density_test

import (
	"context"
	"densitymap/internal/density"
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()

	body := header
	for _, r := range rows {
		body += r + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestConsolidateScenarioA(t *testing.T) {
	ds := density.Consolidate([]domain.ZoningRecord{
		{Code: "75105", Name: "Paris 5e Arrondissement", Profession: domain.ProfessionNurse, Tier: domain.TierVeryUnderserved},
	})

	path := filepath.Join(t.TempDir(), "density.json")
	require.NoError(t, density.WriteFile(path, ds))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"75105":{"name":"Paris 5e Arrondissement","zones":{"infirmier":"Zone tres sous-dotee"}}}`,
		string(b))
}

func TestConsolidateGroupsByCode(t *testing.T) {
	ds := density.Consolidate([]domain.ZoningRecord{
		{Code: "01001", Name: "L'Abergement-Clémenciat", Profession: domain.ProfessionNurse, Tier: domain.TierIntermediate},
		{Code: "01001", Name: "Abergement", Profession: domain.ProfessionMidwife, Tier: domain.TierUnderserved},
		{Code: "01001", Name: "x", Profession: domain.ProfessionNurse, Tier: domain.TierOverserved},
		{Code: "01002", Name: "L'Abergement-de-Varey", Profession: domain.ProfessionMidwife, Tier: domain.TierVeryUnderserved},
	})

	want := density.Dataset{
		"01001": {Name: "L'Abergement-Clémenciat", Zones: map[domain.Profession]domain.Tier{
			domain.ProfessionNurse:   domain.TierIntermediate,
			domain.ProfessionMidwife: domain.TierUnderserved,
		}},
		"01002": {Name: "L'Abergement-de-Varey", Zones: map[domain.Profession]domain.Tier{
			domain.ProfessionMidwife: domain.TierVeryUnderserved,
		}},
	}
	if diff := cmp.Diff(want, ds); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}

	records := ds.Records()
	require.Len(t, records, 3)
	require.Equal(t, "01001", records[0].Code)
	require.Equal(t, domain.ProfessionNurse, records[0].Profession)
	require.Equal(t, domain.ProfessionMidwife, records[1].Profession)
	require.Equal(t, "01002", records[2].Code)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	sources := density.SourceFiles{
		domain.ProfessionNurse: writeSource(t, dir, "infirmiers.csv",
			"75105;Paris 5e Arrondissement;Zone tres sous-dotee",
			"01001;L'Abergement-Clémenciat;Zone intermédiaire"),
		domain.ProfessionMidwife: writeSource(t, dir, "sages-femmes.csv",
			"01001;L'Abergement-Clémenciat;N/A - résultat non disponible",
			"69123;Lyon;Zone sur-dotée"),
	}

	ds, report, err := density.Build(context.Background(), sources, density.EncodingUTF8)
	require.NoError(t, err)
	require.Equal(t, 3, report.Kept)
	require.Equal(t, 1, report.NotAvailable)
	require.Len(t, ds, 3)
	require.NotContains(t, ds["01001"].Zones, domain.ProfessionMidwife)
	require.Equal(t, domain.TierOverserved, ds["69123"].Zones[domain.ProfessionMidwife])
}

func TestBuildFailures(t *testing.T) {
	_, _, err := density.Build(context.Background(), nil, "")
	require.ErrorIs(t, err, serrors.ErrValidation)

	_, _, err = density.Build(context.Background(), density.SourceFiles{
		domain.ProfessionNurse: filepath.Join(t.TempDir(), "missing.csv"),
	}, "")
	require.ErrorIs(t, err, serrors.ErrSourceRead)
}

func TestParseSourceFiles(t *testing.T) {
	files, err := density.ParseSourceFiles(map[string]string{"infirmier": "a.csv", "sage-femme": "b.csv"})
	require.NoError(t, err)
	require.Equal(t, density.SourceFiles{domain.ProfessionNurse: "a.csv", domain.ProfessionMidwife: "b.csv"}, files)

	_, err = density.ParseSourceFiles(map[string]string{"plombier": "c.csv"})
	require.ErrorIs(t, err, serrors.ErrValidation)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := density.ReadFile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, serrors.ErrSourceRead)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"01001":{"name":"x","zones":{"infirmier":"Zone inconnue"}}}`), 0o600))
	_, err = density.ReadFile(bad)
	require.ErrorIs(t, err, serrors.ErrSourceRead)

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"01001":{"name":"x","zones":{"plombier":"Hors zonage"}}}`), 0o600))
	_, err = density.ReadFile(unknown)
	require.ErrorIs(t, err, serrors.ErrSourceRead)
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "density.json")
	first := density.Dataset{"01001": {Name: "a", Zones: map[domain.Profession]domain.Tier{domain.ProfessionNurse: domain.TierVigilance}}}
	second := density.Dataset{"01002": {Name: "b", Zones: map[domain.Profession]domain.Tier{domain.ProfessionNurse: domain.TierOutsideZoning}}}

	require.NoError(t, density.WriteFile(path, first))
	require.NoError(t, density.WriteFile(path, second))

	got, err := density.ReadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}
