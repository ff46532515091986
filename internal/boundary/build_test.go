package boundary_test

import (
	"context"
	"densitymap/internal/boundary"
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingProgress struct{ n int }

func (p *countingProgress) Add(n int) error {
	p.n += n

	return nil
}

func TestWriteShards(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "boundaries")
	units := []domain.AdministrativeUnit{
		unit(t, "75105", "Paris 5e Arrondissement", 2.34, 48.83),
		unit(t, "01001", "L'Abergement-Clémenciat", 4.9, 46.1),
		unit(t, "2A004", "Ajaccio", 8.7, 41.9),
		unit(t, "2B033", "Bastia", 9.4, 42.7),
	}
	progress := &countingProgress{}

	infos, err := boundary.WriteShards(context.Background(), dir, units, boundary.BuildOptions{Progress: progress})
	require.NoError(t, err)
	require.Len(t, infos, len(boundary.DefaultRanges))
	require.Equal(t, len(boundary.DefaultRanges), progress.n)

	counts := map[string]int{}
	for _, info := range infos {
		counts[info.Name] = info.Units
		_, err := os.Stat(filepath.Join(dir, info.Name))
		require.NoError(t, err)
	}
	require.Equal(t, map[string]int{
		"boundaries-01-19.json": 1,
		"boundaries-20-39.json": 2,
		"boundaries-40-59.json": 0,
		"boundaries-60-79.json": 1,
		"boundaries-80-99.json": 0,
	}, counts)

	b, err := os.ReadFile(filepath.Join(dir, "boundaries-20-39.json"))
	require.NoError(t, err)
	decoded, err := boundary.DecodeShard(b)
	require.NoError(t, err)
	require.Equal(t, "Ajaccio", decoded["2A004"].Name)
	require.Equal(t, units[2].Bound, decoded["2A004"].Bound)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dir), ".boundaries-build-*"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestWriteShardsIsDeterministic(t *testing.T) {
	units := []domain.AdministrativeUnit{
		unit(t, "01002", "b", 0, 0),
		unit(t, "01001", "a", 1, 1),
	}
	reversed := []domain.AdministrativeUnit{units[1], units[0]}

	a, err := boundary.EncodeShard(units)
	require.NoError(t, err)
	b, err := boundary.EncodeShard(reversed)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestWriteShardsRejects(t *testing.T) {
	base := []domain.AdministrativeUnit{
		unit(t, "01001", "a", 0, 0),
		unit(t, "75105", "b", 1, 1),
	}

	tests := []struct {
		name  string
		units []domain.AdministrativeUnit
		opts  boundary.BuildOptions
		want  string
	}{
		{
			name:  "duplicate code",
			units: append(base, unit(t, "01001", "again", 2, 2)),
			want:  "duplicate codes",
		},
		{
			name:  "uncovered code",
			units: base,
			opts:  boundary.BuildOptions{Ranges: []boundary.Range{{From: 1, To: 19}}},
			want:  "outside every shard range",
		},
		{
			name:  "overlapping ranges",
			units: base,
			opts:  boundary.BuildOptions{Ranges: []boundary.Range{{From: 1, To: 80}, {From: 75, To: 99}}},
			want:  "overlap",
		},
		{
			name:  "shard too large",
			units: base,
			opts:  boundary.BuildOptions{MaxShardBytes: 64},
			want:  "above the 64 bytes limit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "boundaries")
			require.NoError(t, os.MkdirAll(dir, 0o755))
			marker := filepath.Join(dir, "boundaries-01-19.json")
			require.NoError(t, os.WriteFile(marker, []byte(`{}`), 0o600))

			_, err := boundary.WriteShards(context.Background(), dir, tt.units, tt.opts)
			require.ErrorIs(t, err, serrors.ErrValidation)
			require.Contains(t, err.Error(), tt.want)

			// The previous shards are left untouched.
			b, err := os.ReadFile(marker)
			require.NoError(t, err)
			require.Equal(t, `{}`, string(b))
		})
	}
}

func TestWriteShardsReplacesPreviousBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "boundaries")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	stale := filepath.Join(dir, "boundaries-00-00.json")
	require.NoError(t, os.WriteFile(stale, []byte(`{}`), 0o600))

	_, err := boundary.WriteShards(context.Background(), dir,
		[]domain.AdministrativeUnit{unit(t, "01001", "a", 0, 0)}, boundary.BuildOptions{})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir + ".old")
	require.True(t, os.IsNotExist(err))
}
