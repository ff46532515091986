package boundary_test

import (
	"densitymap/pkg/domain"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func unit(t *testing.T, code, name string, x, y float64) domain.AdministrativeUnit {
	t.Helper()

	u, err := domain.NewAdministrativeUnit(code, name, square(x, y, 0.1))
	require.NoError(t, err)

	return u
}
