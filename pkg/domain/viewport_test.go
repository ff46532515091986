package domain_test

import (
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestViewportValidate(t *testing.T) {
	tests := []struct {
		name    string
		vp      domain.Viewport
		wantErr string
	}{
		{name: "paris", vp: domain.Viewport{North: 48.9, South: 48.8, East: 2.4, West: 2.2}},
		{name: "degenerate point", vp: domain.Viewport{North: 1, South: 1, East: 1, West: 1}},
		{name: "whole world", vp: domain.Viewport{North: 90, South: -90, East: 180, West: -180}},
		{name: "nan", vp: domain.Viewport{North: math.NaN()}, wantErr: "finite"},
		{name: "inf", vp: domain.Viewport{East: math.Inf(1)}, wantErr: "finite"},
		{name: "north too high", vp: domain.Viewport{North: 91}, wantErr: "latitudes"},
		{name: "west too low", vp: domain.Viewport{West: -181}, wantErr: "longitudes"},
		{name: "inverted latitudes", vp: domain.Viewport{North: 1, South: 2}, wantErr: "south"},
		{name: "inverted longitudes", vp: domain.Viewport{East: 1, West: 2}, wantErr: "west"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vp.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}
			require.ErrorIs(t, err, serrors.ErrValidation)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestViewportBound(t *testing.T) {
	vp := domain.Viewport{North: 48.9, South: 48.8, East: 2.4, West: 2.2}
	require.Equal(t, orb.Bound{Min: orb.Point{2.2, 48.8}, Max: orb.Point{2.4, 48.9}}, vp.Bound())
}
