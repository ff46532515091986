package v1handler_test

import (
	"densitymap/internal/api/handler/v1handler"
	"densitymap/internal/towndensity"
	mocktowndensity "densitymap/internal/towndensity/mock"
	"densitymap/pkg/domain"
	"densitymap/pkg/serrors"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func newMux(t *testing.T) (*http.ServeMux, *mocktowndensity.MockService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mocktowndensity.NewMockService(ctrl)
	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{TownDensity: svc}).Register(mux)

	return mux, svc
}

func serve(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), rec.Body.String())

	return got
}

func TestGetTownDensity(t *testing.T) {
	mux, svc := newMux(t)

	p := domain.TierUnderserved.Presentation()
	svc.EXPECT().GetTownDensity(gomock.Any(), "infirmier", towndensity.Filters{
		Tier:     domain.TierUnderserved,
		Viewport: &domain.Viewport{North: 46, South: 45, East: 6, West: 4.5},
		Limit:    1,
	}).Return(&towndensity.Result{
		Profession: domain.ProfessionNurse,
		Towns: []domain.DensityResult{{
			Code:         "01001",
			Name:         "L'Abergement-Clémenciat",
			Profession:   domain.ProfessionNurse,
			Tier:         domain.TierUnderserved,
			Color:        p.Color,
			Label:        p.Label,
			DensityScore: p.Score,
			Geometry:     square(4.9, 46),
		}},
		Count: 1,
		Meta: &towndensity.Meta{
			RequestedLimit: 1,
			ActualLimit:    1,
			Total:          3,
			Note:           "showing 1 of 3 towns",
		},
	}, nil)

	rec := serve(mux, "/v1/town-density?profession=infirmier&tier=zone+sous-dotee&north=46&south=45&east=6&west=4.5&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	want := map[string]any{
		"profession": "infirmier",
		"towns": []any{map[string]any{
			"code":         "01001",
			"name":         "L'Abergement-Clémenciat",
			"tier":         "Zone sous-dotee",
			"color":        p.Color,
			"label":        p.Label,
			"densityScore": float64(p.Score),
			"geometry": map[string]any{
				"type": "Polygon",
				"coordinates": []any{[]any{
					[]any{4.9, float64(46)},
					[]any{5.9, float64(46)},
					[]any{5.9, float64(47)},
					[]any{4.9, float64(47)},
					[]any{4.9, float64(46)},
				}},
			},
		}},
		"count": float64(1),
		"meta": map[string]any{
			"requestedLimit": float64(1),
			"actualLimit":    float64(1),
			"total":          float64(3),
			"note":           "showing 1 of 3 towns",
		},
	}
	if diff := cmp.Diff(want, decodeJSON(t, rec)); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTownDensity_EmptyResultHasNoMeta(t *testing.T) {
	mux, svc := newMux(t)
	svc.EXPECT().GetTownDensity(gomock.Any(), "medecin-generaliste", towndensity.Filters{}).
		Return(&towndensity.Result{Profession: domain.ProfessionGeneralPractitioner}, nil)

	rec := serve(mux, "/v1/town-density?profession=medecin-generaliste")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"profession":"medecin-generaliste","towns":[],"count":0}`, rec.Body.String())
}

func TestGetTownDensity_RejectsParameters(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "partial viewport", target: "/v1/town-density?profession=infirmier&north=46&south=45"},
		{name: "viewport not a number", target: "/v1/town-density?profession=infirmier&north=a&south=45&east=6&west=4"},
		{name: "inverted viewport", target: "/v1/town-density?profession=infirmier&north=40&south=45&east=6&west=4"},
		{name: "negative limit", target: "/v1/town-density?profession=infirmier&limit=-1"},
		{name: "limit not a number", target: "/v1/town-density?profession=infirmier&limit=ten"},
		{name: "unknown tier", target: "/v1/town-density?profession=infirmier&tier=zone+rouge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, _ := newMux(t)

			rec := serve(mux, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, serrors.ErrValidation.Error(), decodeError(t, rec).Code)
		})
	}
}

func TestGetTownDensity_ServiceValidationError(t *testing.T) {
	mux, svc := newMux(t)
	svc.EXPECT().GetTownDensity(gomock.Any(), "plombier", gomock.Any()).
		Return(nil, serrors.With(serrors.ErrValidation, `invalid profession "plombier"`))

	rec := serve(mux, "/v1/town-density?profession=plombier")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, `invalid profession "plombier"`, decodeError(t, rec).Error)
}

func TestGetStatistics(t *testing.T) {
	mux, svc := newMux(t)
	svc.EXPECT().GetStatistics(gomock.Any(), "infirmier").Return(&towndensity.Statistics{
		Profession: domain.ProfessionNurse,
		Tiers: map[domain.Tier]int{
			domain.TierOverserved:      1,
			domain.TierVeryUnderserved: 2,
		},
		Total: 3,
	}, nil)

	rec := serve(mux, "/v1/town-density/statistics?profession=infirmier")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t,
		`{"profession":"infirmier","tiers":{"Zone tres sous-dotee":2,"Zone sur-dotee":1},"total":3}`,
		rec.Body.String())
}

func TestGetByTier(t *testing.T) {
	mux, svc := newMux(t)
	svc.EXPECT().GetByTier(gomock.Any(), "medecin-generaliste", domain.TierPriorityIntervention, 10).
		Return(&towndensity.Result{Profession: domain.ProfessionGeneralPractitioner}, nil)

	rec := serve(mux, "/v1/town-density/tiers/Zone%20d'intervention%20prioritaire?profession=medecin-generaliste&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "medecin-generaliste", decodeJSON(t, rec)["profession"])
}

func TestGetByTier_UnknownTier(t *testing.T) {
	mux, _ := newMux(t)

	rec := serve(mux, "/v1/town-density/tiers/zone-rouge?profession=infirmier")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeError(t, rec).Error, "allowed values")
}

func TestGetBoundaries(t *testing.T) {
	t.Run("by codes", func(t *testing.T) {
		mux, svc := newMux(t)
		svc.EXPECT().GetBoundaries(gomock.Any(), towndensity.BoundaryQuery{Codes: []string{"01001", "75105"}}).
			Return(&towndensity.Boundaries{
				Units: []domain.AdministrativeUnit{{Code: "01001", Name: "L'Abergement-Clémenciat", Geometry: square(4.9, 46)}},
				Total: 1,
			}, nil)

		rec := serve(mux, "/v1/commune-boundaries?codes=01001,%2075105,,01001")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON(t, rec)
		require.InDelta(t, 1, got["count"], 0)
		require.InDelta(t, 1, got["total"], 0)
		communes, ok := got["communes"].([]any)
		require.True(t, ok)
		require.Len(t, communes, 1)
		require.Equal(t, "01001", communes[0].(map[string]any)["code"])
	})

	t.Run("paged", func(t *testing.T) {
		mux, svc := newMux(t)
		svc.EXPECT().GetBoundaries(gomock.Any(), towndensity.BoundaryQuery{Offset: 20, Limit: 10}).
			Return(&towndensity.Boundaries{Total: 25}, nil)

		rec := serve(mux, "/v1/commune-boundaries?offset=20&limit=10")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"communes":[],"count":0,"total":25}`, rec.Body.String())
	})

	t.Run("bad offset", func(t *testing.T) {
		mux, _ := newMux(t)

		rec := serve(mux, "/v1/commune-boundaries?offset=x")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("source read error", func(t *testing.T) {
		mux, svc := newMux(t)
		svc.EXPECT().GetBoundaries(gomock.Any(), gomock.Any()).
			Return(nil, serrors.With(serrors.ErrSourceRead, "no boundary shard could be loaded"))

		rec := serve(mux, "/v1/commune-boundaries")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, serrors.ErrSourceRead.Error(), decodeError(t, rec).Code)
	})
}

func TestGetLegend(t *testing.T) {
	mux, svc := newMux(t)
	svc.EXPECT().Legend().Return([]towndensity.LegendEntry{
		{Tier: domain.TierVeryUnderserved, Presentation: domain.TierVeryUnderserved.Presentation()},
	})

	rec := serve(mux, "/v1/legend")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"tiers":[{"tier":"Zone tres sous-dotee","label":"Zone très sous-dotée","color":"#d7191c","densityScore":5}]}`,
		rec.Body.String())
}
