package v1handler_test

import (
	"context"
	"densitymap/internal/api/handler/v1handler"
	"densitymap/internal/boundary"
	mocktowndensity "densitymap/internal/towndensity/mock"
	"densitymap/pkg/serrors"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.False(t, body.Success)

	return body
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   serrors.ErrInternal.Error(),
			wantMsg:    "internal error",
		},
		{
			name:       "validation",
			err:        serrors.With(serrors.ErrValidation, `invalid profession "plombier"`),
			wantStatus: http.StatusBadRequest,
			wantCode:   serrors.ErrValidation.Error(),
			wantMsg:    `invalid profession "plombier"`,
		},
		{
			name: "wrapped validation keeps the semantic message",
			err: fmt.Errorf("could not aggregate town density: %w",
				serrors.With(serrors.ErrValidation, "viewport south 50 is above north 40")),
			wantStatus: http.StatusBadRequest,
			wantCode:   serrors.ErrValidation.Error(),
			wantMsg:    "viewport south 50 is above north 40",
		},
		{
			name:       "bare not found sentinel",
			err:        serrors.ErrDataNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   serrors.ErrDataNotFound.Error(),
			wantMsg:    "resource not found",
		},
		{
			name:       "source read hides the cause",
			err:        serrors.Wrap(serrors.ErrSourceRead, errors.New("open data/density.json: permission denied"), "loading density"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   serrors.ErrSourceRead.Error(),
			wantMsg:    "reference data could not be loaded",
		},
		{
			name:       "upstream timeout",
			err:        serrors.KindOnly(serrors.ErrUpstreamTimeout),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   serrors.ErrUpstreamTimeout.Error(),
			wantMsg:    "request timed out",
		},
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("could not get boundaries: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   serrors.ErrUpstreamTimeout.Error(),
			wantMsg:    "request timed out",
		},
		{
			name:       "unavailable",
			err:        serrors.With(serrors.ErrUnavailable, "no database configured"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   serrors.ErrUnavailable.Error(),
			wantMsg:    "service unavailable",
		},
	}

	h := v1handler.New(v1handler.Deps{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.NewError(context.Background(), rec, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeError(t, rec)
			require.Equal(t, tt.wantCode, body.Code)
			require.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestNewError_Canceled(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	rec := httptest.NewRecorder()

	h.NewError(context.Background(), rec, fmt.Errorf("aggregate: %w", context.Canceled))
	require.Equal(t, v1handler.StatusClientClosedRequest, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, serrors.ErrUnavailable.Error(), body.Code)
	require.Equal(t, "request canceled", body.Error)
}

type fakeStatus boundary.Status

func (f fakeStatus) Status() boundary.Status { return boundary.Status(f) }

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		deps       v1handler.Deps
		wantStatus int
		want       map[string]any
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			want:       map[string]any{"status": "ok"},
		},
		{
			name: "boundaries partially loaded",
			deps: v1handler.Deps{
				Boundaries: fakeStatus{Loaded: true, Units: 12, FailedShards: []string{"boundaries-20-69.json"}},
				Database:   fakePinger{},
			},
			wantStatus: http.StatusOK,
			want: map[string]any{
				"status": "ok",
				"boundaries": map[string]any{
					"loaded":       true,
					"units":        float64(12),
					"failedShards": []any{"boundaries-20-69.json"},
				},
				"database": "ok",
			},
		},
		{
			name:       "database down",
			deps:       v1handler.Deps{Database: fakePinger{err: errors.New("connection refused")}},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]any{"status": "degraded", "database": "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			v1handler.New(tt.deps).Register(mux)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{TownDensity: mocktowndensity.NewMockService(ctrl)}).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/legend", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
