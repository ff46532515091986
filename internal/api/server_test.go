package api_test

import (
	"context"
	"densitymap/internal/api"
	"densitymap/internal/api/handler/v1handler"
	"densitymap/internal/towndensity"
	mocktowndensity "densitymap/internal/towndensity/mock"
	"densitymap/pkg/controller"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T, opts api.Options) (*httptest.Server, *mocktowndensity.MockService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mocktowndensity.NewMockService(ctrl)
	srv := httptest.NewServer(api.NewHandler(api.Deps{Deps: v1handler.Deps{TownDensity: svc}}, opts))
	t.Cleanup(srv.Close)

	return srv, svc
}

func get(t *testing.T, srv *httptest.Server, path string, header http.Header) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(body)
}

func TestNewHandler_Routes(t *testing.T) {
	srv, _ := newServer(t, api.Options{MetricsPath: "/metrics"})

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "openapi document", path: "/specs/v1.yaml", wantStatus: http.StatusOK, wantType: "application/yaml", wantContain: "/v1/town-density"},
		{name: "swagger ui", path: "/v1/docs/", wantStatus: http.StatusOK},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK},
		{name: "health", path: "/healthz", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"status":"ok"`},
		{name: "pprof disabled", path: "/debug/pprof/", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := get(t, srv, tt.path, nil)
			require.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantType != "" {
				require.Equal(t, tt.wantType, res.Header.Get("Content-Type"))
			}
			require.Contains(t, body, tt.wantContain)
			require.NotEmpty(t, res.Header.Get(controller.RequestIDHeader))
		})
	}
}

func TestNewHandler_Pprof(t *testing.T) {
	srv, _ := newServer(t, api.Options{EnablePprof: true})

	res, _ := get(t, srv, "/debug/pprof/", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewHandler_CORS(t *testing.T) {
	srv, svc := newServer(t, api.Options{AllowedOrigins: []string{"https://carte.example.fr"}})
	svc.EXPECT().Legend().Return(nil).Times(2)

	res, _ := get(t, srv, "/v1/legend", http.Header{"Origin": {"https://carte.example.fr"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "https://carte.example.fr", res.Header.Get("Access-Control-Allow-Origin"))

	res, _ = get(t, srv, "/v1/legend", http.Header{"Origin": {"https://other.example.com"}})
	require.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestNewHandler_RequestTimeout(t *testing.T) {
	srv, svc := newServer(t, api.Options{RequestTimeout: 20 * time.Millisecond})
	svc.EXPECT().GetStatistics(gomock.Any(), "infirmier").
		DoAndReturn(func(ctx context.Context, _ string) (*towndensity.Statistics, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		})

	res, body := get(t, srv, "/v1/town-density/statistics?profession=infirmier", nil)
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.JSONEq(t, `{"success":false,"error":"request timed out","code":"UPSTREAM_TIMEOUT"}`, body)
}

func TestNewServer(t *testing.T) {
	srv := api.NewServer(api.Deps{}, api.Options{
		Addr:              ":8081",
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 16,
	})
	require.Equal(t, ":8081", srv.Addr)
	require.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	require.Equal(t, 1<<16, srv.MaxHeaderBytes)
	require.NotNil(t, srv.Handler)
}
