// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the density map service.
package api

import (
	"densitymap/internal/api/handler/v1handler"
	"densitymap/internal/config"
	"densitymap/pkg/controller"
	_ "embed"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// timeoutBody is written by http.TimeoutHandler in the shared error shape.
const timeoutBody = `{"success":false,"error":"request timed out","code":"UPSTREAM_TIMEOUT"}`

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// Zero durations fall back to the net/http defaults, except RequestTimeout
// where zero disables the timeout handler.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// EnablePprof mounts the pprof handlers under /debug/pprof/.
	EnablePprof bool
	// AllowedOrigins is the CORS allow list; empty allows any origin.
	AllowedOrigins []string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		EnablePprof:       cfg.HTTP.EnablePprof,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
	}
}

type Deps struct {
	v1handler.Deps
}

// NewHandler builds the routed and wrapped handler served by NewServer:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 API routes and /healthz
// - pprof endpoints when enabled
// Requests go through recovery, CORS and logging, then the request timeout.
func NewHandler(deps Deps, opts Options) http.Handler {
	mux := http.NewServeMux()

	// prometheus metrics server
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, promhttp.Handler())
	}

	// v1 specs file
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"Town Density Map",
		"/specs/v1.yaml",
		"/v1/docs/",
	))
	// v1 api
	v1handler.New(deps.Deps).Register(mux)

	// pprof
	if opts.EnablePprof {
		mux.Handle("/debug/pprof/", controller.PprofMux())
	}

	var handler http.Handler = mux
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}
	handler = controller.WithRecovery(handler)
	handler = controller.WithCORS(opts.AllowedOrigins)(handler)

	return controller.WithLogger(handler)
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
func NewServer(deps Deps, opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(deps, opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}
