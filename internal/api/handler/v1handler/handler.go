// Package v1handler implements the /v1 HTTP endpoints of the density map.
package v1handler

import (
	"context"
	"densitymap/internal/boundary"
	"densitymap/internal/towndensity"
	"densitymap/pkg/controller"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"errors"
	"net/http"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// StatusReporter reports the boundary snapshot currently served.
type StatusReporter interface {
	Status() boundary.Status
}

// Pinger checks a database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the handlers. Boundaries and Database are
// optional and only feed /healthz.
type Deps struct {
	TownDensity towndensity.Service
	Boundaries  StatusReporter
	Database    Pinger
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/town-density", h.GetTownDensity)
	mux.HandleFunc("GET /v1/town-density/statistics", h.GetStatistics)
	mux.HandleFunc("GET /v1/town-density/tiers/{tier}", h.GetByTier)
	mux.HandleFunc("GET /v1/commune-boundaries", h.GetBoundaries)
	mux.HandleFunc("GET /v1/legend", h.GetLegend)
	mux.HandleFunc("GET /healthz", h.Health)
}

// StatusClientClosedRequest answers a request whose context was canceled
// before a result was produced.
const StatusClientClosedRequest = 499

// NewError writes err in the shared error shape. Server side kinds are
// logged and their details hidden from the caller.
func (h *Handler) NewError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Debug(ctx, "request canceled", zap.Error(err))
		controller.WriteError(w, StatusClientClosedRequest, serrors.ErrUnavailable.Error(), "request canceled")

		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = serrors.Wrap(serrors.ErrUpstreamTimeout, err, "request timed out")
	}

	kind := serrors.KindOf(err)
	status, message := http.StatusInternalServerError, "internal error"
	switch kind {
	case serrors.ErrValidation:
		status, message = http.StatusBadRequest, publicMessage(err, "invalid request")
	case serrors.ErrDataNotFound:
		status, message = http.StatusNotFound, publicMessage(err, "resource not found")
	case serrors.ErrConflict:
		status, message = http.StatusConflict, publicMessage(err, "conflict")
	case serrors.ErrUpstreamTimeout:
		status, message = http.StatusGatewayTimeout, "request timed out"
	case serrors.ErrUnavailable:
		status, message = http.StatusServiceUnavailable, "service unavailable"
	case serrors.ErrSourceRead:
		message = "reference data could not be loaded"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err), zap.String("code", kind.Error()))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err), zap.String("code", kind.Error()))
	}
	controller.WriteError(w, status, kind.Error(), message)
}

// publicMessage drops the wrapping context added by the service layer and
// keeps the semantic error's own text.
func publicMessage(err error, fallback string) string {
	var se *serrors.Error
	if errors.As(err, &se) && se.Error() != se.Kind().Error() {
		return se.Error()
	}

	return fallback
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
