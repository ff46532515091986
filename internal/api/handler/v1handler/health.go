package v1handler

import (
	"densitymap/pkg/logger"
	"net/http"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Health serves GET /healthz. Boundaries that are not loaded yet do not
// fail the check since the store loads lazily; an unreachable database does.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK

	var dbErr error
	if h.deps.Database != nil {
		if dbErr = h.deps.Database.Ping(ctx); dbErr != nil {
			logger.Warn(ctx, "database ping failed", zap.Error(dbErr))
			status = http.StatusServiceUnavailable
		}
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) {
			if status == http.StatusOK {
				e.Str("ok")
			} else {
				e.Str("degraded")
			}
		})
		if h.deps.Boundaries != nil {
			st := h.deps.Boundaries.Status()
			e.Field("boundaries", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("loaded", func(e *jx.Encoder) { e.Bool(st.Loaded) })
					e.Field("units", func(e *jx.Encoder) { e.Int(st.Units) })
					e.Field("failedShards", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							for _, s := range st.FailedShards {
								e.Str(s)
							}
						})
					})
				})
			})
		}
		if h.deps.Database != nil {
			e.Field("database", func(e *jx.Encoder) {
				if dbErr != nil {
					e.Str("unreachable")
				} else {
					e.Str("ok")
				}
			})
		}
	})
	writeJSON(w, status, &e)
}
