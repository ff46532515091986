package controller

import (
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// WithRecovery recovers handler panics, logs them with the stack trace and
// answers 500 with the JSON error shape. http.ErrAbortHandler is re-raised
// so the server can abort the connection.
func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint: errorlint, err113
				panic(rec)
			}

			logger.Error(r.Context(), "handler panicked",
				zap.String("panic", fmt.Sprint(rec)),
				zap.ByteString("stack", debug.Stack()))
			WriteError(w, http.StatusInternalServerError, serrors.ErrInternal.Error(), "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
