package controller_test

import (
	"densitymap/pkg/controller"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	})

	rec := httptest.NewRecorder()
	controller.WithRecovery(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	res := rec.Result()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.JSONEq(t, `{"success":false,"error":"internal server error","code":"INTERNAL"}`, rec.Body.String())
}

func TestWithRecovery_AbortHandler(t *testing.T) {
	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		controller.WithRecovery(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	controller.WriteError(rec, http.StatusBadRequest, "VALIDATION_ERROR", `invalid profession "x"`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"success":false,"error":"invalid profession \"x\"","code":"VALIDATION_ERROR"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	controller.WriteError(rec, http.StatusNotFound, "", "not found")
	require.JSONEq(t, `{"success":false,"error":"not found"}`, rec.Body.String())
}
