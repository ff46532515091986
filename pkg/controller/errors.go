package controller

import (
	"net/http"

	"github.com/go-faster/jx"
)

// WriteError writes the JSON error body shared by every endpoint:
//
//	{"success": false, "error": "<message>", "code": "<KIND>"}
func WriteError(w http.ResponseWriter, status int, code, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.Field("success", func(e *jx.Encoder) { e.Bool(false) })
	e.Field("error", func(e *jx.Encoder) { e.Str(message) })
	if code != "" {
		e.Field("code", func(e *jx.Encoder) { e.Str(code) })
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
