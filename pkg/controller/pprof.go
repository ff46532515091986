package controller

import (
	"net/http"
	"net/http/pprof"
)

// PprofPrefix is where PprofMux serves its handlers. pprof.Index resolves
// named profiles (heap, goroutine, ...) relative to this exact prefix.
const PprofPrefix = "/debug/pprof/"

// PprofMux returns a ServeMux serving net/http/pprof under PprofPrefix.
func PprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PprofPrefix, pprof.Index)
	mux.HandleFunc("GET "+PprofPrefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc("GET "+PprofPrefix+"profile", pprof.Profile)
	mux.HandleFunc("GET "+PprofPrefix+"symbol", pprof.Symbol)
	mux.HandleFunc("GET "+PprofPrefix+"trace", pprof.Trace)

	return mux
}
