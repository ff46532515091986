// Package controller contains the HTTP middlewares and helpers shared by the
// API server.
//
// Middlewares:
//   - WithCORS: read-only CORS policy for map clients, answers preflights.
//   - WithLogger: request ID, request-scoped logger and access log.
//   - WithRecovery: turns handler panics into the JSON error shape.
//
// Helpers:
//   - WriteError: writes {"success": false, "error": ..., "code": ...}.
//   - PprofMux: net/http/pprof handlers, mounted under /debug/pprof/.
package controller
