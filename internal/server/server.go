// Package server exposes the filter over HTTP: inlet/outlet endpoints for
// the host pipeline, a health check, and a token-guarded console for config
// management.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/uniformedi/dlpgate/internal/auth"
	"github.com/uniformedi/dlpgate/internal/config"
	"github.com/uniformedi/dlpgate/internal/filter"
	"github.com/uniformedi/dlpgate/internal/redact"
	"github.com/uniformedi/dlpgate/internal/telemetry"
)

// Server wires the HTTP surface of dlpgate.
type Server struct {
	mux        *http.ServeMux
	cfgs       *config.Store
	configPath string
	engine     *filter.Engine
	admin      *auth.Admin
	telemetry  *telemetry.Provider
}

// New creates a server with all routes registered. configPath is where the
// console persists config updates; empty disables config writes.
func New(cfgs *config.Store, configPath string, engine *filter.Engine, admin *auth.Admin, tel *telemetry.Provider) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		cfgs:       cfgs,
		configPath: configPath,
		engine:     engine,
		admin:      admin,
		telemetry:  tel,
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/v1/filter/inlet", s.handleInlet)
	s.mux.HandleFunc("/v1/filter/outlet", s.handleOutlet)
	s.mux.HandleFunc("/console/config", s.handleConsoleConfig)

	return s
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	redact.Logf("dlpgate listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// writeError writes a structured error JSON.
func writeError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{Message: message, Type: typ},
	})
}
