// Package server provides the HTTP dashboard server for the Kathakali head
// gesture controller.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/kathakali/internal/capture"
	"github.com/ayusman/kathakali/internal/gesture"
	"github.com/ayusman/kathakali/internal/server/api"
	"github.com/ayusman/kathakali/internal/store"
)

// Config holds the server configuration. Optional fields leave their
// routes unregistered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera

	// Status reports the current classifier status.
	Status func() gesture.Status
	// GetSettings and ApplySettings expose the live classifier tunables.
	GetSettings   func() api.Settings
	ApplySettings func(api.Settings) error
	// Recalibrate requests a new baseline from the next clean snapshot.
	Recalibrate func() error

	// Metrics serves the Prometheus registry at /metrics.
	Metrics http.Handler
}

// Server represents the HTTP server for the Kathakali application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventsHandler(s.config.Store))
	}

	if s.config.GetSettings != nil && s.config.ApplySettings != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.GetSettings, s.config.ApplySettings))
	}

	if s.config.Status != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/pose", NewPoseHandler(s.config.Status))
	}

	if s.config.Recalibrate != nil {
		s.mux.HandleFunc("/api/recalibrate", s.handleRecalibrate)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleStatus handles GET requests to /api/status with the current
// classifier status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.Status()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleRecalibrate handles POST requests to /api/recalibrate.
func (s *Server) handleRecalibrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.config.Recalibrate(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
