// Package server exposes the web surface: health probes, the change-log API
// and the manual processing trigger.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/processor"
	"github.com/matchscope/matchscope/pkg/storage"
)

// Server serves the health and API endpoints over one stdlib mux.
type Server struct {
	addr      string
	proc      *processor.Processor
	db        *storage.DB
	deps      map[string]string
	probe     *http.Client
	startedAt time.Time
	http      *http.Server
}

// New builds a server on the given listen address. deps maps dependency name
// to the base URL whose /health endpoint gets probed; db may be nil when no
// change log is configured.
func New(addr string, proc *processor.Processor, db *storage.DB, deps map[string]string) *Server {
	s := &Server{
		addr:      addr,
		proc:      proc,
		db:        db,
		deps:      deps,
		probe:     &http.Client{Timeout: 5 * time.Second},
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/dependencies", s.handleDependencies)
	mux.HandleFunc("/api/changes", s.handleChanges)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/process", s.handleProcess)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// swallowed as the normal shutdown signal.
func (s *Server) ListenAndServe() error {
	utils.Log.Infof("HTTP server listening on %s", s.addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"busy":           s.proc.Busy(),
	})
}

// handleDependencies probes each configured collaborator's /health endpoint.
// The aggregate is degraded, not failing, when a dependency is down: the
// service itself still works against its snapshot.
func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type depStatus struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	statuses := make(map[string]depStatus, len(s.deps))
	overall := "healthy"
	for name, baseURL := range s.deps {
		if err := s.probeDependency(r.Context(), baseURL); err != nil {
			statuses[name] = depStatus{Status: "unreachable", Error: err.Error()}
			overall = "degraded"
			continue
		}
		statuses[name] = depStatus{Status: "healthy"}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       overall,
		"dependencies": statuses,
	})
}

func (s *Server) probeDependency(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.probe.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
