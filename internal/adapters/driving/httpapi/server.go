// Package httpapi exposes the sync pipeline over HTTP: an on-demand
// trigger endpoint and a health check.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driving"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// shutdownTimeout bounds the graceful drain on exit.
const shutdownTimeout = 10 * time.Second

// Server serves the trigger endpoints.
type Server struct {
	orchestrator driving.SyncOrchestrator
	srv          *http.Server
}

// NewServer creates the HTTP server on addr.
func NewServer(addr string, orchestrator driving.SyncOrchestrator) *Server {
	s := &Server{orchestrator: orchestrator}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/synctickets", s.handleSync)
	mux.HandleFunc("/ping", s.handlePing)
	return mux
}

// Run serves until ctx is cancelled, then drains gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// handleSync triggers a synchronisation run. Sync runs are long; the
// response is written only once the run completes, mirroring how
// operators invoke it with curl and wait for the summary.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mode := domain.SyncMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ModeIncremental
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid sync mode: "+string(mode))
		return
	}

	logger.Info("http: sync triggered (mode %s)", mode)
	summary, err := s.orchestrator.Run(r.Context(), driving.RunOptions{Mode: mode})
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error("http: sync failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handlePing is the health check.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("http: writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
