// Package httpapi is the loopback control surface the desktop frontend
// talks to. Menu actions map onto its endpoints: restart/stop mutate the
// supervisor, status re-probes the worker, events streams state frames.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caw-hq/caw-desktop/pkg/config"
	"github.com/caw-hq/caw-desktop/pkg/shared/defs"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/httpHelpers"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/supervisor"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/windowfx"
)

// Supervisor is the slice of the sidecar supervisor the control API needs.
type Supervisor interface {
	Restart(ctx context.Context) error
	Stop() error
	Status(ctx context.Context) supervisor.Status
}

// Journal provides read access to recorded lifecycle events.
type Journal interface {
	Recent(n int) ([]defs.StateEvent, error)
}

type Server struct {
	cfg     config.ControlConfig
	sup     Supervisor
	journal Journal      // optional
	events  http.Handler // optional websocket feed
}

func New(cfg config.ControlConfig, sup Supervisor, journal Journal, events http.Handler) *Server {
	return &Server{cfg: cfg, sup: sup, journal: journal, events: events}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	if s.cfg.AuthMode == config.AuthToken {
		r.Use(TokenAuth(s.cfg.TokenSecret))
	}

	// Liveness of the shell itself, not the worker.
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpHelpers.WriteOutput(w, defs.OpResult{Msg: "ok"})
	})

	r.Get("/status", s.handleStatus)
	r.Post("/restart", s.handleRestart)
	r.Post("/stop", s.handleStop)
	r.Get("/window", s.handleWindow)

	if s.journal != nil {
		r.Get("/journal", s.handleJournal)
	}
	if s.events != nil {
		r.Get("/events", s.events.ServeHTTP)
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := s.sup.Status(r.Context())
	httpHelpers.WriteTimings(w, httpHelpers.Timings{"check-time": time.Since(start)})
	httpHelpers.WriteOutput(w, defs.WorkerStatus{Running: status.Running})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := s.sup.Restart(r.Context())
	httpHelpers.WriteTimings(w, httpHelpers.Timings{"restart-time": time.Since(start)})

	switch {
	case err == nil:
		httpHelpers.WriteOutput(w, defs.OpResult{Msg: "Worker restarted"})
	case errors.Is(err, supervisor.ErrReadinessTimeout):
		// The worker is live and registered; only the readiness wait ran
		// out. Report "still starting", not failure.
		httpHelpers.WriteJSON(w, http.StatusAccepted, defs.OpResult{Msg: "Worker is still starting"})
	default:
		httpHelpers.WriteError(w, http.StatusInternalServerError, "Error restarting worker")
	}
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	_ = s.sup.Stop()
	httpHelpers.WriteTimings(w, httpHelpers.Timings{"stop-time": time.Since(start)})
	httpHelpers.WriteOutput(w, defs.OpResult{Msg: "Worker stopped"})
}

func (s *Server) handleWindow(w http.ResponseWriter, _ *http.Request) {
	hints, err := windowfx.Hints()
	if err != nil {
		// No adjustments on this platform; the zero value says so.
		httpHelpers.WriteOutput(w, defs.WindowHints{})
		return
	}
	httpHelpers.WriteOutput(w, hints)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	events, err := s.journal.Recent(50)
	if err != nil {
		httpHelpers.WriteError(w, http.StatusInternalServerError, "Error reading journal")
		return
	}
	if events == nil {
		events = []defs.StateEvent{}
	}
	httpHelpers.WriteOutput(w, events)
}
