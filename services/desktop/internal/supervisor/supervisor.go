// Package supervisor owns the caw worker sidecar: it spawns the process,
// tracks the single live handle, polls it to readiness, and guarantees the
// worker never outlives the application.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caw-hq/caw-desktop/pkg/config"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/probe"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/storage"
)

var (
	// ErrSpawn means the worker binary could not be located or executed.
	ErrSpawn = errors.New("failed to spawn worker")

	// ErrReadinessTimeout means the worker is running and registered but
	// did not answer its health endpoint within the attempt bound. It is
	// "still starting", not failed; nothing has been rolled back.
	ErrReadinessTimeout = errors.New("worker did not become ready in time")

	// ErrShutdown is returned by operations invoked after Shutdown.
	ErrShutdown = errors.New("supervisor is shut down")
)

// Worker lifecycle states as observed by the supervisor.
const (
	StateStarting = "starting"
	StateReady    = "ready"
	StateUnready  = "unready"
	StateStopped  = "stopped"
)

// Event is one state transition, delivered to the notify hook.
type Event struct {
	State  string
	Pid    int
	Detail string
}

// Prober reports whether the worker currently answers its health endpoint.
type Prober interface {
	Probe(ctx context.Context) probe.Result
}

// Status is a point-in-time view: Running reflects a live probe, not the
// registry's contents.
type Status struct {
	Running bool
}

// Supervisor orchestrates the worker sidecar. Restart, Stop and Shutdown
// are serialized by an operation mutex so overlapping calls queue rather
// than interleave; the registry's own lock additionally guarantees that at
// most one caller ever terminates a given OS process.
type Supervisor struct {
	cfg    config.SupervisorConfig
	log    *slog.Logger
	prober Prober
	notify func(Event)

	registry Registry

	opMu sync.Mutex
	// generation is bumped on every Restart/Stop/Shutdown; background polls
	// carry the generation they were started under and exit once superseded.
	generation atomic.Uint64
	down       atomic.Bool
	pollWG     sync.WaitGroup
}

// New builds a supervisor. notify may be nil.
func New(cfg config.SupervisorConfig, log *slog.Logger, prober Prober, notify func(Event)) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		cfg:    cfg,
		log:    log,
		prober: prober,
		notify: notify,
	}
}

func (s *Supervisor) emit(e Event) {
	if s.notify != nil {
		s.notify(e)
	}
}

func (s *Supervisor) workerArgs() []string {
	dbPath := s.cfg.DBPath
	if dbPath == "" {
		dbPath = storage.WorkflowsDBPath()
	}
	return []string{
		"--server",
		"--transport", "http",
		"--port", strconv.Itoa(s.cfg.Port),
		"--db", dbPath,
	}
}

// spawn starts a fresh worker process. The caller owns the returned handle
// until it is Put into the registry.
func (s *Supervisor) spawn() (*WorkerHandle, error) {
	args := s.workerArgs()
	cmd := exec.Command(s.cfg.WorkerProcess, args...)
	// Forward worker output to the shell's stdio.
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	s.log.Info("Spawned worker", "pid", cmd.Process.Pid, "args", args)
	return &WorkerHandle{cmd: cmd}, nil
}

// Start spawns the worker and launches a background readiness poll. It
// returns as soon as the process is running; readiness (or its timeout) is
// reported through the notify hook so application startup never blocks on
// the worker.
func (s *Supervisor) Start(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.down.Load() {
		return ErrShutdown
	}

	h, err := s.spawn()
	if err != nil {
		return err
	}
	s.registry.Put(h)
	s.emit(Event{State: StateStarting, Pid: h.Pid()})

	gen := s.generation.Load()
	s.pollWG.Add(1)
	go func() {
		defer s.pollWG.Done()
		s.pollReadiness(ctx, gen, h.Pid(), s.cfg.StartAttempts, s.cfg.StartInterval)
	}()
	return nil
}

// pollReadiness probes until Ready, the attempt bound, or supersession by a
// newer generation.
func (s *Supervisor) pollReadiness(ctx context.Context, gen uint64, pid, attempts int, interval time.Duration) {
	for i := 0; i < attempts; i++ {
		if s.generation.Load() != gen {
			s.log.Debug("Readiness poll superseded", "pid", pid, "attempt", i)
			return
		}
		if s.prober.Probe(ctx) == probe.Ready {
			s.log.Info("Worker is ready", "pid", pid, "attempt", i+1)
			s.emit(Event{State: StateReady, Pid: pid})
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
	s.log.Warn("Worker health check timed out", "pid", pid, "attempts", attempts)
	s.emit(Event{State: StateUnready, Pid: pid, Detail: "health check timed out"})
}

// Restart atomically replaces the worker: take and terminate the current
// handle if any, wait for the port to settle, spawn a replacement, then
// wait for readiness with fewer attempts than initial start. On
// ErrReadinessTimeout the new worker is still running and registered.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.down.Load() {
		return ErrShutdown
	}

	// Supersede any in-flight readiness poll before touching the slot.
	s.generation.Add(1)

	if old := s.registry.Take(); old != nil {
		pid := old.Pid()
		old.Terminate()
		s.emit(Event{State: StateStopped, Pid: pid, Detail: "restarting"})
		// Let the OS release the bound port before rebinding. The settle
		// and the spawn below run to completion even under cancellation,
		// so the old worker is never left dead with no replacement.
		time.Sleep(s.cfg.SettleDelay)
	}

	h, err := s.spawn()
	if err != nil {
		return err
	}
	s.registry.Put(h)
	s.emit(Event{State: StateStarting, Pid: h.Pid()})

	for i := 0; i < s.cfg.RestartAttempts; i++ {
		if s.prober.Probe(ctx) == probe.Ready {
			s.log.Info("Worker is ready after restart", "pid", h.Pid(), "attempt", i+1)
			s.emit(Event{State: StateReady, Pid: h.Pid()})
			return nil
		}
		select {
		case <-ctx.Done():
			// The new worker is live and registered; only the readiness
			// wait was cut short, which callers treat like a timeout.
			s.emit(Event{State: StateUnready, Pid: h.Pid(), Detail: "still starting"})
			return fmt.Errorf("%w: %v", ErrReadinessTimeout, ctx.Err())
		case <-time.After(s.cfg.RestartInterval):
		}
	}
	s.emit(Event{State: StateUnready, Pid: h.Pid(), Detail: "still starting"})
	return ErrReadinessTimeout
}

// Stop terminates the worker if one is registered. Stopping an already
// stopped supervisor succeeds trivially.
func (s *Supervisor) Stop() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.stopLocked("stop requested")
	return nil
}

func (s *Supervisor) stopLocked(detail string) {
	s.generation.Add(1)
	if h := s.registry.Take(); h != nil {
		pid := h.Pid()
		h.Terminate()
		s.log.Info("Stopped worker", "pid", pid)
		s.emit(Event{State: StateStopped, Pid: pid, Detail: detail})
	}
}

// Status re-probes the worker's health endpoint. It deliberately does not
// consult the registry: a registered but unresponsive worker is not running
// as far as the application is concerned.
func (s *Supervisor) Status(ctx context.Context) Status {
	return Status{Running: s.prober.Probe(ctx) == probe.Ready}
}

// Shutdown is the terminal stop, called synchronously from the exit path so
// the worker cannot be orphaned. It shares the operation mutex with
// Restart/Stop, so an exit during an in-flight restart waits for the
// restart to finish and then reaps whatever it registered. No supervisor
// operation is valid afterwards.
func (s *Supervisor) Shutdown() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.down.Swap(true) {
		return
	}
	s.stopLocked("shutdown")
}
