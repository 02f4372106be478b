package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/caw-hq/caw-desktop/pkg/config"
	helpers "github.com/caw-hq/caw-desktop/pkg/shared"
	"github.com/caw-hq/caw-desktop/pkg/shared/defs"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/events"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/httpapi"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/journal"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/probe"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/storage"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/supervisor"
	"github.com/caw-hq/caw-desktop/services/desktop/internal/windowfx"
)

func main() {
	logger := helpers.NewLogger("caw-desktop", "info")
	slog.SetDefault(logger)

	pflag.String("config", "", "Path to config file (default: ./config.toml)")
	pflag.String("log_level", "info", "Log level (debug|info|warn|error)")
	pflag.String("worker_process", "caw", "Path to the caw worker binary")
	pflag.Int("port", 3100, "Port the worker binds its server to")
	pflag.Int("control_port", 3101, "Control API port")
	pflag.String("control_hostname", "127.0.0.1", "Control API hostname")
	pflag.String("override", "", "Override simple config values (string, int, bool) as comma-separated key:value pairs (e.g., control.port:9000,log_level:debug)")

	pflag.Parse()

	config.BindFlags(map[string]string{
		"log_level":        "log_level",
		"worker_process":   "supervisor.worker_process",
		"port":             "supervisor.port",
		"control_port":     "control.port",
		"control_hostname": "control.hostname",
	})

	cfg := config.Load(pflag.Lookup("config").Value.String(), pflag.Lookup("override").Value.String())

	// Update the logger to use the configured log level
	logger = helpers.NewLogger("caw-desktop", cfg.LogLevel)
	slog.SetDefault(logger)

	runID := uuid.New()
	slog.Info("Starting caw desktop shell", "uuid", runID.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workflowsDB := cfg.Supervisor.DBPath
	if workflowsDB == "" {
		workflowsDB = storage.WorkflowsDBPath()
	}
	slog.Info("Resolved worker storage", "path", workflowsDB)

	var jr *journal.Journal
	var apiJournal httpapi.Journal
	if cfg.Journal.Enabled {
		journalPath := cfg.Journal.Path
		if journalPath == "" {
			journalPath = journal.DefaultPath(workflowsDB)
		}
		var err error
		jr, err = journal.Open(journalPath, runID.String())
		if err != nil {
			slog.Error("Failed to open lifecycle journal", "error", err)
		} else {
			apiJournal = jr
			defer helpers.CloseOrLog(jr)
		}
	}

	hub := events.NewHub()

	notify := func(e supervisor.Event) {
		event := defs.StateEvent{
			RunID:  runID.String(),
			State:  e.State,
			Pid:    e.Pid,
			Detail: e.Detail,
			Time:   time.Now().UTC(),
		}
		hub.Publish(event)
		if jr != nil {
			jr.Record(e.State, e.Pid, e.Detail)
		}
	}

	prober := probe.New(cfg.Supervisor.Endpoint(), cfg.Supervisor.ProbeTimeout)
	sup := supervisor.New(cfg.Supervisor, logger, prober, notify)

	if windowfx.Supported() {
		slog.Debug("Platform titlebar adjustments active")
	}

	// Launch the worker. The readiness poll runs in the background; the
	// frontend learns about it over the events feed.
	if err := sup.Start(ctx); err != nil {
		slog.Error("Failed to start worker", "error", err)
		os.Exit(1)
	}

	api := httpapi.New(cfg.Control, sup, apiJournal, hub)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Control.Hostname, cfg.Control.Port),
		Handler: api.Router(),
	}

	go func() {
		slog.Info("Control API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Control API failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Synchronous, before the process exits: the worker must never be
	// orphaned, even if exit arrives mid-restart.
	sup.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Control API shutdown", "error", err)
	}

	slog.Info("Shut down", "uuid", runID.String())
}
