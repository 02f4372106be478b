package supervisor

import (
	"log/slog"
	"os/exec"
	"sync"
)

// WorkerHandle owns exactly one running worker process. Ownership moves
// from the Registry to whichever operation Take()s it; that operation is
// responsible for terminating the OS process.
type WorkerHandle struct {
	cmd  *exec.Cmd
	once sync.Once
}

func (h *WorkerHandle) Pid() int {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Terminate kills the worker and reaps it. Best-effort: a worker that has
// already exited is not an error, and repeated calls are no-ops.
func (h *WorkerHandle) Terminate() {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return
	}
	h.once.Do(func() {
		if err := h.cmd.Process.Kill(); err != nil {
			slog.Debug("Worker already gone", "pid", h.cmd.Process.Pid, "error", err)
		}
		if err := h.cmd.Wait(); err != nil {
			slog.Debug("Worker exited", "pid", h.cmd.Process.Pid, "error", err)
		}
	})
}
