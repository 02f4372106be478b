package supervisor

import "sync"

// Registry is the single mutable slot holding at most one live worker
// handle. The mutex is scoped to each operation and is never held across
// spawning or network I/O.
type Registry struct {
	mu     sync.Mutex
	handle *WorkerHandle
}

// Put stores a handle, replacing the slot's value. Callers must have taken
// and terminated any previous handle first; overwriting a live handle
// leaks its process.
func (r *Registry) Put(h *WorkerHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handle = h
}

// Take atomically removes and returns the current handle, leaving the slot
// empty. This is the only way to obtain ownership for termination, so two
// concurrent callers can never both believe they own the same handle.
func (r *Registry) Take() *WorkerHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.handle
	r.handle = nil
	return h
}
