package workers

import (
	"sync"
	"time"

	"strata/pkg/errors"
)

// How many missed intervals before a worker counts as stalled.
const stalledIntervals = 3

// Registry tracks the workers running in this process and answers
// health queries about them for the health endpoint. Run and error
// bookkeeping lives on the workers themselves (BaseWorker); the
// registry adds the transient is-running flag and the aggregate views.
type Registry struct {
	workers map[string]WorkerWithHealth
	running map[string]bool
	mu      sync.RWMutex
}

// NewRegistry creates a new worker registry
func NewRegistry() *Registry {
	return &Registry{
		workers: make(map[string]WorkerWithHealth),
		running: make(map[string]bool),
	}
}

// Register adds a worker to the registry
func (r *Registry) Register(w WorkerWithHealth) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := w.Name()
	if _, exists := r.workers[name]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "worker %s already registered", name)
	}

	r.workers[name] = w
	return nil
}

// Get returns a worker by name
func (r *Registry) Get(name string) (WorkerWithHealth, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[name]
	return w, ok
}

// MarkRunning flags a worker as currently executing. Unknown names are
// ignored so the scheduler can call this unconditionally.
func (r *Registry) MarkRunning(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workers[name]; ok {
		r.running[name] = true
	}
}

// RecordRun records a successful worker run and clears the running flag
func (r *Registry) RecordRun(name string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workers[name]; ok {
		w.RecordRun(duration)
		r.running[name] = false
	}
}

// RecordError records a failed worker run and clears the running flag
func (r *Registry) RecordError(name string, err error, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workers[name]; ok {
		w.RecordError(err, duration)
		r.running[name] = false
	}
}

// Health returns health information for a worker
func (r *Registry) Health(name string) (WorkerHealth, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[name]
	if !ok {
		return WorkerHealth{}, false
	}

	h := w.Health()
	h.IsRunning = r.running[name]
	return h, true
}

// AllHealth returns health information for all registered workers
func (r *Registry) AllHealth() map[string]WorkerHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make(map[string]WorkerHealth, len(r.workers))
	for name, w := range r.workers {
		h := w.Health()
		h.IsRunning = r.running[name]
		health[name] = h
	}

	return health
}

// Unhealthy returns the names of enabled workers that look broken:
// either stalled (no completed run for several intervals) or failing
// more than half of a meaningful number of runs. Workers that have not
// completed their first run yet are not flagged.
func (r *Registry) Unhealthy() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var unhealthy []string
	now := time.Now()

	for name, w := range r.workers {
		h := w.Health()
		if !h.Enabled || h.RunCount == 0 {
			continue
		}

		if now.Sub(h.LastRun) > stalledIntervals*w.Interval() {
			unhealthy = append(unhealthy, name)
			continue
		}

		if h.RunCount > 10 {
			errorRate := float64(h.ErrorCount) / float64(h.RunCount)
			if errorRate > 0.5 {
				unhealthy = append(unhealthy, name)
			}
		}
	}

	return unhealthy
}
