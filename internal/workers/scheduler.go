package workers

import (
	"context"
	"sync"
	"time"

	"strata/internal/metrics"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Scheduler manages and coordinates multiple workers
type Scheduler struct {
	workers         []Worker
	registry        *Registry
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	mu              sync.RWMutex
	log             *logger.Logger
	started         bool
	shutdownTimeout time.Duration
}

// NewScheduler creates a new worker scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		workers:         make([]Worker, 0),
		log:             logger.Get(),
		started:         false,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// SetShutdownTimeout overrides how long Stop waits for in-flight runs
func (s *Scheduler) SetShutdownTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.shutdownTimeout = d
	}
}

// SetRegistry attaches a registry so run outcomes feed worker health.
// Must be called before workers are registered.
func (s *Scheduler) SetRegistry(r *Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = r
}

// RegisterWorker adds a worker to the scheduler
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warn("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)

	if s.registry != nil {
		if hw, ok := w.(WorkerWithHealth); ok {
			if err := s.registry.Register(hw); err != nil {
				s.log.Warn("Failed to register worker health", "worker", w.Name(), "error", err)
			}
		}
	}

	s.log.Info("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start begins running all registered workers
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info("Starting worker scheduler", "workers", len(s.workers))

	// Start each enabled worker in its own goroutine
	for _, worker := range s.workers {
		if !worker.Enabled() {
			s.log.Info("Skipping disabled worker", "worker", worker.Name())
			continue
		}

		s.wg.Add(1)
		go s.runWorker(worker)
	}

	s.log.Info("All workers started")
	return nil
}

// Stop gracefully shuts down all workers, waiting up to the shutdown
// timeout for in-flight analysis runs and report writes to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}

	// Cancel context to signal all workers to stop
	s.cancel()
	timeout := s.shutdownTimeout

	// Release lock before waiting so workers are free to finish
	s.mu.Unlock()

	s.log.Info("Stopping worker scheduler...")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		s.log.Info("All workers stopped gracefully")
	case <-time.After(timeout):
		s.log.Warn("Worker shutdown timed out", "timeout", timeout)
		shutdownErr = errors.Wrapf(errors.ErrTimeout, "shutdown timeout after %s", timeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return shutdownErr
}

// runWorker executes a single worker in a loop
func (s *Scheduler) runWorker(worker Worker) {
	defer s.wg.Done()

	s.log.Info("Worker started", "worker", worker.Name())

	ticker := time.NewTicker(worker.Interval())
	defer ticker.Stop()

	// Run immediately on start
	s.executeWorker(worker)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info("Worker stopping due to context cancellation", "worker", worker.Name())
			return

		case <-ticker.C:
			s.executeWorker(worker)
		}
	}
}

// executeWorker runs a single iteration of the worker with error handling
func (s *Scheduler) executeWorker(worker Worker) {
	start := time.Now()

	if s.registry != nil {
		s.registry.MarkRunning(worker.Name())
	}

	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Worker panicked",
				"worker", worker.Name(),
				"panic", r,
			)
			s.recordOutcome(worker,
				errors.Wrapf(errors.ErrInternal, "worker panic: %v", r),
				time.Since(start))
		}
	}()

	err := worker.Run(s.ctx)
	s.recordOutcome(worker, err, time.Since(start))

	if err != nil {
		s.log.Error("Worker execution failed",
			"worker", worker.Name(),
			"error", err,
			"duration", time.Since(start),
		)
	} else {
		s.log.Debug("Worker execution completed",
			"worker", worker.Name(),
			"duration", time.Since(start),
		)
	}
}

// recordOutcome feeds one run result into metrics and worker health.
// Registry updates delegate to the worker and clear the running flag;
// without a registry the worker's own counters are updated directly.
func (s *Scheduler) recordOutcome(worker Worker, err error, duration time.Duration) {
	metrics.RecordWorkerExecution(worker.Name(), duration, err)

	hw, ok := worker.(WorkerWithHealth)
	if !ok {
		return
	}

	if s.registry != nil {
		if err != nil {
			s.registry.RecordError(worker.Name(), err, duration)
		} else {
			s.registry.RecordRun(worker.Name(), duration)
		}
		return
	}

	if err != nil {
		hw.RecordError(err, duration)
	} else {
		hw.RecordRun(duration)
	}
}

// GetWorkers returns a list of all registered workers (for debugging/monitoring)
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	return workers
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
