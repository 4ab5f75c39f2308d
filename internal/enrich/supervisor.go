package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fermata/internal/config"
	"fermata/internal/library"
	"fermata/internal/logging"
)

// Supervisor owns one worker per enabled provider and aggregates their
// status for the daemon and CLI.
type Supervisor struct {
	cfg     *config.Config
	store   *library.Store
	logger  *slog.Logger
	workers map[library.Provider]*Worker
	order   []library.Provider
}

// NewSupervisor builds workers for every enabled provider.
func NewSupervisor(cfg *config.Config, store *library.Store, logger *slog.Logger) (*Supervisor, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	sources, err := buildSources(cfg)
	if err != nil {
		return nil, err
	}
	supervisor := &Supervisor{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		workers: make(map[library.Provider]*Worker, len(sources)),
	}
	for _, source := range sources {
		worker := NewWorker(cfg, store, source, logger)
		supervisor.workers[worker.Provider()] = worker
		supervisor.order = append(supervisor.order, worker.Provider())
	}
	return supervisor, nil
}

// Start launches every worker.
func (s *Supervisor) Start(ctx context.Context) {
	for _, name := range s.order {
		s.workers[name].Start(ctx)
	}
	s.logger.Info("supervisor started", logging.Int("workers", len(s.order)))
}

// Stop stops every worker, each bounded by the configured stop timeout.
func (s *Supervisor) Stop() {
	for _, name := range s.order {
		s.workers[name].Stop()
	}
	s.logger.Info("supervisor stopped")
}

// Pause suspends all workers, or a single provider when named.
func (s *Supervisor) Pause(provider string) error {
	return s.each(provider, func(w *Worker) { w.Pause() })
}

// Resume lifts a pause on all workers, or a single provider when named.
func (s *Supervisor) Resume(provider string) error {
	return s.each(provider, func(w *Worker) { w.Resume() })
}

func (s *Supervisor) each(provider string, apply func(*Worker)) error {
	if provider == "" {
		for _, name := range s.order {
			apply(s.workers[name])
		}
		return nil
	}
	name, ok := library.ParseProvider(provider)
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}
	worker, ok := s.workers[name]
	if !ok {
		return fmt.Errorf("provider %q is not enabled", provider)
	}
	apply(worker)
	return nil
}

// RunOnce synchronously selects and processes at most one item for the
// named provider, returning the item that was processed or nil when the
// backlog is empty. Used by the CLI for debugging single cycles.
func (s *Supervisor) RunOnce(ctx context.Context, provider string) (*library.WorkItem, error) {
	name, ok := library.ParseProvider(provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	worker, ok := s.workers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not enabled", provider)
	}
	item, err := worker.nextItem(ctx)
	if err != nil || item == nil {
		return nil, err
	}
	ctx = logging.WithCycle(ctx, uuid.NewString(), string(item.Kind), item.EntityID)
	cycleLogger := logging.WithContext(ctx, worker.logger)
	switch item.Kind {
	case library.KindAlbumBatch, library.KindTrackBatch:
		worker.processBatch(ctx, cycleLogger, item)
	default:
		worker.processItem(ctx, cycleLogger, item)
	}
	return item, nil
}

// Alive reports whether every worker's goroutine is still running.
func (s *Supervisor) Alive() bool {
	for _, name := range s.order {
		if !s.workers[name].Running() {
			return false
		}
	}
	return len(s.order) > 0
}

// Stats snapshots every worker and augments each with live pending counts
// and per-kind progress from the store. A worker is idle when it is
// running unpaused with an empty backlog and nothing in flight.
func (s *Supervisor) Stats(ctx context.Context) ([]WorkerStatus, error) {
	statuses := make([]WorkerStatus, 0, len(s.order))
	for _, name := range s.order {
		status := s.workers[name].Snapshot()
		pending, err := s.store.CountPending(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("pending count for %s: %w", name, err)
		}
		progress, err := s.store.ProgressBreakdown(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("progress for %s: %w", name, err)
		}
		status.Pending = pending
		status.Progress = progress
		status.Idle = status.Running && !status.Paused && pending == 0 && status.Current == nil
		statuses = append(statuses, status)
	}
	return statuses, nil
}
