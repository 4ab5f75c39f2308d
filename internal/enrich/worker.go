package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fermata/internal/config"
	"fermata/internal/library"
	"fermata/internal/logging"
	"fermata/internal/providers"
)

const panicBackoff = 5 * time.Second

// Worker drains one provider's backlog. Items are processed serially;
// pause and stop are observed at iteration boundaries.
type Worker struct {
	provider library.Provider
	source   providers.Provider
	store    *library.Store
	logger   *slog.Logger

	idlePoll         time.Duration
	pausePoll        time.Duration
	stopTimeout      time.Duration
	retryWindow      time.Duration
	errorRetryWindow time.Duration

	mu      sync.Mutex
	running bool
	paused  bool
	cancel  context.CancelFunc
	done    chan struct{}
	current *library.WorkItem
	stats   Stats
}

// NewWorker builds a worker for one provider.
func NewWorker(cfg *config.Config, store *library.Store, source providers.Provider, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	name, _ := library.ParseProvider(source.Name())
	return &Worker{
		provider:         name,
		source:           source,
		store:            store,
		logger:           logger.With(logging.String(logging.FieldProvider, source.Name())),
		idlePoll:         time.Duration(cfg.Workflow.IdlePollSeconds) * time.Second,
		pausePoll:        time.Duration(cfg.Workflow.PausePollSeconds) * time.Second,
		stopTimeout:      time.Duration(cfg.Workflow.StopTimeoutSeconds) * time.Second,
		retryWindow:      time.Duration(cfg.Workflow.RetryDays) * 24 * time.Hour,
		errorRetryWindow: time.Duration(cfg.Workflow.ErrorRetryDays) * 24 * time.Hour,
	}
}

// Provider returns the worker's provider identifier.
func (w *Worker) Provider() library.Provider { return w.provider }

// Start launches the polling goroutine. Starting a running worker is a
// logged no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("worker already running")
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true
	done := w.done
	w.mu.Unlock()

	go w.run(runCtx, done)
	w.logger.Info("worker started")
}

// Stop cancels the loop and waits for the current item to finish, bounded
// by the configured stop timeout.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	done := w.done
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(w.stopTimeout):
		w.logger.Warn("worker did not stop within timeout; proceeding",
			logging.Duration("timeout", w.stopTimeout))
	}
	w.logger.Info("worker stopped")
}

// Pause suspends item selection at the next iteration boundary. The item
// in flight still completes and records its terminal status.
func (w *Worker) Pause() {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
	w.logger.Info("worker paused")
}

// Resume lifts a pause.
func (w *Worker) Resume() {
	w.mu.Lock()
	w.paused = false
	w.mu.Unlock()
	w.logger.Info("worker resumed")
}

// Running reports whether the polling goroutine is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Snapshot returns the worker's current state and counters.
func (w *Worker) Snapshot() WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	status := WorkerStatus{
		Provider: string(w.provider),
		Running:  w.running,
		Paused:   w.paused,
		Stats:    w.stats,
	}
	if w.current != nil {
		item := *w.current
		status.Current = &item
	}
	return status
}

func (w *Worker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if w.isPaused() {
			w.sleep(ctx, w.pausePoll)
			continue
		}
		w.cycle(ctx)
	}
}

// cycle selects and processes at most one item. A panic inside processing
// is logged and absorbed with an extra backoff; it never kills the loop.
func (w *Worker) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic during enrichment cycle",
				logging.Any("panic", r),
				logging.String(logging.FieldEventType, "worker_panic"))
			w.sleep(ctx, panicBackoff)
		}
	}()

	item, err := w.nextItem(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("failed to select next item", logging.Error(err))
		w.sleep(ctx, w.idlePoll)
		return
	}
	if item == nil {
		w.setCurrent(nil)
		w.sleep(ctx, w.idlePoll)
		return
	}

	w.setCurrent(item)
	defer w.setCurrent(nil)

	ctx = logging.WithCycle(ctx, uuid.NewString(), string(item.Kind), item.EntityID)
	cycleLogger := logging.WithContext(ctx, w.logger)
	switch item.Kind {
	case library.KindAlbumBatch, library.KindTrackBatch:
		w.processBatch(ctx, cycleLogger, item)
	default:
		w.processItem(ctx, cycleLogger, item)
	}
}

// nextItem implements the selection priority: unattempted artists first so
// children gain usable parent IDs, then batch work for capable providers,
// then individual albums and tracks, and finally retry-eligible failures.
func (w *Worker) nextItem(ctx context.Context) (*library.WorkItem, error) {
	item, err := w.store.NextUnmatched(ctx, w.provider, library.KindArtist)
	if err != nil || item != nil {
		return item, err
	}
	if _, ok := w.source.(providers.BatchProvider); ok {
		item, err = w.store.NextBatch(ctx, w.provider)
		if err != nil || item != nil {
			return item, err
		}
	}
	item, err = w.store.NextUnmatched(ctx, w.provider, library.KindAlbum)
	if err != nil || item != nil {
		return item, err
	}
	item, err = w.store.NextUnmatched(ctx, w.provider, library.KindTrack)
	if err != nil || item != nil {
		return item, err
	}
	now := time.Now()
	return w.store.NextRetryEligible(ctx, w.provider,
		now.Add(-w.retryWindow), now.Add(-w.errorRetryWindow))
}

func (w *Worker) isPaused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}

func (w *Worker) setCurrent(item *library.WorkItem) {
	w.mu.Lock()
	w.current = item
	w.mu.Unlock()
}

func (w *Worker) addMatched(n int64) {
	w.mu.Lock()
	w.stats.Matched += n
	w.mu.Unlock()
}

func (w *Worker) addNotFound(n int64) {
	w.mu.Lock()
	w.stats.NotFound += n
	w.mu.Unlock()
}

func (w *Worker) addErrors(n int64) {
	w.mu.Lock()
	w.stats.Errors += n
	w.mu.Unlock()
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
