package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"fermata/internal/config"
	"fermata/internal/enrich"
	"fermata/internal/library"
	"fermata/internal/logging"
)

// Daemon coordinates the enrichment workers and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *library.Store
	supervisor *enrich.Supervisor

	lockPath string
	lock     *flock.Flock

	running      atomic.Bool
	cancel       context.CancelFunc
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// Status is the daemon's aggregate runtime snapshot.
type Status struct {
	Running      bool                  `json:"running"`
	PID          int                   `json:"pid"`
	LockPath     string                `json:"lock_path"`
	DatabasePath string                `json:"database_path"`
	Workers      []enrich.WorkerStatus `json:"workers"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *library.Store, supervisor *enrich.Supervisor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || supervisor == nil {
		return nil, errors.New("daemon requires config, store, and supervisor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		supervisor: supervisor,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
		shutdown:   make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock and launches the workers.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fermata daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.supervisor.Start(runCtx)
	d.running.Store(true)
	d.logger.Info("fermata daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the workers and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.supervisor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("fermata daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Running reports whether the daemon holds the lock with active workers.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status aggregates worker snapshots with daemon-level paths.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	workers, err := d.supervisor.Stats(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockPath:     d.lockPath,
		DatabasePath: d.store.Path(),
		Workers:      workers,
	}, nil
}

// Pause suspends all workers, or one provider when named.
func (d *Daemon) Pause(provider string) error {
	if !d.running.Load() {
		return errors.New("daemon is not running")
	}
	return d.supervisor.Pause(provider)
}

// Resume lifts a pause on all workers, or one provider when named.
func (d *Daemon) Resume(provider string) error {
	if !d.running.Load() {
		return errors.New("daemon is not running")
	}
	return d.supervisor.Resume(provider)
}

// RequestShutdown asks the daemon's owner to exit. Safe to call more than
// once; used by the IPC stop handler.
func (d *Daemon) RequestShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdown) })
}

// ShutdownRequested signals when an IPC stop has been received.
func (d *Daemon) ShutdownRequested() <-chan struct{} {
	return d.shutdown
}
