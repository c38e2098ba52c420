package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reel/internal/api"
	"reel/internal/config"
	"reel/internal/events"
	"reel/internal/logging"
	"reel/internal/providers"
	"reel/internal/store"
	"reel/internal/sync"
)

// Daemon runs watch mode: the discovery driver, the optional HTTP API, and a
// file lock that enforces a single instance per log directory.
type Daemon struct {
	cfg      *config.Config
	store    *store.Store
	driver   *sync.Driver
	bus      *events.Bus
	registry *providers.Registry
	logger   *slog.Logger

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	cancel    context.CancelFunc
	watchDone chan error
	api       *apiServer
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, driver *sync.Driver, bus *events.Bus, registry *providers.Registry, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || driver == nil || bus == nil || registry == nil {
		return nil, errors.New("daemon requires config, store, driver, bus, and registry")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "reel.lock")
	return &Daemon{
		cfg:      cfg,
		store:    st,
		driver:   driver,
		bus:      bus,
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the watcher and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reel instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	apiSrv, err := newAPIServer(d.cfg, d, runCtx)
	if err != nil {
		_ = d.lock.Unlock()
		cancel()
		return err
	}
	d.api = apiSrv
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return err
	}

	d.watchDone = make(chan error, 1)
	go func() {
		d.watchDone <- d.driver.Watch(runCtx)
	}()

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("videos_dir", d.cfg.Paths.VideosDir))
	return nil
}

// Stop halts the watcher and API server and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.watchDone != nil {
		select {
		case err := <-d.watchDone:
			if err != nil {
				d.logger.Warn("watcher exited with error", logging.Error(err))
			}
		case <-time.After(5 * time.Second):
			d.logger.Warn("watcher did not stop in time")
		}
		d.watchDone = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases all daemon resources.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// APIAddr returns the bound API address, or "" when the API is disabled or
// not started.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status reports runtime information plus per-status asset counts.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		VideosDir:    d.cfg.Paths.VideosDir,
		LockFilePath: d.lockPath,
		Providers:    d.registry.Names(),
	}
	counts, err := api.NewAssetService(d.store).Counts(ctx)
	if err != nil {
		d.logger.Warn("count assets", logging.Error(err))
	} else {
		status.Counts = counts
	}
	return status
}
