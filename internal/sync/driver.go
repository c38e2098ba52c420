package sync

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"reel/internal/asset"
	"reel/internal/config"
	"reel/internal/events"
	"reel/internal/fileutil"
	"reel/internal/logging"
	"reel/internal/services"
	"reel/internal/store"
)

// Report summarizes one discovery pass.
type Report struct {
	// TotalFiles is the number of media files seen under the videos
	// directory.
	TotalFiles int
	// Unprocessed counts files that had no sidecar yet; each got a fresh
	// pending record this pass.
	Unprocessed int
	// Resumed counts existing non-terminal records re-dispatched for
	// processing.
	Resumed int
	// Failed counts assets whose processing attempt returned an error.
	Failed int
}

// Driver discovers media files under the videos directory and feeds them to
// the lifecycle engine through the event bus. Scan is a single pass; Watch
// runs a pass, then reacts to filesystem events until the context ends.
type Driver struct {
	cfg    *config.Config
	store  *store.Store
	bus    *events.Bus
	logger *slog.Logger
}

// New builds a discovery driver.
func New(cfg *config.Config, st *store.Store, bus *events.Bus, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:    cfg,
		store:  st,
		bus:    bus,
		logger: logging.NewComponentLogger(logger, "sync"),
	}
}

// Scan walks the videos directory once: every media file without a sidecar
// gets a pending record, then every non-terminal record (fresh or left over
// from an earlier run) is published for processing. Assets are processed
// concurrently; the pass returns once all of them settle.
func (d *Driver) Scan(ctx context.Context) (*Report, error) {
	report := &Report{}

	files, err := d.mediaFiles()
	if err != nil {
		return nil, err
	}
	report.TotalFiles = len(files)

	fresh := make(map[string]bool, len(files))
	for _, source := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		created, createErr := d.adopt(ctx, source)
		if createErr != nil {
			d.logger.Warn("adopt failed",
				logging.String(logging.FieldSource, source),
				logging.Error(createErr))
			report.Failed++
			continue
		}
		if created {
			fresh[source] = true
			report.Unprocessed++
		}
	}

	pending, err := d.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var wg gosync.WaitGroup
	var mu gosync.Mutex
	for _, record := range pending {
		if record.IsTerminal() {
			continue
		}
		if !fresh[record.OriginalFilePath] {
			report.Resumed++
			d.logger.Info("resuming asset",
				logging.String(logging.FieldSource, record.OriginalFilePath),
				logging.String(logging.FieldStatus, string(record.Status)))
		}

		wg.Add(1)
		go func(record *asset.Asset) {
			defer wg.Done()
			if errs := d.publish(ctx, record); len(errs) > 0 {
				mu.Lock()
				report.Failed++
				mu.Unlock()
			}
		}(record)
	}
	wg.Wait()

	d.logger.Info("scan complete",
		logging.Int("total", report.TotalFiles),
		logging.Int("unprocessed", report.Unprocessed),
		logging.Int("resumed", report.Resumed),
		logging.Int("failed", report.Failed))
	return report, nil
}

// Watch runs an initial scan and then processes filesystem events until the
// context is canceled. A failing scan is retried after the configured error
// interval instead of killing the loop.
func (d *Driver) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "sync", "watch", "create watcher", err)
	}
	defer watcher.Close()

	if err := d.addWatchDirs(watcher); err != nil {
		return err
	}

	if _, err := d.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn("initial scan failed", logging.Error(err))
	}
	d.logger.Info("watching for new videos",
		logging.String("dir", d.cfg.Paths.VideosDir))

	retryInterval := time.Duration(d.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retryInterval <= 0 {
		retryInterval = 10 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			d.handleFSEvent(ctx, watcher, event)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watcher error, rescanning", logging.Error(watchErr))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryInterval):
			}
			if _, err := d.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Warn("rescan failed", logging.Error(err))
			}
		}
	}
}

func (d *Driver) handleFSEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || store.IsSidecar(name) {
		return
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if filepath.Clean(event.Name) != filepath.Clean(d.cfg.RemoteSidecarDir()) {
			_ = watcher.Add(event.Name)
		}
		return
	}
	if !fileutil.IsMediaFile(name) {
		return
	}

	source, err := filepath.Rel(d.cfg.Paths.VideosDir, event.Name)
	if err != nil || strings.HasPrefix(source, "..") {
		return
	}

	go func() {
		created, adoptErr := d.adopt(ctx, source)
		if adoptErr != nil {
			d.logger.Warn("adopt failed",
				logging.String(logging.FieldSource, source),
				logging.Error(adoptErr))
			return
		}
		if !created {
			// Another event or a concurrent scan already picked it up.
			return
		}
		record, getErr := d.store.Get(ctx, source)
		if getErr != nil {
			return
		}
		d.publish(ctx, record)
	}()
}

// adopt creates a pending record for a discovered file. The create is
// fail-if-exists underneath, so concurrent discovery of the same file yields
// exactly one record and created=false for the losers.
func (d *Driver) adopt(ctx context.Context, source string) (bool, error) {
	info, err := os.Stat(filepath.Join(d.cfg.Paths.VideosDir, source))
	if err != nil {
		return false, err
	}
	record := asset.New(asset.StatusPending, source, d.cfg.Provider.Default, info.Size())
	_, created, err := d.store.Create(ctx, record)
	if err != nil {
		return false, err
	}
	if created {
		d.logger.Info("discovered video",
			logging.String(logging.FieldSource, source),
			logging.Int64("size", info.Size()))
	}
	return created, nil
}

func (d *Driver) publish(ctx context.Context, record *asset.Asset) []error {
	kind := events.LocalVideoAdded
	if record.IsRemote() {
		kind = events.RequestVideoAdded
	}
	return d.bus.Publish(ctx, kind, record)
}

// mediaFiles lists media files under the videos directory as
// directory-relative paths, skipping dotfiles and the remote sidecar folder.
func (d *Driver) mediaFiles() ([]string, error) {
	var files []string
	remoteDir := filepath.Clean(d.cfg.RemoteSidecarDir())

	walk := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != d.cfg.Paths.VideosDir {
				return fs.SkipDir
			}
			if filepath.Clean(path) == remoteDir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") || !fileutil.IsMediaFile(entry.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(d.cfg.Paths.VideosDir, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, rel)
		return nil
	}
	if err := filepath.WalkDir(d.cfg.Paths.VideosDir, walk); err != nil {
		return nil, err
	}
	return files, nil
}

// addWatchDirs registers the videos directory and its existing
// subdirectories with the watcher.
func (d *Driver) addWatchDirs(watcher *fsnotify.Watcher) error {
	remoteDir := filepath.Clean(d.cfg.RemoteSidecarDir())
	walk := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != d.cfg.Paths.VideosDir {
			return fs.SkipDir
		}
		if filepath.Clean(path) == remoteDir {
			return fs.SkipDir
		}
		return watcher.Add(path)
	}
	if err := filepath.WalkDir(d.cfg.Paths.VideosDir, walk); err != nil {
		return services.Wrap(services.ErrConfiguration, "sync", "watch", "register watch directories", err)
	}
	return nil
}
