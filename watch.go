package pubsite

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher rebuilds whenever a watched directory changes. Bursts of events
// within the debounce window trigger a single rebuild.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	Rebuild  func(ctx context.Context) error
	Logger   *slog.Logger

	ready func() // called once every directory is watched
}

// NewWatcher watches the content, assets, and static directories of cfg and
// rebuilds through b.
func NewWatcher(cfg SiteConfig, b *Builder, logger *slog.Logger) *Watcher {
	return &Watcher{
		Dirs:     []string{cfg.ContentDir, cfg.AssetsDir, cfg.StaticDir},
		Debounce: DefaultDebounce,
		Rebuild: func(ctx context.Context) error {
			_, err := b.Build(ctx)
			return err
		},
		Logger: logger,
	}
}

// Run watches until ctx is done. A failed rebuild is logged and the last
// good site keeps being served.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	log := w.Logger
	if log == nil {
		log = slog.Default()
	}
	for _, dir := range w.Dirs {
		if err := addRecursive(watcher, dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("not watching missing directory", "dir", dir)
				continue
			}
			return err
		}
	}

	if w.ready != nil {
		w.ready()
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						log.Warn("watching new directory failed", "dir", event.Name, "err", err)
					}
				}
			}

			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(debounce, func() {
				defer wg.Done()
				log.Info("rebuilding site")
				if err := w.Rebuild(ctx); err != nil {
					log.Error("rebuild failed", "err", err)
				}
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}
