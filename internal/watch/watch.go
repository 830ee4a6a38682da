// Package watch rebuilds the site whenever its inputs change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BuildFunc runs one full build.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Paths are files or directories to watch. Directories are watched
	// recursively, including subdirectories created later.
	Paths []string
	// Debounce collapses bursts of events into one rebuild.
	Debounce time.Duration
	// Interval schedules periodic rebuilds; 0 disables them.
	Interval time.Duration
	// MetricsAddr, when set, serves MetricsHandler while watching.
	MetricsAddr    string
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Watcher runs a build once and then again after every relevant change.
type Watcher struct {
	opts  Options
	build BuildFunc
	log   *slog.Logger
}

// New creates a watcher running build.
func New(build BuildFunc, opts Options) *Watcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	return &Watcher{opts: opts, build: build, log: opts.Logger}
}

// Run builds once, then watches until ctx is canceled. Build failures are
// logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, p := range w.opts.Paths {
		if err := w.add(fsw, p); err != nil {
			return err
		}
	}

	rebuildReq, trigger := newDebouncer(w.opts.Debounce)
	workerCtx, stopWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rebuildWorker(workerCtx, rebuildReq)
	}()
	defer func() {
		stopWorker()
		wg.Wait()
	}()

	// Initial build.
	rebuildReq <- struct{}{}

	if w.opts.Interval > 0 {
		sched, err := newScheduler(w.opts.Interval, func() {
			w.log.Info("Scheduled rebuild")
			requestRebuild(rebuildReq)
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.log.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
	}

	if w.opts.MetricsAddr != "" && w.opts.MetricsHandler != nil {
		srv := w.serveMetrics()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	w.log.Info("Watching for changes", slog.Any("paths", w.opts.Paths))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Watch stopped")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) add(fsw *fsnotify.Watcher, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.log.Warn("Watch path does not exist", logfields.Path(p))
			return nil
		}
		return fmt.Errorf("watch %s: %w", p, err)
	}
	if !info.IsDir() {
		return fsw.Add(p)
	}
	return addDirsRecursive(fsw, p, w.log)
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, ev.Name, w.log)
		}
	}
	w.log.Info("File changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// rebuildWorker runs builds one at a time. A request arriving during a build
// schedules exactly one follow-up build.
func (w *Watcher) rebuildWorker(ctx context.Context, rebuildReq chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			if ctx.Err() != nil {
				return
			}
			t0 := time.Now()
			if err := w.build(ctx); err != nil {
				w.log.Error("Rebuild failed", logfields.Error(err))
				continue
			}
			w.log.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(t0))/float64(time.Millisecond)))
		}
	}
}

func (w *Watcher) serveMetrics() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.opts.MetricsHandler)
	srv := &http.Server{Addr: w.opts.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		w.log.Info("Serving metrics", slog.String("addr", w.opts.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.log.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return srv
}

// newDebouncer returns the rebuild request channel and a trigger that sends
// on it once no further trigger has happened for d.
func newDebouncer(d time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() { requestRebuild(rebuildReq) })
	}
	return rebuildReq, trigger
}

// requestRebuild queues a build unless one is already queued.
func requestRebuild(rebuildReq chan struct{}) {
	select {
	case rebuildReq <- struct{}{}:
	default:
	}
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string, log *slog.Logger) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				log.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including .DS_Store and editor lock files like .#foo
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
