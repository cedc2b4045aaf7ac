package playback

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"channelsurfer/internal/library"
	"channelsurfer/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// LibraryWatcher publishes a library event when artifacts or sidecars in the
// library directory change. Bursts of filesystem events collapse into one.
type LibraryWatcher struct {
	dir      string
	hub      *Hub
	logger   *slog.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLibraryWatcher creates a watcher for dir publishing to hub.
func NewLibraryWatcher(dir string, hub *Hub, logger *slog.Logger) *LibraryWatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LibraryWatcher{
		dir:      dir,
		hub:      hub,
		logger:   logging.NewComponentLogger(logger, "library-watcher"),
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The watcher stops when ctx is done; Done is
// closed once it has.
func (w *LibraryWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch library dir: %w", err)
	}
	w.watcher = watcher

	w.logger.Info("watching library for changes",
		logging.String("dir", w.dir),
		logging.String(logging.FieldEventType, "library_watch_started"),
	)
	go w.loop(ctx)
	return nil
}

// Done is closed after the watch loop exits.
func (w *LibraryWatcher) Done() <-chan struct{} {
	return w.done
}

func (w *LibraryWatcher) loop(ctx context.Context) {
	defer close(w.done)
	defer func() {
		_ = w.watcher.Close()
	}()

	var (
		mu      sync.Mutex
		timer   *time.Timer
		pending []string
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()
	fire := func() {
		mu.Lock()
		names := pending
		pending = nil
		mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.hub.Publish(Event{Type: EventLibrary, Message: strings.Join(names, ", ")})
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("library watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			mu.Lock()
			pending = appendUnique(pending, filepath.Base(event.Name))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)
			mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("library watcher error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "library_watch_error"),
			)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return library.IsArtifactFile(name) || strings.EqualFold(filepath.Ext(name), ".json")
}

func appendUnique(names []string, name string) []string {
	for _, existing := range names {
		if existing == name {
			return names
		}
	}
	return append(names, name)
}
