package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdf-insight/internal/ingest"
	"pdf-insight/internal/store"

	"github.com/fsnotify/fsnotify"
)

const defaultSettle = 500 * time.Millisecond

// Watcher ingests PDFs dropped into a directory. A file is picked up once
// it has stopped changing for the settle interval, and only once per path.
type Watcher struct {
	dir      string
	ingestor *ingest.Ingestor
	store    *store.Store
	settle   time.Duration

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	seen    map[string]bool
}

func NewWatcher(dir string, ingestor *ingest.Ingestor, st *store.Store, settle time.Duration) (*Watcher, error) {
	if settle <= 0 {
		settle = defaultSettle
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating inbox dir %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("error watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:      dir,
		ingestor: ingestor,
		store:    st,
		settle:   settle,
		watcher:  w,
		pending:  make(map[string]time.Time),
		seen:     make(map[string]bool),
	}, nil
}

// Run blocks until ctx is done. PDFs already in the directory are ingested first.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Error("error listing inbox", "dir", w.dir, "error", err)
	}
	now := time.Now().Add(-w.settle)
	for _, entry := range entries {
		if !entry.IsDir() {
			w.touch(filepath.Join(w.dir, entry.Name()), now)
		}
	}

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	slog.Info("watching inbox", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.touch(event.Name, time.Now())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("inbox watcher error", "dir", w.dir, "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) touch(path string, at time.Time) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.seen[path] {
		w.pending[path] = at
	}
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	var ready []ingest.File
	for path, last := range w.pending {
		if time.Since(last) >= w.settle {
			ready = append(ready, ingest.FromPath(path))
			delete(w.pending, path)
			w.seen[path] = true
		}
	}
	w.mu.Unlock()

	if len(ready) == 0 {
		return
	}

	result := w.ingestor.Ingest(ctx, ready)
	for _, failure := range result.Failures {
		slog.Error("error ingesting inbox file", "file", failure.Name, "error", failure.Err)
	}
	if len(result.Documents) == 0 {
		return
	}

	active, err := w.store.AddDocuments(result.Documents)
	if err != nil {
		slog.Error("error adding inbox documents", "error", err)
		return
	}
	slog.Info("ingested inbox files", "count", len(result.Documents), "active_id", active)
}
