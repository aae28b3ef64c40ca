package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgallion1/docoutline/internal/export"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/fsnotify/fsnotify"
)

// WatchOptions tunes a DirWatcher.
type WatchOptions struct {
	// Debounce is the quiet period after the last event for a file before
	// it is processed. Editors and copies emit several writes per file.
	// Default: 500ms.
	Debounce time.Duration
	// OnProcessed, if set, is called after every processing attempt.
	OnProcessed func(item BatchItem, err error)
	// Logger overrides the extractor's logger.
	Logger *slog.Logger
}

func (o *WatchOptions) defaults(log *slog.Logger) {
	if o.Debounce <= 0 {
		o.Debounce = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = log
	}
}

// WatchStats are point-in-time counters.
type WatchStats struct {
	Events    int64 `json:"events"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// DirWatcher processes documents created or rewritten in a directory.
type DirWatcher struct {
	ex     *Extractor
	in     string
	out    string
	format export.Format
	opts   WatchOptions
	fsw    *fsnotify.Watcher

	events    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewDirWatcher starts watching in. Events that arrive before Run is called
// are buffered by fsnotify and handled once it runs.
func (e *Extractor) NewDirWatcher(in, out string, format export.Format, opts WatchOptions) (*DirWatcher, error) {
	opts.defaults(e.log)

	absOut, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(in); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", in, err)
	}
	return &DirWatcher{
		ex:     e,
		in:     in,
		out:    absOut,
		format: format,
		opts:   opts,
		fsw:    fsw,
	}, nil
}

// Stats returns the current counters.
func (w *DirWatcher) Stats() WatchStats {
	return WatchStats{
		Events:    w.events.Load(),
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
}

// Run blocks until ctx is cancelled. A file is processed once no event has
// touched it for the debounce window. The watcher is closed on return.
func (w *DirWatcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	log := w.opts.Logger

	tick := w.opts.Debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	log.Info("watch: started", "dir", w.in, "debounce", w.opts.Debounce)

	for {
		select {
		case <-ctx.Done():
			log.Info("watch: stopped", "pending", len(pending))
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !w.wants(ev) {
				continue
			}
			w.events.Add(1)
			pending[ev.Name] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			log.Warn("watch: notify error", "error", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.opts.Debounce {
					continue
				}
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

func (w *DirWatcher) wants(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if !parser.IsSupportedExtension(ev.Name) {
		return false
	}
	// Our own HTML results must not be picked up again.
	ext := strings.TrimPrefix(filepath.Ext(ev.Name), ".")
	if !strings.EqualFold(ext, w.format.Extension()) {
		return true
	}
	dir, err := filepath.Abs(filepath.Dir(ev.Name))
	return err != nil || dir != w.out
}

func (w *DirWatcher) process(ctx context.Context, path string) {
	log := w.opts.Logger.With("path", path)
	item, err := w.ex.ProcessFile(ctx, path, w.out, w.format)
	if err != nil {
		w.failed.Add(1)
		log.Error("watch: document failed", "error", err)
	} else {
		w.processed.Add(1)
		log.Info("watch: wrote output", "output", item.Output, "headings", item.Headings)
	}
	if w.opts.OnProcessed != nil {
		w.opts.OnProcessed(item, err)
	}
}
