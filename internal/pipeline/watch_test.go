package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/export"
)

type watchResult struct {
	item BatchItem
	err  error
}

func startWatcher(t *testing.T, in, out string, format export.Format) (*DirWatcher, <-chan watchResult) {
	t.Helper()
	results := make(chan watchResult, 8)
	w, err := newTestExtractor(nil).NewDirWatcher(in, out, format, WatchOptions{
		Debounce: 20 * time.Millisecond,
		OnProcessed: func(item BatchItem, err error) {
			results <- watchResult{item, err}
		},
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, results
}

func waitResult(t *testing.T, results <-chan watchResult) watchResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher")
		return watchResult{}
	}
}

func TestDirWatcher_ProcessesNewFile(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	w, results := startWatcher(t, in, out, export.FormatJSON)

	writeInput(t, in, "report.html", reportHTML)

	r := waitResult(t, results)
	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
	if r.item.Output != filepath.Join(out, "report.json") {
		t.Errorf("expected output %q, got %q", filepath.Join(out, "report.json"), r.item.Output)
	}
	checkReport(t, readResult(t, r.item.Output))

	if s := w.Stats(); s.Processed != 1 || s.Failed != 0 {
		t.Errorf("expected 1 processed and 0 failed, got %+v", s)
	}
}

func TestDirWatcher_IgnoresUnsupported(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	w, results := startWatcher(t, in, out, export.FormatJSON)

	writeInput(t, in, "notes.txt", "ignored")
	writeInput(t, in, "report.html", reportHTML)

	r := waitResult(t, results)
	if filepath.Base(r.item.Source) != "report.html" {
		t.Errorf("expected report.html to be processed, got %q", r.item.Source)
	}
	if s := w.Stats(); s.Processed != 1 {
		t.Errorf("expected 1 processed, got %+v", s)
	}
}

func TestDirWatcher_SkipsOwnHTMLOutput(t *testing.T) {
	dir := t.TempDir()
	w, results := startWatcher(t, dir, dir, export.FormatHTML)

	writeInput(t, dir, "report.htm", reportHTML)

	r := waitResult(t, results)
	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.html")); err != nil {
		t.Fatalf("expected html output: %v", err)
	}

	// Give the watcher time to see the output it just wrote.
	time.Sleep(100 * time.Millisecond)
	select {
	case extra := <-results:
		t.Errorf("expected output to be ignored, got %+v", extra)
	default:
	}
	if s := w.Stats(); s.Processed != 1 {
		t.Errorf("expected 1 processed, got %+v", s)
	}
}

func TestNewDirWatcher_MissingDir(t *testing.T) {
	_, err := newTestExtractor(nil).NewDirWatcher(filepath.Join(t.TempDir(), "missing"), t.TempDir(), export.FormatJSON, WatchOptions{})
	if err == nil {
		t.Fatal("expected error for missing input dir")
	}
}
