package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/export"
	"github.com/dgallion1/docoutline/internal/parser"
)

// BatchItem describes one document written by a batch run.
type BatchItem struct {
	Source   string `json:"source"`
	Output   string `json:"output"`
	Title    string `json:"title"`
	Headings int    `json:"headings"`
	Cached   bool   `json:"cached"`
}

// BatchFailure records a document that could not be processed.
type BatchFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	Items    []BatchItem    `json:"items"`
	Failures []BatchFailure `json:"failures"`
	Skipped  int            `json:"skipped"` // Entries with no supported extension
}

// OutputPath returns where the result for source is written in dir.
// Sources that differ only by extension share an output path.
func OutputPath(dir, source string, format export.Format) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"."+format.Extension())
}

// RunBatch processes every supported file directly inside in, in name
// order, and writes one result per document into out. A failing document is
// recorded in the report and the batch moves on. The returned error is set
// only when the directories themselves are unusable or ctx is cancelled.
func (e *Extractor) RunBatch(ctx context.Context, in, out string, format export.Format) (*BatchReport, error) {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	entries, err := os.ReadDir(in)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	report := &BatchReport{Items: []BatchItem{}, Failures: []BatchFailure{}}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !parser.IsSupportedExtension(entry.Name()) {
			report.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := filepath.Join(in, entry.Name())
		e.log.Info("processing", "path", path)
		item, err := e.ProcessFile(ctx, path, out, format)
		if err != nil {
			e.log.Error("document failed", "path", path, "error", err)
			report.Failures = append(report.Failures, BatchFailure{Source: path, Error: err.Error()})
			continue
		}
		e.log.Info("wrote output", "path", item.Output, "headings", item.Headings)
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// ProcessFile extracts one file and writes its result into out.
func (e *Extractor) ProcessFile(ctx context.Context, path, out string, format export.Format) (BatchItem, error) {
	ext, err := e.ExtractFile(ctx, path)
	if err != nil {
		return BatchItem{}, err
	}
	data, err := export.Encode(format, ext.Result)
	if err != nil {
		return BatchItem{}, fmt.Errorf("encode %s: %w", path, err)
	}

	target := OutputPath(out, path, format)
	if err := writeFileAtomic(target, data); err != nil {
		return BatchItem{}, err
	}
	return BatchItem{
		Source:   path,
		Output:   target,
		Title:    ext.Result.Title,
		Headings: len(ext.Result.Outline),
		Cached:   ext.Cached,
	}, nil
}

// writeFileAtomic writes through a temp file in the target's directory so
// readers never see a partial result.
func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".docoutline-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", target, err)
	}
	return nil
}
