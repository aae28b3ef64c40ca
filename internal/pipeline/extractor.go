package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/store"
)

// Cache stores results by cache key. *store.Store implements it.
type Cache interface {
	Get(ctx context.Context, key string) (*store.Record, error)
	Put(ctx context.Context, key, filename string, r outline.Result) error
}

// Extraction is the outcome of running one document through the extractor.
type Extraction struct {
	Result      outline.Result
	ContentHash string
	Cached      bool

	// Set only when the document was parsed, not served from cache.
	Analysis *outline.Analysis
	Pages    int
	Spans    int
}

// Extractor parses a document and infers its outline, consulting the cache
// first when one is configured.
type Extractor struct {
	opts    parser.Options
	cache   Cache
	timeout time.Duration
	stats   *ExtractionStats
	log     *slog.Logger
}

// statsWindow is how far back Stats looks.
const statsWindow = time.Hour

// NewExtractor returns an extractor. cache may be nil; a zero timeout
// disables the per-document budget.
func NewExtractor(opts parser.Options, cache Cache, timeout time.Duration, log *slog.Logger) *Extractor {
	return &Extractor{
		opts:    opts,
		cache:   cache,
		timeout: timeout,
		stats:   NewExtractionStats(statsWindow),
		log:     log,
	}
}

// Stats summarizes recent extractions.
func (e *Extractor) Stats() StatsSnapshot {
	return e.stats.Snapshot()
}

// ExtractFile reads path and extracts it.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Extract(ctx, filepath.Base(path), data)
}

// Extract infers the title and outline of one document.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (Extraction, error) {
	p, err := e.opts.ForFile(filename)
	if err != nil {
		return Extraction{}, err
	}
	fingerprint, err := e.opts.Fingerprint(filename)
	if err != nil {
		return Extraction{}, err
	}

	log := e.log.With("filename", filename)
	hash := ContentHashHex(data)
	key := CacheKey(hash, fingerprint)

	if e.cache != nil {
		rec, err := e.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache lookup failed, parsing", "error", err)
		} else if rec != nil {
			log.Debug("cache hit", "content_hash", hash)
			e.stats.Record(OutcomeCached, 0)
			return Extraction{Result: rec.Result, ContentHash: hash, Cached: true}, nil
		}
	}

	start := time.Now()
	doc, err := e.parse(ctx, p, filename, data)
	if err != nil {
		e.stats.Record(OutcomeFailed, time.Since(start))
		return Extraction{}, err
	}

	a := outline.Analyze(doc)
	e.stats.Record(OutcomeParsed, time.Since(start))
	log.Debug("outline inferred",
		"pages", doc.PageCount(),
		"spans", doc.SpanCount(),
		"sizes", len(a.Profile),
		"title_size", a.TitleSize,
		"headings", len(a.Result.Outline),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, filename, a.Result); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}

	return Extraction{
		Result:      a.Result,
		ContentHash: hash,
		Analysis:    &a,
		Pages:       doc.PageCount(),
		Spans:       doc.SpanCount(),
	}, nil
}

// parse runs the parser under the per-document budget. The parser cannot be
// interrupted, so on timeout its goroutine is abandoned and finishes alone.
func (e *Extractor) parse(ctx context.Context, p parser.Parser, filename string, data []byte) (*doctree.Document, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type parsed struct {
		doc *doctree.Document
		err error
	}
	done := make(chan parsed, 1)
	go func() {
		doc, err := p.Parse(bytes.NewReader(data), filename)
		done <- parsed{doc: doc, err: err}
	}()

	select {
	case r := <-done:
		return r.doc, r.err
	case <-ctx.Done():
		return nil, &parser.DocumentError{Document: filename, Err: ctx.Err()}
	}
}
