package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes a single document job.
type Worker struct {
	extractor *Extractor
	log       *slog.Logger
}

func NewWorker(ex *Extractor, log *slog.Logger) *Worker {
	return &Worker{
		extractor: ex,
		log:       log,
	}
}

// Process extracts the job's document and records the outcome on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusParsing, "parsing")
	ext, err := w.extractor.Extract(ctx, job.Filename, job.FileData())
	// The bytes are not needed past this point.
	job.SetFileData(nil)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetResult(ext)
	log.Info("outline extracted",
		"title", ext.Result.Title,
		"headings", len(ext.Result.Outline),
		"cached", ext.Cached,
	)
	job.SetStatus(StatusCompleted, "done")
}
