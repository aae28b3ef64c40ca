package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// maxBatchFiles bounds how many uploads one batch request may carry.
const maxBatchFiles = 10

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, s.cfg.MaxUploadBytes+formOverhead); err != nil {
		writeUploadError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, err := s.readUpload(files[0])
	if err != nil {
		writeUploadError(w, err)
		return
	}

	job := pipeline.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), submitStatus(err))
		return
	}

	writeJSON(w, http.StatusAccepted, jobAccepted(job))
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, s.cfg.MaxUploadBytes*maxBatchFiles+formOverhead); err != nil {
		writeUploadError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, fmt.Sprintf("at most %d files per batch", maxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}
		accepted := jobAccepted(job)
		accepted["filename"] = filename
		results = append(results, accepted)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusFailed:
		msg := "job failed"
		if len(snap.Errors) > 0 {
			msg = snap.Errors[len(snap.Errors)-1]
		}
		jsonError(w, msg, http.StatusUnprocessableEntity)
		return
	default:
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}

	res, ok := job.Result()
	if !ok {
		jsonError(w, "job has no result", http.StatusInternalServerError)
		return
	}
	writeResult(w, r, res)
}

func jobAccepted(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	}
}

func submitStatus(err error) int {
	if errors.Is(err, pipeline.ErrQueueFull) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
