package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/docoutline/internal/export"
)

// handleOutline extracts an uploaded document synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Reject a bad format before reading the upload.
	if _, err := export.ParseFormat(r.URL.Query().Get("format")); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

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

	ext, err := s.orchestrator.Extractor().Extract(r.Context(), filename, data)
	if err != nil {
		s.log.Warn("extraction failed", "filename", filename, "error", err)
		writeUploadError(w, err)
		return
	}

	w.Header().Set("X-Content-Hash", ext.ContentHash)
	w.Header().Set("X-Cache", cacheHeader(ext.Cached))
	w.Header().Set("X-Headings", strconv.Itoa(len(ext.Result.Outline)))
	writeResult(w, r, ext.Result)
}

func cacheHeader(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}
