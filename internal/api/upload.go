package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/export"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// formOverhead is the slack allowed on top of MaxUploadBytes for multipart
// framing and other form fields.
const formOverhead = 1024 * 1024

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

// parseForm parses a multipart body limited to limit bytes.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("request exceeds max size (%d bytes)", limit)}
		}
		return &uploadError{http.StatusBadRequest, "invalid multipart form: " + err.Error()}
	}
	return nil
}

// readUpload reads one uploaded file, checking its type and size.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, &uploadError{http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))}
	}

	f, err := fh.Open()
	if err != nil {
		return filename, nil, &uploadError{http.StatusInternalServerError, "failed to open file"}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, &uploadError{http.StatusInternalServerError, "failed to read file"}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)}
	}
	return filename, data, nil
}

// writeUploadError maps an upload or extraction failure to a status.
func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	var de *parser.DocumentError
	switch {
	case errors.As(err, &ue):
		jsonError(w, ue.msg, ue.status)
	case errors.Is(err, parser.ErrUnsupported), errors.Is(err, export.ErrUnknownFormat):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &de):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeResult encodes res in the format named by the request's format query
// parameter.
func writeResult(w http.ResponseWriter, r *http.Request, res outline.Result) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := export.Encode(format, res)
	if err != nil {
		jsonError(w, "failed to encode result", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
