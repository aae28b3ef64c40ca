package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for file types no parser handles.
var ErrUnsupported = errors.New("unsupported document type")

// DocumentError reports that the rendering library failed on one document.
type DocumentError struct {
	Document string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func documentError(filename string, err error) error {
	return &DocumentError{Document: filename, Err: err}
}
