package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Parser renders raw document bytes into positioned, styled text spans.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".html": true,
	".htm":  true,
}

// Options configures the parsers returned by ForFile.
type Options struct {
	PDFPreflight bool
	Layout       LayoutConfig
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	return Options{}.ForFile(filename)
}

// ForFile returns the parser for filename configured with o.
func (o Options) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{Preflight: o.PDFPreflight, Layout: o.Layout}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Fingerprint identifies the parser ForFile selects for filename together
// with every option that changes what it produces. Two calls agree only when
// they would parse the same bytes the same way.
func (o Options) Fingerprint(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		l := o.Layout.withDefaults()
		return fmt.Sprintf("pdf;preflight=%t;row=%g;word=%g;column=%g;block=%g",
			o.PDFPreflight, l.RowTolerance, l.WordGapRatio, l.ColumnGapRatio, l.BlockGapRatio), nil
	case ".docx":
		return "docx", nil
	case ".html", ".htm":
		return "html", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
