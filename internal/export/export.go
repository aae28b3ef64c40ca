package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding for a Result.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned for format names ParseFormat does not know.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat resolves a user-supplied format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension, without the dot, for f.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	default:
		return "json"
	}
}

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Write encodes r to w in format f.
func Write(w io.Writer, f Format, r outline.Result) error {
	if r.Outline == nil {
		r.Outline = []outline.Entry{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		return writeHTML(w, r)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// Encode returns r encoded in format f.
func Encode(f Format, r outline.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
