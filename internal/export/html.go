package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/yuin/goldmark"
)

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// writeHTML renders the markdown form of r into a standalone page.
// Raw HTML in document text never reaches the output: text is escaped for
// markdown first and goldmark does not pass raw HTML through by default.
func writeHTML(w io.Writer, r outline.Result) error {
	var body bytes.Buffer
	if err := goldmark.New().Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := fmt.Fprintf(w, htmlPage, html.EscapeString(r.Title), body.String())
	return err
}
