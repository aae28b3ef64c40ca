package export

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

var levelDepth = map[outline.Level]int{
	outline.H1: 0,
	outline.H2: 1,
	outline.H3: 2,
}

// Backslash-escapes every ASCII punctuation mark that CommonMark could
// read as markup.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `{`, `\{`, `}`, `\}`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `(`, `\(`, `)`, `\)`,
	`#`, `\#`, `+`, `\+`, `-`, `\-`, `.`, `\.`, `!`, `\!`, `|`, `\|`,
	`~`, `\~`, `&`, `\&`,
)

// Markdown renders r as a heading followed by a nested bullet list.
// An entry is never indented more than one level below the entry before it.
func Markdown(r outline.Result) string {
	var sb strings.Builder
	if r.Title != "" {
		fmt.Fprintf(&sb, "# %s\n", markdownEscaper.Replace(r.Title))
	}
	if len(r.Outline) > 0 && sb.Len() > 0 {
		sb.WriteString("\n")
	}

	prev := -1
	for _, e := range r.Outline {
		depth := min(levelDepth[e.Level], prev+1)
		prev = depth
		fmt.Fprintf(&sb, "%s- %s (p. %d)\n",
			strings.Repeat("  ", depth), markdownEscaper.Replace(e.Text), e.Page)
	}
	return sb.String()
}
