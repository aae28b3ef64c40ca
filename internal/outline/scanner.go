package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// minHeadingRunes is the shortest trimmed text accepted as a heading.
const minHeadingRunes = 3

// ScanOutline walks every page and emits an entry for each isolated span
// (sole span of the sole line of a text block) whose size has a heading level.
// Entries come out in page order, then block order. Repeated headings are kept.
func ScanOutline(doc *doctree.Document, levels LevelMap) []Entry {
	entries := []Entry{}
	if doc == nil {
		return entries
	}

	for i, page := range doc.Pages {
		for _, block := range page.Blocks {
			raw, ok := isolatedSpan(block)
			if !ok {
				continue
			}
			span := NewTextSpan(raw, i+1)
			level, ok := levels[span.FontSize]
			if !ok {
				continue
			}
			text := strings.TrimSpace(span.Text)
			if !looksLikeHeading(text) {
				continue
			}
			entries = append(entries, Entry{Level: level, Text: text, Page: span.Page})
		}
	}
	return entries
}

// isolatedSpan returns the span of a one-line, one-span text block.
func isolatedSpan(b doctree.Block) (doctree.Span, bool) {
	if !b.IsText() || len(b.Lines) != 1 || len(b.Lines[0].Spans) != 1 {
		return doctree.Span{}, false
	}
	return b.Lines[0].Spans[0], true
}

// looksLikeHeading rejects page numbers, bullets and other short or
// letterless runs.
func looksLikeHeading(text string) bool {
	if utf8.RuneCountInString(text) < minHeadingRunes {
		return false
	}
	return strings.IndexFunc(text, unicode.IsLetter) >= 0
}
