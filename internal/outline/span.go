package outline

import (
	"math"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// TextSpan is one run of text after normalization at the input boundary.
type TextSpan struct {
	Text     string
	FontSize int // Rounded
	FontName string
	Page     int // 1-based
}

// NewTextSpan coerces a collaborator span into a TextSpan on the given page.
func NewTextSpan(s doctree.Span, page int) TextSpan {
	return TextSpan{
		Text:     norm.NFC.String(s.Text),
		FontSize: RoundSize(s.FontSize),
		FontName: s.FontName,
		Page:     page,
	}
}

// RoundSize rounds a raw font size to the nearest integer, ties to even.
// Sizes that are not finite or are negative become 0.
func RoundSize(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0
	}
	return int(math.RoundToEven(raw))
}

// Spans flattens every text span in doc, in page/block/line order.
func Spans(doc *doctree.Document) []TextSpan {
	if doc == nil {
		return nil
	}
	var spans []TextSpan
	for i := range doc.Pages {
		spans = append(spans, pageSpans(doc.Pages[i], i+1)...)
	}
	return spans
}

// PageSpans returns the spans of page n (1-based). Out of range pages have none.
func PageSpans(doc *doctree.Document, n int) []TextSpan {
	if doc == nil || n < 1 || n > len(doc.Pages) {
		return nil
	}
	return pageSpans(doc.Pages[n-1], n)
}

func pageSpans(p doctree.Page, n int) []TextSpan {
	var spans []TextSpan
	for _, b := range p.Blocks {
		if !b.IsText() {
			continue
		}
		for _, l := range b.Lines {
			for _, s := range l.Spans {
				spans = append(spans, NewTextSpan(s, n))
			}
		}
	}
	return spans
}
