package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// LayoutConfig tunes how positioned glyphs are grouped into lines and blocks.
// Ratios are multiples of the font size in play.
type LayoutConfig struct {
	RowTolerance   float64 // Max baseline difference in points for one row
	WordGapRatio   float64 // Horizontal gap that implies a space
	ColumnGapRatio float64 // Horizontal gap that splits a row into separate lines
	BlockGapRatio  float64 // Max baseline distance between lines of one block
}

// DefaultLayoutConfig returns the layout thresholds used when none are set.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		RowTolerance:   2.0,
		WordGapRatio:   0.25,
		ColumnGapRatio: 2.5,
		BlockGapRatio:  1.35,
	}
}

func (c LayoutConfig) withDefaults() LayoutConfig {
	d := DefaultLayoutConfig()
	if c.RowTolerance <= 0 {
		c.RowTolerance = d.RowTolerance
	}
	if c.WordGapRatio <= 0 {
		c.WordGapRatio = d.WordGapRatio
	}
	if c.ColumnGapRatio <= 0 {
		c.ColumnGapRatio = d.ColumnGapRatio
	}
	if c.BlockGapRatio <= 0 {
		c.BlockGapRatio = d.BlockGapRatio
	}
	return c
}

// textLine is one laid-out line plus the geometry needed to join blocks.
type textLine struct {
	spans       []doctree.Span
	baseline    float64
	left, right float64
	size        float64 // Largest font size on the line
}

// BuildBlocks groups one page's glyphs into text blocks, top of page first.
func (c LayoutConfig) BuildBlocks(glyphs []pdflib.Text) []doctree.Block {
	c = c.withDefaults()

	var lines []textLine
	for _, row := range c.groupIntoRows(filterGlyphs(glyphs)) {
		for _, seg := range c.splitRow(row) {
			if l, ok := c.buildLine(seg); ok {
				lines = append(lines, l)
			}
		}
	}
	return c.groupIntoBlocks(lines)
}

// filterGlyphs drops glyphs that carry no text or only line breaks.
func filterGlyphs(glyphs []pdflib.Text) []pdflib.Text {
	out := make([]pdflib.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.Trim(g.S, "\r\n") == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}

// groupIntoRows buckets glyphs by baseline. Rows come out top-down and each
// row is ordered left to right.
func (c LayoutConfig) groupIntoRows(glyphs []pdflib.Text) [][]pdflib.Text {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdflib.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]pdflib.Text
	row := []pdflib.Text{sorted[0]}
	rowY := sorted[0].Y
	for _, g := range sorted[1:] {
		if math.Abs(g.Y-rowY) <= c.RowTolerance {
			row = append(row, g)
			continue
		}
		rows = append(rows, row)
		row = []pdflib.Text{g}
		rowY = g.Y
	}
	rows = append(rows, row)

	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool {
			return r[i].X < r[j].X
		})
	}
	return rows
}

// splitRow cuts a row wherever the horizontal gap is wide enough to separate
// two pieces of text that only happen to share a baseline.
func (c LayoutConfig) splitRow(row []pdflib.Text) [][]pdflib.Text {
	var segs [][]pdflib.Text
	start := 0
	for i := 1; i < len(row); i++ {
		prev, cur := row[i-1], row[i]
		gap := cur.X - (prev.X + prev.W)
		if gap > c.ColumnGapRatio*math.Max(prev.FontSize, cur.FontSize) {
			segs = append(segs, row[start:i])
			start = i
		}
	}
	return append(segs, row[start:])
}

// buildLine merges glyphs into spans, one per run of the same font name and
// size. Whitespace glyphs never start a span of their own.
func (c LayoutConfig) buildLine(seg []pdflib.Text) (textLine, bool) {
	var (
		spans []doctree.Span
		text  strings.Builder
		cur   *doctree.Span
		prev  pdflib.Text
	)

	flush := func() {
		if cur != nil {
			cur.Text = text.String()
			spans = append(spans, *cur)
		}
		text.Reset()
	}

	for i, g := range seg {
		s := g.S
		blank := strings.TrimSpace(s) == ""
		if i > 0 && !blank && !strings.HasSuffix(text.String(), " ") {
			gap := g.X - (prev.X + prev.W)
			if gap > c.WordGapRatio*math.Max(prev.FontSize, g.FontSize) {
				s = " " + s
			}
		}

		switch {
		case cur == nil:
			cur = &doctree.Span{FontName: g.Font, FontSize: g.FontSize, X: g.X, Y: g.Y}
		case blank:
			// Stays with the current span.
		case strings.TrimSpace(text.String()) == "":
			// Leading whitespace takes the style of the first real glyph.
			cur.FontName, cur.FontSize = g.Font, g.FontSize
		case g.Font != cur.FontName || g.FontSize != cur.FontSize:
			flush()
			cur = &doctree.Span{FontName: g.Font, FontSize: g.FontSize, X: g.X, Y: g.Y}
		}
		text.WriteString(s)
		cur.Width = g.X + g.W - cur.X
		prev = g
	}
	flush()

	var all strings.Builder
	l := textLine{
		spans:    spans,
		baseline: seg[0].Y,
		left:     seg[0].X,
		right:    seg[len(seg)-1].X + seg[len(seg)-1].W,
	}
	for _, sp := range spans {
		all.WriteString(sp.Text)
		l.size = math.Max(l.size, sp.FontSize)
	}
	if strings.TrimSpace(all.String()) == "" {
		return textLine{}, false
	}
	return l, true
}

// groupIntoBlocks joins each line to the block above it when it sits
// directly beneath the block's last line.
func (c LayoutConfig) groupIntoBlocks(lines []textLine) []doctree.Block {
	var blocks []doctree.Block
	var last *textLine

	for i := range lines {
		l := &lines[i]
		if last != nil && c.continuesBlock(*last, *l) {
			b := &blocks[len(blocks)-1]
			b.Lines = append(b.Lines, doctree.Line{Spans: l.spans})
		} else {
			blocks = append(blocks, doctree.Block{
				Kind:  doctree.BlockText,
				Lines: []doctree.Line{{Spans: l.spans}},
			})
		}
		last = l
	}
	return blocks
}

func (c LayoutConfig) continuesBlock(above, below textLine) bool {
	dist := above.baseline - below.baseline
	if dist <= 0 || dist > c.BlockGapRatio*math.Max(above.size, below.size) {
		return false
	}
	return below.left < above.right && below.right > above.left
}
