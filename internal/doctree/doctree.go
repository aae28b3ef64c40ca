package doctree

// Document is the parsed page content of one input file.
type Document struct {
	Pages []Page // In source order; page N is Pages[N-1]
}

// Page is a single rendered page.
type Page struct {
	Width  float64 // Points (0 if N/A)
	Height float64
	Blocks []Block // Layout blocks in encounter order
}

// BlockKind distinguishes text blocks from everything else on a page.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
)

// Block is a layout block: a group of lines the renderer considers one unit.
type Block struct {
	Kind  BlockKind
	Lines []Line // Empty for non-text blocks
}

// Line is a run of spans sharing a baseline.
type Line struct {
	Spans []Span
}

// Span is a run of text with uniform font name and size.
type Span struct {
	Text     string
	FontName string
	FontSize float64 // Raw size in points, before rounding
	X, Y     float64 // Origin in points (0 if N/A)
	Width    float64
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// SpanCount returns the number of spans across all text blocks.
func (d *Document) SpanCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			for _, l := range b.Lines {
				n += len(l.Spans)
			}
		}
	}
	return n
}

// TextBlock builds a text block holding a single line.
func TextBlock(spans ...Span) Block {
	return Block{Kind: BlockText, Lines: []Line{{Spans: spans}}}
}

// IsText reports whether b carries text lines.
func (b Block) IsText() bool {
	return b.Kind == BlockText && len(b.Lines) > 0
}
