package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fumiama/go-docx"
)

// docxDefaultSize is Word's body size when a run carries no w:sz.
const docxDefaultSize = 11.0

// DOCXParser handles .docx files. Every paragraph becomes a one-line block
// and every run a span; explicit page breaks start a new page.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, documentError(filename, fmt.Errorf("read docx: %w", err))
	}

	d, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, documentError(filename, fmt.Errorf("parse docx: %w", err))
	}
	return docxDocument(d.Document.Body.Items), nil
}

// docxBuilder accumulates pages while walking the body.
type docxBuilder struct {
	pages []doctree.Page
	spans []doctree.Span // Spans of the paragraph being built
	media int            // Drawings seen in the paragraph being built
}

func docxDocument(items []interface{}) *doctree.Document {
	b := &docxBuilder{pages: []doctree.Page{{}}}
	for _, item := range items {
		switch v := item.(type) {
		case *docx.Paragraph:
			b.paragraph(v)
		case *docx.Table:
			b.addBlock(doctree.Block{Kind: doctree.BlockImage})
		}
	}
	return &doctree.Document{Pages: b.pages}
}

func (b *docxBuilder) paragraph(para *docx.Paragraph) {
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			b.run(c)
		case *docx.Hyperlink:
			b.run(&c.Run)
		}
	}
	b.endParagraph()
}

func (b *docxBuilder) run(run *docx.Run) {
	font, size := docxRunStyle(run.RunProperties)
	var text strings.Builder

	emit := func() {
		if text.Len() > 0 {
			b.spans = append(b.spans, doctree.Span{Text: text.String(), FontName: font, FontSize: size})
			text.Reset()
		}
	}

	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			text.WriteString(c.Text)
		case *docx.Tab:
			text.WriteString("\t")
		case *docx.BarterRabbet:
			if c.Type == "page" {
				emit()
				b.pageBreak()
			}
		case *docx.Drawing:
			b.media++
		}
	}
	emit()
}

// pageBreak closes the paragraph so far and moves on to a new page.
func (b *docxBuilder) pageBreak() {
	b.endParagraph()
	b.pages = append(b.pages, doctree.Page{})
}

func (b *docxBuilder) endParagraph() {
	if len(b.spans) > 0 {
		b.addBlock(doctree.TextBlock(b.spans...))
		b.spans = nil
	}
	for ; b.media > 0; b.media-- {
		b.addBlock(doctree.Block{Kind: doctree.BlockImage})
	}
}

func (b *docxBuilder) addBlock(block doctree.Block) {
	last := &b.pages[len(b.pages)-1]
	last.Blocks = append(last.Blocks, block)
}

// docxRunStyle resolves a run's font name and size in points.
func docxRunStyle(props *docx.RunProperties) (string, float64) {
	size := docxDefaultSize
	if props == nil {
		return "", size
	}

	var font string
	if f := props.Fonts; f != nil {
		for _, name := range []string{f.ASCII, f.HAnsi, f.EastAsia} {
			if name != "" {
				font = name
				break
			}
		}
	}
	if props.Size != nil {
		// w:sz is in half-points.
		if half, err := strconv.ParseFloat(props.Size.Val, 64); err == nil && half > 0 {
			size = half / 2
		}
	}
	return font, size
}
