package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fumiama/go-docx"
)

func docxRun(text, halfPoints, font string) *docx.Run {
	props := &docx.RunProperties{}
	if halfPoints != "" {
		props.Size = &docx.Size{Val: halfPoints}
	}
	if font != "" {
		props.Fonts = &docx.RunFonts{ASCII: font}
	}
	return &docx.Run{RunProperties: props, Children: []interface{}{&docx.Text{Text: text}}}
}

func docxPara(children ...interface{}) *docx.Paragraph {
	return &docx.Paragraph{Children: children}
}

func TestDOCXDocument_ParagraphsAndRuns(t *testing.T) {
	items := []interface{}{
		docxPara(docxRun("Report Title", "48", "Calibri Light")),
		docxPara(docxRun("Bold lead", "22", "Calibri"), docxRun(" and body", "", "")),
		docxPara(), // Empty paragraphs produce no block.
		&docx.Table{},
	}

	doc := docxDocument(items)
	if doc.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.PageCount())
	}
	blocks := doc.Pages[0].Blocks
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	title := blocks[0].Lines[0].Spans[0]
	if title.Text != "Report Title" || title.FontSize != 24 || title.FontName != "Calibri Light" {
		t.Errorf("unexpected title span %+v", title)
	}

	spans := blocks[1].Lines[0].Spans
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].FontSize != docxDefaultSize {
		t.Errorf("expected default size %v, got %v", docxDefaultSize, spans[1].FontSize)
	}

	if blocks[2].Kind != doctree.BlockImage {
		t.Errorf("expected table to become a non-text block")
	}
}

func TestDOCXDocument_PageBreaks(t *testing.T) {
	brk := &docx.Run{Children: []interface{}{&docx.BarterRabbet{Type: "page"}}}
	items := []interface{}{
		docxPara(docxRun("Cover", "56", "")),
		docxPara(brk),
		docxPara(docxRun("Introduction", "32", "")),
		docxPara(docxRun("Before", "", ""), brk, docxRun("After", "", "")),
	}

	doc := docxDocument(items)
	if doc.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.PageCount())
	}
	if got := doc.Pages[1].Blocks[0].Lines[0].Spans[0].Text; got != "Introduction" {
		t.Errorf("expected %q on page 2, got %q", "Introduction", got)
	}
	if got := doc.Pages[1].Blocks[1].Lines[0].Spans[0].Text; got != "Before" {
		t.Errorf("expected %q on page 2, got %q", "Before", got)
	}
	if got := doc.Pages[2].Blocks[0].Lines[0].Spans[0].Text; got != "After" {
		t.Errorf("expected %q on page 3, got %q", "After", got)
	}
}

func TestDOCXDocument_HyperlinksAndDrawings(t *testing.T) {
	link := &docx.Hyperlink{ID: "rId5", Run: *docxRun("Linked Heading", "28", "Arial")}
	pic := &docx.Run{Children: []interface{}{&docx.Drawing{}}}
	items := []interface{}{docxPara(link), docxPara(pic)}

	doc := docxDocument(items)
	blocks := doc.Pages[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if got := blocks[0].Lines[0].Spans[0].Text; got != "Linked Heading" {
		t.Errorf("expected %q, got %q", "Linked Heading", got)
	}
	if blocks[1].IsText() {
		t.Errorf("expected drawing to become a non-text block")
	}
}

func TestDOCXRunStyle(t *testing.T) {
	font, size := docxRunStyle(&docx.RunProperties{
		Fonts: &docx.RunFonts{HAnsi: "Georgia"},
		Size:  &docx.Size{Val: "not-a-number"},
	})
	if font != "Georgia" {
		t.Errorf("expected hAnsi fallback %q, got %q", "Georgia", font)
	}
	if size != docxDefaultSize {
		t.Errorf("expected default size, got %v", size)
	}

	if _, size := docxRunStyle(&docx.RunProperties{Size: &docx.Size{Val: "25"}}); size != 12.5 {
		t.Errorf("expected 12.5, got %v", size)
	}
}

func TestDOCXParser_InvalidArchive(t *testing.T) {
	p := &DOCXParser{}
	_, err := p.Parse(strings.NewReader("not a zip archive"), "broken.docx")
	if err == nil {
		t.Fatal("expected error for invalid docx")
	}
	var docErr *DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected *DocumentError, got %T", err)
	}
	if docErr.Document != "broken.docx" {
		t.Errorf("expected document %q, got %q", "broken.docx", docErr.Document)
	}
}
