package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser handles PDF files. Glyph positions from ledongthuc/pdf are
// grouped into lines and blocks by Layout.
type PDFParser struct {
	// Preflight runs the file through pdfcpu first so structurally broken
	// files fail with a readable error instead of a partial extraction.
	Preflight bool
	Layout    LayoutConfig
}

func (p *PDFParser) Parse(r io.Reader, filename string) (doc *doctree.Document, err error) {
	// Both PDF libraries panic on some malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = documentError(filename, fmt.Errorf("render pdf: %v", rec))
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, documentError(filename, fmt.Errorf("read pdf: %w", err))
	}

	if p.Preflight {
		if err := preflightPDF(data); err != nil {
			return nil, documentError(filename, err)
		}
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, documentError(filename, fmt.Errorf("open pdf: %w", err))
	}

	layout := p.Layout.withDefaults()
	doc = &doctree.Document{}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			// Keep page numbers aligned with the source.
			doc.Pages = append(doc.Pages, doctree.Page{})
			continue
		}
		width, height := mediaBox(page)
		doc.Pages = append(doc.Pages, doctree.Page{
			Width:  width,
			Height: height,
			Blocks: layout.BuildBlocks(page.Content().Text),
		})
	}
	return doc, nil
}

func preflightPDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if _, err := api.PageCount(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("preflight pdf: %w", err)
	}
	return nil
}

func mediaBox(page pdflib.Page) (width, height float64) {
	box := page.V.Key("MediaBox")
	if box.Len() != 4 {
		return 0, 0
	}
	return box.Index(2).Float64() - box.Index(0).Float64(),
		box.Index(3).Float64() - box.Index(1).Float64()
}
