package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "*parser.PDFParser"},
		{"REPORT.PDF", "*parser.PDFParser"},
		{"memo.docx", "*parser.DOCXParser"},
		{"page.html", "*parser.HTMLParser"},
		{"page.htm", "*parser.HTMLParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
			continue
		}
		if got := typeName(p); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"notes.txt", "data.csv", "README.md", "noext"} {
		_, err := ForFile(name)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", name, err)
		}
		if IsSupportedExtension(name) {
			t.Errorf("%s: expected unsupported extension", name)
		}
	}
}

func TestOptions_ForFileConfiguresPDF(t *testing.T) {
	opts := Options{PDFPreflight: true, Layout: LayoutConfig{RowTolerance: 4}}
	p, err := opts.ForFile("scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pdf, ok := p.(*PDFParser)
	if !ok {
		t.Fatalf("expected *PDFParser, got %T", p)
	}
	if !pdf.Preflight || pdf.Layout.RowTolerance != 4 {
		t.Errorf("expected options to carry through, got %+v", pdf)
	}
}

func TestPDFParser_NotAPDF(t *testing.T) {
	for _, preflight := range []bool{false, true} {
		p := &PDFParser{Preflight: preflight}
		_, err := p.Parse(strings.NewReader("plain text, not a pdf"), "fake.pdf")
		if err == nil {
			t.Fatalf("preflight=%v: expected error", preflight)
		}
		var docErr *DocumentError
		if !errors.As(err, &docErr) {
			t.Fatalf("preflight=%v: expected *DocumentError, got %T", preflight, err)
		}
		if !strings.Contains(err.Error(), "fake.pdf") {
			t.Errorf("expected error to name the document, got %q", err.Error())
		}
	}
}

func TestDocumentError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := documentError("a.pdf", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause to be reachable")
	}
	if err.Error() != "document a.pdf: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *PDFParser:
		return "*parser.PDFParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	}
	return "unknown"
}

func TestOptions_Fingerprint(t *testing.T) {
	fp := func(o Options, name string) string {
		t.Helper()
		got, err := o.Fingerprint(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		return got
	}

	base := Options{}
	if fp(base, "a.html") != fp(base, "b.HTM") {
		t.Error("expected .html and .htm to share a fingerprint")
	}
	if fp(base, "a.html") == fp(base, "a.docx") {
		t.Error("expected html and docx fingerprints to differ")
	}
	if fp(base, "a.pdf") == fp(base, "a.docx") {
		t.Error("expected pdf and docx fingerprints to differ")
	}

	// Zero layout values fall back to the defaults, so both spell the same settings.
	if fp(base, "a.pdf") != fp(Options{Layout: DefaultLayoutConfig()}, "a.pdf") {
		t.Error("expected zero layout and default layout to match")
	}
	if fp(base, "a.pdf") == fp(Options{PDFPreflight: true}, "a.pdf") {
		t.Error("expected preflight to change the pdf fingerprint")
	}
	wide := DefaultLayoutConfig()
	wide.BlockGapRatio = 2
	if fp(base, "a.pdf") == fp(Options{Layout: wide}, "a.pdf") {
		t.Error("expected a layout change to change the pdf fingerprint")
	}
	// Layout only tunes PDF parsing.
	if fp(base, "a.docx") != fp(Options{Layout: wide}, "a.docx") {
		t.Error("expected docx fingerprint to ignore layout")
	}

	if _, err := base.Fingerprint("notes.txt"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
