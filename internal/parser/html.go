package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/net/html"
)

// htmlBaseSize is the root font size in points (16px).
const htmlBaseSize = 12.0

var htmlBlockTags = map[string]bool{
	"p": true, "div": true, "li": true, "td": true, "th": true,
	"blockquote": true, "pre": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var htmlSkipTags = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true, "template": true,
}

// Heading scale factors applied when no inline font-size overrides them.
var htmlHeadingScale = map[string]float64{
	"h1": 2, "h2": 1.5, "h3": 1.17, "h4": 1, "h5": 0.83, "h6": 0.67,
}

// Absolute font-size keywords, in points.
var htmlSizeKeywords = map[string]float64{
	"xx-small": 6.75, "x-small": 7.5, "small": 9.75, "medium": 12,
	"large": 13.5, "x-large": 18, "xx-large": 24,
}

// HTMLParser handles HTML files, typically word-processor exports that
// carry typography in inline styles. Block elements become one-line blocks
// and text inherits the nearest ancestor's font-size and font-family.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, documentError(filename, fmt.Errorf("parse html: %w", err))
	}

	b := &htmlBuilder{pages: []doctree.Page{{}}}
	start := findBody(root)
	if start == nil {
		start = root
	}
	b.walk(start, htmlStyle{size: htmlBaseSize})
	b.endBlock()
	return &doctree.Document{Pages: b.pages}, nil
}

type htmlStyle struct {
	size float64
	font string
	pre  bool // Inside <pre>: whitespace is kept and newlines end lines
}

func (st htmlStyle) apply(tag string, decls map[string]string) htmlStyle {
	parent := st.size
	if tag == "pre" {
		st.pre = true
	}
	if scale, ok := htmlHeadingScale[tag]; ok {
		st.size *= scale
	}
	if v, ok := decls["font-size"]; ok {
		if size, ok := parseFontSize(v, parent); ok {
			st.size = size
		}
	}
	if v, ok := decls["font-family"]; ok {
		if f := firstFontFamily(v); f != "" {
			st.font = f
		}
	}
	return st
}

type htmlBuilder struct {
	pages []doctree.Page
	lines []doctree.Line // Lines of the block being built
	spans []doctree.Span // Spans of the line being built
}

func (b *htmlBuilder) walk(n *html.Node, st htmlStyle) {
	switch n.Type {
	case html.TextNode:
		b.text(n.Data, st)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.walk(c, st)
		}
		return
	}

	if htmlSkipTags[n.Data] {
		return
	}
	decls := parseInlineStyle(attr(n, "style"))
	if breaksPage(decls, "before") {
		b.pageBreak()
	}
	st = st.apply(n.Data, decls)

	switch n.Data {
	case "img":
		b.endBlock()
		b.addBlock(doctree.Block{Kind: doctree.BlockImage})
	case "br":
		b.endLine()
	default:
		block := htmlBlockTags[n.Data]
		if block {
			b.endBlock()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.walk(c, st)
		}
		if block {
			b.endBlock()
		}
	}

	if breaksPage(decls, "after") {
		b.pageBreak()
	}
}

// text appends s with whitespace collapsed the way a browser renders it.
// Preformatted text keeps its whitespace and breaks lines at newlines.
func (b *htmlBuilder) text(s string, st htmlStyle) {
	if st.pre {
		for i, part := range strings.Split(s, "\n") {
			if i > 0 {
				b.endLine()
			}
			b.appendText(part, st)
		}
		return
	}

	s = collapseSpace(s)
	n := len(b.spans)
	if n == 0 || strings.HasSuffix(b.spans[n-1].Text, " ") {
		s = strings.TrimLeft(s, " ")
	}
	b.appendText(s, st)
}

// appendText adds s to the current line, extending the last span when the
// style matches.
func (b *htmlBuilder) appendText(s string, st htmlStyle) {
	if s == "" {
		return
	}
	n := len(b.spans)
	if n > 0 {
		last := &b.spans[n-1]
		if s == " " || (last.FontName == st.font && last.FontSize == st.size) {
			last.Text += s
			return
		}
	}
	b.spans = append(b.spans, doctree.Span{Text: s, FontName: st.font, FontSize: st.size})
}

// endLine closes the current line, dropping trailing whitespace.
func (b *htmlBuilder) endLine() {
	var spans []doctree.Span
	for i, sp := range b.spans {
		if i == len(b.spans)-1 {
			sp.Text = strings.TrimRight(sp.Text, " ")
		}
		if sp.Text != "" {
			spans = append(spans, sp)
		}
	}
	b.spans = nil
	if len(spans) > 0 {
		b.lines = append(b.lines, doctree.Line{Spans: spans})
	}
}

func (b *htmlBuilder) endBlock() {
	b.endLine()
	if len(b.lines) > 0 {
		b.addBlock(doctree.Block{Kind: doctree.BlockText, Lines: b.lines})
		b.lines = nil
	}
}

// pageBreak starts a new page unless the current one is still empty.
func (b *htmlBuilder) pageBreak() {
	b.endBlock()
	if len(b.pages[len(b.pages)-1].Blocks) > 0 {
		b.pages = append(b.pages, doctree.Page{})
	}
}

func (b *htmlBuilder) addBlock(block doctree.Block) {
	last := &b.pages[len(b.pages)-1]
	last.Blocks = append(last.Blocks, block)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// breaksPage reports a forced page break on the given side of an element.
func breaksPage(decls map[string]string, side string) bool {
	return strings.EqualFold(decls["page-break-"+side], "always") ||
		strings.EqualFold(decls["break-"+side], "page")
}

// parseInlineStyle splits a style attribute into declarations keyed by
// lower-cased property name.
func parseInlineStyle(style string) map[string]string {
	decls := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important"))
		decls[strings.ToLower(strings.TrimSpace(prop))] = val
	}
	return decls
}

// parseFontSize converts a CSS font-size to points. Relative units resolve
// against parent.
func parseFontSize(v string, parent float64) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if size, ok := htmlSizeKeywords[v]; ok {
		return size, true
	}

	units := []struct {
		suffix string
		scale  func(float64) float64
	}{
		{"pt", func(n float64) float64 { return n }},
		{"px", func(n float64) float64 { return n * 0.75 }},
		{"rem", func(n float64) float64 { return n * htmlBaseSize }},
		{"em", func(n float64) float64 { return n * parent }},
		{"%", func(n float64) float64 { return n / 100 * parent }},
	}
	for _, u := range units {
		num, ok := strings.CutSuffix(v, u.suffix)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return u.scale(n), true
	}
	return 0, false
}

// firstFontFamily returns the first family of a font-family list.
func firstFontFamily(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

// collapseSpace folds whitespace runs into one space, keeping a single
// space at either edge so words in adjacent nodes stay apart.
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		return " "
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		out = " " + out
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		out += " "
	}
	return out
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
