package outline

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(text string, size float64) doctree.Span {
	return doctree.Span{Text: text, FontName: "Helvetica", FontSize: size}
}

func page(blocks ...doctree.Block) doctree.Page {
	return doctree.Page{Width: 612, Height: 792, Blocks: blocks}
}

func doc(pages ...doctree.Page) *doctree.Document {
	return &doctree.Document{Pages: pages}
}

func reportDoc() *doctree.Document {
	return doc(
		page(
			doctree.TextBlock(span("Report Title", 24)),
			doctree.TextBlock(span("Section One", 18)),
		),
		page(
			doctree.TextBlock(span("Sub Point", 14)),
		),
	)
}

func TestRoundSize(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{17.49, 17},
		{17.3, 17},
		{17.5, 18},
		{16.5, 16},
		{11.0, 11},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundSize(tt.raw), "RoundSize(%v)", tt.raw)
	}
}

func TestNewTextSpan_NormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	s := NewTextSpan(doctree.Span{Text: "Cafe\u0301", FontName: "Times", FontSize: 12.4}, 3)
	assert.Equal(t, "Caf\u00e9", s.Text)
	assert.Equal(t, 12, s.FontSize)
	assert.Equal(t, "Times", s.FontName)
	assert.Equal(t, 3, s.Page)
}

func TestBuildProfile_RoundedSizesShareKey(t *testing.T) {
	d := doc(page(
		doctree.TextBlock(span("Alpha", 17.49)),
		doctree.TextBlock(span("Beta", 17.3)),
		doctree.TextBlock(span("body", 10)),
	))
	p := BuildProfile(Spans(d))

	require.Len(t, p, 2)
	assert.Equal(t, 2, p.Count(17))
	assert.Equal(t, []string{"Helvetica", "Helvetica"}, p[17])
	assert.Equal(t, []int{17, 10}, p.Sizes())
}

func TestBuildProfile_SkipsImageBlocks(t *testing.T) {
	d := doc(page(
		doctree.Block{Kind: doctree.BlockImage},
		doctree.TextBlock(span("Only", 12)),
	))
	assert.Equal(t, []int{12}, BuildProfile(Spans(d)).Sizes())
}

func TestAssignLevels(t *testing.T) {
	p := FontProfile{24: {"A"}, 18: {"B"}, 14: {"C"}, 12: {"D"}, 10: {"E"}}
	levels, titleSize, ok := AssignLevels(p)

	require.True(t, ok)
	assert.Equal(t, 24, titleSize)
	assert.Equal(t, LevelMap{18: H1, 14: H2, 12: H3}, levels)
	_, hasTitle := levels[titleSize]
	assert.False(t, hasTitle, "title size must not carry a heading level")

	h1, _ := levels.SizeOf(H1)
	h2, _ := levels.SizeOf(H2)
	h3, _ := levels.SizeOf(H3)
	assert.Greater(t, h1, h2)
	assert.Greater(t, h2, h3)
}

func TestAssignLevels_FewSizes(t *testing.T) {
	levels, titleSize, ok := AssignLevels(FontProfile{20: {"A"}, 11: {"B"}})
	require.True(t, ok)
	assert.Equal(t, 20, titleSize)
	assert.Equal(t, LevelMap{11: H1}, levels)

	levels, titleSize, ok = AssignLevels(FontProfile{11: {"B"}})
	require.True(t, ok)
	assert.Equal(t, 11, titleSize)
	assert.Empty(t, levels)
	_, found := levels.SizeOf(H1)
	assert.False(t, found)
}

func TestAssignLevels_Empty(t *testing.T) {
	levels, titleSize, ok := AssignLevels(FontProfile{})
	assert.False(t, ok)
	assert.Zero(t, titleSize)
	assert.NotNil(t, levels)
	assert.Empty(t, levels)
}

func TestLocateTitle(t *testing.T) {
	spans := []TextSpan{
		{Text: "Header", FontSize: 10, Page: 1},
		{Text: "  Main Title \n", FontSize: 24, Page: 1},
		{Text: "Second Big", FontSize: 24, Page: 1},
	}
	assert.Equal(t, "Main Title", LocateTitle(spans, 24, true))
	assert.Equal(t, "", LocateTitle(spans, 30, true))
	assert.Equal(t, "", LocateTitle(spans, 24, false))
	assert.Equal(t, "", LocateTitle(nil, 24, true))
}

func TestLocateTitle_LargestSizeOnLaterPage(t *testing.T) {
	d := doc(
		page(doctree.TextBlock(span("Intro", 16)), doctree.TextBlock(span("body copy", 10))),
		page(doctree.TextBlock(span("Huge Banner", 30))),
	)
	a := Analyze(d)
	assert.Equal(t, 30, a.TitleSize)
	assert.Equal(t, "Intro", a.Result.Title, "falls back to the first outline entry")
	assert.Equal(t, []Entry{
		{Level: H1, Text: "Intro", Page: 1},
		{Level: H2, Text: "body copy", Page: 1},
	}, a.Result.Outline)
}

func TestScanOutline_Candidates(t *testing.T) {
	levels := LevelMap{18: H1, 14: H2}
	d := doc(page(
		doctree.TextBlock(span("Heading", 18)),
		// Two spans in one line.
		doctree.TextBlock(span("Mixed", 18), span("Run", 18)),
		// Two lines in one block.
		doctree.Block{Kind: doctree.BlockText, Lines: []doctree.Line{
			{Spans: []doctree.Span{span("Line A", 14)}},
			{Spans: []doctree.Span{span("Line B", 14)}},
		}},
		doctree.Block{Kind: doctree.BlockImage},
		doctree.TextBlock(span("12", 18)),
		doctree.TextBlock(span("1.2.3", 14)),
		doctree.TextBlock(span(" Go ", 14)),
		doctree.TextBlock(span("Body text", 10)),
		doctree.TextBlock(span("  Sub  ", 14.4)),
	))

	got := ScanOutline(d, levels)
	assert.Equal(t, []Entry{
		{Level: H1, Text: "Heading", Page: 1},
		{Level: H2, Text: "Sub", Page: 1},
	}, got)
}

func TestScanOutline_NonLatinLetters(t *testing.T) {
	d := doc(page(doctree.TextBlock(span("Введение", 18))))
	got := ScanOutline(d, LevelMap{18: H1})
	assert.Equal(t, []Entry{{Level: H1, Text: "Введение", Page: 1}}, got)
}

func TestScanOutline_KeepsRepeatedHeadings(t *testing.T) {
	running := doctree.TextBlock(span("Annual Report", 14))
	d := doc(page(running), page(running), page(running))

	got := ScanOutline(d, LevelMap{14: H1})
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, "Annual Report", e.Text)
		assert.Equal(t, i+1, e.Page)
	}
}

func TestScanOutline_OrderedByPage(t *testing.T) {
	d := doc(
		page(doctree.TextBlock(span("First", 18)), doctree.TextBlock(span("Second", 14))),
		page(doctree.TextBlock(span("Third", 14)), doctree.TextBlock(span("Fourth", 18))),
		page(),
		page(doctree.TextBlock(span("Fifth", 12))),
	)
	got := ScanOutline(d, LevelMap{18: H1, 14: H2, 12: H3})

	var texts []string
	prev := 0
	for _, e := range got {
		assert.GreaterOrEqual(t, e.Page, prev)
		prev = e.Page
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"First", "Second", "Third", "Fourth", "Fifth"}, texts)
}

func TestAssemble(t *testing.T) {
	r := Assemble("", []Entry{{Level: H1, Text: "Intro", Page: 1}})
	assert.Equal(t, "Intro", r.Title)
	assert.Len(t, r.Outline, 1, "fallback entry stays in the outline")

	r = Assemble("Given", []Entry{{Level: H1, Text: "Intro", Page: 1}})
	assert.Equal(t, "Given", r.Title)

	r = Assemble("", nil)
	assert.Equal(t, "", r.Title)
	assert.NotNil(t, r.Outline)
	assert.Empty(t, r.Outline)
}

func TestExtract_EmptyDocument(t *testing.T) {
	for _, d := range []*doctree.Document{nil, doc()} {
		r := Extract(d)
		assert.Equal(t, "", r.Title)
		require.NotNil(t, r.Outline)
		assert.Empty(t, r.Outline)

		data, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"","outline":[]}`, string(data))
	}
}

func TestExtract_ReportScenario(t *testing.T) {
	a := Analyze(reportDoc())

	assert.Equal(t, 24, a.TitleSize)
	assert.True(t, a.HasTitle)
	assert.Equal(t, LevelMap{18: H1, 14: H2}, a.Levels)
	assert.Equal(t, Result{
		Title: "Report Title",
		Outline: []Entry{
			{Level: H1, Text: "Section One", Page: 1},
			{Level: H2, Text: "Sub Point", Page: 2},
		},
	}, a.Result)
}

func TestExtract_ReportScenarioWithFooter(t *testing.T) {
	// A fourth distinct size is ranked H3, and "page 2 of 2" has letters,
	// so the footer joins the outline.
	d := reportDoc()
	d.Pages[1].Blocks = append(d.Pages[1].Blocks, doctree.TextBlock(span("page 2 of 2", 10)))

	a := Analyze(d)
	assert.Equal(t, LevelMap{18: H1, 14: H2, 10: H3}, a.Levels)
	assert.Equal(t, []Entry{
		{Level: H1, Text: "Section One", Page: 1},
		{Level: H2, Text: "Sub Point", Page: 2},
		{Level: H3, Text: "page 2 of 2", Page: 2},
	}, a.Result.Outline)
}

func TestExtract_Deterministic(t *testing.T) {
	first, err := json.Marshal(Extract(reportDoc()))
	require.NoError(t, err)
	for range 5 {
		again, err := json.Marshal(Extract(reportDoc()))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
