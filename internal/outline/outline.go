// Package outline infers a document title and an H1-H3 outline from font sizes.
//
// The inference runs as a fixed sequence of pure stages:
//
//	BuildProfile -> AssignLevels -> {LocateTitle, ScanOutline} -> Assemble
//
// Each stage takes the previous stage's output and nothing else, so every
// stage can be exercised on its own.
package outline

import "github.com/dgallion1/docoutline/internal/doctree"

// Entry is one heading in the outline.
type Entry struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	Page  int    `json:"page" yaml:"page"`
}

// Result is the extracted title and outline of one document.
type Result struct {
	Title   string  `json:"title" yaml:"title"`
	Outline []Entry `json:"outline" yaml:"outline"`
}

// Analysis carries the intermediate stages alongside the result.
type Analysis struct {
	Profile   FontProfile
	Levels    LevelMap
	TitleSize int
	HasTitle  bool // False when the document has no spans
	Result    Result
}

// Assemble merges the located title and the scanned outline. An empty title
// falls back to the first outline entry's text; the entry stays in the outline.
func Assemble(title string, entries []Entry) Result {
	if entries == nil {
		entries = []Entry{}
	}
	if title == "" && len(entries) > 0 {
		title = entries[0].Text
	}
	return Result{Title: title, Outline: entries}
}

// Analyze runs every stage over doc.
func Analyze(doc *doctree.Document) Analysis {
	profile := BuildProfile(Spans(doc))
	levels, titleSize, ok := AssignLevels(profile)

	title := LocateTitle(PageSpans(doc, 1), titleSize, ok)
	entries := ScanOutline(doc, levels)

	return Analysis{
		Profile:   profile,
		Levels:    levels,
		TitleSize: titleSize,
		HasTitle:  ok,
		Result:    Assemble(title, entries),
	}
}

// Extract returns the title and outline of doc.
func Extract(doc *doctree.Document) Result {
	return Analyze(doc).Result
}
