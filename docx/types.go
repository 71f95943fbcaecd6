// Package docx reads WordprocessingML packages into a flat, ordered stream
// of block elements with resolved formatting, images and note references.
package docx

import (
	"strings"
	"unicode"
)

// Element is either *Paragraph or *Table.
type Element interface {
	// Index is position of the element in the document body.
	Index() int
	// Style is resolved (human readable) style name, may be empty.
	Style() string
}

// Document is everything the rest of the pipeline needs from the package.
type Document struct {
	// Title from docProps/core.xml.
	Title    string
	Elements []Element
	// Notes maps note id to its text. Endnote ids are prefixed with "e" to
	// keep them apart from footnotes.
	Notes map[string]string
	// Malformed counts elements skipped while reading.
	Malformed int
}

// Paragraph is a w:p element.
type Paragraph struct {
	Pos       int
	StyleID   string
	StyleName string
	// Align is effective w:jc value (left, center, right, both...).
	Align string
	Runs  []Run
}

func (p *Paragraph) Index() int    { return p.Pos }
func (p *Paragraph) Style() string { return p.StyleName }

// Text returns concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for i := range p.Runs {
		sb.WriteString(p.Runs[i].Text)
	}
	return sb.String()
}

// IsBlank reports whether paragraph has no visible text and no images.
func (p *Paragraph) IsBlank() bool {
	for i := range p.Runs {
		if len(p.Runs[i].Images) > 0 {
			return false
		}
	}
	return strings.TrimSpace(p.Text()) == ""
}

// Emphasis reports whether every run with visible text is bold and the
// largest font size (points) found among such runs.
func (p *Paragraph) Emphasis() (bold bool, size float64) {
	seen := false
	bold = true
	for i := range p.Runs {
		r := &p.Runs[i]
		if strings.IndexFunc(r.Text, func(c rune) bool { return !unicode.IsSpace(c) }) < 0 {
			continue
		}
		seen = true
		bold = bold && r.Bold
		size = max(size, r.Size)
	}
	return seen && bold, size
}

// Run is a w:r element with effective formatting.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	// Size in points, 0 when unknown.
	Size float64
	// Images anchored in this run in source order.
	Images []Image
	// Notes are footnote (and "e" prefixed endnote) ids referenced by this run.
	Notes []string
}

// Image is a picture reference resolved through package relationships.
type Image struct {
	RelID       string
	Target      string
	Description string
	// Data is nil when relationship or media part could not be resolved.
	Data []byte
}

// VMerge describes vertical merge state of a table cell.
type VMerge int

const (
	VMergeNone VMerge = iota
	VMergeRestart
	VMergeContinue
)

// Table is a w:tbl element. Cells keep their physical layout, merge
// expansion is done by the content normalizer.
type Table struct {
	Pos       int
	StyleName string
	// GridCols is number of w:gridCol entries in w:tblGrid.
	GridCols int
	Rows     []Row
}

func (t *Table) Index() int    { return t.Pos }
func (t *Table) Style() string { return t.StyleName }

type Row struct {
	// Grid columns skipped before first and after last cell.
	Before int
	After  int
	Cells  []Cell
}

type Cell struct {
	// Span is number of grid columns covered (w:gridSpan), at least 1.
	Span       int
	VMerge     VMerge
	Paragraphs []*Paragraph
}

// Text returns paragraphs text joined with new lines.
func (c *Cell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}
