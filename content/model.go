package content

import (
	"bytes"
	"encoding/json"

	"docx2nav/common"
	"docx2nav/pictures"
)

// Item is a single piece of section content, either *Paragraph or *Table.
type Item interface {
	ItemType() string
}

// Run is a text span with uniform formatting. Source run boundaries are
// kept as is.
type Run struct {
	Text      string   `json:"text"`
	Bold      bool     `json:"bold"`
	Italic    bool     `json:"italic"`
	Underline bool     `json:"underline"`
	FontSize  *float64 `json:"font_size"`
}

type ImageRef struct {
	Index       int    `json:"index"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	Description string `json:"description"`
	// Run is index of the run holding picture anchor.
	Run int `json:"run"`
}

type FootnoteRef struct {
	ID  string `json:"id"`
	Run int    `json:"run"`
}

type Paragraph struct {
	Text      string           `json:"text"`
	Runs      []Run            `json:"runs"`
	Alignment common.Alignment `json:"alignment"`
	Style     string           `json:"style"`
	Images    []*ImageRef      `json:"images"`
	Footnotes []FootnoteRef    `json:"footnotes"`
}

func (p *Paragraph) ItemType() string { return "paragraph" }

func (p *Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	return marshalItem(struct {
		Type string `json:"type"`
		*plain
	}{p.ItemType(), (*plain)(p)})
}

// Cell is a single grid coordinate of a table. Cells covered by merge carry
// coordinates of the origin cell and no text.
type Cell struct {
	Row        int         `json:"row"`
	Col        int         `json:"col"`
	Text       string      `json:"text"`
	Paragraphs []Paragraph `json:"paragraphs"`
	MergedFrom *[2]int     `json:"merged_from"`
}

// Origin reports whether cell holds content rather than a merge copy.
func (c *Cell) Origin() bool {
	return c.MergedFrom == nil
}

type Table struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells [][]Cell `json:"cells"`
	// Expanded is set when number of emitted rows differs from rows found in
	// table markup, OriginalRows.
	Expanded     bool `json:"expanded"`
	OriginalRows int  `json:"original_rows"`
}

func (t *Table) ItemType() string { return "table" }

func (t *Table) MarshalJSON() ([]byte, error) {
	type plain Table
	return marshalItem(struct {
		Type string `json:"type"`
		*plain
	}{t.ItemType(), (*plain)(t)})
}

// marshalItem encodes v leaving HTML characters as is, text goes to the
// viewer verbatim.
func marshalItem(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type Statistics struct {
	Paragraphs int `json:"paragraphs"`
	Tables     int `json:"tables"`
	Images     int `json:"images"`
}

type Section struct {
	Number  int
	Title   string
	Content []Item
	// Footnotes referenced from section content, id -> text.
	Footnotes  map[string]string
	Statistics Statistics
}

type Chapter struct {
	Number   int
	Title    string
	Promoted bool
	Implicit bool
	Sections []*Section
}

// Image ties extracted picture to the chapter it is stored under and to its
// single reference in content.
type Image struct {
	*pictures.Image
	Chapter int
	Ref     *ImageRef
}

// bind updates reference with final picture name.
func (img *Image) bind() {
	img.Ref.Filename = img.Filename()
	img.Ref.Path = "pictures/" + img.Ref.Filename
}
