package content

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docx2nav/common"
	"docx2nav/docx"
	"docx2nav/pictures"
	"docx2nav/structure"
)

// Normalizer maps document elements to portable content items. It numbers
// pictures document wide so a single Normalizer must see elements in
// document order.
type Normalizer struct {
	notes  map[string]string
	sum    *common.Summary
	log    *zap.Logger
	images []*Image

	// state of the section being normalized
	chapter   int
	footnotes map[string]string
}

func NewNormalizer(notes map[string]string, sum *common.Summary, log *zap.Logger) *Normalizer {
	return &Normalizer{
		notes: notes,
		sum:   sum,
		log:   log.Named("normalize"),
	}
}

// Images returns pictures collected so far in document order.
func (n *Normalizer) Images() []*Image {
	return n.images
}

// Normalize converts every chapter of outline.
func (n *Normalizer) Normalize(ctx context.Context, o *structure.Outline) ([]*Chapter, error) {
	chapters := make([]*Chapter, 0, len(o.Chapters))
	for _, ch := range o.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := &Chapter{
			Number:   ch.Number,
			Title:    ch.Title,
			Promoted: ch.Promoted,
			Implicit: ch.Implicit,
			Sections: make([]*Section, 0, len(ch.Sections)),
		}
		n.chapter = ch.Number
		for _, sec := range ch.Sections {
			out.Sections = append(out.Sections, n.section(sec))
		}
		chapters = append(chapters, out)
	}
	n.log.Debug("Content normalized", zap.Int("chapters", len(chapters)), zap.Int("images", len(n.images)))
	return chapters, nil
}

func (n *Normalizer) section(src *structure.Section) *Section {
	sec := &Section{
		Number:    src.Number,
		Title:     src.Title,
		Content:   make([]Item, 0, len(src.Elements)),
		Footnotes: make(map[string]string),
	}
	n.footnotes = sec.Footnotes
	defer func() { n.footnotes = nil }()

	first := len(n.images)
	for _, el := range src.Elements {
		switch el := el.(type) {
		case *docx.Paragraph:
			if p := n.Paragraph(el); p != nil {
				sec.Content = append(sec.Content, p)
				sec.Statistics.Paragraphs++
			}
		case *docx.Table:
			sec.Content = append(sec.Content, n.Table(el))
			sec.Statistics.Tables++
		}
	}
	sec.Statistics.Images = len(n.images) - first
	return sec
}

// Paragraph converts paragraph. Nil is returned for paragraphs with nothing
// to show. Referenced footnotes end up in the current section footnotes.
func (n *Normalizer) Paragraph(src *docx.Paragraph) *Paragraph {
	p := &Paragraph{
		Alignment: alignment(src.Align),
		Style:     src.StyleName,
	}

	var (
		text   strings.Builder
		images []*docx.Image
	)
	for i := range src.Runs {
		r := &src.Runs[i]
		if r.Text == "" && len(r.Images) == 0 && len(r.Notes) == 0 {
			continue
		}
		idx := len(p.Runs)
		run := Run{Text: r.Text, Bold: r.Bold, Italic: r.Italic, Underline: r.Underline}
		if r.Size > 0 {
			size := r.Size
			run.FontSize = &size
		}
		p.Runs = append(p.Runs, run)
		text.WriteString(r.Text)

		for j := range r.Images {
			img := &r.Images[j]
			if img.Data == nil {
				n.sum.Warn(common.AnomalyImageMissing, fmt.Sprintf("element %d", src.Pos),
					fmt.Sprintf("relationship %q (%s) cannot be resolved", img.RelID, img.Target))
				n.log.Warn("Picture is missing, dropping", zap.Int("element", src.Pos), zap.String("rel", img.RelID), zap.String("target", img.Target))
				continue
			}
			p.Images = append(p.Images, &ImageRef{Description: img.Description, Run: idx})
			images = append(images, img)
		}
		for _, id := range r.Notes {
			if _, ok := n.notes[id]; !ok {
				n.sum.Warn(common.AnomalyOrphanFootnote, fmt.Sprintf("element %d", src.Pos), fmt.Sprintf("footnote %q has no body", id))
				n.log.Warn("Orphaned footnote reference, dropping", zap.Int("element", src.Pos), zap.String("id", id))
				continue
			}
			p.Footnotes = append(p.Footnotes, FootnoteRef{ID: id, Run: idx})
		}
	}
	p.Text = text.String()

	if strings.TrimSpace(p.Text) == "" && len(p.Images) == 0 && len(p.Footnotes) == 0 {
		return nil
	}

	for i, ref := range p.Images {
		ref.Index = len(n.images) + 1
		n.images = append(n.images, &Image{
			Image: &pictures.Image{
				Index:  ref.Index,
				Source: images[i].Target,
				Data:   images[i].Data,
			},
			Chapter: n.chapter,
			Ref:     ref,
		})
	}
	for _, fn := range p.Footnotes {
		if n.footnotes != nil {
			n.footnotes[fn.ID] = n.notes[fn.ID]
		}
	}
	return p
}

func alignment(jc string) common.Alignment {
	switch jc {
	case "center":
		return common.AlignmentCenter
	case "right", "end":
		return common.AlignmentRight
	case "both", "distribute", "justify", "lowKashida", "mediumKashida", "highKashida", "thaiDistribute":
		return common.AlignmentJustify
	default:
		return common.AlignmentLeft
	}
}

// Table converts table expanding merged cells so every grid coordinate is
// present.
func (n *Normalizer) Table(src *docx.Table) *Table {
	t := &Table{OriginalRows: len(src.Rows)}

	width := src.GridCols
	for _, row := range src.Rows {
		w := row.Before + row.After
		for _, c := range row.Cells {
			w += max(c.Span, 1)
		}
		width = max(width, w)
	}
	t.Cols = width

	for _, row := range src.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		r := len(t.Cells)
		cells := make([]Cell, width)
		filled := make([]bool, width)

		col := row.Before
		for i := range row.Cells {
			c := &row.Cells[i]
			span := max(c.Span, 1)

			origin := [2]int{r, col}
			if c.VMerge == docx.VMergeContinue && r > 0 {
				n.dropCovered(src, c, r, col)
				above := &t.Cells[r-1][col]
				if above.MergedFrom != nil {
					origin = *above.MergedFrom
				} else {
					origin = [2]int{above.Row, above.Col}
				}
			}
			for k := range span {
				cur := Cell{Row: r, Col: col + k}
				if cur.Row == origin[0] && cur.Col == origin[1] {
					cur.Paragraphs, cur.Text = n.cellParagraphs(c)
				} else {
					from := origin
					cur.MergedFrom = &from
				}
				cells[col+k], filled[col+k] = cur, true
			}
			col += span
		}
		for i := range cells {
			if !filled[i] {
				cells[i] = Cell{Row: r, Col: i}
			}
		}
		t.Cells = append(t.Cells, cells)
	}
	t.Rows = len(t.Cells)
	t.Expanded = t.Rows != t.OriginalRows
	return t
}

// dropCovered reports content of vertically merged continuation cell, only
// the origin cell content is emitted.
func (n *Normalizer) dropCovered(src *docx.Table, c *docx.Cell, row, col int) {
	for _, p := range c.Paragraphs {
		if p.IsBlank() && !hasNotes(p) {
			continue
		}
		n.sum.Warn(common.AnomalyContentDropped, fmt.Sprintf("element %d", src.Pos),
			fmt.Sprintf("merged cell [%d,%d] content %q", row, col, p.Text()))
		n.log.Warn("Content of merged table cell dropped",
			zap.Int("element", src.Pos), zap.Int("row", row), zap.Int("col", col), zap.String("text", p.Text()))
	}
}

func hasNotes(p *docx.Paragraph) bool {
	for i := range p.Runs {
		if len(p.Runs[i].Notes) > 0 {
			return true
		}
	}
	return false
}

func (n *Normalizer) cellParagraphs(c *docx.Cell) ([]Paragraph, string) {
	var (
		paras []Paragraph
		texts []string
	)
	for _, src := range c.Paragraphs {
		if p := n.Paragraph(src); p != nil {
			paras = append(paras, *p)
			texts = append(texts, p.Text)
		}
	}
	return paras, strings.Join(texts, "\n")
}
