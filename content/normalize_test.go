package content

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"docx2nav/common"
	"docx2nav/docx"
	"docx2nav/structure"
)

func para(text string) *docx.Paragraph {
	return &docx.Paragraph{StyleName: "Normal", Runs: []docx.Run{{Text: text}}}
}

func cell(text string, span int, vm docx.VMerge) docx.Cell {
	return docx.Cell{Span: span, VMerge: vm, Paragraphs: []*docx.Paragraph{para(text)}}
}

func newTestNormalizer(t *testing.T, notes map[string]string) (*Normalizer, *common.Summary) {
	t.Helper()
	sum := common.NewSummary()
	return NewNormalizer(notes, sum, zaptest.NewLogger(t)), sum
}

func checkGrid(t *testing.T, tbl *Table) {
	t.Helper()
	if len(tbl.Cells) != tbl.Rows {
		t.Fatalf("grid has %d rows, declared %d", len(tbl.Cells), tbl.Rows)
	}
	for r, row := range tbl.Cells {
		if len(row) != tbl.Cols {
			t.Fatalf("row %d has %d cells, declared %d", r, len(row), tbl.Cols)
		}
		for c, cell := range row {
			if cell.Row != r || cell.Col != c {
				t.Errorf("cell at [%d,%d] claims [%d,%d]", r, c, cell.Row, cell.Col)
			}
		}
	}
}

func TestParagraphRuns(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)

	src := &docx.Paragraph{
		StyleName: "Body Text",
		Align:     "both",
		Runs: []docx.Run{
			{Text: "Give ", Size: 11},
			{Text: "", Size: 11},
			{Text: "0.5 mg", Bold: true, Size: 11},
			{Text: "0.5 mg", Bold: true, Size: 11},
			{Text: " daily", Italic: true, Underline: true},
		},
	}
	p := n.Paragraph(src)
	if p == nil {
		t.Fatal("paragraph dropped")
	}
	if len(p.Runs) != 4 {
		t.Fatalf("got %d runs, want 4 (empty dropped, identical kept apart)", len(p.Runs))
	}
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	if sb.String() != p.Text || p.Text != src.Text() {
		t.Errorf("runs concatenation %q, paragraph text %q", sb.String(), p.Text)
	}
	if p.Alignment != common.AlignmentJustify || p.Style != "Body Text" {
		t.Errorf("alignment %q style %q", p.Alignment, p.Style)
	}
	if p.Runs[0].FontSize == nil || *p.Runs[0].FontSize != 11 || p.Runs[3].FontSize != nil {
		t.Errorf("unexpected font sizes")
	}
	if !p.Runs[1].Bold || !p.Runs[3].Italic || !p.Runs[3].Underline {
		t.Errorf("formatting lost: %+v", p.Runs)
	}
}

func TestParagraphAlignment(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)
	for jc, want := range map[string]common.Alignment{
		"":       common.AlignmentLeft,
		"left":   common.AlignmentLeft,
		"start":  common.AlignmentLeft,
		"center": common.AlignmentCenter,
		"right":  common.AlignmentRight,
		"end":    common.AlignmentRight,
		"both":   common.AlignmentJustify,
	} {
		p := para("text")
		p.Align = jc
		if got := n.Paragraph(p).Alignment; got != want {
			t.Errorf("alignment(%q) = %q, want %q", jc, got, want)
		}
	}
}

func TestParagraphBlank(t *testing.T) {
	n, _ := newTestNormalizer(t, map[string]string{"1": "note"})

	if p := n.Paragraph(para("  \t ")); p != nil {
		t.Errorf("blank paragraph kept: %+v", p)
	}
	missing := &docx.Paragraph{Runs: []docx.Run{{Images: []docx.Image{{RelID: "rId9"}}}}}
	if p := n.Paragraph(missing); p != nil {
		t.Errorf("paragraph with missing picture only kept: %+v", p)
	}
	note := &docx.Paragraph{Runs: []docx.Run{{Notes: []string{"1"}}}}
	if p := n.Paragraph(note); p == nil || len(p.Footnotes) != 1 {
		t.Errorf("paragraph with footnote reference dropped")
	}
}

func TestParagraphImages(t *testing.T) {
	n, sum := newTestNormalizer(t, nil)

	src := &docx.Paragraph{Runs: []docx.Run{
		{Text: "See "},
		{Images: []docx.Image{
			{RelID: "rId1", Target: "word/media/image1.png", Description: "first", Data: []byte("1")},
			{RelID: "rId2", Target: "word/media/image2.wmf", Data: []byte("2")},
		}},
		{Images: []docx.Image{{RelID: "rId3", Target: "word/media/gone.png"}}},
	}}
	p := n.Paragraph(src)
	if len(p.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(p.Images))
	}
	if p.Images[0].Index != 1 || p.Images[1].Index != 2 || p.Images[0].Run != 1 || p.Images[0].Description != "first" {
		t.Errorf("unexpected refs: %+v %+v", p.Images[0], p.Images[1])
	}
	imgs := n.Images()
	if len(imgs) != 2 || imgs[1].Ref != p.Images[1] || imgs[1].Source != "word/media/image2.wmf" {
		t.Fatalf("unexpected images: %+v", imgs)
	}
	if sum.Count(common.AnomalyImageMissing) != 1 {
		t.Errorf("image_missing count = %d, want 1", sum.Count(common.AnomalyImageMissing))
	}

	imgs[0].Result.Format.Ext = "png"
	imgs[0].bind()
	if p.Images[0].Filename != "image_0001.png" || p.Images[0].Path != "pictures/image_0001.png" {
		t.Errorf("bind() = %q %q", p.Images[0].Filename, p.Images[0].Path)
	}
}

func TestTableMergedCell(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)

	tbl := n.Table(&docx.Table{GridCols: 2, Rows: []docx.Row{
		{Cells: []docx.Cell{cell("Header", 2, docx.VMergeNone)}},
		{Cells: []docx.Cell{cell("a", 1, docx.VMergeNone), cell("b", 1, docx.VMergeNone)}},
	}})
	checkGrid(t, tbl)

	if tbl.Rows != 2 || tbl.Cols != 2 || tbl.Expanded || tbl.OriginalRows != 2 {
		t.Fatalf("unexpected shape: rows %d cols %d expanded %t original %d", tbl.Rows, tbl.Cols, tbl.Expanded, tbl.OriginalRows)
	}
	origin, merged := tbl.Cells[0][0], tbl.Cells[0][1]
	if origin.Text != "Header" || origin.MergedFrom != nil || len(origin.Paragraphs) != 1 {
		t.Errorf("origin cell = %+v", origin)
	}
	if merged.Text != "" || merged.MergedFrom == nil || *merged.MergedFrom != [2]int{0, 0} || merged.Paragraphs != nil {
		t.Errorf("merged cell = %+v", merged)
	}
	if tbl.Cells[1][1].Text != "b" {
		t.Errorf("cell [1,1] = %+v", tbl.Cells[1][1])
	}
}

func TestTableVerticalMerge(t *testing.T) {
	n, sum := newTestNormalizer(t, nil)

	tbl := n.Table(&docx.Table{Pos: 4, GridCols: 3, Rows: []docx.Row{
		{Cells: []docx.Cell{cell("A", 1, docx.VMergeRestart), cell("B", 2, docx.VMergeRestart)}},
		{Cells: []docx.Cell{cell("", 1, docx.VMergeContinue), cell("", 2, docx.VMergeContinue)}},
		{Cells: []docx.Cell{cell("stale", 1, docx.VMergeContinue), cell("C", 1, docx.VMergeNone), cell("D", 1, docx.VMergeNone)}},
	}})
	checkGrid(t, tbl)
	if tbl.Expanded || tbl.OriginalRows != 3 {
		t.Errorf("expanded %t original %d, merges alone must not mark table", tbl.Expanded, tbl.OriginalRows)
	}
	if c := tbl.Cells[2][0]; c.Text != "" || c.Paragraphs != nil {
		t.Errorf("continuation cell = %+v", c)
	}
	if got := sum.Count(common.AnomalyContentDropped); got != 1 {
		t.Errorf("Count(content_dropped) = %d, want 1", got)
	}
	if w := sum.Warnings(); len(w) != 1 || w[0].Subject != "element 4" || !strings.Contains(w[0].Message, "stale") {
		t.Errorf("warnings = %+v", w)
	}

	want := map[[2]int]*[2]int{
		{0, 0}: nil, {0, 1}: nil, {0, 2}: {0, 1},
		{1, 0}: {0, 0}, {1, 1}: {0, 1}, {1, 2}: {0, 1},
		{2, 0}: {0, 0}, {2, 1}: nil, {2, 2}: nil,
	}
	for pos, from := range want {
		got := tbl.Cells[pos[0]][pos[1]].MergedFrom
		switch {
		case from == nil && got != nil:
			t.Errorf("cell %v merged from %v, want origin", pos, *got)
		case from != nil && (got == nil || *got != *from):
			t.Errorf("cell %v merged from %v, want %v", pos, got, *from)
		}
	}
	if tbl.Cells[2][2].Text != "D" || tbl.Cells[0][1].Text != "B" {
		t.Errorf("unexpected text placement")
	}
}

func TestTablePadding(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)

	tbl := n.Table(&docx.Table{GridCols: 3, Rows: []docx.Row{
		{Cells: []docx.Cell{cell("a", 1, docx.VMergeNone), cell("b", 1, docx.VMergeNone), cell("c", 1, docx.VMergeNone)}},
		{Before: 1, Cells: []docx.Cell{cell("x", 1, docx.VMergeNone)}},
		{},
		{Cells: []docx.Cell{cell("y", 1, docx.VMergeNone), cell("z", 3, docx.VMergeNone)}},
	}})
	checkGrid(t, tbl)

	if tbl.Rows != 3 || tbl.OriginalRows != 4 || tbl.Cols != 4 || !tbl.Expanded {
		t.Fatalf("unexpected shape: rows %d original %d cols %d", tbl.Rows, tbl.OriginalRows, tbl.Cols)
	}
	if c := tbl.Cells[1][0]; c.Text != "" || c.MergedFrom != nil {
		t.Errorf("padding cell = %+v", c)
	}
	if tbl.Cells[1][1].Text != "x" {
		t.Errorf("cell [1,1] = %+v", tbl.Cells[1][1])
	}
}

func TestTablePlain(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)

	tbl := n.Table(&docx.Table{GridCols: 2, Rows: []docx.Row{
		{Cells: []docx.Cell{cell("a", 1, docx.VMergeNone), cell("b", 1, docx.VMergeNone)}},
		{Cells: []docx.Cell{
			{Span: 1, Paragraphs: []*docx.Paragraph{para("c1"), para(""), para("c2")}},
			cell("d", 1, docx.VMergeNone),
		}},
	}})
	checkGrid(t, tbl)
	if tbl.Expanded {
		t.Error("plain table marked as expanded")
	}
	if c := tbl.Cells[1][0]; c.Text != "c1\nc2" || len(c.Paragraphs) != 2 {
		t.Errorf("multi paragraph cell = %+v", c)
	}
}

func TestNormalizeFootnotes(t *testing.T) {
	n, sum := newTestNormalizer(t, map[string]string{"1": "Dose per kg.", "e2": "Endnote.", "3": "Unused."})

	withNotes := &docx.Paragraph{Runs: []docx.Run{
		{Text: "Dose"},
		{Notes: []string{"1"}},
		{Text: " and more", Notes: []string{"7", "e2"}},
	}}
	outline := &structure.Outline{Chapters: []*structure.Chapter{{
		Number: 1,
		Title:  "Intro",
		Sections: []*structure.Section{
			{Number: 0, Title: "Intro", Elements: []docx.Element{withNotes}},
			{Number: 1, Title: "Setup", Elements: []docx.Element{para("body"), &docx.Table{GridCols: 1, Rows: []docx.Row{{Cells: []docx.Cell{cell("t", 1, docx.VMergeNone)}}}}}},
		},
	}}}
	chapters, err := n.Normalize(context.Background(), outline)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	sec := chapters[0].Sections[0]
	p := sec.Content[0].(*Paragraph)
	if len(p.Footnotes) != 2 || p.Footnotes[0] != (FootnoteRef{ID: "1", Run: 1}) || p.Footnotes[1] != (FootnoteRef{ID: "e2", Run: 2}) {
		t.Errorf("footnote refs = %+v", p.Footnotes)
	}
	for _, fn := range p.Footnotes {
		if _, ok := sec.Footnotes[fn.ID]; !ok {
			t.Errorf("footnote %q has no body in section", fn.ID)
		}
	}
	if len(sec.Footnotes) != 2 {
		t.Errorf("section footnotes = %v", sec.Footnotes)
	}
	if sum.Count(common.AnomalyOrphanFootnote) != 1 {
		t.Errorf("orphan_footnote count = %d, want 1", sum.Count(common.AnomalyOrphanFootnote))
	}

	stats := chapters[0].Sections[1].Statistics
	if stats != (Statistics{Paragraphs: 1, Tables: 1}) {
		t.Errorf("statistics = %+v", stats)
	}
	if len(chapters[0].Sections[1].Footnotes) != 0 {
		t.Errorf("footnotes leaked into another section")
	}
}

func TestNormalizeCancelled(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outline := &structure.Outline{Chapters: []*structure.Chapter{{Number: 1, Sections: []*structure.Section{{}}}}}
	if _, err := n.Normalize(ctx, outline); err == nil {
		t.Error("expected error")
	}
}
