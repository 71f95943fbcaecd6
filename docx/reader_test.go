package docx

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"docx2nav/utils/docxtest"
)

var wmfHeader = []byte{0xD7, 0xCD, 0xC6, 0x9A, 0x00, 0x00, 0x01, 0x02}

func parseBuilder(t *testing.T, b *docxtest.Builder) *Document {
	t.Helper()
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("Failed to build document: %v", err)
	}
	doc, err := Parse(bytes.NewReader(data), int64(len(data)), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestParseParagraphs(t *testing.T) {
	b := docxtest.New().
		Title("  Field Handbook ").
		ParagraphStyle("Heading1", "heading 1", true, 32).
		Text("Heading1", "1.0 Introduction").
		Paragraph("", "center",
			docxtest.Run{Text: "Plain "},
			docxtest.Run{Text: "bold", Bold: true},
			docxtest.Run{Text: " and italic", Italic: true, Underline: true})

	doc := parseBuilder(t, b)
	if doc.Title != "Field Handbook" {
		t.Errorf("Title = %q, want %q", doc.Title, "Field Handbook")
	}
	if len(doc.Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(doc.Elements))
	}

	h, ok := doc.Elements[0].(*Paragraph)
	if !ok {
		t.Fatalf("element 0 is %T, want *Paragraph", doc.Elements[0])
	}
	if h.Style() != "heading 1" || h.StyleID != "Heading1" {
		t.Errorf("heading style = %q/%q", h.StyleID, h.Style())
	}
	if bold, size := h.Emphasis(); !bold || size != 16 {
		t.Errorf("Emphasis() = %t, %g, want true, 16", bold, size)
	}

	p := doc.Elements[1].(*Paragraph)
	if p.Index() != 1 {
		t.Errorf("Index() = %d, want 1", p.Index())
	}
	if p.Style() != "Normal" {
		t.Errorf("default style = %q, want Normal", p.Style())
	}
	if p.Align != "center" {
		t.Errorf("Align = %q, want center", p.Align)
	}
	if got := p.Text(); got != "Plain bold and italic" {
		t.Errorf("Text() = %q", got)
	}
	if len(p.Runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(p.Runs))
	}
	if p.Runs[0].Bold || !p.Runs[1].Bold || !p.Runs[2].Italic || !p.Runs[2].Underline {
		t.Errorf("unexpected run formatting: %+v", p.Runs)
	}
	if p.Runs[0].Size != 11 {
		t.Errorf("document default size = %g, want 11", p.Runs[0].Size)
	}
	if bold, _ := p.Emphasis(); bold {
		t.Error("mixed paragraph reported as bold")
	}
}

func TestParseSpecialRuns(t *testing.T) {
	b := docxtest.New().Raw(`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t><w:noBreakHyphen/><w:t>d</w:t></w:r></w:p>`).
		Raw(`<w:p><w:hyperlink r:id="x"><w:r><w:t>link</w:t></w:r></w:hyperlink><w:del><w:r><w:t>gone</w:t></w:r></w:del></w:p>`).
		Raw(`<w:sdt><w:sdtContent><w:p><w:r><w:t>inside</w:t></w:r></w:p></w:sdtContent></w:sdt>`)

	doc := parseBuilder(t, b)
	want := []string{"a\tb\nc-d", "link", "inside"}
	if len(doc.Elements) != len(want) {
		t.Fatalf("got %d elements, want %d", len(doc.Elements), len(want))
	}
	for i, w := range want {
		if got := doc.Elements[i].(*Paragraph).Text(); got != w {
			t.Errorf("element %d text = %q, want %q", i, got, w)
		}
	}
}

func TestParseTable(t *testing.T) {
	b := docxtest.New().Raw(docxtest.Table(3,
		[]docxtest.Cell{{Text: "A", Span: 2}, {Text: "B", VMerge: "restart"}},
		[]docxtest.Cell{{Text: "C"}, {Text: "D"}, {VMerge: "continue"}},
	))

	doc := parseBuilder(t, b)
	if len(doc.Elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(doc.Elements))
	}
	tbl, ok := doc.Elements[0].(*Table)
	if !ok {
		t.Fatalf("element is %T, want *Table", doc.Elements[0])
	}
	if tbl.GridCols != 3 || len(tbl.Rows) != 2 {
		t.Fatalf("grid = %d rows = %d", tbl.GridCols, len(tbl.Rows))
	}
	first := tbl.Rows[0].Cells
	if len(first) != 2 || first[0].Span != 2 || first[0].Text() != "A" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first[1].VMerge != VMergeRestart {
		t.Errorf("VMerge = %d, want restart", first[1].VMerge)
	}
	if got := tbl.Rows[1].Cells[2].VMerge; got != VMergeContinue {
		t.Errorf("VMerge = %d, want continue", got)
	}
}

func TestParseNestedTableFlattened(t *testing.T) {
	inner := docxtest.Table(1, []docxtest.Cell{{Text: "inner 1"}}, []docxtest.Cell{{Text: "inner 2"}})
	b := docxtest.New().Raw(docxtest.Table(1,
		[]docxtest.Cell{{Content: docxtest.Paragraph("", "", docxtest.Run{Text: "outer"}) + inner}},
	))

	doc := parseBuilder(t, b)
	cell := doc.Elements[0].(*Table).Rows[0].Cells[0]
	if got := cell.Text(); got != "outer\ninner 1\ninner 2" {
		t.Errorf("cell text = %q", got)
	}
}

func TestParseNotesAndImages(t *testing.T) {
	b := docxtest.New().
		Footnote("1", "See appendix.").
		Media("rId7", "image1.wmf", wmfHeader).
		Media("rId8", "image2.png", []byte("\x89PNG\r\n\x1a\n")).
		Paragraph("", "",
			docxtest.Run{Text: "Dose"},
			docxtest.Run{Footnote: "1"},
			docxtest.Run{VML: "rId7", Description: "chart"},
			docxtest.Run{Image: "rId8", Description: "photo"},
			docxtest.Run{Image: "rId99"})

	doc := parseBuilder(t, b)
	if len(doc.Notes) != 1 || doc.Notes["1"] != "See appendix." {
		t.Errorf("Notes = %v", doc.Notes)
	}

	p := doc.Elements[0].(*Paragraph)
	if len(p.Runs) != 5 {
		t.Fatalf("got %d runs, want 5", len(p.Runs))
	}
	if notes := p.Runs[1].Notes; len(notes) != 1 || notes[0] != "1" {
		t.Errorf("run notes = %v", notes)
	}

	vml := p.Runs[2].Images
	if len(vml) != 1 || vml[0].Target != "word/media/image1.wmf" || !bytes.Equal(vml[0].Data, wmfHeader) || vml[0].Description != "chart" {
		t.Errorf("unexpected VML image: %+v", vml)
	}
	drawing := p.Runs[3].Images
	if len(drawing) != 1 || drawing[0].Target != "word/media/image2.png" || drawing[0].Description != "photo" {
		t.Errorf("unexpected drawing image: %+v", drawing)
	}
	missing := p.Runs[4].Images
	if len(missing) != 1 || missing[0].Data != nil || missing[0].RelID != "rId99" {
		t.Errorf("unresolved image should be kept without data: %+v", missing)
	}
	if p.IsBlank() {
		t.Error("paragraph with images reported blank")
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		data := []byte("definitely not a zip archive")
		if _, err := Parse(bytes.NewReader(data), int64(len(data)), zaptest.NewLogger(t)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing document part", func(t *testing.T) {
		data, err := docxtest.New().Without("word/document.xml").Bytes()
		if err != nil {
			t.Fatal(err)
		}
		_, err = Parse(bytes.NewReader(data), int64(len(data)), zaptest.NewLogger(t))
		if err == nil || !strings.Contains(err.Error(), "word/document.xml") {
			t.Fatalf("error = %v, want missing document part", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Open(filepath.Join(t.TempDir(), "none.docx"), zaptest.NewLogger(t)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("broken styles are tolerated", func(t *testing.T) {
		b := docxtest.New().Text("", "text").Part("word/styles.xml", "<w:styles><broken")
		fname := filepath.Join(t.TempDir(), "ok.docx")
		if err := b.WriteFile(fname); err != nil {
			t.Fatal(err)
		}
		doc, err := Open(fname, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if len(doc.Elements) != 1 || doc.Malformed != 1 {
			t.Errorf("elements = %d malformed = %d, want 1 and 1", len(doc.Elements), doc.Malformed)
		}
	})

	t.Run("broken body", func(t *testing.T) {
		data, err := docxtest.New().Part("word/document.xml", "<w:document><w:body>").Bytes()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := Parse(bytes.NewReader(data), int64(len(data)), zaptest.NewLogger(t)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDocumentString(t *testing.T) {
	doc := parseBuilder(t, docxtest.New().Title("T").Footnote("2", "two").Footnote("10", "ten").Text("", "hello"))
	s := doc.String()
	for _, want := range []string{"Elements: 1", "Note[2]", "Note[10]", "Paragraph[0]"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
	if strings.Index(s, "Note[2]") > strings.Index(s, "Note[10]") {
		t.Error("notes are not in natural order")
	}
	var nilDoc *Document
	if nilDoc.String() != "<nil Document>" {
		t.Error("nil document String()")
	}
}
