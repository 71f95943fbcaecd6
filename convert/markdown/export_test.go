package markdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"docx2nav/common"
	"docx2nav/config"
	"docx2nav/content"
	"docx2nav/pictures"
	"docx2nav/state"
)

func testContent() *content.Content {
	ref := &content.ImageRef{Index: 1, Filename: "image_0001.png", Path: "pictures/image_0001.png", Description: "Chart", Run: 0}
	return &content.Content{
		Title: "Field Handbook",
		Chapters: []*content.Chapter{
			{Number: 1, Title: "Introduction", Sections: []*content.Section{
				{Number: 0, Title: "Introduction", Content: []content.Item{
					&content.Paragraph{Text: "Give 5 mg daily", Runs: []content.Run{
						{Text: "Give "}, {Text: "5 mg", Bold: true}, {Text: " daily", Italic: true, Underline: true},
					}, Footnotes: []content.FootnoteRef{{ID: "1", Run: 1}}},
				}, Footnotes: map[string]string{"1": "Per kg."}},
				{Number: 1, Title: "Setup, Care", Content: []content.Item{
					&content.Paragraph{Text: "", Runs: []content.Run{{}}, Alignment: common.AlignmentCenter, Images: []*content.ImageRef{ref}},
					&content.Table{Rows: 2, Cols: 2, Cells: [][]content.Cell{
						{
							{Row: 0, Col: 0, Text: "Header", Paragraphs: []content.Paragraph{{Text: "Header", Runs: []content.Run{{Text: "Header"}}}}},
							{Row: 0, Col: 1, MergedFrom: &[2]int{0, 0}},
						},
						{
							{Row: 1, Col: 0, Text: "a|b", Paragraphs: []content.Paragraph{{Text: "a|b", Runs: []content.Run{{Text: "a|b"}}}}},
							{Row: 1, Col: 1, Text: "c", Paragraphs: []content.Paragraph{{Text: "c", Runs: []content.Run{{Text: "c"}}}}},
						},
					}},
				}},
			}},
			{Number: 2, Title: "Next", Sections: []*content.Section{{Number: 0, Title: "Next"}}},
		},
		Images: []*content.Image{{
			Image:   &pictures.Image{Index: 1, Result: pictures.Result{Data: []byte("png"), Format: pictures.FormatPNG}},
			Chapter: 1,
			Ref:     ref,
		}},
	}
}

func testContext(t *testing.T, overwrite bool) context.Context {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t)
	env.Overwrite = overwrite
	return ctx
}

func read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unable to read %s: %v", name, err)
	}
	return string(data)
}

func TestExport(t *testing.T) {
	dst := t.TempDir()
	if err := Export(testContext(t, false), testContent(), dst, &config.MarkdownConfig{}, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	intro := read(t, filepath.Join(dst, "01_introduction", "00_introduction.md"))
	for _, want := range []string{
		"[Field Handbook](../README.md) / Introduction",
		"## Introduction\n",
		"Give **5 mg**[^1] *<u>daily</u>*",
		"[^1]: Per kg.",
		"[Next](../01_introduction/01_setup-care.md)",
	} {
		if !strings.Contains(intro, want) {
			t.Errorf("section 0 has no %q:\n%s", want, intro)
		}
	}
	if strings.Contains(intro, "[Previous]") {
		t.Errorf("first section links back:\n%s", intro)
	}

	setup := read(t, filepath.Join(dst, "01_introduction", "01_setup-care.md"))
	for _, want := range []string{
		"## 1.1 Setup, Care",
		`<p align="center">![Chart](pictures/image_0001.png)</p>`,
		"| Header |  |\n| --- | --- |\n| a\\|b | c |",
		"[Previous](../01_introduction/00_introduction.md) | [Next](../02_next/00_next.md)",
	} {
		if !strings.Contains(setup, want) {
			t.Errorf("section 1 has no %q:\n%s", want, setup)
		}
	}
	if strings.Count(setup, "Header") != 1 {
		t.Errorf("merged cell rendered more than once:\n%s", setup)
	}

	if _, err := os.Stat(filepath.Join(dst, "01_introduction", "pictures", "image_0001.png")); err != nil {
		t.Errorf("picture was not copied: %v", err)
	}
	index := read(t, filepath.Join(dst, "README.md"))
	if !strings.HasPrefix(index, "# Field Handbook\n") || !strings.Contains(index, "## 2. Next\n\n- [Next](02_next/00_next.md)") {
		t.Errorf("unexpected index:\n%s", index)
	}
}

func TestExportTemplate(t *testing.T) {
	dst := t.TempDir()
	cfg := &config.MarkdownConfig{SectionTemplate: `{{ .Chapter.Number }}/{{ .Section.Number }} {{ .Section.Title | upper }}`}
	if err := Export(testContext(t, false), testContent(), dst, cfg, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := read(t, filepath.Join(dst, "02_next", "00_next.md")); got != "2/0 NEXT" {
		t.Errorf("section = %q", got)
	}

	cfg.SectionTemplate = `{{ .Broken`
	if err := Export(testContext(t, true), testContent(), t.TempDir(), cfg, zaptest.NewLogger(t)); err == nil {
		t.Error("expected template error")
	}
}

func TestExportOverwrite(t *testing.T) {
	dst := t.TempDir()
	cfg := &config.MarkdownConfig{}
	if err := Export(testContext(t, false), testContent(), dst, cfg, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := Export(testContext(t, false), testContent(), dst, cfg, zaptest.NewLogger(t)); !errors.Is(err, ErrOutputExists) {
		t.Fatalf("Export() error = %v, want ErrOutputExists", err)
	}
	if err := Export(testContext(t, true), testContent(), dst, cfg, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
}

func TestRenderRun(t *testing.T) {
	tests := []struct {
		run  content.Run
		want string
	}{
		{content.Run{Text: "plain"}, "plain"},
		{content.Run{Text: " bold ", Bold: true}, " **bold** "},
		{content.Run{Text: "   ", Bold: true}, "   "},
		{content.Run{Text: "all", Bold: true, Italic: true, Underline: true}, "***<u>all</u>***"},
		{content.Run{Text: "2*3_[x]"}, `2\*3\_\[x\]`},
	}
	for _, tt := range tests {
		if got := renderRun(tt.run); got != tt.want {
			t.Errorf("renderRun(%+v) = %q, want %q", tt.run, got, tt.want)
		}
	}
}
