package markdown

import (
	"fmt"
	"strings"
	"unicode"

	"docx2nav/common"
	"docx2nav/content"
)

// renderItems converts section content to Markdown blocks separated by
// empty lines.
func renderItems(items []content.Item) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		var b string
		switch it := item.(type) {
		case *content.Paragraph:
			b = renderParagraph(it)
		case *content.Table:
			b = renderTable(it)
		}
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderParagraph(p *content.Paragraph) string {
	out := renderInline(p)
	if p.Alignment == common.AlignmentCenter && out != "" {
		return `<p align="center">` + out + `</p>`
	}
	return out
}

func renderInline(p *content.Paragraph) string {
	var sb strings.Builder
	for i, r := range p.Runs {
		sb.WriteString(renderRun(r))
		for _, fn := range p.Footnotes {
			if fn.Run == i {
				fmt.Fprintf(&sb, "[^%s]", fn.ID)
			}
		}
		for _, img := range p.Images {
			if img.Run == i {
				fmt.Fprintf(&sb, "![%s](%s)", escape(img.Description), img.Path)
			}
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", "<br>"))
}

// renderRun wraps run text in emphasis markers keeping surrounding spaces
// outside of them.
func renderRun(r content.Run) string {
	text := escape(r.Text)
	core := strings.TrimFunc(text, unicode.IsSpace)
	if core == "" {
		return text
	}
	start := strings.Index(text, core)
	lead, tail := text[:start], text[start+len(core):]
	if r.Underline {
		core = "<u>" + core + "</u>"
	}
	if r.Italic {
		core = "*" + core + "*"
	}
	if r.Bold {
		core = "**" + core + "**"
	}
	return lead + core + tail
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
)

func escape(s string) string {
	return mdEscaper.Replace(s)
}

// renderTable produces pipe table. Cells covered by merge are left empty so
// merged content is shown once.
func renderTable(t *content.Table) string {
	if t.Rows == 0 || t.Cols == 0 {
		return ""
	}
	var sb strings.Builder
	for r, row := range t.Cells {
		sb.WriteByte('|')
		for _, cell := range row {
			text := ""
			if cell.Origin() {
				parts := make([]string, 0, len(cell.Paragraphs))
				for i := range cell.Paragraphs {
					parts = append(parts, renderInline(&cell.Paragraphs[i]))
				}
				text = strings.ReplaceAll(strings.Join(parts, "<br>"), "|", `\|`)
			}
			sb.WriteString(" " + text + " |")
		}
		sb.WriteByte('\n')
		if r == 0 {
			sb.WriteByte('|')
			for range row {
				sb.WriteString(" --- |")
			}
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
