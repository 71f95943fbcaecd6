package structure

import (
	"docx2nav/docx"
	"docx2nav/utils/debug"
)

// String returns outline tree for debug report.
func (o *Outline) String() string {
	if o == nil {
		return "<nil Outline>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "Front matter: %d elements", len(o.FrontMatter))
	tw.Line(0, "Chapters: %d", len(o.Chapters))
	for _, ch := range o.Chapters {
		tw.Line(1, "Chapter[%d] promoted[%t] implicit[%t] sections[%d]", ch.Number, ch.Promoted, ch.Implicit, len(ch.Sections))
		tw.TextBlock(2, "Title", ch.Title)
		for _, s := range ch.Sections {
			var paras, tables int
			for _, el := range s.Elements {
				switch el.(type) {
				case *docx.Paragraph:
					paras++
				case *docx.Table:
					tables++
				}
			}
			tw.Line(2, "Section[%d] paragraphs[%d] tables[%d]", s.Number, paras, tables)
			tw.TextBlock(3, "Title", s.Title)
		}
	}
	return tw.String()
}
