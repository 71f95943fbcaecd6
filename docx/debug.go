package docx

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"docx2nav/utils/debug"
)

// String returns a readable tree of the document. It exists solely for
// manual inspection during debugging and goes into debug report.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := debug.NewTreeWriter()
	tw.TextBlock(0, "Title", d.Title)
	tw.Line(0, "Elements: %d (malformed %d)", len(d.Elements), d.Malformed)
	for _, el := range d.Elements {
		switch v := el.(type) {
		case *Paragraph:
			dumpParagraph(tw, 1, v)
		case *Table:
			tw.Line(1, "Table[%d] style[%q] grid[%d] rows[%d]", v.Pos, v.StyleName, v.GridCols, len(v.Rows))
			for r, row := range v.Rows {
				tw.Line(2, "Row[%d] before[%d] after[%d] cells[%d]", r, row.Before, row.After, len(row.Cells))
				for c, cell := range row.Cells {
					tw.Line(3, "Cell[%d] span[%d] vmerge[%d]", c, cell.Span, cell.VMerge)
					for _, p := range cell.Paragraphs {
						dumpParagraph(tw, 4, p)
					}
				}
			}
		}
	}
	if len(d.Notes) > 0 {
		tw.Line(0, "Notes: %d", len(d.Notes))
		keys := slices.Collect(maps.Keys(d.Notes))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.TextBlock(1, "Note["+k+"]", d.Notes[k])
		}
	}
	return tw.String()
}

func dumpParagraph(tw *debug.TreeWriter, depth int, p *Paragraph) {
	tw.Line(depth, "Paragraph[%d] style[%q] align[%q] runs[%d]", p.Pos, p.StyleName, p.Align, len(p.Runs))
	for i := range p.Runs {
		r := &p.Runs[i]
		tw.Line(depth+1, "Run[%d] b[%t] i[%t] u[%t] sz[%g] images[%d] notes%v", i, r.Bold, r.Italic, r.Underline, r.Size, len(r.Images), r.Notes)
		tw.TextBlock(depth+2, "text", r.Text)
		for _, img := range r.Images {
			tw.Line(depth+2, "Image rel[%q] target[%q] size[%d]", img.RelID, img.Target, len(img.Data))
		}
	}
}
