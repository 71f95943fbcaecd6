package content

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"docx2nav/utils/debug"
)

// String returns a readable tree of normalized content. It exists solely for
// manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.TextBlock(0, "Book", c.Title)
	tw.Line(0, "TOC entries: %d", len(c.TOC))
	tw.Line(0, "Chapters: %d", len(c.Chapters))
	for _, ch := range c.Chapters {
		tw.Line(1, "Chapter[%d] sections[%d]", ch.Number, len(ch.Sections))
		tw.TextBlock(2, "Title", ch.Title)
		for _, s := range ch.Sections {
			tw.Line(2, "Section[%d] paragraphs[%d] tables[%d] images[%d]", s.Number,
				s.Statistics.Paragraphs, s.Statistics.Tables, s.Statistics.Images)
			tw.TextBlock(3, "Title", s.Title)
			for _, item := range s.Content {
				dumpItem(tw, 3, item)
			}
			if len(s.Footnotes) > 0 {
				keys := slices.Collect(maps.Keys(s.Footnotes))
				sort.Sort(natural.StringSlice(keys))
				tw.Line(3, "Footnotes: %d", len(keys))
				for _, k := range keys {
					tw.TextBlock(4, "Footnote["+k+"]", s.Footnotes[k])
				}
			}
		}
	}

	if len(c.Images) > 0 {
		tw.Line(0, "Images: %d", len(c.Images))
		for _, img := range c.Images {
			tw.Line(1, "Image[%s] chapter[%d] source[%q] format[%q] size[%d] fallback[%t] backup[%t]",
				img.Filename(), img.Chapter, img.Source, img.Result.Format.Ext, len(img.Result.Data),
				img.Result.UsedFallback, img.Result.Backup != nil)
		}
	}
	return tw.String()
}

func dumpItem(tw *debug.TreeWriter, depth int, item Item) {
	switch it := item.(type) {
	case *Paragraph:
		tw.Line(depth, "Paragraph align[%s] style[%q] runs[%d] images[%d] footnotes[%d]",
			it.Alignment, it.Style, len(it.Runs), len(it.Images), len(it.Footnotes))
		tw.TextBlock(depth+1, "Text", it.Text)
	case *Table:
		tw.Line(depth, "Table rows[%d] cols[%d] expanded[%t] original rows[%d]", it.Rows, it.Cols, it.Expanded, it.OriginalRows)
		for _, row := range it.Cells {
			for _, cell := range row {
				if cell.MergedFrom != nil {
					tw.Line(depth+1, "Cell[%d,%d] merged from[%d,%d]", cell.Row, cell.Col, cell.MergedFrom[0], cell.MergedFrom[1])
					continue
				}
				tw.TextBlock(depth+1, fmt.Sprintf("Cell[%d,%d]", cell.Row, cell.Col), cell.Text)
			}
		}
	}
}
