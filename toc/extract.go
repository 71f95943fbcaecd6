// Package toc finds the table of contents region of a document and compares
// declared structure with the one built from headings.
package toc

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"docx2nav/docx"
	"docx2nav/structure"
)

// Entry is a single numbered TOC line.
type Entry struct {
	DeclaredChapter int    `json:"declared_chapter"`
	DeclaredSection int    `json:"declared_section"`
	DeclaredTitle   string `json:"declared_title"`
	PageNumber      *int   `json:"page_number"`
}

// Region describes TOC location as half open range of element positions in
// the slice given to Extract. Start == End when document has no TOC.
type Region struct {
	Start   int
	End     int
	Entries []Entry
}

func (r Region) Found() bool {
	return r.End > r.Start
}

// Exclude returns elements with TOC region removed.
func (r Region) Exclude(elements []docx.Element) []docx.Element {
	if !r.Found() {
		return elements
	}
	res := make([]docx.Element, 0, len(elements)-(r.End-r.Start))
	res = append(res, elements[:r.Start]...)
	return append(res, elements[r.End:]...)
}

var (
	leaderRe = regexp.MustCompile(`^(.*?)\s*(?:\.{2,}|…+|\t)[\s.…]*(\d{1,4})$`)
	pageRe   = regexp.MustCompile(`^(.*?)\s+(\d{1,4})$`)
)

// IsEntryLine reports whether text looks like a TOC line with dotted leader
// and page number.
func IsEntryLine(text string) bool {
	return leaderRe.MatchString(strings.TrimSpace(text))
}

// line returns text and page of a TOC line.
func line(p *docx.Paragraph) (string, int, bool) {
	text := strings.TrimSpace(p.Text())
	m := leaderRe.FindStringSubmatch(text)
	if m == nil && strings.HasPrefix(strings.ToLower(p.StyleName), "toc") {
		m = pageRe.FindStringSubmatch(text)
	}
	if m == nil {
		return "", 0, false
	}
	page, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(m[1]), page, true
}

// Extract looks for TOC region starting within searchLimit elements and
// parses numbered entries out of it.
func Extract(elements []docx.Element, c *structure.Classifier, searchLimit int, log *zap.Logger) Region {
	log = log.Named("toc")

	start := -1
	for i, el := range elements[:min(searchLimit, len(elements))] {
		if p, ok := el.(*docx.Paragraph); ok {
			if _, _, ok := line(p); ok {
				start = i
				break
			}
		}
	}
	if start < 0 {
		log.Debug("No TOC region found", zap.Int("search limit", searchLimit))
		return Region{}
	}

	r := Region{Start: start, End: start}
	for _, el := range elements[start:] {
		p, ok := el.(*docx.Paragraph)
		if !ok {
			break
		}
		text, page, ok := line(p)
		if !ok {
			if !p.IsBlank() {
				break
			}
			r.End++
			continue
		}
		r.End++

		n, ok := c.Numbering(text)
		switch {
		case !ok:
			log.Debug("Unnumbered TOC line, ignoring", zap.Int("element", p.Pos), zap.String("text", text))
			continue
		case n.Depth > 2:
			log.Debug("Subsection TOC line, ignoring", zap.Int("element", p.Pos), zap.String("text", text))
			continue
		}
		r.Entries = append(r.Entries, Entry{
			DeclaredChapter: n.Chapter,
			DeclaredSection: n.Section,
			DeclaredTitle:   n.Title,
			PageNumber:      &page,
		})
	}

	log.Info("TOC region found",
		zap.Int("start", elements[r.Start].Index()), zap.Int("elements", r.End-r.Start), zap.Int("entries", len(r.Entries)))
	return r
}
