package structure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docx2nav/common"
	"docx2nav/docx"
)

// Section is a run of elements between two headings.
type Section struct {
	Number int
	Title  string
	// Elements in document order, heading paragraph is included only when
	// headings are kept.
	Elements []docx.Element
}

type Chapter struct {
	Number   int
	Title    string
	Promoted bool
	// Implicit chapter is made up when document has no chapter headings or
	// for preserved front matter.
	Implicit bool
	// Sections always start with section 0.
	Sections []*Section
}

// Outline is the document split into chapters.
type Outline struct {
	Chapters []*Chapter
	// FrontMatter holds elements preceding first chapter heading.
	FrontMatter []docx.Element
}

// SplitOptions controls splitter behavior not related to heading
// recognition.
type SplitOptions struct {
	BookTitle        string
	KeepHeadings     bool
	KeepFrontMatter  bool
	FrontMatterTitle string
	Summary          *common.Summary
}

// Split walks elements (TOC region already removed) in document order and
// builds outline. It never fails on structural problems, those are logged
// and counted in summary, error is only returned when ctx is cancelled.
func Split(ctx context.Context, elements []docx.Element, c *Classifier, opts SplitOptions, log *zap.Logger) (*Outline, error) {
	s := &splitter{
		log:     log.Named("split"),
		c:       c,
		opts:    opts,
		planned: c.PlanChapters(elements),
		opened:  make(map[int]bool),
		out:     &Outline{},
	}
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.feed(el)
	}
	s.finish()
	return s.out, nil
}

type splitter struct {
	log  *zap.Logger
	c    *Classifier
	opts SplitOptions

	state   SplitState
	planned map[int]bool
	opened  map[int]bool
	out     *Outline
	chapter *Chapter
	section *Section
}

func (s *splitter) feed(el docx.Element) {
	p, ok := el.(*docx.Paragraph)
	if !ok {
		s.body(el)
		return
	}

	h := s.c.Classify(p)
	switch h.Kind {
	case HeadingKindChapter:
		if s.opened[h.Chapter] {
			s.anomaly(common.AnomalyDuplicateChapter, p, h)
			s.body(el)
			return
		}
		s.openChapter(h, p)
	case HeadingKindSection:
		switch {
		case s.promotable(h):
			h.Promoted = true
			s.openChapter(h, nil)
			s.openSection(h, p)
		case s.state == SplitStateBeforeFirstChapter || h.Chapter != s.chapter.Number:
			s.anomaly(common.AnomalyHeadingMismatch, p, h)
			s.body(el)
		case h.Section <= s.section.Number:
			s.anomaly(common.AnomalySectionOutOfOrder, p, h)
			s.body(el)
		default:
			s.openSection(h, p)
		}
	default:
		s.body(el)
	}
}

// promotable reports whether section heading opens appendix chapter: it is
// "N.1" of a chapter without "N.0" heading which follows open chapter.
func (s *splitter) promotable(h Heading) bool {
	if h.Section != 1 || s.planned[h.Chapter] || s.opened[h.Chapter] {
		return false
	}
	return s.chapter == nil || h.Chapter > s.chapter.Number
}

func (s *splitter) openChapter(h Heading, p *docx.Paragraph) {
	s.chapter = &Chapter{Number: h.Chapter, Title: h.Title, Promoted: h.Promoted}
	s.section = &Section{Number: 0, Title: h.Title}
	s.headingElement(p)
	s.chapter.Sections = append(s.chapter.Sections, s.section)
	s.out.Chapters = append(s.out.Chapters, s.chapter)
	s.opened[h.Chapter] = true
	s.state = SplitStateInChapterIntro

	s.log.Debug("Chapter opened", zap.Int("chapter", h.Chapter), zap.String("title", h.Title), zap.Bool("promoted", h.Promoted))
}

func (s *splitter) openSection(h Heading, p *docx.Paragraph) {
	if h.Section > s.section.Number+1 {
		s.opts.Summary.Warn(common.AnomalySectionGap,
			fmt.Sprintf("chapter %d", h.Chapter),
			fmt.Sprintf("section %d follows section %d", h.Section, s.section.Number))
		s.log.Warn("Section numbering gap",
			zap.Int("chapter", h.Chapter), zap.Int("previous", s.section.Number), zap.Int("section", h.Section))
	}
	s.section = &Section{Number: h.Section, Title: h.Title}
	s.headingElement(p)
	s.chapter.Sections = append(s.chapter.Sections, s.section)
	s.state = SplitStateInSection
}

// headingElement puts heading paragraph into just opened section. When
// headings are not kept only its pictures and note references survive.
func (s *splitter) headingElement(p *docx.Paragraph) {
	switch {
	case p == nil:
	case s.opts.KeepHeadings:
		s.section.Elements = append(s.section.Elements, p)
	default:
		if a := anchors(p); a != nil {
			s.section.Elements = append(s.section.Elements, a)
		}
	}
}

// anchors returns copy of paragraph without text keeping runs with pictures
// or note references, nil when there are none.
func anchors(p *docx.Paragraph) *docx.Paragraph {
	var runs []docx.Run
	for _, r := range p.Runs {
		if len(r.Images) == 0 && len(r.Notes) == 0 {
			continue
		}
		r.Text = ""
		runs = append(runs, r)
	}
	if len(runs) == 0 {
		return nil
	}
	return &docx.Paragraph{Pos: p.Pos, StyleID: p.StyleID, StyleName: p.StyleName, Align: p.Align, Runs: runs}
}

func (s *splitter) body(el docx.Element) {
	if s.state == SplitStateBeforeFirstChapter {
		s.out.FrontMatter = append(s.out.FrontMatter, el)
		return
	}
	s.section.Elements = append(s.section.Elements, el)
}

func (s *splitter) anomaly(kind common.Anomaly, p *docx.Paragraph, h Heading) {
	open := -1
	if s.chapter != nil {
		open = s.chapter.Number
	}
	s.opts.Summary.Warn(kind, fmt.Sprintf("element %d", p.Pos), fmt.Sprintf("%d.%d %s", h.Chapter, h.Section, h.Title))
	s.log.Warn("Heading kept as body text",
		zap.Stringer("anomaly", kind), zap.Int("element", p.Pos), zap.Stringer("state", s.state),
		zap.Int("open chapter", open), zap.Int("chapter", h.Chapter), zap.Int("section", h.Section), zap.String("title", h.Title))
}

func (s *splitter) finish() {
	front := s.out.FrontMatter
	switch {
	case len(s.out.Chapters) == 0:
		s.log.Warn("No chapter headings found, whole document becomes single chapter", zap.Int("elements", len(front)))
		s.out.Chapters = []*Chapter{implicitChapter(s.opts.BookTitle, front)}
		s.out.FrontMatter = nil
	case len(front) == 0:
	case s.opts.KeepFrontMatter:
		s.out.Chapters = append([]*Chapter{implicitChapter(s.opts.FrontMatterTitle, front)}, s.out.Chapters...)
		s.out.FrontMatter = nil
	default:
		s.opts.Summary.Warn(common.AnomalyFrontMatterSkipped, "front matter", fmt.Sprintf("%d elements before first chapter", len(front)))
		s.log.Info("Front matter skipped", zap.Int("elements", len(front)))
	}
	s.log.Debug("Split completed", zap.Int("chapters", len(s.out.Chapters)))
}

func implicitChapter(title string, elements []docx.Element) *Chapter {
	return &Chapter{
		Number:   0,
		Title:    title,
		Implicit: true,
		Sections: []*Section{{Number: 0, Title: title, Elements: elements}},
	}
}
