package structure

import (
	"strings"

	"docx2nav/config"
	"docx2nav/docx"
)

// Heading is result of paragraph classification.
type Heading struct {
	Kind    HeadingKind
	Chapter int
	Section int
	Title   string
	// Promoted is set by splitter for section heading which opens appendix
	// style chapter without "N.0" heading.
	Promoted bool
}

// Classifier decides whether a paragraph is a chapter or section heading.
// It has no state besides configuration so the same paragraph always gets
// the same answer.
type Classifier struct {
	styles       []string
	boldFallback bool
	minFontSize  float64
	fixes        fixes
}

func NewClassifier(cfg *config.DocumentConfig) (*Classifier, error) {
	fx, err := newFixes(cfg.NumberingFixes)
	if err != nil {
		return nil, err
	}
	c := &Classifier{
		boldFallback: cfg.BoldFallback,
		minFontSize:  cfg.MinHeadingFontSize,
		fixes:        fx,
	}
	for _, s := range cfg.HeadingStyles {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			c.styles = append(c.styles, s)
		}
	}
	return c, nil
}

// Numbering parses numbered heading text applying the same normalization,
// fixes and false positive filters as Classify.
func (c *Classifier) Numbering(text string) (Numbering, bool) {
	return parseNumbering(text, c.fixes)
}

func (c *Classifier) Classify(p *docx.Paragraph) Heading {
	n, ok := c.Numbering(p.Text())
	if !ok || n.Depth != 2 {
		return Heading{}
	}
	if n.Section > 0 {
		return Heading{Kind: HeadingKindSection, Chapter: n.Chapter, Section: n.Section, Title: n.Title}
	}
	if !c.headingStyle(p) && !c.emphasized(p) {
		return Heading{}
	}
	return Heading{Kind: HeadingKindChapter, Chapter: n.Chapter, Title: n.Title}
}

func (c *Classifier) headingStyle(p *docx.Paragraph) bool {
	name, id := strings.ToLower(p.StyleName), strings.ToLower(p.StyleID)
	for _, s := range c.styles {
		if strings.HasPrefix(name, s) || strings.HasPrefix(id, s) {
			return true
		}
	}
	return false
}

// emphasized is a fallback for documents where headings are typed as bold
// large text in body style.
func (c *Classifier) emphasized(p *docx.Paragraph) bool {
	if !c.boldFallback {
		return false
	}
	bold, size := p.Emphasis()
	return bold && size >= c.minFontSize
}

// PlanChapters returns set of chapter numbers having real "N.0" heading in
// elements. Splitter uses it to recognize appendix chapters.
func (c *Classifier) PlanChapters(elements []docx.Element) map[int]bool {
	planned := make(map[int]bool)
	for _, el := range elements {
		if p, ok := el.(*docx.Paragraph); ok {
			if h := c.Classify(p); h.Kind == HeadingKindChapter {
				planned[h.Chapter] = true
			}
		}
	}
	return planned
}
