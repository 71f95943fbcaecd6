package toc

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"docx2nav/structure"
)

// Key identifies chapter (section 0) or section in content tree.
type Key struct {
	Chapter int    `json:"chapter"`
	Section int    `json:"section"`
	Title   string `json:"title"`
}

type Mismatch struct {
	Entry       Entry  `json:"entry"`
	ActualTitle string `json:"actual_title"`
}

// Report is a diagnostic, it never stops the build.
type Report struct {
	Matched          []Key      `json:"matched"`
	MissingInContent []Entry    `json:"missing_in_content"`
	MissingInToc     []Key      `json:"missing_in_toc"`
	TitleMismatches  []Mismatch `json:"title_mismatches"`
}

type pair struct{ chapter, section int }

// NormalizeTitle prepares title for comparison.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(norm.NFKC.String(s))), " ")
}

// Validate compares TOC entries with chapters built from headings. Implicit
// chapters and empty section 0 of promoted chapters have no TOC counterpart
// and are not checked.
func Validate(entries []Entry, chapters []*structure.Chapter) *Report {
	rep := &Report{
		Matched:          []Key{},
		MissingInContent: []Entry{},
		MissingInToc:     []Key{},
		TitleMismatches:  []Mismatch{},
	}

	var keys []Key
	content := make(map[pair]string)
	for _, ch := range chapters {
		if ch.Implicit {
			continue
		}
		for _, s := range ch.Sections {
			if s.Number == 0 && ch.Promoted {
				continue
			}
			k := Key{Chapter: ch.Number, Section: s.Number, Title: s.Title}
			keys = append(keys, k)
			content[pair{k.Chapter, k.Section}] = k.Title
		}
	}

	declared := make(map[pair]bool)
	for _, e := range entries {
		p := pair{e.DeclaredChapter, e.DeclaredSection}
		if declared[p] {
			continue
		}
		declared[p] = true

		actual, ok := content[p]
		switch {
		case !ok:
			rep.MissingInContent = append(rep.MissingInContent, e)
		case NormalizeTitle(actual) == NormalizeTitle(e.DeclaredTitle):
			rep.Matched = append(rep.Matched, Key{Chapter: p.chapter, Section: p.section, Title: actual})
		default:
			rep.TitleMismatches = append(rep.TitleMismatches, Mismatch{Entry: e, ActualTitle: actual})
		}
	}
	for _, k := range keys {
		if !declared[pair{k.Chapter, k.Section}] {
			rep.MissingInToc = append(rep.MissingInToc, k)
		}
	}
	return rep
}

// Consistent reports whether TOC and content fully agree.
func (r *Report) Consistent() bool {
	return len(r.MissingInContent) == 0 && len(r.MissingInToc) == 0 && len(r.TitleMismatches) == 0
}

func (r *Report) Log(log *zap.Logger) {
	fields := []zap.Field{
		zap.Int("matched", len(r.Matched)),
		zap.Int("missing in content", len(r.MissingInContent)),
		zap.Int("missing in toc", len(r.MissingInToc)),
		zap.Int("title mismatches", len(r.TitleMismatches)),
	}
	if r.Consistent() {
		log.Info("TOC validation completed", fields...)
		return
	}
	log.Warn("TOC validation found discrepancies", fields...)
	for _, e := range r.MissingInContent {
		log.Debug("Declared in TOC but not found in content", zap.Int("chapter", e.DeclaredChapter), zap.Int("section", e.DeclaredSection), zap.String("title", e.DeclaredTitle))
	}
	for _, k := range r.MissingInToc {
		log.Debug("Found in content but not declared in TOC", zap.Int("chapter", k.Chapter), zap.Int("section", k.Section), zap.String("title", k.Title))
	}
	for _, m := range r.TitleMismatches {
		log.Debug("Title differs from TOC", zap.Int("chapter", m.Entry.DeclaredChapter), zap.Int("section", m.Entry.DeclaredSection),
			zap.String("declared", m.Entry.DeclaredTitle), zap.String("actual", m.ActualTitle))
	}
}
