// Package markdown exports normalized content as a set of linked Markdown
// files, one per section.
package markdown

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docx2nav/config"
	"docx2nav/content"
	"docx2nav/state"
)

//go:embed section.md.tmpl
var defaultSectionTemplate string

const readmeName = "README.md"

var ErrOutputExists = errors.New("destination already contains exported Markdown")

type Footnote struct {
	ID   string
	Text string
}

type ChapterValues struct {
	Number int
	Title  string
	Dir    string
}

type SectionValues struct {
	Number int
	Title  string
	File   string
}

// Values is a struct that holds variables we make available for section
// template expansion.
type Values struct {
	Context   string
	Book      string
	Index     string
	Chapter   ChapterValues
	Section   SectionValues
	Body      string
	Footnotes []Footnote
	Prev      string
	Next      string
}

type page struct {
	chapter *content.Chapter
	section *content.Section
	dir     string
	file    string
}

func (p *page) rel() string {
	return path.Join(p.dir, p.file)
}

// Export writes content as Markdown tree under dst.
func Export(ctx context.Context, c *content.Content, dst string, cfg *config.MarkdownConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log = log.Named("markdown")

	text := cfg.SectionTemplate
	if strings.TrimSpace(text) == "" {
		text = defaultSectionTemplate
	}
	tmpl, err := template.New(string(config.SectionTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("unable to parse template field %s: %w", config.SectionTemplateFieldName, err)
	}

	if err := prepareDestination(dst, env.Overwrite, log); err != nil {
		return err
	}

	log.Info("Exporting Markdown", zap.String("output", dst))

	var pages []*page
	dirs := make(map[int]string)
	for _, ch := range c.Chapters {
		dir := fmt.Sprintf("%02d_%s", ch.Number, slugOr(ch.Title, "chapter"))
		dirs[ch.Number] = dir
		for _, sec := range ch.Sections {
			pages = append(pages, &page{
				chapter: ch,
				section: sec,
				dir:     dir,
				file:    fmt.Sprintf("%02d_%s.md", sec.Number, slugOr(sec.Title, "section")),
			})
		}
	}

	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		values := Values{
			Context: string(config.SectionTemplateFieldName),
			Book:    c.Title,
			Index:   "../" + readmeName,
			Chapter: ChapterValues{Number: p.chapter.Number, Title: p.chapter.Title, Dir: p.dir},
			Section: SectionValues{Number: p.section.Number, Title: p.section.Title, File: p.file},
			Body:    renderItems(p.section.Content),
		}
		if i > 0 {
			values.Prev = "../" + pages[i-1].rel()
		}
		if i < len(pages)-1 {
			values.Next = "../" + pages[i+1].rel()
		}
		keys := slices.Collect(maps.Keys(p.section.Footnotes))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			values.Footnotes = append(values.Footnotes, Footnote{ID: k, Text: p.section.Footnotes[k]})
		}

		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, values); err != nil {
			return fmt.Errorf("unable to expand section template: %w", err)
		}
		if err := os.MkdirAll(filepath.Join(dst, p.dir), 0755); err != nil {
			return fmt.Errorf("unable to create chapter directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dst, filepath.FromSlash(p.rel())), buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("unable to write section: %w", err)
		}
	}

	for _, img := range c.Images {
		dir := filepath.Join(dst, dirs[img.Chapter], "pictures")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create pictures directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, img.Filename()), img.Result.Data, 0644); err != nil {
			return fmt.Errorf("unable to write picture: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(dst, readmeName), readme(c.Title, pages), 0644); err != nil {
		return fmt.Errorf("unable to write book index: %w", err)
	}
	log.Info("Markdown exported", zap.Int("sections", len(pages)), zap.Int("images", len(c.Images)))
	return nil
}

func readme(title string, pages []*page) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", title)
	var current *content.Chapter
	for _, p := range pages {
		if p.chapter != current {
			current = p.chapter
			if current.Implicit {
				fmt.Fprintf(&sb, "\n## %s\n\n", current.Title)
			} else {
				fmt.Fprintf(&sb, "\n## %d. %s\n\n", current.Number, current.Title)
			}
		}
		fmt.Fprintf(&sb, "- [%s](%s)\n", p.section.Title, p.rel())
	}
	return []byte(sb.String())
}

func slugOr(title, fallback string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return fallback
}

func prepareDestination(dst string, overwrite bool, log *zap.Logger) (err error) {
	var existing []string
	for _, pattern := range []string{readmeName, "[0-9][0-9]_*"} {
		matches, err := filepath.Glob(filepath.Join(dst, pattern))
		if err != nil {
			return err
		}
		existing = append(existing, matches...)
	}
	if len(existing) > 0 {
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrOutputExists, dst)
		}
		log.Debug("Removing previous export", zap.Strings("paths", existing))
		for _, name := range existing {
			err = multierr.Append(err, os.RemoveAll(name))
		}
		if err != nil {
			return fmt.Errorf("unable to clean destination: %w", err)
		}
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
