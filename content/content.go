// Package content builds normalized chapter/section tree out of DOCX
// handbook.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"docx2nav/common"
	"docx2nav/docx"
	"docx2nav/misc"
	"docx2nav/pictures"
	"docx2nav/state"
	"docx2nav/structure"
	"docx2nav/toc"
)

// Content is everything produced from a single source document.
type Content struct {
	SrcName string
	Title   string

	Doc     *docx.Document
	Outline *structure.Outline

	Chapters []*Chapter
	// TOC entries as declared by document itself.
	TOC        []toc.Entry
	Validation *toc.Report
	Images     []*Image

	WorkDir string
}

// Prepare reads source document and runs it through the whole pipeline
// short of writing results. Structural problems are never errors, they are
// recorded in run summary.
func Prepare(ctx context.Context, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)
	cfg := env.Cfg

	doc, err := docx.Open(srcName, log)
	if err != nil {
		return nil, err
	}
	for range doc.Malformed {
		env.Summary.Add(common.AnomalyMalformedElement)
	}

	classifier, err := structure.NewClassifier(&cfg.Document)
	if err != nil {
		return nil, err
	}

	c := &Content{
		SrcName: srcName,
		Title:   bookTitle(cfg.Document.BookTitle, doc, srcName),
		Doc:     doc,
	}
	log.Debug("Book title selected", zap.String("title", c.Title))

	elements := doc.Elements
	var region toc.Region
	if cfg.TOC.Enable {
		region = toc.Extract(elements, classifier, cfg.TOC.SearchLimit, log)
		elements = region.Exclude(elements)
	}
	c.TOC = region.Entries

	c.Outline, err = structure.Split(ctx, elements, classifier, structure.SplitOptions{
		BookTitle:        c.Title,
		KeepHeadings:     cfg.Document.KeepHeadings,
		KeepFrontMatter:  cfg.Document.KeepFrontMatter,
		FrontMatterTitle: cfg.Document.FrontMatterTitle,
		Summary:          env.Summary,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("unable to split document: %w", err)
	}

	n := NewNormalizer(doc.Notes, env.Summary, log)
	if c.Chapters, err = n.Normalize(ctx, c.Outline); err != nil {
		return nil, fmt.Errorf("unable to normalize content: %w", err)
	}

	c.Validation = toc.Validate(c.TOC, c.Outline.Chapters)
	if cfg.TOC.Enable {
		c.Validation.Log(log)
	}

	c.Images = n.Images()
	pics := make([]*pictures.Image, 0, len(c.Images))
	for _, img := range c.Images {
		pics = append(pics, img.Image)
	}
	resolver := pictures.NewResolver(&cfg.Images, pictures.NewExternal(&cfg.Images, log), env.Summary, log)
	if err := resolver.ResolveAll(ctx, pics); err != nil {
		return nil, err
	}
	for _, img := range c.Images {
		img.bind()
	}

	if env.Rpt != nil {
		if err := c.dump(env); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// dump saves intermediate representations for debugging.
func (c *Content) dump(env *state.LocalEnv) error {
	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return fmt.Errorf("unable to create temporary directory: %w", err)
	}
	c.WorkDir = tmpDir
	env.Rpt.StoreTemp(misc.GetAppName()+"-work", tmpDir)

	base := filepath.Base(c.SrcName)
	for name, text := range map[string]string{
		base + "_elements": c.Doc.String(),
		base + "_outline":  c.Outline.String(),
		base + "_content":  c.String(),
	} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(text), 0644); err != nil {
			return fmt.Errorf("unable to write %s for debugging: %w", name, err)
		}
	}
	env.Rpt.StoreJSON("toc_validation.json", c.Validation)
	return nil
}

const titleSearchDepth = 10

// bookTitle picks book title: configured one, document properties, first
// suitable paragraph and finally source file name.
func bookTitle(configured string, doc *docx.Document, srcName string) string {
	if t := strings.TrimSpace(configured); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Title); t != "" {
		return t
	}
	for _, el := range doc.Elements[:min(titleSearchDepth, len(doc.Elements))] {
		p, ok := el.(*docx.Paragraph)
		if !ok {
			continue
		}
		t := strings.Join(strings.Fields(p.Text()), " ")
		if utf8.RuneCountInString(t) > 3 && !strings.HasPrefix(strings.ToLower(t), "by ") {
			return t
		}
	}
	return strings.TrimSuffix(filepath.Base(srcName), filepath.Ext(srcName))
}
