// Package chapters exports every chapter of the source document as a
// separate DOCX file.
package chapters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	docx "github.com/fumiama/go-docx"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"docx2nav/config"
	"docx2nav/state"
	"docx2nav/structure"
	"docx2nav/toc"
)

var ErrOutputExists = errors.New("destination already contains chapter file")

type part struct {
	number int
	doc    *docx.Docx
}

// Split cuts source document at chapter heading paragraphs and writes
// chapter_NN.docx files into dst. Content preceding first chapter is not
// exported. Names of produced files are returned in chapter order.
func Split(ctx context.Context, src, dst string, cfg *config.Config, log *zap.Logger) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)
	log = log.Named("chapters")

	classifier, err := structure.NewClassifier(&cfg.Document)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("unable to open source document: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat source document: %w", err)
	}
	doc, err := docx.Parse(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("unable to parse source document: %w", err)
	}

	chapterNumber := func(p *docx.Paragraph) (int, bool) {
		text := p.String()
		if toc.IsEntryLine(text) {
			return 0, false
		}
		n, ok := classifier.Numbering(text)
		if !ok || n.Section != 0 || n.Depth != 2 {
			return 0, false
		}
		return n.Chapter, true
	}

	var parts []*part
	seen := make(map[int]*part)
	for _, d := range doc.SplitByParagraph(func(p *docx.Paragraph) bool {
		_, ok := chapterNumber(p)
		return ok
	}) {
		first, ok := firstParagraph(d)
		if !ok {
			continue
		}
		num, ok := chapterNumber(first)
		if !ok {
			log.Debug("Skipping front matter", zap.Int("items", len(d.Document.Body.Items)))
			continue
		}
		if prev, ok := seen[num]; ok {
			log.Warn("Chapter heading repeated, merging parts", zap.Int("chapter", num))
			prev.doc.AppendFile(d)
			continue
		}
		p := &part{number: num, doc: d}
		seen[num] = p
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		log.Warn("No chapter headings found, nothing to export")
		return nil, nil
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Join(dst, fmt.Sprintf("chapter_%02d.docx", p.number))
		if _, err := os.Stat(name); err == nil && !env.Overwrite {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, name)
		}
		if err := writePart(p.doc, name, cfg.Export.Docx.FixZip); err != nil {
			return nil, err
		}
		log.Debug("Chapter exported", zap.Int("chapter", p.number), zap.String("file", name))
		names = append(names, name)
	}
	log.Info("Chapters exported", zap.Int("count", len(names)), zap.String("output", dst))
	return names, nil
}

func firstParagraph(d *docx.Docx) (*docx.Paragraph, bool) {
	for _, item := range d.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			return p, true
		}
	}
	return nil, false
}

func writePart(d *docx.Docx, name string, fixZip bool) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), ".chapter-*.docx")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := d.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write chapter document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to finalize chapter document: %w", err)
	}

	if fixZip {
		return copyZipWithoutDataDescriptors(tmpName, name)
	}
	return os.Rename(tmpName, name)
}

// copyZipWithoutDataDescriptors rewrites archive with entries in name order
// and without data descriptors which some readers do not support.
func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	files := append([]*fixzip.File(nil), r.File...)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	w := fixzip.NewWriter(out)
	for _, file := range files {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return nil
}
