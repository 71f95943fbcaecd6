package navtree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docx2nav/config"
	"docx2nav/content"
	"docx2nav/state"
	"docx2nav/toc"
)

// ErrOutputExists is returned when destination holds results of previous
// run and overwriting was not requested.
var ErrOutputExists = errors.New("destination already contains generated output")

// Generate writes content tree under dst. Output does not depend on
// anything but content so repeated runs produce identical files.
func Generate(ctx context.Context, c *content.Content, dst string, cfg *config.OutputConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log = log.Named("navtree")

	log.Info("Generating content tree", zap.String("output", dst), zap.Bool("optimize", cfg.Optimize))

	if err := prepareDestination(dst, env.Overwrite, log); err != nil {
		return err
	}

	w := &writer{optimize: cfg.Optimize}

	pictures := make(map[int][]*content.Image)
	for _, img := range c.Images {
		pictures[img.Chapter] = append(pictures[img.Chapter], img)
	}

	index := indexFile{
		BookTitle:     c.Title,
		TotalChapters: len(c.Chapters),
		Chapters:      make([]indexChapter, 0, len(c.Chapters)),
	}
	for _, ch := range c.Chapters {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir := chapterDir(ch.Number)
		if err := os.MkdirAll(filepath.Join(dst, dir), 0755); err != nil {
			return fmt.Errorf("unable to create chapter directory: %w", err)
		}

		ich := indexChapter{Number: ch.Number, Title: ch.Title, TotalSections: len(ch.Sections)}
		cf := chapterFile{Number: ch.Number, Title: ch.Title}
		for _, sec := range ch.Sections {
			name := sectionFile(sec.Number)
			if err := w.write(filepath.Join(dst, dir, name), sectionFileData{
				ChapterNumber: ch.Number,
				ChapterTitle:  ch.Title,
				SectionNumber: sec.Number,
				SectionTitle:  sec.Title,
				Content:       sec.Content,
				Footnotes:     sec.Footnotes,
				Statistics:    sec.Statistics,
			}); err != nil {
				return err
			}
			cf.Sections = append(cf.Sections, chapterSection{Number: sec.Number, Title: sec.Title, Path: name, Statistics: sec.Statistics})
			ich.Sections = append(ich.Sections, indexSection{Number: sec.Number, Title: sec.Title, Path: path.Join(dir, name)})
		}
		if err := w.write(filepath.Join(dst, dir, chapterName), cf); err != nil {
			return err
		}
		if err := writePictures(filepath.Join(dst, dir, picturesDir), pictures[ch.Number]); err != nil {
			return err
		}

		index.TotalSections += len(ch.Sections)
		index.Chapters = append(index.Chapters, ich)
	}

	entries := c.TOC
	if entries == nil {
		entries = []toc.Entry{}
	}
	if err := w.write(filepath.Join(dst, tocName), tocFile{Entries: entries}); err != nil {
		return err
	}
	// validation report is written as is, consumers look for every list
	if err := w.writePlain(filepath.Join(dst, validationName), c.Validation); err != nil {
		return err
	}
	if err := w.write(filepath.Join(dst, indexName), index); err != nil {
		return err
	}

	env.Rpt.Store("output", dst)
	log.Info("Content tree generated", zap.Int("chapters", index.TotalChapters), zap.Int("sections", index.TotalSections),
		zap.Int("images", len(c.Images)), zap.Int("files", w.files))
	return nil
}

// prepareDestination removes artifacts of previous run. Anything else found
// in destination is left alone.
func prepareDestination(dst string, overwrite bool, log *zap.Logger) (err error) {
	var existing []string
	for _, pattern := range []string{indexName, "toc_*.json", "chapter_[0-9]*"} {
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
		log.Debug("Removing previous output", zap.Strings("paths", existing))
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

func writePictures(dir string, imgs []*content.Image) error {
	if len(imgs) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create pictures directory: %w", err)
	}
	for _, img := range imgs {
		name := filepath.Join(dir, img.Filename())
		if err := os.WriteFile(name, img.Result.Data, 0644); err != nil {
			return fmt.Errorf("unable to write picture: %w", err)
		}
		if img.Result.Backup != nil {
			if err := os.WriteFile(name+backupSuffix, img.Result.Backup, 0644); err != nil {
				return fmt.Errorf("unable to write picture backup: %w", err)
			}
		}
	}
	return nil
}

type writer struct {
	optimize bool
	files    int
}

func (w *writer) write(fname string, v any) error {
	return w.encode(fname, v, w.optimize)
}

func (w *writer) writePlain(fname string, v any) error {
	return w.encode(fname, v, false)
}

func (w *writer) encode(fname string, v any, optimize bool) error {
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", filepath.Base(fname), err)
	}
	if optimize {
		if data, err = Optimize(data); err != nil {
			return fmt.Errorf("unable to optimize %s: %w", filepath.Base(fname), err)
		}
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", filepath.Base(fname), err)
	}
	w.files++
	return nil
}

// marshal produces indented JSON terminated by new line without HTML
// escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
