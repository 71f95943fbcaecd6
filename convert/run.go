package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docx2nav/content"
	"docx2nav/convert/chapters"
	"docx2nav/convert/markdown"
	"docx2nav/convert/navtree"
	"docx2nav/state"
)

// Run is "build" command action: converts single DOCX handbook into
// navigation tree.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src, dst, err := paths(cmd, log)
	if err != nil {
		return err
	}

	env.Overwrite = cmd.Bool("overwrite")
	if md := cmd.String("markdown"); len(md) > 0 {
		if md, err = filepath.Abs(md); err != nil {
			return err
		}
		env.Cfg.Export.Markdown.Enable = true
		env.Cfg.Export.Markdown.Destination = md
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return processBook(ctx, src, dst, log)
}

// Split is "split" command action: writes every chapter of the handbook into
// its own DOCX file.
func Split(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("split")

	src, dst, err := paths(cmd, log)
	if err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")

	names, err := chapters.Split(ctx, src, dst, env.Cfg, log)
	if err != nil {
		return fmt.Errorf("unable to split document: %w", err)
	}
	for _, name := range names {
		env.Rpt.Store("chapters/"+filepath.Base(name), name)
	}
	return nil
}

// Verify is "verify" command action: checks previously built tree.
func Verify(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("verify")

	dst := cmd.Args().Get(0)
	if len(dst) == 0 {
		return errors.New("no destination to verify has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	return verifyTree(dst, log)
}

func verifyTree(dst string, log *zap.Logger) error {
	p, err := navtree.Verify(dst, log)
	if err != nil {
		return fmt.Errorf("unable to verify output: %w", err)
	}
	log.Info("Verification completed",
		zap.Int("sections", p.Sections), zap.Int("images", p.Images), zap.Int("tables", p.Tables))
	if !p.Ok() {
		return fmt.Errorf("output has problems: %d missing images, %d broken tables, %d orphan footnotes",
			len(p.MissingImages), len(p.BrokenTables), len(p.OrphanFootnotes))
	}
	return nil
}

// paths returns absolute source and destination from command arguments,
// destination defaults to current working directory.
func paths(cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := checkSource(src); err != nil {
		return "", "", err
	}
	return src, dst, nil
}

// checkSource makes sure source is a regular file which looks like OOXML
// package.
func checkSource(src string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	kind, err := filetype.MatchFile(src)
	if err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	}
	if kind != matchers.TypeDocx && kind != matchers.TypeZip {
		return fmt.Errorf("input was not recognized as DOCX document (%s)", src)
	}
	return nil
}

// processBook builds complete output for a single document. Panics are
// converted to errors so debug report is still produced.
func processBook(ctx context.Context, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// NOTE: image decoders and external tools are fed with whatever the
		// document carries, we want diagnostics rather than a crash.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", dst), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", dst))
		}
	}(time.Now())

	if err := env.Rpt.StoreCopy("source/"+filepath.Base(src), src); err != nil {
		log.Warn("Unable to store source in debug report", zap.Error(err))
	}

	c, err := content.Prepare(ctx, src, log)
	if err != nil {
		return fmt.Errorf("unable to parse docx source (%s): %w", src, err)
	}

	if err := navtree.Generate(ctx, c, dst, &env.Cfg.Output, log); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	if md := &env.Cfg.Export.Markdown; md.Enable {
		if err := markdown.Export(ctx, c, md.Destination, md, log); err != nil {
			return fmt.Errorf("unable to export markdown: %w", err)
		}
	}

	env.Summary.Log(log)
	env.Rpt.StoreJSON("summary.json", env.Summary)
	return nil
}
