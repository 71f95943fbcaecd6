package pictures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"docx2nav/config"
)

// ErrUnavailable is returned when external tool cannot be found.
var ErrUnavailable = errors.New("conversion tool is not available")

// Converter is a boundary to external conversion capabilities. All paths
// are local files, dir is a private scratch directory of a single picture.
type Converter interface {
	// ToPDF converts vector picture src into PDF file in dir and returns
	// its path.
	ToPDF(ctx context.Context, src, dir string) (string, error)
	// Rasterize renders src (PDF or any format tool understands) into PNG
	// file dst.
	Rasterize(ctx context.Context, src, dst string) error
}

// External uses office suite for vector to PDF conversion and ImageMagick
// for rasterization.
type External struct {
	officeBinary string
	magickBinary string
	density      int
	log          *zap.Logger

	once   sync.Once
	office string
	magick string
}

func NewExternal(cfg *config.ImagesConfig, log *zap.Logger) *External {
	return &External{
		officeBinary: cfg.OfficeBinary,
		magickBinary: cfg.MagickBinary,
		density:      cfg.Density,
		log:          log.Named("external"),
	}
}

func lookPath(configured string, candidates ...string) string {
	if configured != "" {
		candidates = []string{configured}
	}
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p
		}
	}
	return ""
}

func (e *External) lookup() {
	e.once.Do(func() {
		e.office = lookPath(e.officeBinary, "soffice", "libreoffice")
		e.magick = lookPath(e.magickBinary, "magick", "convert")
		e.log.Debug("External tools", zap.String("office", e.office), zap.String("magick", e.magick))
	})
}

func (e *External) ToPDF(ctx context.Context, src, dir string) (string, error) {
	e.lookup()
	if e.office == "" {
		return "", fmt.Errorf("office suite: %w", ErrUnavailable)
	}
	// private profile lets several instances run at the same time
	profile := "file://" + filepath.ToSlash(filepath.Join(dir, "profile"))
	if err := run(ctx, e.office, "-env:UserInstallation="+profile,
		"--headless", "--convert-to", "pdf", "--outdir", dir, src); err != nil {
		return "", err
	}
	// office may name output differently from the source
	found, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil || len(found) == 0 {
		return "", errors.New("office suite did not produce PDF")
	}
	return found[0], nil
}

func (e *External) Rasterize(ctx context.Context, src, dst string) error {
	e.lookup()
	if e.magick == "" {
		return fmt.Errorf("imagemagick: %w", ErrUnavailable)
	}
	return run(ctx, e.magick, "-density", strconv.Itoa(e.density), src,
		"-flatten", "-trim", "+repage", "png:"+dst)
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", filepath.Base(name), ErrUnavailable)
		}
		msg := strings.TrimSpace(out.String())
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return fmt.Errorf("%s failed: %w: %s", filepath.Base(name), err, msg)
	}
	return nil
}
