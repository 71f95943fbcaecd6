package pictures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docx2nav/common"
	"docx2nav/config"
	"docx2nav/misc"
	"docx2nav/utils/images"
)

const defaultTimeout = 30 * time.Second

// Result of picture resolution.
type Result struct {
	Data   []byte
	Format Format
	// UsedFallback is set when conversion was required but failed and
	// original data is kept.
	UsedFallback bool
	// Backup holds original data when it was replaced.
	Backup []byte
	// Warning is set together with UsedFallback.
	Warning common.Anomaly
}

// Image is a single picture extracted from document.
type Image struct {
	// Index is document wide picture number starting with 1.
	Index int
	// Source is package part name.
	Source string
	Data   []byte
	Result Result
}

// Name is picture file name without extension.
func (img *Image) Name() string {
	return fmt.Sprintf("image_%04d", img.Index)
}

// Filename returns final picture file name. For unrecognized formats
// extension of the source part is used.
func (img *Image) Filename() string {
	ext := img.Result.Format.Ext
	if ext == "" {
		ext = strings.ToLower(strings.TrimPrefix(path.Ext(img.Source), "."))
	}
	if ext == "" {
		ext = "img"
	}
	return img.Name() + "." + ext
}

// Resolver turns extracted pictures into something browser can show.
type Resolver struct {
	conv         Converter
	convert      []string
	rasterizeSVG bool
	timeout      time.Duration
	workers      int
	post         *images.TrimOptions
	sum          *common.Summary
	log          *zap.Logger
}

func NewResolver(cfg *config.ImagesConfig, conv Converter, sum *common.Summary, log *zap.Logger) *Resolver {
	r := &Resolver{
		conv:         conv,
		convert:      cfg.Convert,
		rasterizeSVG: cfg.RasterizeSVG,
		timeout:      cfg.Timeout,
		workers:      max(cfg.Workers, 1),
		sum:          sum,
		log:          log.Named("pictures"),
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if cfg.Postprocess.Enable {
		r.post = &images.TrimOptions{
			WhiteThreshold: uint8(cfg.Postprocess.WhiteThreshold),
			Border:         cfg.Postprocess.Border,
			MaxSize:        cfg.Postprocess.MaxSize,
		}
	}
	return r
}

// Resolve detects picture format and converts vector formats when
// configured. Conversion problems never produce errors, original data is
// kept and warning is recorded instead. Error is only returned when ctx is
// cancelled.
func (r *Resolver) Resolve(ctx context.Context, name string, data []byte) (Result, error) {
	format := Detect(data)
	res := Result{Data: data, Format: format}

	var (
		out []byte
		err error
	)
	switch {
	case format == FormatSVG && r.rasterizeSVG:
		out, err = images.RasterizeSVG(data, 0)
		if err != nil {
			err = &ConversionError{Kind: common.AnomalyConversionFailed, Err: err}
		}
	case format.IsVector() && format != FormatSVG && slices.Contains(r.convert, format.Ext):
		out, err = r.external(ctx, name, format, data)
	default:
		return res, nil
	}

	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		kind := common.AnomalyConversionFailed
		var ce *ConversionError
		if errors.As(err, &ce) {
			kind = ce.Kind
		}
		res.UsedFallback, res.Warning = true, kind
		r.sum.Warn(kind, name, err.Error())
		r.log.Warn("Unable to convert picture, keeping original", zap.String("image", name),
			zap.String("format", format.Ext), zap.Stringer("kind", kind), zap.Error(err))
		return res, nil
	}

	if r.post != nil {
		if processed, err := images.Postprocess(out, *r.post); err == nil {
			out = processed
		} else {
			r.log.Debug("Post-processing failed, keeping converted picture", zap.String("image", name), zap.Error(err))
		}
	}
	r.log.Debug("Picture converted", zap.String("image", name), zap.String("from", format.Ext),
		zap.Int("original", len(data)), zap.Int("converted", len(out)))
	return Result{Data: out, Format: FormatPNG, Backup: data}, nil
}

// ConversionError describes failed external conversion.
type ConversionError struct {
	Kind common.Anomaly
	Step string
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Step == "" {
		return e.Err.Error()
	}
	return e.Step + ": " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (r *Resolver) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := fn(sctx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(sctx.Err(), context.DeadlineExceeded):
		return &ConversionError{Kind: common.AnomalyConversionTimeout, Step: name, Err: fmt.Errorf("timed out after %s", r.timeout)}
	case errors.Is(err, ErrUnavailable):
		return &ConversionError{Kind: common.AnomalyConversionUnavailable, Step: name, Err: err}
	default:
		return &ConversionError{Kind: common.AnomalyConversionFailed, Step: name, Err: err}
	}
}

// external runs vector -> PDF -> PNG chain in private temporary directory.
// When no office suite is present rasterizer is given the source directly.
func (r *Resolver) external(ctx context.Context, name string, format Format, data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", misc.GetAppName()+"-img-")
	if err != nil {
		return nil, &ConversionError{Kind: common.AnomalyConversionFailed, Step: "prepare", Err: err}
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, name+"."+format.Ext)
	if err := os.WriteFile(src, data, 0644); err != nil {
		return nil, &ConversionError{Kind: common.AnomalyConversionFailed, Step: "prepare", Err: err}
	}

	var pdfPath string
	err = r.step(ctx, "to pdf", func(ctx context.Context) (err error) {
		pdfPath, err = r.conv.ToPDF(ctx, src, dir)
		return err
	})
	var ce *ConversionError
	switch {
	case err == nil:
		if err := ValidatePDF(pdfPath); err != nil {
			return nil, &ConversionError{Kind: common.AnomalyConversionFailed, Step: "to pdf", Err: err}
		}
	case errors.As(err, &ce) && ce.Kind == common.AnomalyConversionUnavailable:
		r.log.Debug("No office suite, rasterizing source directly", zap.String("image", name))
		pdfPath = src
	default:
		return nil, err
	}

	dst := filepath.Join(dir, name+".png")
	if err := r.step(ctx, "rasterize", func(ctx context.Context) error {
		return r.conv.Rasterize(ctx, pdfPath, dst)
	}); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		return nil, &ConversionError{Kind: common.AnomalyConversionFailed, Step: "rasterize", Err: err}
	}
	if Detect(out) != FormatPNG {
		return nil, &ConversionError{Kind: common.AnomalyConversionFailed, Step: "rasterize", Err: errors.New("result is not PNG")}
	}
	return out, nil
}

// ValidatePDF makes sure file is a readable PDF with at least one page.
func ValidatePDF(fname string) (err error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	// pdf reader panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("malformed PDF: %w", err)
	}
	if rd.NumPage() < 1 {
		return errors.New("PDF has no pages")
	}
	return nil
}

// ResolveAll resolves pictures in parallel storing results in place.
func (r *Resolver) ResolveAll(ctx context.Context, imgs []*Image) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, img := range imgs {
		g.Go(func() error {
			res, err := r.Resolve(gctx, img.Name(), img.Data)
			if err != nil {
				return err
			}
			img.Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("unable to resolve pictures: %w", err)
	}

	converted, fallback := 0, 0
	for _, img := range imgs {
		switch {
		case img.Result.Backup != nil:
			converted++
		case img.Result.UsedFallback:
			fallback++
		}
	}
	r.log.Info("Pictures resolved", zap.Int("total", len(imgs)), zap.Int("converted", converted), zap.Int("fallback", fallback))
	return nil
}
