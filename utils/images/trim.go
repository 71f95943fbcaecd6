// Package images holds raster helpers for produced pictures.
package images

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TrimOptions controls Postprocess.
type TrimOptions struct {
	// Pixels with all channels at or above threshold are background.
	WhiteThreshold uint8
	// Border is kept around content after cropping.
	Border int
	// MaxSize limits longest side, 0 - no limit.
	MaxSize int
}

// ContentBounds returns bounding box of non background pixels. Result is
// empty when the picture has no content.
func ContentBounds(img image.Image, threshold uint8) image.Rectangle {
	// clone is always based at 0,0
	src := imaging.Clone(img)
	b := src.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[(y-b.Min.Y)*src.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			i := (x - b.Min.X) * 4
			if row[i+3] == 0 {
				continue
			}
			if row[i] >= threshold && row[i+1] >= threshold && row[i+2] >= threshold {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1).Add(img.Bounds().Min)
}

// Trim crops near white margins leaving border around content and scales
// result down to fit MaxSize.
func Trim(img image.Image, opts TrimOptions) image.Image {
	if box := ContentBounds(img, opts.WhiteThreshold); !box.Empty() {
		box = box.Inset(-opts.Border).Intersect(img.Bounds())
		img = imaging.Crop(img, box)
	}
	b := img.Bounds()
	if opts.MaxSize > 0 && (b.Dx() > opts.MaxSize || b.Dy() > opts.MaxSize) {
		img = imaging.Fit(img, opts.MaxSize, opts.MaxSize, imaging.Lanczos)
	}
	return img
}

// Postprocess decodes raster picture, trims it and encodes result as PNG.
func Postprocess(data []byte, opts TrimOptions) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode picture: %w", err)
	}
	return EncodePNG(Trim(img, opts))
}
