package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize is used for both sides when SVG has no usable viewBox.
const defaultSVGSize = 1024

// maxRasterDim limits side of rasterized picture, SVG with enormous viewBox
// would otherwise allocate gigabytes.
var maxRasterDim = 8192

// SVGToImage rasterizes SVG on white background. When maxSize > 0 picture
// is scaled to fit into maxSize x maxSize box keeping aspect ratio, smaller
// pictures are never enlarged.
func SVGToImage(data []byte, maxSize int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse svg: %w", err)
	}

	w, h := int(math.Ceil(icon.ViewBox.W)), int(math.Ceil(icon.ViewBox.H))
	if w <= 0 || h <= 0 {
		w, h = defaultSVGSize, defaultSVGSize
	}
	limit := maxRasterDim
	if maxSize > 0 {
		limit = min(limit, maxSize)
	}
	if w > limit || h > limit {
		s := min(float64(limit)/float64(w), float64(limit)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}

// RasterizeSVG converts SVG to PNG.
func RasterizeSVG(data []byte, maxSize int) ([]byte, error) {
	img, err := SVGToImage(data, maxSize)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// EncodePNG encodes picture as PNG, grayscale pictures are stored with a
// single channel.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Grayscale(img), imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("unable to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
