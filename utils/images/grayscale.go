package images

import (
	"image"
	"image/color"
)

// Grayscale returns img converted to *image.Gray when every pixel is opaque
// and has R == G == B, otherwise img is returned unchanged.
func Grayscale(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return img
	}

	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B || c.A != 0xff {
				return img
			}
			gray.SetGray(x, y, color.Gray{Y: c.R})
		}
	}
	return gray
}
