package model

import (
	"image"
	"image/color"
)

// CanonicalImage is a packed 3-channel RGB pixel buffer, 3 bytes per pixel, row-major.
// It is the only image shape the detector accepts.
type CanonicalImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewCanonicalImage allocates a zeroed (black) canonical image.
func NewCanonicalImage(width, height int) *CanonicalImage {
	return &CanonicalImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// CanonicalFromImage packs any decoded image into RGB. Gray sources are expanded to three
// channels and alpha is dropped without compositing.
func CanonicalFromImage(src image.Image) *CanonicalImage {
	b := src.Bounds()
	dst := NewCanonicalImage(b.Dx(), b.Dy())

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < dst.Height; y++ {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, b.Min.Y+y):]
			out := dst.Pix[y*dst.Width*3:]
			for x := 0; x < dst.Width; x++ {
				out[x*3] = row[x*4]
				out[x*3+1] = row[x*4+1]
				out[x*3+2] = row[x*4+2]
			}
		}
		return dst
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.Pix[i] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			i += 3
		}
	}
	return dst
}
