package pixmap

import (
	"image"
	"image/color"
)

// asImage adapts a Pixmap to the standard image.Image interface without
// copying the pixel buffer, the same way cmd/texconv's decompressBC1
// exposes decoded BC1 data as an *image.NRGBA for inspection with
// image/png. No alpha channel exists in this format, so At always
// reports fully opaque pixels.
type asImage struct {
	p *Pixmap
}

// AsImage wraps the pixmap as a read-only image.Image, useful for
// debugging tools and tests that want to reuse image/png rather than a
// bespoke viewer.
func (p *Pixmap) AsImage() image.Image {
	return asImage{p: p}
}

func (a asImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (a asImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, a.p.Width(), a.p.Height())
}

func (a asImage) At(x, y int) color.Color {
	px := a.p.Get(x, y)
	return color.RGBA{R: px.R, G: px.G, B: px.B, A: 255}
}
