// Package pixmap provides an in-memory 24-bit RGB raster used by both the
// BMP and DDS container codecs, and the pixel/interpolation helpers the
// block decoder relies on.
package pixmap

import "fmt"

// Pixel is an uncompressed 24-bit RGB triple. There is no alpha channel.
type Pixel struct {
	R, G, B uint8
}

// Interpolate blends a and b with integer weights using truncating
// division, matching the weighted average a DXT1 decoder performs when
// deriving palette entries 2 and 3 from entries 0 and 1.
func Interpolate(a Pixel, weightA int, b Pixel, weightB int) Pixel {
	w := weightA + weightB
	return Pixel{
		R: uint8((int(a.R)*weightA + int(b.R)*weightB) / w),
		G: uint8((int(a.G)*weightA + int(b.G)*weightB) / w),
		B: uint8((int(a.B)*weightA + int(b.B)*weightB) / w),
	}
}

// Pixmap is a W x H row-major raster of 24-bit RGB pixels, origin at the
// top-left corner. A Pixmap owns its pixel buffer exclusively: the type
// has no exported way to duplicate one, so callers pass *Pixmap around by
// pointer rather than risk an accidental deep copy of a potentially large
// buffer.
type Pixmap struct {
	width, height int
	data           []Pixel
}

// New returns a Pixmap of the given dimensions. Pixel contents are zeroed.
func New(width, height int) *Pixmap {
	p := &Pixmap{}
	p.Resize(width, height)
	return p
}

// Resize reserves storage for the given dimensions. Pixel contents are
// undefined afterward (the teacher's size handling in pkg/texture favors a
// single allocation per reshape over preserving old contents).
func (p *Pixmap) Resize(width, height int) {
	p.width = width
	p.height = height
	p.data = make([]Pixel, width*height)
}

// Width returns the pixmap's width in pixels.
func (p *Pixmap) Width() int { return p.width }

// Height returns the pixmap's height in pixels.
func (p *Pixmap) Height() int { return p.height }

func (p *Pixmap) offset(x, y int) int {
	return y*p.width + x
}

// Get returns the pixel at (x, y). x and y must satisfy 0 <= x < Width()
// and 0 <= y < Height().
func (p *Pixmap) Get(x, y int) Pixel {
	return p.data[p.offset(x, y)]
}

// Set writes the pixel at (x, y).
func (p *Pixmap) Set(x, y int, px Pixel) {
	p.data[p.offset(x, y)] = px
}

// String returns a short human-readable summary, useful in diagnostics.
func (p *Pixmap) String() string {
	return fmt.Sprintf("Pixmap(%dx%d)", p.width, p.height)
}
