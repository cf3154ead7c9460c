// Package dxt implements the DXT1 block codec: the 4x4-tile compressor
// that minimizes perceptually-weighted squared color error under the
// format's endpoint-ordering constraint, and its inverse decoder.
package dxt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/samiperttu/bimdexter/pkg/pixmap"
	"github.com/samiperttu/bimdexter/pkg/vec3"
)

// Size is the side length of a DXT1 tile in pixels.
const Size = 4

// Block is the wire form of one compressed 4x4 tile: two R5G6B5 endpoint
// colors and a 2-bit-per-pixel palette index bitmap, pixel (0, 0) in the
// least-significant bit pair, row-major.
//
// The interpretation depends on the numeric ordering of the endpoints:
// Color0 > Color1 selects the opaque 4-color palette (entries 2 and 3 are
// thirds interpolations); Color0 <= Color1 selects the 1-bit-alpha
// palette (entry 2 is the midpoint, entry 3 is transparent). This
// encoder never intentionally emits the alpha form except as a faithful
// byproduct of the constant-color fast path or of endpoints that quantize
// to the same code; both use index 0 for every pixel (see
// Encoder.CompressBlock).
type Block struct {
	Color0 uint16
	Color1 uint16
	Bitmap uint32
}

// r565 extracts the red channel (low 5 bits) of an R5G6B5 code as an
// 8-bit value via bit replication.
func r565(color uint16) uint8 {
	r := color & 0x1f
	return uint8((r << 3) | (r >> 2))
}

// g565 extracts the green channel (middle 6 bits) of an R5G6B5 code.
func g565(color uint16) uint8 {
	g := (color >> 5) & 0x3f
	return uint8((g << 2) | (g >> 4))
}

// b565 extracts the blue channel (high 5 bits) of an R5G6B5 code.
func b565(color uint16) uint8 {
	b := (color >> 11) & 0x1f
	return uint8((b << 3) | (b >> 2))
}

// decode565 expands an R5G6B5 code to a full 24-bit Pixel.
func decode565(color uint16) pixmap.Pixel {
	return pixmap.Pixel{R: r565(color), G: g565(color), B: b565(color)}
}

// Decode writes this block's 16 pixels into pm with the upper-left
// corner at (x0, y0). x0 and y0 must be divisible by 4.
//
// DXT1 blocks are stored upside down relative to the pixmap's top-origin
// convention, so the Y axis is flipped here: dy runs from 3 down to 0
// while the bitmap's pixel index still advances row-major from (0, 0).
func (b Block) Decode(pm *pixmap.Pixmap, x0, y0 int) {
	var color [4]pixmap.Pixel
	color[0] = decode565(b.Color0)
	color[1] = decode565(b.Color1)
	color[2] = pixmap.Interpolate(color[0], 2, color[1], 1)
	color[3] = pixmap.Interpolate(color[0], 1, color[1], 2)

	bits := b.Bitmap
	for dy := Size - 1; dy >= 0; dy-- {
		for dx := 0; dx < Size; dx++ {
			pm.Set(x0+dx, y0+dy, color[bits&3])
			bits >>= 2
		}
	}
}

// Read parses a block from its 8-byte wire form.
func (b *Block) Read(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	b.Color0 = binary.LittleEndian.Uint16(buf[0:2])
	b.Color1 = binary.LittleEndian.Uint16(buf[2:4])
	b.Bitmap = binary.LittleEndian.Uint32(buf[4:8])
	return nil
}

// Write emits this block in its 8-byte wire form.
func (b Block) Write(w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[0:2], b.Color0)
	binary.LittleEndian.PutUint16(buf[2:4], b.Color1)
	binary.LittleEndian.PutUint32(buf[4:8], b.Bitmap)
	_, err := w.Write(buf[:])
	return err
}

// q5 converts an 8-bit channel value to the 5-bit code whose
// bit-replication expansion is nearest to it. This inverts the 5-to-8-bit
// conversion (v5<<3)|(v5>>2); the formula must be implemented exactly as
// given so synthetic round-trip tests hold bit-for-bit.
func q5(f float32) int {
	x := int(math.Round(float64(f)))
	r5 := x - ((x - 124) >> 5)
	return r5 >> 3
}

// q6 converts an 8-bit channel value to the 6-bit code whose
// bit-replication expansion is nearest to it, the 6-bit analogue of q5.
func q6(f float32) int {
	x := int(math.Round(float64(f))) + 2
	r6 := x - (x >> 6)
	return r6 >> 2
}

// encode565 packs an importance-weighted color into R5G6B5, removing the
// importance weighting first. Bit layout is b5g6r5: blue occupies the
// most significant bits.
func encode565(c vec3.Vec3, weight vec3.Vec3) uint16 {
	c8 := c.Div(weight)
	return uint16(q5(c8.Z))<<11 | uint16(q6(c8.Y))<<5 | uint16(q5(c8.X))
}
