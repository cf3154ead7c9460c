// Package container implements the BMP (24-bit uncompressed) and DDS
// (DXT1 block-compressed) file containers the CLI converts between. The
// headers are parsed and emitted only as far as needed to exercise the
// DXT1 block codec in pkg/dxt; see spec.md §1 for the scope boundary.
package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/samiperttu/bimdexter/pkg/pixmap"
)

// bmpBitmapOffset is where WriteBMP's pixel data starts: the 14-byte
// BITMAPFILEHEADER plus the 40-byte BITMAPINFOHEADER.
const bmpBitmapOffset = 54

// ReadBMP reads a 24-bit uncompressed BMP stream into a new Pixmap.
//
// Both width and height must be divisible by 4 (spec.md's containers only
// ever carry DXT1-eligible dimensions); bpp must be 24; if the DIB header
// is long enough to carry a compression field, it must read 0
// (uncompressed). Rows are read top-to-bottom, which is the opposite of
// the conventional BMP bottom-up row order — see spec.md §9: this is a
// deliberate, self-consistent deviation, not a bug, and pairs with
// WriteBMP's matching top-down emission.
func ReadBMP(r io.Reader, verbose io.Writer) (*pixmap.Pixmap, error) {
	br := &byteReader{r: r}

	var magic [2]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read bmp magic: %w", err)
	}
	if magic != [2]byte{'B', 'M'} {
		return nil, fmt.Errorf("bmp filetype header not found")
	}

	if err := br.skip(8); err != nil {
		return nil, fmt.Errorf("skip bmp reserved fields: %w", err)
	}
	bitmapOffset, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read bmp bitmap offset: %w", err)
	}
	headerSize, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read bmp header size: %w", err)
	}
	width32, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read bmp width: %w", err)
	}
	height32, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read bmp height: %w", err)
	}
	width, height := int(int32(width32)), int(int32(height32))
	if width%4 != 0 {
		return nil, fmt.Errorf("bmp image width must be divisible by 4")
	}
	if height%4 != 0 {
		return nil, fmt.Errorf("bmp image height must be divisible by 4")
	}
	if _, err := br.readUint16(); err != nil { // planes
		return nil, fmt.Errorf("read bmp planes: %w", err)
	}
	bpp, err := br.readUint16()
	if err != nil {
		return nil, fmt.Errorf("read bmp bpp: %w", err)
	}
	if bpp != 24 {
		return nil, fmt.Errorf("only 24-bit bmp bitmap format is supported, got %d-bit", bpp)
	}
	if headerSize > 14 {
		compression, err := br.readUint32()
		if err != nil {
			return nil, fmt.Errorf("read bmp compression: %w", err)
		}
		if compression != 0 {
			return nil, fmt.Errorf("only uncompressed bmp files are supported")
		}
	}

	if err := br.seekTo(int64(bitmapOffset)); err != nil {
		return nil, fmt.Errorf("seek to bmp bitmap data: %w", err)
	}

	if verbose != nil {
		fmt.Fprintf(verbose, "Reading %dx%d BMP image.\n", width, height)
	}

	pm := pixmap.New(width, height)
	var pixbuf [3]byte
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if _, err := io.ReadFull(br, pixbuf[:]); err != nil {
				return nil, fmt.Errorf("read bmp pixel (%d, %d): %w", x, y, err)
			}
			pm.Set(x, y, pixmap.Pixel{R: pixbuf[0], G: pixbuf[1], B: pixbuf[2]})
		}
	}

	return pm, nil
}

// WriteBMP writes pm as a 24-bit uncompressed BMP stream, rows top to
// bottom (see ReadBMP's note on this container's deliberately
// non-conventional row order).
func WriteBMP(w io.Writer, pm *pixmap.Pixmap) error {
	width, height := pm.Width(), pm.Height()
	fileSize := bmpBitmapOffset + 3*width*height

	bw := &byteWriter{w: w}
	bw.writeBytes([]byte{'B', 'M'})
	bw.writeUint32(uint32(fileSize))
	bw.writeUint32(0)
	bw.writeUint32(bmpBitmapOffset)
	bw.writeUint32(40) // DIB header size (BITMAPINFOHEADER)
	bw.writeUint32(uint32(width))
	bw.writeUint32(uint32(height))
	bw.writeUint16(1)  // planes
	bw.writeUint16(24) // bpp
	bw.writeUint32(0)  // compression
	bw.writeUint32(0)  // biSizeImage
	bw.writeUint32(100) // X resolution
	bw.writeUint32(100) // Y resolution
	bw.writeUint32(1 << 24) // colors used
	bw.writeUint32(0)       // colors important
	if bw.err != nil {
		return fmt.Errorf("write bmp header: %w", bw.err)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := pm.Get(x, y)
			bw.writeBytes([]byte{px.R, px.G, px.B})
		}
	}
	if bw.err != nil {
		return fmt.Errorf("write bmp pixels: %w", bw.err)
	}
	return nil
}

// byteReader wraps an io.Reader with little-endian integer helpers and a
// best-effort seek (falling back to discard-by-read when the underlying
// reader isn't an io.Seeker, since bitmapOffset in a well-formed file
// only ever advances).
type byteReader struct {
	r   io.Reader
	pos int64
}

func (b *byteReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.pos += int64(n)
	return n, err
}

func (b *byteReader) skip(n int64) error {
	return b.seekTo(b.pos + n)
}

func (b *byteReader) seekTo(target int64) error {
	if target < b.pos {
		return fmt.Errorf("cannot seek backward from %d to %d", b.pos, target)
	}
	if target == b.pos {
		return nil
	}
	if seeker, ok := b.r.(io.Seeker); ok {
		if _, err := seeker.Seek(target, io.SeekStart); err == nil {
			b.pos = target
			return nil
		}
	}
	_, err := io.CopyN(io.Discard, b, target-b.pos)
	return err
}

func (b *byteReader) readUint16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(b, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (b *byteReader) readUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// byteWriter wraps an io.Writer with little-endian helpers that latch the
// first error encountered, so callers can chain writes and check err once.
type byteWriter struct {
	w   io.Writer
	err error
}

func (b *byteWriter) writeBytes(p []byte) {
	if b.err != nil {
		return
	}
	_, b.err = b.w.Write(p)
}

func (b *byteWriter) writeUint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.writeBytes(buf[:])
}

func (b *byteWriter) writeUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.writeBytes(buf[:])
}
