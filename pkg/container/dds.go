package container

import (
	"fmt"
	"io"
	"math"

	"github.com/samiperttu/bimdexter/pkg/dxt"
	"github.com/samiperttu/bimdexter/pkg/pixmap"
)

// ddsHeaderSize is the fixed DDS_HEADER size field value.
const ddsHeaderSize = 124

// ddsFlags are the header flags this writer sets: CAPS | HEIGHT | WIDTH |
// PIXELFORMAT | LINEARSIZE.
const ddsFlags = 0x1 | 0x2 | 0x4 | 0x1000 | 0x80000

// ddsPixelFormatFourCC is the only pixel-format flag value this codec
// accepts or emits: DDPF_FOURCC.
const ddsPixelFormatFourCC = 0x4

// ddsCapsTexture is the only caps bit this codec requires to be present.
const ddsCapsTexture = 0x1000

var ddsMagic = [4]byte{'D', 'D', 'S', ' '}
var dxt1FourCC = [4]byte{'D', 'X', 'T', '1'}

// ReadDDS reads a DXT1 DDS stream into a new Pixmap. Only the legacy
// DXT1-FourCC pixel format is accepted — no DX10 extended header, no
// mipmaps beyond the base level, no alpha variants (spec.md's explicit
// non-goals).
func ReadDDS(r io.Reader, verbose io.Writer) (*pixmap.Pixmap, error) {
	br := &byteReader{r: r}

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read dds magic: %w", err)
	}
	if magic != ddsMagic {
		return nil, fmt.Errorf("dds filetype header not found")
	}
	headerLength, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read dds header length: %w", err)
	}
	if headerLength != ddsHeaderSize {
		return nil, fmt.Errorf("invalid dds header length: %d", headerLength)
	}
	if _, err := br.readUint32(); err != nil { // flags
		return nil, fmt.Errorf("read dds flags: %w", err)
	}
	height32, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read dds height: %w", err)
	}
	width32, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read dds width: %w", err)
	}
	width, height := int(width32), int(height32)
	if width%4 != 0 {
		return nil, fmt.Errorf("dds image width must be divisible by 4")
	}
	if height%4 != 0 {
		return nil, fmt.Errorf("dds image height must be divisible by 4")
	}
	if _, err := br.readUint32(); err != nil { // linear size
		return nil, fmt.Errorf("read dds linear size: %w", err)
	}
	if _, err := br.readUint32(); err != nil { // depth
		return nil, fmt.Errorf("read dds depth: %w", err)
	}
	if _, err := br.readUint32(); err != nil { // mipmap count
		return nil, fmt.Errorf("read dds mipmap count: %w", err)
	}
	if err := br.skip(4 * 11); err != nil { // reserved
		return nil, fmt.Errorf("skip dds reserved header fields: %w", err)
	}
	if _, err := br.readUint32(); err != nil { // pixel format size
		return nil, fmt.Errorf("read dds pixel format size: %w", err)
	}
	pfFlags, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read dds pixel format flags: %w", err)
	}
	if pfFlags != ddsPixelFormatFourCC {
		return nil, fmt.Errorf("only compressed non-alpha rgb (fourcc) dds files are supported")
	}
	var fourCC [4]byte
	if _, err := io.ReadFull(br, fourCC[:]); err != nil {
		return nil, fmt.Errorf("read dds fourcc: %w", err)
	}
	if fourCC != dxt1FourCC {
		return nil, fmt.Errorf("only dxt1-compressed dds files are supported, got fourcc %q", fourCC)
	}
	if err := br.skip(4 * 5); err != nil { // rgb bit count + 4 bitmasks
		return nil, fmt.Errorf("skip dds pixel format masks: %w", err)
	}
	caps, err := br.readUint32()
	if err != nil {
		return nil, fmt.Errorf("read dds caps: %w", err)
	}
	if caps&ddsCapsTexture == 0 {
		return nil, fmt.Errorf("dds file content must be a texture")
	}
	if err := br.skip(4 * 4); err != nil { // caps2-4, reserved2
		return nil, fmt.Errorf("skip dds trailing caps: %w", err)
	}

	if verbose != nil {
		fmt.Fprintf(verbose, "Reading %dx%d DDS image.\n", width, height)
	}

	pm := pixmap.New(width, height)
	var block dxt.Block
	for y := pm.Height() - dxt.Size; y >= 0; y -= dxt.Size {
		for x := 0; x < pm.Width(); x += dxt.Size {
			if err := block.Read(br); err != nil {
				return nil, fmt.Errorf("read dxt1 block at (%d, %d): %w", x, y, err)
			}
			block.Decode(pm, x, y)
		}
	}

	return pm, nil
}

// WriteDDS compresses pm with enc and writes a DXT1 DDS stream. It
// returns the weighted RMS error per pixel as a fraction of full 8-bit
// range (i.e. in [0, 1]; the CLI reports this scaled to a percentage).
func WriteDDS(w io.Writer, pm *pixmap.Pixmap, enc *dxt.Encoder, parallel bool) (float64, error) {
	width, height := pm.Width(), pm.Height()

	bw := &byteWriter{w: w}
	bw.writeBytes(ddsMagic[:])
	bw.writeUint32(ddsHeaderSize)
	bw.writeUint32(ddsFlags)
	bw.writeUint32(uint32(height))
	bw.writeUint32(uint32(width))
	bw.writeUint32(uint32(width/4) * uint32(height/4) * 8) // linear size
	bw.writeUint32(0)                                      // depth
	bw.writeUint32(0)                                      // mipmap count
	for i := 0; i < 11; i++ {
		bw.writeUint32(0) // reserved
	}
	bw.writeUint32(32) // pixel format size
	bw.writeUint32(ddsPixelFormatFourCC)
	bw.writeBytes(dxt1FourCC[:])
	bw.writeUint32(0)        // rgb bit count
	bw.writeUint32(0xff0000) // r bit mask (informational; fourcc governs)
	bw.writeUint32(0x00ff00) // g bit mask
	bw.writeUint32(0x0000ff) // b bit mask
	bw.writeUint32(0)        // a bit mask
	bw.writeUint32(ddsCapsTexture)
	bw.writeUint32(0) // caps2
	bw.writeUint32(0) // caps3
	bw.writeUint32(0) // caps4
	bw.writeUint32(0) // reserved2
	if bw.err != nil {
		return 0, fmt.Errorf("write dds header: %w", bw.err)
	}

	var blocks []dxt.Block
	var totalErr float32
	if parallel {
		blocks, totalErr = enc.CompressPixmapParallel(pm)
	} else {
		blocks, totalErr = enc.CompressPixmap(pm)
	}

	for _, block := range blocks {
		if err := block.Write(w); err != nil {
			return 0, fmt.Errorf("write dxt1 block: %w", err)
		}
	}

	rms := 0.0
	if width > 0 && height > 0 {
		rms = math.Sqrt(float64(totalErr) / float64(width) / float64(height))
	}
	return rms / 256.0, nil
}
