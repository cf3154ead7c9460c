package container

import (
	"bytes"
	"math"
	"testing"

	"github.com/samiperttu/bimdexter/pkg/dxt"
	"github.com/samiperttu/bimdexter/pkg/pixmap"
)

func TestDDSRoundTripLowError(t *testing.T) {
	width, height := 64, 64
	pm := pixmap.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pm.Set(x, y, pixmap.Pixel{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) * 255 / (width + height)),
			})
		}
	}

	enc := dxt.NewEncoder(dxt.DefaultImportance)
	var buf bytes.Buffer
	rms, err := WriteDDS(&buf, pm, enc, true)
	if err != nil {
		t.Fatalf("WriteDDS: %v", err)
	}
	if rms < 0 || math.IsNaN(rms) {
		t.Fatalf("WriteDDS returned an invalid RMS error: %v", rms)
	}
	// A smooth gradient should compress with a small fraction of full-range
	// error; this is a loose bound, not a precision claim.
	if rms > 0.15 {
		t.Errorf("WriteDDS RMS error too high for a smooth gradient: %v", rms)
	}

	got, err := ReadDDS(&buf, nil)
	if err != nil {
		t.Fatalf("ReadDDS: %v", err)
	}
	if got.Width() != width || got.Height() != height {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width(), got.Height(), width, height)
	}

	// DXT1 is lossy, so the round trip is not pixel-exact, but every
	// channel should land within a modest tolerance of the source.
	var maxDiff int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := pm.Get(x, y)
			have := got.Get(x, y)
			for _, d := range []int{diffInt(want.R, have.R), diffInt(want.G, have.G), diffInt(want.B, have.B)} {
				if d > maxDiff {
					maxDiff = d
				}
			}
		}
	}
	if maxDiff > 60 {
		t.Errorf("round trip channel difference too large: %d", maxDiff)
	}
}

func diffInt(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestReadDDSRejectsIllegalDimensions(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("DDS ")
	writeLE32(&buf, ddsHeaderSize)
	writeLE32(&buf, ddsFlags)
	writeLE32(&buf, 6) // height, not divisible by 4
	writeLE32(&buf, 8) // width
	writeLE32(&buf, 0) // linear size
	writeLE32(&buf, 0) // depth
	writeLE32(&buf, 0) // mipmap count
	for i := 0; i < 11; i++ {
		writeLE32(&buf, 0)
	}
	writeLE32(&buf, 32)
	writeLE32(&buf, ddsPixelFormatFourCC)
	buf.WriteString("DXT1")
	for i := 0; i < 5; i++ {
		writeLE32(&buf, 0)
	}
	writeLE32(&buf, ddsCapsTexture)
	for i := 0; i < 4; i++ {
		writeLE32(&buf, 0)
	}

	if _, err := ReadDDS(&buf, nil); err == nil {
		t.Errorf("expected an error for a height not divisible by 4")
	}
}

func TestReadDDSRejectsWrongFourCC(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("DDS ")
	writeLE32(&buf, ddsHeaderSize)
	writeLE32(&buf, ddsFlags)
	writeLE32(&buf, 4)
	writeLE32(&buf, 4)
	writeLE32(&buf, 0)
	writeLE32(&buf, 0)
	writeLE32(&buf, 0)
	for i := 0; i < 11; i++ {
		writeLE32(&buf, 0)
	}
	writeLE32(&buf, 32)
	writeLE32(&buf, ddsPixelFormatFourCC)
	buf.WriteString("DXT5") // unsupported fourcc
	for i := 0; i < 5; i++ {
		writeLE32(&buf, 0)
	}
	writeLE32(&buf, ddsCapsTexture)
	for i := 0; i < 4; i++ {
		writeLE32(&buf, 0)
	}

	if _, err := ReadDDS(&buf, nil); err == nil {
		t.Errorf("expected an error for an unsupported fourcc")
	}
}

func writeLE32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	buf.Write(b[:])
}
