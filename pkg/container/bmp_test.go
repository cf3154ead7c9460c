package container

import (
	"bytes"
	"testing"

	"github.com/samiperttu/bimdexter/pkg/pixmap"
)

func gradientPixmap(width, height int) *pixmap.Pixmap {
	pm := pixmap.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pm.Set(x, y, pixmap.Pixel{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 128,
			})
		}
	}
	return pm
}

func TestBMPRoundTrip(t *testing.T) {
	pm := gradientPixmap(8, 8)

	var buf bytes.Buffer
	if err := WriteBMP(&buf, pm); err != nil {
		t.Fatalf("WriteBMP: %v", err)
	}

	got, err := ReadBMP(&buf, nil)
	if err != nil {
		t.Fatalf("ReadBMP: %v", err)
	}
	if got.Width() != pm.Width() || got.Height() != pm.Height() {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width(), got.Height(), pm.Width(), pm.Height())
	}
	for y := 0; y < pm.Height(); y++ {
		for x := 0; x < pm.Width(); x++ {
			if got.Get(x, y) != pm.Get(x, y) {
				t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got.Get(x, y), pm.Get(x, y))
			}
		}
	}
}

func TestReadBMPRejectsBadMagic(t *testing.T) {
	if _, err := ReadBMP(bytes.NewReader([]byte("not a bmp file at all.....")), nil); err == nil {
		t.Errorf("expected an error for a missing BM magic")
	}
}

func TestReadBMPRejectsIllegalDimensions(t *testing.T) {
	pm := pixmap.New(5, 8) // width not divisible by 4
	var buf bytes.Buffer
	// Hand-roll a minimal header with an illegal width, since WriteBMP
	// itself never produces one.
	_ = pm
	header := []byte{
		'B', 'M',
		0, 0, 0, 0, // file size (unchecked on read)
		0, 0, 0, 0, // reserved
		54, 0, 0, 0, // bitmap offset
		40, 0, 0, 0, // DIB header size
		5, 0, 0, 0, // width = 5 (illegal)
		8, 0, 0, 0, // height = 8
		1, 0, // planes
		24, 0, // bpp
		0, 0, 0, 0, // compression
	}
	buf.Write(header)

	if _, err := ReadBMP(&buf, nil); err == nil {
		t.Errorf("expected an error for a width not divisible by 4")
	}
}

func TestReadBMPRejectsWrongBitDepth(t *testing.T) {
	header := []byte{
		'B', 'M',
		0, 0, 0, 0,
		0, 0, 0, 0,
		54, 0, 0, 0,
		40, 0, 0, 0,
		4, 0, 0, 0,
		4, 0, 0, 0,
		1, 0,
		32, 0, // bpp = 32, unsupported
	}
	if _, err := ReadBMP(bytes.NewReader(header), nil); err == nil {
		t.Errorf("expected an error for a non-24-bit bmp")
	}
}
