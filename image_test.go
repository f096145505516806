package st7735

import (
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/flavioheleno/st7735/imagecode"
	"github.com/flavioheleno/st7735/rgb565"
	"github.com/flavioheleno/st7735/sim"
)

func TestDrawImageTrace(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		x, y   uint16
		want   string
	}{
		{
			name:   "empty image",
			stream: []byte{1, 0x00, 0x00, imagecode.Terminator},
			want:   "",
		},
		{
			name:   "single pixel",
			stream: []byte{1, 0x07, 0xE0, imagecode.OpPixel, 0, 3, 4, imagecode.Terminator},
			want:   "C 2B >d 00 04 00 04 >c 2A >d 00 03 00 03 E C 2C >d 07 E0 E",
		},
		{
			name:   "pixel offset by origin",
			stream: []byte{1, 0x07, 0xE0, imagecode.OpPixel, 0, 3, 4, imagecode.Terminator},
			x:      10,
			y:      20,
			want:   "C 2B >d 00 18 00 18 >c 2A >d 00 0D 00 0D E C 2C >d 07 E0 E",
		},
		{
			name:   "horizontal line",
			stream: []byte{1, 0xF8, 0x00, imagecode.OpHLine, 0, 1, 2, 3, imagecode.Terminator},
			want:   "C 2B >d 00 02 00 02 >c 2A >d 00 01 00 03 E C 2C >d F8 00 F8 00 F8 00 E",
		},
		{
			name:   "zero length line draws one pixel",
			stream: []byte{1, 0xF8, 0x00, imagecode.OpHLine, 0, 1, 2, 0, imagecode.Terminator},
			want:   "C 2B >d 00 02 00 02 >c 2A >d 00 01 00 01 E C 2C >d F8 00 E",
		},
		{
			name:   "vertical line",
			stream: []byte{1, 0x00, 0x1F, imagecode.OpVLine, 0, 5, 0, 2, imagecode.Terminator},
			want:   "C 2B >d 00 00 00 01 >c 2A >d 00 05 00 05 E C 2C >d 00 1F 00 1F E",
		},
		{
			name: "bitmap rectangle",
			stream: []byte{
				2, 0xF8, 0x00, 0x00, 0x1F,
				imagecode.OpRect | imagecode.BitmapFlag, 0, 0, 2, 2, 0, 1, 1, 0,
				imagecode.Terminator,
			},
			want: "C 2B >d 00 00 00 01 >c 2A >d 00 00 00 01 E C 2C >d F8 00 00 1F 00 1F F8 00 E",
		},
		{
			name:   "nop is skipped",
			stream: []byte{1, 0xFF, 0xFF, imagecode.OpNop, imagecode.OpPixel, 0, 0, 0, imagecode.Terminator},
			want:   "C 2B >d 00 00 00 00 >c 2A >d 00 00 00 00 E C 2C >d FF FF E",
		},
		{
			name:   "nothing after the terminator",
			stream: []byte{1, 0xFF, 0xFF, imagecode.Terminator, imagecode.OpPixel, 0, 0, 0, imagecode.Terminator},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, b, _ := newTestDev(t)
			if err := d.DrawImage(tt.stream, tt.x, tt.y); err != nil {
				t.Fatal(err)
			}
			if got := b.trace(); got != tt.want {
				t.Errorf("trace = %q\nwant    %q", got, tt.want)
			}
		})
	}
}

func TestDrawImageTruncated(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		drawn  int
	}{
		{"empty stream", nil, 0},
		{"short palette", []byte{2, 0x00, 0x00}, 0},
		{"no terminator", []byte{1, 0x00, 0x00, imagecode.OpPixel, 0, 0, 0}, 1},
		{"short record", []byte{1, 0x00, 0x00, imagecode.OpPixel, 0, 0, 0, imagecode.OpRect, 0, 1}, 1},
		{"short bitmap", []byte{1, 0x00, 0x00, imagecode.OpHLine | imagecode.BitmapFlag, 0, 0, 3, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, b, _ := newTestDev(t)
			err := d.DrawImage(tt.stream, 0, 0)
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("DrawImage() error = %v, want io.ErrUnexpectedEOF", err)
			}
			if n := strings.Count(b.trace(), "C 2C"); n != tt.drawn {
				t.Errorf("%d shapes drawn before the error, want %d", n, tt.drawn)
			}
		})
	}
}

// newSimDev returns an initialized device wired to a simulated panel.
func newSimDev(t *testing.T, w, h int) (*Dev, *sim.Panel) {
	t.Helper()
	p := sim.New(w, h)
	d, err := New(p, &Opts{W: w, H: h, MADCTL: DefaultMADCTL, Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	return d, p
}

func TestInitOnPanel(t *testing.T) {
	_, p := newSimDev(t, 128, 160)
	if !p.Awake || !p.On {
		t.Errorf("panel awake=%v on=%v, want both true", p.Awake, p.On)
	}
	if p.MADCTL != 0x50 {
		t.Errorf("MADCTL = 0x%02X, want 0x50", p.MADCTL)
	}
	if p.COLMOD != 0x05 {
		t.Errorf("COLMOD = 0x%02X, want 0x05", p.COLMOD)
	}
	if p.Transactions != 3 {
		t.Errorf("%d transactions, want 3", p.Transactions)
	}
}

func TestLandscapeOnPanel(t *testing.T) {
	p := sim.New(160, 128)
	d, err := New(p, &Opts{W: 160, H: 128, MADCTL: DefaultMADCTL | MADCTLMV, Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.FillScreen(rgb565.Red); err != nil {
		t.Fatal(err)
	}
	for _, pt := range []image.Point{{0, 0}, {159, 0}, {0, 127}, {159, 127}} {
		if got := p.GRAM.RGB565At(pt.X, pt.Y); got != rgb565.Red {
			t.Errorf("GRAM%v = 0x%04X, want red", pt, got)
		}
	}
}

func testPattern(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c color.RGBA
			switch {
			case x < w/2 && y < h/2:
				c = color.RGBA{0xFF, 0, 0, 0xFF}
			case x >= w/2 && y < h/2:
				c = color.RGBA{0, 0xFF, 0, 0xFF}
			case (x+y)%3 == 0:
				c = color.RGBA{0, 0, 0xFF, 0xFF}
			default:
				c = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDrawImageOnPanel(t *testing.T) {
	d, p := newSimDev(t, 128, 160)
	src := testPattern(20, 10)
	stream, err := imagecode.Encode(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.DrawImage(stream, 30, 40); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 160; y++ {
		for x := 0; x < 128; x++ {
			want := rgb565.Black
			if pt := image.Pt(x-30, y-40); pt.In(src.Rect) {
				want = rgb565.Convert(src.At(pt.X, pt.Y))
			}
			if got := p.GRAM.RGB565At(x, y); got != want {
				t.Fatalf("GRAM(%d, %d) = 0x%04X, want 0x%04X", x, y, got, want)
			}
		}
	}
}

func TestDrawImageClipsOnPanel(t *testing.T) {
	d, p := newSimDev(t, 128, 160)
	stream := []byte{1, 0xF8, 0x00, imagecode.OpRect, 0, 0, 0, 4, 4, imagecode.Terminator}
	if err := d.DrawImage(stream, 126, 158); err != nil {
		t.Fatal(err)
	}
	for _, pt := range []image.Point{{126, 158}, {127, 158}, {126, 159}, {127, 159}} {
		if got := p.GRAM.RGB565At(pt.X, pt.Y); got != rgb565.Red {
			t.Errorf("GRAM%v = 0x%04X, want red", pt, got)
		}
	}
}

func TestDraw(t *testing.T) {
	src := rgb565.NewImage(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetRGB565(x, y, rgb565.Color(y*10+x))
		}
	}

	tests := []struct {
		name string
		src  image.Image
	}{
		{"rgb565 image", src},
		{"generic image", &converted{src}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, p := newSimDev(t, 128, 160)
			if err := d.Draw(image.Rect(123, 155, 133, 165), tt.src, image.Pt(0, 0)); err != nil {
				t.Fatal(err)
			}
			for y := 155; y < 160; y++ {
				for x := 123; x < 128; x++ {
					want := rgb565.Color((y-155)*10 + x - 123)
					if got := p.GRAM.RGB565At(x, y); got != want {
						t.Fatalf("GRAM(%d, %d) = 0x%04X, want 0x%04X", x, y, got, want)
					}
				}
			}
			if got := p.GRAM.RGB565At(122, 155); got != rgb565.Black {
				t.Errorf("GRAM(122, 155) = 0x%04X, drawn outside dst", got)
			}
		})
	}
}

func TestDrawSourcePoint(t *testing.T) {
	d, p := newSimDev(t, 128, 160)
	src := image.NewUniform(color.RGBA{0, 0, 0xFF, 0xFF})
	if err := d.Draw(image.Rect(-2, -2, 2, 2), src, image.Pt(5, 5)); err != nil {
		t.Fatal(err)
	}
	for _, pt := range []image.Point{{0, 0}, {1, 1}} {
		if got := p.GRAM.RGB565At(pt.X, pt.Y); got != rgb565.Blue {
			t.Errorf("GRAM%v = 0x%04X, want blue", pt, got)
		}
	}
	if got := p.GRAM.RGB565At(2, 2); got != rgb565.Black {
		t.Errorf("GRAM(2, 2) = 0x%04X, drawn outside dst", got)
	}
}

func TestDrawOutside(t *testing.T) {
	d, b, _ := newTestDev(t)
	if err := d.Draw(image.Rect(200, 200, 210, 210), image.Black, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(b.events) != 0 {
		t.Errorf("trace = %q, want nothing", b.trace())
	}
}

func TestSetPixelDisplay(t *testing.T) {
	d, p := newSimDev(t, 128, 160)
	d.SetPixel(3, 4, color.RGBA{0xFF, 0, 0, 0xFF})
	d.SetPixel(-1, 4, color.RGBA{0xFF, 0, 0, 0xFF})
	d.SetPixel(128, 0, color.RGBA{0xFF, 0, 0, 0xFF})
	if err := d.Display(); err != nil {
		t.Fatal(err)
	}
	if got := p.GRAM.RGB565At(3, 4); got != rgb565.Red {
		t.Errorf("GRAM(3, 4) = 0x%04X, want red", got)
	}
}

func TestSetPixelKeepsFirstError(t *testing.T) {
	d, b, _ := newTestDev(t)
	b.failOn = 1
	d.SetPixel(0, 0, color.RGBA{0xFF, 0, 0, 0xFF})
	sent := len(b.events)
	d.SetPixel(1, 1, color.RGBA{0xFF, 0, 0, 0xFF})
	if len(b.events) != sent {
		t.Error("SetPixel sent more after an error")
	}
	if err := d.Display(); !errors.Is(err, errBus) {
		t.Errorf("Display() error = %v, want %v", err, errBus)
	}
	if err := d.Display(); err != nil {
		t.Errorf("second Display() error = %v, want nil", err)
	}
}

// converted hides the concrete type of an image.
type converted struct {
	image.Image
}
