package st7735

import (
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"

	"github.com/flavioheleno/st7735/rgb565"
)

var (
	_ display.Drawer    = (*Dev)(nil)
	_ drivers.Displayer = (*Dev)(nil)
)

// Draw streams src into the dst rectangle of the display.
//
// The src pixel at sp lands on dst.Min. dst is clipped to the display, and
// the whole clipped rectangle goes out in a single window and burst. Nothing
// is cached: drawing the same image twice sends it twice.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}

	clipped := dst.Intersect(d.rect)
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	w := clipped.Dx()

	if err := d.setWindow(uint16(clipped.Min.X), uint16(clipped.Min.Y), uint16(clipped.Max.X-1), uint16(clipped.Max.Y-1)); err != nil {
		return err
	}

	at := func(x, y int) rgb565.Color {
		return rgb565.Convert(src.At(x, y))
	}
	// Fast path: read packed pixels directly
	if img, ok := src.(*rgb565.Image); ok {
		at = img.RGB565At
	}
	return d.burst(w*clipped.Dy(), func(i int) (rgb565.Color, error) {
		return at(sp.X+i%w, sp.Y+i/w), nil
	})
}

// Size implements drivers.Displayer.
func (d *Dev) Size() (x, y int16) {
	return int16(d.rect.Dx()), int16(d.rect.Dy())
}

// SetPixel implements drivers.Displayer. The pixel is written immediately.
// Pixels outside the display are ignored. The first error is kept and
// returned by Display; until then further calls do nothing.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	if d.err != nil || !(image.Point{X: int(x), Y: int(y)}.In(d.rect)) {
		return
	}
	d.err = d.DrawPixel(uint16(x), uint16(y), rgb565.Convert(c))
}

// Display implements drivers.Displayer. Pixels are already on the panel, so
// it only reports and clears the first error from SetPixel.
func (d *Dev) Display() error {
	err := d.err
	d.err = nil
	return err
}
