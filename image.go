package st7735

import (
	"fmt"
	"image"

	"github.com/flavioheleno/st7735/imagecode"
	"github.com/flavioheleno/st7735/rgb565"
)

// DrawImage renders an imagecode stream with its origin at (x, y).
//
// Each shape is drawn as soon as it is decoded: a window covering it, then
// one burst of its pixels. Shapes extending past the panel are sent anyway;
// the controller drops what falls outside its memory. The stream is trusted:
// palette indices are not range checked (see imagecode.Decoder), and a
// stream cut short is only noticed when the decoder reaches the cut, after
// the shapes before it were drawn. Run imagecode.Validate first for streams
// from untrusted sources.
func (d *Dev) DrawImage(stream []byte, x, y uint16) error {
	if d.halted {
		return ErrHalted
	}
	dec, err := imagecode.NewDecoder(stream)
	if err != nil {
		return fmt.Errorf("st7735: draw image: %w", err)
	}
	origin := image.Pt(int(x), int(y))
	for {
		s, err := dec.Next()
		if err != nil {
			return fmt.Errorf("st7735: draw image: %w", err)
		}
		if s.Kind == imagecode.End {
			return nil
		}
		if !s.Drawable() {
			continue
		}
		r := s.Rect.Add(origin)
		if err := d.setWindow(uint16(r.Min.X), uint16(r.Min.Y), uint16(r.Max.X-1), uint16(r.Max.Y-1)); err != nil {
			return err
		}
		err = d.burst(s.Area(), func(i int) (rgb565.Color, error) {
			return dec.PixelAt(&s, i)
		})
		if err != nil {
			return err
		}
	}
}
