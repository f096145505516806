package st7735

import (
	"github.com/flavioheleno/st7735/rgb565"
)

// SetWindow sets the display memory region that the next pixel burst fills,
// inclusive on both ends.
//
// The row range (y1, y2) is sent first, then the column range (x1, x2).
// Whether rows run along the visible X or Y axis depends on MADCTL.
// The window stays in effect until the next call, and a burst must contain
// exactly (x2-x1+1)*(y2-y1+1) pixels or later bursts start at the wrong
// place.
func (d *Dev) SetWindow(x1, y1, x2, y2 uint16) error {
	if d.halted {
		return ErrHalted
	}
	return d.setWindow(x1, y1, x2, y2)
}

func (d *Dev) setWindow(x1, y1, x2, y2 uint16) error {
	t := txn{b: d.bus}
	t.do(t.b.BeginCommand)
	t.send(RASET)
	t.do(t.b.CommandToData)
	t.u16(y1)
	t.u16(y2)
	t.do(t.b.DataToCommand)
	t.send(CASET)
	t.do(t.b.CommandToData)
	t.u16(x1)
	t.u16(x2)
	return t.end()
}

// burst sends a memory write of n pixels, asking color for each in turn.
func (d *Dev) burst(n int, color func(i int) (rgb565.Color, error)) error {
	t := txn{b: d.bus}
	t.do(t.b.BeginCommand)
	t.send(RAMWR)
	t.do(t.b.CommandToData)
	for i := 0; i < n && t.err == nil; i++ {
		c, err := color(i)
		if err != nil {
			t.err = err
			break
		}
		t.pixel(c)
	}
	return t.end()
}

// WriteBurst writes colors into the current window.
func (d *Dev) WriteBurst(colors []rgb565.Color) error {
	if d.halted {
		return ErrHalted
	}
	return d.burst(len(colors), func(i int) (rgb565.Color, error) {
		return colors[i], nil
	})
}

// FillBurst writes n pixels of color c into the current window.
func (d *Dev) FillBurst(c rgb565.Color, n int) error {
	if d.halted {
		return ErrHalted
	}
	return d.burst(n, func(int) (rgb565.Color, error) {
		return c, nil
	})
}

// WritePixel writes one pixel at the start of the current window.
func (d *Dev) WritePixel(c rgb565.Color) error {
	return d.FillBurst(c, 1)
}

// DrawPixel sets the pixel at (x, y).
func (d *Dev) DrawPixel(x, y uint16, c rgb565.Color) error {
	if d.halted {
		return ErrHalted
	}
	if err := d.setWindow(x, y, x, y); err != nil {
		return err
	}
	return d.burst(1, func(int) (rgb565.Color, error) {
		return c, nil
	})
}

// FillRect fills the w x h rectangle whose top-left corner is (x, y).
// An empty rectangle sends nothing.
func (d *Dev) FillRect(c rgb565.Color, x, y, w, h uint16) error {
	if d.halted {
		return ErrHalted
	}
	if w == 0 || h == 0 {
		return nil
	}
	if err := d.setWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	return d.burst(int(w)*int(h), func(int) (rgb565.Color, error) {
		return c, nil
	})
}

// FillScreen fills the whole display.
func (d *Dev) FillScreen(c rgb565.Color) error {
	return d.FillRect(c, 0, 0, uint16(d.rect.Dx()), uint16(d.rect.Dy()))
}
