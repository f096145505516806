// Package sim models an ST7735 controller at the bus level.
//
// Panel implements the same six operations as st7735.Bus and interprets the
// resulting byte stream the way the controller does: command bytes are latched
// while DC is low, parameters while DC is high, and pixel data after a memory
// write lands in an rgb565.Image acting as display RAM. Only the commands that
// change what is visible are modelled; everything else is logged.
package sim

import (
	"errors"
	"fmt"
	"image"

	"github.com/flavioheleno/st7735/rgb565"
)

// Controller opcodes the model reacts to.
const (
	swReset = 0x01
	slpIn   = 0x10
	slpOut  = 0x11
	invOff  = 0x20
	invOn   = 0x21
	dispOff = 0x28
	dispOn  = 0x29
	caSet   = 0x2A
	raSet   = 0x2B
	ramWr   = 0x2C
	madCtl  = 0x36
	colMod  = 0x3A

	madctlMV = 0x20 // row/column exchange
)

// Controller display RAM size with rows and columns not exchanged.
const (
	ramCols = 132
	ramRows = 162
)

// ErrNotSelected is returned when a byte is clocked out with CS deasserted.
var ErrNotSelected = errors.New("sim: transmit without chip select")

// Command is one command byte and the parameter bytes that followed it.
// Pixel data after a memory write is not kept, only counted.
type Command struct {
	Op     byte
	Args   []byte
	Pixels int
}

// Panel is a simulated controller. The zero value is not usable; call New.
type Panel struct {
	// GRAM is the visible display memory.
	GRAM *rgb565.Image
	// Log holds every command received, in order.
	Log []Command

	Awake    bool
	On       bool
	Inverted bool
	MADCTL   byte
	COLMOD   byte

	// Transactions counts chip-select assertions.
	Transactions int

	selected bool
	data     bool

	colStart, colEnd uint16
	rowStart, rowEnd uint16
	col, row         uint16
	hi               byte
	half             bool
}

// New returns a powered-off panel with w x h pixels of display memory.
func New(w, h int) *Panel {
	p := &Panel{GRAM: rgb565.NewImage(image.Rect(0, 0, w, h))}
	p.reset()
	return p
}

func (p *Panel) reset() {
	p.Awake, p.On, p.Inverted = false, false, false
	p.MADCTL, p.COLMOD = 0, 0x06
	p.colStart, p.rowStart = 0, 0
	p.colEnd = uint16(p.GRAM.Rect.Dx() - 1)
	p.rowEnd = uint16(p.GRAM.Rect.Dy() - 1)
}

func (p *Panel) String() string {
	return fmt.Sprintf("sim.Panel{%dx%d}", p.GRAM.Rect.Dx(), p.GRAM.Rect.Dy())
}

// BeginCommand selects the panel in command mode.
func (p *Panel) BeginCommand() error {
	p.data = false
	p.selectChip()
	return nil
}

// BeginData selects the panel in data mode.
func (p *Panel) BeginData() error {
	p.data = true
	p.selectChip()
	return nil
}

// CommandToData switches DC high.
func (p *Panel) CommandToData() error {
	p.data = true
	return nil
}

// DataToCommand switches DC low.
func (p *Panel) DataToCommand() error {
	p.data = false
	return nil
}

// EndTransaction deasserts CS. A pending half pixel is dropped, as on the
// real controller.
func (p *Panel) EndTransaction() error {
	p.selected = false
	p.half = false
	return nil
}

func (p *Panel) selectChip() {
	if !p.selected {
		p.Transactions++
	}
	p.selected = true
}

// Transmit clocks one byte into the panel. The controller is write-only on
// this path, so the returned byte is always zero.
func (p *Panel) Transmit(b byte) (byte, error) {
	if !p.selected {
		return 0, ErrNotSelected
	}
	if !p.data {
		p.command(b)
		return 0, nil
	}
	if len(p.Log) == 0 {
		// Parameters with no preceding command are ignored.
		return 0, nil
	}
	last := &p.Log[len(p.Log)-1]
	if last.Op == ramWr {
		p.pixelByte(b, last)
		return 0, nil
	}
	last.Args = append(last.Args, b)
	p.param(last)
	return 0, nil
}

func (p *Panel) command(op byte) {
	p.Log = append(p.Log, Command{Op: op})
	p.half = false
	switch op {
	case swReset:
		p.reset()
	case slpIn:
		p.Awake = false
	case slpOut:
		p.Awake = true
	case invOff:
		p.Inverted = false
	case invOn:
		p.Inverted = true
	case dispOff:
		p.On = false
	case dispOn:
		p.On = true
	case ramWr:
		p.col, p.row = p.colStart, p.rowStart
	}
}

func (p *Panel) param(c *Command) {
	switch {
	case c.Op == caSet && len(c.Args) == 4:
		p.colStart, p.colEnd = be16(c.Args[0:]), be16(c.Args[2:])
	case c.Op == raSet && len(c.Args) == 4:
		p.rowStart, p.rowEnd = be16(c.Args[0:]), be16(c.Args[2:])
	case c.Op == madCtl && len(c.Args) == 1:
		p.MADCTL = c.Args[0]
	case c.Op == colMod && len(c.Args) == 1:
		p.COLMOD = c.Args[0]
	}
}

// pixelByte collects a 16-bit pixel and stores it at the write cursor. The
// cursor advances along the column range first and wraps to the next row,
// then back to the first row of the window. Pixels outside the controller's
// RAM (132 columns by 162 rows, swapped when MADCTL exchanges them) or
// outside GRAM are discarded.
func (p *Panel) pixelByte(b byte, c *Command) {
	if !p.half {
		p.hi, p.half = b, true
		return
	}
	p.half = false
	c.Pixels++
	if p.inRAM(p.col, p.row) {
		p.GRAM.SetRGB565(int(p.col), int(p.row), rgb565.FromBytes(p.hi, b))
	}
	if p.col < p.colEnd {
		p.col++
		return
	}
	p.col = p.colStart
	if p.row < p.rowEnd {
		p.row++
		return
	}
	p.row = p.rowStart
}

func (p *Panel) inRAM(col, row uint16) bool {
	cols, rows := uint16(ramCols), uint16(ramRows)
	if p.MADCTL&madctlMV != 0 {
		cols, rows = rows, cols
	}
	return col < cols && row < rows
}

// Window returns the current column and row address ranges, inclusive.
func (p *Panel) Window() (x1, y1, x2, y2 uint16) {
	return p.colStart, p.rowStart, p.colEnd, p.rowEnd
}

// Commands returns the opcodes received, in order.
func (p *Panel) Commands() []byte {
	ops := make([]byte, len(p.Log))
	for i, c := range p.Log {
		ops[i] = c.Op
	}
	return ops
}

// ResetLog forgets the command log.
func (p *Panel) ResetLog() {
	p.Log = nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
