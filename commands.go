package st7735

import (
	"fmt"
	"io"
	"time"
)

// Controller commands, as named in the datasheet.
const (
	NOP       = 0x00
	SWRESET   = 0x01 // Software reset
	RDDID     = 0x04 // Read display ID
	RDDST     = 0x09 // Read display status
	RDDPM     = 0x0A // Read display power mode
	RDDMADCTL = 0x0B
	RDDCOLMOD = 0x0C
	RDDIM     = 0x0D // Read display image mode
	RDDSM     = 0x0E // Read display signal mode
	SLPIN     = 0x10 // Sleep in
	SLPOUT    = 0x11 // Sleep out
	PTLON     = 0x12 // Partial mode on
	NORON     = 0x13 // Normal display mode on
	INVOFF    = 0x20 // Display inversion off
	INVON     = 0x21 // Display inversion on
	GAMSET    = 0x26 // Gamma curve select
	DISPOFF   = 0x28
	DISPON    = 0x29
	CASET     = 0x2A // Column address set
	RASET     = 0x2B // Row address set
	RAMWR     = 0x2C // Memory write
	RAMRD     = 0x2E // Memory read
	PTLAR     = 0x30 // Partial area
	VSCRDEF   = 0x33 // Vertical scroll definition
	TEOFF     = 0x34 // Tearing effect line off
	TEON      = 0x35 // Tearing effect line on
	MADCTL    = 0x36 // Memory data access control
	VSCRSADD  = 0x37 // Vertical scroll start address
	IDMOFF    = 0x38 // Idle mode off
	IDMON     = 0x39 // Idle mode on
	COLMOD    = 0x3A // Interface pixel format

	FRMCTR1 = 0xB1 // Frame rate control, normal mode
	FRMCTR2 = 0xB2 // Frame rate control, idle mode
	FRMCTR3 = 0xB3 // Frame rate control, partial mode
	INVCTR  = 0xB4 // Display inversion control
	DISSET5 = 0xB6
	PWCTR1  = 0xC0
	PWCTR2  = 0xC1
	PWCTR3  = 0xC2
	PWCTR4  = 0xC3
	PWCTR5  = 0xC4
	VMCTR1  = 0xC5 // VCOM control
	RDID1   = 0xDA
	RDID2   = 0xDB
	RDID3   = 0xDC
	RDID4   = 0xDD
	GMCTRP1 = 0xE0 // Positive gamma correction
	GMCTRN1 = 0xE1 // Negative gamma correction
	PWCTR6  = 0xFC
)

// MADCTL bits.
const (
	MADCTLMY  = 0x80 // Row address order
	MADCTLMX  = 0x40 // Column address order
	MADCTLMV  = 0x20 // Row/column exchange
	MADCTLML  = 0x10 // Vertical refresh order
	MADCTLBGR = 0x08
	MADCTLMH  = 0x04 // Horizontal refresh order
)

// DefaultMADCTL is the memory access direction the bring-up table writes
// unless Opts says otherwise. It was determined on real panels; the datasheet
// suggests 0xC8.
const DefaultMADCTL = MADCTLMX | MADCTLML

// Command table encoding.
const (
	DelayFlag = 0x80 // Set in the argument count: a delay byte follows the arguments
	argMask   = 0x7F
	longDelay = 255 // Delay byte meaning 500ms
)

// initR1 is the first bring-up table: reset, wake, frame rate, power and
// pixel format.
func initR1(madctl byte) []byte {
	return []byte{
		15,
		SWRESET, DelayFlag, 150,
		SLPOUT, DelayFlag, longDelay,
		FRMCTR1, 3, 0x01, 0x2C, 0x2D, // fosc/(1x2+40) * (LINE+2C+2D)
		FRMCTR2, 3, 0x01, 0x2C, 0x2D,
		FRMCTR3, 6, 0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D, // dot, then line inversion
		INVCTR, 1, 0x07,
		PWCTR1, 3, 0xA2, 0x02, 0x84, // -4.6V, auto mode
		PWCTR2, 1, 0xC5, // VGH25 = 2.4C VGSEL = -10 VGH = 3 * AVDD
		PWCTR3, 2, 0x0A, 0x00, // opamp current small, boost frequency
		PWCTR4, 2, 0x8A, 0x2A,
		PWCTR5, 2, 0x8A, 0xEE,
		VMCTR1, 1, 0x0E,
		INVOFF, 0,
		MADCTL, 1, madctl,
		COLMOD, 1, 0x05, // 16 bits per pixel
	}
}

// initR2Green sets the full address window of a green-tab panel, whose
// visible area starts at column 2, row 1.
var initR2Green = []byte{
	2,
	CASET, 4, 0x00, 0x02, 0x00, 0x7F + 0x02,
	RASET, 4, 0x00, 0x01, 0x00, 0x9F + 0x01,
}

// initR3 loads the gamma curves and turns the display on.
var initR3 = []byte{
	4,
	GMCTRP1, 16,
	0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
	0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
	GMCTRN1, 16,
	0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
	0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
	NORON, DelayFlag, 10,
	DISPON, DelayFlag, 100,
}

// InitTables returns the bring-up tables in the order Init replays them.
func InitTables(madctl byte) [][]byte {
	return [][]byte{initR1(madctl), initR2Green, initR3}
}

// RunCommands replays a command table.
//
// The table is a command count followed by that many records of opcode,
// argument count, arguments and, when DelayFlag is set in the argument count,
// a delay byte in milliseconds (255 meaning 500ms). All records share one
// transaction. A nil table does nothing.
//
// Records are sent as they are read. A table that ends early has its complete
// records sent before RunCommands reports io.ErrUnexpectedEOF.
func (d *Dev) RunCommands(table []byte) error {
	if len(table) == 0 {
		return nil
	}
	t := txn{b: d.bus}
	t.do(t.b.BeginCommand)
	r := tableReader{buf: table, pos: 1}
	for n := table[0]; n > 0 && t.err == nil; n-- {
		op, err := r.next()
		if err != nil {
			t.err = err
			break
		}
		t.do(t.b.DataToCommand)
		t.send(op)
		argc, err := r.next()
		if err != nil {
			t.err = err
			break
		}
		t.do(t.b.CommandToData)
		for i := argc & argMask; i > 0 && t.err == nil; i-- {
			arg, err := r.next()
			if err != nil {
				t.err = err
				break
			}
			t.send(arg)
		}
		if argc&DelayFlag == 0 || t.err != nil {
			continue
		}
		ms, err := r.next()
		if err != nil {
			t.err = err
			break
		}
		// The delay counts from the last argument on the wire.
		if f, ok := d.bus.(Flusher); ok {
			if t.do(f.Flush); t.err != nil {
				break
			}
		}
		d.sleep(delay(ms))
	}
	if err := t.end(); err != nil {
		return fmt.Errorf("st7735: command table: %w", err)
	}
	return nil
}

// delay decodes a table delay byte.
func delay(b byte) time.Duration {
	if b == longDelay {
		return 500 * time.Millisecond
	}
	return time.Duration(b) * time.Millisecond
}

type tableReader struct {
	buf []byte
	pos int
}

func (r *tableReader) next() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("offset %d: %w", r.pos, io.ErrUnexpectedEOF)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}
