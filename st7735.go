package st7735

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/st7735/rgb565"
)

// ErrHalted is returned by drawing operations after Halt.
var ErrHalted = errors.New("st7735: halted")

// Controller display RAM is 132 columns by 162 rows. With MADCTLMV set the
// driver's x runs along rows instead.
const (
	ramCols = 132
	ramRows = 162
)

// ramSize returns the largest width and height MADCTL value m can address.
func ramSize(m byte) (w, h int) {
	if m&MADCTLMV != 0 {
		return ramRows, ramCols
	}
	return ramCols, ramRows
}

// Opts is the configuration for the ST7735 display.
type Opts struct {
	// Display dimensions in pixels. x is sent as the column address, so
	// without MADCTLMV W is at most 132 and H at most 162; with it the
	// limits swap.
	W int // Width (default: 128)
	H int // Height (default: 160)

	// MADCTL is the memory access control byte written at initialization.
	// It sets the scan direction and whether rows and columns are exchanged.
	// Zero selects DefaultMADCTL; use SetMADCTL after New for a literal 0x00.
	MADCTL byte

	// Optional hardware reset pin (nil if not used)
	RST gpio.PinIO

	// Sleep blocks for the given duration. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts is used when New is given nil options.
var DefaultOpts = Opts{W: 128, H: 160, MADCTL: DefaultMADCTL}

// Dev is the device handle for the ST7735 display.
type Dev struct {
	bus   Bus
	rst   gpio.PinIO
	sleep func(time.Duration)

	rect   image.Rectangle
	madctl byte

	halted bool
	// err keeps the first failure of SetPixel until Display reports it.
	err error
}

// NewSPI creates a new ST7735 device connected via SPI and initializes it.
//
// dc must be an output. cs may be nil when the SPI port drives chip select.
// opts can be nil to use DefaultOpts.
func NewSPI(p spi.Port, dc, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	b, err := NewSPIBus(p, dc, cs)
	if err != nil {
		return nil, err
	}
	return New(b, opts)
}

// New creates a device on an arbitrary bus, resets it if opts has a reset
// pin, and replays the bring-up tables.
func New(b Bus, opts *Opts) (*Dev, error) {
	d, err := newDev(b, opts)
	if err != nil {
		return nil, err
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(b Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	madctl := opts.MADCTL
	if madctl == 0 {
		madctl = DefaultMADCTL
	}
	maxW, maxH := ramSize(madctl)
	if opts.W <= 0 || opts.W > maxW {
		return nil, fmt.Errorf("st7735: width must be between 1 and %d for MADCTL 0x%02X", maxW, madctl)
	}
	if opts.H <= 0 || opts.H > maxH {
		return nil, fmt.Errorf("st7735: height must be between 1 and %d for MADCTL 0x%02X", maxH, madctl)
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Dev{
		bus:    b,
		rst:    opts.RST,
		sleep:  sleep,
		rect:   image.Rect(0, 0, opts.W, opts.H),
		madctl: madctl,
	}, nil
}

// reset pulses the hardware reset line, if there is one.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7735: failed to pull RST low: %w", err)
	}
	d.sleep(5 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("st7735: failed to pull RST high: %w", err)
	}
	d.sleep(10 * time.Millisecond)
	return nil
}

// Init replays the three bring-up tables. It also brings a halted device
// back.
func (d *Dev) Init() error {
	for i, t := range InitTables(d.madctl) {
		if err := d.RunCommands(t); err != nil {
			return fmt.Errorf("st7735: init table %d: %w", i+1, err)
		}
	}
	d.halted = false
	return nil
}

// SendCommand sends a single command byte in its own transaction.
func (d *Dev) SendCommand(cmd byte) error {
	t := txn{b: d.bus}
	t.do(t.b.BeginCommand)
	t.send(cmd)
	return t.end()
}

// SendData sends parameter bytes in their own transaction, for commands
// whose parameters are computed after the command byte went out.
func (d *Dev) SendData(data ...byte) error {
	t := txn{b: d.bus}
	t.do(t.b.BeginData)
	t.send(data...)
	return t.end()
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return ErrHalted
	}
	cmd := byte(INVOFF)
	if invert {
		cmd = INVON
	}
	return d.SendCommand(cmd)
}

// SetSleep puts the controller to sleep or wakes it. Either transition needs
// 120ms before the next one.
func (d *Dev) SetSleep(sleep bool) error {
	if d.halted {
		return ErrHalted
	}
	cmd := byte(SLPOUT)
	if sleep {
		cmd = SLPIN
	}
	if err := d.SendCommand(cmd); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)
	return nil
}

// SetMADCTL writes a new memory access control byte. When the row/column
// exchange bit changes, the width and height of Bounds swap. Init writes the
// new value again.
func (d *Dev) SetMADCTL(m byte) error {
	if d.halted {
		return ErrHalted
	}
	t := txn{b: d.bus}
	t.do(t.b.BeginCommand)
	t.send(MADCTL)
	t.do(t.b.CommandToData)
	t.send(m)
	if err := t.end(); err != nil {
		return err
	}
	if (m^d.madctl)&MADCTLMV != 0 {
		d.rect = image.Rect(0, 0, d.rect.Dy(), d.rect.Dx())
	}
	d.madctl = m
	return nil
}

// Halt turns the display off.
// After calling Halt, drawing fails with ErrHalted until Init is called.
func (d *Dev) Halt() error {
	d.halted = true
	return d.SendCommand(DISPOFF)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7735.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// txn sequences the operations of one bus transaction and keeps the first
// error. Once an operation fails the rest are skipped, except the final
// EndTransaction which always runs so chip select is released.
type txn struct {
	b   Bus
	err error
}

func (t *txn) do(op func() error) {
	if t.err == nil {
		t.err = op()
	}
}

func (t *txn) send(bs ...byte) {
	for _, v := range bs {
		if t.err != nil {
			return
		}
		_, t.err = t.b.Transmit(v)
	}
}

func (t *txn) u16(v uint16) {
	t.send(byte(v>>8), byte(v))
}

func (t *txn) pixel(c rgb565.Color) {
	hi, lo := c.Bytes()
	t.send(hi, lo)
}

func (t *txn) end() error {
	err := t.b.EndTransaction()
	if t.err != nil {
		return t.err
	}
	return err
}
