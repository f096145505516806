package st7735

import (
	"tinygo.org/x/drivers"
)

// TinyGoBus is a Bus on a TinyGo SPI bus such as machine.SPI0.
//
// dc and cs set their pin high when passed true; machine.Pin.Set fits as is.
// cs may be nil when chip select is tied low.
type TinyGoBus struct {
	spi drivers.SPI
	dc  func(high bool)
	cs  func(high bool)
}

// NewTinyGoBus returns a TinyGoBus. The SPI bus must already be configured.
func NewTinyGoBus(spi drivers.SPI, dc, cs func(high bool)) *TinyGoBus {
	if cs != nil {
		cs(true)
	}
	return &TinyGoBus{spi: spi, dc: dc, cs: cs}
}

// Transfers complete before Transfer returns, so there is never anything in
// flight to wait for.

// BeginCommand implements Bus.
func (b *TinyGoBus) BeginCommand() error {
	b.dc(false)
	b.selectChip(true)
	return nil
}

// BeginData implements Bus.
func (b *TinyGoBus) BeginData() error {
	b.dc(true)
	b.selectChip(true)
	return nil
}

// CommandToData implements Bus.
func (b *TinyGoBus) CommandToData() error {
	b.dc(true)
	return nil
}

// DataToCommand implements Bus.
func (b *TinyGoBus) DataToCommand() error {
	b.dc(false)
	return nil
}

// Transmit implements Bus and returns the byte read back from the bus.
func (b *TinyGoBus) Transmit(v byte) (byte, error) {
	return b.spi.Transfer(v)
}

// EndTransaction implements Bus.
func (b *TinyGoBus) EndTransaction() error {
	b.selectChip(false)
	return nil
}

func (b *TinyGoBus) selectChip(on bool) {
	if b.cs != nil {
		b.cs(!on)
	}
}
