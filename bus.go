package st7735

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Bus is the transport between the driver and the controller.
//
// BeginCommand and BeginData wait until nothing is in flight, set the DC line
// and assert chip select. CommandToData and DataToCommand only change DC.
// EndTransaction waits and then releases chip select. Transmit hands the byte
// to the transport and returns the byte clocked in at the same time, if the
// transport reads anything. A transport that queues bytes instead of sending
// them at once also implements Flusher.
//
// A Bus is used by one goroutine at a time.
type Bus interface {
	BeginCommand() error
	BeginData() error
	CommandToData() error
	DataToCommand() error
	Transmit(b byte) (byte, error)
	EndTransaction() error
}

// Flusher is implemented by buses that queue transmitted bytes. Flush returns
// once everything queued is on the wire, without ending the transaction.
type Flusher interface {
	Flush() error
}

// maxTx is the largest single transfer; Linux spidev rejects anything above
// its 4 KiB default buffer.
const maxTx = 4096

// SPIBus is a Bus on a periph.io SPI port.
//
// Bytes sent within one phase are collected and written with a single Tx
// when the phase changes, the transaction ends, the buffer fills or Flush is
// called. The bus is write-only: Transmit always returns 0.
type SPIBus struct {
	c   spi.Conn
	dc  gpio.PinOut
	cs  gpio.PinOut // nil when the port drives chip select itself
	buf []byte
}

// NewSPIBus connects to p at 15MHz, Mode0, 8 bits.
//
// cs may be nil, in which case the port's own chip select line is used and
// is toggled around every transfer.
func NewSPIBus(p spi.Port, dc, cs gpio.PinOut) (*SPIBus, error) {
	if dc == nil {
		return nil, errors.New("st7735: a DC pin is required")
	}
	// 66ns minimum write clock cycle.
	c, err := p.Connect(15*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7735: connect: %w", err)
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("st7735: release CS: %w", err)
		}
	}
	return &SPIBus{c: c, dc: dc, cs: cs, buf: make([]byte, 0, maxTx)}, nil
}

// Flush implements Flusher.
func (b *SPIBus) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	err := b.c.Tx(b.buf, nil)
	b.buf = b.buf[:0]
	return err
}

func (b *SPIBus) begin(l gpio.Level) error {
	if err := b.Flush(); err != nil {
		return err
	}
	if err := b.dc.Out(l); err != nil {
		return err
	}
	if b.cs != nil {
		return b.cs.Out(gpio.Low)
	}
	return nil
}

func (b *SPIBus) phase(l gpio.Level) error {
	if err := b.Flush(); err != nil {
		return err
	}
	return b.dc.Out(l)
}

// BeginCommand implements Bus.
func (b *SPIBus) BeginCommand() error {
	return b.begin(gpio.Low)
}

// BeginData implements Bus.
func (b *SPIBus) BeginData() error {
	return b.begin(gpio.High)
}

// CommandToData implements Bus.
func (b *SPIBus) CommandToData() error {
	return b.phase(gpio.High)
}

// DataToCommand implements Bus.
func (b *SPIBus) DataToCommand() error {
	return b.phase(gpio.Low)
}

// Transmit implements Bus.
func (b *SPIBus) Transmit(v byte) (byte, error) {
	b.buf = append(b.buf, v)
	if len(b.buf) == maxTx {
		return 0, b.Flush()
	}
	return 0, nil
}

// EndTransaction implements Bus.
func (b *SPIBus) EndTransaction() error {
	if err := b.Flush(); err != nil {
		return err
	}
	if b.cs != nil {
		return b.cs.Out(gpio.High)
	}
	return nil
}

func (b *SPIBus) String() string {
	return fmt.Sprintf("st7735.SPIBus{%s}", b.c)
}
