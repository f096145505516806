package st7735

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type spiWrite struct {
	dc, cs gpio.Level
	w      []byte
}

// fakeConn records each write with the DC and CS levels at that moment.
type fakeConn struct {
	dc, cs *gpiotest.Pin
	writes []spiWrite
}

func (c *fakeConn) String() string      { return "fake" }
func (c *fakeConn) Duplex() conn.Duplex { return conn.Half }

func (c *fakeConn) Tx(w, r []byte) error {
	wr := spiWrite{dc: c.dc.L, cs: gpio.Low, w: append([]byte(nil), w...)}
	if c.cs != nil {
		wr.cs = c.cs.L
	}
	c.writes = append(c.writes, wr)
	return nil
}

func (c *fakeConn) TxPackets(p []spi.Packet) error {
	return errors.New("not implemented")
}

type fakePort struct {
	conn *fakeConn
	f    physic.Frequency
	mode spi.Mode
	bits int
	err  error
}

func (p *fakePort) String() string                      { return "fakePort" }
func (p *fakePort) LimitSpeed(f physic.Frequency) error { return nil }

func (p *fakePort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.f, p.mode, p.bits = f, mode, bits
	return p.conn, nil
}

func newFakeSPI(withCS bool) (*fakePort, *gpiotest.Pin, *gpiotest.Pin) {
	dc := &gpiotest.Pin{N: "DC", Num: 25}
	var cs *gpiotest.Pin
	if withCS {
		cs = &gpiotest.Pin{N: "CS", Num: 8, L: gpio.Low}
	}
	return &fakePort{conn: &fakeConn{dc: dc, cs: cs}}, dc, cs
}

func TestNewSPIBus(t *testing.T) {
	p, dc, cs := newFakeSPI(true)
	b, err := NewSPIBus(p, dc, cs)
	if err != nil {
		t.Fatal(err)
	}
	if p.f != 15*physic.MegaHertz || p.mode != spi.Mode0 || p.bits != 8 {
		t.Errorf("Connect(%s, %v, %d), want 15MHz, Mode0, 8 bits", p.f, p.mode, p.bits)
	}
	if cs.L != gpio.High {
		t.Error("CS not released after NewSPIBus")
	}
	if got, want := b.String(), "st7735.SPIBus{fake}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewSPIBusErrors(t *testing.T) {
	p, _, _ := newFakeSPI(false)
	if _, err := NewSPIBus(p, nil, nil); err == nil {
		t.Error("NewSPIBus() without DC succeeded")
	}

	errConnect := errors.New("busy")
	p, dc, _ := newFakeSPI(false)
	p.err = errConnect
	if _, err := NewSPIBus(p, dc, nil); !errors.Is(err, errConnect) {
		t.Errorf("NewSPIBus() error = %v, want %v", err, errConnect)
	}
}

func TestSPIBusPhases(t *testing.T) {
	tests := []struct {
		name   string
		withCS bool
	}{
		{"gpio chip select", true},
		{"port chip select", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, dc, cs := newFakeSPI(tt.withCS)
			var pin gpio.PinOut
			if cs != nil {
				pin = cs
			}
			b, err := NewSPIBus(p, dc, pin)
			if err != nil {
				t.Fatal(err)
			}
			d, err := newDev(b, &Opts{W: 128, H: 160, Sleep: func(time.Duration) {}})
			if err != nil {
				t.Fatal(err)
			}
			if err := d.SetWindow(1, 2, 3, 4); err != nil {
				t.Fatal(err)
			}

			want := []spiWrite{
				{gpio.Low, gpio.Low, []byte{RASET}},
				{gpio.High, gpio.Low, []byte{0, 2, 0, 4}},
				{gpio.Low, gpio.Low, []byte{CASET}},
				{gpio.High, gpio.Low, []byte{0, 1, 0, 3}},
			}
			got := p.conn.writes
			if len(got) != len(want) {
				t.Fatalf("%d writes, want %d: %v", len(got), len(want), got)
			}
			for i := range want {
				if got[i].dc != want[i].dc || got[i].cs != want[i].cs || !bytes.Equal(got[i].w, want[i].w) {
					t.Errorf("write %d = %+v, want %+v", i, got[i], want[i])
				}
			}
			if cs != nil && cs.L != gpio.High {
				t.Error("CS still asserted after the transaction")
			}
		})
	}
}

func TestSPIBusChunks(t *testing.T) {
	p, dc, cs := newFakeSPI(true)
	b, err := NewSPIBus(p, dc, cs)
	if err != nil {
		t.Fatal(err)
	}
	d, err := newDev(b, &Opts{W: 128, H: 160, Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.FillBurst(0x1234, 3000); err != nil {
		t.Fatal(err)
	}

	// RAMWR, then 6000 data bytes split at the transfer limit.
	sizes := []int{1, maxTx, 6000 - maxTx}
	if len(p.conn.writes) != len(sizes) {
		t.Fatalf("%d writes, want %d", len(p.conn.writes), len(sizes))
	}
	for i, n := range sizes {
		if len(p.conn.writes[i].w) != n {
			t.Errorf("write %d has %d bytes, want %d", i, len(p.conn.writes[i].w), n)
		}
	}
	if w := p.conn.writes[1].w; w[0] != 0x12 || w[1] != 0x34 {
		t.Errorf("first pixel = % X, want 12 34", w[:2])
	}
}

func TestSPIBusDrainsBeforeDelay(t *testing.T) {
	p, dc, cs := newFakeSPI(true)
	b, err := NewSPIBus(p, dc, cs)
	if err != nil {
		t.Fatal(err)
	}
	var atSleep []spiWrite
	d, err := newDev(b, &Opts{W: 128, H: 160, Sleep: func(time.Duration) {
		atSleep = append([]spiWrite(nil), p.conn.writes...)
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.RunCommands([]byte{1, MADCTL, DelayFlag | 1, 0xAB, 10}); err != nil {
		t.Fatal(err)
	}

	want := []spiWrite{
		{gpio.Low, gpio.Low, []byte{MADCTL}},
		{gpio.High, gpio.Low, []byte{0xAB}},
	}
	if len(atSleep) != len(want) {
		t.Fatalf("%d writes before the delay, want %d: %v", len(atSleep), len(want), atSleep)
	}
	for i := range want {
		if atSleep[i].dc != want[i].dc || atSleep[i].cs != want[i].cs || !bytes.Equal(atSleep[i].w, want[i].w) {
			t.Errorf("write %d = %+v, want %+v", i, atSleep[i], want[i])
		}
	}
	if len(p.conn.writes) != len(want) {
		t.Errorf("%d writes in total, want %d", len(p.conn.writes), len(want))
	}
	if cs.L != gpio.High {
		t.Error("CS still asserted after the table")
	}
}

// fakeTinySPI is a tinygo drivers.SPI that records every byte.
type fakeTinySPI struct {
	out   []byte
	reply byte
}

func (s *fakeTinySPI) Tx(w, r []byte) error {
	s.out = append(s.out, w...)
	for i := range r {
		r[i] = s.reply
	}
	return nil
}

func (s *fakeTinySPI) Transfer(b byte) (byte, error) {
	s.out = append(s.out, b)
	return s.reply, nil
}

func TestTinyGoBus(t *testing.T) {
	var dcLog, csLog []bool
	s := &fakeTinySPI{reply: 0x5A}
	b := NewTinyGoBus(s,
		func(high bool) { dcLog = append(dcLog, high) },
		func(high bool) { csLog = append(csLog, high) })

	d, err := newDev(b, &Opts{W: 128, H: 160, Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetWindow(1, 2, 3, 4); err != nil {
		t.Fatal(err)
	}

	want := []byte{RASET, 0, 2, 0, 4, CASET, 0, 1, 0, 3}
	if !bytes.Equal(s.out, want) {
		t.Errorf("sent % X, want % X", s.out, want)
	}
	// Released by NewTinyGoBus, asserted once, released at the end.
	if got := []bool{true, false, true}; !equalBools(csLog, got) {
		t.Errorf("CS levels = %v, want %v", csLog, got)
	}
	if got := []bool{false, true, false, true}; !equalBools(dcLog, got) {
		t.Errorf("DC levels = %v, want %v", dcLog, got)
	}

	v, err := b.Transmit(0x00)
	if err != nil || v != 0x5A {
		t.Errorf("Transmit() = 0x%02X, %v, want 0x5A", v, err)
	}
}

func TestTinyGoBusNoCS(t *testing.T) {
	s := &fakeTinySPI{}
	b := NewTinyGoBus(s, func(bool) {}, nil)
	if err := b.BeginCommand(); err != nil {
		t.Fatal(err)
	}
	if err := b.EndTransaction(); err != nil {
		t.Fatal(err)
	}
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
