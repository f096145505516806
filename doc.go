// Package st7735 controls an ST7735 TFT LCD controller over SPI.
//
// The ST7735 drives up to 132x162 pixels of 16-bit 5-6-5 color. This driver
// targets the common 1.8" 128x160 green-tab modules. It never keeps a frame
// buffer: every drawing call addresses a window in display memory and streams
// the pixels for it straight to the bus.
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCK         → SPI Clock (SCLK)
//	SDA         → SPI Data (MOSI)
//	A0 / DC     → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO
//	RESET       → Optional: GPIO for hardware reset
//	LED         → 3.3V through a resistor, or a PWM pin
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//
//		"github.com/flavioheleno/st7735"
//		"github.com/flavioheleno/st7735/rgb565"
//	)
//
//	func main() {
//		host.Init()
//
//		port, _ := spireg.Open("")
//		defer port.Close()
//
//		dev, _ := st7735.NewSPI(port, gpioreg.ByName("GPIO25"), nil, nil)
//		defer dev.Halt()
//
//		dev.FillScreen(rgb565.Black)
//		dev.FillRect(rgb565.Red, 10, 10, 40, 20)
//	}
//
// # Buses
//
// All traffic goes through the Bus interface: begin a command or data phase,
// switch between the two without releasing chip select, transmit a byte, end
// the transaction. SPIBus implements it with periph.io, TinyGoBus with a
// tinygo.org/x/drivers SPI bus, and the sim package provides a simulated
// controller for tests and previews.
//
// # Initialization
//
// New replays three command tables: power and frame setup, the green-tab
// address window, and gamma plus display on. Each table is a count followed
// by records of opcode, argument count, arguments and an optional delay:
//
//	1                       one command
//	0x36, 1, 0x50           MADCTL, one argument
//
// Setting bit 0x80 of the argument count appends a delay byte in
// milliseconds; 255 stands for 500 ms. RunCommands replays custom tables in
// the same format.
//
// # Images
//
// DrawImage renders streams produced by the imagecode package: a palette
// followed by pixel, line and rectangle records. Flat artwork with few colors
// encodes to a few hundred bytes, against 40 KiB for a raw 128x160 frame.
//
// # Orientation
//
// SetWindow sends the row range (y) first and the column range (x) second.
// The controller has 132 columns and 162 rows, so with the default MADCTL of
// 0x50 the display is 128 pixels wide and 160 high. That default was found
// to match the panels this driver was written for, not taken from the
// datasheet; change it if the image appears mirrored. For landscape, set the
// row/column exchange bit and swap the size:
//
//	st7735.New(bus, &st7735.Opts{W: 160, H: 128, MADCTL: st7735.DefaultMADCTL | st7735.MADCTLMV})
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/ST7735.pdf
//
// # Compatibility
//
// Dev implements display.Drawer from periph.io and drivers.Displayer from
// TinyGo drivers.
package st7735
