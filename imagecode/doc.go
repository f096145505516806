// Package imagecode reads and writes the compact image streams drawn by
// st7735.Dev.DrawImage.
//
// A stream is a palette followed by a sequence of shape records:
//
//	count       1 byte, number of palette entries (0 means 256)
//	palette     count x 2 bytes, 5-6-5 colors, high byte first
//	records     variable length, see below
//	0xFF        terminator
//
// Each record starts with a command byte. Its low nibble selects the shape:
//
//	0x0   no-op, nothing follows
//	0x1   pixel
//	0x3   vertical line, one length byte
//	0x5   rectangle, width and height bytes
//	other horizontal line, one length byte
//
// Bit 0x10 selects bitmap mode. Without it a palette index follows the
// command byte and fills the whole shape. With it, the geometry is followed
// by one palette index per pixel, row by row. The geometry is always the x
// and y offsets from the draw origin, then the size bytes the shape needs. A
// size byte of zero means one.
//
//	05 02 0A 14 03 04   rectangle, palette[2], at (10,20), 3x4
//	13 00 05 03 01 00 01   vertical bitmap line at (0,5), 3 pixels
//
// Decoder turns records into Shape values without touching hardware, so the
// same stream can be rendered by the driver, validated, or inspected.
package imagecode
