// Package rgb565 provides the 16-bit 5-6-5 color format used by the ST7735.
//
// A Color packs 5 bits of red, 6 bits of green and 5 bits of blue:
//
//	bit   15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
//	      R4 R3 R2 R1 R0 G5 G4 G3 G2 G1 G0 B4 B3 B2 B1 B0
//
// On the wire the high byte is transmitted first. Image keeps its pixels in
// that order, two bytes per pixel, so a row of an Image is exactly the byte
// sequence the controller expects after a memory write command:
//
//	img := rgb565.NewImage(image.Rect(0, 0, 128, 160))
//	img.SetRGB565(10, 20, rgb565.FromHex(0x00FF00))
//	hi, lo := img.RGB565At(10, 20).Bytes() // 0x07, 0xE0
//
// Any color.Color converts through Model by truncating each 8-bit channel to
// its top 5 or 6 bits.
package rgb565
