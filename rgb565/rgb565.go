package rgb565

import (
	"image"
	"image/color"
)

// Color is a packed 5-6-5 color.
type Color uint16

// Common colors.
const (
	Black   Color = 0x0000
	White   Color = 0xFFFF
	Red     Color = 0xF800
	Green   Color = 0x07E0
	Blue    Color = 0x001F
	Cyan    Color = 0x07FF
	Magenta Color = 0xF81F
	Yellow  Color = 0xFFE0
)

// New packs 8-bit components, keeping the most significant bits of each.
func New(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// FromHex packs a 0xRRGGBB value.
func FromHex(rgb uint32) Color {
	return Color((rgb>>3)&0x1F | ((rgb>>10)&0x3F)<<5 | ((rgb>>19)&0x1F)<<11)
}

// FromBytes builds a Color from its wire representation.
func FromBytes(hi, lo byte) Color {
	return Color(uint16(hi)<<8 | uint16(lo))
}

// Bytes returns the wire representation, high byte first.
func (c Color) Bytes() (hi, lo byte) {
	return byte(c >> 8), byte(c)
}

// Components returns the raw 5, 6 and 5 bit channels.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c>>11) & 0x1F, uint8(c>>5) & 0x3F, uint8(c) & 0x1F
}

// RGBA implements color.Color. Channels are widened by bit replication so
// that full-scale values map to 0xFFFF.
func (c Color) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Components()
	r8 := uint32(r5<<3 | r5>>2)
	g8 := uint32(g6<<2 | g6>>4)
	b8 := uint32(b5<<3 | b5>>2)
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Color. Alpha is ignored.
var Model = color.ModelFunc(toRGB565)

// Convert returns c as a Color.
func Convert(c color.Color) Color {
	return Model.Convert(c).(Color)
}

// Image is an in-memory 5-6-5 image with two big-endian bytes per pixel.
type Image struct {
	Pix    []byte          // Pixel data, high byte first
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage returns an Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns Model.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the Color of the pixel at (x, y), or Black outside the
// bounds.
func (p *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	i := p.PixOffset(x, y)
	return FromBytes(p.Pix[i], p.Pix[i+1])
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Convert(c))
}

// SetRGB565 sets the pixel at (x, y). Writes outside the bounds are dropped.
func (p *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i], p.Pix[i+1] = c.Bytes()
}

// PixOffset returns the index of the high byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
