package imagecode

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/flavioheleno/st7735/rgb565"
)

// Stream layout constants.
const (
	Terminator = 0xFF // Ends the opcode stream
	BitmapFlag = 0x10 // Per-pixel palette indices follow the geometry
	kindMask   = 0x0F
)

// Low nibble values with a fixed meaning. Every other non-zero nibble is
// decoded as a horizontal line; OpHLine is the value the encoder emits.
const (
	OpNop   = 0x00
	OpPixel = 0x01
	OpVLine = 0x03
	OpRect  = 0x05
	OpHLine = 0x07
)

// Kind identifies the shape an opcode record describes.
type Kind uint8

const (
	Nop Kind = iota
	Pixel
	HLine
	VLine
	Rect
	End
)

var kindNames = [...]string{"Nop", "Pixel", "HLine", "VLine", "Rect", "End"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindOf returns the shape kind a command byte selects.
func KindOf(cmd byte) Kind {
	if cmd == Terminator {
		return End
	}
	switch cmd & kindMask {
	case OpNop:
		return Nop
	case OpPixel:
		return Pixel
	case OpVLine:
		return VLine
	case OpRect:
		return Rect
	default:
		return HLine
	}
}

// Shape is one decoded opcode record.
type Shape struct {
	Cmd    byte
	Kind   Kind
	Bitmap bool
	// Color is the fill color of a solid shape. Unused when Bitmap is set.
	Color rgb565.Color
	// Rect is relative to the image origin. Empty for Nop and End.
	Rect image.Rectangle
	// Indices holds the Rect.Dx()*Rect.Dy() palette indices of a bitmap
	// shape, row-major. It aliases the stream.
	Indices []byte
}

// Drawable reports whether the shape produces pixels.
func (s *Shape) Drawable() bool {
	return s.Kind != Nop && s.Kind != End
}

// Area returns the number of pixels the shape covers.
func (s *Shape) Area() int {
	return s.Rect.Dx() * s.Rect.Dy()
}

// Decoder reads shapes from an image stream one record at a time.
//
// Palette lookups are not range checked against the palette size: index i
// reads the two bytes at 1+2*i in the stream, which for an out-of-range index
// are whatever stream bytes follow the palette. Only reads past the end of the
// buffer fail, with io.ErrUnexpectedEOF. Use Validate to reject such streams
// up front.
type Decoder struct {
	buf     []byte
	colors  int
	pos     int
	done    bool
	checked bool // Lookup rejects indices past the palette
}

// NewDecoder returns a Decoder positioned at the first opcode of stream.
func NewDecoder(stream []byte) (*Decoder, error) {
	if len(stream) == 0 {
		return nil, fmt.Errorf("imagecode: palette header: %w", io.ErrUnexpectedEOF)
	}
	n := int(stream[0])
	if n == 0 {
		n = 256
	}
	start := 1 + 2*n
	if start > len(stream) {
		return nil, fmt.Errorf("imagecode: palette of %d colors: %w", n, io.ErrUnexpectedEOF)
	}
	return &Decoder{buf: stream, colors: n, pos: start}, nil
}

// PaletteLen returns the number of palette entries, 1 to 256.
func (d *Decoder) PaletteLen() int {
	return d.colors
}

// Offset returns the stream offset of the next byte to be read.
func (d *Decoder) Offset() int {
	return d.pos
}

// Lookup resolves a palette index.
func (d *Decoder) Lookup(i byte) (rgb565.Color, error) {
	if d.checked && int(i) >= d.colors {
		return 0, fmt.Errorf("%w: index %d, palette has %d colors", ErrPaletteIndex, i, d.colors)
	}
	off := 1 + 2*int(i)
	if off+1 >= len(d.buf) {
		return 0, fmt.Errorf("imagecode: palette index %d: %w", i, io.ErrUnexpectedEOF)
	}
	return rgb565.FromBytes(d.buf[off], d.buf[off+1]), nil
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("imagecode: offset %d: %w", d.pos, io.ErrUnexpectedEOF)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// size reads a width or height byte; zero means one.
func (d *Decoder) size() (int, error) {
	b, err := d.readByte()
	if b == 0 {
		b = 1
	}
	return int(b), err
}

// Next decodes the next record. After the terminator it keeps returning a
// Shape of Kind End without reading further.
func (d *Decoder) Next() (Shape, error) {
	if d.done {
		return Shape{Cmd: Terminator, Kind: End}, nil
	}
	cmd, err := d.readByte()
	if err != nil {
		return Shape{}, err
	}
	s := Shape{Cmd: cmd, Kind: KindOf(cmd)}
	switch s.Kind {
	case End:
		d.done = true
		return s, nil
	case Nop:
		return s, nil
	}

	s.Bitmap = cmd&BitmapFlag != 0
	if !s.Bitmap {
		i, err := d.readByte()
		if err != nil {
			return Shape{}, err
		}
		if s.Color, err = d.Lookup(i); err != nil {
			return Shape{}, err
		}
	}
	x, err := d.readByte()
	if err != nil {
		return Shape{}, err
	}
	y, err := d.readByte()
	if err != nil {
		return Shape{}, err
	}
	w, h := 1, 1
	if s.Kind != Pixel {
		if w, err = d.size(); err != nil {
			return Shape{}, err
		}
		switch s.Kind {
		case VLine:
			w, h = 1, w
		case Rect:
			if h, err = d.size(); err != nil {
				return Shape{}, err
			}
		}
	}
	s.Rect = image.Rect(int(x), int(y), int(x)+w, int(y)+h)

	if s.Bitmap {
		n := w * h
		if d.pos+n > len(d.buf) {
			return Shape{}, fmt.Errorf("imagecode: bitmap of %d pixels at offset %d: %w", n, d.pos, io.ErrUnexpectedEOF)
		}
		s.Indices = d.buf[d.pos : d.pos+n]
		d.pos += n
	}
	return s, nil
}

// PixelAt resolves the i-th pixel of s, row-major. s must come from d.
func (d *Decoder) PixelAt(s *Shape, i int) (rgb565.Color, error) {
	if !s.Bitmap {
		return s.Color, nil
	}
	return d.Lookup(s.Indices[i])
}

// Sentinel errors reported by Validate.
var (
	ErrMissingTerminator = errors.New("imagecode: stream has no terminator")
	ErrPaletteIndex      = errors.New("imagecode: palette index out of range")
)

// Validate walks the whole stream and checks that it is terminated and that
// every palette index is below the palette size. It returns the offset just
// past the terminator.
func Validate(stream []byte) (int, error) {
	d, err := NewDecoder(stream)
	if err != nil {
		return 0, err
	}
	d.checked = true
	for {
		start := d.pos
		s, err := d.Next()
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: %v", ErrMissingTerminator, err)
		}
		if err != nil {
			return 0, fmt.Errorf("record at offset %d: %w", start, err)
		}
		if s.Kind == End {
			return d.pos, nil
		}
		for i := range s.Indices {
			if _, err := d.PixelAt(&s, i); err != nil {
				return 0, fmt.Errorf("record at offset %d: %w", start, err)
			}
		}
	}
}

// Stats summarizes a stream.
type Stats struct {
	PaletteLen int
	Shapes     map[Kind]int
	Pixels     int // Pixels written, overdraw included
	Bytes      int // Stream length up to and including the terminator
}

// Info decodes the whole stream and returns its statistics.
func Info(stream []byte) (Stats, error) {
	d, err := NewDecoder(stream)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{PaletteLen: d.colors, Shapes: make(map[Kind]int)}
	for {
		s, err := d.Next()
		if err != nil {
			return Stats{}, err
		}
		st.Shapes[s.Kind]++
		st.Pixels += s.Area()
		if s.Kind == End {
			st.Bytes = d.pos
			return st, nil
		}
	}
}
