package imagecode

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/st7735/rgb565"
)

// MaxSize is the largest width or height Encode accepts. Shape offsets are
// single bytes, so the last addressable pixel is at 255.
const MaxSize = 256

var (
	ErrTooManyColors = errors.New("imagecode: more than 256 colors")
	ErrTooLarge      = errors.New("imagecode: image larger than 256x256")
)

// Options tunes Encode.
type Options struct {
	// Transparent, when set, names a color that is not encoded. Pixels of
	// that color are left untouched on the display.
	Transparent color.Color
}

// Encode converts img to an image stream. Colors are reduced to 5-6-5 first;
// the palette keeps them in order of first appearance. Pixels are covered in
// raster order with the largest solid rectangle that grows right and then
// down from the first uncovered pixel, emitted as a pixel, line or rectangle
// record as its size allows.
func Encode(img image.Image, opts *Options) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > MaxSize || h > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}

	px := make([]rgb565.Color, w*h)
	skip := make([]bool, w*h)
	var transparent rgb565.Color
	hasTransparent := opts != nil && opts.Transparent != nil
	if hasTransparent {
		transparent = rgb565.Convert(opts.Transparent)
	}

	index := make(map[rgb565.Color]byte)
	var palette []rgb565.Color
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := rgb565.Convert(img.At(b.Min.X+x, b.Min.Y+y))
			px[y*w+x] = c
			if hasTransparent && c == transparent {
				skip[y*w+x] = true
				continue
			}
			if _, ok := index[c]; ok {
				continue
			}
			if len(palette) == 256 {
				return nil, ErrTooManyColors
			}
			index[c] = byte(len(palette))
			palette = append(palette, c)
		}
	}
	if len(palette) == 0 {
		palette = append(palette, rgb565.Black)
	}

	out := make([]byte, 0, 1+2*len(palette)+w*h/2+1)
	out = append(out, byte(len(palette)))
	for _, c := range palette {
		hi, lo := c.Bytes()
		out = append(out, hi, lo)
	}

	// claimable reports whether the pixel at (x, y) has color c and has not
	// been covered yet.
	claimable := func(x, y int, c rgb565.Color) bool {
		i := y*w + x
		return !skip[i] && px[i] == c
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if skip[y*w+x] {
				continue
			}
			c := px[y*w+x]
			rw := 1
			for x+rw < w && rw < 255 && claimable(x+rw, y, c) {
				rw++
			}
			rh := 1
		grow:
			for y+rh < h && rh < 255 {
				for i := 0; i < rw; i++ {
					if !claimable(x+i, y+rh, c) {
						break grow
					}
				}
				rh++
			}
			for j := 0; j < rh; j++ {
				for i := 0; i < rw; i++ {
					skip[(y+j)*w+x+i] = true
				}
			}
			out = appendShape(out, index[c], x, y, rw, rh)
		}
	}
	return append(out, Terminator), nil
}

func appendShape(out []byte, idx byte, x, y, w, h int) []byte {
	switch {
	case w == 1 && h == 1:
		return append(out, OpPixel, idx, byte(x), byte(y))
	case h == 1:
		return append(out, OpHLine, idx, byte(x), byte(y), byte(w))
	case w == 1:
		return append(out, OpVLine, idx, byte(x), byte(y), byte(h))
	default:
		return append(out, OpRect, idx, byte(x), byte(y), byte(w), byte(h))
	}
}
