package main

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/flavioheleno/st7735/imagecode"
	"github.com/flavioheleno/st7735/rgb565"
)

func readImage(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// scale resizes img to w x h. A zero dimension follows the other one,
// keeping the aspect ratio; both zero leaves img as it is.
func scale(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	switch {
	case w == 0 && h == 0:
		return img
	case w == 0:
		w = max(1, b.Dx()*h/b.Dy())
	case h == 0:
		h = max(1, b.Dy()*w/b.Dx())
	}
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// parseColor parses RRGGBB with an optional leading # or 0x.
func parseColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	if len(hex) != 6 {
		return nil, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", s, err)
	}
	return rgb565.FromHex(uint32(v)), nil
}

type goSource struct {
	Pkg    string
	Name   string
	Source string
	Size   image.Point
	Stats  imagecode.Stats
	Stream []byte
}

func writeGo(w io.Writer, s goSource) error {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by st7735pack from %s; DO NOT EDIT.\n\n", s.Source)
	fmt.Fprintf(&b, "package %s\n\n", s.Pkg)
	fmt.Fprintf(&b, "// %s is a %dx%d image in %d colors.\n", s.Name, s.Size.X, s.Size.Y, s.Stats.PaletteLen)
	fmt.Fprintf(&b, "var %s = []byte{", s.Name)
	for i, v := range s.Stream {
		if i%12 == 0 {
			b.WriteString("\n\t")
		} else {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "0x%02x,", v)
	}
	b.WriteString("\n}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
