package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/flavioheleno/st7735"
	"github.com/flavioheleno/st7735/imagecode"
	"github.com/flavioheleno/st7735/rgb565"
	"github.com/flavioheleno/st7735/sim"
)

type config struct {
	W, H    int
	MADCTL  byte
	X, Y    uint16
	Checked bool // validate the stream before drawing
}

// session is one stream file drawn on a simulated panel.
type session struct {
	name string
	cfg  config

	panel *sim.Panel
	dev   *st7735.Dev
	stats imagecode.Stats
}

// load reads the stream file and draws it on a freshly initialized panel.
// On a drawing error the panel keeps what was drawn before it.
func (s *session) load() error {
	stream, err := os.ReadFile(s.name)
	if err != nil {
		return err
	}
	if s.cfg.Checked {
		if _, err := imagecode.Validate(stream); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	p := sim.New(s.cfg.W, s.cfg.H)
	dev, err := st7735.New(p, &st7735.Opts{
		W:      s.cfg.W,
		H:      s.cfg.H,
		MADCTL: s.cfg.MADCTL,
		Sleep:  func(time.Duration) {},
	})
	if err != nil {
		return err
	}
	s.panel, s.dev = p, dev
	s.stats = imagecode.Stats{}
	if err := dev.DrawImage(stream, s.cfg.X, s.cfg.Y); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	if s.stats, err = imagecode.Info(stream); err != nil {
		return fmt.Errorf("%s: stats: %w", s.name, err)
	}
	return nil
}

// snapshot returns what the panel shows: black while it is off or asleep,
// complemented colors while inversion is on.
func snapshot(p *sim.Panel) *rgb565.Image {
	img := rgb565.NewImage(p.GRAM.Rect)
	if !p.On || !p.Awake {
		return img
	}
	copy(img.Pix, p.GRAM.Pix)
	if p.Inverted {
		for i := range img.Pix {
			img.Pix[i] = ^img.Pix[i]
		}
	}
	return img
}

func writePNG(name string, img image.Image, zoom int) error {
	if zoom > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*zoom, b.Dy()*zoom))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var opNames = map[byte]string{
	st7735.NOP: "NOP", st7735.SWRESET: "SWRESET", st7735.SLPIN: "SLPIN",
	st7735.SLPOUT: "SLPOUT", st7735.PTLON: "PTLON", st7735.NORON: "NORON",
	st7735.INVOFF: "INVOFF", st7735.INVON: "INVON", st7735.GAMSET: "GAMSET",
	st7735.DISPOFF: "DISPOFF", st7735.DISPON: "DISPON", st7735.CASET: "CASET",
	st7735.RASET: "RASET", st7735.RAMWR: "RAMWR", st7735.MADCTL: "MADCTL",
	st7735.COLMOD: "COLMOD", st7735.FRMCTR1: "FRMCTR1", st7735.FRMCTR2: "FRMCTR2",
	st7735.FRMCTR3: "FRMCTR3", st7735.INVCTR: "INVCTR", st7735.PWCTR1: "PWCTR1",
	st7735.PWCTR2: "PWCTR2", st7735.PWCTR3: "PWCTR3", st7735.PWCTR4: "PWCTR4",
	st7735.PWCTR5: "PWCTR5", st7735.VMCTR1: "VMCTR1", st7735.GMCTRP1: "GMCTRP1",
	st7735.GMCTRN1: "GMCTRN1",
}

// printLog writes one line per command: opcode, name, then its parameters
// or, for memory writes, the pixel count.
func printLog(w io.Writer, p *sim.Panel) {
	for _, c := range p.Log {
		name, ok := opNames[c.Op]
		if !ok {
			name = "?"
		}
		switch {
		case c.Op == st7735.RAMWR:
			fmt.Fprintf(w, "%02X %-8s %d pixels\n", c.Op, name, c.Pixels)
		case len(c.Args) > 0:
			fmt.Fprintf(w, "%02X %-8s % X\n", c.Op, name, c.Args)
		default:
			fmt.Fprintf(w, "%02X %s\n", c.Op, name)
		}
	}
}
