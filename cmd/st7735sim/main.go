// Command st7735sim renders ST7735 image bytecode on a simulated panel.
//
// The stream is drawn through the real driver onto a bus-level model of the
// controller, so what appears is what the panel would show. By default the
// result is previewed in the terminal, two display rows per character cell:
//
//	st7735sim logo.bin
//	st7735sim -watch -x 56 -y 40 logo.bin
//	st7735sim -png out.png -zoom 4 logo.bin
//	st7735sim -log logo.bin
//
// In the preview, q or Esc quits, i toggles color inversion and r reloads.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/flavioheleno/st7735"
)

func main() {
	log.SetPrefix("st7735sim: ")
	log.SetFlags(0)

	var (
		widthFlag  = flag.Int("width", 128, "panel width in pixels")
		heightFlag = flag.Int("height", 160, "panel height in pixels")
		madctlFlag = flag.Uint("madctl", st7735.DefaultMADCTL, "MADCTL byte sent at bring-up")
		xFlag      = flag.Uint("x", 0, "image origin column")
		yFlag      = flag.Uint("y", 0, "image origin row")
		trustFlag  = flag.Bool("trust", false, "skip stream validation, reproducing unchecked palette reads")
		pngFlag    = flag.String("png", "", "write the panel to `file` as PNG instead of previewing")
		zoomFlag   = flag.Int("zoom", 1, "PNG scale factor")
		logFlag    = flag.Bool("log", false, "print the commands the panel received, bring-up included")
		watchFlag  = flag.Bool("watch", false, "redraw when the stream file changes")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <stream>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	s := &session{
		name: flag.Arg(0),
		cfg: config{
			W:       *widthFlag,
			H:       *heightFlag,
			MADCTL:  byte(*madctlFlag),
			X:       uint16(*xFlag),
			Y:       uint16(*yFlag),
			Checked: !*trustFlag,
		},
	}

	switch {
	case *logFlag:
		if err := s.load(); err != nil {
			log.Fatal(err)
		}
		printLog(os.Stdout, s.panel)
	case *pngFlag != "":
		if err := s.load(); err != nil {
			log.Fatal(err)
		}
		if err := writePNG(*pngFlag, snapshot(s.panel), *zoomFlag); err != nil {
			log.Fatal(err)
		}
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			log.Fatal("stdout is not a terminal; use -png or -log")
		}
		if err := runView(s, *watchFlag); err != nil {
			log.Fatal(err)
		}
	}
}
