// Command st7735pack converts an image file into ST7735 image bytecode.
//
// The input may be PNG, GIF, JPEG, BMP or WebP. The output is either the raw
// stream, ready for Dev.DrawImage, or a Go source file declaring it as a
// byte slice:
//
//	st7735pack -o logo.bin logo.png
//	st7735pack -format go -pkg assets -name Logo -o logo.go logo.png
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/flavioheleno/st7735/imagecode"
)

func main() {
	log.SetPrefix("st7735pack: ")
	log.SetFlags(0)

	var (
		outFlag         = flag.String("o", "", "write output to `file` (default stdout)")
		formatFlag      = flag.String("format", "raw", "output format: raw or go")
		pkgFlag         = flag.String("pkg", "main", "package name for -format go")
		nameFlag        = flag.String("name", "Image", "variable name for -format go")
		widthFlag       = flag.Int("width", 0, "scale to `pixels` wide (keeps aspect ratio if -height is 0)")
		heightFlag      = flag.Int("height", 0, "scale to `pixels` high (keeps aspect ratio if -width is 0)")
		transparentFlag = flag.String("transparent", "", "do not encode pixels of this `RRGGBB` color")
		quietFlag       = flag.Bool("q", false, "do not print statistics")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	if *formatFlag != "raw" && *formatFlag != "go" {
		log.Fatalf("unknown format %q", *formatFlag)
	}

	src, err := readImage(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	img := scale(src, *widthFlag, *heightFlag)

	var opts imagecode.Options
	if *transparentFlag != "" {
		c, err := parseColor(*transparentFlag)
		if err != nil {
			log.Fatal(err)
		}
		opts.Transparent = c
	}
	stream, err := imagecode.Encode(img, &opts)
	if err != nil {
		log.Fatal(err)
	}
	st, err := imagecode.Info(stream)
	if err != nil {
		log.Fatal(err)
	}

	var out io.Writer = os.Stdout
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	switch *formatFlag {
	case "raw":
		_, err = out.Write(stream)
	case "go":
		err = writeGo(out, goSource{
			Pkg:    *pkgFlag,
			Name:   *nameFlag,
			Source: filepath.Base(flag.Arg(0)),
			Size:   img.Bounds().Size(),
			Stats:  st,
			Stream: stream,
		})
	}
	if err != nil {
		log.Fatal(err)
	}

	if !*quietFlag {
		printStats(os.Stderr, img.Bounds().Size(), st)
	}
}

func printStats(w io.Writer, size image.Point, st imagecode.Stats) {
	raw := size.X * size.Y * 2
	fmt.Fprintf(w, "%dx%d, %d colors, %d bytes (%d raw, %.1f%%)\n",
		size.X, size.Y, st.PaletteLen, st.Bytes, raw, 100*float64(st.Bytes)/float64(raw))
	for _, k := range []imagecode.Kind{imagecode.Pixel, imagecode.HLine, imagecode.VLine, imagecode.Rect} {
		if n := st.Shapes[k]; n > 0 {
			fmt.Fprintf(w, "  %-6s %d\n", k, n)
		}
	}
}
