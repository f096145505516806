package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/howeyc/fsnotify"

	"github.com/flavioheleno/st7735/rgb565"
)

// lastLine keeps the most recent log message for the status line while the
// screen belongs to tcell.
type lastLine struct {
	mu   sync.Mutex
	line string
}

func (l *lastLine) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.line = strings.TrimSpace(string(p))
	return len(p), nil
}

func (l *lastLine) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.line
}

func cellColor(c rgb565.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// drawPanel paints img with the upper half block, the top pixel of each
// pair as foreground and the bottom one as background. It returns the
// number of character rows used.
func drawPanel(s tcell.Screen, img *rgb565.Image) int {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			bottom := rgb565.Black
			if y+1 < b.Max.Y {
				bottom = img.RGB565At(x, y+1)
			}
			st := tcell.StyleDefault.
				Foreground(cellColor(img.RGB565At(x, y))).
				Background(cellColor(bottom))
			s.SetContent(x-b.Min.X, (y-b.Min.Y)/2, '▀', nil, st)
		}
	}
	return (b.Dy() + 1) / 2
}

func drawText(s tcell.Screen, x, y int, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}

func status(s *session) string {
	if s.panel == nil {
		return s.name
	}
	var flags []string
	if s.panel.Inverted {
		flags = append(flags, "inverted")
	}
	if !s.panel.On {
		flags = append(flags, "off")
	}
	line := fmt.Sprintf("%s  %v  %d colors  %d bytes  %d pixels",
		filepath.Base(s.name), s.panel, s.stats.PaletteLen, s.stats.Bytes, s.stats.Pixels)
	if len(flags) > 0 {
		line += "  [" + strings.Join(flags, " ") + "]"
	}
	return line
}

func redraw(scr tcell.Screen, s *session, msg string) {
	scr.Clear()
	rows := 0
	if s.panel != nil {
		rows = drawPanel(scr, snapshot(s.panel))
	}
	drawText(scr, 0, rows+1, status(s))
	drawText(scr, 0, rows+2, msg)
	scr.Show()
}

// runView previews the session in the terminal until the user quits.
func runView(s *session, watch bool) error {
	var fsEvents <-chan *fsnotify.FileEvent
	var fsErrors <-chan error
	if watch {
		s.name = filepath.Clean(s.name)
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Watch(filepath.Dir(s.name)); err != nil {
			return err
		}
		fsEvents, fsErrors = watcher.Event, watcher.Error
	}

	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()

	msgs := &lastLine{}
	log.SetOutput(msgs)
	defer log.SetOutput(os.Stderr)

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := scr.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	reload := time.After(time.Millisecond)
	for {
		select {
		case <-reload:
			if err := s.load(); err != nil {
				log.Print(err)
			} else {
				log.Printf("loaded %s", filepath.Base(s.name))
			}
		case ev := <-fsEvents:
			if ev.Name == s.name && !ev.IsAttrib() {
				reload = time.After(100 * time.Millisecond)
			}
			continue
		case err := <-fsErrors:
			log.Printf("watcher: %v", err)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				scr.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
					return nil
				case ev.Rune() == 'r':
					reload = time.After(time.Millisecond)
				case ev.Rune() == 'i' && s.dev != nil:
					if err := s.dev.Invert(!s.panel.Inverted); err != nil {
						log.Printf("invert: %v", err)
					}
				}
			}
		}
		redraw(scr, s, msgs.String())
	}
}
