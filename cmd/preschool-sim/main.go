// Command preschool-sim runs the scroll-animation engine against an HTML
// file in a simulated viewport and prints the transitions it produces.
//
// Elements marked with data-aos are laid out from data-sim-top /
// data-sim-height attributes (falling back to a simple vertical stack),
// then the viewport scrolls from top to bottom in fixed steps.
//
// Usage:
//
//	preschool-sim -html page.html [-settings aos.yaml] [-engine observer|scroll]
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/homeworkclubco/preschool/pkg/aos"
	"github.com/homeworkclubco/preschool/pkg/dom"
	"github.com/homeworkclubco/preschool/pkg/observe"
)

func main() {
	htmlPath := flag.String("html", "", "HTML file to load (required)")
	settingsPath := flag.String("settings", "", "optional YAML settings file")
	engine := flag.String("engine", "observer", "engine variant: observer or scroll")
	width := flag.Float64("width", 1280, "viewport width")
	height := flag.Float64("height", 800, "viewport height")
	step := flag.Float64("step", 100, "scroll step in pixels")
	verbose := flag.Bool("v", false, "verbose engine logging")
	flag.Parse()

	if err := run(*htmlPath, *settingsPath, *engine, *width, *height, *step, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "preschool-sim: %v\n", err)
		os.Exit(1)
	}
}

func run(htmlPath, settingsPath, engine string, width, height, step float64, verbose bool) error {
	if htmlPath == "" {
		return fmt.Errorf("-html is required")
	}
	f, err := os.Open(htmlPath)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return err
	}
	doc.SetReadyState(dom.Complete)

	var settings []aos.Setting
	if settingsPath != "" {
		settings, err = aos.LoadSettings(settingsPath)
		if err != nil {
			return err
		}
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	viewport := observe.NewViewport(width, height)
	maxY := layOut(doc, width)

	var subscribe func(event string, fn func(*dom.Element)) func()
	var disable func()
	switch engine {
	case "observer":
		c := aos.New(doc, viewport, aos.WithLogger(logger))
		subscribe = c.On
		disable = func() { c.Disable() }
		defer disable()
		watchTransitions(viewport, subscribe)
		c.Init(settings...)
	case "scroll":
		e := aos.NewScrollEngine(doc, viewport, aos.WithLogger(logger))
		subscribe = e.On
		disable = func() { e.Disable() }
		defer disable()
		watchTransitions(viewport, subscribe)
		e.Init(settings...)
	default:
		return fmt.Errorf("unknown engine %q", engine)
	}

	for y := 0.0; y <= maxY; y += step {
		viewport.ScrollTo(0, y)
	}
	return nil
}

// layOut assigns bounds to every animation target: explicit data-sim-top /
// data-sim-height when present, otherwise a vertical stack of 200px rows
// spaced 300px apart. Returns the page height to scroll through.
func layOut(doc *dom.Document, width float64) float64 {
	els, _ := doc.QuerySelectorAll("[" + aos.TriggerAttr + "]")
	maxY := 0.0
	for i, el := range els {
		top := float64(i) * 300
		h := 200.0
		if v, ok := el.Attr("data-sim-top"); ok {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				top = n
			}
		}
		if v, ok := el.Attr("data-sim-height"); ok {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				h = n
			}
		}
		el.SetBounds(dom.NewRect(0, top, width, h))
		if top+h > maxY {
			maxY = top + h
		}
	}
	return maxY
}

// watchTransitions prints every enter/exit with the scroll position at
// which it fired.
func watchTransitions(viewport *observe.Viewport, subscribe func(string, func(*dom.Element)) func()) {
	report := func(dir string) func(*dom.Element) {
		return func(el *dom.Element) {
			_, y := viewport.Scroll()
			name, _ := el.Attr(aos.TriggerAttr)
			fmt.Printf("%-4s %-20s scrollY=%.0f classes=%v\n", dir, name, y, el.Classes())
		}
	}
	subscribe(aos.EventIn, report("in"))
	subscribe(aos.EventOut, report("out"))
}
