package observe

import (
	"sync"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// Viewport is the deterministic scheduler behind intersection observation.
// It models the browser's scrolling viewport: a size, a scroll offset, and
// the set of live observers. Scrolling, resizing, or flushing synchronously
// recomputes intersections and delivers transition batches, so a test or a
// host can script exact sequences of deliveries.
type Viewport struct {
	mu        sync.Mutex
	width     float64
	height    float64
	scrollX   float64
	scrollY   float64
	observers []*IntersectionObserver
	scrollFn  map[int]func(x, y float64)
	nextID    int
}

// NewViewport creates a viewport with the given size at scroll offset 0,0.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{
		width:    width,
		height:   height,
		scrollFn: make(map[int]func(x, y float64)),
	}
}

// Bounds returns the viewport rect in page coordinates.
func (v *Viewport) Bounds() dom.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return dom.Rect{X: v.scrollX, Y: v.scrollY, Width: v.width, Height: v.height}
}

// Scroll returns the current scroll offset.
func (v *Viewport) Scroll() (x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollX, v.scrollY
}

// NewIntersectionObserver creates and registers an observer. An
// unparseable RootMargin degrades to a zero margin rather than failing;
// pre-validate with [ParseMargin] when a diagnostic is wanted.
func (v *Viewport) NewIntersectionObserver(cb IntersectionCallback, opts IntersectionOptions) *IntersectionObserver {
	margin, err := ParseMargin(opts.RootMargin)
	if err != nil {
		margin = Margin{}
	}
	o := &IntersectionObserver{
		viewport:  v,
		callback:  cb,
		margin:    margin,
		threshold: opts.Threshold,
		observed:  make(map[*dom.Element]bool),
		state:     make(map[*dom.Element]bool),
	}
	v.mu.Lock()
	v.observers = append(v.observers, o)
	v.mu.Unlock()
	return o
}

// ScrollTo moves the scroll offset, notifies scroll listeners, and checks
// every registered observer.
func (v *Viewport) ScrollTo(x, y float64) {
	v.mu.Lock()
	v.scrollX = x
	v.scrollY = y
	v.mu.Unlock()
	v.notifyScroll(x, y)
	v.Flush()
}

// ScrollBy moves the scroll offset relative to its current position.
func (v *Viewport) ScrollBy(dx, dy float64) {
	x, y := v.Scroll()
	v.ScrollTo(x+dx, y+dy)
}

// Resize changes the viewport size and checks every registered observer.
func (v *Viewport) Resize(width, height float64) {
	v.mu.Lock()
	v.width = width
	v.height = height
	v.mu.Unlock()
	v.Flush()
}

// Flush checks every registered observer against the current geometry.
// Pending initial observations are delivered here.
func (v *Viewport) Flush() {
	for _, o := range v.snapshot() {
		o.Check()
	}
}

// OnScroll registers a scroll listener and returns an unsubscribe
// function. Listeners run before observer checks, matching the browser's
// scroll-event-then-observer ordering closely enough for the engine.
func (v *Viewport) OnScroll(fn func(x, y float64)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.scrollFn[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.scrollFn, id)
	}
}

func (v *Viewport) notifyScroll(x, y float64) {
	v.mu.Lock()
	fns := make([]func(x, y float64), 0, len(v.scrollFn))
	for _, fn := range v.scrollFn {
		fns = append(fns, fn)
	}
	v.mu.Unlock()
	for _, fn := range fns {
		fn(x, y)
	}
}

func (v *Viewport) snapshot() []*IntersectionObserver {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*IntersectionObserver, len(v.observers))
	copy(out, v.observers)
	return out
}

func (v *Viewport) unregister(o *IntersectionObserver) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, obs := range v.observers {
		if obs == o {
			v.observers = append(v.observers[:i], v.observers[i+1:]...)
			return
		}
	}
}
