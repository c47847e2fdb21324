package observe

import (
	"sync"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// IntersectionEntry describes one element's intersection state at the time
// a batch was delivered.
type IntersectionEntry struct {
	// Target is the observed element.
	Target *dom.Element
	// IsIntersecting reports whether the target intersects the
	// margin-expanded viewport at or above the observer's threshold.
	IsIntersecting bool
	// IntersectionRatio is the visible fraction of the target's area,
	// 0 to 1.
	IntersectionRatio float64
	// BoundingRect is the target's layout rect at delivery time.
	BoundingRect dom.Rect
	// RootBounds is the margin-expanded viewport rect used for the test.
	RootBounds dom.Rect
}

// IntersectionCallback receives entry batches. Only transitions are
// reported: an element appears in a batch when its intersecting state
// differs from the last delivered one, plus once when first observed.
type IntersectionCallback func(entries []IntersectionEntry, obs *IntersectionObserver)

// IntersectionOptions configures an observer. A RootMargin that fails to
// parse degrades to a zero margin; callers that care can pre-validate with
// [ParseMargin].
type IntersectionOptions struct {
	RootMargin string
	Threshold  float64
}

// IntersectionObserver watches a set of elements against a [Viewport].
// One observer carries exactly one (margin, threshold) configuration;
// callers group elements that share a configuration onto one observer.
type IntersectionObserver struct {
	viewport  *Viewport
	callback  IntersectionCallback
	margin    Margin
	threshold float64

	mu           sync.Mutex
	targets      []*dom.Element
	observed     map[*dom.Element]bool // value: initial entry already delivered
	state        map[*dom.Element]bool // last delivered intersecting state
	disconnected bool
}

// Observe adds an element to the watch set. The element's initial state is
// delivered on the next check. Observing twice is a no-op.
func (o *IntersectionObserver) Observe(el *dom.Element) {
	if el == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disconnected {
		return
	}
	if _, ok := o.observed[el]; ok {
		return
	}
	o.observed[el] = false
	o.targets = append(o.targets, el)
}

// Unobserve removes an element from the watch set.
func (o *IntersectionObserver) Unobserve(el *dom.Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.observed[el]; !ok {
		return
	}
	delete(o.observed, el)
	delete(o.state, el)
	for i, t := range o.targets {
		if t == el {
			o.targets = append(o.targets[:i], o.targets[i+1:]...)
			break
		}
	}
}

// Disconnect stops all observation and detaches the observer from its
// viewport. Entries computed for a disconnected observer are discarded.
func (o *IntersectionObserver) Disconnect() {
	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return
	}
	o.disconnected = true
	o.targets = nil
	o.observed = nil
	o.state = nil
	o.mu.Unlock()
	o.viewport.unregister(o)
}

// Targets returns the currently observed elements in observation order.
func (o *IntersectionObserver) Targets() []*dom.Element {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*dom.Element, len(o.targets))
	copy(out, o.targets)
	return out
}

// Check recomputes intersection for every observed element and delivers a
// batch containing the transitions plus any pending initial observations.
// No batch is delivered when nothing changed.
func (o *IntersectionObserver) Check() {
	root := o.margin.Expand(o.viewport.Bounds())

	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return
	}
	var entries []IntersectionEntry
	for _, el := range o.targets {
		bounds := el.Bounds()
		ratio, intersecting := o.test(bounds, root)
		delivered := o.observed[el]
		if delivered && o.state[el] == intersecting {
			continue
		}
		o.observed[el] = true
		o.state[el] = intersecting
		entries = append(entries, IntersectionEntry{
			Target:            el,
			IsIntersecting:    intersecting,
			IntersectionRatio: ratio,
			BoundingRect:      bounds,
			RootBounds:        root,
		})
	}
	o.mu.Unlock()

	if len(entries) > 0 {
		o.callback(entries, o)
	}
}

// Deliver hands a synthetic batch straight to the callback, recording each
// entry's state as the last delivered one. Delivery on a disconnected
// observer is a no-op. This is the test-harness entry point.
func (o *IntersectionObserver) Deliver(entries []IntersectionEntry) {
	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return
	}
	for _, e := range entries {
		if _, ok := o.observed[e.Target]; ok {
			o.observed[e.Target] = true
			o.state[e.Target] = e.IsIntersecting
		}
	}
	o.mu.Unlock()

	if len(entries) > 0 {
		o.callback(entries, o)
	}
}

// test computes the intersection ratio of bounds against root and whether
// it clears the threshold. A zero-area element intersects when its point
// touches the root; a threshold of zero is satisfied by edge contact.
func (o *IntersectionObserver) test(bounds, root dom.Rect) (float64, bool) {
	if !bounds.Touches(root) {
		return 0, false
	}
	var ratio float64
	if bounds.Area() == 0 {
		ratio = 1
	} else {
		ratio = bounds.Intersect(root).Area() / bounds.Area()
	}
	if o.threshold <= 0 {
		return ratio, true
	}
	return ratio, ratio >= o.threshold
}
