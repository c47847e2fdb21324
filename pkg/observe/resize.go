package observe

import (
	"sync"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// ResizeEntry describes one element whose layout rect changed.
type ResizeEntry struct {
	Target      *dom.Element
	ContentRect dom.Rect
}

// ResizeCallback receives resize entry batches.
type ResizeCallback func(entries []ResizeEntry, obs *ResizeObserver)

// ResizeObserver reports layout-rect changes for a set of elements. It
// subscribes to each element's document and fires whenever an observed
// element's bounds are reassigned.
type ResizeObserver struct {
	callback ResizeCallback

	mu           sync.Mutex
	targets      map[*dom.Element]struct{}
	unsubs       map[*dom.Document]func()
	disconnected bool
}

// NewResizeObserver creates a disconnected observer; call Observe to start
// watching elements.
func NewResizeObserver(cb ResizeCallback) *ResizeObserver {
	return &ResizeObserver{
		callback: cb,
		targets:  make(map[*dom.Element]struct{}),
		unsubs:   make(map[*dom.Document]func()),
	}
}

// Observe adds an element to the watch set.
func (o *ResizeObserver) Observe(el *dom.Element) {
	if el == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disconnected {
		return
	}
	o.targets[el] = struct{}{}
	doc := el.Document()
	if _, ok := o.unsubs[doc]; !ok {
		o.unsubs[doc] = doc.OnLayoutChange(o.onLayout)
	}
}

// Unobserve removes an element from the watch set.
func (o *ResizeObserver) Unobserve(el *dom.Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.targets, el)
}

// Disconnect stops all observation.
func (o *ResizeObserver) Disconnect() {
	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return
	}
	o.disconnected = true
	o.targets = nil
	unsubs := o.unsubs
	o.unsubs = nil
	o.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

func (o *ResizeObserver) onLayout(el *dom.Element) {
	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return
	}
	_, watching := o.targets[el]
	o.mu.Unlock()
	if !watching {
		return
	}
	o.callback([]ResizeEntry{{Target: el, ContentRect: el.Bounds()}}, o)
}
