package aos

import (
	"github.com/homeworkclubco/preschool/pkg/dom"
	"github.com/homeworkclubco/preschool/pkg/observe"
)

// transition is an applied class change whose events have not been
// dispatched yet. Classes and metadata change under the engine lock;
// dispatch happens after the lock is released so listeners can safely
// call back into the engine.
type transition struct {
	el    *dom.Element
	id    string
	enter bool
}

func (t transition) dispatch(doc *dom.Document) {
	event, scoped := EventOut, ScopedEventOut
	if t.enter {
		event, scoped = EventIn, ScopedEventIn
	}
	doc.DispatchEvent(&dom.Event{Type: event, Detail: t.el, Bubbles: true, Cancelable: true})
	if t.id != "" {
		doc.DispatchEvent(&dom.Event{Type: scoped(t.id), Detail: t.el, Bubbles: true, Cancelable: true})
	}
}

func dispatchAll(doc *dom.Document, fired []transition) {
	for _, t := range fired {
		t.dispatch(doc)
	}
}

// handleIntersection is the callback shared by every group's observer. For
// each entry it applies the tri-state transition guard:
//
//	intersecting  && !animated          → enter
//	!intersecting && animated && !once  → exit
//	anything else                       → no-op
//
// The guard prevents redundant class churn and enforces the once-latch.
// Entries for elements with no recorded metadata are skipped silently:
// they belong to a stale observer batch or an element prepared by an
// engine that has since been disabled.
//
// Delivery arrives on whichever goroutine checked the observer — the
// host's scroll path or the debounced rebuild's timer goroutine — so the
// coordinator lock guards the metadata table here.
func (c *Coordinator) handleIntersection(entries []observe.IntersectionEntry, obs *observe.IntersectionObserver) {
	var fired []transition
	c.mu.Lock()
	for _, entry := range entries {
		meta, ok := c.table[entry.Target]
		if !ok {
			continue
		}
		switch {
		case entry.IsIntersecting && !meta.animated:
			fired = append(fired, enterTarget(entry.Target, meta))
			if meta.once {
				obs.Unobserve(entry.Target)
			}
		case !entry.IsIntersecting && meta.animated && !meta.once:
			fired = append(fired, exitTarget(entry.Target, meta))
		}
	}
	c.mu.Unlock()
	dispatchAll(c.doc, fired)
}

// enterTarget applies the animation classes and returns the pending
// transition. The caller holds the engine lock and dispatches afterwards.
func enterTarget(el *dom.Element, meta *targetMeta) transition {
	el.AddClass(meta.animatedClassNames...)
	meta.animated = true
	return transition{el: el, id: meta.id, enter: true}
}

// exitTarget removes the animation classes and returns the pending
// transition.
func exitTarget(el *dom.Element, meta *targetMeta) transition {
	el.RemoveClass(meta.animatedClassNames...)
	meta.animated = false
	return transition{el: el, id: meta.id}
}
