package dom

import "sync"

// Lifecycle event names dispatched by [Document.SetReadyState].
const (
	// EventDOMContentLoaded fires when the document leaves the loading state.
	EventDOMContentLoaded = "DOMContentLoaded"
	// EventLoad fires when the document reaches the complete state.
	EventLoad = "load"
)

// Event is a document-level event. It carries an arbitrary Detail payload,
// following the CustomEvent shape.
type Event struct {
	// Type is the event name (e.g. "aos:in").
	Type string

	// Detail holds custom event data. The animation engine sets it to the
	// affected *Element.
	Detail any

	// Bubbles indicates whether the event would bubble in a full DOM tree.
	Bubbles bool

	// Cancelable indicates whether PreventDefault has an effect.
	Cancelable bool

	defaultPrevented bool
}

// PreventDefault marks a cancelable event as canceled.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// EventListener is a callback registered with [EventTarget.AddEventListener].
type EventListener func(*Event)

// EventTarget provides DOM-style event dispatch. Listeners for a type are
// invoked in registration order. Functions cannot be compared in Go, so
// AddEventListener hands back an unsubscribe function instead of relying on
// listener identity for removal.
type EventTarget struct {
	mu        sync.Mutex
	listeners map[string]map[int]EventListener
	order     map[string][]int
	nextID    int
}

// NewEventTarget creates an event target with no listeners.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string]map[int]EventListener),
		order:     make(map[string][]int),
	}
}

// AddEventListener registers fn for events of the given type and returns a
// function that removes it. Removing twice is harmless.
func (t *EventTarget) AddEventListener(eventType string, fn EventListener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	if t.listeners[eventType] == nil {
		t.listeners[eventType] = make(map[int]EventListener)
	}
	t.listeners[eventType][id] = fn
	t.order[eventType] = append(t.order[eventType], id)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners[eventType], id)
	}
}

// DispatchEvent invokes the listeners registered for e.Type and reports
// whether the event was not canceled.
func (t *EventTarget) DispatchEvent(e *Event) bool {
	t.mu.Lock()
	ids := t.order[e.Type]
	fns := make([]EventListener, 0, len(ids))
	for _, id := range ids {
		if fn, ok := t.listeners[e.Type][id]; ok {
			fns = append(fns, fn)
		}
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
	return !e.defaultPrevented
}
