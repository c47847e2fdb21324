package aos

// Events dispatched on the document. Detail is always the affected
// *dom.Element; events are bubbling and cancelable.
const (
	// EventIn fires when an element's animation classes are applied.
	EventIn = "aos:in"
	// EventOut fires when an element's animation classes are removed.
	EventOut = "aos:out"
)

// ScopedEventIn returns the per-element enter event name for elements
// declaring data-aos-id.
func ScopedEventIn(id string) string { return EventIn + ":" + id }

// ScopedEventOut returns the per-element exit event name.
func ScopedEventOut(id string) string { return EventOut + ":" + id }
