// Package aos implements the Preschool scroll-animation engine ("Animate
// On Scroll"): elements marked with a data-aos attribute get animation
// classes applied when they scroll into view and removed when they scroll
// out, with per-element overrides for margin, threshold, once-latching,
// and scoped event names.
//
// # Lifecycle
//
// A [Coordinator] owns the engine state and moves through three phases:
//
//	uninitialized ──Init──► active ──Disable──► disabled (≈ uninitialized)
//
// Init merges settings over the defaults, starts mutation watching, and
// builds one intersection observer per distinct (rootMargin, threshold)
// pair found on the page. Refresh rebuilds the observers from scratch;
// mutation batches and debounced resize callbacks funnel into it. Disable
// tears everything down, strips the engine's classes, and drops all
// per-element metadata.
//
// # Events
//
// Transitions dispatch "aos:in" and "aos:out" on the document, with the
// affected element as the event detail. Elements carrying data-aos-id="x"
// additionally dispatch "aos:in:x" / "aos:out:x".
//
// # Threading
//
// Tree structure and attributes belong to the host goroutine, as in the
// browser. The engine guards its own state: an internal lock serializes
// settings merges, rebuilds, and intersection delivery, so the debounced
// resize rebuild may safely arrive on its timer goroutine while the host
// scrolls. Transition events dispatch after internal locks are released,
// so listeners may call back into the engine.
//
// An alternative [ScrollEngine] implements the same semantics by polling
// element geometry on every scroll callback instead of using intersection
// observers, for hosts that drive scrolling manually.
package aos
