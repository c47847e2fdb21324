// Package observe provides the watcher capability layer for the Preschool
// animation engine: intersection, resize, and mutation observers over a
// headless dom.Document, driven by a deterministic [Viewport].
//
// In a browser these roles are played by IntersectionObserver,
// ResizeObserver, and MutationObserver, which deliver batches whenever the
// engine decides to. Here delivery is synchronous and scriptable: scrolling
// or resizing the viewport, changing element bounds, or mutating the tree
// immediately runs the affected callbacks. Tests can also hand-feed
// synthetic entry batches via [IntersectionObserver.Deliver].
//
// All observers are safe to disconnect at any time; a delivery racing a
// disconnect is dropped rather than delivered to a dead callback.
package observe
