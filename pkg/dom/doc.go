// Package dom provides a headless, retained-mode document model for the
// Preschool component library.
//
// The tree is built on golang.org/x/net/html nodes, with a [Document]
// wrapper that adds the pieces the animation engine needs and a browser
// would otherwise supply:
//
//   - mutable attributes and an ordered class list on [Element]
//   - layout rectangles ([Rect]) assigned by a host or a test harness
//   - CSS selector queries via cascadia
//   - document-level event dispatch ([Event], [Document.AddEventListener])
//   - child-list mutation and layout-change notification, consumed by
//     package observe
//
// Elements wrap html nodes lazily and uniquely: asking the document for the
// same underlying node always yields the same *Element, so element pointers
// are stable map keys for side tables.
//
// The document is single-threaded in spirit, like the browser event loop it
// stands in for. Wrapper identity, layout rects, and the notification
// registries are mutex-guarded so that timer callbacks may safely touch
// them, but tree structure and attributes have one owning goroutine.
package dom
