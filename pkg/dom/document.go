package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ReadyState mirrors the document lifecycle.
//
// The state only moves forward:
//
//	Loading ──► Interactive ──► Complete
//
// Leaving Loading dispatches DOMContentLoaded; reaching Complete
// dispatches load.
type ReadyState int

const (
	// Loading means the document is still being constructed.
	Loading ReadyState = iota
	// Interactive means the tree is parsed but subresources may be pending.
	Interactive
	// Complete means the document has fully loaded.
	Complete
)

func (s ReadyState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Interactive:
		return "interactive"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("ReadyState(%d)", int(s))
	}
}

// MutationRecord describes one child-list change: elements added to or
// removed from Target.
type MutationRecord struct {
	Target  *Element
	Added   []*Element
	Removed []*Element
}

// Document owns an element tree, its event target, and the notification
// registries that back the observe package.
type Document struct {
	*EventTarget

	root  *html.Node
	ready ReadyState

	// mu guards the wrapper map, element bounds, and the notification
	// registries; tree structure and attributes stay host-owned.
	mu         sync.Mutex
	wrappers   map[*html.Node]*Element
	mutationFn map[int]func([]MutationRecord)
	layoutFn   map[int]func(*Element)
	nextID     int
}

// NewDocument creates an empty document (html/head/body skeleton) in the
// Interactive state.
func NewDocument() *Document {
	d, err := ParseString("<!DOCTYPE html><html><head></head><body></body></html>")
	if err != nil {
		// The skeleton is a constant and always parses.
		panic(err)
	}
	return d
}

// Parse reads an HTML document. The document starts in the Interactive
// state: parsed, not yet fully loaded.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{
		EventTarget: NewEventTarget(),
		root:        root,
		ready:       Interactive,
		wrappers:    make(map[*html.Node]*Element),
		mutationFn:  make(map[int]func([]MutationRecord)),
		layoutFn:    make(map[int]func(*Element)),
	}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ReadyState returns the current lifecycle state.
func (d *Document) ReadyState() ReadyState { return d.ready }

// SetReadyState advances the lifecycle state and dispatches the matching
// lifecycle events. Moving backwards is ignored.
func (d *Document) SetReadyState(s ReadyState) {
	if s <= d.ready {
		return
	}
	prev := d.ready
	d.ready = s
	if prev == Loading {
		d.DispatchEvent(&Event{Type: EventDOMContentLoaded})
	}
	if s == Complete {
		d.DispatchEvent(&Event{Type: EventLoad})
	}
}

// Root returns the document element (<html>).
func (d *Document) Root() *Element {
	for n := d.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return d.wrap(n)
		}
	}
	return nil
}

// Body returns the <body> element, or nil if the document has none.
func (d *Document) Body() *Element {
	els := d.QueryMatcher(bodySelector)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

var bodySelector = cascadia.MustCompile("body")

// CreateElement creates a detached element owned by this document.
func (d *Document) CreateElement(tag string) *Element {
	n := &html.Node{Type: html.ElementNode, Data: strings.ToLower(tag)}
	return d.wrap(n)
}

// QuerySelectorAll compiles the CSS selector and returns all matching
// elements in document order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}
	return d.QueryMatcher(sel), nil
}

// QueryMatcher returns all elements matched by a precompiled cascadia
// matcher, in document order. It never fails.
func (d *Document) QueryMatcher(m cascadia.Matcher) []*Element {
	nodes := cascadia.QueryAll(d.root, m)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// HTML serializes the document tree.
func (d *Document) HTML() (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, d.root); err != nil {
		return "", fmt.Errorf("dom: render document: %w", err)
	}
	return sb.String(), nil
}

// OnChildListMutation registers a callback for child-list mutations
// anywhere in the tree and returns an unsubscribe function. Each DOM
// mutation call delivers one batch.
func (d *Document) OnChildListMutation(fn func([]MutationRecord)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.mutationFn[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.mutationFn, id)
	}
}

// OnLayoutChange registers a callback invoked whenever an element's bounds
// change and returns an unsubscribe function.
func (d *Document) OnLayoutChange(fn func(*Element)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.layoutFn[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.layoutFn, id)
	}
}

// wrap returns the unique Element for a node, creating it on first use.
// The wrapper map is mutex-guarded: queries may run on a timer goroutine
// while the host walks the tree.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.wrappers[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.wrappers[n] = el
	return el
}

func (d *Document) notifyMutation(rec MutationRecord) {
	d.mu.Lock()
	fns := make([]func([]MutationRecord), 0, len(d.mutationFn))
	for _, fn := range d.mutationFn {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	batch := []MutationRecord{rec}
	for _, fn := range fns {
		fn(batch)
	}
}

func (d *Document) notifyLayout(el *Element) {
	d.mu.Lock()
	fns := make([]func(*Element), 0, len(d.layoutFn))
	for _, fn := range d.layoutFn {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(el)
	}
}
