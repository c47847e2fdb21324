package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Element is a live view over an element node in a [Document]. Elements are
// created by the document and are unique per underlying node, so *Element
// values are stable identity keys.
type Element struct {
	doc    *Document
	node   *html.Node
	bounds Rect
}

// Document returns the owning document.
func (el *Element) Document() *Document { return el.doc }

// Tag returns the lower-case tag name.
func (el *Element) Tag() string { return el.node.Data }

// Attr returns the value of the named attribute and whether it is present.
func (el *Element) Attr(name string) (string, bool) {
	for _, a := range el.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (el *Element) HasAttr(name string) bool {
	_, ok := el.Attr(name)
	return ok
}

// SetAttr sets or replaces the named attribute.
func (el *Element) SetAttr(name, value string) {
	for i, a := range el.node.Attr {
		if a.Key == name {
			el.node.Attr[i].Val = value
			return
		}
	}
	el.node.Attr = append(el.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the named attribute if present.
func (el *Element) RemoveAttr(name string) {
	for i, a := range el.node.Attr {
		if a.Key == name {
			el.node.Attr = append(el.node.Attr[:i], el.node.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the value of the id attribute, or "".
func (el *Element) ID() string {
	v, _ := el.Attr("id")
	return v
}

// Classes returns the class list in attribute order.
func (el *Element) Classes() []string {
	v, _ := el.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains name.
func (el *Element) HasClass(name string) bool {
	for _, c := range el.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends the given classes, preserving order and skipping
// duplicates and empty strings.
func (el *Element) AddClass(names ...string) {
	classes := el.Classes()
	for _, name := range names {
		if name == "" || slices.Contains(classes, name) {
			continue
		}
		classes = append(classes, name)
	}
	el.SetAttr("class", strings.Join(classes, " "))
}

// RemoveClass removes the given classes if present.
func (el *Element) RemoveClass(names ...string) {
	classes := el.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if !slices.Contains(names, c) {
			kept = append(kept, c)
		}
	}
	el.SetAttr("class", strings.Join(kept, " "))
}

// Bounds returns the element's layout rectangle in page coordinates.
// Elements start with a zero rect until a host assigns one. Bounds are
// mutex-guarded: intersection checks may read them from a timer goroutine
// while the host relays out.
func (el *Element) Bounds() Rect {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	return el.bounds
}

// SetBounds assigns the element's layout rectangle and notifies layout
// watchers when the size or position changed.
func (el *Element) SetBounds(r Rect) {
	el.doc.mu.Lock()
	if el.bounds == r {
		el.doc.mu.Unlock()
		return
	}
	el.bounds = r
	el.doc.mu.Unlock()
	el.doc.notifyLayout(el)
}

// Parent returns the parent element, or nil at the tree root.
func (el *Element) Parent() *Element {
	for n := el.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			return el.doc.wrap(n)
		}
	}
	return nil
}

// Children returns the element children in document order.
func (el *Element) Children() []*Element {
	var out []*Element
	for n := el.node.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			out = append(out, el.doc.wrap(n))
		}
	}
	return out
}

// Contains reports whether other is el or a descendant of el.
func (el *Element) Contains(other *Element) bool {
	if other == nil || other.doc != el.doc {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == el.node {
			return true
		}
	}
	return false
}

// AppendChild attaches child as the last child of el and reports the
// mutation to child-list watchers. The child must belong to the same
// document and must be detached.
func (el *Element) AppendChild(child *Element) {
	if child == nil || child.doc != el.doc || child.node.Parent != nil {
		return
	}
	el.node.AppendChild(child.node)
	el.doc.notifyMutation(MutationRecord{Target: el, Added: []*Element{child}})
}

// Remove detaches el from its parent and reports the mutation to child-list
// watchers. Detached elements keep their wrapper identity and can be
// re-appended.
func (el *Element) Remove() {
	parent := el.Parent()
	if el.node.Parent == nil {
		return
	}
	el.node.Parent.RemoveChild(el.node)
	if parent != nil {
		el.doc.notifyMutation(MutationRecord{Target: parent, Removed: []*Element{el}})
	}
}

// SetText replaces the element's children with a single text node.
func (el *Element) SetText(text string) {
	for el.node.FirstChild != nil {
		el.node.RemoveChild(el.node.FirstChild)
	}
	el.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Text returns the concatenated text content of the element's subtree.
func (el *Element) Text() string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(el.node)
	return sb.String()
}
