package aos

import (
	"github.com/andybalholm/cascadia"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

var triggerSelector = cascadia.MustCompile("[" + TriggerAttr + "]")

// target wraps one collected animation node.
type target struct {
	node *dom.Element
}

// collect scans the document for animation targets in document order. The
// result is a fresh slice on every call; collection is never cached and
// never fails — a page without targets yields an empty slice.
func collect(doc *dom.Document) []target {
	els := doc.QueryMatcher(triggerSelector)
	targets := make([]target, 0, len(els))
	for _, el := range els {
		targets = append(targets, target{node: el})
	}
	return targets
}
