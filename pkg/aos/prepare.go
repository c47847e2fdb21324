package aos

import (
	"strings"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// targetMeta is the per-element state the engine tracks. It lives in a
// coordinator-owned side table keyed by element identity, never on the
// element itself, so teardown is a single map clear.
type targetMeta struct {
	// once latches the animation after its first trigger.
	once bool
	// id scopes the aos:in/aos:out event names when non-empty.
	id string
	// animatedClassNames is the ordered class list applied on enter:
	// the global animated class first, then any per-element extras.
	animatedClassNames []string
	// animated is true while the classes are applied. Mutated only by
	// the intersection handler (and its scroll-engine counterpart).
	animated bool
}

// metaTable maps elements to their engine state.
type metaTable map[*dom.Element]*targetMeta

// observerGroup is a bucket of elements sharing one observer
// configuration. Each group maps 1:1 to one intersection observer.
type observerGroup struct {
	// key is the literal rootMargin + "|" + threshold string.
	key string
	// rootMargin and threshold come from the first element seen with
	// this key; later members contribute only their node.
	rootMargin string
	threshold  float64
	// elements in collection order.
	elements []*dom.Element
}

// prepare resolves each target's configuration, records its metadata in
// the table, applies the init class, and buckets the targets by
// (rootMargin, threshold). Groups come back in first-seen order.
func prepare(targets []target, table metaTable, opts Options) []*observerGroup {
	groups := make(map[string]*observerGroup)
	var order []*observerGroup

	for _, t := range targets {
		el := t.node
		margin := asString(resolveOption(el, keyRootMargin, opts.RootMargin))
		threshold := asFloat(resolveOption(el, keyThreshold, opts.Threshold), opts.Threshold)
		once := asBool(resolveOption(el, keyOnce, opts.Once))
		id := asString(resolveOption(el, keyID, ""))

		if opts.InitClassName != "" {
			el.AddClass(opts.InitClassName)
		}

		table[el] = &targetMeta{
			once:               once,
			id:                 id,
			animatedClassNames: animationClasses(el, opts),
			animated:           false,
		}

		key := margin + "|" + asString(threshold)
		group, ok := groups[key]
		if !ok {
			group = &observerGroup{key: key, rootMargin: margin, threshold: threshold}
			groups[key] = group
			order = append(order, group)
		}
		group.elements = append(group.elements, el)
	}
	return order
}

// animationClasses builds the ordered class list for one element: the
// global animated class, then, when UseClassNames is on, each whitespace
// token of the trigger attribute value. Empty tokens are filtered out so
// a blank data-aos value never produces an empty class name.
func animationClasses(el *dom.Element, opts Options) []string {
	classes := []string{opts.AnimatedClassName}
	if opts.UseClassNames {
		value, _ := el.Attr(TriggerAttr)
		classes = append(classes, strings.Fields(value)...)
	}
	kept := classes[:0]
	for _, c := range classes {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return kept
}
