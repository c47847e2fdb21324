package aos

import (
	"github.com/homeworkclubco/preschool/pkg/dom"
	"github.com/homeworkclubco/preschool/pkg/observe"
)

// MutationWatcher is the capability the coordinator uses to notice
// animation targets entering or leaving the tree. The default
// implementation rides on observe.MutationObserver; tests inject
// alternatives to exercise the unsupported-capability path.
type MutationWatcher interface {
	// Supported reports whether mutation observation is available.
	Supported() bool
	// Watch observes root's subtree for child-list changes and invokes
	// fn once per mutation batch that touches an animation target.
	Watch(root *dom.Element, fn func())
	// Disconnect stops watching. Watch may be called again afterwards.
	Disconnect()
}

// domMutationWatcher is the production MutationWatcher.
type domMutationWatcher struct {
	obs *observe.MutationObserver
}

func newMutationWatcher() *domMutationWatcher {
	return &domMutationWatcher{}
}

func (w *domMutationWatcher) Supported() bool { return true }

func (w *domMutationWatcher) Watch(root *dom.Element, fn func()) {
	w.Disconnect()
	w.obs = observe.NewMutationObserver(func(records []dom.MutationRecord, _ *observe.MutationObserver) {
		if batchTouchesTargets(records) {
			fn()
		}
	})
	w.obs.Observe(root, observe.MutationOptions{ChildList: true, Subtree: true})
}

func (w *domMutationWatcher) Disconnect() {
	if w.obs != nil {
		w.obs.Disconnect()
		w.obs = nil
	}
}

// batchTouchesTargets reports whether any added or removed subtree in the
// batch contains an animation target. The search short-circuits at the
// first match within a record's node set; the caller fires once per
// batch, not once per matching node.
func batchTouchesTargets(records []dom.MutationRecord) bool {
	for _, rec := range records {
		for _, el := range rec.Added {
			if subtreeHasTrigger(el) {
				return true
			}
		}
		for _, el := range rec.Removed {
			if subtreeHasTrigger(el) {
				return true
			}
		}
	}
	return false
}

func subtreeHasTrigger(el *dom.Element) bool {
	if el == nil {
		return false
	}
	if el.HasAttr(TriggerAttr) {
		return true
	}
	for _, child := range el.Children() {
		if subtreeHasTrigger(child) {
			return true
		}
	}
	return false
}
