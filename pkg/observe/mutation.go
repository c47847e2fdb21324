package observe

import (
	"sync"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// MutationOptions selects which mutations an observer receives. Only
// child-list observation exists in this model; Subtree extends it to all
// descendants of the observed root.
type MutationOptions struct {
	ChildList bool
	Subtree   bool
}

// MutationCallback receives one batch per document mutation.
type MutationCallback func(records []dom.MutationRecord, obs *MutationObserver)

// MutationObserver reports child-list changes under an observed root.
type MutationObserver struct {
	callback MutationCallback

	mu           sync.Mutex
	root         *dom.Element
	opts         MutationOptions
	unsub        func()
	disconnected bool
}

// NewMutationObserver creates a disconnected observer; call Observe to
// attach it to a tree.
func NewMutationObserver(cb MutationCallback) *MutationObserver {
	return &MutationObserver{callback: cb}
}

// Observe attaches the observer to root's document and starts reporting
// child-list mutations at root (and, with Subtree, anywhere below it).
// Re-observing replaces the previous root and options.
func (o *MutationObserver) Observe(root *dom.Element, opts MutationOptions) {
	if root == nil || !opts.ChildList {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsub != nil {
		o.unsub()
	}
	o.root = root
	o.opts = opts
	o.disconnected = false
	o.unsub = root.Document().OnChildListMutation(o.onMutation)
}

// Disconnect stops observation. Batches in flight for a disconnected
// observer are dropped.
func (o *MutationObserver) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnected = true
	if o.unsub != nil {
		o.unsub()
		o.unsub = nil
	}
	o.root = nil
}

func (o *MutationObserver) onMutation(records []dom.MutationRecord) {
	o.mu.Lock()
	if o.disconnected || o.root == nil {
		o.mu.Unlock()
		return
	}
	root, opts := o.root, o.opts
	o.mu.Unlock()

	var matched []dom.MutationRecord
	for _, rec := range records {
		if rec.Target == root || (opts.Subtree && root.Contains(rec.Target)) {
			matched = append(matched, rec)
		}
	}
	if len(matched) > 0 {
		o.callback(matched, o)
	}
}
