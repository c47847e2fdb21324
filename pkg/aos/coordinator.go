package aos

import (
	"sync"

	"go.uber.org/zap"

	"github.com/homeworkclubco/preschool/pkg/dom"
	"github.com/homeworkclubco/preschool/pkg/observe"
)

// Coordinator orchestrates the engine lifecycle over one document and one
// viewport. Construct independent coordinators for independent documents;
// there is no package-level state.
type Coordinator struct {
	doc      *dom.Document
	viewport *observe.Viewport
	log      *zap.Logger
	watcher  MutationWatcher
	debounce *debouncer

	mu           sync.Mutex
	opts         Options
	initialized  bool
	observers    []*observe.IntersectionObserver
	resizeObs    *observe.ResizeObserver
	table        metaTable
	elementCount int
	watching     bool
	startUnsub   func()
}

// State is a snapshot of the coordinator for inspection and tests.
type State struct {
	Initialized   bool
	ElementCount  int
	ObserverCount int
	Options       Options
}

// New creates an uninitialized coordinator with default options. Nothing
// observes anything until Init.
func New(doc *dom.Document, viewport *observe.Viewport, opts ...Option) *Coordinator {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Coordinator{
		doc:      doc,
		viewport: viewport,
		log:      cfg.logger,
		watcher:  cfg.watcher,
		opts:     defaultOptions(),
		table:    make(metaTable),
	}
	c.debounce = newDebouncer(cfg.debounce, c.rebuildAfterResize)
	return c
}

// Init merges the given settings over the current options and starts the
// engine. When the configured start event has already passed (the document
// is past loading), observers are built before Init returns; otherwise
// construction is deferred to the event. Re-calling Init merges further
// settings and rebuilds.
func (c *Coordinator) Init(settings ...Setting) *Coordinator {
	c.mu.Lock()

	for _, s := range settings {
		s(&c.opts)
	}

	if !c.watcher.Supported() && !c.opts.DisableMutationObserver {
		c.opts.DisableMutationObserver = true
		c.log.Warn("mutation observation unsupported; dynamically added targets will not animate")
	}
	if c.opts.DisableMutationObserver {
		if c.watching {
			c.watcher.Disconnect()
			c.watching = false
		}
	} else if !c.watching {
		c.watcher.Watch(c.doc.Root(), func() { c.refresh(false) })
		c.watching = true
	}

	var built []*observe.IntersectionObserver
	if c.startEventPassed() {
		built = c.refreshLocked(true)
	} else {
		if c.startUnsub != nil {
			c.startUnsub()
		}
		c.startUnsub = c.doc.AddEventListener(c.opts.StartEvent, func(*dom.Event) {
			c.refresh(true)
		})
	}
	c.mu.Unlock()

	checkAll(built)
	return c
}

// checkAll runs the synchronous intersection pass over freshly built
// observers. It must run with the coordinator lock released: delivery
// re-enters handleIntersection, which takes the lock itself.
func checkAll(observers []*observe.IntersectionObserver) {
	for _, o := range observers {
		o.Check()
	}
}

// startEventPassed reports whether the configured start event already
// fired, in which case observers build immediately.
func (c *Coordinator) startEventPassed() bool {
	switch c.opts.StartEvent {
	case dom.EventDOMContentLoaded:
		return c.doc.ReadyState() != dom.Loading
	case dom.EventLoad:
		return c.doc.ReadyState() == dom.Complete
	default:
		return false
	}
}

// Refresh rebuilds all observer groups from the current DOM. Before Init
// has activated the engine it is a safe no-op.
func (c *Coordinator) Refresh() *Coordinator {
	c.refresh(false)
	return c
}

func (c *Coordinator) refresh(makeActive bool) {
	c.mu.Lock()
	built := c.refreshLocked(makeActive)
	c.mu.Unlock()
	checkAll(built)
}

// refreshLocked rebuilds when active and returns the new observers so the
// caller can run the initial check after releasing the lock.
func (c *Coordinator) refreshLocked(makeActive bool) []*observe.IntersectionObserver {
	if makeActive && !c.initialized {
		c.initialized = true
		c.log.Info("animation engine active")
	}
	if !c.initialized {
		return nil
	}
	c.buildObserversLocked()
	return append([]*observe.IntersectionObserver(nil), c.observers...)
}

// rebuildAfterResize is the debounced resize callback, arriving on a timer
// goroutine. The coordinator lock serializes the rebuild against host
// calls and intersection delivery; the post-build check runs unlocked like
// every other delivery.
func (c *Coordinator) rebuildAfterResize() {
	c.mu.Lock()
	var built []*observe.IntersectionObserver
	if c.initialized {
		built = c.refreshLocked(false)
	}
	c.mu.Unlock()
	checkAll(built)
}

// buildObserversLocked tears down every live observer, then re-runs
// collect → prepare and creates one intersection observer per group. Old
// observers are fully disconnected before new ones observe anything, so
// no element is ever watched by two observers at once. Callers run the
// initial intersection check via checkAll once the lock is released, so
// targets already in view still animate before Init or Refresh returns.
func (c *Coordinator) buildObserversLocked() {
	for _, o := range c.observers {
		o.Disconnect()
	}
	c.observers = nil
	if c.resizeObs != nil {
		c.resizeObs.Disconnect()
		c.resizeObs = nil
	}

	c.table = make(metaTable)
	targets := collect(c.doc)
	groups := prepare(targets, c.table, c.opts)

	flat := make([]*dom.Element, 0, len(targets))
	for _, g := range groups {
		if _, err := observe.ParseMargin(g.rootMargin); err != nil {
			c.log.Warn("invalid root margin, using zero margin",
				zap.String("rootMargin", g.rootMargin), zap.Error(err))
		}
		obs := c.viewport.NewIntersectionObserver(c.handleIntersection, observe.IntersectionOptions{
			RootMargin: g.rootMargin,
			Threshold:  g.threshold,
		})
		for _, el := range g.elements {
			obs.Observe(el)
			flat = append(flat, el)
		}
		c.observers = append(c.observers, obs)
	}
	c.elementCount = len(flat)

	c.resizeObs = observe.NewResizeObserver(func([]observe.ResizeEntry, *observe.ResizeObserver) {
		c.debounce.Trigger()
	})
	for _, el := range flat {
		c.resizeObs.Observe(el)
	}

	c.log.Debug("observers built",
		zap.Int("groups", len(groups)), zap.Int("elements", len(flat)))
}

// Disable tears the engine down: every observer is disconnected, every
// target loses the init and animated classes, and all per-element
// metadata is dropped. Idempotent; Init brings the engine back.
func (c *Coordinator) Disable() *Coordinator {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.observers {
		o.Disconnect()
	}
	c.observers = nil
	if c.resizeObs != nil {
		c.resizeObs.Disconnect()
		c.resizeObs = nil
	}
	c.debounce.Stop()
	if c.watching {
		c.watcher.Disconnect()
		c.watching = false
	}
	if c.startUnsub != nil {
		c.startUnsub()
		c.startUnsub = nil
	}

	for _, t := range collect(c.doc) {
		el := t.node
		if meta, ok := c.table[el]; ok {
			el.RemoveClass(meta.animatedClassNames...)
		}
		el.RemoveClass(c.opts.AnimatedClassName)
		if c.opts.InitClassName != "" {
			el.RemoveClass(c.opts.InitClassName)
		}
	}
	c.table = make(metaTable)
	c.elementCount = 0

	if c.initialized {
		c.initialized = false
		c.log.Info("animation engine disabled")
	}
	return c
}

// On subscribes to one of the engine's document events (EventIn, EventOut,
// or a scoped variant) and returns an unsubscribe function. It is sugar
// over document listeners: events always dispatch on the document whether
// or not anyone subscribed here.
func (c *Coordinator) On(event string, fn func(el *dom.Element)) func() {
	return c.doc.AddEventListener(event, func(e *dom.Event) {
		if el, ok := e.Detail.(*dom.Element); ok {
			fn(el)
		}
	})
}

// State returns a snapshot of the coordinator.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Initialized:   c.initialized,
		ElementCount:  c.elementCount,
		ObserverCount: len(c.observers),
		Options:       c.opts,
	}
}

// Elements returns the animation targets currently in the document.
func (c *Coordinator) Elements() []*dom.Element {
	targets := collect(c.doc)
	els := make([]*dom.Element, 0, len(targets))
	for _, t := range targets {
		els = append(els, t.node)
	}
	return els
}

// Observers returns the live intersection observers, one per group.
func (c *Coordinator) Observers() []*observe.IntersectionObserver {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*observe.IntersectionObserver, len(c.observers))
	copy(out, c.observers)
	return out
}
