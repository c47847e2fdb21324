package aos

import (
	"sync"

	"go.uber.org/zap"

	"github.com/homeworkclubco/preschool/pkg/dom"
	"github.com/homeworkclubco/preschool/pkg/observe"
)

// ScrollEngine is the polling counterpart of [Coordinator] for hosts that
// drive scrolling themselves (smooth-scroll libraries deliver a scroll
// callback per animation frame instead of exposing observers). It shares
// the resolver, collector, and preparer with the Coordinator and applies
// the identical transition semantics, but evaluates every target's
// geometry on each scroll callback rather than waiting for observer
// batches. Mutation watching and the debounced resize pass work as on the
// Coordinator; both funnel into a re-prepare.
type ScrollEngine struct {
	doc      *dom.Document
	viewport *observe.Viewport
	log      *zap.Logger
	watcher  MutationWatcher
	debounce *debouncer

	mu          sync.Mutex
	opts        Options
	initialized bool
	table       metaTable
	order       []*dom.Element
	geometry    map[*dom.Element]targetGeometry
	resizeObs   *observe.ResizeObserver
	unsubScroll func()
	startUnsub  func()
	watching    bool
}

// targetGeometry is the per-target intersection configuration the polling
// loop evaluates. The Coordinator keeps this on its observers; the
// polling engine has no observers, so it keeps it alongside the metadata.
type targetGeometry struct {
	margin    observe.Margin
	threshold float64
}

// NewScrollEngine creates an uninitialized polling engine.
func NewScrollEngine(doc *dom.Document, viewport *observe.Viewport, opts ...Option) *ScrollEngine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &ScrollEngine{
		doc:      doc,
		viewport: viewport,
		log:      cfg.logger,
		watcher:  cfg.watcher,
		opts:     defaultOptions(),
		table:    make(metaTable),
		geometry: make(map[*dom.Element]targetGeometry),
	}
	e.debounce = newDebouncer(cfg.debounce, e.Step)
	return e
}

// Init merges settings, prepares the current targets, subscribes to
// viewport scroll callbacks, and runs one immediate pass so targets
// already in view animate right away. Start-event deferral and
// mutation-watcher degradation work as on the Coordinator.
func (e *ScrollEngine) Init(settings ...Setting) *ScrollEngine {
	e.mu.Lock()

	for _, s := range settings {
		s(&e.opts)
	}

	if !e.watcher.Supported() && !e.opts.DisableMutationObserver {
		e.opts.DisableMutationObserver = true
		e.log.Warn("mutation observation unsupported; dynamically added targets will not animate")
	}
	if e.opts.DisableMutationObserver {
		if e.watching {
			e.watcher.Disconnect()
			e.watching = false
		}
	} else if !e.watching {
		e.watcher.Watch(e.doc.Root(), func() { e.Refresh() })
		e.watching = true
	}

	var fired []transition
	switch {
	case e.opts.StartEvent == dom.EventDOMContentLoaded && e.doc.ReadyState() != dom.Loading,
		e.opts.StartEvent == dom.EventLoad && e.doc.ReadyState() == dom.Complete:
		fired = e.activateLocked()
	default:
		if e.startUnsub != nil {
			e.startUnsub()
		}
		e.startUnsub = e.doc.AddEventListener(e.opts.StartEvent, func(*dom.Event) {
			e.mu.Lock()
			deferred := e.activateLocked()
			e.mu.Unlock()
			dispatchAll(e.doc, deferred)
		})
	}
	e.mu.Unlock()

	dispatchAll(e.doc, fired)
	return e
}

func (e *ScrollEngine) activateLocked() []transition {
	e.rebuildLocked()
	if e.unsubScroll == nil {
		e.unsubScroll = e.viewport.OnScroll(func(x, y float64) { e.Step() })
	}
	if !e.initialized {
		e.initialized = true
		e.log.Info("scroll engine active")
	}
	return e.stepLocked()
}

// Refresh re-collects and re-prepares the targets, then runs a pass.
// Before Init it is a safe no-op.
func (e *ScrollEngine) Refresh() *ScrollEngine {
	e.mu.Lock()
	var fired []transition
	if e.initialized {
		e.rebuildLocked()
		fired = e.stepLocked()
	}
	e.mu.Unlock()
	dispatchAll(e.doc, fired)
	return e
}

// Step evaluates every prepared target against the current viewport. It
// runs automatically on scroll callbacks and after the debounced resize
// window; hosts may also call it after moving content without scrolling.
func (e *ScrollEngine) Step() {
	e.mu.Lock()
	var fired []transition
	if e.initialized {
		fired = e.stepLocked()
	}
	e.mu.Unlock()
	dispatchAll(e.doc, fired)
}

// Disable tears the engine down, stripping classes and metadata exactly
// like Coordinator.Disable. Idempotent.
func (e *ScrollEngine) Disable() *ScrollEngine {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unsubScroll != nil {
		e.unsubScroll()
		e.unsubScroll = nil
	}
	if e.startUnsub != nil {
		e.startUnsub()
		e.startUnsub = nil
	}
	if e.resizeObs != nil {
		e.resizeObs.Disconnect()
		e.resizeObs = nil
	}
	e.debounce.Stop()
	if e.watching {
		e.watcher.Disconnect()
		e.watching = false
	}
	for _, t := range collect(e.doc) {
		el := t.node
		if meta, ok := e.table[el]; ok {
			el.RemoveClass(meta.animatedClassNames...)
		}
		el.RemoveClass(e.opts.AnimatedClassName)
		if e.opts.InitClassName != "" {
			el.RemoveClass(e.opts.InitClassName)
		}
	}
	e.table = make(metaTable)
	e.geometry = make(map[*dom.Element]targetGeometry)
	e.order = nil

	if e.initialized {
		e.initialized = false
		e.log.Info("scroll engine disabled")
	}
	return e
}

// On subscribes to the engine's document events, as on the Coordinator.
func (e *ScrollEngine) On(event string, fn func(el *dom.Element)) func() {
	return e.doc.AddEventListener(event, func(ev *dom.Event) {
		if el, ok := ev.Detail.(*dom.Element); ok {
			fn(el)
		}
	})
}

// Elements returns the targets prepared by the last rebuild, in
// preparation order.
func (e *ScrollEngine) Elements() []*dom.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*dom.Element, len(e.order))
	copy(out, e.order)
	return out
}

// rebuildLocked re-runs collect → prepare and flattens the groups into
// the polling order with per-target geometry. The resize observer is
// rebuilt alongside so bounds changes keep funnelling into a debounced
// step.
func (e *ScrollEngine) rebuildLocked() {
	if e.resizeObs != nil {
		e.resizeObs.Disconnect()
		e.resizeObs = nil
	}
	e.table = make(metaTable)
	e.geometry = make(map[*dom.Element]targetGeometry)
	e.order = nil

	groups := prepare(collect(e.doc), e.table, e.opts)
	for _, g := range groups {
		margin, err := observe.ParseMargin(g.rootMargin)
		if err != nil {
			e.log.Warn("invalid root margin, using zero margin",
				zap.String("rootMargin", g.rootMargin), zap.Error(err))
			margin = observe.Margin{}
		}
		for _, el := range g.elements {
			e.geometry[el] = targetGeometry{margin: margin, threshold: g.threshold}
			e.order = append(e.order, el)
		}
	}

	e.resizeObs = observe.NewResizeObserver(func([]observe.ResizeEntry, *observe.ResizeObserver) {
		e.debounce.Trigger()
	})
	for _, el := range e.order {
		e.resizeObs.Observe(el)
	}
}

// stepLocked applies the tri-state transition guard to every target and
// returns the pending transitions for the caller to dispatch unlocked.
// Once-latched targets simply never exit; there is no observer to
// unsubscribe them from.
func (e *ScrollEngine) stepLocked() []transition {
	viewport := e.viewport.Bounds()
	var fired []transition
	for _, el := range e.order {
		meta, ok := e.table[el]
		if !ok {
			continue
		}
		geo := e.geometry[el]
		root := geo.margin.Expand(viewport)
		intersecting := intersects(el.Bounds(), root, geo.threshold)
		switch {
		case intersecting && !meta.animated:
			fired = append(fired, enterTarget(el, meta))
		case !intersecting && meta.animated && !meta.once:
			fired = append(fired, exitTarget(el, meta))
		}
	}
	return fired
}

// intersects mirrors the intersection observer's threshold test.
func intersects(bounds, root dom.Rect, threshold float64) bool {
	if !bounds.Touches(root) {
		return false
	}
	if threshold <= 0 || bounds.Area() == 0 {
		return true
	}
	return bounds.Intersect(root).Area()/bounds.Area() >= threshold
}
