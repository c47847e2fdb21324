package aos

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/homeworkclubco/preschool/pkg/dom"
	"github.com/homeworkclubco/preschool/pkg/observe"
)

// coordFixture builds a coordinator over an 800x600 viewport. The resize
// debounce defaults to an hour so background timers stay inert; tests
// that exercise the debounce override it.
func coordFixture(t *testing.T, markup string, opts ...Option) (*dom.Document, *observe.Viewport, *Coordinator) {
	t.Helper()
	doc := parseDoc(t, markup)
	vp := observe.NewViewport(800, 600)
	opts = append([]Option{WithResizeDebounce(time.Hour)}, opts...)
	return doc, vp, New(doc, vp, opts...)
}

func queryOne(t *testing.T, doc *dom.Document, selector string) *dom.Element {
	t.Helper()
	els, err := doc.QuerySelectorAll(selector)
	require.NoError(t, err)
	require.Len(t, els, 1)
	return els[0]
}

type fakeWatcher struct {
	supported   bool
	watchCalls  int
	disconnects int
	fn          func()
}

func (w *fakeWatcher) Supported() bool { return w.supported }
func (w *fakeWatcher) Watch(_ *dom.Element, fn func()) {
	w.watchCalls++
	w.fn = fn
}
func (w *fakeWatcher) Disconnect() { w.disconnects++ }

// A target already inside the viewport animates before Init returns.
func TestCoordinator_InitAnimatesInViewTargets(t *testing.T) {
	doc, _, c := coordFixture(t, `<body>
		<div id="top" data-aos="fade-up"></div>
		<div id="low" data-aos="fade-up"></div>
	</body>`)
	top := queryOne(t, doc, "#top")
	low := queryOne(t, doc, "#low")
	top.SetBounds(dom.NewRect(0, 100, 200, 50))
	low.SetBounds(dom.NewRect(0, 1000, 200, 50))

	var entered []*dom.Element
	c.On(EventIn, func(el *dom.Element) { entered = append(entered, el) })

	c.Init()

	assert.True(t, top.HasClass(DefaultInitClassName))
	assert.True(t, top.HasClass(DefaultAnimatedClassName))
	assert.True(t, low.HasClass(DefaultInitClassName))
	assert.False(t, low.HasClass(DefaultAnimatedClassName))
	assert.Equal(t, []*dom.Element{top}, entered)

	state := c.State()
	assert.True(t, state.Initialized)
	assert.Equal(t, 2, state.ElementCount)
	assert.Equal(t, 1, state.ObserverCount)
}

// One observer per distinct (rootMargin, threshold) pair.
func TestCoordinator_OneObserverPerGroup(t *testing.T) {
	_, _, c := coordFixture(t, `<body>
		<div data-aos="a"></div>
		<div data-aos="b" data-aos-root-margin="10px"></div>
		<div data-aos="c"></div>
	</body>`)
	c.Init()

	state := c.State()
	assert.Equal(t, 2, state.ObserverCount)
	assert.Equal(t, 3, state.ElementCount)
	assert.Len(t, c.Observers(), 2)
}

func TestCoordinator_ScrollTransitions(t *testing.T) {
	doc, vp, c := coordFixture(t, `<body><div id="low" data-aos="fade-up"></div></body>`)
	low := queryOne(t, doc, "#low")
	low.SetBounds(dom.NewRect(0, 1000, 200, 50))

	var ins, outs int
	c.On(EventIn, func(*dom.Element) { ins++ })
	c.On(EventOut, func(*dom.Element) { outs++ })

	c.Init()
	require.False(t, low.HasClass(DefaultAnimatedClassName))

	vp.ScrollTo(0, 600)
	assert.True(t, low.HasClass(DefaultAnimatedClassName))
	assert.Equal(t, 1, ins)

	vp.ScrollTo(0, 0)
	assert.False(t, low.HasClass(DefaultAnimatedClassName))
	assert.Equal(t, 1, outs)

	// And back in again: the mirror default repeats.
	vp.ScrollTo(0, 600)
	assert.Equal(t, 2, ins)
}

// Once-latched targets keep the class after leaving the viewport and stop
// being observed.
func TestCoordinator_OnceLatch(t *testing.T) {
	doc, vp, c := coordFixture(t, `<body><div id="low" data-aos="fade-up" data-aos-once="true"></div></body>`)
	low := queryOne(t, doc, "#low")
	low.SetBounds(dom.NewRect(0, 1000, 200, 50))

	c.Init()
	vp.ScrollTo(0, 600)
	require.True(t, low.HasClass(DefaultAnimatedClassName))

	obs := c.Observers()
	require.Len(t, obs, 1)
	assert.Empty(t, obs[0].Targets(), "latched target must be unobserved")

	vp.ScrollTo(0, 0)
	assert.True(t, low.HasClass(DefaultAnimatedClassName), "latch must survive the exit")
}

// Refresh before Init must not touch the document.
func TestCoordinator_RefreshBeforeInitIsNoOp(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div id="el" data-aos="fade-up"></div></body>`)
	el := queryOne(t, doc, "#el")

	c.Refresh()

	assert.False(t, c.State().Initialized)
	assert.Zero(t, c.State().ObserverCount)
	assert.Empty(t, el.Classes())
}

func TestCoordinator_DisableCleansUp(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div id="top" data-aos="fade-up"></div></body>`)
	top := queryOne(t, doc, "#top")
	top.SetBounds(dom.NewRect(0, 100, 200, 50))

	c.Init()
	require.True(t, top.HasClass(DefaultAnimatedClassName))

	c.Disable()

	assert.Empty(t, top.Classes(), "init and animated classes are stripped")
	state := c.State()
	assert.False(t, state.Initialized)
	assert.Zero(t, state.ElementCount)
	assert.Zero(t, state.ObserverCount)

	// Idempotent.
	assert.NotPanics(t, func() { c.Disable() })

	// Init brings the engine back.
	c.Init()
	assert.True(t, top.HasClass(DefaultAnimatedClassName))
}

// Re-initializing merges settings: only the newly provided keys change.
func TestCoordinator_ReInitMergesSettings(t *testing.T) {
	_, _, c := coordFixture(t, `<body><div data-aos="fade-up"></div></body>`)

	c.Init(WithThreshold(0.5))
	c.Init(WithOnce(true))

	opts := c.State().Options
	assert.Equal(t, 0.5, opts.Threshold)
	assert.True(t, opts.Once)
	assert.Equal(t, DefaultRootMargin, opts.RootMargin)
}

// Appending an element with the trigger attribute re-scans the document.
func TestCoordinator_MutationTriggersRefresh(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div data-aos="fade-up"></div></body>`)
	c.Init()
	require.Equal(t, 1, c.State().ElementCount)

	extra := doc.CreateElement("div")
	extra.SetAttr(TriggerAttr, "zoom-in")
	doc.Body().AppendChild(extra)

	assert.Equal(t, 2, c.State().ElementCount)
	assert.True(t, extra.HasClass(DefaultInitClassName))

	// Plain elements do not trigger a rescan.
	doc.Body().AppendChild(doc.CreateElement("p"))
	assert.Equal(t, 2, c.State().ElementCount)
}

func TestCoordinator_MutationObserverDisabledSetting(t *testing.T) {
	w := &fakeWatcher{supported: true}
	doc, _, c := coordFixture(t, `<body><div data-aos="fade-up"></div></body>`, WithMutationWatcher(w))

	c.Init(WithMutationObserverDisabled(true))
	assert.Zero(t, w.watchCalls)

	extra := doc.CreateElement("div")
	extra.SetAttr(TriggerAttr, "zoom-in")
	doc.Body().AppendChild(extra)
	assert.Equal(t, 1, c.State().ElementCount, "disabled watcher must not rescan")
}

// An unsupported watcher forces the disable flag and logs a warning.
func TestCoordinator_UnsupportedWatcherDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := &fakeWatcher{supported: false}
	_, _, c := coordFixture(t, `<body><div data-aos="fade-up"></div></body>`,
		WithMutationWatcher(w), WithLogger(zap.New(core)))

	c.Init()

	assert.True(t, c.State().Options.DisableMutationObserver)
	assert.Zero(t, w.watchCalls)
	assert.Equal(t, 1, logs.FilterMessageSnippet("mutation observation unsupported").Len())
}

func TestCoordinator_DisableDisconnectsWatcher(t *testing.T) {
	w := &fakeWatcher{supported: true}
	_, _, c := coordFixture(t, `<body><div data-aos="fade-up"></div></body>`, WithMutationWatcher(w))

	c.Init()
	require.Equal(t, 1, w.watchCalls)

	c.Disable()
	assert.Equal(t, 1, w.disconnects)

	// Re-Init resumes watching.
	c.Init()
	assert.Equal(t, 2, w.watchCalls)
}

// A custom start event defers activation until the event fires.
func TestCoordinator_StartEventDeferral(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div id="el" data-aos="fade-up"></div></body>`)
	el := queryOne(t, doc, "#el")

	c.Init(WithStartEvent("app:ready"))
	assert.False(t, c.State().Initialized)
	assert.Empty(t, el.Classes(), "nothing is prepared before the start event")

	doc.DispatchEvent(&dom.Event{Type: "app:ready"})
	assert.True(t, c.State().Initialized)
	assert.True(t, el.HasClass(DefaultInitClassName))
}

// With the load start event, an interactive document waits for Complete.
func TestCoordinator_LoadStartEvent(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div id="el" data-aos="fade-up"></div></body>`)
	require.Equal(t, dom.Interactive, doc.ReadyState())

	c.Init(WithStartEvent(dom.EventLoad))
	assert.False(t, c.State().Initialized)

	doc.SetReadyState(dom.Complete)
	assert.True(t, c.State().Initialized)
}

// Bounds changes funnel through the debouncer into a full rebuild with
// fresh observer instances.
func TestCoordinator_ResizeDebounceRebuilds(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div id="el" data-aos="fade-up"></div></body>`,
		WithResizeDebounce(5*time.Millisecond))
	el := queryOne(t, doc, "#el")
	el.SetBounds(dom.NewRect(0, 1000, 200, 50))

	c.Init()
	before := c.Observers()
	require.Len(t, before, 1)

	// A burst of layout changes coalesces into one trailing rebuild.
	el.SetBounds(dom.NewRect(0, 1000, 200, 60))
	el.SetBounds(dom.NewRect(0, 1000, 200, 70))

	require.Eventually(t, func() bool {
		after := c.Observers()
		return len(after) == 1 && after[0] != before[0]
	}, time.Second, 5*time.Millisecond, "debounced rebuild must replace the observers")
}

// A debounced rebuild on its timer goroutine must not race scroll-driven
// delivery on the host goroutine.
func TestCoordinator_ConcurrentResizeAndScroll(t *testing.T) {
	doc, vp, c := coordFixture(t, `<body><div id="low" data-aos="fade-up"></div></body>`,
		WithResizeDebounce(time.Microsecond))
	low := queryOne(t, doc, "#low")
	low.SetBounds(dom.NewRect(0, 1000, 200, 50))
	c.Init()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			low.SetBounds(dom.NewRect(0, 1000, 200, float64(50+i%7)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			vp.ScrollTo(0, float64((i%2)*600))
		}
	}()
	wg.Wait()

	// Let the last debounce window drain, then drive to a known state.
	time.Sleep(50 * time.Millisecond)
	vp.ScrollTo(0, 600)
	assert.True(t, low.HasClass(DefaultAnimatedClassName))
	state := c.State()
	assert.Equal(t, 1, state.ElementCount)
	assert.Equal(t, 1, state.ObserverCount)
}

func TestCoordinator_OnUnsubscribe(t *testing.T) {
	doc, _, c := coordFixture(t, `<body><div id="top" data-aos="fade-up"></div></body>`)
	queryOne(t, doc, "#top").SetBounds(dom.NewRect(0, 100, 200, 50))

	var fired int
	off := c.On(EventIn, func(*dom.Element) { fired++ })
	off()

	c.Init()
	assert.Zero(t, fired)
}

func TestCoordinator_Elements(t *testing.T) {
	doc, _, c := coordFixture(t, `<body>
		<div data-aos="a"></div>
		<p>plain</p>
		<div data-aos="b"></div>
	</body>`)

	els := c.Elements()
	require.Len(t, els, 2)

	// Elements re-collects; it does not require Init.
	extra := doc.CreateElement("div")
	extra.SetAttr(TriggerAttr, "c")
	doc.Body().AppendChild(extra)
	assert.Len(t, c.Elements(), 3)
}
