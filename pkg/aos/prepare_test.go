package aos

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

func parseDoc(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return doc
}

// groupShape is the comparable projection of a prepared group.
type groupShape struct {
	Key        string
	RootMargin string
	Threshold  float64
	Animations []string
}

func shapes(groups []*observerGroup) []groupShape {
	out := make([]groupShape, 0, len(groups))
	for _, g := range groups {
		s := groupShape{Key: g.key, RootMargin: g.rootMargin, Threshold: g.threshold}
		for _, el := range g.elements {
			name, _ := el.Attr(TriggerAttr)
			s.Animations = append(s.Animations, name)
		}
		out = append(out, s)
	}
	return out
}

// Elements land in the same group exactly when their resolved
// (rootMargin, threshold) pair is string-identical; the group count is the
// number of distinct pairs.
func TestPrepare_Grouping(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div data-aos="a"></div>
		<div data-aos="b" data-aos-root-margin="10px"></div>
		<div data-aos="c" data-aos-threshold="0.5"></div>
		<div data-aos="d" data-aos-root-margin="10px"></div>
		<div data-aos="e"></div>
	</body>`)

	table := make(metaTable)
	groups := prepare(collect(doc), table, defaultOptions())

	want := []groupShape{
		{Key: DefaultRootMargin + "|0", RootMargin: DefaultRootMargin, Threshold: 0, Animations: []string{"a", "e"}},
		{Key: "10px|0", RootMargin: "10px", Threshold: 0, Animations: []string{"b", "d"}},
		{Key: DefaultRootMargin + "|0.5", RootMargin: DefaultRootMargin, Threshold: 0.5, Animations: []string{"c"}},
	}
	if diff := cmp.Diff(want, shapes(groups)); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}
}

// The first element seen with a key fixes the group's configuration.
func TestPrepare_FirstElementWinsGroupConfig(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div data-aos="a" data-aos-root-margin="10px" data-aos-threshold="0.5"></div>
		<div data-aos="b" data-aos-root-margin="10px" data-aos-threshold="0.5"></div>
	</body>`)

	groups := prepare(collect(doc), make(metaTable), defaultOptions())
	require.Len(t, groups, 1)
	assert.Equal(t, "10px", groups[0].rootMargin)
	assert.Equal(t, 0.5, groups[0].threshold)
	assert.Len(t, groups[0].elements, 2)
}

// A non-numeric threshold override degrades to the engine default before
// grouping, so malformed markup merges into the default group instead of
// minting a string-keyed one.
func TestPrepare_NonNumericThresholdFallsBack(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div data-aos="a" data-aos-threshold="sticky"></div>
		<div data-aos="b"></div>
	</body>`)

	groups := prepare(collect(doc), make(metaTable), defaultOptions())
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultThreshold, groups[0].threshold)
	assert.Len(t, groups[0].elements, 2)
}

// Preparing twice with the same options yields identical metadata.
func TestPrepare_Idempotent(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div data-aos="fade-up" data-aos-once="true" data-aos-id="hero"></div>
		<div data-aos="zoom-in slow"></div>
	</body>`)
	opts := defaultOptions()
	opts.UseClassNames = true

	first := make(metaTable)
	prepare(collect(doc), first, opts)
	second := make(metaTable)
	prepare(collect(doc), second, opts)

	require.Equal(t, len(first), len(second))
	for el, a := range first {
		b, ok := second[el]
		require.True(t, ok)
		assert.Equal(t, a.animatedClassNames, b.animatedClassNames)
		assert.Equal(t, a.once, b.once)
		assert.Equal(t, a.id, b.id)
	}
}

func TestPrepare_Metadata(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div data-aos="fade-up" data-aos-once="true" data-aos-id="hero"></div>
	</body>`)

	table := make(metaTable)
	prepare(collect(doc), table, defaultOptions())

	el := doc.Body().Children()[0]
	meta, ok := table[el]
	require.True(t, ok)
	assert.True(t, meta.once)
	assert.Equal(t, "hero", meta.id)
	assert.False(t, meta.animated)
	assert.Equal(t, []string{DefaultAnimatedClassName}, meta.animatedClassNames)
}

func TestPrepare_UseClassNames(t *testing.T) {
	doc := parseDoc(t, `<body><div data-aos="fade-up slow"></div></body>`)
	opts := defaultOptions()
	opts.UseClassNames = true

	table := make(metaTable)
	prepare(collect(doc), table, opts)

	meta := table[doc.Body().Children()[0]]
	assert.Equal(t, []string{"aos-animate", "fade-up", "slow"}, meta.animatedClassNames)
}

// With UseClassNames on and an empty trigger value, the class list is
// exactly the animated class: no empty-string classes sneak in.
func TestPrepare_EmptyTriggerValueFiltered(t *testing.T) {
	doc := parseDoc(t, `<body><div data-aos=""></div></body>`)
	opts := defaultOptions()
	opts.UseClassNames = true

	table := make(metaTable)
	prepare(collect(doc), table, opts)

	meta := table[doc.Body().Children()[0]]
	assert.Equal(t, []string{DefaultAnimatedClassName}, meta.animatedClassNames)
}

func TestPrepare_InitClassApplied(t *testing.T) {
	doc := parseDoc(t, `<body><div data-aos="fade-up"></div></body>`)
	el := doc.Body().Children()[0]

	prepare(collect(doc), make(metaTable), defaultOptions())
	assert.True(t, el.HasClass(DefaultInitClassName),
		"init class is a synchronous, visible-on-scan side effect")

	// An empty init class name disables the marker entirely.
	doc2 := parseDoc(t, `<body><div data-aos="fade-up"></div></body>`)
	opts := defaultOptions()
	opts.InitClassName = ""
	prepare(collect(doc2), make(metaTable), opts)
	assert.Empty(t, doc2.Body().Children()[0].Classes())
}

func TestCollect_FreshAndOrdered(t *testing.T) {
	doc := parseDoc(t, `<body>
		<div data-aos="one"></div>
		<p>plain</p>
		<span data-aos="two"></span>
	</body>`)

	first := collect(doc)
	require.Len(t, first, 2)
	name0, _ := first[0].node.Attr(TriggerAttr)
	name1, _ := first[1].node.Attr(TriggerAttr)
	assert.Equal(t, []string{"one", "two"}, []string{name0, name1})

	// Adding a target and re-collecting sees it: no caching.
	extra := doc.CreateElement("div")
	extra.SetAttr(TriggerAttr, "three")
	doc.Body().AppendChild(extra)
	assert.Len(t, collect(doc), 3)

	// No targets, no error.
	empty := parseDoc(t, `<body><p>nothing here</p></body>`)
	assert.Empty(t, collect(empty))
}
