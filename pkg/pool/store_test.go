package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePopIsLIFO(t *testing.T) {
	s := newStore[*widget]()
	a, b, c := &widget{id: 1}, &widget{id: 2}, &widget{id: 3}
	s.push("k", a)
	s.push("k", b)
	s.push("k", c)

	for _, want := range []*widget{c, b, a} {
		got, ok := s.pop("k")
		require.True(t, ok)
		assert.Same(t, want, got)
	}
	_, ok := s.pop("k")
	assert.False(t, ok)
}

func TestStoreBucketForCreatesEmptyBucket(t *testing.T) {
	s := newStore[*widget]()
	assert.False(t, s.has("k"))
	assert.Empty(t, s.bucketFor("k"))
	assert.True(t, s.has("k"))
	assert.Equal(t, 0, s.size("k"))
}

func TestStorePopNeverCreatesBucket(t *testing.T) {
	s := newStore[*widget]()
	_, ok := s.pop("ghost")
	assert.False(t, ok)
	assert.False(t, s.has("ghost"))
}

func TestStoreTracksHoldingBucket(t *testing.T) {
	s := newStore[*widget]()
	w := &widget{}
	s.push("a", w)

	key, ok := s.holding(w)
	require.True(t, ok)
	assert.Equal(t, "a", key)
	assert.Equal(t, 1, s.total())

	_, _ = s.pop("a")
	_, ok = s.holding(w)
	assert.False(t, ok)
	assert.Equal(t, 0, s.total())
}

func TestLedgerRecordAndErase(t *testing.T) {
	l := newLedger[*widget]()
	w := &widget{}

	assert.False(t, l.record(w, "a"))
	key, ok := l.lookup(w)
	require.True(t, ok)
	assert.Equal(t, "a", key)
	assert.Equal(t, 1, l.count("a"))

	assert.True(t, l.record(w, "b"), "second record reports the overwrite")
	assert.Equal(t, 0, l.count("a"))
	assert.Equal(t, 1, l.count("b"))
	assert.Equal(t, 1, l.len())

	l.erase(w)
	l.erase(w)
	_, ok = l.lookup(w)
	assert.False(t, ok)
	assert.Equal(t, 0, l.count("b"))
	assert.Equal(t, 0, l.len())
}

func TestRegistryOverwrite(t *testing.T) {
	r := newRegistry[*widget]()
	first, _ := widgetProto("first")
	second, _ := widgetProto("second")

	assert.False(t, r.register("k", first))
	assert.True(t, r.register("k", second))

	got, ok := r.resolve("k")
	require.True(t, ok)
	assert.Equal(t, "second", got.Name())
	assert.Equal(t, 1, r.len())

	_, ok = r.resolve("ghost")
	assert.False(t, ok)
}

func TestKeyInternerReturnsCanonicalCopy(t *testing.T) {
	in := newKeyInterner()
	first := in.intern(string([]byte("enemy")))
	second := in.intern(string([]byte("enemy")))
	assert.Equal(t, first, second)

	got, ok := in.lookup("enemy")
	assert.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = in.lookup("ghost")
	assert.False(t, ok)
}

func TestManifestBindingsAreCopied(t *testing.T) {
	proto, _ := widgetProto("a")
	in := []Binding[*widget]{{Key: "a", Prototype: proto}}
	m := NewManifest(in...)
	in[0].Key = "mutated"

	assert.True(t, m.Built())
	assert.Equal(t, "a", m.Bindings()[0].Key)

	var nilManifest *Manifest[*widget]
	assert.False(t, nilManifest.Built())
	assert.Equal(t, 0, nilManifest.Len())
	assert.Nil(t, nilManifest.Bindings())
}
