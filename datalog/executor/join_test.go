package executor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

func TestMergeBindings(t *testing.T) {
	left := query.NewBinding("X", "alice", "Z", "bob")
	right := query.NewBinding("Z", "bob", "Y", "carol")

	merged, ok := MergeBindings(left, right)
	assert.True(t, ok)
	assert.Equal(t, query.NewBinding("X", "alice", "Y", "carol", "Z", "bob"), merged)
	assert.Len(t, left, 2, "inputs must not change")
	assert.Len(t, right, 2, "inputs must not change")

	_, ok = MergeBindings(left, query.NewBinding("Z", "bill"))
	assert.False(t, ok)

	merged, ok = MergeBindings(query.Binding{}, query.Binding{})
	assert.True(t, ok)
	assert.Empty(t, merged)
}

func TestJoinBindings(t *testing.T) {
	left := []query.Binding{
		query.NewBinding("X", "alice", "Z", "bob"),
		query.NewBinding("X", "bob", "Z", "carol"),
	}
	right := []query.Binding{
		query.NewBinding("Z", "carol", "Y", "dennis"),
		query.NewBinding("Z", "bob", "Y", "carol"),
		query.NewBinding("Z", "carol", "Y", "david"),
	}

	got := JoinBindings(left, right)
	want := []query.Binding{
		query.NewBinding("X", "alice", "Z", "bob", "Y", "carol"),
		query.NewBinding("X", "bob", "Z", "carol", "Y", "dennis"),
		query.NewBinding("X", "bob", "Z", "carol", "Y", "david"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JoinBindings mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, JoinBindings(nil, right))
	assert.Empty(t, JoinBindings(left, nil))
}

func TestJoinBindingsCrossProduct(t *testing.T) {
	left := []query.Binding{query.NewBinding("X", "a"), query.NewBinding("X", "b")}
	right := []query.Binding{query.NewBinding("Y", "c"), query.NewBinding("Y", "d")}
	assert.Len(t, JoinBindings(left, right), 4)
}

func TestJoinAll(t *testing.T) {
	assert.Nil(t, JoinAll(nil))

	single := []query.Binding{query.NewBinding("X", "a")}
	assert.Equal(t, single, JoinAll([][]query.Binding{single}))

	sets := [][]query.Binding{
		{query.NewBinding("X", "a", "Y", "b")},
		{query.NewBinding("Y", "b", "Z", "c")},
		{query.NewBinding("Z", "c", "W", "d"), query.NewBinding("Z", "x", "W", "e")},
	}
	got := JoinAll(sets)
	assert.Equal(t, []query.Binding{query.NewBinding("W", "d", "X", "a", "Y", "b", "Z", "c")}, got)

	sets[1] = nil
	assert.Empty(t, JoinAll(sets))
}

// A binding is in join(B1, B2) iff its restrictions to each goal's
// variables are in B1 and B2
func TestJoinCorrectness(t *testing.T) {
	facts := FactList(seedFacts())
	g1 := datalog.NewAtom("parent", "X", "Z")
	g2 := datalog.NewAtom("parent", "Z", "Y")
	b1 := Evaluate(facts, g1, ArityStrict)
	b2 := Evaluate(facts, g2, ArityStrict)

	joined := JoinBindings(b1, b2)
	for _, b := range joined {
		assert.True(t, containsBinding(b1, restrict(b, g1.Variables())), "%s restricted to g1", b)
		assert.True(t, containsBinding(b2, restrict(b, g2.Variables())), "%s restricted to g2", b)
	}

	// Conversely, every consistent pair appears
	for _, l := range b1 {
		for _, r := range b2 {
			if l["Z"] != r["Z"] {
				continue
			}
			merged, ok := MergeBindings(l, r)
			assert.True(t, ok)
			assert.True(t, containsBinding(joined, merged), "missing %s", merged)
		}
	}
	assert.Len(t, joined, 3)
}

func restrict(b query.Binding, vars []string) query.Binding {
	out := make(query.Binding, len(vars))
	for _, v := range vars {
		if t, ok := b[v]; ok {
			out[v] = t
		}
	}
	return out
}
