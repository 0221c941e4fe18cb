package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

func TestBuildAncestors(t *testing.T) {
	db, err := Build(seedFacts(), ancestorRules())
	require.NoError(t, err)

	assert.Equal(t, 5, db.Base)
	assert.Len(t, db.Facts.Relation("ancestor"), 10)
	assert.Equal(t, 10, db.Derived())
	assert.Len(t, db.DerivedFacts(), 10)
	for _, f := range db.DerivedFacts() {
		assert.Equal(t, "ancestor", f.Relation())
	}
	assert.Equal(t, 3, db.Passes)

	for _, want := range [][]string{
		{"ancestor", "alice", "carol"},
		{"ancestor", "alice", "dennis"},
		{"ancestor", "alice", "david"},
		{"ancestor", "bob", "david"},
	} {
		assert.True(t, db.Facts.Contains(datalog.NewAtom(want...)), "missing %v", want)
	}
	assert.False(t, db.Facts.Contains(datalog.NewAtom("ancestor", "bill", "carol")))
}

// Scenario 5: termination within rules x longest chain passes
func TestBuildPassBound(t *testing.T) {
	rules := familyRules()
	db, err := Build(seedFacts(), rules)
	require.NoError(t, err)

	const longestChain = 3 // alice -> bob -> carol -> dennis
	assert.LessOrEqual(t, db.Passes, len(rules)*longestChain)
}

func TestBuildMonotonic(t *testing.T) {
	seed := seedFacts()
	db, err := Build(seed, familyRules())
	require.NoError(t, err)
	assert.True(t, db.Facts.ContainsAll(FactList(seed)))
}

func TestBuildIdempotent(t *testing.T) {
	first, err := Build(seedFacts(), familyRules())
	require.NoError(t, err)

	second, err := Build(first.Facts.Facts(), familyRules())
	require.NoError(t, err)

	assert.True(t, first.Facts.Equal(second.Facts))
	assert.Equal(t, 1, second.Passes)
	assert.Equal(t, 0, second.Derived())
}

func TestBuildNoRules(t *testing.T) {
	db, err := Build(seedFacts(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, db.Facts.Len())
	assert.Equal(t, 1, db.Passes)
}

func TestBuildDeduplicatesInput(t *testing.T) {
	facts := append(seedFacts(), seedFacts()...)
	db, err := Build(facts, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, db.Base)
}

func TestBuildPassLimit(t *testing.T) {
	e := NewEngine(Options{MaxPasses: 1})
	_, err := e.Build(context.Background(), seedFacts(), ancestorRules())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPassLimit))

	e = NewEngine(Options{MaxPasses: 3})
	db, err := e.Build(context.Background(), seedFacts(), ancestorRules())
	require.NoError(t, err)
	assert.Equal(t, 3, db.Passes)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(DefaultOptions()).Build(ctx, seedFacts(), ancestorRules())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildInvalidRule(t *testing.T) {
	rules := []query.Rule{query.NewRule(datalog.NewAtom("ancestor", "X", "Y"))}
	_, err := Build(seedFacts(), rules)
	require.Error(t, err)
	assert.True(t, errors.Is(err, query.ErrEmptyBody))
}

func TestBuildUnsafePolicies(t *testing.T) {
	rules := []query.Rule{
		query.NewRule(datalog.NewAtom("knows", "X", "W"), datalog.NewAtom("parent", "X", "Y")),
	}

	_, err := Build(seedFacts(), rules)
	var unsafeErr *UnsafeRuleError
	require.True(t, errors.As(err, &unsafeErr))

	e := NewEngine(Options{UnsafePolicy: UnsafeAllow})
	db, err := e.Build(context.Background(), seedFacts(), rules)
	require.NoError(t, err)
	assert.True(t, db.Facts.Contains(datalog.NewAtom("knows", "bob", "W")))
}

func TestBuildNonGroundFacts(t *testing.T) {
	facts := append(seedFacts(), datalog.NewAtom("parent", "X", "bob"))

	_, err := Build(facts, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonGroundFact)
	assert.Contains(t, err.Error(), "[parent X bob]")

	db, err := NewEngine(CompatOptions()).Build(context.Background(), facts, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, db.Facts.Len())
}

func TestBuildPrefixMode(t *testing.T) {
	// A two-place goal also reaches the three-place fact in prefix mode
	facts := []datalog.Atom{
		datalog.NewAtom("parent", "alice", "bob"),
		datalog.NewAtom("parent", "bob", "carol", "adopted"),
	}
	rules := []query.Rule{
		query.NewRule(datalog.NewAtom("child", "Y", "X"), datalog.NewAtom("parent", "X", "Y")),
	}

	strict, err := Build(facts, rules)
	require.NoError(t, err)
	assert.Len(t, strict.Facts.Relation("child"), 1)

	prefix, err := NewEngine(Options{ArityMode: ArityPrefix}).Build(context.Background(), facts, rules)
	require.NoError(t, err)
	assert.Len(t, prefix.Facts.Relation("child"), 2)
	assert.True(t, prefix.Facts.Contains(datalog.NewAtom("child", "carol", "bob")))
}
