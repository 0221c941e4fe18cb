package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/bottomup-datalog/datalog"
)

func TestRuleValidate(t *testing.T) {
	ok := NewRule(datalog.NewAtom("ancestor", "X", "Y"), datalog.NewAtom("parent", "X", "Y"))
	require.NoError(t, ok.Validate())

	empty := NewRule(datalog.NewAtom("ancestor", "X", "Y"))
	err := empty.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyBody))

	noHead := Rule{Body: []datalog.Atom{datalog.NewAtom("parent", "X", "Y")}}
	assert.Error(t, noHead.Validate())
}

func TestRuleUnboundHeadVariables(t *testing.T) {
	safe := NewRule(datalog.NewAtom("ancestor", "X", "Y"),
		datalog.NewAtom("ancestor", "X", "Z"),
		datalog.NewAtom("ancestor", "Z", "Y"))
	assert.Empty(t, safe.UnboundHeadVariables())

	unsafe := NewRule(datalog.NewAtom("knows", "X", "W"), datalog.NewAtom("parent", "X", "Y"))
	assert.Equal(t, []string{"W"}, unsafe.UnboundHeadVariables())
}

func TestRuleString(t *testing.T) {
	r := NewRule(datalog.NewAtom("ancestor", "X", "Y"), datalog.NewAtom("parent", "X", "Y"))
	assert.Equal(t, "[[ancestor X Y] [parent X Y]]", r.String())
}

func TestBinding(t *testing.T) {
	b := NewBinding("Y", "bob", "X", "alice")

	v, ok := b.Get("X")
	require.True(t, ok)
	assert.Equal(t, datalog.Const("alice"), v)

	_, ok = b.Get("Z")
	assert.False(t, ok)

	assert.Equal(t, []string{"X", "Y"}, b.Variables())
	assert.Equal(t, "{X: alice, Y: bob}", b.String())
	assert.Equal(t, "{}", Binding{}.String())

	assert.True(t, b.Equal(NewBinding("X", "alice", "Y", "bob")))
	assert.False(t, b.Equal(NewBinding("X", "alice")))
	assert.False(t, b.Equal(NewBinding("X", "alice", "Y", "bill")))

	c := b.Clone()
	c["X"] = datalog.Const("carol")
	assert.Equal(t, "alice", b["X"].Name)
}

func TestProgramMergeAndRelations(t *testing.T) {
	p := &Program{
		Facts: []datalog.Atom{datalog.NewAtom("parent", "alice", "bob")},
	}
	p.Merge(&Program{
		Rules:   []Rule{NewRule(datalog.NewAtom("ancestor", "X", "Y"), datalog.NewAtom("parent", "X", "Y"))},
		Queries: []datalog.Atom{datalog.NewAtom("ancestor", "alice", "Y")},
	})
	p.Merge(nil)

	assert.Len(t, p.Facts, 1)
	assert.Len(t, p.Rules, 1)
	assert.Len(t, p.Queries, 1)
	assert.Equal(t, []string{"parent", "ancestor"}, p.Relations())
	assert.Equal(t,
		"[parent alice bob]\n[[ancestor X Y] [parent X Y]]\n[:query [ancestor alice Y]]\n",
		p.String())
}
