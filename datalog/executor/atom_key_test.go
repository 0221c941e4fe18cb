package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/bottomup-datalog/datalog"
)

func TestAtomKey(t *testing.T) {
	a := NewAtomKey(datalog.NewAtom("parent", "alice", "bob"))
	b := NewAtomKey(datalog.NewAtom("parent", "alice", "bob"))
	c := NewAtomKey(datalog.NewAtom("parent", "bob", "alice"))

	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	// Same name, different kind
	v := NewAtomKey(datalog.Atom{datalog.Const("parent"), datalog.Var("alice"), datalog.Const("bob")})
	assert.False(t, a.Equal(v))

	// Trailing empty term changes the key
	short := NewAtomKey(datalog.Atom{datalog.Const("a")})
	long := NewAtomKey(datalog.Atom{datalog.Const("a"), datalog.Const("")})
	assert.False(t, short.Equal(long))
}

func TestAtomKeyMap(t *testing.T) {
	m := NewAtomKeyMap()
	k1 := NewAtomKey(datalog.NewAtom("parent", "alice", "bob"))
	k2 := NewAtomKey(datalog.NewAtom("parent", "bob", "carol"))

	m.Put(k1, 0)
	m.Put(k2, 1)
	m.Put(NewAtomKey(datalog.NewAtom("parent", "alice", "bob")), 7)

	assert.Equal(t, 2, m.Len())
	v, ok := m.Get(k1)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.False(t, m.Exists(NewAtomKey(datalog.NewAtom("parent", "carol", "dennis"))))
}

func TestAtomKeyMapCloneIsIndependent(t *testing.T) {
	m := NewAtomKeyMapWithCapacity(4)
	k1 := NewAtomKey(datalog.NewAtom("p", "a"))
	m.Put(k1, 0)

	c := m.Clone()
	k2 := NewAtomKey(datalog.NewAtom("p", "b"))
	c.Put(k2, 1)
	c.Put(k1, 5)

	assert.Equal(t, 1, m.Len())
	assert.False(t, m.Exists(k2))
	v, _ := m.Get(k1)
	assert.Equal(t, 0, v)
	assert.Equal(t, 2, c.Len())
}

func TestAtomKeyMapCollisions(t *testing.T) {
	// Force entries into one bucket to exercise structural comparison
	m := NewAtomKeyMap()
	k1 := AtomKey{hash: 42, atom: datalog.NewAtom("p", "a")}
	k2 := AtomKey{hash: 42, atom: datalog.NewAtom("p", "b")}
	m.Put(k1, 1)
	m.Put(k2, 2)

	assert.Equal(t, 2, m.Len())
	v1, _ := m.Get(k1)
	v2, _ := m.Get(k2)
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)

	// Equal atoms under different hashes are different keys
	k3 := AtomKey{hash: 7, atom: datalog.NewAtom("p", "a")}
	assert.False(t, m.Exists(k3))
	assert.False(t, k1.Equal(k3))
}
