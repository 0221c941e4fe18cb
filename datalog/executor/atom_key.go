package executor

import (
	"github.com/wbrown/bottomup-datalog/datalog"
)

// AtomKey is a hashable key for an atom.
// It hashes the term kinds and names directly instead of serializing the
// atom to a string.
type AtomKey struct {
	hash uint64
	atom datalog.Atom
}

// NewAtomKey creates a key for an atom. The atom is referenced, not copied;
// callers must not mutate it afterwards.
func NewAtomKey(atom datalog.Atom) AtomKey {
	return AtomKey{
		hash: hashAtom(atom),
		atom: atom,
	}
}

// Hash returns the precomputed hash
func (k AtomKey) Hash() uint64 {
	return k.hash
}

// Equal checks if two keys refer to structurally equal atoms
func (k AtomKey) Equal(other AtomKey) bool {
	if k.hash != other.hash {
		return false
	}
	return k.atom.Equal(other.atom)
}

const (
	fnvOffset = uint64(14695981039346656037)
	fnvPrime  = uint64(1099511628211)
)

// hashAtom computes an FNV-1a hash over every term of the atom
func hashAtom(atom datalog.Atom) uint64 {
	hash := fnvOffset
	for _, t := range atom {
		hash ^= hashTerm(t)
		hash *= fnvPrime
	}
	// Length is mixed in so [a] and [a ""] differ
	hash ^= uint64(len(atom))
	hash *= fnvPrime
	return hash
}

// hashTerm hashes the kind and the name of a term
func hashTerm(t datalog.Term) uint64 {
	hash := fnvOffset
	hash ^= uint64(t.Kind)
	hash *= fnvPrime
	for i := 0; i < len(t.Name); i++ {
		hash ^= uint64(t.Name[i])
		hash *= fnvPrime
	}
	return hash
}

// AtomKeyMap maps atoms to values using the atom hash directly as the Go
// map key and resolving collisions by structural comparison.
type AtomKeyMap struct {
	m    map[uint64][]keyEntry
	size int
}

type keyEntry struct {
	key   AtomKey
	value int
}

// NewAtomKeyMap creates a new AtomKeyMap
func NewAtomKeyMap() *AtomKeyMap {
	return &AtomKeyMap{
		m: make(map[uint64][]keyEntry),
	}
}

// NewAtomKeyMapWithCapacity creates an AtomKeyMap pre-sized to hold expectedSize entries
func NewAtomKeyMapWithCapacity(expectedSize int) *AtomKeyMap {
	return &AtomKeyMap{
		m: make(map[uint64][]keyEntry, expectedSize),
	}
}

// Put adds or updates a key-value pair
func (m *AtomKeyMap) Put(key AtomKey, value int) {
	entries := m.m[key.Hash()]
	for i := range entries {
		if entries[i].key.Equal(key) {
			entries[i].value = value
			return
		}
	}
	m.m[key.Hash()] = append(entries, keyEntry{key: key, value: value})
	m.size++
}

// Get retrieves a value by key
func (m *AtomKeyMap) Get(key AtomKey) (int, bool) {
	for _, entry := range m.m[key.Hash()] {
		if entry.key.Equal(key) {
			return entry.value, true
		}
	}
	return 0, false
}

// Exists checks if a key exists
func (m *AtomKeyMap) Exists(key AtomKey) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of distinct keys
func (m *AtomKeyMap) Len() int {
	return m.size
}

// Clone copies the map. Bucket slices are copied so that appending to a
// bucket of the clone never writes into the original's backing array.
func (m *AtomKeyMap) Clone() *AtomKeyMap {
	c := &AtomKeyMap{
		m:    make(map[uint64][]keyEntry, len(m.m)),
		size: m.size,
	}
	for h, entries := range m.m {
		c.m[h] = append([]keyEntry(nil), entries...)
	}
	return c
}
