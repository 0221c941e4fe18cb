package executor

import (
	"sort"

	"github.com/wbrown/bottomup-datalog/datalog"
)

// FactSource is anything that can be scanned fact by fact in a stable order
type FactSource interface {
	Len() int
	At(i int) datalog.Atom
}

// FactList adapts a plain slice of atoms to FactSource.
// Unlike FactSet it does not deduplicate.
type FactList []datalog.Atom

func (l FactList) Len() int              { return len(l) }
func (l FactList) At(i int) datalog.Atom { return l[i] }

// FactSet is an insertion-ordered set of atoms with structural
// deduplication. A FactSet is never modified after construction: Union
// returns a new set and leaves the receiver untouched, so a set can be
// handed out as a snapshot while the builder moves on.
type FactSet struct {
	facts []datalog.Atom
	index *AtomKeyMap
}

// NewFactSet builds a set from atoms, keeping the first of any duplicates
func NewFactSet(facts ...datalog.Atom) *FactSet {
	s := &FactSet{
		facts: make([]datalog.Atom, 0, len(facts)),
		index: NewAtomKeyMapWithCapacity(len(facts)),
	}
	for _, f := range facts {
		s.add(f)
	}
	return s
}

// add appends a fact if it is not already present; construction only
func (s *FactSet) add(fact datalog.Atom) bool {
	key := NewAtomKey(fact)
	if s.index.Exists(key) {
		return false
	}
	owned := fact.Clone()
	s.index.Put(NewAtomKey(owned), len(s.facts))
	s.facts = append(s.facts, owned)
	return true
}

// Len returns the number of distinct facts
func (s *FactSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.facts)
}

// At returns the i-th fact in discovery order
func (s *FactSet) At(i int) datalog.Atom {
	return s.facts[i]
}

// Facts returns a copy of the facts in discovery order
func (s *FactSet) Facts() []datalog.Atom {
	if s == nil {
		return nil
	}
	out := make([]datalog.Atom, len(s.facts))
	copy(out, s.facts)
	return out
}

// Contains reports whether a structurally equal atom is in the set
func (s *FactSet) Contains(fact datalog.Atom) bool {
	if s == nil {
		return false
	}
	return s.index.Exists(NewAtomKey(fact))
}

// Union returns a set holding the receiver's facts followed by every
// candidate not already present, plus the candidates that were actually
// added. When nothing is new the receiver itself is returned.
func (s *FactSet) Union(candidates []datalog.Atom) (*FactSet, []datalog.Atom) {
	if s == nil {
		s = NewFactSet()
	}

	var added []datalog.Atom
	var next *FactSet
	for _, c := range candidates {
		if next == nil {
			if s.Contains(c) {
				continue
			}
			// First new fact: copy on write
			next = &FactSet{
				facts: make([]datalog.Atom, len(s.facts), len(s.facts)+len(candidates)),
				index: s.index.Clone(),
			}
			copy(next.facts, s.facts)
		}
		if next.add(c) {
			added = append(added, next.facts[len(next.facts)-1])
		}
	}

	if next == nil {
		return s, nil
	}
	return next, added
}

// Relation returns the facts of one relation in discovery order
func (s *FactSet) Relation(name string) []datalog.Atom {
	if s == nil {
		return nil
	}
	var out []datalog.Atom
	for _, f := range s.facts {
		if f.Relation() == name {
			out = append(out, f)
		}
	}
	return out
}

// Relations returns the distinct relation names in order of first appearance
func (s *FactSet) Relations() []string {
	if s == nil {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, f := range s.facts {
		if name := f.Relation(); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Sorted returns the facts in lexical order
func (s *FactSet) Sorted() []datalog.Atom {
	out := s.Facts()
	sort.SliceStable(out, func(i, j int) bool {
		return datalog.CompareAtoms(out[i], out[j]) < 0
	})
	return out
}

// ContainsAll reports whether every fact of other is in the set
func (s *FactSet) ContainsAll(other FactSource) bool {
	for i := 0; i < other.Len(); i++ {
		if !s.Contains(other.At(i)) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same facts, ignoring order
func (s *FactSet) Equal(other *FactSet) bool {
	return s.Len() == other.Len() && s.ContainsAll(other)
}
