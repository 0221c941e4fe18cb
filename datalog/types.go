package datalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TermKind tags a Term as a constant or a variable
type TermKind uint8

const (
	KindConstant TermKind = iota
	KindVariable
)

// String returns the kind name
func (k TermKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	default:
		return "constant"
	}
}

// Term is a single element of an atom.
// The kind is fixed when the term is constructed so matching code never
// has to look at the name again to decide what it is.
type Term struct {
	Kind TermKind
	Name string
}

// NewTerm classifies a lexical name: a name whose first character is an
// uppercase letter is a variable, everything else (relation names
// included) is a constant.
func NewTerm(name string) Term {
	if IsVariableName(name) {
		return Term{Kind: KindVariable, Name: name}
	}
	return Term{Kind: KindConstant, Name: name}
}

// Const builds a constant term without classifying its name
func Const(name string) Term {
	return Term{Kind: KindConstant, Name: name}
}

// Var builds a variable term without classifying its name
func Var(name string) Term {
	return Term{Kind: KindVariable, Name: name}
}

// IsVariableName reports whether name follows the variable convention
func IsVariableName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// IsVariable returns true for variable terms
func (t Term) IsVariable() bool { return t.Kind == KindVariable }

// IsConstant returns true for constant terms
func (t Term) IsConstant() bool { return t.Kind == KindConstant }

// String returns the term's name
func (t Term) String() string { return t.Name }

// Atom is an ordered sequence of terms. By convention the first term names
// the relation. Facts, rule heads, rule goals and queries are all atoms.
type Atom []Term

// NewAtom builds an atom from lexical names, classifying each one
func NewAtom(names ...string) Atom {
	atom := make(Atom, len(names))
	for i, name := range names {
		atom[i] = NewTerm(name)
	}
	return atom
}

// Relation returns the relation name, or "" for an empty atom
func (a Atom) Relation() string {
	if len(a) == 0 {
		return ""
	}
	return a[0].Name
}

// Arity returns the number of arguments after the relation name
func (a Atom) Arity() int {
	if len(a) == 0 {
		return 0
	}
	return len(a) - 1
}

// Equal checks element-wise structural equality
func (a Atom) Equal(other Atom) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i] != other[i] {
			return false
		}
	}
	return true
}

// IsGround returns true if the atom contains no variables
func (a Atom) IsGround() bool {
	for _, t := range a {
		if t.IsVariable() {
			return false
		}
	}
	return true
}

// Variables returns the distinct variable names in order of first occurrence
func (a Atom) Variables() []string {
	var vars []string
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		if t.IsVariable() && !seen[t.Name] {
			seen[t.Name] = true
			vars = append(vars, t.Name)
		}
	}
	return vars
}

// Names returns the lexical names of the terms
func (a Atom) Names() []string {
	names := make([]string, len(a))
	for i, t := range a {
		names[i] = t.Name
	}
	return names
}

// Clone returns a copy that shares no backing array with a
func (a Atom) Clone() Atom {
	if a == nil {
		return nil
	}
	c := make(Atom, len(a))
	copy(c, a)
	return c
}

// String renders the atom in bracket form, e.g. [parent alice bob]
func (a Atom) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range a {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Name)
	}
	b.WriteByte(']')
	return b.String()
}
