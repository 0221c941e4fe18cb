package executor

import (
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// matchLength returns how many positions of pattern and fact are compared,
// or -1 if the atoms cannot match under mode
func matchLength(pattern, fact datalog.Atom, mode ArityMode) int {
	if len(pattern) == len(fact) {
		return len(pattern)
	}
	if mode == ArityStrict {
		return -1
	}
	if len(pattern) < len(fact) {
		return len(pattern)
	}
	return len(fact)
}

// termsMatch is the positional test: equal terms, or a variable on either side
func termsMatch(a, b datalog.Term) bool {
	return a == b || a.IsVariable() || b.IsVariable()
}

// Unify reports whether pattern matches fact position by position.
// A variable in the pattern that occurs more than once must meet
// matching terms at every occurrence.
func Unify(pattern, fact datalog.Atom, mode ArityMode) bool {
	n := matchLength(pattern, fact, mode)
	if n < 0 {
		return false
	}

	for i := 0; i < n; i++ {
		if !termsMatch(pattern[i], fact[i]) {
			return false
		}
		if !pattern[i].IsVariable() {
			continue
		}
		// Earlier occurrence of the same variable must agree
		for j := 0; j < i; j++ {
			if pattern[j] == pattern[i] {
				if !termsMatch(fact[j], fact[i]) {
					return false
				}
				break
			}
		}
	}
	return true
}

// Bind records, for every variable position of pattern, the term found at
// the same position of fact. Constants in the pattern contribute nothing
// and positions past the shorter atom are ignored. Only meaningful after
// Unify has succeeded.
func Bind(pattern, fact datalog.Atom) query.Binding {
	n := len(pattern)
	if len(fact) < n {
		n = len(fact)
	}

	binding := make(query.Binding)
	for i := 0; i < n; i++ {
		t := pattern[i]
		if !t.IsVariable() {
			continue
		}
		if _, seen := binding[t.Name]; !seen {
			binding[t.Name] = fact[i]
		}
	}
	return binding
}

// Substitute returns a new atom with every bound variable replaced by its
// value. Unbound variables are left as they are.
func Substitute(atom datalog.Atom, binding query.Binding) datalog.Atom {
	out := make(datalog.Atom, len(atom))
	for i, t := range atom {
		if t.IsVariable() {
			if v, ok := binding[t.Name]; ok {
				out[i] = v
				continue
			}
		}
		out[i] = t
	}
	return out
}
