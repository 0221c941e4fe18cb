package executor

import (
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// Evaluate returns one binding per fact that unifies with pattern, in the
// order the facts appear in the source. Bindings only contain variables
// that occur in the pattern; a pattern without variables yields one empty
// binding per matching fact.
//
// The same function resolves user queries and individual rule goals.
func Evaluate(facts FactSource, pattern datalog.Atom, mode ArityMode) []query.Binding {
	var results []query.Binding
	for i := 0; i < facts.Len(); i++ {
		fact := facts.At(i)
		if Unify(pattern, fact, mode) {
			results = append(results, Bind(pattern, fact))
		}
	}
	return results
}
