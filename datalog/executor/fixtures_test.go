package executor

import (
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

func seedFacts() []datalog.Atom {
	return []datalog.Atom{
		datalog.NewAtom("parent", "alice", "bob"),
		datalog.NewAtom("parent", "alice", "bill"),
		datalog.NewAtom("parent", "bob", "carol"),
		datalog.NewAtom("parent", "carol", "dennis"),
		datalog.NewAtom("parent", "carol", "david"),
	}
}

func ancestorRules() []query.Rule {
	return []query.Rule{
		query.NewRule(datalog.NewAtom("ancestor", "X", "Y"),
			datalog.NewAtom("parent", "X", "Y")),
		query.NewRule(datalog.NewAtom("ancestor", "X", "Y"),
			datalog.NewAtom("ancestor", "X", "Z"),
			datalog.NewAtom("ancestor", "Z", "Y")),
	}
}

func familyRules() []query.Rule {
	return append(ancestorRules(),
		query.NewRule(datalog.NewAtom("family", "X", "Y"),
			datalog.NewAtom("ancestor", "X", "Y")),
		query.NewRule(datalog.NewAtom("family", "X", "Y"),
			datalog.NewAtom("family", "Y", "X")),
	)
}

// contains reports whether want is among bindings
func containsBinding(bindings []query.Binding, want query.Binding) bool {
	for _, b := range bindings {
		if b.Equal(want) {
			return true
		}
	}
	return false
}
