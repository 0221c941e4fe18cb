package executor

import (
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// MergeBindings unions two bindings. It fails if a variable present in both
// is bound to different terms; neither input is modified.
func MergeBindings(left, right query.Binding) (query.Binding, bool) {
	merged := make(query.Binding, len(left)+len(right))
	for k, v := range left {
		merged[k] = v
	}
	for k, v := range right {
		if existing, ok := merged[k]; ok && existing != v {
			return nil, false
		}
		merged[k] = v
	}
	return merged, true
}

// JoinBindings combines every binding of left with every binding of right,
// keeping the merges that are consistent. Results are ordered by the outer
// loop over left, then the inner loop over right.
func JoinBindings(left, right []query.Binding) []query.Binding {
	var joined []query.Binding
	for _, l := range left {
		for _, r := range right {
			if merged, ok := MergeBindings(l, r); ok {
				joined = append(joined, merged)
			}
		}
	}
	return joined
}

// JoinAll folds JoinBindings left to right over the per-goal binding sets
// of a rule body. It stops early once the running result is empty.
func JoinAll(sets [][]query.Binding) []query.Binding {
	return joinAll(sets, JoinBindings)
}

func joinAll(sets [][]query.Binding, join func(left, right []query.Binding) []query.Binding) []query.Binding {
	if len(sets) == 0 {
		return nil
	}
	result := sets[0]
	for _, next := range sets[1:] {
		if len(result) == 0 {
			return nil
		}
		result = join(result, next)
	}
	return result
}
