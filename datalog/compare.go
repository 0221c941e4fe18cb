package datalog

import "strings"

// CompareTerms compares two terms and returns:
//
//	-1 if left < right
//	 0 if left == right
//	 1 if left > right
//
// Constants sort before variables; terms of the same kind sort by name.
func CompareTerms(left, right Term) int {
	if left.Kind != right.Kind {
		if left.Kind == KindConstant {
			return -1
		}
		return 1
	}
	return strings.Compare(left.Name, right.Name)
}

// CompareAtoms orders atoms term by term; a proper prefix sorts first
func CompareAtoms(left, right Atom) int {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		if c := CompareTerms(left[i], right[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(left) < len(right):
		return -1
	case len(left) > len(right):
		return 1
	}
	return 0
}
