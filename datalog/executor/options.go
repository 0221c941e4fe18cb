package executor

import (
	"fmt"
	"strings"
)

// ArityMode controls how atoms of different length are compared
type ArityMode int

const (
	// ArityStrict never matches atoms of different length
	ArityStrict ArityMode = iota
	// ArityPrefix compares only up to the shorter atom's length, so
	// [parent alice] matches [parent alice bob]
	ArityPrefix
)

// String returns the mode name used in flags and config files
func (m ArityMode) String() string {
	switch m {
	case ArityPrefix:
		return "prefix"
	default:
		return "strict"
	}
}

// ParseArityMode converts "strict" or "prefix" to an ArityMode
func ParseArityMode(s string) (ArityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ArityStrict, nil
	case "prefix":
		return ArityPrefix, nil
	default:
		return ArityStrict, fmt.Errorf("unknown arity mode %q (use strict or prefix)", s)
	}
}

// UnsafePolicy decides what happens when a rule produces a fact that still
// contains a variable because a head variable was never bound by the body
type UnsafePolicy int

const (
	// UnsafeReject stops the build with an *UnsafeRuleError
	UnsafeReject UnsafePolicy = iota
	// UnsafeAllow stores the non-ground fact as is
	UnsafeAllow
)

// String returns the policy name used in flags and config files
func (p UnsafePolicy) String() string {
	switch p {
	case UnsafeAllow:
		return "allow"
	default:
		return "reject"
	}
}

// ParseUnsafePolicy converts "reject" or "allow" to an UnsafePolicy
func ParseUnsafePolicy(s string) (UnsafePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return UnsafeReject, nil
	case "allow":
		return UnsafeAllow, nil
	default:
		return UnsafeReject, fmt.Errorf("unknown unsafe-rule policy %q (use reject or allow)", s)
	}
}

// Options configures an Engine
type Options struct {
	// Matching
	ArityMode ArityMode

	// Rule handling
	UnsafePolicy UnsafePolicy

	// MaxPasses bounds the number of fixpoint passes. Zero means no bound.
	MaxPasses int

	// Workers above one evaluates the goals of a rule body concurrently.
	// Passes and rules still run in order and results are unchanged.
	Workers int
}

// DefaultOptions returns strict arity matching, rejection of unsafe rule
// output and no pass limit
func DefaultOptions() Options {
	return Options{
		ArityMode:    ArityStrict,
		UnsafePolicy: UnsafeReject,
	}
}

// CompatOptions selects the permissive list-based behaviour: prefix
// matching across arities and unsafe rule output stored verbatim
func CompatOptions() Options {
	return Options{
		ArityMode:    ArityPrefix,
		UnsafePolicy: UnsafeAllow,
	}
}
