package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wbrown/bottomup-datalog/datalog"
)

// ErrEmptyBody is returned for rules without goals
var ErrEmptyBody = errors.New("rule body must contain at least one goal")

// Rule derives facts shaped like Head whenever every goal in Body is
// satisfied by the current database.
type Rule struct {
	Head datalog.Atom
	Body []datalog.Atom
}

// NewRule builds a rule from a head and its goals
func NewRule(head datalog.Atom, body ...datalog.Atom) Rule {
	return Rule{Head: head, Body: body}
}

// Validate checks the structural requirements every rule must meet
func (r Rule) Validate() error {
	if len(r.Head) == 0 {
		return fmt.Errorf("rule has an empty head")
	}
	if len(r.Body) == 0 {
		return fmt.Errorf("rule %s: %w", r.Head, ErrEmptyBody)
	}
	for i, goal := range r.Body {
		if len(goal) == 0 {
			return fmt.Errorf("rule %s: goal %d is empty", r.Head, i)
		}
	}
	return nil
}

// UnboundHeadVariables returns head variables that no goal mentions
func (r Rule) UnboundHeadVariables() []string {
	bound := make(map[string]bool)
	for _, goal := range r.Body {
		for _, v := range goal.Variables() {
			bound[v] = true
		}
	}
	var unbound []string
	for _, v := range r.Head.Variables() {
		if !bound[v] {
			unbound = append(unbound, v)
		}
	}
	return unbound
}

// String renders the rule in bracket form: [[head] [goal] ...]
func (r Rule) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(r.Head.String())
	for _, goal := range r.Body {
		b.WriteByte(' ')
		b.WriteString(goal.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Binding maps variable names to the terms they are bound to.
// Keys are unique, so a variable carries at most one value.
type Binding map[string]datalog.Term

// Get returns the value bound to a variable
func (b Binding) Get(variable string) (datalog.Term, bool) {
	t, ok := b[variable]
	return t, ok
}

// Variables returns the bound variable names in sorted order
func (b Binding) Variables() []string {
	vars := make([]string, 0, len(b))
	for v := range b {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Equal checks that both bindings hold the same variables and values
func (b Binding) Equal(other Binding) bool {
	if len(b) != len(other) {
		return false
	}
	for k, v := range b {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (b Binding) Clone() Binding {
	c := make(Binding, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// String renders the binding with sorted keys, e.g. {X: alice, Y: bob}
func (b Binding) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range b.Variables() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v)
		sb.WriteString(": ")
		sb.WriteString(b[v].Name)
	}
	sb.WriteByte('}')
	return sb.String()
}

// NewBinding builds a binding from alternating variable/value names
func NewBinding(pairs ...string) Binding {
	if len(pairs)%2 != 0 {
		panic("NewBinding requires variable/value pairs")
	}
	b := make(Binding, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		b[pairs[i]] = datalog.Const(pairs[i+1])
	}
	return b
}

// Program is everything read from a source file: the extensional facts,
// the rules, and any queries to answer against the result.
type Program struct {
	Facts   []datalog.Atom
	Rules   []Rule
	Queries []datalog.Atom
}

// Merge appends another program's clauses after this one's
func (p *Program) Merge(other *Program) {
	if other == nil {
		return
	}
	p.Facts = append(p.Facts, other.Facts...)
	p.Rules = append(p.Rules, other.Rules...)
	p.Queries = append(p.Queries, other.Queries...)
}

// Relations returns the distinct relation names used by facts and rule
// heads, in order of first appearance
func (p *Program) Relations() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(a datalog.Atom) {
		if name := a.Relation(); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, f := range p.Facts {
		add(f)
	}
	for _, r := range p.Rules {
		add(r.Head)
	}
	return names
}

// String renders the program in bracket syntax, one clause per line
func (p *Program) String() string {
	var b strings.Builder
	for _, f := range p.Facts {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	for _, r := range p.Rules {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	for _, q := range p.Queries {
		b.WriteString("[:query ")
		b.WriteString(q.String())
		b.WriteString("]\n")
	}
	return b.String()
}
