package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// Database is a materialized fact set: the extensional facts plus every
// fact the rules derive from them.
type Database struct {
	Facts  *FactSet
	Passes int // fixpoint passes run, including the final one that added nothing
	Base   int // distinct extensional facts
}

// Derived returns how many facts the rules added
func (db *Database) Derived() int {
	return db.Facts.Len() - db.Base
}

// DerivedFacts returns the facts the rules added, in discovery order.
// Extensional facts always precede them in the set.
func (db *Database) DerivedFacts() []datalog.Atom {
	return db.Facts.Facts()[db.Base:]
}

// Build materializes facts and rules with default options. See Engine.Build.
func Build(facts []datalog.Atom, rules []query.Rule) (*Database, error) {
	return NewEngine(DefaultOptions()).Build(context.Background(), facts, rules)
}

// Build applies every rule, in order, to a growing fact set until a full
// pass adds nothing. Within a pass each rule sees the facts produced by
// the rules before it. The loop replaces its fact set on every pass and
// never mutates a set it has already produced.
func (e *Engine) Build(ctx context.Context, facts []datalog.Atom, rules []query.Rule) (*Database, error) {
	e.trace.BuildBegin(len(facts), len(rules))

	db, err := e.build(ctx, facts, rules)

	e.trace.BuildComplete(db.Passes, db.Facts.Len(), err)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// build always returns a non-nil Database describing how far it got
func (e *Engine) build(ctx context.Context, facts []datalog.Atom, rules []query.Rule) (*Database, error) {
	db := &Database{}

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return db, err
		}
	}
	if e.opts.UnsafePolicy == UnsafeReject {
		for _, f := range facts {
			if !f.IsGround() {
				return db, fmt.Errorf("%w: %s (variables %s)", ErrNonGroundFact, f, strings.Join(f.Variables(), ", "))
			}
		}
	}

	current := NewFactSet(facts...)
	db.Facts = current
	db.Base = current.Len()

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return db, err
		}
		if e.opts.MaxPasses > 0 && pass > e.opts.MaxPasses {
			return db, fmt.Errorf("%w (%d passes)", ErrPassLimit, e.opts.MaxPasses)
		}

		before := current.Len()
		next, err := e.trace.ExecutePass(pass, before, func() (*FactSet, error) {
			return e.runPass(ctx, current, rules)
		})
		if err != nil {
			return db, fmt.Errorf("pass %d: %w", pass, err)
		}

		current = next
		db.Facts = current
		db.Passes = pass

		if current.Len() == before {
			return db, nil
		}
	}
}

// runPass threads the fact set through every rule once
func (e *Engine) runPass(ctx context.Context, facts *FactSet, rules []query.Rule) (*FactSet, error) {
	current := facts
	for _, rule := range rules {
		next, _, err := e.ApplyRule(ctx, current, rule)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
