package executor

import (
	"context"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// ApplyRule applies a single rule to facts with the given options and no
// annotations. See Engine.ApplyRule.
func ApplyRule(facts *FactSet, rule query.Rule, opts Options) (*FactSet, []datalog.Atom, error) {
	return NewEngine(opts).ApplyRule(context.Background(), facts, rule)
}

// ApplyRule derives every fact the rule supports against facts and returns
// the union of facts and the derived facts, together with the facts that
// were not present before. The input set is left unchanged.
func (e *Engine) ApplyRule(ctx context.Context, facts *FactSet, rule query.Rule) (*FactSet, []datalog.Atom, error) {
	return e.trace.ApplyRule(rule, func() (*FactSet, []datalog.Atom, error) {
		bindings, err := e.ruleBindings(ctx, facts, rule)
		if err != nil {
			return facts, nil, err
		}
		if len(bindings) == 0 {
			return facts, nil, nil
		}

		candidates := make([]datalog.Atom, 0, len(bindings))
		for _, b := range bindings {
			fact := Substitute(rule.Head, b)
			if e.opts.UnsafePolicy == UnsafeReject && !fact.IsGround() {
				return facts, nil, &UnsafeRuleError{
					Rule:      rule,
					Fact:      fact,
					Variables: fact.Variables(),
				}
			}
			candidates = append(candidates, fact)
		}

		next, added := facts.Union(candidates)
		return next, added, nil
	})
}

// ruleBindings evaluates each goal against facts and joins the results
// into the bindings that satisfy the whole body
func (e *Engine) ruleBindings(ctx context.Context, facts *FactSet, rule query.Rule) ([]query.Binding, error) {
	evaluate := func(goal datalog.Atom) []query.Binding {
		return e.trace.EvaluateGoal(goal, func() []query.Binding {
			return Evaluate(facts, goal, e.opts.ArityMode)
		})
	}

	var sets [][]query.Binding
	if e.pool != nil && len(rule.Body) > 1 {
		// Goals only read the fact set, which is immutable
		var err error
		sets, err = ExecuteParallel(ctx, e.pool, rule.Body, func(goal datalog.Atom) ([]query.Binding, error) {
			return evaluate(goal), nil
		})
		if err != nil {
			return nil, err
		}
		for _, set := range sets {
			if len(set) == 0 {
				return nil, nil
			}
		}
	} else {
		sets = make([][]query.Binding, len(rule.Body))
		for i, goal := range rule.Body {
			sets[i] = evaluate(goal)
			// No derivation possible this time round
			if len(sets[i]) == 0 {
				return nil, nil
			}
		}
	}

	return joinAll(sets, func(left, right []query.Binding) []query.Binding {
		return e.trace.JoinBindings(left, right, func() []query.Binding {
			return JoinBindings(left, right)
		})
	}), nil
}
