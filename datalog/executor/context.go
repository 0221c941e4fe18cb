package executor

import (
	"errors"
	"time"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/annotations"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// Context provides annotation points for database construction and query
// answering.
type Context interface {
	// Build lifecycle
	BuildBegin(factCount, ruleCount int)
	BuildComplete(passes, factCount int, err error)

	// Fixpoint passes and rule application
	ExecutePass(pass int, before int, fn func() (*FactSet, error)) (*FactSet, error)
	ApplyRule(rule query.Rule, fn func() (*FactSet, []datalog.Atom, error)) (*FactSet, []datalog.Atom, error)
	EvaluateGoal(goal datalog.Atom, fn func() []query.Binding) []query.Binding
	JoinBindings(left, right []query.Binding, fn func() []query.Binding) []query.Binding

	// Query lifecycle
	QueryBegin(q datalog.Atom)
	QueryComplete(bindingCount int)

	// Get underlying collector
	Collector() *annotations.Collector
}

// BaseContext provides a no-op implementation with zero overhead.
type BaseContext struct{}

// NewContext creates an appropriate context based on whether annotations are needed.
func NewContext(handler annotations.Handler) Context {
	if handler == nil {
		return &BaseContext{}
	}
	return &AnnotatedContext{
		collector: annotations.NewCollector(handler),
	}
}

// BaseContext implementations - all are simple pass-throughs

func (c *BaseContext) BuildBegin(factCount, ruleCount int) {}

func (c *BaseContext) BuildComplete(passes, factCount int, err error) {}

func (c *BaseContext) ExecutePass(pass int, before int, fn func() (*FactSet, error)) (*FactSet, error) {
	return fn()
}

func (c *BaseContext) ApplyRule(rule query.Rule, fn func() (*FactSet, []datalog.Atom, error)) (*FactSet, []datalog.Atom, error) {
	return fn()
}

func (c *BaseContext) EvaluateGoal(goal datalog.Atom, fn func() []query.Binding) []query.Binding {
	return fn()
}

func (c *BaseContext) JoinBindings(left, right []query.Binding, fn func() []query.Binding) []query.Binding {
	return fn()
}

func (c *BaseContext) QueryBegin(q datalog.Atom) {}

func (c *BaseContext) QueryComplete(bindingCount int) {}

func (c *BaseContext) Collector() *annotations.Collector {
	return nil
}

// AnnotatedContext provides full annotation tracking
type AnnotatedContext struct {
	BaseContext
	collector  *annotations.Collector
	buildStart time.Time
	queryStart time.Time
}

func (c *AnnotatedContext) BuildBegin(factCount, ruleCount int) {
	c.buildStart = time.Now()
	c.collector.Add(annotations.Event{
		Name:  annotations.BuildInvoked,
		Start: c.buildStart,
		Data: map[string]interface{}{
			"fact.count": factCount,
			"rule.count": ruleCount,
		},
	})
}

func (c *AnnotatedContext) BuildComplete(passes, factCount int, err error) {
	data := map[string]interface{}{
		"pass.count": passes,
		"fact.count": factCount,
		"success":    err == nil,
	}

	if err != nil {
		data["error"] = err.Error()

		var unsafeErr *UnsafeRuleError
		switch {
		case errors.As(err, &unsafeErr):
			c.collector.Add(annotations.Event{
				Name:  annotations.ErrorUnsafeRule,
				Start: time.Now(),
				Data: map[string]interface{}{
					"rule":      unsafeErr.Rule.String(),
					"fact":      unsafeErr.Fact.String(),
					"variables": unsafeErr.Variables,
				},
			})
		case errors.Is(err, ErrPassLimit):
			c.collector.Add(annotations.Event{
				Name:  annotations.ErrorPassLimit,
				Start: time.Now(),
				Data: map[string]interface{}{
					"pass.count": passes,
				},
			})
		}
	}

	c.collector.AddTiming(annotations.BuildComplete, c.buildStart, data)
}

func (c *AnnotatedContext) ExecutePass(pass int, before int, fn func() (*FactSet, error)) (*FactSet, error) {
	start := time.Now()

	c.collector.Add(annotations.Event{
		Name:  annotations.PassBegin,
		Start: start,
		Data: map[string]interface{}{
			"pass":       pass,
			"fact.count": before,
		},
	})

	result, err := fn()

	completeData := map[string]interface{}{
		"pass":        pass,
		"fact.before": before,
		"fact.after":  before,
		"success":     err == nil,
	}
	if result != nil {
		completeData["fact.after"] = result.Len()
	}
	if err != nil {
		completeData["error"] = err.Error()
	}

	c.collector.AddTiming(annotations.PassComplete, start, completeData)
	return result, err
}

func (c *AnnotatedContext) ApplyRule(rule query.Rule, fn func() (*FactSet, []datalog.Atom, error)) (*FactSet, []datalog.Atom, error) {
	start := time.Now()
	result, added, err := fn()

	data := map[string]interface{}{
		"rule":       rule.String(),
		"head":       rule.Head.Relation(),
		"goal.count": len(rule.Body),
		"fact.added": len(added),
		"fact.count": result.Len(),
		"success":    err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
	}

	c.collector.AddTiming(annotations.RuleApplied, start, data)
	return result, added, err
}

func (c *AnnotatedContext) EvaluateGoal(goal datalog.Atom, fn func() []query.Binding) []query.Binding {
	start := time.Now()
	bindings := fn()

	c.collector.AddTiming(annotations.GoalEvaluated, start, map[string]interface{}{
		"goal":          goal.String(),
		"symbol.order":  goal.Variables(),
		"binding.count": len(bindings),
	})
	return bindings
}

func (c *AnnotatedContext) JoinBindings(left, right []query.Binding, fn func() []query.Binding) []query.Binding {
	start := time.Now()
	result := fn()

	data := map[string]interface{}{
		"left.size":   len(left),
		"right.size":  len(right),
		"result.size": len(result),
	}
	if len(left) > 0 {
		data["left.attrs"] = left[0].Variables()
	}
	if len(right) > 0 {
		data["right.attrs"] = right[0].Variables()
	}
	if len(result) > 0 {
		data["result.attrs"] = result[0].Variables()
	}

	c.collector.AddTiming(annotations.JoinBindings, start, data)
	return result
}

func (c *AnnotatedContext) QueryBegin(q datalog.Atom) {
	c.queryStart = time.Now()
	c.collector.Add(annotations.Event{
		Name:  annotations.QueryInvoked,
		Start: c.queryStart,
		Data: map[string]interface{}{
			"query": q.String(),
		},
	})
}

func (c *AnnotatedContext) QueryComplete(bindingCount int) {
	c.collector.AddTiming(annotations.QueryComplete, c.queryStart, map[string]interface{}{
		"binding.count": bindingCount,
	})
}

func (c *AnnotatedContext) Collector() *annotations.Collector {
	return c.collector
}
