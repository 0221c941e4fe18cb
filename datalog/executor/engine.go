package executor

import (
	"context"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/annotations"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// Engine evaluates Datalog programs bottom-up. An Engine only holds
// configuration; every Build starts from scratch and nothing is cached
// between calls.
type Engine struct {
	opts  Options
	trace Context
	pool  *WorkerPool // nil when goals are evaluated sequentially
}

// NewEngine creates an engine without annotations
func NewEngine(opts Options) *Engine {
	e := &Engine{
		opts:  opts,
		trace: &BaseContext{},
	}
	if opts.Workers > 1 {
		e.pool = NewWorkerPool(opts.Workers)
	}
	return e
}

// WithHandler returns a copy of the engine that reports events to handler
func (e *Engine) WithHandler(handler annotations.Handler) *Engine {
	return e.WithContext(NewContext(handler))
}

// WithContext returns a copy of the engine that uses the given context
func (e *Engine) WithContext(ctx Context) *Engine {
	if ctx == nil {
		ctx = &BaseContext{}
	}
	return &Engine{
		opts:  e.opts,
		trace: ctx,
		pool:  e.pool,
	}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Context returns the annotation context
func (e *Engine) Context() Context {
	return e.trace
}

// Query answers a pattern against a materialized database
func (e *Engine) Query(db *Database, q datalog.Atom) []query.Binding {
	return e.Evaluate(db.Facts, q)
}

// Evaluate answers a pattern against any fact source
func (e *Engine) Evaluate(facts FactSource, q datalog.Atom) []query.Binding {
	e.trace.QueryBegin(q)
	bindings := Evaluate(facts, q, e.opts.ArityMode)
	e.trace.QueryComplete(len(bindings))
	return bindings
}

// Answer builds the database from facts and rules, then answers q
func (e *Engine) Answer(ctx context.Context, facts []datalog.Atom, rules []query.Rule, q datalog.Atom) ([]query.Binding, error) {
	db, err := e.Build(ctx, facts, rules)
	if err != nil {
		return nil, err
	}
	return e.Query(db, q), nil
}

// Answer pairs a query with its bindings
type Answer struct {
	Query    datalog.Atom
	Bindings []query.Binding
}

// Result is the outcome of running a whole program
type Result struct {
	Database *Database
	Answers  []Answer
}

// Run builds the program's database once and answers each of its queries
func (e *Engine) Run(ctx context.Context, prog *query.Program) (*Result, error) {
	db, err := e.Build(ctx, prog.Facts, prog.Rules)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Database: db,
		Answers:  make([]Answer, 0, len(prog.Queries)),
	}
	for _, q := range prog.Queries {
		result.Answers = append(result.Answers, Answer{
			Query:    q,
			Bindings: e.Query(db, q),
		})
	}
	return result, nil
}

// AnswerQuery is the single entry point for embedding callers: materialize
// facts and rules with default options, then evaluate q against the result.
func AnswerQuery(facts []datalog.Atom, rules []query.Rule, q datalog.Atom) ([]query.Binding, error) {
	return NewEngine(DefaultOptions()).Answer(context.Background(), facts, rules, q)
}
