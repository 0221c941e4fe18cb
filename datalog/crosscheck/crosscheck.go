// Package crosscheck evaluates programs with Google's Mangle engine and
// compares the result with a database built by this module, as an
// independent oracle in tests and in the check command.
package crosscheck

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/executor"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

var (
	relationName = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)
	variableName = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)
)

// Source renders prog as Mangle source: one Decl per relation, then the
// facts with every constant as a string, then the rules. Queries are not
// rendered.
func Source(prog *query.Program) (string, error) {
	arities, err := relationArities(prog)
	if err != nil {
		return "", err
	}
	for _, r := range prog.Rules {
		if unbound := r.UnboundHeadVariables(); len(unbound) > 0 {
			return "", fmt.Errorf("rule %s is unsafe: %s not bound by the body", r, strings.Join(unbound, ", "))
		}
	}

	var sb strings.Builder
	names := make([]string, 0, len(arities))
	for name := range arities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args := make([]string, arities[name])
		for i := range args {
			args[i] = fmt.Sprintf("A%d", i)
		}
		fmt.Fprintf(&sb, "Decl %s(%s).\n", name, strings.Join(args, ", "))
	}

	for _, f := range prog.Facts {
		s, err := renderAtom(f)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
		sb.WriteString(".\n")
	}

	for _, r := range prog.Rules {
		head, err := renderAtom(r.Head)
		if err != nil {
			return "", err
		}
		goals := make([]string, len(r.Body))
		for i, g := range r.Body {
			if goals[i], err = renderAtom(g); err != nil {
				return "", err
			}
		}
		fmt.Fprintf(&sb, "%s :- %s.\n", head, strings.Join(goals, ", "))
	}

	return sb.String(), nil
}

// relationArities checks that every relation is a plain name used with
// one arity throughout the program
func relationArities(prog *query.Program) (map[string]int, error) {
	arities := make(map[string]int)
	check := func(a datalog.Atom) error {
		if len(a) < 2 {
			return fmt.Errorf("atom %s: relations without arguments are not supported", a)
		}
		if a[0].IsVariable() || !relationName.MatchString(a[0].Name) {
			return fmt.Errorf("atom %s: relation %q is not a plain name", a, a[0].Name)
		}
		name, arity := a.Relation(), a.Arity()
		if prev, ok := arities[name]; ok && prev != arity {
			return fmt.Errorf("relation %s used with arity %d and %d", name, prev, arity)
		}
		arities[name] = arity
		return nil
	}

	for _, f := range prog.Facts {
		if err := check(f); err != nil {
			return nil, err
		}
	}
	for _, r := range prog.Rules {
		if err := check(r.Head); err != nil {
			return nil, err
		}
		for _, g := range r.Body {
			if err := check(g); err != nil {
				return nil, err
			}
		}
	}
	return arities, nil
}

func renderAtom(a datalog.Atom) (string, error) {
	args := make([]string, len(a)-1)
	for i, t := range a[1:] {
		if t.IsVariable() {
			if !variableName.MatchString(t.Name) {
				return "", fmt.Errorf("atom %s: variable %q is not a valid Mangle variable", a, t.Name)
			}
			args[i] = t.Name
			continue
		}
		args[i] = strconv.Quote(t.Name)
	}
	return fmt.Sprintf("%s(%s)", a.Relation(), strings.Join(args, ", ")), nil
}

// Evaluate runs prog's facts and rules to fixpoint in Mangle and returns
// every fact of the result, sorted
func Evaluate(prog *query.Program) ([]datalog.Atom, error) {
	src, err := Source(prog)
	if err != nil {
		return nil, err
	}

	unit, err := parse.Unit(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("mangle parse error: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("mangle analysis error: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("mangle evaluation error: %w", err)
	}

	arities, err := relationArities(prog)
	if err != nil {
		return nil, err
	}

	var facts []datalog.Atom
	for name, arity := range arities {
		sym := ast.PredicateSym{Symbol: name, Arity: arity}
		err := store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
			fact := make(datalog.Atom, 0, len(atom.Args)+1)
			fact = append(fact, datalog.Const(name))
			for _, arg := range atom.Args {
				c, ok := arg.(ast.Constant)
				if !ok {
					return fmt.Errorf("non-constant %v in %s", arg, name)
				}
				fact = append(fact, datalog.Const(c.Symbol))
			}
			facts = append(facts, fact)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(facts, func(i, j int) bool {
		return datalog.CompareAtoms(facts[i], facts[j]) < 0
	})
	return facts, nil
}

// Report lists the differences between a database and the oracle
type Report struct {
	Missing []datalog.Atom // derived by the oracle only
	Extra   []datalog.Atom // present in the database only
	Checked int            // facts produced by the oracle
}

// OK reports whether both sides agree
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

func (r *Report) String() string {
	if r.OK() {
		return fmt.Sprintf("ok: %d facts agree", r.Checked)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d missing, %d extra\n", len(r.Missing), len(r.Extra))
	for _, f := range r.Missing {
		fmt.Fprintf(&sb, "  - %s\n", f)
	}
	for _, f := range r.Extra {
		fmt.Fprintf(&sb, "  + %s\n", f)
	}
	return sb.String()
}

// Compare evaluates prog with the oracle and diffs the result against db
func Compare(db *executor.Database, prog *query.Program) (*Report, error) {
	expected, err := Evaluate(prog)
	if err != nil {
		return nil, err
	}

	want := executor.NewFactSet(expected...)
	report := &Report{Checked: want.Len()}
	for _, f := range expected {
		if !db.Facts.Contains(f) {
			report.Missing = append(report.Missing, f)
		}
	}
	for _, f := range db.Facts.Sorted() {
		if !want.Contains(f) {
			report.Extra = append(report.Extra, f)
		}
	}
	return report, nil
}
