package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// Conventional syntax:
//
//	parent(alice, bob).
//	ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).
//	?- ancestor(carol, Y).
//
// % starts a comment that runs to the end of the line.
var (
	classicLexer = lexer.Unquote(lexer.Must(lexer.Regexp(`(\s+)` +
		`|(%[^\n]*)` +
		`|(?P<Ident>[\p{L}\p{N}_][\p{L}\p{N}_']*)` +
		`|(?P<String>"(?:[^"\\]|\\.)*")` +
		`|(?P<Operator>:-|\?-|[(),.])`,
	)), "String")
	classicParser     = participle.MustBuild(&classicProgram{}, classicLexer)
	classicAtomParser = participle.MustBuild(&classicAtom{}, classicLexer)
)

type classicProgram struct {
	Clauses []*classicClause `{ @@ }`
}

type classicClause struct {
	Query *classicAtom   `(  "?-" @@ "."`
	Head  *classicAtom   `| @@`
	Body  []*classicAtom `  [ ":-" @@ { "," @@ } ] "." )`
}

type classicAtom struct {
	Relation *classicTerm   `@@`
	Args     []*classicTerm `[ "(" [ @@ { "," @@ } ] ")" ]`
}

type classicTerm struct {
	Name   string `  @Ident`
	Quoted string `| @String`
}

func (t *classicTerm) term() datalog.Term {
	if t.Name == "" {
		return datalog.Const(t.Quoted)
	}
	return datalog.NewTerm(t.Name)
}

func (a *classicAtom) atom() datalog.Atom {
	atom := make(datalog.Atom, 0, len(a.Args)+1)
	atom = append(atom, a.Relation.term())
	for _, arg := range a.Args {
		atom = append(atom, arg.term())
	}
	return atom
}

// ParseClassic parses a program in conventional Datalog syntax
func ParseClassic(input string) (*query.Program, error) {
	ast := &classicProgram{}
	if err := classicParser.ParseString(input, ast); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	prog := &query.Program{}
	for i, clause := range ast.Clauses {
		switch {
		case clause.Query != nil:
			prog.Queries = append(prog.Queries, clause.Query.atom())

		case len(clause.Body) > 0:
			body := make([]datalog.Atom, len(clause.Body))
			for j, goal := range clause.Body {
				body[j] = goal.atom()
			}
			prog.Rules = append(prog.Rules, query.NewRule(clause.Head.atom(), body...))

		default:
			fact := clause.Head.atom()
			if !fact.IsGround() {
				return nil, fmt.Errorf("clause %d: %w: %s (variables %s)",
					i+1, ErrNonGroundFact, FormatAtom(fact), strings.Join(fact.Variables(), ", "))
			}
			prog.Facts = append(prog.Facts, fact)
		}
	}
	return prog, nil
}

// parseClassicAtom parses one atom such as ancestor(carol, Y)
func parseClassicAtom(input string) (datalog.Atom, error) {
	ast := &classicAtom{}
	if err := classicAtomParser.ParseString(input, ast); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return ast.atom(), nil
}
