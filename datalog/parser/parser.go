// Package parser reads Datalog programs in bracket syntax
//
//	[parent alice bob]                        ; fact
//	[[ancestor X Y] [parent X Y]]             ; rule: head, then goals
//	[:query [ancestor carol Y]]               ; query
//
// and in the conventional syntax handled by ParseClassic.
package parser

import (
	"fmt"
	"strings"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/edn"
	"github.com/wbrown/bottomup-datalog/datalog/executor"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// ErrNonGroundFact is returned for a stated fact that contains a variable.
// It is the same sentinel the engine uses when building from such a fact.
var ErrNonGroundFact = executor.ErrNonGroundFact

// ParseProgram parses a program in bracket syntax
func ParseProgram(input string) (*query.Program, error) {
	nodes, err := edn.ParseAll(input)
	if err != nil {
		return nil, fmt.Errorf("EDN parse error: %w", err)
	}

	prog := &query.Program{}
	for i := range nodes {
		if err := parseForm(&nodes[i], prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// parseForm adds one top-level form to prog
func parseForm(node *edn.Node, prog *query.Program) error {
	if !node.IsCollection() {
		return fmt.Errorf("%s: expected a fact, rule or query, got %s %s", node.Pos(), node.Type, node)
	}
	if len(node.Nodes) == 0 {
		return fmt.Errorf("%s: empty form", node.Pos())
	}

	first := &node.Nodes[0]
	switch {
	case first.Type == edn.NodeKeyword:
		return parseDirective(node, prog)

	case first.IsCollection():
		rule, err := parseRule(node)
		if err != nil {
			return err
		}
		prog.Rules = append(prog.Rules, rule)
		return nil

	default:
		fact, err := atomFromNode(node)
		if err != nil {
			return err
		}
		if !fact.IsGround() {
			return fmt.Errorf("%s: %w: %s (variables %s)",
				node.Pos(), ErrNonGroundFact, fact, strings.Join(fact.Variables(), ", "))
		}
		prog.Facts = append(prog.Facts, fact)
		return nil
	}
}

// parseDirective handles [:query atom...] forms
func parseDirective(node *edn.Node, prog *query.Program) error {
	kw := node.Nodes[0].Value
	switch kw {
	case ":query", ":q":
		if len(node.Nodes) < 2 {
			return fmt.Errorf("%s: %s needs at least one atom", node.Pos(), kw)
		}
		for i := 1; i < len(node.Nodes); i++ {
			q, err := atomFromNode(&node.Nodes[i])
			if err != nil {
				return err
			}
			prog.Queries = append(prog.Queries, q)
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown directive %s", node.Pos(), kw)
	}
}

// parseRule reads [[head] [goal]...]
func parseRule(node *edn.Node) (query.Rule, error) {
	atoms := make([]datalog.Atom, len(node.Nodes))
	for i := range node.Nodes {
		atom, err := atomFromNode(&node.Nodes[i])
		if err != nil {
			return query.Rule{}, err
		}
		atoms[i] = atom
	}

	rule := query.NewRule(atoms[0], atoms[1:]...)
	if err := rule.Validate(); err != nil {
		return query.Rule{}, fmt.Errorf("%s: %w", node.Pos(), err)
	}
	return rule, nil
}

// atomFromNode reads a vector or list of names
func atomFromNode(node *edn.Node) (datalog.Atom, error) {
	if !node.IsCollection() {
		return nil, fmt.Errorf("%s: expected an atom, got %s %s", node.Pos(), node.Type, node)
	}
	if len(node.Nodes) == 0 {
		return nil, fmt.Errorf("%s: empty atom", node.Pos())
	}

	atom := make(datalog.Atom, len(node.Nodes))
	for i := range node.Nodes {
		name, err := node.Nodes[i].AsName()
		if err != nil {
			return nil, err
		}
		// Quoted names are always constants
		if node.Nodes[i].Type == edn.NodeString {
			atom[i] = datalog.Const(name)
		} else {
			atom[i] = datalog.NewTerm(name)
		}
	}
	return atom, nil
}

// ParseAtom parses a single atom in either syntax: [ancestor carol Y] or
// ancestor(carol, Y). A leading ?- and a trailing period are accepted.
func ParseAtom(input string) (datalog.Atom, error) {
	text := strings.TrimSpace(input)
	text = strings.TrimSpace(strings.TrimPrefix(text, "?-"))
	if text == "" {
		return nil, fmt.Errorf("empty atom")
	}

	if text[0] == '[' || text[0] == '(' {
		node, err := edn.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("EDN parse error: %w", err)
		}
		return atomFromNode(node)
	}

	text = strings.TrimSuffix(text, ".")
	return parseClassicAtom(text)
}
