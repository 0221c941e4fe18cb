package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/edn"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// FormatProgram renders prog in bracket syntax so that ParseProgram reads
// it back unchanged
func FormatProgram(prog *query.Program) string {
	var sb strings.Builder
	for _, f := range prog.Facts {
		sb.WriteString(formatVector(f))
		sb.WriteByte('\n')
	}
	for _, r := range prog.Rules {
		sb.WriteByte('[')
		sb.WriteString(formatVector(r.Head))
		for _, g := range r.Body {
			sb.WriteByte(' ')
			sb.WriteString(formatVector(g))
		}
		sb.WriteString("]\n")
	}
	for _, q := range prog.Queries {
		sb.WriteString("[:query ")
		sb.WriteString(formatVector(q))
		sb.WriteString("]\n")
	}
	return sb.String()
}

func formatVector(a datalog.Atom) string {
	parts := make([]string, len(a))
	for i, t := range a {
		parts[i] = formatTerm(t, false)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatClassic renders prog in conventional syntax
func FormatClassic(prog *query.Program) string {
	var sb strings.Builder
	for _, f := range prog.Facts {
		sb.WriteString(FormatAtom(f))
		sb.WriteString(".\n")
	}
	for _, r := range prog.Rules {
		sb.WriteString(FormatRule(r))
		sb.WriteByte('\n')
	}
	for _, q := range prog.Queries {
		sb.WriteString("?- ")
		sb.WriteString(FormatAtom(q))
		sb.WriteString(".\n")
	}
	return sb.String()
}

// FormatRule renders a rule as head :- goal, goal.
func FormatRule(r query.Rule) string {
	goals := make([]string, len(r.Body))
	for i, g := range r.Body {
		goals[i] = FormatAtom(g)
	}
	return FormatAtom(r.Head) + " :- " + strings.Join(goals, ", ") + "."
}

// FormatAtom renders an atom as relation(arg, ...)
func FormatAtom(a datalog.Atom) string {
	if len(a) == 0 {
		return ""
	}
	rel := formatTerm(a[0], true)
	if len(a) == 1 {
		return rel
	}
	args := make([]string, len(a)-1)
	for i, t := range a[1:] {
		args[i] = formatTerm(t, true)
	}
	return rel + "(" + strings.Join(args, ", ") + ")"
}

// formatTerm quotes constants that would otherwise read back as a
// variable or fail to lex
func formatTerm(t datalog.Term, classic bool) string {
	if t.IsVariable() || !needsQuote(t.Name, classic) {
		return t.Name
	}
	return strconv.Quote(t.Name)
}

func needsQuote(name string, classic bool) bool {
	if name == "" || datalog.IsVariableName(name) {
		return true
	}
	if classic {
		for _, r := range name {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '\'' {
				return true
			}
		}
		return name[0] == '\''
	}
	return !edn.ValidSymbol(name)
}
