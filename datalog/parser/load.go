package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// Syntax selects a program notation
type Syntax int

const (
	// SyntaxBracket is the EDN vector notation read by ParseProgram
	SyntaxBracket Syntax = iota
	// SyntaxClassic is the conventional notation read by ParseClassic
	SyntaxClassic
)

func (s Syntax) String() string {
	if s == SyntaxClassic {
		return "classic"
	}
	return "bracket"
}

// Parse parses input in the given syntax
func Parse(input string, syntax Syntax) (*query.Program, error) {
	if syntax == SyntaxClassic {
		return ParseClassic(input)
	}
	return ParseProgram(input)
}

// DetectSyntax guesses the notation of input from its first significant
// character: a bracket or parenthesis means bracket syntax.
func DetectSyntax(input string) Syntax {
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "%") {
			continue
		}
		if line[0] == '[' || line[0] == '(' || strings.HasPrefix(line, "#_") {
			return SyntaxBracket
		}
		return SyntaxClassic
	}
	return SyntaxBracket
}

// SyntaxForPath picks the notation from a file extension, falling back to
// the file contents
func SyntaxForPath(path string, contents string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".edn":
		return SyntaxBracket
	case ".dl", ".datalog":
		return SyntaxClassic
	default:
		return DetectSyntax(contents)
	}
}

// LoadFile reads and parses one program file
func LoadFile(path string) (*query.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading program")
	}

	contents := string(data)
	prog, err := Parse(contents, SyntaxForPath(path, contents))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return prog, nil
}

// LoadFiles loads every file and merges them into one program, in order
func LoadFiles(paths ...string) (*query.Program, error) {
	prog := &query.Program{}
	for _, path := range paths {
		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		prog.Merge(p)
	}
	return prog, nil
}
