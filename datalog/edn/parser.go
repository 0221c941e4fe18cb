package edn

import (
	"fmt"
	"strings"
	"unicode"
)

// Punctuation allowed in symbols besides letters and digits
const symbolPunct = ".*+!-_?$%&=<>/#'"

// Parser parses EDN tokens into an AST
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse reads the first value of input
func Parse(input string) (*Node, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	return NewParser(lexer).Parse()
}

// ParseAll reads every top-level value of input
func ParseAll(input string) ([]Node, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	return NewParser(lexer).ParseAll()
}

// Parse reads a single value, skipping discarded forms before it
func (p *Parser) Parse() (*Node, error) {
	for {
		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			return node, nil
		}
	}
}

// ParseAll reads all values until EOF
func (p *Parser) ParseAll() ([]Node, error) {
	var nodes []Node

	for p.lexer.PeekToken().Type != TokenEOF {
		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		// Skip discarded forms (#_)
		if node == nil {
			continue
		}
		nodes = append(nodes, *node)
	}

	return nodes, nil
}

// readNode reads a single node. A discarded form yields nil.
func (p *Parser) readNode() (*Node, error) {
	token := p.lexer.PeekToken()

	switch token.Type {
	case TokenEOF:
		return nil, fmt.Errorf("unexpected EOF at %d:%d", token.Line, token.Col)

	case TokenString:
		p.lexer.NextToken()
		return &Node{
			Type:  NodeString,
			Value: token.Value,
			Line:  token.Line,
			Col:   token.Col,
		}, nil

	case TokenAtom:
		return p.readAtom()

	case TokenDiscard:
		p.lexer.NextToken()
		if p.lexer.PeekToken().Type == TokenEOF {
			return nil, fmt.Errorf("nothing to discard at %d:%d", token.Line, token.Col)
		}
		if _, err := p.readNode(); err != nil {
			return nil, err
		}
		return nil, nil

	case TokenLeftParen:
		return p.readCollection(NodeList, TokenRightParen, "list")

	case TokenLeftBracket:
		return p.readCollection(NodeVector, TokenRightBracket, "vector")

	default:
		return nil, fmt.Errorf("unexpected token %v", token)
	}
}

// readAtom classifies an atom as keyword or symbol
func (p *Parser) readAtom() (*Node, error) {
	token := p.lexer.NextToken()
	value := token.Value

	if strings.HasPrefix(value, ":") {
		if err := validateKeyword(value); err != nil {
			return nil, fmt.Errorf("%v at %d:%d", err, token.Line, token.Col)
		}
		return &Node{Type: NodeKeyword, Value: value, Line: token.Line, Col: token.Col}, nil
	}

	if err := validateSymbol(value); err != nil {
		return nil, fmt.Errorf("%v at %d:%d", err, token.Line, token.Col)
	}
	return &Node{Type: NodeSymbol, Value: value, Line: token.Line, Col: token.Col}, nil
}

// readCollection reads values up to the closing token
func (p *Parser) readCollection(typ NodeType, closing TokenType, what string) (*Node, error) {
	startToken := p.lexer.NextToken() // consume opener

	nodes := []Node{}
	for {
		token := p.lexer.PeekToken()
		if token.Type == closing {
			p.lexer.NextToken()
			break
		}
		if token.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated %s starting at %d:%d", what, startToken.Line, startToken.Col)
		}
		if token.Type == TokenRightParen || token.Type == TokenRightBracket {
			return nil, fmt.Errorf("mismatched %v closing %s starting at %d:%d", token, what, startToken.Line, startToken.Col)
		}

		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		if node != nil { // Skip discarded forms
			nodes = append(nodes, *node)
		}
	}

	return &Node{
		Type:  typ,
		Nodes: nodes,
		Line:  startToken.Line,
		Col:   startToken.Col,
	}, nil
}

// Validation functions

func validateSymbol(s string) error {
	if s == "" {
		return fmt.Errorf("empty symbol")
	}
	for _, ch := range s {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || strings.ContainsRune(symbolPunct, ch) {
			continue
		}
		return fmt.Errorf("invalid character '%c' in symbol: %s", ch, s)
	}
	return nil
}

func validateKeyword(s string) error {
	if len(s) == 1 {
		return fmt.Errorf("empty keyword")
	}
	return validateSymbol(s[1:])
}

// ValidSymbol reports whether s reads back as a single symbol
func ValidSymbol(s string) bool {
	return !strings.HasPrefix(s, ":") && !strings.HasPrefix(s, "#_") && validateSymbol(s) == nil
}
