package edn

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes EDN input
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		startLine := l.line
		startCol := l.col

		ch := l.peek()
		switch ch {
		case '"':
			str, err := l.readString()
			if err != nil {
				return err
			}
			l.emit(TokenString, str, startLine, startCol)
		case '(':
			l.advance()
			l.emit(TokenLeftParen, "", startLine, startCol)
		case ')':
			l.advance()
			l.emit(TokenRightParen, "", startLine, startCol)
		case '[':
			l.advance()
			l.emit(TokenLeftBracket, "", startLine, startCol)
		case ']':
			l.advance()
			l.emit(TokenRightBracket, "", startLine, startCol)
		case '{', '}':
			return fmt.Errorf("maps and sets are not supported at %d:%d", startLine, startCol)
		default:
			if strings.HasPrefix(l.input[l.pos:], "#_") {
				l.advance()
				l.advance()
				l.emit(TokenDiscard, "", startLine, startCol)
				continue
			}
			atom := l.readAtom()
			if atom == "" {
				return fmt.Errorf("unexpected character '%c' at %d:%d", ch, l.line, l.col)
			}
			l.emit(TokenAtom, atom, startLine, startCol)
		}
	}

	l.emit(TokenEOF, "", l.line, l.col)
	return nil
}

func (l *Lexer) emit(typ TokenType, value string, line, col int) {
	l.tokens = append(l.tokens, Token{
		Type:  typ,
		Value: value,
		Line:  line,
		Col:   col,
	})
}

// Tokens returns every token read so far
func (l *Lexer) Tokens() []Token {
	return l.tokens
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current]
}

// peek returns the current rune without advancing
func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// advance moves to the next rune
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos += size
}

// skipWhitespaceAndComments skips whitespace, commas and ; comments
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(ch) || ch == ',' {
			l.advance()
		} else if ch == ';' {
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readString reads a string literal
func (l *Lexer) readString() (string, error) {
	var result strings.Builder
	line, col := l.line, l.col
	l.advance() // skip opening quote

	for l.pos < len(l.input) {
		ch := l.peek()
		switch ch {
		case '"':
			l.advance()
			return result.String(), nil
		case '\\':
			l.advance()
			if l.pos >= len(l.input) {
				return "", fmt.Errorf("unexpected end of input in string at %d:%d", l.line, l.col)
			}
			escaped := l.peek()
			switch escaped {
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case 'n':
				result.WriteByte('\n')
			case '\\':
				result.WriteByte('\\')
			case '"':
				result.WriteByte('"')
			default:
				return "", fmt.Errorf("invalid escape sequence '\\%c' at %d:%d", escaped, l.line, l.col)
			}
			l.advance()
		default:
			result.WriteRune(ch)
			l.advance()
		}
	}

	return "", fmt.Errorf("unterminated string starting at %d:%d", line, col)
}

// readAtom reads a symbol or keyword
func (l *Lexer) readAtom() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.peek()
		if isDelimiter(ch) || unicode.IsSpace(ch) || ch == ',' {
			break
		}
		l.advance()
	}
	return l.input[start:l.pos]
}

// isDelimiter checks if a character is a delimiter
func isDelimiter(ch rune) bool {
	return ch == '(' || ch == ')' || ch == '[' || ch == ']' || ch == '{' || ch == '}' || ch == '"' || ch == ';'
}
