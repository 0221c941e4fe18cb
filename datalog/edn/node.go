package edn

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeType represents the type of EDN node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeKeyword
	NodeList
	NodeVector
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeKeyword:
		return "keyword"
	case NodeList:
		return "list"
	case NodeVector:
		return "vector"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is one value of a program: a name, or a bracketed collection of
// values
type Node struct {
	Type  NodeType
	Line  int
	Col   int
	Value string // For symbols, strings and keywords
	Nodes []Node // For collections
}

// String renders the node back to source form
func (n Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeKeyword:
		return n.Value
	case NodeString:
		return strconv.Quote(n.Value)
	case NodeList:
		return "(" + joinNodes(n.Nodes) + ")"
	case NodeVector:
		return "[" + joinNodes(n.Nodes) + "]"
	default:
		return fmt.Sprintf("Unknown[%v]", n.Value)
	}
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, node := range nodes {
		parts[i] = node.String()
	}
	return strings.Join(parts, " ")
}

// Pos returns the node position as line:col
func (n Node) Pos() string {
	return fmt.Sprintf("%d:%d", n.Line, n.Col)
}

// AsName returns the text of a symbol or string node
func (n Node) AsName() (string, error) {
	if n.Type != NodeSymbol && n.Type != NodeString {
		return "", fmt.Errorf("%s at %s is not a name", n.Type, n.Pos())
	}
	return n.Value, nil
}

// AsKeyword returns the keyword value
func (n Node) AsKeyword() (string, error) {
	if n.Type != NodeKeyword {
		return "", fmt.Errorf("%s at %s is not a keyword", n.Type, n.Pos())
	}
	return n.Value, nil
}

// IsKeyword reports whether the node is the given keyword
func (n Node) IsKeyword(kw string) bool {
	return n.Type == NodeKeyword && n.Value == kw
}

// IsCollection returns true if the node is a list or a vector
func (n Node) IsCollection() bool {
	return n.Type == NodeList || n.Type == NodeVector
}
