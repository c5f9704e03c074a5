package parser

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skim/interpreter-go/pkg/ast"
)

func sliceContent(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start < 0 || end < start || end > len(source) {
		return ""
	}
	return string(source[start:end])
}

// namedChildren filters out comments, which tree-sitter reports as named
// nodes.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func ranged(n ast.Node, ts *sitter.Node) ast.Node {
	if ts != nil {
		ast.SetRange(n, int(ts.StartByte()), int(ts.EndByte()))
	}
	return n
}

func parseIdentifierNode(node *sitter.Node, source []byte) (*ast.Identifier, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: expected identifier")
	}
	switch node.Kind() {
	case "identifier", "property_identifier", "statement_identifier", "shorthand_property_identifier":
		id := ast.NewIdentifier(sliceContent(node, source))
		ranged(id, node)
		return id, nil
	default:
		return nil, fmt.Errorf("parser: expected identifier, got %s", node.Kind())
	}
}

// unparenthesize unwraps a parenthesized_expression down to its inner node.
func unparenthesize(node *sitter.Node) *sitter.Node {
	for node != nil && node.Kind() == "parenthesized_expression" {
		children := namedChildren(node)
		if len(children) != 1 {
			return node
		}
		node = children[0]
	}
	return node
}

func parseNumberLiteral(text string) (float64, error) {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseUint(lower[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("parser: invalid hex literal %q", text)
		}
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parser: invalid number literal %q", text)
	}
	return f, nil
}

// unquoteString decodes a JavaScript string literal including escapes.
func unquoteString(text string) (string, error) {
	if len(text) < 2 {
		return "", fmt.Errorf("parser: invalid string literal %q", text)
	}
	quote := text[0]
	if (quote != '\'' && quote != '"') || text[len(text)-1] != quote {
		return "", fmt.Errorf("parser: invalid string literal %q", text)
	}
	body := text[1 : len(text)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("parser: dangling escape in %q", text)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case 'x':
			if i+2 >= len(body) {
				return "", fmt.Errorf("parser: truncated hex escape in %q", text)
			}
			n, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("parser: invalid hex escape in %q", text)
			}
			sb.WriteByte(byte(n))
			i += 2
		case 'u':
			if i+4 >= len(body) {
				return "", fmt.Errorf("parser: truncated unicode escape in %q", text)
			}
			n, err := strconv.ParseUint(body[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("parser: invalid unicode escape in %q", text)
			}
			sb.WriteRune(rune(n))
			i += 4
		case '\n':
			// Line continuation.
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), nil
}
