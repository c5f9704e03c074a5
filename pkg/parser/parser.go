package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skim/interpreter-go/pkg/ast"
	"skim/interpreter-go/pkg/parser/language"
)

// ScriptParser wraps a tree-sitter parser configured for JavaScript and
// converts the concrete syntax tree into the ESTree subset the evaluator
// executes. Syntax outside that subset is rejected with a parse error.
type ScriptParser struct {
	parser *sitter.Parser
}

// NewScriptParser constructs a parser with the JavaScript language loaded.
func NewScriptParser() (*ScriptParser, error) {
	lang := language.JavaScript()
	if lang == nil {
		return nil, fmt.Errorf("parser: javascript language not available")
	}

	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	return &ScriptParser{parser: p}, nil
}

// Close releases parser resources.
func (p *ScriptParser) Close() {
	if p == nil || p.parser == nil {
		return
	}
	p.parser.Close()
}

// ParseProgram parses JavaScript source into an ESTree program.
func (p *ScriptParser) ParseProgram(source []byte) (*ast.Program, error) {
	if p == nil || p.parser == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}

	tree := p.parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "program" {
		return nil, fmt.Errorf("parser: unexpected root node")
	}
	if root.HasError() {
		return nil, fmt.Errorf("parser: syntax errors present")
	}

	body := make([]ast.Statement, 0, root.NamedChildCount())
	for _, child := range namedChildren(root) {
		stmt, err := parseStatement(child, source)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	program := ast.NewProgram(body)
	ast.SetRange(program, int(root.StartByte()), int(root.EndByte()))
	return program, nil
}

// Parse is the one-shot convenience form used to wire the evaluator's parser
// callback.
func Parse(source string) (*ast.Program, error) {
	p, err := NewScriptParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.ParseProgram([]byte(source))
}
