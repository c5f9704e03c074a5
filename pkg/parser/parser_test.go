package parser

import (
	"testing"

	"skim/interpreter-go/pkg/ast"
)

func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return program
}

func firstExpression(t *testing.T, program *ast.Program) ast.Expression {
	t.Helper()
	if len(program.Body) == 0 {
		t.Fatalf("empty program body")
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("first statement is %T, want ExpressionStatement", program.Body[0])
	}
	return stmt.Expression
}

func TestParseBinaryExpression(t *testing.T) {
	expr := firstExpression(t, parseSource(t, "1 + 2 * 3;"))
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expression = %#v, want top-level +", expr)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("right = %#v, want *", bin.Right)
	}
}

func TestParseLogicalBecomesLogicalExpression(t *testing.T) {
	expr := firstExpression(t, parseSource(t, "a && b;"))
	if _, ok := expr.(*ast.LogicalExpression); !ok {
		t.Fatalf("expression = %T, want LogicalExpression", expr)
	}
}

func TestParseStringAndNumberLiterals(t *testing.T) {
	expr := firstExpression(t, parseSource(t, `'a\nb';`))
	lit, ok := expr.(*ast.Literal)
	if !ok {
		t.Fatalf("expression = %T, want Literal", expr)
	}
	if s, ok := lit.Value.(string); !ok || s != "a\nb" {
		t.Fatalf("string literal = %#v", lit.Value)
	}

	expr = firstExpression(t, parseSource(t, "0x10;"))
	lit, ok = expr.(*ast.Literal)
	if !ok {
		t.Fatalf("expression = %T, want Literal", expr)
	}
	if n, ok := lit.Value.(float64); !ok || n != 16 {
		t.Fatalf("hex literal = %#v, want 16", lit.Value)
	}
}

func TestParseVariableDeclaration(t *testing.T) {
	program := parseSource(t, "var x = 1, y;")
	decl, ok := program.Body[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("statement = %T, want VariableDeclaration", program.Body[0])
	}
	if len(decl.Declarations) != 2 {
		t.Fatalf("declarators = %d, want 2", len(decl.Declarations))
	}
	if decl.Declarations[0].ID.Name != "x" || decl.Declarations[0].Init == nil {
		t.Fatalf("first declarator = %#v", decl.Declarations[0])
	}
	if decl.Declarations[1].ID.Name != "y" || decl.Declarations[1].Init != nil {
		t.Fatalf("second declarator = %#v", decl.Declarations[1])
	}
}

func TestParseFunctionDeclarationRanges(t *testing.T) {
	source := "function add(a, b) { return a + b; }"
	program := parseSource(t, source)
	decl, ok := program.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement = %T, want FunctionDeclaration", program.Body[0])
	}
	if decl.ID.Name != "add" || len(decl.Params) != 2 {
		t.Fatalf("declaration = %#v", decl)
	}
	start, end := decl.Range()
	if source[start:end] != source {
		t.Fatalf("range slice = %q, want full source", source[start:end])
	}
}

func TestParseMemberAndSubscript(t *testing.T) {
	expr := firstExpression(t, parseSource(t, "o.a;"))
	member, ok := expr.(*ast.MemberExpression)
	if !ok || member.Computed {
		t.Fatalf("expression = %#v, want non-computed member", expr)
	}
	expr = firstExpression(t, parseSource(t, "o['a'];"))
	member, ok = expr.(*ast.MemberExpression)
	if !ok || !member.Computed {
		t.Fatalf("expression = %#v, want computed member", expr)
	}
}

func TestParseObjectLiteralWithAccessors(t *testing.T) {
	expr := firstExpression(t, parseSource(t, "({ a: 1, get b() { return 2 } });"))
	obj, ok := expr.(*ast.ObjectExpression)
	if !ok {
		t.Fatalf("expression = %T, want ObjectExpression", expr)
	}
	if len(obj.Properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(obj.Properties))
	}
	if obj.Properties[0].PropKind != ast.PropertyInit {
		t.Fatalf("first property kind = %q, want init", obj.Properties[0].PropKind)
	}
	if obj.Properties[1].PropKind != ast.PropertyGet {
		t.Fatalf("second property kind = %q, want get", obj.Properties[1].PropKind)
	}
}

func TestParseControlFlowStatements(t *testing.T) {
	program := parseSource(t, `
		outer: for (var i = 0; i < 3; i++) {
			switch (i) {
			case 0:
				continue outer;
			default:
				break outer;
			}
		}
	`)
	labeled, ok := program.Body[0].(*ast.LabeledStatement)
	if !ok || labeled.Label.Name != "outer" {
		t.Fatalf("statement = %#v, want labeled outer", program.Body[0])
	}
	loop, ok := labeled.Body.(*ast.ForStatement)
	if !ok {
		t.Fatalf("labeled body = %T, want ForStatement", labeled.Body)
	}
	if loop.Init == nil || loop.Test == nil || loop.Update == nil {
		t.Fatalf("for parts missing: %#v", loop)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	program := parseSource(t, "try { f() } catch (e) { g(e) } finally { h() }")
	try, ok := program.Body[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement = %T, want TryStatement", program.Body[0])
	}
	if try.Handler == nil || try.Handler.Param.Name != "e" {
		t.Fatalf("handler = %#v", try.Handler)
	}
	if try.Finalizer == nil {
		t.Fatalf("finalizer missing")
	}
}

func TestParseRejectsUnsupportedSyntax(t *testing.T) {
	cases := []string{
		"let x = 1;",
		"const y = 2;",
		"var f = (a) => a;",
		"class C {}",
		"var r = /ab+/;",
		"for (var x of xs) {}",
	}
	for _, source := range cases {
		if _, err := Parse(source); err == nil {
			t.Fatalf("expected parse error for %q", source)
		}
	}
}

func TestParseRejectsSyntaxErrors(t *testing.T) {
	if _, err := Parse("function ("); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestParserReuse(t *testing.T) {
	p, err := NewScriptParser()
	if err != nil {
		t.Fatalf("NewScriptParser: %v", err)
	}
	defer p.Close()
	for _, source := range []string{"1;", "2;"} {
		if _, err := p.ParseProgram([]byte(source)); err != nil {
			t.Fatalf("parse %q: %v", source, err)
		}
	}
}
