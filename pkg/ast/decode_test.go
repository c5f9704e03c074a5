package ast

import "testing"

func TestDecodeProgramExpressionStatement(t *testing.T) {
	data := []byte(`{
		"type": "Program", "start": 0, "end": 4,
		"body": [
			{"type": "ExpressionStatement", "start": 0, "end": 4,
			 "expression": {"type": "BinaryExpression", "start": 0, "end": 3,
				"operator": "+",
				"left": {"type": "Literal", "start": 0, "end": 1, "value": 1, "raw": "1"},
				"right": {"type": "Literal", "start": 2, "end": 3, "value": 2, "raw": "2"}}}
		]
	}`)
	program, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("DecodeProgram returned error: %v", err)
	}
	if len(program.Body) != 1 {
		t.Fatalf("body length = %d, want 1", len(program.Body))
	}
	stmt, ok := program.Body[0].(*ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, want ExpressionStatement", program.Body[0])
	}
	bin, ok := stmt.Expression.(*BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expression = %#v, want binary +", stmt.Expression)
	}
	left, ok := bin.Left.(*Literal)
	if !ok {
		t.Fatalf("left is %T, want Literal", bin.Left)
	}
	if v, ok := left.Value.(float64); !ok || v != 1 {
		t.Fatalf("left literal = %#v, want 1", left.Value)
	}
	if start, end := program.Range(); start != 0 || end != 4 {
		t.Fatalf("program range = (%d,%d), want (0,4)", start, end)
	}
}

func TestDecodeProgramFunctionRanges(t *testing.T) {
	data := []byte(`{
		"type": "Program", "start": 0, "end": 24,
		"body": [
			{"type": "FunctionDeclaration", "start": 0, "end": 24,
			 "id": {"type": "Identifier", "start": 9, "end": 10, "name": "f"},
			 "params": [{"type": "Identifier", "start": 11, "end": 12, "name": "a"}],
			 "body": {"type": "BlockStatement", "start": 14, "end": 24, "body": []}}
		]
	}`)
	program, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("DecodeProgram returned error: %v", err)
	}
	decl, ok := program.Body[0].(*FunctionDeclaration)
	if !ok {
		t.Fatalf("statement is %T, want FunctionDeclaration", program.Body[0])
	}
	if decl.ID.Name != "f" || len(decl.Params) != 1 || decl.Params[0].Name != "a" {
		t.Fatalf("decoded declaration = %#v", decl)
	}
	if start, end := decl.Range(); start != 0 || end != 24 {
		t.Fatalf("declaration range = (%d,%d), want (0,24)", start, end)
	}
}

func TestDecodeProgramSwitchAndTry(t *testing.T) {
	data := []byte(`{
		"type": "Program",
		"body": [
			{"type": "SwitchStatement",
			 "discriminant": {"type": "Identifier", "name": "x"},
			 "cases": [
				{"type": "SwitchCase", "test": {"type": "Literal", "value": 1, "raw": "1"}, "consequent": []},
				{"type": "SwitchCase", "test": null, "consequent": [{"type": "BreakStatement", "label": null}]}
			 ]},
			{"type": "TryStatement",
			 "block": {"type": "BlockStatement", "body": []},
			 "handler": {"type": "CatchClause",
				"param": {"type": "Identifier", "name": "e"},
				"body": {"type": "BlockStatement", "body": []}},
			 "finalizer": {"type": "BlockStatement", "body": []}}
		]
	}`)
	program, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("DecodeProgram returned error: %v", err)
	}
	sw, ok := program.Body[0].(*SwitchStatement)
	if !ok || len(sw.Cases) != 2 {
		t.Fatalf("switch = %#v", program.Body[0])
	}
	if sw.Cases[1].Test != nil {
		t.Fatalf("default case should have nil test")
	}
	try, ok := program.Body[1].(*TryStatement)
	if !ok || try.Handler == nil || try.Finalizer == nil {
		t.Fatalf("try = %#v", program.Body[1])
	}
	if try.Handler.Param.Name != "e" {
		t.Fatalf("catch param = %q, want e", try.Handler.Param.Name)
	}
}

func TestDecodeProgramRejectsUnknownNode(t *testing.T) {
	data := []byte(`{"type": "Program", "body": [{"type": "YieldExpression"}]}`)
	if _, err := DecodeProgram(data); err == nil {
		t.Fatalf("expected error for unsupported node")
	}
}

func TestDecodeProgramRejectsNonProgramRoot(t *testing.T) {
	data := []byte(`{"type": "Identifier", "name": "x"}`)
	if _, err := DecodeProgram(data); err == nil {
		t.Fatalf("expected error for non-program root")
	}
}
