package interpreter

import (
	"testing"
	"time"

	"skim/interpreter-go/pkg/ast"
	"skim/interpreter-go/pkg/runtime"
)

func TestForLoopSumsRange(t *testing.T) {
	// var s=0; for(var i=1;i<=10;i++) s+=i; s
	val := evalProgram(t,
		ast.Var("s", ast.Num(0)),
		ast.NewForStatement(
			ast.Var("i", ast.Num(1)),
			ast.Bin("<=", ast.ID("i"), ast.Num(10)),
			ast.NewUpdateExpression("++", ast.ID("i"), false),
			ast.Expr(ast.AssignOp("+=", ast.ID("s"), ast.ID("i"))),
		),
		ast.Expr(ast.ID("s")),
	)
	wantNumber(t, val, 55)
}

func TestWhileLoopBreak(t *testing.T) {
	val := evalProgram(t,
		ast.Var("i", ast.Num(0)),
		ast.While(ast.Bool(true), ast.Block(
			ast.Expr(ast.NewUpdateExpression("++", ast.ID("i"), false)),
			ast.If(ast.Bin(">=", ast.ID("i"), ast.Num(3)), ast.Brk(""), nil),
		)),
		ast.Expr(ast.ID("i")),
	)
	wantNumber(t, val, 3)
}

func TestDoWhileRunsBodyFirst(t *testing.T) {
	val := evalProgram(t,
		ast.Var("n", ast.Num(0)),
		ast.NewDoWhileStatement(
			ast.Block(ast.Expr(ast.NewUpdateExpression("++", ast.ID("n"), false))),
			ast.Bool(false),
		),
		ast.Expr(ast.ID("n")),
	)
	wantNumber(t, val, 1)
}

func TestContinueSkipsIteration(t *testing.T) {
	// var s=0; for(var i=0;i<5;i++){ if(i%2===1) continue; s+=i } s  => 0+2+4
	val := evalProgram(t,
		ast.Var("s", ast.Num(0)),
		ast.NewForStatement(
			ast.Var("i", ast.Num(0)),
			ast.Bin("<", ast.ID("i"), ast.Num(5)),
			ast.NewUpdateExpression("++", ast.ID("i"), false),
			ast.Block(
				ast.If(ast.Bin("===", ast.Bin("%", ast.ID("i"), ast.Num(2)), ast.Num(1)), ast.Cont(""), nil),
				ast.Expr(ast.AssignOp("+=", ast.ID("s"), ast.ID("i"))),
			),
		),
		ast.Expr(ast.ID("s")),
	)
	wantNumber(t, val, 6)
}

func TestLabeledBreakExitsOuterLoop(t *testing.T) {
	// outer: for(var i=0;i<3;i++){ for(var j=0;j<3;j++){ if(j===1) break outer; } } i
	val := evalProgram(t,
		ast.Label("outer", ast.NewForStatement(
			ast.Var("i", ast.Num(0)),
			ast.Bin("<", ast.ID("i"), ast.Num(3)),
			ast.NewUpdateExpression("++", ast.ID("i"), false),
			ast.Block(ast.NewForStatement(
				ast.Var("j", ast.Num(0)),
				ast.Bin("<", ast.ID("j"), ast.Num(3)),
				ast.NewUpdateExpression("++", ast.ID("j"), false),
				ast.Block(ast.If(ast.Bin("===", ast.ID("j"), ast.Num(1)), ast.Brk("outer"), nil)),
			)),
		)),
		ast.Expr(ast.ID("i")),
	)
	wantNumber(t, val, 0)
}

func TestLabeledContinueResumesOuterLoop(t *testing.T) {
	// outer: for(var i=0;i<3;i++){ for(var j=0;j<3;j++){ if(j===1) continue outer; s++ } } s
	val := evalProgram(t,
		ast.Var("s", ast.Num(0)),
		ast.Label("outer", ast.NewForStatement(
			ast.Var("i", ast.Num(0)),
			ast.Bin("<", ast.ID("i"), ast.Num(3)),
			ast.NewUpdateExpression("++", ast.ID("i"), false),
			ast.Block(ast.NewForStatement(
				ast.Var("j", ast.Num(0)),
				ast.Bin("<", ast.ID("j"), ast.Num(3)),
				ast.NewUpdateExpression("++", ast.ID("j"), false),
				ast.Block(
					ast.If(ast.Bin("===", ast.ID("j"), ast.Num(1)), ast.Cont("outer"), nil),
					ast.Expr(ast.NewUpdateExpression("++", ast.ID("s"), false)),
				),
			)),
		)),
		ast.Expr(ast.ID("s")),
	)
	wantNumber(t, val, 3)
}

func TestLabeledBlockBreak(t *testing.T) {
	// L: { if(true) break L; x=1 } typeof x
	val := evalProgram(t,
		ast.Label("L", ast.Block(
			ast.If(ast.Bool(true), ast.Brk("L"), nil),
			ast.Expr(ast.Assign(ast.ID("x"), ast.Num(1))),
		)),
		ast.Expr(ast.Unary("typeof", ast.ID("x"))),
	)
	wantString(t, val, "undefined")
}

func TestBreakToUnknownLabelThrows(t *testing.T) {
	interp := New(nil, Options{})
	_, err := interp.EvaluateNode(ast.Prog(
		ast.Label("L", ast.Block(ast.Brk("M"))),
	), "")
	if err == nil {
		t.Fatalf("expected unknown label error")
	}
}

func TestSwitchFallThrough(t *testing.T) {
	// switch(1){ case 1: x=1; case 2: x=2; break; case 3: x=3 } x
	val := evalProgram(t,
		ast.NewSwitchStatement(ast.Num(1), []*ast.SwitchCase{
			ast.NewSwitchCase(ast.Num(1), []ast.Statement{ast.Expr(ast.Assign(ast.ID("x"), ast.Num(1)))}),
			ast.NewSwitchCase(ast.Num(2), []ast.Statement{ast.Expr(ast.Assign(ast.ID("x"), ast.Num(2))), ast.Brk("")}),
			ast.NewSwitchCase(ast.Num(3), []ast.Statement{ast.Expr(ast.Assign(ast.ID("x"), ast.Num(3)))}),
		}),
		ast.Expr(ast.ID("x")),
	)
	wantNumber(t, val, 2)
}

func TestSwitchDefaultRunsWhenNoMatch(t *testing.T) {
	val := evalProgram(t,
		ast.NewSwitchStatement(ast.Num(9), []*ast.SwitchCase{
			ast.NewSwitchCase(ast.Num(1), []ast.Statement{ast.Expr(ast.Assign(ast.ID("x"), ast.Num(1)))}),
			ast.NewSwitchCase(nil, []ast.Statement{ast.Expr(ast.Assign(ast.ID("x"), ast.Num(42)))}),
		}),
		ast.Expr(ast.ID("x")),
	)
	wantNumber(t, val, 42)
}

func TestSwitchMatchesStrictly(t *testing.T) {
	// switch("1") must not match case 1.
	val := evalProgram(t,
		ast.Var("x", ast.Num(0)),
		ast.NewSwitchStatement(ast.Str("1"), []*ast.SwitchCase{
			ast.NewSwitchCase(ast.Num(1), []ast.Statement{ast.Expr(ast.Assign(ast.ID("x"), ast.Num(1)))}),
		}),
		ast.Expr(ast.ID("x")),
	)
	wantNumber(t, val, 0)
}

func TestTryCatchBindsAndRestores(t *testing.T) {
	global := runtime.NewObject()
	global.Set("e", runtime.String("outer"))
	val, _ := evalProgramIn(t, global,
		ast.NewTryStatement(
			ast.Block(ast.Throw(ast.Str("inner"))),
			ast.NewCatchClause(ast.ID("e"), ast.Block(
				ast.Expr(ast.Assign(ast.ID("seen"), ast.ID("e"))),
			)),
			nil,
		),
		ast.Expr(ast.ID("e")),
	)
	wantString(t, val, "outer")
	prop, ok := global.OwnProperty("seen")
	if !ok {
		t.Fatalf("seen not recorded")
	}
	wantString(t, prop.Value, "inner")
}

func TestTryCatchRemovesFreshBinding(t *testing.T) {
	global := runtime.NewObject()
	evalProgramIn(t, global,
		ast.NewTryStatement(
			ast.Block(ast.Throw(ast.Str("x"))),
			ast.NewCatchClause(ast.ID("err"), ast.Block()),
			nil,
		),
	)
	if global.HasOwn("err") {
		t.Fatalf("catch parameter leaked into scope")
	}
}

func TestTryFinallySupersedesReturn(t *testing.T) {
	// function f(){ try { return 1 } finally { return 2 } } f()
	val := evalProgram(t,
		ast.FnDecl("f", nil, ast.Block(
			ast.NewTryStatement(
				ast.Block(ast.Ret(ast.Num(1))),
				nil,
				ast.Block(ast.Ret(ast.Num(2))),
			),
		)),
		ast.Expr(ast.Call(ast.ID("f"))),
	)
	wantNumber(t, val, 2)
}

func TestTryCatchFinallyOrdering(t *testing.T) {
	// var a=[]; try { throw {m:"x"} } catch(e){ a.push(e.m) } finally { a.push("f") } a.join(",")
	val := evalProgram(t,
		ast.Var("a", ast.Arr()),
		ast.NewTryStatement(
			ast.Block(ast.Throw(ast.Obj(ast.Prop("m", ast.Str("x"))))),
			ast.NewCatchClause(ast.ID("e"), ast.Block(
				ast.Expr(ast.Call(ast.Member(ast.ID("a"), "push"), ast.Member(ast.ID("e"), "m"))),
			)),
			ast.Block(
				ast.Expr(ast.Call(ast.Member(ast.ID("a"), "push"), ast.Str("f"))),
			),
		),
		ast.Expr(ast.Call(ast.Member(ast.ID("a"), "join"), ast.Str(","))),
	)
	wantString(t, val, "x,f")
}

func TestThrowPropagatesThroughCalls(t *testing.T) {
	val := evalProgram(t,
		ast.FnDecl("boom", nil, ast.Block(ast.Throw(ast.Str("bang")))),
		ast.Var("caught", ast.Str("")),
		ast.NewTryStatement(
			ast.Block(ast.Expr(ast.Call(ast.ID("boom")))),
			ast.NewCatchClause(ast.ID("e"), ast.Block(
				ast.Expr(ast.Assign(ast.ID("caught"), ast.ID("e"))),
			)),
			nil,
		),
		ast.Expr(ast.ID("caught")),
	)
	wantString(t, val, "bang")
}

func TestForInVisitsInsertionOrder(t *testing.T) {
	// var keys=[]; var k; for(k in {a:1,b:2,c:3}) keys.push(k); keys.join("")
	val := evalProgram(t,
		ast.Var("keys", ast.Arr()),
		ast.Var("k", nil),
		ast.NewForInStatement(
			ast.ID("k"),
			ast.Obj(ast.Prop("a", ast.Num(1)), ast.Prop("b", ast.Num(2)), ast.Prop("c", ast.Num(3))),
			ast.Block(ast.Expr(ast.Call(ast.Member(ast.ID("keys"), "push"), ast.ID("k")))),
		),
		ast.Expr(ast.Call(ast.Member(ast.ID("keys"), "join"), ast.Str(""))),
	)
	wantString(t, val, "abc")
}

func TestForInWithVarDeclaration(t *testing.T) {
	val := evalProgram(t,
		ast.Var("o", ast.Obj(ast.Prop("x", ast.Num(1)))),
		ast.Var("last", ast.Str("")),
		ast.NewForInStatement(
			ast.Var("k", nil),
			ast.ID("o"),
			ast.Block(ast.Expr(ast.Assign(ast.ID("last"), ast.ID("k")))),
		),
		ast.Expr(ast.ID("last")),
	)
	wantString(t, val, "x")
}

func TestWithOverlayReads(t *testing.T) {
	// var o={a:1}; with(o){ a }
	val := evalProgram(t,
		ast.Var("o", ast.Obj(ast.Prop("a", ast.Num(1)))),
		ast.NewWithStatement(ast.ID("o"), ast.Block(ast.Expr(ast.ID("a")))),
	)
	wantNumber(t, val, 1)
}

func TestWithOverlayDoesNotWriteBack(t *testing.T) {
	val := evalProgram(t,
		ast.Var("o", ast.Obj(ast.Prop("a", ast.Num(1)))),
		ast.NewWithStatement(ast.ID("o"), ast.Block(
			ast.Expr(ast.Assign(ast.ID("a"), ast.Num(9))),
		)),
		ast.Expr(ast.Member(ast.ID("o"), "a")),
	)
	wantNumber(t, val, 1)
}

func TestTimeoutAbortsLoop(t *testing.T) {
	interp := New(nil, Options{Timeout: 20 * time.Millisecond})
	_, err := interp.EvaluateNode(ast.Prog(
		ast.While(ast.Bool(true), ast.Block()),
	), "")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	thrown, ok := err.(runtime.Thrown)
	if !ok {
		t.Fatalf("error is %T, want runtime.Thrown", err)
	}
	obj, ok := thrown.Value.(*runtime.ObjectValue)
	if !ok || obj.Class != "Error" {
		t.Fatalf("timeout payload = %#v, want error object", thrown.Value)
	}
}

func TestTopLevelBreakIsDiscarded(t *testing.T) {
	val := evalProgram(t,
		ast.Expr(ast.Num(5)),
		ast.Brk(""),
	)
	wantNumber(t, val, 5)
}
