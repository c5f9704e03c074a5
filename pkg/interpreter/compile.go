package interpreter

import (
	"fmt"

	"skim/interpreter-go/pkg/ast"
)

// thunk is a pre-compiled closure evaluating one AST node against the current
// runtime state. The parent argument is consumed only by loop and labeled
// statement thunks to recognize their label context.
type thunk func(parent ast.Node) completion

// compile maps a node to its specialized thunk. Compile-time work (operator
// tags, sub-thunks, hoisting) happens here once; running a loop body
// re-executes pre-built thunks rather than walking the AST again.
func (i *Interpreter) compile(node ast.Node) (thunk, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		return i.compileIdentifier(n), nil
	case *ast.Literal:
		return i.compileLiteral(n), nil
	case *ast.ThisExpression:
		return i.compileThis(), nil
	case *ast.ArrayExpression:
		return i.compileArray(n)
	case *ast.ObjectExpression:
		return i.compileObject(n)
	case *ast.FunctionExpression:
		return i.compileFunctionExpression(n)
	case *ast.UnaryExpression:
		return i.compileUnary(n)
	case *ast.UpdateExpression:
		return i.compileUpdate(n)
	case *ast.BinaryExpression:
		return i.compileBinary(n)
	case *ast.LogicalExpression:
		return i.compileLogical(n)
	case *ast.AssignmentExpression:
		return i.compileAssignment(n)
	case *ast.ConditionalExpression:
		return i.compileConditional(n)
	case *ast.CallExpression:
		return i.compileCall(n)
	case *ast.NewExpression:
		return i.compileNew(n)
	case *ast.MemberExpression:
		return i.compileMember(n)
	case *ast.SequenceExpression:
		return i.compileSequence(n)
	case *ast.ExpressionStatement:
		return i.compileExpression(n.Expression)
	case *ast.BlockStatement:
		return i.compileBlock(n)
	case *ast.EmptyStatement:
		return func(ast.Node) completion { return emptyCompletion }, nil
	case *ast.IfStatement:
		return i.compileIf(n)
	case *ast.ForStatement:
		return i.compileFor(n)
	case *ast.WhileStatement:
		return i.compileWhile(n)
	case *ast.DoWhileStatement:
		return i.compileDoWhile(n)
	case *ast.ForInStatement:
		return i.compileForIn(n)
	case *ast.WithStatement:
		return i.compileWith(n)
	case *ast.SwitchStatement:
		return i.compileSwitch(n)
	case *ast.LabeledStatement:
		return i.compileLabeled(n)
	case *ast.ReturnStatement:
		return i.compileReturn(n)
	case *ast.ThrowStatement:
		return i.compileThrow(n)
	case *ast.TryStatement:
		return i.compileTry(n)
	case *ast.BreakStatement:
		return i.compileBreak(n)
	case *ast.ContinueStatement:
		return i.compileContinue(n)
	case *ast.VariableDeclaration:
		return i.compileVariableDeclaration(n)
	case *ast.FunctionDeclaration:
		return i.compileFunctionDeclaration(n)
	case *ast.Program:
		thunks, err := i.compileStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return func(parent ast.Node) completion { return i.runBlock(thunks, parent) }, nil
	default:
		return nil, fmt.Errorf("unsupported node type: %s", node.NodeType())
	}
}

func (i *Interpreter) compileStatements(stmts []ast.Statement) ([]thunk, error) {
	thunks := make([]thunk, 0, len(stmts))
	for _, stmt := range stmts {
		t, err := i.compile(stmt)
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, t)
	}
	return thunks, nil
}

func (i *Interpreter) compileExpression(expr ast.Expression) (thunk, error) {
	if expr == nil {
		return nil, fmt.Errorf("missing expression")
	}
	return i.compile(expr)
}
