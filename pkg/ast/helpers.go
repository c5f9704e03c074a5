package ast

// Short constructors used heavily by tests.

func Prog(stmts ...Statement) *Program { return NewProgram(stmts) }

func ID(name string) *Identifier { return NewIdentifier(name) }

func Num(v float64) *Literal { return NewLiteral(v, "") }

func Str(v string) *Literal { return NewLiteral(v, "") }

func Bool(v bool) *Literal { return NewLiteral(v, "") }

func Null() *Literal { return NewLiteral(nil, "null") }

func Expr(e Expression) *ExpressionStatement { return NewExpressionStatement(e) }

func Block(stmts ...Statement) *BlockStatement { return NewBlockStatement(stmts) }

func Unary(op string, argument Expression) *UnaryExpression {
	return NewUnaryExpression(op, argument)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Logic(op string, left, right Expression) *LogicalExpression {
	return NewLogicalExpression(op, left, right)
}

func Assign(left, right Expression) *AssignmentExpression {
	return NewAssignmentExpression("=", left, right)
}

func AssignOp(op string, left, right Expression) *AssignmentExpression {
	return NewAssignmentExpression(op, left, right)
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func New_(callee Expression, args ...Expression) *NewExpression {
	return NewNewExpression(callee, args)
}

func Member(object Expression, name string) *MemberExpression {
	return NewMemberExpression(object, ID(name), false)
}

func Index(object, key Expression) *MemberExpression {
	return NewMemberExpression(object, key, true)
}

func Seq(exprs ...Expression) *SequenceExpression { return NewSequenceExpression(exprs) }

func Arr(elements ...Expression) *ArrayExpression { return NewArrayExpression(elements) }

func Obj(props ...*Property) *ObjectExpression { return NewObjectExpression(props) }

func Prop(name string, value Expression) *Property {
	return NewProperty(ID(name), value, PropertyInit)
}

func Getter(name string, body *BlockStatement) *Property {
	return NewProperty(ID(name), NewFunctionExpression(nil, nil, body), PropertyGet)
}

func Setter(name string, param string, body *BlockStatement) *Property {
	return NewProperty(ID(name), NewFunctionExpression(nil, []*Identifier{ID(param)}, body), PropertySet)
}

func Fn(name string, params []string, body *BlockStatement) *FunctionExpression {
	var id *Identifier
	if name != "" {
		id = ID(name)
	}
	return NewFunctionExpression(id, idents(params), body)
}

func FnDecl(name string, params []string, body *BlockStatement) *FunctionDeclaration {
	return NewFunctionDeclaration(ID(name), idents(params), body)
}

func Var(name string, init Expression) *VariableDeclaration {
	return NewVariableDeclaration([]*VariableDeclarator{NewVariableDeclarator(ID(name), init)})
}

func Ret(arg Expression) *ReturnStatement { return NewReturnStatement(arg) }

func Throw(arg Expression) *ThrowStatement { return NewThrowStatement(arg) }

func If(test Expression, consequent Statement, alternate Statement) *IfStatement {
	return NewIfStatement(test, consequent, alternate)
}

func While(test Expression, body Statement) *WhileStatement {
	return NewWhileStatement(test, body)
}

func Label(name string, body Statement) *LabeledStatement {
	return NewLabeledStatement(ID(name), body)
}

func Brk(label string) *BreakStatement {
	if label == "" {
		return NewBreakStatement(nil)
	}
	return NewBreakStatement(ID(label))
}

func Cont(label string) *ContinueStatement {
	if label == "" {
		return NewContinueStatement(nil)
	}
	return NewContinueStatement(ID(label))
}

func idents(names []string) []*Identifier {
	out := make([]*Identifier, 0, len(names))
	for _, name := range names {
		out = append(out, ID(name))
	}
	return out
}
