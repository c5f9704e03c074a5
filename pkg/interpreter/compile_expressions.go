package interpreter

import (
	"fmt"

	"skim/interpreter-go/pkg/ast"
	"skim/interpreter-go/pkg/runtime"
)

// reference is the lvalue decomposition of an assignment target: either a
// (scope, name) home for identifiers or an (owner, key) pair for member
// expressions, so read/write/delete work uniformly.
type reference struct {
	home   *scope
	name   string
	base   runtime.Value
	key    string
	member bool
}

func (r reference) get() (runtime.Value, error) {
	if r.member {
		return runtime.GetProperty(r.base, r.key)
	}
	return r.home.get(r.name), nil
}

func (r reference) set(value runtime.Value) error {
	if r.member {
		return runtime.SetProperty(r.base, r.key, value)
	}
	r.home.set(r.name, value)
	return nil
}

func (r reference) deleteTarget() (bool, error) {
	if r.member {
		return runtime.DeleteProperty(r.base, r.key)
	}
	return r.home.delete(r.name), nil
}

// refThunk resolves an lvalue at run time. The returned completion is empty
// on success and a throw signal when evaluating the owner or key threw.
type refThunk func() (reference, completion)

func (i *Interpreter) compileReference(expr ast.Expression) (refThunk, error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		name := n.Name
		return func() (reference, completion) {
			return reference{home: i.scope.resolve(name), name: name}, emptyCompletion
		}, nil
	case *ast.MemberExpression:
		objectThunk, err := i.compileExpression(n.Object)
		if err != nil {
			return nil, err
		}
		var keyThunk thunk
		staticKey := ""
		if n.Computed {
			keyThunk, err = i.compileExpression(n.Property)
			if err != nil {
				return nil, err
			}
		} else {
			id, ok := n.Property.(*ast.Identifier)
			if !ok {
				return nil, fmt.Errorf("member property must be an identifier")
			}
			staticKey = id.Name
		}
		return func() (reference, completion) {
			oc := objectThunk(nil)
			if oc.isAbrupt() {
				return reference{}, oc
			}
			key := staticKey
			if keyThunk != nil {
				kc := keyThunk(nil)
				if kc.isAbrupt() {
					return reference{}, kc
				}
				key = runtime.ToString(kc.value)
			}
			return reference{base: oc.value, key: key, member: true}, emptyCompletion
		}, nil
	default:
		return nil, fmt.Errorf("invalid assignment target: %s", expr.NodeType())
	}
}

func (i *Interpreter) compileIdentifier(n *ast.Identifier) thunk {
	name := n.Name
	return func(ast.Node) completion {
		return valueCompletion(i.scope.resolve(name).get(name))
	}
}

func (i *Interpreter) compileLiteral(n *ast.Literal) thunk {
	var value runtime.Value
	switch v := n.Value.(type) {
	case nil:
		value = runtime.Null
	case bool:
		value = runtime.Boolean(v)
	case float64:
		value = runtime.Number(v)
	case int:
		value = runtime.Number(float64(v))
	case string:
		value = runtime.String(v)
	default:
		value = runtime.Undefined
	}
	return func(ast.Node) completion { return valueCompletion(value) }
}

func (i *Interpreter) compileThis() thunk {
	return func(ast.Node) completion { return valueCompletion(i.context) }
}

func (i *Interpreter) compileArray(n *ast.ArrayExpression) (thunk, error) {
	elements := make([]thunk, 0, len(n.Elements))
	for _, el := range n.Elements {
		if el == nil {
			elements = append(elements, nil)
			continue
		}
		t, err := i.compileExpression(el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, t)
	}
	return func(ast.Node) completion {
		out := make([]runtime.Value, 0, len(elements))
		for _, el := range elements {
			if el == nil {
				out = append(out, runtime.Undefined)
				continue
			}
			c := el(nil)
			if c.isAbrupt() {
				return c
			}
			out = append(out, c.value)
		}
		return valueCompletion(runtime.NewArray(out))
	}, nil
}

// objectProp is one key of an object literal after grouping: duplicate init
// values are last-wins, and accessors for the same key merge.
type objectProp struct {
	key    string
	init   thunk
	getter *compiledFunction
	setter *compiledFunction
}

func (i *Interpreter) compileObject(n *ast.ObjectExpression) (thunk, error) {
	order := make([]string, 0, len(n.Properties))
	groups := make(map[string]*objectProp)
	for _, prop := range n.Properties {
		var key string
		switch k := prop.Key.(type) {
		case *ast.Identifier:
			key = k.Name
		case *ast.Literal:
			keyThunk := i.compileLiteral(k)
			key = runtime.ToString(keyThunk(nil).value)
		default:
			return nil, fmt.Errorf("unsupported property key: %s", prop.Key.NodeType())
		}
		group, ok := groups[key]
		if !ok {
			group = &objectProp{key: key}
			groups[key] = group
			order = append(order, key)
		}
		switch prop.PropKind {
		case ast.PropertyInit:
			t, err := i.compileExpression(prop.Value)
			if err != nil {
				return nil, err
			}
			group.init = t
		case ast.PropertyGet, ast.PropertySet:
			fnExpr, ok := prop.Value.(*ast.FunctionExpression)
			if !ok {
				return nil, fmt.Errorf("accessor value must be a function expression")
			}
			cf, err := i.compileFunctionLiteral(fnExpr.ID, fnExpr.Params, fnExpr.Body, fnExpr, false)
			if err != nil {
				return nil, err
			}
			if prop.PropKind == ast.PropertyGet {
				group.getter = cf
			} else {
				group.setter = cf
			}
		default:
			return nil, fmt.Errorf("unsupported property kind %q", prop.PropKind)
		}
	}

	return func(ast.Node) completion {
		obj := runtime.NewObject()
		for _, key := range order {
			group := groups[key]
			if group.getter != nil || group.setter != nil {
				var getter, setter runtime.Value
				if group.getter != nil {
					getter = i.makeFunction(group.getter, i.scope)
				}
				if group.setter != nil {
					setter = i.makeFunction(group.setter, i.scope)
				}
				obj.DefineAccessor(key, getter, setter)
				continue
			}
			c := group.init(nil)
			if c.isAbrupt() {
				return c
			}
			obj.Set(key, c.value)
		}
		return valueCompletion(obj)
	}, nil
}

func (i *Interpreter) compileFunctionExpression(n *ast.FunctionExpression) (thunk, error) {
	cf, err := i.compileFunctionLiteral(n.ID, n.Params, n.Body, n, false)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		return valueCompletion(i.makeFunction(cf, i.scope))
	}, nil
}

func (i *Interpreter) compileUnary(n *ast.UnaryExpression) (thunk, error) {
	switch n.Operator {
	case "delete":
		switch n.Argument.(type) {
		case *ast.Identifier, *ast.MemberExpression:
			ref, err := i.compileReference(n.Argument)
			if err != nil {
				return nil, err
			}
			return func(ast.Node) completion {
				r, c := ref()
				if c.isAbrupt() {
					return c
				}
				ok, err := r.deleteTarget()
				if err != nil {
					return hostThrow(err)
				}
				return valueCompletion(runtime.Boolean(ok))
			}, nil
		default:
			argument, err := i.compileExpression(n.Argument)
			if err != nil {
				return nil, err
			}
			return func(ast.Node) completion {
				if c := argument(nil); c.isAbrupt() {
					return c
				}
				return valueCompletion(runtime.True)
			}, nil
		}
	default:
		op := n.Operator
		argument, err := i.compileExpression(n.Argument)
		if err != nil {
			return nil, err
		}
		return func(ast.Node) completion {
			c := argument(nil)
			if c.isAbrupt() {
				return c
			}
			result, err := runtime.UnaryOp(op, c.value)
			if err != nil {
				return hostThrow(err)
			}
			return valueCompletion(result)
		}, nil
	}
}

func (i *Interpreter) compileUpdate(n *ast.UpdateExpression) (thunk, error) {
	ref, err := i.compileReference(n.Argument)
	if err != nil {
		return nil, err
	}
	delta := 1.0
	if n.Operator == "--" {
		delta = -1
	}
	prefix := n.Prefix
	return func(ast.Node) completion {
		r, c := ref()
		if c.isAbrupt() {
			return c
		}
		current, err := r.get()
		if err != nil {
			return hostThrow(err)
		}
		old := runtime.ToNumber(current)
		updated := old + delta
		if err := r.set(runtime.Number(updated)); err != nil {
			return hostThrow(err)
		}
		if prefix {
			return valueCompletion(runtime.Number(updated))
		}
		return valueCompletion(runtime.Number(old))
	}, nil
}

func (i *Interpreter) compileBinary(n *ast.BinaryExpression) (thunk, error) {
	op := n.Operator
	left, err := i.compileExpression(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.compileExpression(n.Right)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		lc := left(nil)
		if lc.isAbrupt() {
			return lc
		}
		rc := right(nil)
		if rc.isAbrupt() {
			return rc
		}
		result, err := runtime.BinaryOp(op, lc.value, rc.value)
		if err != nil {
			return hostThrow(err)
		}
		return valueCompletion(result)
	}, nil
}

func (i *Interpreter) compileLogical(n *ast.LogicalExpression) (thunk, error) {
	and := n.Operator == "&&"
	if !and && n.Operator != "||" {
		return nil, fmt.Errorf("unknown logical operator %q", n.Operator)
	}
	left, err := i.compileExpression(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.compileExpression(n.Right)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		lc := left(nil)
		if lc.isAbrupt() {
			return lc
		}
		if runtime.ToBoolean(lc.value) != and {
			return lc
		}
		return right(nil)
	}, nil
}

var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"<<=": "<<", ">>=": ">>", ">>>=": ">>>",
	"&=": "&", "^=": "^", "|=": "|",
}

func (i *Interpreter) compileAssignment(n *ast.AssignmentExpression) (thunk, error) {
	ref, err := i.compileReference(n.Left)
	if err != nil {
		return nil, err
	}
	// An anonymous function expression assigned to an identifier inherits
	// the identifier name.
	var right thunk
	fnExpr, anonymous := n.Right.(*ast.FunctionExpression)
	id, toIdentifier := n.Left.(*ast.Identifier)
	if anonymous && fnExpr.ID == nil && toIdentifier && n.Operator == "=" {
		right, err = i.compileNamedFunctionExpression(fnExpr, id.Name)
	} else {
		right, err = i.compileExpression(n.Right)
	}
	if err != nil {
		return nil, err
	}

	if n.Operator == "=" {
		return func(ast.Node) completion {
			r, c := ref()
			if c.isAbrupt() {
				return c
			}
			rc := right(nil)
			if rc.isAbrupt() {
				return rc
			}
			if err := r.set(rc.value); err != nil {
				return hostThrow(err)
			}
			return valueCompletion(rc.value)
		}, nil
	}

	op, ok := compoundOps[n.Operator]
	if !ok {
		return nil, fmt.Errorf("unknown assignment operator %q", n.Operator)
	}
	return func(ast.Node) completion {
		r, c := ref()
		if c.isAbrupt() {
			return c
		}
		current, err := r.get()
		if err != nil {
			return hostThrow(err)
		}
		rc := right(nil)
		if rc.isAbrupt() {
			return rc
		}
		result, err := runtime.BinaryOp(op, current, rc.value)
		if err != nil {
			return hostThrow(err)
		}
		if err := r.set(result); err != nil {
			return hostThrow(err)
		}
		return valueCompletion(result)
	}, nil
}

func (i *Interpreter) compileNamedFunctionExpression(n *ast.FunctionExpression, name string) (thunk, error) {
	cf, err := i.compileFunctionLiteral(n.ID, n.Params, n.Body, n, false)
	if err != nil {
		return nil, err
	}
	cf.name = name
	return func(ast.Node) completion {
		return valueCompletion(i.makeFunction(cf, i.scope))
	}, nil
}

func (i *Interpreter) compileConditional(n *ast.ConditionalExpression) (thunk, error) {
	test, err := i.compileExpression(n.Test)
	if err != nil {
		return nil, err
	}
	consequent, err := i.compileExpression(n.Consequent)
	if err != nil {
		return nil, err
	}
	alternate, err := i.compileExpression(n.Alternate)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		tc := test(nil)
		if tc.isAbrupt() {
			return tc
		}
		if runtime.ToBoolean(tc.value) {
			return consequent(nil)
		}
		return alternate(nil)
	}, nil
}

func (i *Interpreter) compileArguments(args []ast.Expression) ([]thunk, error) {
	thunks := make([]thunk, 0, len(args))
	for _, arg := range args {
		t, err := i.compileExpression(arg)
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, t)
	}
	return thunks, nil
}

func (i *Interpreter) evaluateArguments(thunks []thunk) ([]runtime.Value, completion) {
	values := make([]runtime.Value, 0, len(thunks))
	for _, t := range thunks {
		c := t(nil)
		if c.isAbrupt() {
			return nil, c
		}
		values = append(values, c.value)
	}
	return values, emptyCompletion
}

func (i *Interpreter) compileCall(n *ast.CallExpression) (thunk, error) {
	args, err := i.compileArguments(n.Arguments)
	if err != nil {
		return nil, err
	}

	// A member callee makes a method call: this is the receiver. Any other
	// callee is a plain call with the root context as this.
	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		ref, err := i.compileReference(member)
		if err != nil {
			return nil, err
		}
		return func(ast.Node) completion {
			r, c := ref()
			if c.isAbrupt() {
				return c
			}
			callee, err := r.get()
			if err != nil {
				return hostThrow(err)
			}
			values, ac := i.evaluateArguments(args)
			if ac.isAbrupt() {
				return ac
			}
			result, err := runtime.Call(callee, r.base, values)
			if err != nil {
				return hostThrow(err)
			}
			return valueCompletion(result)
		}, nil
	}

	callee, err := i.compileExpression(n.Callee)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		cc := callee(nil)
		if cc.isAbrupt() {
			return cc
		}
		values, ac := i.evaluateArguments(args)
		if ac.isAbrupt() {
			return ac
		}
		result, err := runtime.Call(cc.value, i.rootContext, values)
		if err != nil {
			return hostThrow(err)
		}
		return valueCompletion(result)
	}, nil
}

func (i *Interpreter) compileNew(n *ast.NewExpression) (thunk, error) {
	callee, err := i.compileExpression(n.Callee)
	if err != nil {
		return nil, err
	}
	args, err := i.compileArguments(n.Arguments)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		cc := callee(nil)
		if cc.isAbrupt() {
			return cc
		}
		values, ac := i.evaluateArguments(args)
		if ac.isAbrupt() {
			return ac
		}
		result, err := runtime.Construct(cc.value, values)
		if err != nil {
			return hostThrow(err)
		}
		return valueCompletion(result)
	}, nil
}

func (i *Interpreter) compileMember(n *ast.MemberExpression) (thunk, error) {
	ref, err := i.compileReference(n)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		r, c := ref()
		if c.isAbrupt() {
			return c
		}
		value, err := r.get()
		if err != nil {
			return hostThrow(err)
		}
		return valueCompletion(value)
	}, nil
}

func (i *Interpreter) compileSequence(n *ast.SequenceExpression) (thunk, error) {
	thunks := make([]thunk, 0, len(n.Expressions))
	for _, expr := range n.Expressions {
		t, err := i.compileExpression(expr)
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, t)
	}
	return func(ast.Node) completion {
		result := valueCompletion(runtime.Undefined)
		for _, t := range thunks {
			c := t(nil)
			if c.isAbrupt() {
				return c
			}
			result = c
		}
		return result
	}, nil
}

