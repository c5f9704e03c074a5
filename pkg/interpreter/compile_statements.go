package interpreter

import (
	"fmt"

	"skim/interpreter-go/pkg/ast"
	"skim/interpreter-go/pkg/runtime"
)

func (i *Interpreter) compileBlock(n *ast.BlockStatement) (thunk, error) {
	thunks, err := i.compileStatements(n.Body)
	if err != nil {
		return nil, err
	}
	return func(parent ast.Node) completion {
		return i.runBlock(thunks, parent)
	}, nil
}

func (i *Interpreter) compileIf(n *ast.IfStatement) (thunk, error) {
	test, err := i.compileExpression(n.Test)
	if err != nil {
		return nil, err
	}
	consequent, err := i.compile(n.Consequent)
	if err != nil {
		return nil, err
	}
	var alternate thunk
	if n.Alternate != nil {
		alternate, err = i.compile(n.Alternate)
		if err != nil {
			return nil, err
		}
	}
	return func(ast.Node) completion {
		tc := test(nil)
		if tc.isAbrupt() {
			return tc
		}
		if runtime.ToBoolean(tc.value) {
			return consequent(nil)
		}
		if alternate != nil {
			return alternate(nil)
		}
		return emptyCompletion
	}, nil
}

// loopEngine is the shared engine behind for, while and do-while: init/test/
// update are optional, a missing test defaults to true, and forceFirst makes
// do-while run its body before the first test. The engine recognizes its own
// label through the parent node.
func (i *Interpreter) loopEngine(init, test, update, body thunk, forceFirst bool) thunk {
	return func(parent ast.Node) completion {
		label := ""
		if labeled, ok := parent.(*ast.LabeledStatement); ok && labeled.Label != nil {
			label = labeled.Label.Name
		}
		if init != nil {
			if c := init(nil); c.isAbrupt() {
				return c
			}
		}
		result := emptyCompletion
		first := true
		for {
			if err := i.checkDeadline(); err != nil {
				return hostThrow(err)
			}
			if !(first && forceFirst) {
				if test != nil {
					tc := test(nil)
					if tc.isAbrupt() {
						return tc
					}
					if !runtime.ToBoolean(tc.value) {
						break
					}
				}
			}
			first = false

			bc := body(nil)
			switch bc.kind {
			case completionEmpty, completionContinue:
			case completionBreak:
				return result
			case completionContinueLabel:
				if bc.label != label {
					return bc
				}
			case completionBreakLabel, completionReturn, completionThrow:
				return bc
			default:
				result = bc
			}

			if update != nil {
				if uc := update(nil); uc.isAbrupt() {
					return uc
				}
			}
		}
		return result
	}
}

func (i *Interpreter) compileFor(n *ast.ForStatement) (thunk, error) {
	var init, test, update thunk
	var err error
	if n.Init != nil {
		init, err = i.compile(n.Init)
		if err != nil {
			return nil, err
		}
	}
	if n.Test != nil {
		test, err = i.compileExpression(n.Test)
		if err != nil {
			return nil, err
		}
	}
	if n.Update != nil {
		update, err = i.compileExpression(n.Update)
		if err != nil {
			return nil, err
		}
	}
	body, err := i.compile(n.Body)
	if err != nil {
		return nil, err
	}
	return i.loopEngine(init, test, update, body, false), nil
}

func (i *Interpreter) compileWhile(n *ast.WhileStatement) (thunk, error) {
	test, err := i.compileExpression(n.Test)
	if err != nil {
		return nil, err
	}
	body, err := i.compile(n.Body)
	if err != nil {
		return nil, err
	}
	return i.loopEngine(nil, test, nil, body, false), nil
}

func (i *Interpreter) compileDoWhile(n *ast.DoWhileStatement) (thunk, error) {
	body, err := i.compile(n.Body)
	if err != nil {
		return nil, err
	}
	test, err := i.compileExpression(n.Test)
	if err != nil {
		return nil, err
	}
	return i.loopEngine(nil, test, nil, body, true), nil
}

func (i *Interpreter) compileForIn(n *ast.ForInStatement) (thunk, error) {
	var preRun thunk
	var target ast.Expression
	switch left := n.Left.(type) {
	case *ast.VariableDeclaration:
		if len(left.Declarations) != 1 || left.Declarations[0].ID == nil {
			return nil, fmt.Errorf("for-in declaration must bind a single identifier")
		}
		var err error
		preRun, err = i.compile(left)
		if err != nil {
			return nil, err
		}
		target = left.Declarations[0].ID
	case ast.Expression:
		target = left
	default:
		return nil, fmt.Errorf("invalid for-in target: %s", n.Left.NodeType())
	}

	ref, err := i.compileReference(target)
	if err != nil {
		return nil, err
	}
	right, err := i.compileExpression(n.Right)
	if err != nil {
		return nil, err
	}
	body, err := i.compile(n.Body)
	if err != nil {
		return nil, err
	}

	return func(parent ast.Node) completion {
		label := ""
		if labeled, ok := parent.(*ast.LabeledStatement); ok && labeled.Label != nil {
			label = labeled.Label.Name
		}
		if preRun != nil {
			if c := preRun(nil); c.isAbrupt() {
				return c
			}
		}
		rc := right(nil)
		if rc.isAbrupt() {
			return rc
		}
		result := emptyCompletion
		for _, key := range runtime.EnumerateKeys(rc.value) {
			if err := i.checkDeadline(); err != nil {
				return hostThrow(err)
			}
			r, c := ref()
			if c.isAbrupt() {
				return c
			}
			if err := r.set(runtime.String(key)); err != nil {
				return hostThrow(err)
			}

			bc := body(nil)
			switch bc.kind {
			case completionEmpty, completionContinue:
			case completionBreak:
				return result
			case completionContinueLabel:
				if bc.label != label {
					return bc
				}
			case completionBreakLabel, completionReturn, completionThrow:
				return bc
			default:
				result = bc
			}
		}
		return result
	}, nil
}

// compileWith overlays the object's enumerable properties onto a fresh child
// scope. Mutations inside the body hit the overlay table, not the object.
func (i *Interpreter) compileWith(n *ast.WithStatement) (thunk, error) {
	object, err := i.compileExpression(n.Object)
	if err != nil {
		return nil, err
	}
	body, err := i.compile(n.Body)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		oc := object(nil)
		if oc.isAbrupt() {
			return oc
		}
		overlay := newScope("with", i.scope)
		for _, key := range runtime.EnumerateKeys(oc.value) {
			value, err := runtime.GetProperty(oc.value, key)
			if err != nil {
				return hostThrow(err)
			}
			overlay.data[key] = value
		}
		prev := i.scope
		i.scope = overlay
		c := body(nil)
		i.scope = prev
		return c
	}, nil
}

type switchCase struct {
	test thunk
	body []thunk
}

// defaultCaseThunk is the sentinel test installed for a default clause: the
// case scan skips it without comparing, so the default only runs through
// fall-through or when no case matched.
func defaultCaseThunk(ast.Node) completion {
	return completion{kind: completionDefaultCase}
}

func (i *Interpreter) compileSwitch(n *ast.SwitchStatement) (thunk, error) {
	discriminant, err := i.compileExpression(n.Discriminant)
	if err != nil {
		return nil, err
	}
	cases := make([]switchCase, 0, len(n.Cases))
	for _, c := range n.Cases {
		entry := switchCase{test: defaultCaseThunk}
		if c.Test != nil {
			entry.test, err = i.compileExpression(c.Test)
			if err != nil {
				return nil, err
			}
		}
		entry.body, err = i.compileStatements(c.Consequent)
		if err != nil {
			return nil, err
		}
		cases = append(cases, entry)
	}

	return func(ast.Node) completion {
		dc := discriminant(nil)
		if dc.isAbrupt() {
			return dc
		}
		result := emptyCompletion
		runFrom := -1
		defaultIdx := -1
		for idx, entry := range cases {
			tc := entry.test(nil)
			if tc.kind == completionDefaultCase {
				defaultIdx = idx
				continue
			}
			if tc.isAbrupt() {
				return tc
			}
			if runtime.StrictEquals(tc.value, dc.value) {
				runFrom = idx
				break
			}
		}
		if runFrom < 0 {
			runFrom = defaultIdx
		}
		if runFrom < 0 {
			return result
		}
		for idx := runFrom; idx < len(cases); idx++ {
			bc := i.runBlock(cases[idx].body, nil)
			switch bc.kind {
			case completionEmpty:
			case completionBreak, completionContinue:
				return result
			case completionBreakLabel, completionContinueLabel, completionReturn, completionThrow:
				return bc
			default:
				result = bc
			}
		}
		return result
	}, nil
}

func (i *Interpreter) compileLabeled(n *ast.LabeledStatement) (thunk, error) {
	if n.Label == nil {
		return nil, fmt.Errorf("labeled statement requires a label")
	}
	label := n.Label.Name
	body, err := i.compile(n.Body)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		s := i.scope
		s.pushLabel(label)
		c := body(n)
		s.popLabel()
		if c.kind == completionBreakLabel && c.label == label {
			return valueCompletion(runtime.Undefined)
		}
		return c
	}, nil
}

func (i *Interpreter) compileReturn(n *ast.ReturnStatement) (thunk, error) {
	var argument thunk
	if n.Argument != nil {
		var err error
		argument, err = i.compileExpression(n.Argument)
		if err != nil {
			return nil, err
		}
	}
	return func(ast.Node) completion {
		if argument == nil {
			return returnCompletion(runtime.Undefined)
		}
		c := argument(nil)
		if c.isAbrupt() {
			return c
		}
		return returnCompletion(c.value)
	}, nil
}

func (i *Interpreter) compileThrow(n *ast.ThrowStatement) (thunk, error) {
	argument, err := i.compileExpression(n.Argument)
	if err != nil {
		return nil, err
	}
	return func(ast.Node) completion {
		c := argument(nil)
		if c.isAbrupt() {
			return c
		}
		return throwCompletion(c.value)
	}, nil
}

// compileTry implements the catch/finally precedence rules: a finally result
// that is itself a signal supersedes whatever try or catch produced. The
// catch binding is transactional in the current scope.
func (i *Interpreter) compileTry(n *ast.TryStatement) (thunk, error) {
	tryBody, err := i.compileStatements(n.Block.Body)
	if err != nil {
		return nil, err
	}
	var handlerBody []thunk
	handlerParam := ""
	if n.Handler != nil {
		if n.Handler.Param == nil {
			return nil, fmt.Errorf("catch clause requires a parameter")
		}
		handlerParam = n.Handler.Param.Name
		handlerBody, err = i.compileStatements(n.Handler.Body.Body)
		if err != nil {
			return nil, err
		}
	}
	var finalBody []thunk
	if n.Finalizer != nil {
		finalBody, err = i.compileStatements(n.Finalizer.Body)
		if err != nil {
			return nil, err
		}
	}

	return func(ast.Node) completion {
		result := i.runBlock(tryBody, nil)

		if result.kind == completionThrow && handlerBody != nil {
			s := i.scope
			had := s.has(handlerParam)
			var saved runtime.Value
			if had {
				saved = s.get(handlerParam)
			}
			s.set(handlerParam, result.value)
			result = i.runBlock(handlerBody, nil)
			if had {
				s.set(handlerParam, saved)
			} else {
				s.delete(handlerParam)
			}
		}

		if finalBody != nil {
			fc := i.runBlock(finalBody, nil)
			if fc.isAbrupt() {
				return fc
			}
		}
		return result
	}, nil
}

func (i *Interpreter) compileBreak(n *ast.BreakStatement) (thunk, error) {
	if n.Label == nil {
		return func(ast.Node) completion {
			return completion{kind: completionBreak}
		}, nil
	}
	label := n.Label.Name
	return func(ast.Node) completion {
		if !i.scope.hasActiveLabel(label) {
			return hostThrow(runtime.RaiseError("SyntaxError", "unknown break label %q", label))
		}
		return completion{kind: completionBreakLabel, label: label}
	}, nil
}

func (i *Interpreter) compileContinue(n *ast.ContinueStatement) (thunk, error) {
	if n.Label == nil {
		return func(ast.Node) completion {
			return completion{kind: completionContinue}
		}, nil
	}
	label := n.Label.Name
	return func(ast.Node) completion {
		if !i.scope.hasActiveLabel(label) {
			return hostThrow(runtime.RaiseError("SyntaxError", "unknown continue label %q", label))
		}
		return completion{kind: completionContinueLabel, label: label}
	}, nil
}

// compileVariableDeclaration hoists each declared name at compile time;
// initializers become synthetic assignments run by the declaration's thunk.
func (i *Interpreter) compileVariableDeclaration(n *ast.VariableDeclaration) (thunk, error) {
	assignments := make([]thunk, 0, len(n.Declarations))
	for _, decl := range n.Declarations {
		if decl.ID == nil {
			return nil, fmt.Errorf("variable declarator requires an identifier")
		}
		i.frame.hoistVar(decl.ID.Name)
		if decl.Init == nil {
			continue
		}
		assign, err := i.compileAssignment(ast.NewAssignmentExpression("=", decl.ID, decl.Init))
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assign)
	}
	if len(assignments) == 0 {
		return func(ast.Node) completion { return emptyCompletion }, nil
	}
	return func(ast.Node) completion {
		for _, assign := range assignments {
			if c := assign(nil); c.isAbrupt() {
				return c
			}
		}
		return emptyCompletion
	}, nil
}

// compileFunctionDeclaration installs the function at frame-binding time; the
// statement itself is a no-op at run time.
func (i *Interpreter) compileFunctionDeclaration(n *ast.FunctionDeclaration) (thunk, error) {
	if n.ID == nil {
		return nil, fmt.Errorf("function declaration requires an identifier")
	}
	cf, err := i.compileFunctionLiteral(n.ID, n.Params, n.Body, n, true)
	if err != nil {
		return nil, err
	}
	i.frame.hoistFunc(n.ID.Name, cf)
	return func(ast.Node) completion { return emptyCompletion }, nil
}
