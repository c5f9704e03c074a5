package interpreter

import (
	"fmt"

	"skim/interpreter-go/pkg/ast"
	"skim/interpreter-go/pkg/runtime"
)

// funcFrame collects the hoisted declarations of one function body (or of the
// program) during compilation. Bindings are installed into the activation
// scope before any statement runs.
type funcFrame struct {
	vars    []string
	varSeen map[string]struct{}
	funcs   []hoistedFunc
}

type hoistedFunc struct {
	name string
	fn   *compiledFunction
}

func newFuncFrame() *funcFrame {
	return &funcFrame{varSeen: make(map[string]struct{})}
}

func (f *funcFrame) hoistVar(name string) {
	if _, ok := f.varSeen[name]; ok {
		return
	}
	f.varSeen[name] = struct{}{}
	f.vars = append(f.vars, name)
}

func (f *funcFrame) hoistFunc(name string, fn *compiledFunction) {
	f.funcs = append(f.funcs, hoistedFunc{name: name, fn: fn})
}

// compiledFunction is the compile-time record of a function literal: the
// pre-compiled body, the parameter names, the hoisted declarations of the
// body, and the byte range backing the source slice.
type compiledFunction struct {
	name     string
	selfName string
	params   []string
	body     []thunk
	frame    *funcFrame
	start    int
	end      int
}

func (i *Interpreter) compileFunctionLiteral(id *ast.Identifier, params []*ast.Identifier, body *ast.BlockStatement, node ast.Node, declaration bool) (*compiledFunction, error) {
	frame := newFuncFrame()
	prev := i.frame
	i.frame = frame
	thunks, err := i.compileStatements(body.Body)
	i.frame = prev
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(params))
	for _, param := range params {
		if param == nil {
			return nil, fmt.Errorf("non-identifier parameters are not supported")
		}
		names = append(names, param.Name)
	}

	start, end := node.Range()
	cf := &compiledFunction{params: names, body: thunks, frame: frame, start: start, end: end}
	if id != nil {
		cf.name = id.Name
		if !declaration {
			// A named function expression sees its own name as a binding
			// inside the body only.
			cf.selfName = id.Name
		}
	}
	return cf, nil
}

// makeFunction turns a compiled function into a callable value closing over
// the scope in effect at its defining thunk. Each invocation gets a fresh
// activation frame whose parent is that captured scope.
func (i *Interpreter) makeFunction(cf *compiledFunction, closure *scope) *runtime.FunctionValue {
	source := ""
	if cf.start >= 0 && cf.end <= len(i.source) && cf.start < cf.end {
		source = i.source[cf.start:cf.end]
	}
	fn := runtime.NewFunction(cf.name, len(cf.params), source, nil)
	fn.Invoke = func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if err := i.checkDeadline(); err != nil {
			return nil, err
		}
		if this == nil {
			this = i.rootContext
		}

		i.callStack = append(i.callStack, fmt.Sprintf("%s(%d,%d)", cf.name, cf.start, cf.end))
		activation := newScope(cf.name, closure)
		activation.data["arguments"] = runtime.NewArray(append([]runtime.Value{}, args...))
		if cf.selfName != "" {
			activation.data[cf.selfName] = fn
		}
		for idx, name := range cf.params {
			var arg runtime.Value = runtime.Undefined
			if idx < len(args) {
				arg = args[idx]
			}
			activation.data[name] = arg
		}
		i.bindFrame(cf.frame, activation)

		prevScope, prevContext := i.scope, i.context
		i.scope, i.context = activation, this
		result := i.runBlock(cf.body, nil)
		i.scope, i.context = prevScope, prevContext
		i.callStack = i.callStack[:len(i.callStack)-1]

		switch result.kind {
		case completionThrow:
			return nil, runtime.Raise(result.value)
		case completionReturn:
			return result.value, nil
		default:
			return runtime.Undefined, nil
		}
	}
	return fn
}

// bindFrame installs hoisted bindings into a scope: var names to undefined
// when absent, function declarations to their values, overwriting only an
// undefined slot.
func (i *Interpreter) bindFrame(frame *funcFrame, s *scope) {
	for _, name := range frame.vars {
		if !s.has(name) {
			s.set(name, runtime.Undefined)
		}
	}
	for _, hf := range frame.funcs {
		fn := i.makeFunction(hf.fn, s)
		if s.has(hf.name) {
			if _, isUndefined := s.get(hf.name).(runtime.UndefinedValue); !isUndefined {
				continue
			}
		}
		s.set(hf.name, fn)
	}
}

// installFrame hoists the program-level frame into the root scope before the
// first statement runs.
func (i *Interpreter) installFrame(frame *funcFrame, root *scope) {
	i.bindFrame(frame, root)
}
