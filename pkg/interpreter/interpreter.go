package interpreter

import (
	"fmt"
	"time"

	"skim/interpreter-go/pkg/ast"
	"skim/interpreter-go/pkg/runtime"
)

// ParseFunc turns source text into an ESTree program. The evaluator never
// parses on its own; callers wire pkg/parser (or any external parser whose
// output round-trips through ast.DecodeProgram).
type ParseFunc func(source string) (*ast.Program, error)

// Options configures an Interpreter. A zero Timeout disables the budget; a
// positive one is enforced by periodic deadline checks inside the loop
// engines and surfaces as a thrown RangeError.
type Options struct {
	Timeout time.Duration
	Parse   ParseFunc
}

// Interpreter evaluates ESTree programs against a host global object. Each
// AST node is compiled once into a thunk; the thunks communicate non-local
// transfers through completion signals.
type Interpreter struct {
	global  *runtime.ObjectValue
	options Options

	root        *scope
	scope       *scope
	context     runtime.Value
	rootContext runtime.Value
	callStack   []string
	lastValue   runtime.Value
	source      string
	deadline    time.Time

	frame *funcFrame
}

// New returns an interpreter rooted at the given global object. A nil global
// gets a fresh empty object.
func New(global *runtime.ObjectValue, options Options) *Interpreter {
	if global == nil {
		global = runtime.NewObject()
	}
	return &Interpreter{
		global:    global,
		options:   options,
		lastValue: runtime.Undefined,
	}
}

// Global exposes the interpreter's global object.
func (i *Interpreter) Global() *runtime.ObjectValue { return i.global }

// Value returns the last recorded top-level statement value.
func (i *Interpreter) Value() runtime.Value {
	if i.lastValue == nil {
		return runtime.Undefined
	}
	return i.lastValue
}

// CallStack returns the active frame labels ("<name>(<start>,<end>)"). Empty
// outside of execution.
func (i *Interpreter) CallStack() []string {
	out := make([]string, len(i.callStack))
	copy(out, i.callStack)
	return out
}

// Evaluate parses source with the configured ParseFunc and evaluates it.
func (i *Interpreter) Evaluate(source string) (runtime.Value, error) {
	if i.options.Parse == nil {
		return nil, fmt.Errorf("no parser configured; use EvaluateNode or set Options.Parse")
	}
	program, err := i.options.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return i.run(program, source, i.global)
}

// EvaluateNode evaluates an already-parsed program. The original source is
// required so function values can slice their text for toString/valueOf.
func (i *Interpreter) EvaluateNode(program *ast.Program, source string) (runtime.Value, error) {
	return i.run(program, source, i.global)
}

// EvaluateNodeIn evaluates a program against a replacement global object.
func (i *Interpreter) EvaluateNodeIn(program *ast.Program, source string, global *runtime.ObjectValue) (runtime.Value, error) {
	if global == nil {
		global = i.global
	}
	return i.run(program, source, global)
}

// CallFunction invokes a scripted (or native) function value from the host,
// with the global object as receiver.
func (i *Interpreter) CallFunction(fn runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return runtime.Call(fn, i.global, args)
}

func (i *Interpreter) run(program *ast.Program, source string, global *runtime.ObjectValue) (runtime.Value, error) {
	i.source = source
	root := newRootScope(global)
	i.root = root
	i.scope = root
	i.context = global
	i.rootContext = global
	i.callStack = i.callStack[:0]
	i.lastValue = runtime.Undefined
	if i.options.Timeout > 0 {
		i.deadline = time.Now().Add(i.options.Timeout)
	} else {
		i.deadline = time.Time{}
	}

	i.frame = newFuncFrame()
	body, err := i.compileStatements(program.Body)
	if err != nil {
		return nil, err
	}
	i.installFrame(i.frame, root)

	result := i.runBlock(body, nil)
	if result.kind == completionThrow {
		return nil, runtime.Raise(result.value)
	}
	// Signals escaping the program body (a top-level break/continue) are
	// discarded.
	return i.Value(), nil
}

// setValue records the top-level last-expression value: only while no call
// frame is active, and never a control-flow signal. Return payloads are
// unwrapped before storing.
func (i *Interpreter) setValue(c completion) {
	if len(i.callStack) > 0 {
		return
	}
	switch c.kind {
	case completionValue, completionReturn:
		i.lastValue = c.value
	}
}

// runBlock executes pre-compiled statement thunks with block semantics:
// record non-empty results, stop on the first signal and propagate it.
func (i *Interpreter) runBlock(thunks []thunk, parent ast.Node) completion {
	result := emptyCompletion
	for _, t := range thunks {
		c := t(parent)
		if c.isAbrupt() {
			return c
		}
		if c.kind != completionEmpty {
			i.setValue(c)
			result = c
		}
	}
	return result
}

func (i *Interpreter) checkDeadline() error {
	if i.deadline.IsZero() {
		return nil
	}
	if time.Now().After(i.deadline) {
		return runtime.RaiseError("RangeError", "script timeout after %s", i.options.Timeout)
	}
	return nil
}
