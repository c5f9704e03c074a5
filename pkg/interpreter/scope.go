package interpreter

import "skim/interpreter-go/pkg/runtime"

// scope is one lexical frame. The root frame's data is backed directly by
// the caller-supplied global object, so assignments to undeclared names land
// on the global. Non-root frames hold a plain binding table.
type scope struct {
	name       string
	parent     *scope
	object     *runtime.ObjectValue
	data       map[string]runtime.Value
	labelStack []string
}

func newScope(name string, parent *scope) *scope {
	return &scope{name: name, parent: parent, data: make(map[string]runtime.Value)}
}

func newRootScope(global *runtime.ObjectValue) *scope {
	return &scope{name: "root", object: global}
}

func (s *scope) isRoot() bool { return s.parent == nil }

func (s *scope) root() *scope {
	frame := s
	for frame.parent != nil {
		frame = frame.parent
	}
	return frame
}

func (s *scope) has(name string) bool {
	if s.object != nil {
		return s.object.HasOwn(name)
	}
	_, ok := s.data[name]
	return ok
}

func (s *scope) get(name string) runtime.Value {
	if s.object != nil {
		if prop, ok := s.object.OwnProperty(name); ok && !prop.IsAccessor() {
			return prop.Value
		}
		if v, err := runtime.GetProperty(s.object, name); err == nil {
			return v
		}
		return runtime.Undefined
	}
	if v, ok := s.data[name]; ok {
		return v
	}
	return runtime.Undefined
}

func (s *scope) set(name string, value runtime.Value) {
	if s.object != nil {
		s.object.Set(name, value)
		return
	}
	s.data[name] = value
}

func (s *scope) delete(name string) bool {
	if s.object != nil {
		return s.object.Delete(name)
	}
	delete(s.data, name)
	return true
}

// resolve walks parent links for the nearest frame containing name; if no
// frame has it the root is the home, so undeclared names read as undefined
// and undeclared assignments create globals.
func (s *scope) resolve(name string) *scope {
	for frame := s; frame != nil; frame = frame.parent {
		if frame.has(name) {
			return frame
		}
		if frame.parent == nil {
			return frame
		}
	}
	return s.root()
}

func (s *scope) pushLabel(label string) {
	s.labelStack = append(s.labelStack, label)
}

func (s *scope) popLabel() {
	if len(s.labelStack) > 0 {
		s.labelStack = s.labelStack[:len(s.labelStack)-1]
	}
}

// hasActiveLabel reports whether label is live anywhere on the scope chain.
func (s *scope) hasActiveLabel(label string) bool {
	for frame := s; frame != nil; frame = frame.parent {
		for _, active := range frame.labelStack {
			if active == label {
				return true
			}
		}
	}
	return false
}
