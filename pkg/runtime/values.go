package runtime

import "fmt"

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Objects
//-----------------------------------------------------------------------------

// Property is one slot of an object: either a data property or an
// accessor pair. Getter/Setter hold callable values when present.
type Property struct {
	Value        Value
	Getter       Value
	Setter       Value
	Enumerable   bool
	Configurable bool
}

func (p *Property) IsAccessor() bool {
	return p != nil && (p.Getter != nil || p.Setter != nil)
}

// ObjectValue keeps properties in insertion order so for-in enumeration
// is deterministic.
type ObjectValue struct {
	Class string
	Proto *ObjectValue
	props map[string]*Property
	keys  []string
}

func NewObject() *ObjectValue {
	return &ObjectValue{Class: "Object", props: make(map[string]*Property)}
}

func NewObjectWithProto(proto *ObjectValue) *ObjectValue {
	obj := NewObject()
	obj.Proto = proto
	return obj
}

func (v *ObjectValue) Kind() Kind { return KindObject }

// OwnProperty returns the property slot without consulting the prototype.
func (v *ObjectValue) OwnProperty(name string) (*Property, bool) {
	prop, ok := v.props[name]
	return prop, ok
}

func (v *ObjectValue) lookup(name string) (*Property, bool) {
	for obj := v; obj != nil; obj = obj.Proto {
		if prop, ok := obj.props[name]; ok {
			return prop, true
		}
	}
	return nil, false
}

// Set installs or replaces a data property.
func (v *ObjectValue) Set(name string, value Value) {
	if prop, ok := v.props[name]; ok {
		prop.Value = value
		prop.Getter = nil
		prop.Setter = nil
		return
	}
	v.props[name] = &Property{Value: value, Enumerable: true, Configurable: true}
	v.keys = append(v.keys, name)
}

// DefineAccessor installs a getter/setter pair, merging with an existing
// accessor slot for the same key.
func (v *ObjectValue) DefineAccessor(name string, getter Value, setter Value) {
	if prop, ok := v.props[name]; ok {
		prop.Value = nil
		if getter != nil {
			prop.Getter = getter
		}
		if setter != nil {
			prop.Setter = setter
		}
		return
	}
	v.props[name] = &Property{Getter: getter, Setter: setter, Enumerable: true, Configurable: true}
	v.keys = append(v.keys, name)
}

func (v *ObjectValue) Has(name string) bool {
	_, ok := v.lookup(name)
	return ok
}

func (v *ObjectValue) HasOwn(name string) bool {
	_, ok := v.props[name]
	return ok
}

func (v *ObjectValue) Delete(name string) bool {
	if _, ok := v.props[name]; !ok {
		return true
	}
	delete(v.props, name)
	for i, key := range v.keys {
		if key == name {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns own enumerable property names in insertion order.
func (v *ObjectValue) Keys() []string {
	out := make([]string, 0, len(v.keys))
	for _, key := range v.keys {
		if prop, ok := v.props[key]; ok && prop.Enumerable {
			out = append(out, key)
		}
	}
	return out
}

//-----------------------------------------------------------------------------
// Arrays
//-----------------------------------------------------------------------------

type ArrayValue struct {
	Elements []Value
}

func NewArray(elements []Value) *ArrayValue {
	if elements == nil {
		elements = make([]Value, 0)
	}
	return &ArrayValue{Elements: elements}
}

func (v *ArrayValue) Kind() Kind { return KindArray }

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// CallFunc is the host-callable shape shared by interpreted and native
// functions. A scripted `throw` crosses this boundary as a Thrown error.
type CallFunc func(this Value, args []Value) (Value, error)

// FunctionValue is an interpreter-created function. Name and Length report
// the source name and declared arity; Source holds the text slice backing
// toString/valueOf. Invoke is installed by the evaluator and closes over the
// compiled body thunk and the captured lexical scope.
type FunctionValue struct {
	Name   string
	Length int
	Source string
	Invoke CallFunc
	props  *ObjectValue
}

func NewFunction(name string, length int, source string, invoke CallFunc) *FunctionValue {
	fn := &FunctionValue{Name: name, Length: length, Source: source, Invoke: invoke, props: NewObject()}
	fn.props.Set("prototype", NewObject())
	return fn
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// Properties exposes the function's own property table (prototype and any
// user-assigned keys).
func (v *FunctionValue) Properties() *ObjectValue { return v.props }

type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  CallFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

//-----------------------------------------------------------------------------
// Shared singletons
//-----------------------------------------------------------------------------

var (
	Undefined = UndefinedValue{}
	Null      = NullValue{}
	True      = BoolValue{Val: true}
	False     = BoolValue{Val: false}
)

func Boolean(b bool) BoolValue {
	if b {
		return True
	}
	return False
}

func Number(f float64) NumberValue { return NumberValue{Val: f} }

func String(s string) StringValue { return StringValue{Val: s} }
