package runtime

import (
	"math"
	"strconv"
	"strings"
)

func arrayIndex(name string) (int, bool) {
	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// GetProperty resolves base[key]. Function receivers report their declared
// arity and source name for "length" and "name", and their source text for
// toString/valueOf, so interpreter-created functions introspect correctly.
func GetProperty(base Value, key string) (Value, error) {
	switch b := base.(type) {
	case UndefinedValue, NullValue:
		return nil, RaiseError("TypeError", "cannot read property %q of %s", key, ToString(base))
	case *ObjectValue:
		if prop, ok := b.lookup(key); ok {
			if prop.IsAccessor() {
				if prop.Getter == nil {
					return Undefined, nil
				}
				return Call(prop.Getter, base, nil)
			}
			return prop.Value, nil
		}
		if method, ok := objectMethod(b, key); ok {
			return method, nil
		}
		return Undefined, nil
	case *ArrayValue:
		if key == "length" {
			return Number(float64(len(b.Elements))), nil
		}
		if idx, ok := arrayIndex(key); ok {
			if idx < len(b.Elements) {
				return b.Elements[idx], nil
			}
			return Undefined, nil
		}
		if method, ok := arrayMethod(b, key); ok {
			return method, nil
		}
		return Undefined, nil
	case StringValue:
		if key == "length" {
			return Number(float64(len(b.Val))), nil
		}
		if idx, ok := arrayIndex(key); ok {
			if idx < len(b.Val) {
				return String(b.Val[idx : idx+1]), nil
			}
			return Undefined, nil
		}
		if method, ok := stringMethod(b, key); ok {
			return method, nil
		}
		return Undefined, nil
	case *FunctionValue:
		switch key {
		case "length":
			return Number(float64(b.Length)), nil
		case "name":
			return String(b.Name), nil
		case "toString", "valueOf":
			source := b.Source
			return NativeFunctionValue{Name: key, Impl: func(Value, []Value) (Value, error) {
				return String(source), nil
			}}, nil
		case "call":
			return functionCallMethod(b), nil
		case "apply":
			return functionApplyMethod(b), nil
		}
		if prop, ok := b.props.lookup(key); ok {
			if prop.IsAccessor() {
				if prop.Getter == nil {
					return Undefined, nil
				}
				return Call(prop.Getter, base, nil)
			}
			return prop.Value, nil
		}
		return Undefined, nil
	case NativeFunctionValue:
		switch key {
		case "length":
			return Number(float64(b.Arity)), nil
		case "name":
			return String(b.Name), nil
		}
		return Undefined, nil
	case NumberValue, BoolValue:
		if key == "toString" {
			self := base
			return NativeFunctionValue{Name: "toString", Impl: func(Value, []Value) (Value, error) {
				return String(ToString(self)), nil
			}}, nil
		}
		return Undefined, nil
	default:
		return Undefined, nil
	}
}

// SetProperty assigns base[key] = value. Assignments to primitive receivers
// are silently ignored, matching non-strict semantics.
func SetProperty(base Value, key string, value Value) error {
	switch b := base.(type) {
	case UndefinedValue, NullValue:
		return RaiseError("TypeError", "cannot set property %q of %s", key, ToString(base))
	case *ObjectValue:
		if prop, ok := b.lookup(key); ok && prop.IsAccessor() {
			if prop.Setter == nil {
				return nil
			}
			_, err := Call(prop.Setter, base, []Value{value})
			return err
		}
		b.Set(key, value)
		return nil
	case *ArrayValue:
		if key == "length" {
			return setArrayLength(b, value)
		}
		if idx, ok := arrayIndex(key); ok {
			for len(b.Elements) <= idx {
				b.Elements = append(b.Elements, Undefined)
			}
			b.Elements[idx] = value
			return nil
		}
		return nil
	case *FunctionValue:
		b.props.Set(key, value)
		return nil
	default:
		return nil
	}
}

func setArrayLength(arr *ArrayValue, value Value) error {
	f := ToNumber(value)
	n := int(f)
	if f != float64(n) || n < 0 {
		return RaiseError("RangeError", "invalid array length")
	}
	for len(arr.Elements) < n {
		arr.Elements = append(arr.Elements, Undefined)
	}
	arr.Elements = arr.Elements[:n]
	return nil
}

// DeleteProperty removes base[key], reporting whether the deletion succeeded.
func DeleteProperty(base Value, key string) (bool, error) {
	switch b := base.(type) {
	case UndefinedValue, NullValue:
		return false, RaiseError("TypeError", "cannot delete property %q of %s", key, ToString(base))
	case *ObjectValue:
		return b.Delete(key), nil
	case *ArrayValue:
		if idx, ok := arrayIndex(key); ok && idx < len(b.Elements) {
			b.Elements[idx] = Undefined
		}
		return true, nil
	case *FunctionValue:
		return b.props.Delete(key), nil
	default:
		return true, nil
	}
}

// EnumerateKeys lists enumerable property names in the order for-in visits
// them: insertion order for objects, index order for arrays and strings.
func EnumerateKeys(v Value) []string {
	switch val := v.(type) {
	case *ObjectValue:
		return val.Keys()
	case *ArrayValue:
		keys := make([]string, 0, len(val.Elements))
		for i := range val.Elements {
			keys = append(keys, strconv.Itoa(i))
		}
		return keys
	case StringValue:
		keys := make([]string, 0, len(val.Val))
		for i := range val.Val {
			keys = append(keys, strconv.Itoa(i))
		}
		return keys
	case *FunctionValue:
		return val.props.Keys()
	default:
		return nil
	}
}

// Call invokes any callable value with the given receiver.
func Call(callee Value, this Value, args []Value) (Value, error) {
	switch fn := callee.(type) {
	case *FunctionValue:
		if fn.Invoke == nil {
			return nil, RaiseError("TypeError", "function %q has no body", fn.Name)
		}
		return fn.Invoke(this, args)
	case NativeFunctionValue:
		if fn.Impl == nil {
			return nil, RaiseError("TypeError", "native function %q has no implementation", fn.Name)
		}
		return fn.Impl(this, args)
	default:
		return nil, RaiseError("TypeError", "%s is not a function", ToString(callee))
	}
}

// Construct implements the new operator: allocate with the constructor's
// prototype, invoke, and keep the allocated object unless the constructor
// returned another object.
func Construct(callee Value, args []Value) (Value, error) {
	fn, ok := callee.(*FunctionValue)
	if !ok {
		if native, ok := callee.(NativeFunctionValue); ok {
			return Call(native, Undefined, args)
		}
		return nil, RaiseError("TypeError", "%s is not a constructor", ToString(callee))
	}
	obj := NewObject()
	if prop, ok := fn.props.OwnProperty("prototype"); ok {
		if proto, ok := prop.Value.(*ObjectValue); ok {
			obj.Proto = proto
		}
	}
	result, err := Call(fn, obj, args)
	if err != nil {
		return nil, err
	}
	switch result.(type) {
	case *ObjectValue, *ArrayValue, *FunctionValue:
		return result, nil
	default:
		return obj, nil
	}
}

func functionCallMethod(fn *FunctionValue) NativeFunctionValue {
	return NativeFunctionValue{Name: "call", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
		var this Value = Undefined
		if len(args) > 0 {
			this = args[0]
			args = args[1:]
		} else {
			args = nil
		}
		return Call(fn, this, args)
	}}
}

func functionApplyMethod(fn *FunctionValue) NativeFunctionValue {
	return NativeFunctionValue{Name: "apply", Arity: 2, Impl: func(_ Value, args []Value) (Value, error) {
		var this Value = Undefined
		var callArgs []Value
		if len(args) > 0 {
			this = args[0]
		}
		if len(args) > 1 {
			arr, ok := args[1].(*ArrayValue)
			if !ok {
				if _, isNullish := args[1].(UndefinedValue); !isNullish {
					if _, isNull := args[1].(NullValue); !isNull {
						return nil, RaiseError("TypeError", "second argument to apply must be an array")
					}
				}
			} else {
				callArgs = arr.Elements
			}
		}
		return Call(fn, this, callArgs)
	}}
}

func objectMethod(obj *ObjectValue, key string) (Value, bool) {
	switch key {
	case "hasOwnProperty":
		return NativeFunctionValue{Name: "hasOwnProperty", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return False, nil
			}
			return Boolean(obj.HasOwn(ToString(args[0]))), nil
		}}, true
	case "toString":
		return NativeFunctionValue{Name: "toString", Impl: func(Value, []Value) (Value, error) {
			return String(ToString(obj)), nil
		}}, true
	default:
		return nil, false
	}
}

func arrayMethod(arr *ArrayValue, key string) (Value, bool) {
	switch key {
	case "push":
		return NativeFunctionValue{Name: "push", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			arr.Elements = append(arr.Elements, args...)
			return Number(float64(len(arr.Elements))), nil
		}}, true
	case "pop":
		return NativeFunctionValue{Name: "pop", Impl: func(Value, []Value) (Value, error) {
			if len(arr.Elements) == 0 {
				return Undefined, nil
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		}}, true
	case "shift":
		return NativeFunctionValue{Name: "shift", Impl: func(Value, []Value) (Value, error) {
			if len(arr.Elements) == 0 {
				return Undefined, nil
			}
			first := arr.Elements[0]
			arr.Elements = arr.Elements[1:]
			return first, nil
		}}, true
	case "unshift":
		return NativeFunctionValue{Name: "unshift", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			arr.Elements = append(append([]Value{}, args...), arr.Elements...)
			return Number(float64(len(arr.Elements))), nil
		}}, true
	case "join":
		return NativeFunctionValue{Name: "join", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			sep := ","
			if len(args) > 0 {
				if _, ok := args[0].(UndefinedValue); !ok {
					sep = ToString(args[0])
				}
			}
			parts := make([]string, 0, len(arr.Elements))
			for _, el := range arr.Elements {
				switch el.(type) {
				case UndefinedValue, NullValue:
					parts = append(parts, "")
				default:
					parts = append(parts, ToString(el))
				}
			}
			return String(strings.Join(parts, sep)), nil
		}}, true
	case "indexOf":
		return NativeFunctionValue{Name: "indexOf", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			for i, el := range arr.Elements {
				if StrictEquals(el, args[0]) {
					return Number(float64(i)), nil
				}
			}
			return Number(-1), nil
		}}, true
	case "slice":
		return NativeFunctionValue{Name: "slice", Arity: 2, Impl: func(_ Value, args []Value) (Value, error) {
			start, end := sliceBounds(len(arr.Elements), args)
			out := make([]Value, 0, end-start)
			out = append(out, arr.Elements[start:end]...)
			return NewArray(out), nil
		}}, true
	case "concat":
		return NativeFunctionValue{Name: "concat", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			out := append([]Value{}, arr.Elements...)
			for _, arg := range args {
				if other, ok := arg.(*ArrayValue); ok {
					out = append(out, other.Elements...)
				} else {
					out = append(out, arg)
				}
			}
			return NewArray(out), nil
		}}, true
	case "reverse":
		return NativeFunctionValue{Name: "reverse", Impl: func(Value, []Value) (Value, error) {
			for i, j := 0, len(arr.Elements)-1; i < j; i, j = i+1, j-1 {
				arr.Elements[i], arr.Elements[j] = arr.Elements[j], arr.Elements[i]
			}
			return arr, nil
		}}, true
	case "toString":
		return NativeFunctionValue{Name: "toString", Impl: func(Value, []Value) (Value, error) {
			return String(ToString(arr)), nil
		}}, true
	default:
		return nil, false
	}
}

func sliceBounds(length int, args []Value) (int, int) {
	start, end := 0, length
	clamp := func(v float64) int {
		idx := int(v)
		if v < 0 {
			idx += length
		}
		if idx < 0 {
			idx = 0
		}
		if idx > length {
			idx = length
		}
		return idx
	}
	if len(args) > 0 {
		if _, ok := args[0].(UndefinedValue); !ok {
			start = clamp(ToNumber(args[0]))
		}
	}
	if len(args) > 1 {
		if _, ok := args[1].(UndefinedValue); !ok {
			end = clamp(ToNumber(args[1]))
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

func stringMethod(s StringValue, key string) (Value, bool) {
	val := s.Val
	switch key {
	case "charAt":
		return NativeFunctionValue{Name: "charAt", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			idx := 0
			if len(args) > 0 {
				idx = int(ToNumber(args[0]))
			}
			if idx < 0 || idx >= len(val) {
				return String(""), nil
			}
			return String(val[idx : idx+1]), nil
		}}, true
	case "charCodeAt":
		return NativeFunctionValue{Name: "charCodeAt", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			idx := 0
			if len(args) > 0 {
				idx = int(ToNumber(args[0]))
			}
			if idx < 0 || idx >= len(val) {
				return Number(math.NaN()), nil
			}
			return Number(float64(val[idx])), nil
		}}, true
	case "indexOf":
		return NativeFunctionValue{Name: "indexOf", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			return Number(float64(strings.Index(val, ToString(args[0])))), nil
		}}, true
	case "lastIndexOf":
		return NativeFunctionValue{Name: "lastIndexOf", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			return Number(float64(strings.LastIndex(val, ToString(args[0])))), nil
		}}, true
	case "slice", "substring":
		return NativeFunctionValue{Name: key, Arity: 2, Impl: func(_ Value, args []Value) (Value, error) {
			start, end := sliceBounds(len(val), args)
			return String(val[start:end]), nil
		}}, true
	case "split":
		return NativeFunctionValue{Name: "split", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return NewArray([]Value{String(val)}), nil
			}
			parts := strings.Split(val, ToString(args[0]))
			out := make([]Value, 0, len(parts))
			for _, part := range parts {
				out = append(out, String(part))
			}
			return NewArray(out), nil
		}}, true
	case "toUpperCase":
		return NativeFunctionValue{Name: "toUpperCase", Impl: func(Value, []Value) (Value, error) {
			return String(strings.ToUpper(val)), nil
		}}, true
	case "toLowerCase":
		return NativeFunctionValue{Name: "toLowerCase", Impl: func(Value, []Value) (Value, error) {
			return String(strings.ToLower(val)), nil
		}}, true
	case "replace":
		return NativeFunctionValue{Name: "replace", Arity: 2, Impl: func(_ Value, args []Value) (Value, error) {
			if len(args) < 2 {
				return String(val), nil
			}
			return String(strings.Replace(val, ToString(args[0]), ToString(args[1]), 1)), nil
		}}, true
	case "concat":
		return NativeFunctionValue{Name: "concat", Arity: 1, Impl: func(_ Value, args []Value) (Value, error) {
			out := val
			for _, arg := range args {
				out += ToString(arg)
			}
			return String(out), nil
		}}, true
	case "toString", "valueOf":
		return NativeFunctionValue{Name: key, Impl: func(Value, []Value) (Value, error) {
			return String(val), nil
		}}, true
	default:
		return nil, false
	}
}
