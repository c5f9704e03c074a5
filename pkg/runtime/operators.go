package runtime

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean applies the ECMAScript truthiness rules.
func ToBoolean(v Value) bool {
	switch val := v.(type) {
	case UndefinedValue, NullValue:
		return false
	case BoolValue:
		return val.Val
	case NumberValue:
		return val.Val != 0 && !math.IsNaN(val.Val)
	case StringValue:
		return val.Val != ""
	default:
		return true
	}
}

// ToNumber coerces a value to a float64 following ES semantics; unparseable
// strings become NaN.
func ToNumber(v Value) float64 {
	switch val := v.(type) {
	case UndefinedValue:
		return math.NaN()
	case NullValue:
		return 0
	case BoolValue:
		if val.Val {
			return 1
		}
		return 0
	case NumberValue:
		return val.Val
	case StringValue:
		return stringToNumber(val.Val)
	default:
		return ToNumber(ToPrimitive(v))
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return float64(n)
		}
		return math.NaN()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	return math.NaN()
}

// NumberToString renders a float the way ES renders numbers: integral values
// without a decimal point, NaN and infinities by name.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// ToString coerces any value to its string form.
func ToString(v Value) string {
	switch val := v.(type) {
	case UndefinedValue:
		return "undefined"
	case NullValue:
		return "null"
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case NumberValue:
		return NumberToString(val.Val)
	case StringValue:
		return val.Val
	case *ArrayValue:
		parts := make([]string, 0, len(val.Elements))
		for _, el := range val.Elements {
			switch el.(type) {
			case UndefinedValue, NullValue:
				parts = append(parts, "")
			default:
				parts = append(parts, ToString(el))
			}
		}
		return strings.Join(parts, ",")
	case *FunctionValue:
		if val.Source != "" {
			return val.Source
		}
		return "function " + val.Name + "() { [native code] }"
	case NativeFunctionValue:
		return "function " + val.Name + "() { [native code] }"
	case *ObjectValue:
		if val.Class == "Error" {
			return Thrown{Value: val}.Error()
		}
		return "[object Object]"
	default:
		return "[object Object]"
	}
}

// ToPrimitive reduces objects to a primitive for operator coercion. Arrays
// join, functions yield their source text, plain objects stringify.
func ToPrimitive(v Value) Value {
	switch v.(type) {
	case *ObjectValue, *ArrayValue, *FunctionValue, NativeFunctionValue:
		return String(ToString(v))
	default:
		return v
	}
}

func ToInt32(v Value) int32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(f))))
}

func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(f)))
}

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch v.(type) {
	case UndefinedValue:
		return "undefined"
	case NullValue:
		return "object"
	case BoolValue:
		return "boolean"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case *FunctionValue, NativeFunctionValue:
		return "function"
	default:
		return "object"
	}
}

// StrictEquals implements ===.
func StrictEquals(left, right Value) bool {
	switch lv := left.(type) {
	case UndefinedValue:
		_, ok := right.(UndefinedValue)
		return ok
	case NullValue:
		_, ok := right.(NullValue)
		return ok
	case BoolValue:
		rv, ok := right.(BoolValue)
		return ok && lv.Val == rv.Val
	case NumberValue:
		rv, ok := right.(NumberValue)
		return ok && lv.Val == rv.Val
	case StringValue:
		rv, ok := right.(StringValue)
		return ok && lv.Val == rv.Val
	default:
		// Reference identity for objects, arrays, functions.
		return left == right
	}
}

// LooseEquals implements ==.
func LooseEquals(left, right Value) bool {
	lk, rk := left.Kind(), right.Kind()
	if lk == rk {
		return StrictEquals(left, right)
	}
	lNullish := lk == KindUndefined || lk == KindNull
	rNullish := rk == KindUndefined || rk == KindNull
	if lNullish || rNullish {
		return lNullish && rNullish
	}
	lPrim := isPrimitiveKind(lk)
	rPrim := isPrimitiveKind(rk)
	switch {
	case lPrim && rPrim:
		return ToNumber(left) == ToNumber(right)
	case lPrim:
		return LooseEquals(left, ToPrimitive(right))
	default:
		return LooseEquals(ToPrimitive(left), right)
	}
}

func isPrimitiveKind(k Kind) bool {
	switch k {
	case KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// BinaryOp applies a binary operator tag to two evaluated operands.
func BinaryOp(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		lp, rp := ToPrimitive(left), ToPrimitive(right)
		if lp.Kind() == KindString || rp.Kind() == KindString {
			return String(ToString(lp) + ToString(rp)), nil
		}
		return Number(ToNumber(lp) + ToNumber(rp)), nil
	case "-":
		return Number(ToNumber(left) - ToNumber(right)), nil
	case "*":
		return Number(ToNumber(left) * ToNumber(right)), nil
	case "/":
		return Number(ToNumber(left) / ToNumber(right)), nil
	case "%":
		return Number(math.Mod(ToNumber(left), ToNumber(right))), nil
	case "<<":
		return Number(float64(ToInt32(left) << (ToUint32(right) & 31))), nil
	case ">>":
		return Number(float64(ToInt32(left) >> (ToUint32(right) & 31))), nil
	case ">>>":
		return Number(float64(ToUint32(left) >> (ToUint32(right) & 31))), nil
	case "&":
		return Number(float64(ToInt32(left) & ToInt32(right))), nil
	case "|":
		return Number(float64(ToInt32(left) | ToInt32(right))), nil
	case "^":
		return Number(float64(ToInt32(left) ^ ToInt32(right))), nil
	case "<", ">", "<=", ">=":
		return compare(op, left, right), nil
	case "==":
		return Boolean(LooseEquals(left, right)), nil
	case "!=":
		return Boolean(!LooseEquals(left, right)), nil
	case "===":
		return Boolean(StrictEquals(left, right)), nil
	case "!==":
		return Boolean(!StrictEquals(left, right)), nil
	case "in":
		return hasIn(left, right)
	case "instanceof":
		return instanceOf(left, right)
	default:
		return nil, RaiseError("SyntaxError", "unknown binary operator %q", op)
	}
}

func compare(op string, left, right Value) Value {
	lp, rp := ToPrimitive(left), ToPrimitive(right)
	if ls, ok := lp.(StringValue); ok {
		if rs, ok := rp.(StringValue); ok {
			return Boolean(stringCompare(op, ls.Val, rs.Val))
		}
	}
	ln, rn := ToNumber(lp), ToNumber(rp)
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return False
	}
	switch op {
	case "<":
		return Boolean(ln < rn)
	case ">":
		return Boolean(ln > rn)
	case "<=":
		return Boolean(ln <= rn)
	default:
		return Boolean(ln >= rn)
	}
}

func stringCompare(op string, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	default:
		return l >= r
	}
}

func hasIn(key, container Value) (Value, error) {
	name := ToString(key)
	switch c := container.(type) {
	case *ObjectValue:
		return Boolean(c.Has(name)), nil
	case *ArrayValue:
		if idx, ok := arrayIndex(name); ok {
			return Boolean(idx < len(c.Elements)), nil
		}
		return Boolean(name == "length"), nil
	case *FunctionValue:
		return Boolean(c.props.Has(name)), nil
	default:
		return nil, RaiseError("TypeError", "cannot use 'in' operator to search for %q in %s", name, TypeOf(container))
	}
}

func instanceOf(left, right Value) (Value, error) {
	fn, ok := right.(*FunctionValue)
	if !ok {
		return nil, RaiseError("TypeError", "right-hand side of 'instanceof' is not callable")
	}
	prototypeProp, _ := fn.props.OwnProperty("prototype")
	if prototypeProp == nil {
		return False, nil
	}
	prototype, ok := prototypeProp.Value.(*ObjectValue)
	if !ok {
		return False, nil
	}
	obj, ok := left.(*ObjectValue)
	if !ok {
		return False, nil
	}
	for proto := obj.Proto; proto != nil; proto = proto.Proto {
		if proto == prototype {
			return True, nil
		}
	}
	return False, nil
}

// UnaryOp applies a unary operator tag to an already-evaluated operand,
// typeof included. delete is handled by the evaluator because it operates on
// a reference rather than a value.
func UnaryOp(op string, v Value) (Value, error) {
	switch op {
	case "-":
		return Number(-ToNumber(v)), nil
	case "+":
		return Number(ToNumber(v)), nil
	case "!":
		return Boolean(!ToBoolean(v)), nil
	case "~":
		return Number(float64(^ToInt32(v))), nil
	case "void":
		return Undefined, nil
	case "typeof":
		return String(TypeOf(v)), nil
	default:
		return nil, RaiseError("SyntaxError", "unknown unary operator %q", op)
	}
}
