package runtime

import (
	"math"
	"testing"
)

func TestToNumberCoercions(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want float64
	}{
		{"undefined is NaN", Undefined, math.NaN()},
		{"null is zero", Null, 0},
		{"true is one", True, 1},
		{"false is zero", False, 0},
		{"number passes through", Number(3.5), 3.5},
		{"numeric string", String("42"), 42},
		{"spaced string", String("  7 "), 7},
		{"empty string", String(""), 0},
		{"hex string", String("0x10"), 16},
		{"garbage string", String("abc"), math.NaN()},
	}
	for _, tc := range cases {
		got := ToNumber(tc.in)
		if math.IsNaN(tc.want) {
			if !math.IsNaN(got) {
				t.Fatalf("%s: ToNumber = %v, want NaN", tc.name, got)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("%s: ToNumber = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestToStringRendering(t *testing.T) {
	arr := NewArray([]Value{Number(1), Undefined, String("x")})
	cases := []struct {
		name string
		in   Value
		want string
	}{
		{"integral number", Number(3), "3"},
		{"fractional number", Number(1.5), "1.5"},
		{"negative zero", Number(math.Copysign(0, -1)), "0"},
		{"nan", Number(math.NaN()), "NaN"},
		{"infinity", Number(math.Inf(1)), "Infinity"},
		{"undefined", Undefined, "undefined"},
		{"null", Null, "null"},
		{"bool", True, "true"},
		{"array joins with holes blank", arr, "1,,x"},
		{"object", NewObject(), "[object Object]"},
	}
	for _, tc := range cases {
		if got := ToString(tc.in); got != tc.want {
			t.Fatalf("%s: ToString = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStrictEquals(t *testing.T) {
	obj := NewObject()
	cases := []struct {
		name  string
		left  Value
		right Value
		want  bool
	}{
		{"same numbers", Number(1), Number(1), true},
		{"number vs string", Number(1), String("1"), false},
		{"same strings", String("a"), String("a"), true},
		{"undefined vs null", Undefined, Null, false},
		{"object identity", obj, obj, true},
		{"distinct objects", NewObject(), NewObject(), false},
	}
	for _, tc := range cases {
		if got := StrictEquals(tc.left, tc.right); got != tc.want {
			t.Fatalf("%s: StrictEquals = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLooseEquals(t *testing.T) {
	cases := []struct {
		name  string
		left  Value
		right Value
		want  bool
	}{
		{"number vs numeric string", Number(1), String("1"), true},
		{"null vs undefined", Null, Undefined, true},
		{"null vs zero", Null, Number(0), false},
		{"bool vs number", True, Number(1), true},
		{"string vs bool", String("1"), True, true},
	}
	for _, tc := range cases {
		if got := LooseEquals(tc.left, tc.right); got != tc.want {
			t.Fatalf("%s: LooseEquals = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBinaryOpArithmetic(t *testing.T) {
	cases := []struct {
		op    string
		left  Value
		right Value
		want  Value
	}{
		{"+", Number(1), Number(2), Number(3)},
		{"+", String("a"), Number(1), String("a1")},
		{"+", Number(1), String("b"), String("1b")},
		{"-", Number(5), Number(2), Number(3)},
		{"*", Number(3), Number(4), Number(12)},
		{"%", Number(7), Number(3), Number(1)},
		{"<<", Number(1), Number(3), Number(8)},
		{">>", Number(-8), Number(1), Number(-4)},
		{">>>", Number(-1), Number(28), Number(15)},
		{"&", Number(6), Number(3), Number(2)},
		{"|", Number(4), Number(1), Number(5)},
		{"^", Number(5), Number(1), Number(4)},
		{"<", Number(1), Number(2), True},
		{"<", String("a"), String("b"), True},
		{">=", Number(2), Number(2), True},
		{"==", Number(1), String("1"), True},
		{"===", Number(1), String("1"), False},
		{"!==", Number(1), String("1"), True},
	}
	for _, tc := range cases {
		got, err := BinaryOp(tc.op, tc.left, tc.right)
		if err != nil {
			t.Fatalf("BinaryOp(%q) returned error: %v", tc.op, err)
		}
		if !StrictEquals(got, tc.want) {
			t.Fatalf("BinaryOp(%q, %v, %v) = %#v, want %#v", tc.op, tc.left, tc.right, got, tc.want)
		}
	}
}

func TestBinaryOpIn(t *testing.T) {
	obj := NewObject()
	obj.Set("a", Number(1))
	got, err := BinaryOp("in", String("a"), obj)
	if err != nil {
		t.Fatalf("in returned error: %v", err)
	}
	if !StrictEquals(got, True) {
		t.Fatalf("'a' in obj = %#v, want true", got)
	}
	got, err = BinaryOp("in", String("b"), obj)
	if err != nil {
		t.Fatalf("in returned error: %v", err)
	}
	if !StrictEquals(got, False) {
		t.Fatalf("'b' in obj = %#v, want false", got)
	}
	if _, err := BinaryOp("in", String("a"), Number(1)); err == nil {
		t.Fatalf("expected TypeError for 'in' on a number")
	}
}

func TestInstanceOf(t *testing.T) {
	ctor := NewFunction("Point", 0, "", func(this Value, args []Value) (Value, error) {
		return Undefined, nil
	})
	instance, err := Construct(ctor, nil)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	got, err := BinaryOp("instanceof", instance, ctor)
	if err != nil {
		t.Fatalf("instanceof returned error: %v", err)
	}
	if !StrictEquals(got, True) {
		t.Fatalf("instance instanceof ctor = %#v, want true", got)
	}
	other, err := Construct(NewFunction("Other", 0, "", func(Value, []Value) (Value, error) { return Undefined, nil }), nil)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	got, err = BinaryOp("instanceof", other, ctor)
	if err != nil {
		t.Fatalf("instanceof returned error: %v", err)
	}
	if !StrictEquals(got, False) {
		t.Fatalf("other instanceof ctor = %#v, want false", got)
	}
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "object"},
		{True, "boolean"},
		{Number(1), "number"},
		{String("x"), "string"},
		{NewObject(), "object"},
		{NewArray(nil), "object"},
		{NewFunction("f", 0, "", nil), "function"},
		{NativeFunctionValue{Name: "n"}, "function"},
	}
	for _, tc := range cases {
		if got := TypeOf(tc.in); got != tc.want {
			t.Fatalf("TypeOf(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUnaryOps(t *testing.T) {
	got, err := UnaryOp("-", Number(4))
	if err != nil {
		t.Fatalf("unary minus: %v", err)
	}
	if !StrictEquals(got, Number(-4)) {
		t.Fatalf("-4 = %#v", got)
	}
	got, err = UnaryOp("!", String(""))
	if err != nil {
		t.Fatalf("unary not: %v", err)
	}
	if !StrictEquals(got, True) {
		t.Fatalf("!\"\" = %#v, want true", got)
	}
	got, err = UnaryOp("~", Number(0))
	if err != nil {
		t.Fatalf("unary complement: %v", err)
	}
	if !StrictEquals(got, Number(-1)) {
		t.Fatalf("~0 = %#v, want -1", got)
	}
	got, err = UnaryOp("void", Number(9))
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if _, ok := got.(UndefinedValue); !ok {
		t.Fatalf("void 9 = %#v, want undefined", got)
	}
}
