package runtime

import "testing"

func mustGet(t *testing.T, base Value, key string) Value {
	t.Helper()
	got, err := GetProperty(base, key)
	if err != nil {
		t.Fatalf("GetProperty(%q) returned error: %v", key, err)
	}
	return got
}

func callNative(t *testing.T, fn Value, this Value, args ...Value) Value {
	t.Helper()
	result, err := Call(fn, this, args)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	return result
}

func TestObjectPropertyOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("b", Number(1))
	obj.Set("a", Number(2))
	obj.Set("c", Number(3))
	obj.Set("a", Number(4)) // overwrite keeps position

	keys := obj.Keys()
	want := []string{"b", "a", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys = %v, want %v", keys, want)
		}
	}
}

func TestObjectDeleteRemovesKey(t *testing.T) {
	obj := NewObject()
	obj.Set("a", Number(1))
	obj.Set("b", Number(2))
	if !obj.Delete("a") {
		t.Fatalf("Delete returned false")
	}
	if obj.HasOwn("a") {
		t.Fatalf("a still present after delete")
	}
	keys := obj.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("Keys after delete = %v, want [b]", keys)
	}
}

func TestAccessorProperty(t *testing.T) {
	obj := NewObject()
	obj.DefineAccessor("a", NativeFunctionValue{Name: "get a", Impl: func(this Value, _ []Value) (Value, error) {
		return Number(42), nil
	}}, nil)

	if got := mustGet(t, obj, "a"); !StrictEquals(got, Number(42)) {
		t.Fatalf("getter returned %#v, want 42", got)
	}

	var wrote Value
	obj.DefineAccessor("a", nil, NativeFunctionValue{Name: "set a", Impl: func(_ Value, args []Value) (Value, error) {
		wrote = args[0]
		return Undefined, nil
	}})
	if err := SetProperty(obj, "a", Number(7)); err != nil {
		t.Fatalf("SetProperty through setter: %v", err)
	}
	if !StrictEquals(wrote, Number(7)) {
		t.Fatalf("setter captured %#v, want 7", wrote)
	}
}

func TestGetPropertyOnNilReceivers(t *testing.T) {
	if _, err := GetProperty(Undefined, "a"); err == nil {
		t.Fatalf("expected TypeError reading from undefined")
	}
	if _, err := GetProperty(Null, "a"); err == nil {
		t.Fatalf("expected TypeError reading from null")
	}
}

func TestArrayLengthAndIndexing(t *testing.T) {
	arr := NewArray([]Value{Number(10), Number(20)})
	if got := mustGet(t, arr, "length"); !StrictEquals(got, Number(2)) {
		t.Fatalf("length = %#v, want 2", got)
	}
	if got := mustGet(t, arr, "1"); !StrictEquals(got, Number(20)) {
		t.Fatalf("arr[1] = %#v, want 20", got)
	}
	if got := mustGet(t, arr, "5"); got != Value(Undefined) {
		t.Fatalf("arr[5] = %#v, want undefined", got)
	}
	if err := SetProperty(arr, "3", String("x")); err != nil {
		t.Fatalf("set sparse index: %v", err)
	}
	if got := mustGet(t, arr, "length"); !StrictEquals(got, Number(4)) {
		t.Fatalf("length after sparse set = %#v, want 4", got)
	}
	if err := SetProperty(arr, "length", Number(1)); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if len(arr.Elements) != 1 {
		t.Fatalf("elements after truncate = %d, want 1", len(arr.Elements))
	}
}

func TestArrayMethods(t *testing.T) {
	arr := NewArray(nil)
	push := mustGet(t, arr, "push")
	if got := callNative(t, push, arr, Number(1), Number(2)); !StrictEquals(got, Number(2)) {
		t.Fatalf("push returned %#v, want 2", got)
	}

	join := mustGet(t, arr, "join")
	if got := callNative(t, join, arr, String("-")); !StrictEquals(got, String("1-2")) {
		t.Fatalf("join = %#v, want \"1-2\"", got)
	}

	indexOf := mustGet(t, arr, "indexOf")
	if got := callNative(t, indexOf, arr, Number(2)); !StrictEquals(got, Number(1)) {
		t.Fatalf("indexOf = %#v, want 1", got)
	}

	pop := mustGet(t, arr, "pop")
	if got := callNative(t, pop, arr); !StrictEquals(got, Number(2)) {
		t.Fatalf("pop = %#v, want 2", got)
	}
	if len(arr.Elements) != 1 {
		t.Fatalf("length after pop = %d, want 1", len(arr.Elements))
	}

	concat := mustGet(t, arr, "concat")
	combined := callNative(t, concat, arr, NewArray([]Value{Number(9)}), Number(8))
	out, ok := combined.(*ArrayValue)
	if !ok || len(out.Elements) != 3 {
		t.Fatalf("concat = %#v, want 3 elements", combined)
	}
}

func TestStringMembers(t *testing.T) {
	s := String("hello")
	if got := mustGet(t, s, "length"); !StrictEquals(got, Number(5)) {
		t.Fatalf("length = %#v, want 5", got)
	}
	if got := mustGet(t, s, "1"); !StrictEquals(got, String("e")) {
		t.Fatalf("s[1] = %#v, want e", got)
	}
	upper := mustGet(t, s, "toUpperCase")
	if got := callNative(t, upper, s); !StrictEquals(got, String("HELLO")) {
		t.Fatalf("toUpperCase = %#v", got)
	}
	split := mustGet(t, s, "split")
	parts := callNative(t, split, s, String("l"))
	arr, ok := parts.(*ArrayValue)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("split = %#v, want 3 parts", parts)
	}
	idx := mustGet(t, s, "indexOf")
	if got := callNative(t, idx, s, String("llo")); !StrictEquals(got, Number(2)) {
		t.Fatalf("indexOf = %#v, want 2", got)
	}
}

func TestFunctionIdentityKeys(t *testing.T) {
	fn := NewFunction("f", 2, "function f(a,b){}", func(Value, []Value) (Value, error) {
		return Undefined, nil
	})
	if got := mustGet(t, fn, "length"); !StrictEquals(got, Number(2)) {
		t.Fatalf("length = %#v, want 2", got)
	}
	if got := mustGet(t, fn, "name"); !StrictEquals(got, String("f")) {
		t.Fatalf("name = %#v, want f", got)
	}
	toString := mustGet(t, fn, "toString")
	if got := callNative(t, toString, fn); !StrictEquals(got, String("function f(a,b){}")) {
		t.Fatalf("toString = %#v", got)
	}
}

func TestFunctionCallAndApply(t *testing.T) {
	fn := NewFunction("sum", 2, "", func(this Value, args []Value) (Value, error) {
		total := ToNumber(this)
		for _, arg := range args {
			total += ToNumber(arg)
		}
		return Number(total), nil
	})
	call := mustGet(t, fn, "call")
	if got := callNative(t, call, fn, Number(1), Number(2), Number(3)); !StrictEquals(got, Number(6)) {
		t.Fatalf("call = %#v, want 6", got)
	}
	apply := mustGet(t, fn, "apply")
	if got := callNative(t, apply, fn, Number(1), NewArray([]Value{Number(4)})); !StrictEquals(got, Number(5)) {
		t.Fatalf("apply = %#v, want 5", got)
	}
}

func TestConstructKeepsAllocatedObject(t *testing.T) {
	ctor := NewFunction("Point", 2, "", nil)
	ctor.Invoke = func(this Value, args []Value) (Value, error) {
		if err := SetProperty(this, "x", args[0]); err != nil {
			return nil, err
		}
		return Undefined, nil
	}
	instance, err := Construct(ctor, []Value{Number(3)})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	obj, ok := instance.(*ObjectValue)
	if !ok {
		t.Fatalf("construct returned %#v, want object", instance)
	}
	if got := mustGet(t, obj, "x"); !StrictEquals(got, Number(3)) {
		t.Fatalf("x = %#v, want 3", got)
	}
}

func TestEnumerateKeysOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("z", Number(1))
	obj.Set("a", Number(2))
	keys := EnumerateKeys(obj)
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Fatalf("EnumerateKeys = %v, want [z a]", keys)
	}

	arr := NewArray([]Value{String("a"), String("b")})
	keys = EnumerateKeys(arr)
	if len(keys) != 2 || keys[0] != "0" || keys[1] != "1" {
		t.Fatalf("array keys = %v, want [0 1]", keys)
	}
}

func TestThrownRoundTrip(t *testing.T) {
	payload := NewError("TypeError", "boom")
	err := Raise(payload)
	if got := ThrownValue(err); got != Value(payload) {
		t.Fatalf("ThrownValue = %#v, want original payload", got)
	}
	if msg := err.Error(); msg != "TypeError: boom" {
		t.Fatalf("Error() = %q", msg)
	}
}
