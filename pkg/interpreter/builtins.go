package interpreter

import (
	"math"
	"strconv"
	"strings"

	"skim/interpreter-go/pkg/runtime"
)

// InstallBuiltins registers the ambient library scripts lean on: global
// constants, conversion helpers, Math, and the error constructors. Hosts may
// add or replace globals freely before or after this call.
func InstallBuiltins(global *runtime.ObjectValue) {
	global.Set("undefined", runtime.Undefined)
	global.Set("NaN", runtime.Number(math.NaN()))
	global.Set("Infinity", runtime.Number(math.Inf(1)))

	global.Set("parseInt", runtime.NativeFunctionValue{Name: "parseInt", Arity: 2, Impl: builtinParseInt})
	global.Set("parseFloat", runtime.NativeFunctionValue{Name: "parseFloat", Arity: 1, Impl: builtinParseFloat})
	global.Set("isNaN", runtime.NativeFunctionValue{Name: "isNaN", Arity: 1, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Boolean(math.IsNaN(runtime.ToNumber(argOr(args, 0)))), nil
	}})
	global.Set("isFinite", runtime.NativeFunctionValue{Name: "isFinite", Arity: 1, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		f := runtime.ToNumber(argOr(args, 0))
		return runtime.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	}})

	global.Set("String", runtime.NativeFunctionValue{Name: "String", Arity: 1, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.String(""), nil
		}
		return runtime.String(runtime.ToString(args[0])), nil
	}})
	global.Set("Number", runtime.NativeFunctionValue{Name: "Number", Arity: 1, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Number(0), nil
		}
		return runtime.Number(runtime.ToNumber(args[0])), nil
	}})
	global.Set("Boolean", runtime.NativeFunctionValue{Name: "Boolean", Arity: 1, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Boolean(runtime.ToBoolean(argOr(args, 0))), nil
	}})

	global.Set("Math", mathObject())

	for _, name := range []string{"Error", "TypeError", "RangeError", "SyntaxError"} {
		global.Set(name, errorConstructor(name))
	}
}

func argOr(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) {
		return args[idx]
	}
	return runtime.Undefined
}

func builtinParseInt(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s := strings.TrimSpace(runtime.ToString(argOr(args, 0)))
	radix := 10
	if len(args) > 1 {
		if r := int(runtime.ToNumber(args[1])); r != 0 {
			radix = r
		}
	}
	if radix == 16 || (radix == 10 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"))) {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		radix = 16
	}
	sign := 1
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	end := 0
	for end < len(s) {
		if _, err := strconv.ParseInt(s[end:end+1], radix, 64); err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return runtime.Number(math.NaN()), nil
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		return runtime.Number(math.NaN()), nil
	}
	return runtime.Number(float64(sign) * float64(n)), nil
}

func builtinParseFloat(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s := strings.TrimSpace(runtime.ToString(argOr(args, 0)))
	end := len(s)
	for end > 0 {
		if _, err := strconv.ParseFloat(s[:end], 64); err == nil {
			break
		}
		end--
	}
	if end == 0 {
		return runtime.Number(math.NaN()), nil
	}
	f, _ := strconv.ParseFloat(s[:end], 64)
	return runtime.Number(f), nil
}

func mathObject() *runtime.ObjectValue {
	obj := runtime.NewObject()
	obj.Set("PI", runtime.Number(math.Pi))
	obj.Set("E", runtime.Number(math.E))
	unary := func(name string, fn func(float64) float64) {
		obj.Set(name, runtime.NativeFunctionValue{Name: name, Arity: 1, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(fn(runtime.ToNumber(argOr(args, 0)))), nil
		}})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", func(f float64) float64 { return math.Floor(f + 0.5) })
	unary("sqrt", math.Sqrt)
	obj.Set("pow", runtime.NativeFunctionValue{Name: "pow", Arity: 2, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(math.Pow(runtime.ToNumber(argOr(args, 0)), runtime.ToNumber(argOr(args, 1)))), nil
	}})
	spread := func(name string, pick func(a, b float64) float64, start float64) {
		obj.Set(name, runtime.NativeFunctionValue{Name: name, Arity: 2, Impl: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			result := start
			for _, arg := range args {
				result = pick(result, runtime.ToNumber(arg))
			}
			return runtime.Number(result), nil
		}})
	}
	spread("max", math.Max, math.Inf(-1))
	spread("min", math.Min, math.Inf(1))
	return obj
}

func errorConstructor(name string) *runtime.FunctionValue {
	ctor := runtime.NewFunction(name, 1, "", nil)
	ctor.Invoke = func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		message := ""
		if len(args) > 0 {
			if _, ok := args[0].(runtime.UndefinedValue); !ok {
				message = runtime.ToString(args[0])
			}
		}
		return runtime.NewError(name, message), nil
	}
	return ctor
}
