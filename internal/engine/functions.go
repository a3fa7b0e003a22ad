package engine

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

type unary func(float64) float64

var unaryFuncs = map[string]unary{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"log":  math.Log10,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
	"cbrt": math.Cbrt,
	"exp":  math.Exp,
}

var constantValues = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

// reserved names cannot be bound as variables.
var reserved = map[string]bool{
	"ans":  true,
	"pow":  true,
	"fact": true,
	"mod":  true,
	// expr builtins reachable from expressions
	"abs":   true,
	"ceil":  true,
	"floor": true,
	"round": true,
	"max":   true,
	"min":   true,
}

func init() {
	for name := range unaryFuncs {
		reserved[name] = true
	}
	for name := range constantValues {
		reserved[name] = true
	}
}

// IsReserved reports whether name is a function or constant known to the engine.
func IsReserved(name string) bool {
	return reserved[name]
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

// mathOptions returns the expr functions backing the scientific keypad.
func mathOptions() []expr.Option {
	opts := make([]expr.Option, 0, len(unaryFuncs)+3)
	for name, fn := range unaryFuncs {
		opts = append(opts, expr.Function(name, wrapUnary(name, fn)))
	}
	opts = append(opts,
		expr.Function("pow", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(params))
			}
			base, err := toFloat(params[0])
			if err != nil {
				return nil, err
			}
			exp, err := toFloat(params[1])
			if err != nil {
				return nil, err
			}
			return math.Pow(base, exp), nil
		}),
		expr.Function("mod", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("mod expects 2 arguments, got %d", len(params))
			}
			x, err := toFloat(params[0])
			if err != nil {
				return nil, err
			}
			y, err := toFloat(params[1])
			if err != nil {
				return nil, err
			}
			if y == 0 {
				return nil, fmt.Errorf("modulo by zero")
			}
			return math.Mod(x, y), nil
		}),
		expr.Function("fact", func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("fact expects 1 argument, got %d", len(params))
			}
			n, err := toFloat(params[0])
			if err != nil {
				return nil, err
			}
			return factorial(n)
		}),
	)
	return opts
}

func wrapUnary(name string, fn unary) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

// maxFactorial is the largest n whose factorial fits in a float64.
const maxFactorial = 170

func factorial(n float64) (float64, error) {
	if n < 0 {
		return 0, fmt.Errorf("factorial of negative number")
	}
	if n > maxFactorial {
		return math.Inf(1), nil
	}
	if n != math.Trunc(n) {
		return math.Gamma(n + 1), nil
	}
	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}
	return result, nil
}
