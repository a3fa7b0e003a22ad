// Package engine parses and evaluates calculator expressions.
//
// Standard and scientific expressions are delegated to expr-lang/expr after
// preprocessing. Programmer mode converts radix literals to decimal first and
// sends expressions that use bitwise operators through Starlark, whose
// integers are arbitrary precision.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/rcliao/desk-calc/internal/model"
)

// Result is the outcome of evaluating one expression.
type Result struct {
	Expression string     `json:"expression" yaml:"expression"`
	Value      string     `json:"value" yaml:"value"`
	Mode       model.Mode `json:"mode" yaml:"mode"`
	Hex        string     `json:"hex,omitempty" yaml:"hex,omitempty"`
	Bin        string     `json:"bin,omitempty" yaml:"bin,omitempty"`
	Oct        string     `json:"oct,omitempty" yaml:"oct,omitempty"`
}

// Engine evaluates expressions in its current mode. It is not safe for
// concurrent use.
type Engine struct {
	mode    model.Mode
	logger  *slog.Logger
	options []expr.Option
}

// New creates an engine in standard mode. A nil logger discards output.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		mode:    model.ModeStandard,
		logger:  logger,
		options: mathOptions(),
	}
}

// SetMode switches the evaluation mode.
func (e *Engine) SetMode(mode model.Mode) error {
	if !model.ValidModes[mode] {
		return fmt.Errorf("invalid mode %q (valid: standard, scientific, programmer)", mode)
	}
	e.mode = mode
	return nil
}

// Mode returns the current evaluation mode.
func (e *Engine) Mode() model.Mode {
	return e.mode
}

// Evaluate substitutes vars into expression, preprocesses it and evaluates
// it. Errors are *EvalError values wrapping one of the package sentinels.
func (e *Engine) Evaluate(expression string, vars map[string]string) (Result, error) {
	res := Result{Expression: expression, Mode: e.mode}

	src := Substitute(expression, vars)
	src = Preprocess(src, e.mode)
	if src == "" {
		return res, &EvalError{Expr: expression, Kind: ErrEmpty}
	}

	var (
		v   any
		err error
	)
	if e.mode == model.ModeProgrammer {
		src = e.ConvertLiterals(src)
		switch {
		case hasBitwise(src):
			e.logger.Debug("bitwise evaluation", "expr", src)
			v, err = e.evalBitwise(src)
		case integerOnly(src):
			v, err = e.evalInteger(src)
			var se syntax.Error
			if errors.As(err, &se) {
				// forms Starlark rejects, such as 010, are plain arithmetic
				v, err = e.evalMath(src)
			}
		default:
			v, err = e.evalMath(src)
		}
	} else {
		v, err = e.evalMath(src)
	}
	if err != nil {
		e.logger.Debug("evaluation failed", "expr", src, "err", err)
		return res, classify(expression, err)
	}

	if err := e.fill(&res, v); err != nil {
		return res, &EvalError{Expr: expression, Kind: err}
	}
	return res, nil
}

func (e *Engine) evalMath(src string) (out any, err error) {
	env := make(map[string]any, len(constantValues))
	for k, v := range constantValues {
		env[k] = v
	}

	opts := append([]expr.Option{expr.Env(env), expr.Patch(floatArithmetic{})}, e.options...)
	program, err := expr.Compile(widenLiterals(src), opts...)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}

// floatArithmetic promotes integer literals to float64 so products cannot
// wrap at int64, and turns % into the float mod function.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		if n.Operator == "%" {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: "mod"},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	}
}

var wordRe = regexp.MustCompile(`[A-Za-z0-9_.]+`)

// widenLiterals marks decimal integers beyond int64 as floats, which the
// expr parser would otherwise reject.
func widenLiterals(src string) string {
	return wordRe.ReplaceAllStringFunc(src, func(w string) string {
		for i := 0; i < len(w); i++ {
			if !isDigit(w[i]) {
				return w
			}
		}
		if _, err := strconv.ParseInt(w, 10, 64); err == nil {
			return w
		}
		return w + ".0"
	})
}

// fill renders v into res, adding radix forms in programmer mode.
func (e *Engine) fill(res *Result, v any) error {
	var integer *big.Int
	switch n := v.(type) {
	case int:
		res.Value = strconv.Itoa(n)
		integer = big.NewInt(int64(n))
	case int64:
		res.Value = strconv.FormatInt(n, 10)
		integer = big.NewInt(n)
	case float64:
		if err := checkFloat(n); err != nil {
			return err
		}
		res.Value = FormatNumber(n)
		integer = wholeFloat(n)
	case starlark.Int:
		integer = n.BigInt()
		res.Value = integer.String()
	case starlark.Float:
		f := float64(n)
		if err := checkFloat(f); err != nil {
			return err
		}
		res.Value = FormatNumber(f)
		integer = wholeFloat(f)
	case bool:
		res.Value = strconv.FormatBool(n)
	case starlark.Value:
		res.Value = n.String()
	default:
		res.Value = fmt.Sprint(v)
	}

	if e.mode == model.ModeProgrammer && integer != nil {
		res.Hex = ToHex(integer)
		res.Bin = ToBinary(integer)
		res.Oct = ToOctal(integer)
	}
	return nil
}

// wholeFloat returns f as an integer when it has no fractional part and
// fits in an int64.
func wholeFloat(f float64) *big.Int {
	if f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
		return nil
	}
	return big.NewInt(int64(f))
}

func checkFloat(f float64) error {
	switch {
	case math.IsInf(f, 0):
		return ErrDivideByZero
	case math.IsNaN(f):
		return ErrNotReal
	}
	return nil
}
