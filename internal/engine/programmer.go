package engine

import (
	"math/big"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
)

var (
	hexLetterRe  = regexp.MustCompile(`\b([A-F])\b`)
	hexLiteralRe = regexp.MustCompile(`0x([0-9A-Fa-f]+)`)
	binLiteralRe = regexp.MustCompile(`0b([01]+)`)
	octLiteralRe = regexp.MustCompile(`0o([0-7]+)`)
	bitwiseSafe  = regexp.MustCompile(`^[0-9\s&|^<>()+\-*/%~.]*$`)
)

// maxBitwiseSteps bounds the Starlark interpreter for a single expression.
const maxBitwiseSteps = 10000

// ConvertLiterals rewrites standalone hex letters and 0x/0b/0o literals
// as decimal integers.
func (e *Engine) ConvertLiterals(expr string) string {
	s := hexLetterRe.ReplaceAllStringFunc(expr, func(m string) string {
		return e.convert(m, m, 16)
	})
	s = hexLiteralRe.ReplaceAllStringFunc(s, func(m string) string {
		return e.convert(m, m[2:], 16)
	})
	s = binLiteralRe.ReplaceAllStringFunc(s, func(m string) string {
		return e.convert(m, m[2:], 2)
	})
	return octLiteralRe.ReplaceAllStringFunc(s, func(m string) string {
		return e.convert(m, m[2:], 8)
	})
}

func (e *Engine) convert(literal, digits string, base int) string {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return literal
	}
	e.logger.Debug("converted literal", "literal", literal, "decimal", n.String())
	return n.String()
}

func hasBitwise(s string) bool {
	return strings.ContainsAny(s, "&|^~") || strings.Contains(s, "<<") || strings.Contains(s, ">>")
}

// integerOnly reports whether s is plain integer arithmetic that Starlark
// can evaluate without losing precision.
func integerOnly(s string) bool {
	return bitwiseSafe.MatchString(s) && !strings.ContainsAny(s, ".") && !strings.Contains(s, "**")
}

// evalBitwise evaluates an integer expression containing bitwise operators.
// Integers are arbitrary precision.
func (e *Engine) evalBitwise(src string) (starlark.Value, error) {
	if !bitwiseSafe.MatchString(src) {
		return nil, &EvalError{Expr: src, Kind: ErrBitwise}
	}
	return e.evalInteger(src)
}

// evalInteger evaluates src with Starlark's arbitrary-precision integers.
func (e *Engine) evalInteger(src string) (starlark.Value, error) {
	thread := &starlark.Thread{Name: "programmer"}
	thread.SetMaxExecutionSteps(maxBitwiseSteps)

	v, err := starlark.Eval(thread, "<expr>", src, nil) //nolint:staticcheck // SA1019: EvalOptions adds nothing for a bare expression
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "by zero") {
			return nil, &EvalError{Expr: src, Kind: ErrDivideByZero, Cause: err}
		}
		return nil, &EvalError{Expr: src, Kind: ErrBitwise, Cause: err}
	}
	return v, nil
}
