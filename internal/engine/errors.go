package engine

import (
	"errors"
	"strings"

	"go.starlark.net/syntax"
)

// Evaluation failures. Message turns them into the text shown to the user.
var (
	ErrEmpty        = errors.New("empty expression")
	ErrUndefined    = errors.New("undefined function or variable")
	ErrDivideByZero = errors.New("cannot divide by zero")
	ErrSyntax       = errors.New("syntax error")
	ErrBitwise      = errors.New("invalid bitwise operation")
	ErrNotReal      = errors.New("result is not a real number")
	ErrInvalid      = errors.New("invalid expression")
	ErrReservedName = errors.New("name is reserved")
	ErrInvalidName  = errors.New("invalid variable name")
)

// EvalError wraps a library failure with the user-facing category it maps to.
type EvalError struct {
	Expr  string
	Kind  error
	Cause error
}

func (e *EvalError) Error() string {
	return e.Kind.Error()
}

func (e *EvalError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Message returns the display text for an evaluation error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ee *EvalError
	if errors.As(err, &ee) {
		err = ee.Kind
	}
	msg := err.Error()
	if msg == "" {
		return "Error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// classify maps a raw evaluator error onto one of the sentinel kinds.
func classify(expr string, err error) error {
	var ee *EvalError
	if errors.As(err, &ee) {
		return err
	}

	kind := ErrInvalid
	var se syntax.Error
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unknown name"),
		strings.Contains(msg, "unknown func"),
		strings.Contains(msg, "undefined"):
		kind = ErrUndefined
	case strings.Contains(msg, "division by zero"),
		strings.Contains(msg, "divide by zero"),
		strings.Contains(msg, "modulo by zero"):
		kind = ErrDivideByZero
	case errors.As(err, &se),
		strings.Contains(msg, "unexpected"),
		strings.Contains(msg, "syntax"):
		kind = ErrSyntax
	}
	return &EvalError{Expr: expr, Kind: kind, Cause: err}
}
