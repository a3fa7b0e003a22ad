package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/desk-calc/internal/model"
)

var identTokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Substitute replaces identifiers bound in vars with their parenthesised
// values. Identifiers are matched as whole tokens, so a binding for x never
// touches max or x1, while 2x still resolves to 2(value).
func Substitute(expr string, vars map[string]string) string {
	if len(vars) == 0 {
		return expr
	}
	matches := identTokenRe.FindAllStringIndex(expr, -1)
	if len(matches) == 0 {
		return expr
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := expr[m[0]:m[1]]
		value, ok := vars[name]
		if !ok || isExponentToken(expr, m[0]) {
			continue
		}
		b.WriteString(expr[last:m[0]])
		b.WriteString("(")
		b.WriteString(value)
		b.WriteString(")")
		last = m[1]
	}
	b.WriteString(expr[last:])
	return b.String()
}

// isExponentToken reports whether the identifier at i is really the
// exponent of a numeric literal, as in 1e5.
func isExponentToken(s string, i int) bool {
	return i > 0 && isDigit(s[i-1]) && isExponent(s, i)
}

// ValidateName checks that name can be bound as a variable.
func ValidateName(name string) error {
	if !model.ValidIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if IsReserved(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}
