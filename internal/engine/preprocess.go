package engine

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rcliao/desk-calc/internal/model"
)

// glyphs are keypad symbols rewritten before normalisation. Superscripts
// must go first since NFKC would fold them into plain digits.
var (
	glyphs = strings.NewReplacer(
		"×", "*",
		"÷", "/",
		"−", "-",
		"²", "^2",
		"³", "^3",
	)
	// ^ is XOR in programmer mode.
	programmerGlyphs = strings.NewReplacer(
		"×", "*",
		"÷", "/",
		"−", "-",
		"²", "**2",
		"³", "**3",
	)
)

var (
	rootNumRe = regexp.MustCompile(`√(\d+(?:\.\d+)?)`)
	constants = strings.NewReplacer(
		"π", "pi",
		"е", "e", // Cyrillic
	)
)

// Preprocess normalises user input for the given mode.
func Preprocess(expr string, mode model.Mode) string {
	s := strings.TrimSpace(expr)
	if mode == model.ModeProgrammer {
		s = programmerGlyphs.Replace(s)
	} else {
		s = glyphs.Replace(s)
	}
	s = rootNumRe.ReplaceAllString(s, "sqrt($1)")
	s = strings.ReplaceAll(s, "√", "sqrt")
	s = norm.NFKC.String(s)

	if mode == model.ModeProgrammer {
		return s
	}

	s = constants.Replace(s)
	s = expandFactorial(s)
	return implicitMultiply(s)
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }

// isExponent reports whether s[i] starts the exponent of a numeric literal
// such as 1e5 or 2.5E-3.
func isExponent(s string, i int) bool {
	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	if i+1 < len(s) && isDigit(s[i+1]) {
		return true
	}
	return i+2 < len(s) && (s[i+1] == '+' || s[i+1] == '-') && isDigit(s[i+2])
}

// implicitMultiply inserts '*' for 2pi, 2(3), (2)3, (2)(3) and (2)pi.
// Digits inside identifiers (x2y) and exponents (1e5) are left alone.
func implicitMultiply(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inIdent := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		var prev byte
		if i > 0 {
			prev = s[i-1]
		}
		switch {
		case isLetter(c):
			if !inIdent && isDigit(prev) {
				if isExponent(s, i) {
					b.WriteByte(c)
					continue
				}
				b.WriteByte('*')
			} else if prev == ')' {
				b.WriteByte('*')
			}
			inIdent = true
		case isDigit(c):
			if prev == ')' {
				b.WriteByte('*')
			}
		case c == '(':
			if prev == ')' || (isDigit(prev) && !inIdent) {
				b.WriteByte('*')
			}
			inIdent = false
		default:
			inIdent = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// expandFactorial rewrites postfix n! and (expr)! into fact(...). The
// inequality operator != is left untouched.
func expandFactorial(s string) string {
	for {
		i := postfixBang(s)
		if i < 0 {
			return s
		}
		start := operandStart(s, i)
		if start < 0 {
			return s
		}
		s = s[:start] + "fact(" + s[start:i] + ")" + s[i+1:]
	}
}

func postfixBang(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '!' || (i+1 < len(s) && s[i+1] == '=') {
			continue
		}
		if p := s[i-1]; isDigit(p) || p == ')' || p == '.' {
			return i
		}
	}
	return -1
}

// operandStart finds where the operand ending just before s[end] begins.
func operandStart(s string, end int) int {
	i := end - 1
	if s[i] == ')' {
		depth := 0
		for ; i >= 0; i-- {
			switch s[i] {
			case ')':
				depth++
			case '(':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if i < 0 {
			return -1
		}
		// include a function name such as sqrt(4)!
		for i > 0 && (isLetter(s[i-1]) || isDigit(s[i-1])) {
			i--
		}
		return i
	}
	i = skipMantissa(s, i)
	// step over the exponent of a literal such as 1e3 or 2.5E-4
	k := i
	if k >= 0 && (s[k] == '+' || s[k] == '-') {
		k--
	}
	if k >= 1 && (isDigit(s[k-1]) || s[k-1] == '.') && isExponent(s, k) {
		i = skipMantissa(s, k-1)
	}
	return i + 1
}

// skipMantissa walks back from i over digits and decimal points.
func skipMantissa(s string, i int) int {
	for i >= 0 && (isDigit(s[i]) || s[i] == '.') {
		i--
	}
	return i
}
