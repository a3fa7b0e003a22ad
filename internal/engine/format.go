package engine

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// FormatNumber renders a float the way results are displayed: exponential
// form outside [1e-6, 1e15], otherwise 15 significant digits in plain form.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs > 1e15 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(v, 'e', 10, 64))
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 15, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// trimExponent turns "1.5e+07" into "1.5e+7".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}

// ToHex renders n as an upper-case 0x literal.
func ToHex(n *big.Int) string {
	return radix(n, 16, "0x")
}

// ToBinary renders n as a 0b literal.
func ToBinary(n *big.Int) string {
	return radix(n, 2, "0b")
}

// ToOctal renders n as a 0o literal.
func ToOctal(n *big.Int) string {
	return radix(n, 8, "0o")
}

func radix(n *big.Int, base int, prefix string) string {
	if n.Sign() < 0 {
		return "-" + prefix + strings.ToUpper(new(big.Int).Neg(n).Text(base))
	}
	return prefix + strings.ToUpper(n.Text(base))
}
