// Package numfmt groups the digits of result strings for display.
package numfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Style is a digit grouping convention.
type Style string

const (
	International Style = "international" // 1,000,000
	Indian        Style = "indian"        // 10,00,000
)

// ParseStyle validates a style name. An empty name means International.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", International:
		return International, nil
	case Indian:
		return Indian, nil
	}
	return "", fmt.Errorf("invalid number format %q (valid: international, indian)", s)
}

// Format inserts separators into the integer part of value. Values that are
// not plain decimals (errors, exponential form) are returned unchanged.
func Format(value string, style Style) string {
	if value == "" || value == "0" || strings.Contains(value, "Error") {
		return value
	}
	if strings.ContainsAny(value, "eE") {
		return value
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return value
	}

	intPart, frac, hasFrac := strings.Cut(value, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		sign, intPart = intPart[:1], intPart[1:]
	}

	var grouped string
	if style == Indian {
		grouped = groupIndian(intPart)
	} else {
		grouped = group(intPart, 3)
	}

	if hasFrac {
		return sign + grouped + "." + frac
	}
	return sign + grouped
}

// Unformat removes separators.
func Unformat(value string) string {
	return strings.ReplaceAll(value, ",", "")
}

func group(digits string, size int) string {
	if len(digits) <= size {
		return digits
	}
	var b strings.Builder
	head := len(digits) % size
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += size {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+size])
	}
	return b.String()
}

// groupIndian keeps the last three digits together and pairs the rest.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	return group(head, 2) + "," + tail
}
