package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		value string
		style Style
		want  string
	}{
		{"1000000", International, "1,000,000"},
		{"1000000", Indian, "10,00,000"},
		{"123456789", Indian, "12,34,56,789"},
		{"-1234567.891", International, "-1,234,567.891"},
		{"-1234567.891", Indian, "-12,34,567.891"},
		{"999", International, "999"},
		{"999", Indian, "999"},
		{"1000", Indian, "1,000"},
		{"0", International, "0"},
		{"1.5000000000e+21", International, "1.5000000000e+21"},
		{"Error", International, "Error"},
		{"Cannot divide by zero", International, "Cannot divide by zero"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.value, tt.style), "Format(%q, %s)", tt.value, tt.style)
	}
}

func TestUnformat(t *testing.T) {
	assert.Equal(t, "1234567.5", Unformat("1,234,567.5"))
	assert.Equal(t, "1234567", Unformat(Format("1234567", Indian)))
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, International, s)

	s, err = ParseStyle("indian")
	require.NoError(t, err)
	assert.Equal(t, Indian, s)

	_, err = ParseStyle("roman")
	assert.Error(t, err)
}
