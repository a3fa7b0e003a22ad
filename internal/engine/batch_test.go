package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBatch(t *testing.T) {
	e := New(nil)
	input := "a = 2\nb = a * 3\n# comment\n\nb + ans\nbad +\n// trailing note\nb - 1"

	batch := e.EvaluateBatch(input, map[string]string{"seed": "1"})

	require.Len(t, batch.Lines, 5)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, map[string]string{"a": "2", "b": "6"}, batch.Assigned)

	assert.Equal(t, 1, batch.Lines[0].Line)
	assert.Equal(t, "a", batch.Lines[0].Assign)
	assert.Equal(t, "2", batch.Lines[0].Result.Value)

	assert.Equal(t, "6", batch.Lines[1].Result.Value)

	assert.Equal(t, 5, batch.Lines[2].Line)
	assert.Equal(t, "12", batch.Lines[2].Result.Value)

	assert.Equal(t, 6, batch.Lines[3].Line)
	assert.Nil(t, batch.Lines[3].Result)
	assert.NotEmpty(t, batch.Lines[3].Error)

	assert.Equal(t, "5", batch.Lines[4].Result.Value)
}

func TestEvaluateBatch_ReservedAssignment(t *testing.T) {
	e := New(nil)
	batch := e.EvaluateBatch("pi = 3\nans = 4", nil)

	require.Len(t, batch.Lines, 2)
	assert.Equal(t, 2, batch.Failed)
	for _, lr := range batch.Lines {
		assert.ErrorIs(t, lr.Err, ErrReservedName)
	}
	assert.Empty(t, batch.Assigned)
}

func TestParseAssignment(t *testing.T) {
	name, rhs, ok := ParseAssignment("  total = 3 + 4 ")
	require.True(t, ok)
	assert.Equal(t, "total", name)
	assert.Equal(t, "3 + 4", rhs)

	_, _, ok = ParseAssignment("total == 3")
	assert.False(t, ok)
	_, _, ok = ParseAssignment("3 + 4")
	assert.False(t, ok)
}
