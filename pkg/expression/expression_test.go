package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlugInfo(t *testing.T) {
	info := NewSlugInfo("Joe_Biden")
	assert.Equal(t, "Joe_Biden", info.Slug)
	assert.Equal(t, "joe biden", info.Name)
	assert.Equal(t, 2, info.Words)
	assert.Equal(t, 9, info.Length)
}

func TestCompile_InvalidExpression(t *testing.T) {
	_, err := Compile([]string{"Words >"})
	assert.Error(t, err)

	_, err = Compile([]string{"NoSuchField == 1"})
	assert.Error(t, err)
}

func TestMatchAll(t *testing.T) {
	compiled, err := Compile([]string{"Words > 1", `Name contains "biden"`})
	require.NoError(t, err)

	tests := []struct {
		name    string
		slug    string
		matched bool
	}{
		{"matches_all", "Joe_Biden", true},
		{"fails_word_count", "Biden", false},
		{"fails_contains", "Barack_Obama", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := MatchAll(NewSlugInfo(tt.slug), compiled)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestMatchAll_NoExpressions(t *testing.T) {
	matched, err := MatchAll(NewSlugInfo("Anything"), nil)
	require.NoError(t, err)
	assert.True(t, matched)
}
