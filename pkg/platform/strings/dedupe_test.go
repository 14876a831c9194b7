package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "lowercases and trims",
			input:    []string{"  FOO ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "case-insensitive dedupe preserves first occurrence order",
			input:    []string{"Welsh_Language", "halal_diet", "WELSH_LANGUAGE"},
			expected: []string{"welsh_language", "halal_diet"},
		},
		{
			name:     "drops empty and whitespace-only entries",
			input:    []string{"", "  ", "foo"},
			expected: []string{"foo"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DedupeAndTrimLower(tc.input))
		})
	}
}
