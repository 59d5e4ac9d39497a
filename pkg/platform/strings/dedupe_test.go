package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "field list", input: []string{" PTY_Phone", "PTY_Email ", "PTY_Phone"}, expected: []string{"PTY_Phone", "PTY_Email"}},
		{name: "blank entries from a trailing separator", input: []string{"kafka:9092", " "}, expected: []string{"kafka:9092"}},
		{name: "case is significant", input: []string{"Add_ID", "add_id"}, expected: []string{"Add_ID", "add_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
