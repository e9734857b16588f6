package scheduler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single terminated", "hello\n", []string{"hello"}},
		{"trailing partial retained", "a\nb", []string{"a", "b"}},
		{"crlf normalized", "a\r\nb\r\n", []string{"a", "b"}},
		{"bare cr normalized", "a\rb\r", []string{"a", "b"}},
		{"blank lines kept", "a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines([]byte(tt.in)))
		})
	}
}

func TestSplitLinesRoundTrip(t *testing.T) {
	// Joining the split lines reproduces the input up to trailing-newline
	// and CR normalization.
	inputs := []string{"a\nb\nc\n", "a\nb\nc", "one line\n", "partial"}
	for _, in := range inputs {
		lines := SplitLines([]byte(in))
		joined := strings.Join(lines, "\n")
		assert.Equal(t, strings.TrimSuffix(in, "\n"), joined, "input %q", in)
	}
}
