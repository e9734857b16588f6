package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a long s...", Truncate("a long string here", 11))
	assert.Equal(t, "a...", Truncate("abcdef", 2))
}

func TestTruncateNoEllipsis(t *testing.T) {
	assert.Equal(t, "abc", TruncateNoEllipsis("abcdef", 3))
	assert.Equal(t, "ab", TruncateNoEllipsis("ab", 5))
}
