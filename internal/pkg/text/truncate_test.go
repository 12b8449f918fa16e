package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "Šik...", Truncate("Šikić", 3))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "not found", Snippet("  not\n\tfound \n", 20))
	assert.Equal(t, "a b...", Snippet("a   b   c", 3))
	assert.Empty(t, Snippet(" \n ", 10))
}
