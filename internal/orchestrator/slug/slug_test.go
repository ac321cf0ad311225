package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLowercasesAndCollapsesSeparators(t *testing.T) {
	assert.Equal(t, "hello-world", Sanitize("Hello, World!"))
	assert.Equal(t, "hello-world", Sanitize("Hello---World"))
	assert.Equal(t, "hello-world", Sanitize("Hello   World"))
}

func TestSanitizeKeepsAsciiDigits(t *testing.T) {
	assert.Equal(t, "repo-123", Sanitize("Repo 123"))
}

func TestSanitizeReturnsFallbackWhenEmpty(t *testing.T) {
	assert.Equal(t, "project", Sanitize(""))
	assert.Equal(t, "project", Sanitize("!!!"))
	assert.Equal(t, "project", Sanitize("   "))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"Hello, World!", "Repo 123", "", "already-sane", "___"} {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "Sanitize(%q) not idempotent", in)
	}
}

func TestSanitizeOnlyProducesAllowedCharset(t *testing.T) {
	for _, in := range []string{"Hello, World!", "A/B\\C", "with\ttabs\nand\nnewlines"} {
		out := Sanitize(in)
		for _, r := range out {
			assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-',
				"unexpected rune %q in slug %q", r, out)
		}
		assert.False(t, len(out) > 0 && (out[0] == '-' || out[len(out)-1] == '-'))
		assert.NotContains(t, out, "--")
	}
}
