package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; \"c\"", EscapeHTML(`a <b> & "c"`))
	assert.Equal(t, "plain.ru", EscapeHTML("plain.ru"))
}

func TestEscapeLinesKeepsBlankLines(t *testing.T) {
	assert.Equal(t, "a.com\n\n&lt;x&gt;", EscapeLines([]string{"a.com", "", "<x>"}))
	assert.Equal(t, "", EscapeLines(nil))
}
