package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	decoder := NewDecoder()

	cases := map[string]string{
		"&quot;Hello&quot; &amp; World&#039;s": `"Hello" & World's`,
		"Caf&eacute; &lt;b&gt;":                "Café <b>",
		"&#x27;hex&#x27;":                      "'hex'",
		"&ldquo;Quoted&rdquo; &hellip;":        "“Quoted” …",
		"plain text":                           "plain text",
		"":                                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, decoder.Decode(in), "decode %q", in)
	}
}
