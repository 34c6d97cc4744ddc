// Package htmltext decodes the HTML entities the trivia API embeds in its text fields.
package htmltext

import "html"

// Decoder implements app.TextDecoder for HTML 4/5 named and numeric entities.
type Decoder struct{}

func NewDecoder() Decoder {
	return Decoder{}
}

func (Decoder) Decode(text string) string {
	return html.UnescapeString(text)
}
