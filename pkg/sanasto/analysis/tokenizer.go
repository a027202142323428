package analysis

import (
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits text into runs of letters and digits. Everything else,
// hyphens included, separates tokens. Case is preserved.
type Tokenizer struct {
	text string
	pos  int
	tok  Token
}

// NewTokenizer creates a tokenizer over text.
func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{text: text}
}

// Next implements TokenStream.
func (t *Tokenizer) Next() (bool, error) {
	start := -1
	for t.pos < len(t.text) {
		r, size := utf8.DecodeRuneInString(t.text[t.pos:])
		word := unicode.IsLetter(r) || unicode.IsNumber(r)
		if word && start < 0 {
			start = t.pos
		}
		if !word && start >= 0 {
			break
		}
		t.pos += size
	}
	if start < 0 {
		return false, nil
	}

	t.tok = Token{
		Term:              t.text[start:t.pos],
		Start:             start,
		End:               t.pos,
		PositionIncrement: 1,
		PositionLength:    1,
	}
	return true, nil
}

// Token implements TokenStream.
func (t *Tokenizer) Token() *Token {
	return &t.tok
}
