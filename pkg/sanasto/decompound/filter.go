// Package decompound implements the token filter that replaces Finnish
// words with their baseforms and, optionally, their compound parts.
//
// A word such as "moottorisaha" becomes
//
//	moottorisaha [1:0:12:2]
//	moottori     [0:0:12:1]
//	saha         [1:0:12:1]
//
// where the brackets show position increment, offsets and position
// length. Parts keep the offsets of the surface word.
package decompound

import (
	"unicode/utf8"

	"github.com/cognicore/sanasto/pkg/sanasto/analysis"
	"github.com/cognicore/sanasto/pkg/sanasto/compound"
)

// Filter is a single-goroutine token stream. While sub-tokens of the
// last word are pending it drains them; otherwise it pulls upstream.
type Filter struct {
	in      analysis.TokenStream
	factory *Factory

	current  analysis.Token
	pending  []compound.Token
	position int
}

// Next implements analysis.TokenStream.
func (f *Filter) Next() (bool, error) {
	if len(f.pending) > 0 && f.drain() {
		return true, nil
	}

	ok, err := f.in.Next()
	if !ok || err != nil {
		return ok, err
	}
	tok := f.in.Token()
	if !f.eligible(tok.Term) {
		return true, nil
	}

	tokens, err := f.factory.Decompose(tok.Term)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return true, nil
	}

	f.current = *tok
	f.pending = append(f.pending[:0], tokens...)

	first := 0
	for i, t := range f.pending {
		if t.Position < f.pending[first].Position {
			first = i
		}
	}
	next := f.pending[first]
	f.position = next.Position
	f.remove(first)

	tok.Term = next.Text
	tok.PositionLength = next.PositionLength
	return true, nil
}

// Token implements analysis.TokenStream.
func (f *Filter) Token() *analysis.Token {
	return f.in.Token()
}

// drain emits the next pending sub-token at the current position or the
// one after it. When neither exists the rest of the word is dropped and
// false is returned so the caller pulls upstream again.
func (f *Filter) drain() bool {
	for _, pos := range [2]int{f.position, f.position + 1} {
		for i, t := range f.pending {
			if t.Position != pos {
				continue
			}
			tok := f.in.Token()
			*tok = f.current
			tok.Term = t.Text
			tok.PositionLength = t.PositionLength
			tok.PositionIncrement = 0
			if pos > f.position {
				tok.PositionIncrement = 1
			}
			f.position = pos
			f.remove(i)
			return true
		}
	}
	f.pending = f.pending[:0]
	return false
}

func (f *Filter) remove(i int) {
	f.pending = append(f.pending[:i], f.pending[i+1:]...)
}

// eligible reports whether term is long enough and purely alphabetic.
func (f *Filter) eligible(term string) bool {
	if utf8.RuneCountInString(term) < f.factory.cfg.MinWordSize {
		return false
	}
	for _, r := range term {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == 'å', r == 'ä', r == 'ö', r == 'Å', r == 'Ä', r == 'Ö':
		default:
			return false
		}
	}
	return term != ""
}
