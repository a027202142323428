package analysis

import "strings"

// LowercaseFilter lowercases every term.
type LowercaseFilter struct {
	in TokenStream
}

// NewLowercaseFilter wraps in.
func NewLowercaseFilter(in TokenStream) *LowercaseFilter {
	return &LowercaseFilter{in: in}
}

// Next implements TokenStream.
func (f *LowercaseFilter) Next() (bool, error) {
	ok, err := f.in.Next()
	if !ok || err != nil {
		return ok, err
	}
	tok := f.in.Token()
	tok.Term = strings.ToLower(tok.Term)
	return true, nil
}

// Token implements TokenStream.
func (f *LowercaseFilter) Token() *Token {
	return f.in.Token()
}

// StopSet is an immutable set of lowercased stopwords.
type StopSet map[string]struct{}

// NewStopSet builds a set from words, ignoring case and blank entries.
func NewStopSet(words []string) StopSet {
	s := make(StopSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is a stopword.
func (s StopSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// StopFilter drops stopwords. The position increments of dropped tokens
// are carried onto the next kept token so phrase distances survive.
type StopFilter struct {
	in    TokenStream
	stops StopSet
}

// NewStopFilter wraps in. Terms are compared as they arrive, so the
// filter normally runs after lowercasing.
func NewStopFilter(in TokenStream, stops StopSet) *StopFilter {
	return &StopFilter{in: in, stops: stops}
}

// Next implements TokenStream.
func (f *StopFilter) Next() (bool, error) {
	skipped := 0
	for {
		ok, err := f.in.Next()
		if !ok || err != nil {
			return ok, err
		}
		tok := f.in.Token()
		if !f.stops.Contains(tok.Term) {
			tok.PositionIncrement += skipped
			return true, nil
		}
		skipped += tok.PositionIncrement
	}
}

// Token implements TokenStream.
func (f *StopFilter) Token() *Token {
	return f.in.Token()
}
