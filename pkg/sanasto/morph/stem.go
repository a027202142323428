package morph

import (
	"strings"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/finnish"
)

// StemAnalyzer derives a baseform with the Finnish snowball stemmer. It
// never reports WORDBASES, so words it answers for are not decompounded.
// It is meant as the last member of a Chain, behind a real dictionary.
type StemAnalyzer struct{}

// NewStemAnalyzer creates a stemming analyzer.
func NewStemAnalyzer() StemAnalyzer {
	return StemAnalyzer{}
}

// Analyze implements Analyzer.
func (StemAnalyzer) Analyze(word string) ([]Analysis, error) {
	lower := strings.ToLower(word)
	if lower == "" {
		return nil, nil
	}
	env := snowballstem.NewEnv(lower)
	finnish.Stem(env)
	stem := env.Current()
	if stem == "" {
		return nil, nil
	}
	return []Analysis{{{Name: AttrBaseform, Value: stem}}}, nil
}
