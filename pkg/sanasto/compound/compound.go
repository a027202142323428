// Package compound turns morphological analyses into the positioned
// sub-tokens of a (possibly compound) word.
package compound

import (
	"strings"
	"unicode/utf8"

	"github.com/cognicore/sanasto/pkg/sanasto/morph"
)

// Token is one sub-token of a decomposed word. Position starts at 1.
// Two tokens are the same when Text and Position match; PositionLength is
// derived from the decomposition as a whole.
type Token struct {
	Text           string
	Position       int
	PositionLength int
}

// Options control how analyses are expanded.
type Options struct {
	// ExpandCompounds emits compound parts in addition to baseforms.
	ExpandCompounds bool
	// AllAnalysis processes every analysis instead of only the first.
	AllAnalysis bool
	// MinSubwordSize is the smallest part, in runes, that is emitted.
	MinSubwordSize int
	// MaxSubwordSize truncates longer parts, in runes.
	MaxSubwordSize int
}

// Assemble builds the ordered, deduplicated token set for one word.
// Baseforms come first, at position 1, followed by compound parts when
// expansion is enabled. An analysis whose WORDBASES value is malformed
// contributes its baseform only.
func Assemble(analyses []morph.Analysis, opts Options) []Token {
	analyses = morph.Dedupe(analyses)
	if !opts.AllAnalysis && len(analyses) > 1 {
		analyses = analyses[:1]
	}

	var set tokenSet
	baseforms := 0
	for _, a := range analyses {
		if base, ok := a.Get(morph.AttrBaseform); ok && base != "" {
			set.add(stripEquals(base), 1)
			baseforms = len(set.tokens)
		}
	}

	if opts.ExpandCompounds {
		for _, a := range analyses {
			if expr, ok := a.Get(morph.AttrWordBases); ok {
				if segments, ok := morph.ParseWordBases(expr); ok {
					expand(&set, segments, opts)
				}
			}
		}
	}

	tokens := set.tokens
	maxPos := 1
	for _, tok := range tokens {
		if tok.Position > maxPos {
			maxPos = tok.Position
		}
	}
	for i := range tokens {
		tokens[i].PositionLength = 1
		if i < baseforms {
			tokens[i].PositionLength = maxPos
		}
	}
	return tokens
}

// expand walks the segments of one analysis. Standalone parts and merged
// units (stems with their derivational suffixes) are numbered separately.
func expand(set *tokenSet, segments []morph.Segment, opts Options) {
	var composed strings.Builder
	wordPos, wordPosBase := 1, 1

	for _, seg := range segments {
		if !seg.Derivational {
			if utf8.RuneCountInString(seg.Part) >= opts.MinSubwordSize {
				set.add(truncate(seg.Part, opts.MaxSubwordSize), wordPosBase)
				wordPosBase++
			}
			if utf8.RuneCountInString(composed.String()) >= opts.MinSubwordSize {
				set.add(truncate(composed.String(), opts.MaxSubwordSize), wordPos)
				wordPos++
			}
			composed.Reset()
		}
		composed.WriteString(seg.Body)
	}

	if utf8.RuneCountInString(composed.String()) >= opts.MinSubwordSize {
		set.add(truncate(composed.String(), opts.MaxSubwordSize), wordPos)
	}
}

func stripEquals(s string) string {
	return strings.ReplaceAll(s, "=", "")
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
