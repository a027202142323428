// Package morph holds the morphological analysis records consumed by the
// decompounding filter and the adapters that produce them.
//
// An Analyzer maps a surface word to zero or more Analysis records. Each
// record is an ordered list of named string attributes; the filter only
// looks at BASEFORM and WORDBASES. The package never derives morphology
// itself: analyses come from a prepared dictionary (DictAnalyzer), a
// stemmer (StemAnalyzer) or a caller-supplied table (StaticAnalyzer).
package morph

import "strings"

// Well-known attribute names.
const (
	AttrBaseform  = "BASEFORM"
	AttrWordBases = "WORDBASES"
	AttrWordIDs   = "WORDIDS"
)

// Attribute is one named value of an analysis.
type Attribute struct {
	Name  string
	Value string
}

// Analysis is one interpretation of a surface word.
// Attributes keep the order the analyzer produced them in.
type Analysis []Attribute

// NewAnalysis builds an analysis from alternating name/value pairs.
// A trailing name without a value is ignored.
func NewAnalysis(kv ...string) Analysis {
	a := make(Analysis, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		a = append(a, Attribute{Name: kv[i], Value: kv[i+1]})
	}
	return a
}

// Get returns the value of the first attribute with the given name.
func (a Analysis) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Key returns a canonical string for the analysis. Two analyses with the
// same attributes in the same order have the same key.
func (a Analysis) Key() string {
	var b strings.Builder
	for i, attr := range a {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(attr.Name)
		b.WriteByte('=')
		b.WriteString(attr.Value)
	}
	return b.String()
}

// Analyzer is the morphological analyzer collaborator.
// Implementations must be safe for concurrent use. An empty result means
// the word is unknown; errors are reserved for failures of the analyzer
// itself (I/O, closed handle).
type Analyzer interface {
	Analyze(word string) ([]Analysis, error)
}

// Dedupe removes repeated analyses, keeping the first occurrence of each.
func Dedupe(analyses []Analysis) []Analysis {
	if len(analyses) < 2 {
		return analyses
	}
	seen := make(map[string]struct{}, len(analyses))
	out := make([]Analysis, 0, len(analyses))
	for _, a := range analyses {
		key := a.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
