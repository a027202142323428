package morph

import "strings"

// StaticAnalyzer answers from a fixed table keyed by lowercased surface
// form. It is read-only after construction and safe for concurrent use.
type StaticAnalyzer struct {
	entries map[string][]Analysis
}

// NewStaticAnalyzer creates an analyzer over the given table.
func NewStaticAnalyzer(entries map[string][]Analysis) *StaticAnalyzer {
	s := &StaticAnalyzer{entries: make(map[string][]Analysis, len(entries))}
	for word, analyses := range entries {
		key := strings.ToLower(word)
		s.entries[key] = append(s.entries[key], analyses...)
	}
	return s
}

// Analyze implements Analyzer.
func (s *StaticAnalyzer) Analyze(word string) ([]Analysis, error) {
	return s.entries[strings.ToLower(word)], nil
}
