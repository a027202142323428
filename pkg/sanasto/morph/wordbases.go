package morph

import "strings"

// Segment is one element of a WORDBASES expression such as
// "+kahdeksan(kahdeksan)+kulma(kulma)+inen(+inen)".
type Segment struct {
	// Body is the surface fragment before the parenthesis.
	Body string
	// Part is the base form or derivative inside the parenthesis.
	Part string
	// Derivational is set when Part starts with '+': the body is a
	// suffix that belongs to the preceding stem.
	Derivational bool
}

// ParseWordBases splits a WORDBASES expression into segments and reports
// whether every segment is well formed.
//
// Segments are separated by '+' unless the '+' directly follows '('.
// The element before the leading '+' is discarded and '=' markers are
// removed. A segment without a parenthesis yields Body == Part. A
// segment with parentheses must have exactly one '(' closed by its final
// ')'; anything else makes the expression malformed, and callers should
// not expand it. Parsing never fails.
func ParseWordBases(expr string) ([]Segment, bool) {
	parts := splitWordBases(expr)
	if len(parts) < 2 {
		return nil, true
	}

	ok := true
	segments := make([]Segment, 0, len(parts)-1)
	for _, p := range parts[1:] {
		p = strings.ReplaceAll(p, "=", "")
		if !wellFormed(p) {
			ok = false
		}

		var seg Segment
		if paren := strings.IndexByte(p, '('); paren < 0 {
			seg.Body, seg.Part = p, p
		} else {
			seg.Body = p[:paren]
			seg.Part = strings.TrimSuffix(p[paren+1:], ")")
		}
		seg.Derivational = strings.HasPrefix(seg.Part, "+")
		segments = append(segments, seg)
	}
	return segments, ok
}

// wellFormed reports whether seg has no parentheses, or a single '('
// closed by the final ')'.
func wellFormed(seg string) bool {
	open := strings.Count(seg, "(")
	closing := strings.Count(seg, ")")
	if open == 0 && closing == 0 {
		return true
	}
	return open == 1 && closing == 1 && strings.HasSuffix(seg, ")")
}

// splitWordBases splits on '+' not preceded by '(' and drops trailing
// empty elements.
func splitWordBases(expr string) []string {
	if expr == "" {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] != '+' || (i > 0 && expr[i-1] == '(') {
			continue
		}
		parts = append(parts, expr[start:i])
		start = i + 1
	}
	parts = append(parts, expr[start:])

	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
