package facet

import (
	"fmt"
	"strings"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

// Include selects which bucket boundaries are inclusive.
type Include uint8

const (
	// IncludeLower makes every bucket include its lower bound.
	IncludeLower Include = 1 << iota
	// IncludeUpper makes every bucket include its upper bound.
	IncludeUpper
	// IncludeEdge includes start in the first bucket and end in the last.
	IncludeEdge
	// IncludeOuter includes the bounds in the before and after counts.
	IncludeOuter

	IncludeAll = IncludeLower | IncludeUpper | IncludeEdge | IncludeOuter
)

// Has reports whether every flag in f is set.
func (i Include) Has(f Include) bool { return i&f == f }

// ParseInclude reads include values; each may hold a comma separated
// list. No values means IncludeLower.
func ParseInclude(values []string) (Include, error) {
	var inc Include
	for _, v := range splitList(values) {
		switch strings.ToLower(v) {
		case "lower":
			inc |= IncludeLower
		case "upper":
			inc |= IncludeUpper
		case "edge":
			inc |= IncludeEdge
		case "outer":
			inc |= IncludeOuter
		case "all":
			inc |= IncludeAll
		default:
			return 0, fmt.Errorf("%w: unknown facet.range.include value %q", internalerr.ErrInvalidInput, v)
		}
	}
	if inc == 0 {
		inc = IncludeLower
	}
	return inc, nil
}

func (i Include) String() string {
	var names []string
	for _, f := range []struct {
		flag Include
		name string
	}{{IncludeLower, "lower"}, {IncludeUpper, "upper"}, {IncludeEdge, "edge"}, {IncludeOuter, "outer"}} {
		if i.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}

// Other selects the aggregate counts reported next to the buckets.
type Other uint8

const (
	OtherBefore Other = 1 << iota
	OtherAfter
	OtherBetween
	// OtherNone suppresses all aggregates whatever else is set.
	OtherNone

	OtherAll = OtherBefore | OtherAfter | OtherBetween
)

// Has reports whether every flag in f is set.
func (o Other) Has(f Other) bool { return o&f == f }

// ParseOther reads facet.range.other values.
func ParseOther(values []string) (Other, error) {
	var o Other
	for _, v := range splitList(values) {
		switch strings.ToLower(v) {
		case "before":
			o |= OtherBefore
		case "after":
			o |= OtherAfter
		case "between":
			o |= OtherBetween
		case "none":
			o |= OtherNone
		case "all":
			o |= OtherAll
		default:
			return 0, fmt.Errorf("%w: unknown facet.range.other value %q", internalerr.ErrInvalidInput, v)
		}
	}
	return o, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
