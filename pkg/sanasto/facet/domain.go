package facet

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// domain is the set of operations the range walk needs from a value type.
type domain[T any] struct {
	parse   func(s string) (T, error)
	addGap  func(v T, gap string) (T, error)
	compare func(a, b T) int
	format  func(v T) string
	number  func(v T) store.Number
	// positive reports whether gap moves start forward.
	positive func(start T, gap string) (bool, error)
}

// numericDomain builds a domain whose gaps are plain numbers. Addition
// wraps on overflow like the underlying Go type; the walk then sees no
// forward progress and reports it.
func numericDomain[T int32 | int64 | float32 | float64](
	parse func(string) (T, error), format func(T) string, number func(T) store.Number,
) domain[T] {
	return domain[T]{
		parse: parse,
		addGap: func(v T, gap string) (T, error) {
			g, err := parse(gap)
			if err != nil {
				return v, err
			}
			return v + g, nil
		},
		compare: cmp.Compare[T],
		format:  format,
		number:  number,
		positive: func(_ T, gap string) (bool, error) {
			g, err := parse(gap)
			if err != nil {
				return false, err
			}
			return g > 0, nil
		},
	}
}

var intDomain = numericDomain(
	func(s string) (int32, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		return int32(v), err
	},
	func(v int32) string { return strconv.FormatInt(int64(v), 10) },
	func(v int32) store.Number { return store.Int(int64(v)) },
)

var longDomain = numericDomain(
	func(s string) (int64, error) { return strconv.ParseInt(strings.TrimSpace(s), 10, 64) },
	func(v int64) string { return strconv.FormatInt(v, 10) },
	store.Int,
)

var floatDomain = numericDomain(
	func(s string) (float32, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		return float32(v), err
	},
	func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) },
	func(v float32) store.Number { return store.Float(float64(v)) },
)

var doubleDomain = numericDomain(
	func(s string) (float64, error) { return strconv.ParseFloat(strings.TrimSpace(s), 64) },
	func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	store.Float,
)

// dateDomain resolves NOW against now. Gaps are date math applied to the
// lower bound of each bucket.
func dateDomain(now time.Time) domain[time.Time] {
	return domain[time.Time]{
		parse: func(s string) (time.Time, error) {
			return parseDate(strings.TrimSpace(s), now)
		},
		addGap: func(v time.Time, gap string) (time.Time, error) {
			return applyDateMath(v, strings.TrimSpace(gap))
		},
		compare: func(a, b time.Time) int { return a.Compare(b) },
		format:  formatDate,
		number:  store.Time,
		positive: func(start time.Time, gap string) (bool, error) {
			g := strings.TrimSpace(gap)
			if g == "" {
				return false, fmt.Errorf("empty gap")
			}
			next, err := applyDateMath(start, g)
			if err != nil {
				return false, err
			}
			return next.After(start), nil
		},
	}
}
