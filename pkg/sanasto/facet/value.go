package facet

import (
	"fmt"
	"time"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// ParseValue parses a single value of the given kind. Dates accept the
// same expressions as range bounds, with NOW resolved against now.
func ParseValue(kind Kind, s string, now time.Time) (store.Number, error) {
	var (
		n   store.Number
		err error
	)
	switch kind {
	case KindInt:
		n, err = parseWith(intDomain, s)
	case KindLong:
		n, err = parseWith(longDomain, s)
	case KindFloat:
		n, err = parseWith(floatDomain, s)
	case KindDouble:
		n, err = parseWith(doubleDomain, s)
	case KindDate:
		n, err = parseWith(dateDomain(now), s)
	default:
		return store.Number{}, fmt.Errorf("%w: no value domain for kind %s", internalerr.ErrInvalidInput, kind)
	}
	if err != nil {
		return store.Number{}, fmt.Errorf("%w: can't parse %s value %q: %v", internalerr.ErrInvalidInput, kind, s, err)
	}
	return n, nil
}

func parseWith[T any](d domain[T], s string) (store.Number, error) {
	v, err := d.parse(s)
	if err != nil {
		return store.Number{}, err
	}
	return d.number(v), nil
}
